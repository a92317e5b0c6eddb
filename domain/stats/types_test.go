package stats

import (
	"testing"

	"goab/domain/experiment"
)

// TestClassifyEffect tests Cohen's h magnitude labels at and around the breakpoints
func TestClassifyEffect(t *testing.T) {
	tests := []struct {
		h        float64
		expected EffectMagnitude
	}{
		{0.0, EffectNegligible},
		{0.19, EffectNegligible},
		{0.2, EffectSmall},
		{0.49, EffectSmall},
		{0.5, EffectMedium},
		{0.79, EffectMedium},
		{0.8, EffectLarge},
		{1.5, EffectLarge},
		{-0.3, EffectSmall},
		{-0.9, EffectLarge},
	}

	for _, test := range tests {
		if got := ClassifyEffect(test.h); got != test.expected {
			t.Errorf("ClassifyEffect(%f): expected %s, got %s", test.h, test.expected, got)
		}
	}
}

// TestIntervalValidate tests interval invariants
func TestIntervalValidate(t *testing.T) {
	valid := Interval{Lower: 0.08, Upper: 0.12}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected error for valid interval: %v", err)
	}
	if !valid.Contains(0.1) {
		t.Error("Expected interval to contain 0.1")
	}
	if valid.Contains(0.2) {
		t.Error("Expected interval not to contain 0.2")
	}

	inverted := Interval{Lower: 0.5, Upper: 0.4}
	if err := inverted.Validate(); err == nil {
		t.Error("Expected error for inverted interval")
	}

	outOfRange := Interval{Lower: -0.1, Upper: 0.4}
	if err := outOfRange.Validate(); err == nil {
		t.Error("Expected error for interval below 0")
	}
}

// TestTestResultValidate tests the result invariant checks
func TestTestResultValidate(t *testing.T) {
	base := func() *TestResult {
		return &TestResult{
			Control:     experiment.GroupSummary{Label: "A", Conversions: 100, Size: 1000},
			Treatment:   experiment.GroupSummary{Label: "B", Conversions: 120, Size: 1000},
			PValue:      0.14,
			Power:       0.29,
			ControlCI:   Interval{Lower: 0.081, Upper: 0.119},
			TreatmentCI: Interval{Lower: 0.100, Upper: 0.140},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("Unexpected error for valid result: %v", err)
	}

	bad := base()
	bad.PValue = 1.2
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for p-value above 1")
	}

	bad = base()
	bad.Power = -0.1
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for negative power")
	}

	bad = base()
	bad.Control.Size = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for empty control summary")
	}
}

// TestTestResultHasWarning tests warning lookup
func TestTestResultHasWarning(t *testing.T) {
	r := &TestResult{Warnings: []WarningCode{WarningLowSample}}
	if !r.HasWarning(WarningLowSample) {
		t.Error("Expected low sample warning to be present")
	}
	if r.HasWarning(WarningDegenerateVariance) {
		t.Error("Expected degenerate variance warning to be absent")
	}
}

// TestBayesianResultValidate tests posterior invariants
func TestBayesianResultValidate(t *testing.T) {
	valid := &BayesianResult{
		ProbABetter:    0.2,
		ProbBBetter:    0.8,
		ExpectedLossA:  0.01,
		ExpectedLossB:  0.001,
		PosteriorMeanA: 0.10,
		PosteriorMeanB: 0.12,
		Simulations:    10000,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Unexpected error for valid posterior: %v", err)
	}

	bad := *valid
	bad.ProbABetter = 0.3
	if err := bad.Validate(); err == nil {
		t.Error("Expected error when probabilities do not sum to 1")
	}

	bad = *valid
	bad.Simulations = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero simulations")
	}

	bad = *valid
	bad.ExpectedLossA = -0.5
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for negative expected loss")
	}
}
