package stats

import (
	"fmt"
	"math"

	"goab/domain/core"
	"goab/domain/experiment"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// ConversionRates holds the observed rates for both arms and the relative lift.
// INVARIANTS:
// - ControlRate and TreatmentRate always in [0.0, 1.0]
// - Lift is 0 when ControlRate is 0 (relative lift against a zero baseline
//   is undefined; 0 is the documented policy)
type ConversionRates struct {
	ControlRate   float64 `json:"control_rate"`
	TreatmentRate float64 `json:"treatment_rate"`
	Lift          float64 `json:"lift"`
}

// Interval is a two-sided confidence interval clamped to the unit range.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether p falls inside the interval (inclusive).
func (i Interval) Contains(p float64) bool {
	return p >= i.Lower && p <= i.Upper
}

// Validate checks interval invariants.
func (i Interval) Validate() error {
	if i.Lower < 0.0 || i.Upper > 1.0 {
		return fmt.Errorf("interval must be within [0.0, 1.0], got [%f, %f]", i.Lower, i.Upper)
	}
	if i.Lower > i.Upper {
		return fmt.Errorf("interval lower bound %f exceeds upper bound %f", i.Lower, i.Upper)
	}
	return nil
}

// WarningCode represents structured warning types attached to results
type WarningCode string

const (
	WarningLowSample          WarningCode = "LOW_SAMPLE"          // A group is below the minimum sample size
	WarningBelowRecommended   WarningCode = "BELOW_RECOMMENDED"   // A group is below the recommended sample size
	WarningDegenerateVariance WarningCode = "DEGENERATE_VARIANCE" // Pooled variance was zero; z forced to 0
	WarningZeroBaseline       WarningCode = "ZERO_BASELINE"       // Control rate was zero; lift forced to 0
)

// ============================================================================
// EFFECT SIZE
// ============================================================================

// EffectMagnitude labels |Cohen's h| against the conventional thresholds.
type EffectMagnitude string

const (
	EffectNegligible EffectMagnitude = "negligible"
	EffectSmall      EffectMagnitude = "small"
	EffectMedium     EffectMagnitude = "medium"
	EffectLarge      EffectMagnitude = "large"
)

// Cohen's conventional breakpoints for h.
const (
	effectSmallThreshold  = 0.2
	effectMediumThreshold = 0.5
	effectLargeThreshold  = 0.8
)

// ClassifyEffect maps a signed Cohen's h to its magnitude label.
func ClassifyEffect(h float64) EffectMagnitude {
	abs := math.Abs(h)
	switch {
	case abs >= effectLargeThreshold:
		return EffectLarge
	case abs >= effectMediumThreshold:
		return EffectMedium
	case abs >= effectSmallThreshold:
		return EffectSmall
	default:
		return EffectNegligible
	}
}

// ============================================================================
// DOMAIN RESULTS
// ============================================================================

// TestResult is the full frequentist readout for one control/treatment pair.
type TestResult struct {
	RunID     core.RunID              `json:"run_id,omitempty"`
	Control   experiment.GroupSummary `json:"control"`
	Treatment experiment.GroupSummary `json:"treatment"`

	Rates       ConversionRates `json:"rates"`
	ZScore      float64         `json:"z_score"`
	PValue      float64         `json:"p_value"`
	Alpha       float64         `json:"alpha"`
	Significant bool            `json:"significant"`

	ControlCI   Interval `json:"control_ci"`
	TreatmentCI Interval `json:"treatment_ci"`

	EffectSize float64         `json:"effect_size"` // Cohen's h, signed
	Magnitude  EffectMagnitude `json:"magnitude"`
	Power      float64         `json:"power"`

	Warnings   []WarningCode  `json:"warnings,omitempty"`
	RuntimeMs  int64          `json:"runtime_ms"`
	ComputedAt core.Timestamp `json:"computed_at"`
}

// Validate checks result invariants.
func (r *TestResult) Validate() error {
	if err := r.Control.Validate(); err != nil {
		return fmt.Errorf("control summary: %w", err)
	}
	if err := r.Treatment.Validate(); err != nil {
		return fmt.Errorf("treatment summary: %w", err)
	}
	if r.PValue < 0.0 || r.PValue > 1.0 {
		return fmt.Errorf("PValue must be in [0.0, 1.0], got %f", r.PValue)
	}
	if r.Power < 0.0 || r.Power > 1.0 {
		return fmt.Errorf("Power must be in [0.0, 1.0], got %f", r.Power)
	}
	if err := r.ControlCI.Validate(); err != nil {
		return fmt.Errorf("control CI: %w", err)
	}
	if err := r.TreatmentCI.Validate(); err != nil {
		return fmt.Errorf("treatment CI: %w", err)
	}
	return nil
}

// HasWarning reports whether a specific warning code was attached.
func (r *TestResult) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w == code {
			return true
		}
	}
	return false
}

// SegmentResult is one segment's slice of a breakdown. Insufficient segments
// carry a reason instead of a result and never abort the batch.
type SegmentResult struct {
	Segment      string      `json:"segment"`
	Result       *TestResult `json:"result,omitempty"`
	Insufficient bool        `json:"insufficient"`
	Reason       string      `json:"reason,omitempty"`
}

// BayesianResult is the posterior readout of a Beta-Binomial comparison.
// INVARIANTS:
// - ProbABetter + ProbBBetter == 1 exactly (complement construction)
// - ExpectedLoss values are non-negative
type BayesianResult struct {
	ProbABetter    float64 `json:"prob_a_better"`
	ProbBBetter    float64 `json:"prob_b_better"`
	ExpectedLossA  float64 `json:"expected_loss_a"`
	ExpectedLossB  float64 `json:"expected_loss_b"`
	PosteriorMeanA float64 `json:"posterior_mean_a"`
	PosteriorMeanB float64 `json:"posterior_mean_b"`
	Simulations    int     `json:"simulations"`
	Seed           int64   `json:"seed"`
}

// Validate checks posterior invariants.
func (b *BayesianResult) Validate() error {
	if b.Simulations <= 0 {
		return fmt.Errorf("Simulations must be > 0, got %d", b.Simulations)
	}
	if b.ProbBBetter < 0.0 || b.ProbBBetter > 1.0 {
		return fmt.Errorf("ProbBBetter must be in [0.0, 1.0], got %f", b.ProbBBetter)
	}
	if b.ProbABetter+b.ProbBBetter != 1.0 {
		return fmt.Errorf("probabilities must sum to 1, got %f", b.ProbABetter+b.ProbBBetter)
	}
	if b.ExpectedLossA < 0.0 || b.ExpectedLossB < 0.0 {
		return fmt.Errorf("expected losses must be non-negative, got %f and %f", b.ExpectedLossA, b.ExpectedLossB)
	}
	return nil
}

// RevenueSummary contains descriptive statistics over purchaser revenue.
type RevenueSummary struct {
	Purchasers int     `json:"purchasers"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Median     float64 `json:"median"`
	Q25        float64 `json:"q25"`
	Q75        float64 `json:"q75"`
}
