package analyzer

import (
	"context"
	"fmt"
	"testing"

	"goab/domain/core"
	"goab/domain/experiment"
	"goab/domain/stats"
)

func newTestAnalyzer() *Analyzer {
	return New(Config{
		ControlLabel:          "control",
		TreatmentLabel:        "treatment",
		MinSampleSize:         100,
		RecommendedSampleSize: 1000,
		SegmentParallelism:    2,
	})
}

// buildRecords returns size records for a group, the first conversions of
// them converted, optionally tagged with a device segment value.
func buildRecords(group string, conversions, size int, device string) []experiment.Record {
	records := make([]experiment.Record, 0, size)
	for i := 0; i < size; i++ {
		r := experiment.Record{
			UserID:    fmt.Sprintf("%s_%04d", group, i),
			Group:     group,
			Converted: i < conversions,
		}
		if device != "" {
			r.Segments = map[string]string{"device": device}
		}
		records = append(records, r)
	}
	return records
}

func buildDataset(controlConv, controlSize, treatmentConv, treatmentSize int) *experiment.Dataset {
	records := buildRecords("control", controlConv, controlSize, "")
	records = append(records, buildRecords("treatment", treatmentConv, treatmentSize, "")...)
	return experiment.NewDataset(records)
}

// TestConversionRates tests rate aggregation and relative lift.
func TestConversionRates(t *testing.T) {
	a := newTestAnalyzer()
	rates, err := a.ConversionRates(buildDataset(100, 1000, 120, 1000))
	if err != nil {
		t.Fatalf("ConversionRates failed: %v", err)
	}

	if rates.ControlRate != 0.10 {
		t.Errorf("expected control rate 0.10, got %f", rates.ControlRate)
	}
	if rates.TreatmentRate != 0.12 {
		t.Errorf("expected treatment rate 0.12, got %f", rates.TreatmentRate)
	}
	if diff := rates.Lift - 0.20; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("expected lift 0.20, got %f", rates.Lift)
	}
}

// TestConversionRatesZeroBaseline tests the lift-is-zero policy when the
// control group has no conversions.
func TestConversionRatesZeroBaseline(t *testing.T) {
	a := newTestAnalyzer()
	rates, err := a.ConversionRates(buildDataset(0, 100, 5, 100))
	if err != nil {
		t.Fatalf("ConversionRates failed: %v", err)
	}
	if rates.Lift != 0 {
		t.Errorf("expected lift 0 against a zero baseline, got %f", rates.Lift)
	}
}

// TestConversionRatesEmptyGroup tests that a missing group is rejected as
// insufficient data.
func TestConversionRatesEmptyGroup(t *testing.T) {
	a := newTestAnalyzer()
	ds := experiment.NewDataset(buildRecords("control", 10, 100, ""))

	_, err := a.ConversionRates(ds)
	if err == nil {
		t.Fatal("expected error for missing treatment group")
	}
	if !core.IsInsufficientData(err) {
		t.Errorf("expected insufficient-data error, got %v", err)
	}
}

// TestRunFullTestScenario tests the composed readout on a 10% vs 12% dataset.
func TestRunFullTestScenario(t *testing.T) {
	a := newTestAnalyzer()
	result, err := a.RunFullTest(buildDataset(100, 1000, 120, 1000), 0.05)
	if err != nil {
		t.Fatalf("RunFullTest failed: %v", err)
	}

	if result.ZScore <= 0 {
		t.Errorf("expected positive z-score for the higher treatment rate, got %f", result.ZScore)
	}
	if result.PValue <= 0 || result.PValue >= 1 {
		t.Errorf("expected p-value strictly inside (0, 1), got %f", result.PValue)
	}
	if result.Significant {
		t.Errorf("expected p=%f to be non-significant at alpha=0.05", result.PValue)
	}
	if !result.ControlCI.Contains(0.10) {
		t.Errorf("control CI [%f, %f] should contain 0.10", result.ControlCI.Lower, result.ControlCI.Upper)
	}
	if !result.TreatmentCI.Contains(0.12) {
		t.Errorf("treatment CI [%f, %f] should contain 0.12", result.TreatmentCI.Lower, result.TreatmentCI.Upper)
	}
	if result.EffectSize <= 0 {
		t.Errorf("expected positive Cohen's h, got %f", result.EffectSize)
	}
	if result.Magnitude != stats.EffectNegligible {
		t.Errorf("expected negligible effect for h=%f, got %s", result.EffectSize, result.Magnitude)
	}
	if result.Power <= 0 || result.Power >= 1 {
		t.Errorf("expected power strictly inside (0, 1), got %f", result.Power)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings at n=1000, got %v", result.Warnings)
	}
	if result.ComputedAt.IsZero() {
		t.Error("expected ComputedAt to be stamped")
	}
	if err := result.Validate(); err != nil {
		t.Errorf("result failed validation: %v", err)
	}
}

// TestRunFullTestWarnings tests the advisory codes stamped on small and
// degenerate datasets.
func TestRunFullTestWarnings(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		name    string
		dataset *experiment.Dataset
		want    stats.WarningCode
	}{
		{"below minimum", buildDataset(5, 50, 8, 50), stats.WarningLowSample},
		{"below recommended", buildDataset(50, 500, 60, 500), stats.WarningBelowRecommended},
		{"nobody converted", buildDataset(0, 200, 0, 200), stats.WarningDegenerateVariance},
		{"zero baseline", buildDataset(0, 200, 10, 200), stats.WarningZeroBaseline},
	}

	for _, c := range cases {
		result, err := a.RunFullTest(c.dataset, 0.05)
		if err != nil {
			t.Fatalf("%s: RunFullTest failed: %v", c.name, err)
		}
		if !result.HasWarning(c.want) {
			t.Errorf("%s: expected warning %s, got %v", c.name, c.want, result.Warnings)
		}
	}
}

// TestRunFullTestEmptyGroup tests per-group empty detection.
func TestRunFullTestEmptyGroup(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		name    string
		records []experiment.Record
	}{
		{"no control", buildRecords("treatment", 10, 100, "")},
		{"no treatment", buildRecords("control", 10, 100, "")},
		{"empty dataset", nil},
	}

	for _, c := range cases {
		_, err := a.RunFullTest(experiment.NewDataset(c.records), 0.05)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !core.IsInsufficientData(err) {
			t.Errorf("%s: expected insufficient-data error, got %v", c.name, err)
		}
	}
}

// TestRunFullTestInvalidAlpha tests alpha rejection before any computation.
func TestRunFullTestInvalidAlpha(t *testing.T) {
	a := newTestAnalyzer()
	ds := buildDataset(100, 1000, 120, 1000)

	for _, alpha := range []float64{0, 1, -0.1, 1.5} {
		_, err := a.RunFullTest(ds, alpha)
		if err == nil {
			t.Fatalf("alpha=%f: expected error", alpha)
		}
		if !core.IsInvalidInput(err) {
			t.Errorf("alpha=%f: expected invalid-input error, got %v", alpha, err)
		}
	}
}

// TestSegmentAnalysis tests the per-segment breakdown: a segment whose
// treatment side is empty is flagged while the other segments compute.
func TestSegmentAnalysis(t *testing.T) {
	a := newTestAnalyzer()

	var records []experiment.Record
	records = append(records, buildRecords("control", 50, 500, "desktop")...)
	records = append(records, buildRecords("treatment", 65, 500, "desktop")...)
	records = append(records, buildRecords("control", 30, 300, "mobile")...)
	records = append(records, buildRecords("treatment", 45, 300, "mobile")...)
	records = append(records, buildRecords("control", 10, 50, "tablet")...)
	ds := experiment.NewDataset(records)

	results, err := a.SegmentAnalysis(context.Background(), ds, core.SegmentKey("device"), 0.01)
	if err != nil {
		t.Fatalf("SegmentAnalysis failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(results))
	}

	wantOrder := []string{"desktop", "mobile", "tablet"}
	for i, want := range wantOrder {
		if results[i].Segment != want {
			t.Errorf("position %d: expected segment %q, got %q", i, want, results[i].Segment)
		}
	}

	for _, r := range results[:2] {
		if r.Insufficient {
			t.Errorf("segment %q should have computed, flagged with reason %q", r.Segment, r.Reason)
			continue
		}
		if r.Result == nil {
			t.Fatalf("segment %q: missing result", r.Segment)
		}
		if r.Result.Alpha != 0.01 {
			t.Errorf("segment %q: expected alpha 0.01 carried through, got %f", r.Segment, r.Result.Alpha)
		}
	}

	tablet := results[2]
	if !tablet.Insufficient {
		t.Error("tablet segment with no treatment records should be flagged insufficient")
	}
	if tablet.Result != nil {
		t.Error("flagged segment should carry no result")
	}
	if tablet.Reason == "" {
		t.Error("flagged segment should carry a reason")
	}
}

// TestSegmentAnalysisUnknownKey tests rejection of a key no record carries.
func TestSegmentAnalysisUnknownKey(t *testing.T) {
	a := newTestAnalyzer()
	ds := buildDataset(100, 1000, 120, 1000)

	_, err := a.SegmentAnalysis(context.Background(), ds, core.SegmentKey("browser"), 0.05)
	if err == nil {
		t.Fatal("expected error for unknown segment key")
	}
	if !core.IsInvalidInput(err) {
		t.Errorf("expected invalid-input error, got %v", err)
	}
}

// TestSegmentAnalysisOrderStable tests that repeated runs return segments in
// the same sorted order regardless of goroutine scheduling.
func TestSegmentAnalysisOrderStable(t *testing.T) {
	a := newTestAnalyzer()

	var records []experiment.Record
	for _, device := range []string{"tablet", "mobile", "desktop", "tv", "watch"} {
		records = append(records, buildRecords("control", 20, 200, device)...)
		records = append(records, buildRecords("treatment", 30, 200, device)...)
	}
	ds := experiment.NewDataset(records)

	want := []string{"desktop", "mobile", "tablet", "tv", "watch"}
	for run := 0; run < 5; run++ {
		results, err := a.SegmentAnalysis(context.Background(), ds, core.SegmentKey("device"), 0.05)
		if err != nil {
			t.Fatalf("run %d: SegmentAnalysis failed: %v", run, err)
		}
		for i, w := range want {
			if results[i].Segment != w {
				t.Fatalf("run %d position %d: expected %q, got %q", run, i, w, results[i].Segment)
			}
		}
	}
}
