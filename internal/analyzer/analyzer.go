// Package analyzer orchestrates the statistical engine over record datasets:
// group aggregation, the full frequentist readout, and concurrent per-segment
// breakdowns collected in deterministic order.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"goab/domain/core"
	"goab/domain/experiment"
	"goab/domain/stats"
	"goab/internal/stattest"
)

// Config carries the labels and thresholds the analyzer applies to every run.
type Config struct {
	ControlLabel          string
	TreatmentLabel        string
	MinSampleSize         int
	RecommendedSampleSize int
	SegmentParallelism    int64
}

// Analyzer aggregates datasets into group counts and drives the test engine.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// New creates an analyzer. Parallelism defaults to 4 when unset.
func New(cfg Config) *Analyzer {
	if cfg.SegmentParallelism <= 0 {
		cfg.SegmentParallelism = 4
	}
	return &Analyzer{cfg: cfg}
}

// ConversionRates computes the observed rates for both arms and the relative
// lift. Lift is 0 when the control rate is 0: relative lift against a zero
// baseline is reported as no change by policy.
func (a *Analyzer) ConversionRates(ds *experiment.Dataset) (stats.ConversionRates, error) {
	control := ds.Summarize(a.cfg.ControlLabel)
	treatment := ds.Summarize(a.cfg.TreatmentLabel)

	if control.Size == 0 {
		return stats.ConversionRates{}, core.NewEmptyGroupError(a.cfg.ControlLabel)
	}
	if treatment.Size == 0 {
		return stats.ConversionRates{}, core.NewEmptyGroupError(a.cfg.TreatmentLabel)
	}
	return ratesFor(control, treatment), nil
}

func ratesFor(control, treatment experiment.GroupSummary) stats.ConversionRates {
	rates := stats.ConversionRates{
		ControlRate:   control.Rate(),
		TreatmentRate: treatment.Rate(),
	}
	if rates.ControlRate > 0 {
		rates.Lift = (rates.TreatmentRate - rates.ControlRate) / rates.ControlRate
	}
	return rates
}

// RunFullTest aggregates both groups and composes the complete frequentist
// readout: rates and lift, pooled z-test, per-group Wald intervals, Cohen's h
// and achieved power. An empty group is an insufficient-data error.
func (a *Analyzer) RunFullTest(ds *experiment.Dataset, alpha float64) (*stats.TestResult, error) {
	started := time.Now()

	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w, got %f", core.ErrInvalidAlpha, alpha)
	}

	control := ds.Summarize(a.cfg.ControlLabel)
	treatment := ds.Summarize(a.cfg.TreatmentLabel)
	if control.Size == 0 {
		return nil, core.NewEmptyGroupError(a.cfg.ControlLabel)
	}
	if treatment.Size == 0 {
		return nil, core.NewEmptyGroupError(a.cfg.TreatmentLabel)
	}

	z, p, err := stattest.TwoProportionZTest(control.Conversions, control.Size, treatment.Conversions, treatment.Size)
	if err != nil {
		return nil, fmt.Errorf("z-test: %w", err)
	}

	controlCI, err := stattest.ConfidenceInterval(control.Conversions, control.Size, alpha)
	if err != nil {
		return nil, fmt.Errorf("control interval: %w", err)
	}
	treatmentCI, err := stattest.ConfidenceInterval(treatment.Conversions, treatment.Size, alpha)
	if err != nil {
		return nil, fmt.Errorf("treatment interval: %w", err)
	}

	h, err := stattest.CohensH(control.Rate(), treatment.Rate())
	if err != nil {
		return nil, fmt.Errorf("effect size: %w", err)
	}

	power, err := stattest.StatisticalPower(control.Rate(), treatment.Rate(), control.Size, treatment.Size, alpha)
	if err != nil {
		return nil, fmt.Errorf("power: %w", err)
	}

	result := &stats.TestResult{
		Control:     control,
		Treatment:   treatment,
		Rates:       ratesFor(control, treatment),
		ZScore:      z,
		PValue:      p,
		Alpha:       alpha,
		Significant: p < alpha,
		ControlCI:   controlCI,
		TreatmentCI: treatmentCI,
		EffectSize:  h,
		Magnitude:   stats.ClassifyEffect(h),
		Power:       power,
		RuntimeMs:   time.Since(started).Milliseconds(),
		ComputedAt:  core.Now(),
	}
	result.Warnings = a.collectWarnings(result)
	return result, nil
}

// collectWarnings stamps sample-size and degeneracy advisories on a result.
func (a *Analyzer) collectWarnings(r *stats.TestResult) []stats.WarningCode {
	var warnings []stats.WarningCode

	smallest := r.Control.Size
	if r.Treatment.Size < smallest {
		smallest = r.Treatment.Size
	}
	if a.cfg.MinSampleSize > 0 && smallest < a.cfg.MinSampleSize {
		warnings = append(warnings, stats.WarningLowSample)
	} else if a.cfg.RecommendedSampleSize > 0 && smallest < a.cfg.RecommendedSampleSize {
		warnings = append(warnings, stats.WarningBelowRecommended)
	}

	totalConversions := r.Control.Conversions + r.Treatment.Conversions
	if totalConversions == 0 || totalConversions == r.Control.Size+r.Treatment.Size {
		warnings = append(warnings, stats.WarningDegenerateVariance)
	}
	if r.Rates.ControlRate == 0 {
		warnings = append(warnings, stats.WarningZeroBaseline)
	}
	return warnings
}

// SegmentAnalysis repeats the full test for every distinct value of the
// segment key. Segments run concurrently under a bounded semaphore and
// results are collected by index, so output order is always sorted by segment
// value regardless of scheduling. A segment whose control or treatment side
// is empty is flagged insufficient; the batch never aborts for that.
func (a *Analyzer) SegmentAnalysis(ctx context.Context, ds *experiment.Dataset, key core.SegmentKey, alpha float64) ([]stats.SegmentResult, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w, got %f", core.ErrInvalidAlpha, alpha)
	}

	values := ds.SegmentValues(key)
	if len(values) == 0 {
		return nil, core.NewSegmentKeyError(key.String())
	}

	type resultWithIndex struct {
		result stats.SegmentResult
		index  int
	}
	resultChan := make(chan resultWithIndex, len(values))
	sem := semaphore.NewWeighted(a.cfg.SegmentParallelism)

	for i, value := range values {
		go func(value string, idx int) {
			if err := sem.Acquire(ctx, 1); err != nil {
				resultChan <- resultWithIndex{
					result: stats.SegmentResult{
						Segment:      value,
						Insufficient: true,
						Reason:       fmt.Sprintf("failed to acquire semaphore: %v", err),
					},
					index: idx,
				}
				return
			}
			defer sem.Release(1)

			resultChan <- resultWithIndex{result: a.analyzeSegment(ds, key, value, alpha), index: idx}
		}(value, i)
	}

	results := make([]stats.SegmentResult, len(values))
	for i := 0; i < len(values); i++ {
		res := <-resultChan
		results[res.index] = res.result
	}
	return results, nil
}

func (a *Analyzer) analyzeSegment(ds *experiment.Dataset, key core.SegmentKey, value string, alpha float64) stats.SegmentResult {
	subset := ds.FilterSegment(key, value)
	result, err := a.RunFullTest(subset, alpha)
	if err != nil {
		return stats.SegmentResult{Segment: value, Insufficient: true, Reason: err.Error()}
	}
	return stats.SegmentResult{Segment: value, Result: result}
}
