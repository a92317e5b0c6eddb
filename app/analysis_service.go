package app

import (
	"context"
	"fmt"
	"time"

	"goab/domain/core"
	"goab/domain/stats"
	"goab/internal"
	"goab/internal/analyzer"
	"goab/internal/config"
	"goab/internal/stattest"
	"goab/ports"
)

// AnalysisService drives the statistical engine behind the CLIs: it loads
// datasets through a source port, runs the analyzer, and stamps provenance
// onto every result.
type AnalysisService struct {
	cfg    *config.Config
	logger *internal.Logger
	rng    ports.RNGPort
	engine *analyzer.Analyzer
}

// AnalyzeRequest selects the significance level for a full test run.
// A zero Alpha means the configured default.
type AnalyzeRequest struct {
	Alpha float64 `json:"alpha,omitempty"`
}

// SegmentRequest names the segment key to break the dataset down by.
type SegmentRequest struct {
	Key   string  `json:"key"`
	Alpha float64 `json:"alpha,omitempty"`
}

// BayesRequest carries raw group counts for a posterior comparison.
// Zero Simulations means the configured default; the seed is taken as-is.
type BayesRequest struct {
	ConversionsA int   `json:"conversions_a"`
	SizeA        int   `json:"size_a"`
	ConversionsB int   `json:"conversions_b"`
	SizeB        int   `json:"size_b"`
	Simulations  int   `json:"simulations,omitempty"`
	Seed         int64 `json:"seed"`
}

// PlanRequest describes a prospective experiment. Zero Alpha, Power or MDE
// mean the configured defaults; a deliberate zero effect is never plannable.
type PlanRequest struct {
	Baseline float64 `json:"baseline"`
	MDE      float64 `json:"mde"`
	Alpha    float64 `json:"alpha,omitempty"`
	Power    float64 `json:"power,omitempty"`
}

// PlanResult is the sample size answer for a PlanRequest.
type PlanResult struct {
	Baseline   float64 `json:"baseline"`
	TargetRate float64 `json:"target_rate"`
	MDE        float64 `json:"mde"`
	Alpha      float64 `json:"alpha"`
	Power      float64 `json:"power"`
	PerGroup   int     `json:"per_group"`
	Total      int     `json:"total"`
}

// NewAnalysisService creates the service with its analyzer configured from
// the loaded application config.
func NewAnalysisService(cfg *config.Config, logger *internal.Logger, rng ports.RNGPort) *AnalysisService {
	engine := analyzer.New(analyzer.Config{
		ControlLabel:          cfg.Analysis.ControlLabel,
		TreatmentLabel:        cfg.Analysis.TreatmentLabel,
		MinSampleSize:         cfg.Analysis.MinSampleSize,
		RecommendedSampleSize: cfg.Analysis.RecommendedSampleSize,
		SegmentParallelism:    cfg.Analysis.SegmentParallelism,
	})
	return &AnalysisService{
		cfg:    cfg,
		logger: logger.Scoped("analysis"),
		rng:    rng,
		engine: engine,
	}
}

// Analyze loads the dataset and runs the full frequentist readout.
func (s *AnalysisService) Analyze(ctx context.Context, src ports.DatasetSource, req AnalyzeRequest) (*stats.TestResult, error) {
	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.cfg.Analysis.Alpha
	}

	runID := core.NewRunID()
	s.logger.Info("Starting analysis run %s (alpha=%.3f, source=%s)", runID, alpha, src.Describe())

	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	s.logger.Debug("Dataset loaded: %d records", ds.Len())

	result, err := s.engine.RunFullTest(ds, alpha)
	if err != nil {
		return nil, fmt.Errorf("analysis run %s failed: %w", runID, err)
	}
	result.RunID = runID

	s.logger.Info("Analysis run %s complete in %d ms (p=%.4f, significant=%t)",
		runID, result.RuntimeMs, result.PValue, result.Significant)
	return result, nil
}

// Segments loads the dataset and runs the per-segment breakdown. Every
// segment's sub-result carries the same run ID for correlation.
func (s *AnalysisService) Segments(ctx context.Context, src ports.DatasetSource, req SegmentRequest) ([]stats.SegmentResult, error) {
	key, err := core.ParseSegmentKey(req.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid segment key: %w", err)
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.cfg.Analysis.Alpha
	}

	runID := core.NewRunID()
	s.logger.Info("Starting segment analysis %s on key %q (alpha=%.3f, source=%s)",
		runID, key, alpha, src.Describe())
	started := time.Now()

	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	results, err := s.engine.SegmentAnalysis(ctx, ds, key, alpha)
	if err != nil {
		return nil, fmt.Errorf("segment analysis %s failed: %w", runID, err)
	}

	computed := 0
	for i := range results {
		if results[i].Result != nil {
			results[i].Result.RunID = runID
			computed++
		}
	}

	s.logger.Info("Segment analysis %s complete in %d ms (%d/%d segments computed)",
		runID, time.Since(started).Milliseconds(), computed, len(results))
	return results, nil
}

// Bayes runs the Monte Carlo posterior comparison on raw counts.
func (s *AnalysisService) Bayes(ctx context.Context, req BayesRequest) (*stats.BayesianResult, error) {
	sims := req.Simulations
	if sims <= 0 {
		sims = s.cfg.Bayes.Simulations
	}

	// The simulation loop itself is not cancellable, so refuse to start
	// one on an already-dead context.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bayesian comparison not started: %w", err)
	}

	s.logger.Info("Starting Bayesian comparison (%d simulations, seed %d)", sims, req.Seed)
	started := time.Now()

	src := s.rng.SeededSource("bayes", req.Seed)
	result, err := stattest.BayesianABTest(req.ConversionsA, req.SizeA, req.ConversionsB, req.SizeB, sims, src)
	if err != nil {
		return nil, fmt.Errorf("bayesian comparison failed: %w", err)
	}
	result.Seed = req.Seed

	s.logger.Info("Bayesian comparison complete in %d ms (P(B better)=%.4f)",
		time.Since(started).Milliseconds(), result.ProbBBetter)
	return result, nil
}

// Plan computes the required per-group sample size for a prospective test.
func (s *AnalysisService) Plan(req PlanRequest) (*PlanResult, error) {
	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.cfg.Analysis.Alpha
	}
	power := req.Power
	if power == 0 {
		power = s.cfg.Analysis.Power
	}
	mde := req.MDE
	if mde == 0 {
		mde = s.cfg.Analysis.MDE
	}

	perGroup, err := stattest.RequiredSampleSize(req.Baseline, mde, alpha, power)
	if err != nil {
		return nil, fmt.Errorf("sample size plan failed: %w", err)
	}

	s.logger.Info("Sample size plan: %d per group for baseline %.4f, mde %+.4f", perGroup, req.Baseline, mde)
	return &PlanResult{
		Baseline:   req.Baseline,
		TargetRate: req.Baseline * (1 + mde),
		MDE:        mde,
		Alpha:      alpha,
		Power:      power,
		PerGroup:   perGroup,
		Total:      2 * perGroup,
	}, nil
}
