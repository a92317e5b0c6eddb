package main

import (
	"context"
	"fmt"
	"os"

	"goab/adapters/tabular"
	"goab/app"
	"goab/domain/experiment"
	"goab/internal"
	"goab/internal/config"
	"goab/internal/datagen"
	"goab/internal/errors"
	"goab/internal/randsrc"
	"goab/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Best effort: CLI runs fine on plain process env.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "goab",
		Short: "Frequentist and Bayesian A/B test analysis for binary outcomes",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newSegmentsCmd(),
		newBayesCmd(),
		newPlanCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var input string
	var control string
	var treatment string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full two-proportion analysis on a CSV or XLSX dataset",
		Long: `Run the full two-proportion analysis on a tabular dataset: z-test,
chi-square, confidence intervals, effect size and achieved power.

The file needs group and converted columns; segment, revenue and timestamp
columns are picked up when present.

Example: goab analyze --input funnel.csv --control A --treatment B --alpha 0.05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			return runAnalyze(cmd.Context(), input, control, treatment, alpha)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to a .csv or .xlsx dataset")
	cmd.Flags().StringVar(&control, "control", "", "Control group label (default from config)")
	cmd.Flags().StringVar(&treatment, "treatment", "", "Treatment group label (default from config)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "Significance level (default from config)")

	return cmd
}

func newSegmentsCmd() *cobra.Command {
	var input string
	var by string
	var parallel int64
	var alpha float64

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Break the analysis down by a segment column",
		Long: `Run the full analysis once per distinct value of a segment column.
Segments too thin to analyze are flagged instead of failing the batch.

Example: goab segments --input funnel.csv --by device --parallel 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			if by == "" {
				return fmt.Errorf("--by is required")
			}
			return runSegments(cmd.Context(), input, by, parallel, alpha)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to a .csv or .xlsx dataset")
	cmd.Flags().StringVar(&by, "by", "", "Segment column to split on (e.g. device)")
	cmd.Flags().Int64Var(&parallel, "parallel", 0, "Concurrent segment analyses (default from config)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "Significance level (default from config)")

	return cmd
}

func newBayesCmd() *cobra.Command {
	var req app.BayesRequest

	cmd := &cobra.Command{
		Use:   "bayes",
		Short: "Compare two groups with a Beta-Binomial Monte Carlo simulation",
		Long: `Compare conversion counts under uniform Beta priors. Reports the
probability each group is better and the expected loss of picking it.

Example: goab bayes --conversions-a 100 --size-a 1000 --conversions-b 120 --size-b 1000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBayes(cmd.Context(), req)
		},
	}

	cmd.Flags().IntVar(&req.ConversionsA, "conversions-a", 0, "Conversions in group A")
	cmd.Flags().IntVar(&req.SizeA, "size-a", 0, "Sample size of group A")
	cmd.Flags().IntVar(&req.ConversionsB, "conversions-b", 0, "Conversions in group B")
	cmd.Flags().IntVar(&req.SizeB, "size-b", 0, "Sample size of group B")
	cmd.Flags().IntVar(&req.Simulations, "sims", 0, "Monte Carlo draws (default from config)")
	cmd.Flags().Int64Var(&req.Seed, "seed", 42, "RNG seed for reproducible draws")

	return cmd
}

func newPlanCmd() *cobra.Command {
	var req app.PlanRequest

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the per-group sample size an experiment needs",
		Long: `Compute the per-group sample size needed to detect a relative lift
over a baseline rate at the requested significance and power.

Example: goab plan --baseline 0.12 --mde 0.10 --alpha 0.05 --power 0.8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(req)
		},
	}

	cmd.Flags().Float64Var(&req.Baseline, "baseline", 0, "Baseline conversion rate, in (0,1)")
	cmd.Flags().Float64Var(&req.MDE, "mde", 0, "Minimum detectable relative effect (default from config)")
	cmd.Flags().Float64Var(&req.Alpha, "alpha", 0, "Significance level (default from config)")
	cmd.Flags().Float64Var(&req.Power, "power", 0, "Target power (default from config)")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var users int
	var seed int64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic dataset and run the whole pipeline on it",
		Long: `Generate a deterministic synthetic funnel dataset in memory and run
everything against it: full test, segment breakdowns, Bayesian comparison,
sample-size plan and revenue summaries.

Example: goab demo --users 2000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("users") && users <= 0 {
				return fmt.Errorf("--users must be > 0")
			}
			return runDemo(cmd.Context(), users, seed, cmd.Flags().Changed("seed"))
		},
	}

	cmd.Flags().IntVar(&users, "users", 0, "Number of synthetic users (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed for deterministic generation")

	return cmd
}

func runAnalyze(ctx context.Context, input, control, treatment string, alpha float64) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if control != "" {
		cfg.Analysis.ControlLabel = control
	}
	if treatment != "" {
		cfg.Analysis.TreatmentLabel = treatment
	}

	logger := internal.NewDefaultLogger()
	svc := app.NewAnalysisService(cfg, logger, randsrc.New())
	src := tabular.NewFileSource(input, schemaFromConfig(cfg), logger.Scoped("reader"))

	result, err := svc.Analyze(ctx, src, app.AnalyzeRequest{Alpha: alpha})
	if err != nil {
		return errors.Wrap(err, "analyze failed")
	}

	report.NewConsole(os.Stdout).RenderTest(result)
	return nil
}

func runSegments(ctx context.Context, input, by string, parallel int64, alpha float64) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if parallel > 0 {
		cfg.Analysis.SegmentParallelism = parallel
	}

	logger := internal.NewDefaultLogger()
	svc := app.NewAnalysisService(cfg, logger, randsrc.New())
	src := tabular.NewFileSource(input, schemaFromConfig(cfg), logger.Scoped("reader"))

	results, err := svc.Segments(ctx, src, app.SegmentRequest{Key: by, Alpha: alpha})
	if err != nil {
		return errors.Wrap(err, "segment analysis failed")
	}

	report.NewConsole(os.Stdout).RenderSegments(by, results)
	return nil
}

func runBayes(ctx context.Context, req app.BayesRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	svc := app.NewAnalysisService(cfg, internal.NewDefaultLogger(), randsrc.New())

	result, err := svc.Bayes(ctx, req)
	if err != nil {
		return errors.Wrap(err, "bayesian comparison failed")
	}

	report.NewConsole(os.Stdout).RenderBayes(result)
	return nil
}

func runPlan(req app.PlanRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	svc := app.NewAnalysisService(cfg, internal.NewDefaultLogger(), randsrc.New())

	result, err := svc.Plan(req)
	if err != nil {
		return errors.Wrap(err, "planning failed")
	}

	report.NewConsole(os.Stdout).RenderPlan(result.Baseline, result.MDE, result.Alpha, result.Power, result.PerGroup)
	return nil
}

func runDemo(ctx context.Context, users int, seed int64, seedSet bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if users == 0 {
		users = cfg.Generator.Users
	}
	if !seedSet {
		seed = cfg.Generator.Seed
	}

	genCfg := datagen.DefaultConfig()
	genCfg.Users = users
	genCfg.Seed = seed
	genCfg.ControlLabel = cfg.Analysis.ControlLabel
	genCfg.TreatmentLabel = cfg.Analysis.TreatmentLabel

	logger := internal.NewDefaultLogger()
	svc := app.NewAnalysisService(cfg, logger, randsrc.New())

	ds, err := datagen.NewSyntheticSource(genCfg).Load(ctx)
	if err != nil {
		return errors.Wrap(err, "demo data generation failed")
	}
	src := &memorySource{ds: ds, name: fmt.Sprintf("synthetic demo (%d users, seed %d)", users, seed)}

	console := report.NewConsole(os.Stdout)

	result, err := svc.Analyze(ctx, src, app.AnalyzeRequest{})
	if err != nil {
		return errors.Wrap(err, "demo analysis failed")
	}
	console.RenderTest(result)

	for _, key := range []string{"device", "user_type"} {
		segments, err := svc.Segments(ctx, src, app.SegmentRequest{Key: key})
		if err != nil {
			return errors.Wrap(err, "demo segment analysis failed")
		}
		console.RenderSegments(key, segments)
	}

	control := ds.Summarize(cfg.Analysis.ControlLabel)
	treatment := ds.Summarize(cfg.Analysis.TreatmentLabel)

	bayes, err := svc.Bayes(ctx, app.BayesRequest{
		ConversionsA: control.Conversions,
		SizeA:        control.Size,
		ConversionsB: treatment.Conversions,
		SizeB:        treatment.Size,
		Seed:         seed,
	})
	if err != nil {
		return errors.Wrap(err, "demo bayesian comparison failed")
	}
	console.RenderBayes(bayes)

	plan, err := svc.Plan(app.PlanRequest{Baseline: control.Rate()})
	if err != nil {
		return errors.Wrap(err, "demo planning failed")
	}
	console.RenderPlan(plan.Baseline, plan.MDE, plan.Alpha, plan.Power, plan.PerGroup)

	for _, label := range []string{cfg.Analysis.ControlLabel, cfg.Analysis.TreatmentLabel} {
		summary, err := report.SummarizeRevenue(ds, label)
		if err != nil {
			return errors.Wrap(err, "demo revenue summary failed")
		}
		console.RenderRevenue(label, summary)
	}

	return nil
}

func schemaFromConfig(cfg *config.Config) tabular.Schema {
	schema := tabular.DefaultSchema()
	if cfg.Analysis.GroupField != "" {
		schema.GroupField = cfg.Analysis.GroupField
	}
	if cfg.Analysis.OutcomeField != "" {
		schema.OutcomeField = cfg.Analysis.OutcomeField
	}
	return schema
}

// memorySource serves an already-loaded dataset, so the demo pipeline runs
// every stage against the exact same records.
type memorySource struct {
	ds   *experiment.Dataset
	name string
}

func (m *memorySource) Load(context.Context) (*experiment.Dataset, error) {
	return m.ds, nil
}

func (m *memorySource) Describe() string {
	return m.name
}
