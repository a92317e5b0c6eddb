// Package report renders analysis results for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	domainstats "goab/domain/stats"
)

// Console writes sectioned plain-text reports to a single writer.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// RenderTest prints the full frequentist readout.
func (c *Console) RenderTest(result *domainstats.TestResult) {
	fmt.Fprintf(c.out, "\n=== A/B TEST RESULTS ===\n")
	if result.RunID != "" {
		fmt.Fprintf(c.out, "Run ID: %s\n", result.RunID)
	}
	fmt.Fprintf(c.out, "Control (%s): %d/%d converted (%.2f%%)\n",
		result.Control.Label, result.Control.Conversions, result.Control.Size, result.Rates.ControlRate*100)
	fmt.Fprintf(c.out, "Treatment (%s): %d/%d converted (%.2f%%)\n",
		result.Treatment.Label, result.Treatment.Conversions, result.Treatment.Size, result.Rates.TreatmentRate*100)
	fmt.Fprintf(c.out, "Relative Lift: %+.2f%%\n", result.Rates.Lift*100)

	fmt.Fprintf(c.out, "\nZ-Score: %.4f\n", result.ZScore)
	fmt.Fprintf(c.out, "P-Value: %.4f\n", result.PValue)
	fmt.Fprintf(c.out, "Significant: %t (alpha=%.3f)\n", result.Significant, result.Alpha)
	fmt.Fprintf(c.out, "Control CI: [%.4f, %.4f]\n", result.ControlCI.Lower, result.ControlCI.Upper)
	fmt.Fprintf(c.out, "Treatment CI: [%.4f, %.4f]\n", result.TreatmentCI.Lower, result.TreatmentCI.Upper)
	fmt.Fprintf(c.out, "Effect Size (Cohen's h): %.4f (%s)\n", result.EffectSize, result.Magnitude)
	fmt.Fprintf(c.out, "Statistical Power: %.4f\n", result.Power)
	fmt.Fprintf(c.out, "Runtime: %d ms\n", result.RuntimeMs)

	if len(result.Warnings) > 0 {
		fmt.Fprintf(c.out, "\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(c.out, "  - %s\n", w)
		}
	}
}

// RenderSegments prints one table row per segment. Insufficient segments
// show their reason instead of numbers.
func (c *Console) RenderSegments(key string, results []domainstats.SegmentResult) {
	fmt.Fprintf(c.out, "\n=== SEGMENT ANALYSIS: %s ===\n", key)

	table := tablewriter.NewWriter(c.out)
	table.Header("Segment", "Control", "Treatment", "Lift", "P-Value", "Sig", "Note")

	for _, r := range results {
		if r.Insufficient {
			table.Append(r.Segment, "-", "-", "-", "-", "-", r.Reason)
			continue
		}
		res := r.Result
		table.Append(
			r.Segment,
			fmt.Sprintf("%d/%d (%.2f%%)", res.Control.Conversions, res.Control.Size, res.Rates.ControlRate*100),
			fmt.Sprintf("%d/%d (%.2f%%)", res.Treatment.Conversions, res.Treatment.Size, res.Rates.TreatmentRate*100),
			fmt.Sprintf("%+.2f%%", res.Rates.Lift*100),
			fmt.Sprintf("%.4f", res.PValue),
			sigMark(res.Significant),
			"",
		)
	}

	table.Render()
}

// RenderBayes prints the posterior comparison.
func (c *Console) RenderBayes(b *domainstats.BayesianResult) {
	fmt.Fprintf(c.out, "\n=== BAYESIAN ANALYSIS ===\n")
	fmt.Fprintf(c.out, "P(A better): %.4f\n", b.ProbABetter)
	fmt.Fprintf(c.out, "P(B better): %.4f\n", b.ProbBBetter)
	fmt.Fprintf(c.out, "Expected Loss (choose A): %.6f\n", b.ExpectedLossA)
	fmt.Fprintf(c.out, "Expected Loss (choose B): %.6f\n", b.ExpectedLossB)
	fmt.Fprintf(c.out, "Posterior Mean A: %.4f\n", b.PosteriorMeanA)
	fmt.Fprintf(c.out, "Posterior Mean B: %.4f\n", b.PosteriorMeanB)
	fmt.Fprintf(c.out, "Simulations: %d (seed %d)\n", b.Simulations, b.Seed)
}

// RenderPlan prints a sample size plan for a prospective experiment.
func (c *Console) RenderPlan(baseline, mde, alpha, power float64, perGroup int) {
	fmt.Fprintf(c.out, "\n=== SAMPLE SIZE PLAN ===\n")
	fmt.Fprintf(c.out, "Baseline Rate: %.2f%%\n", baseline*100)
	fmt.Fprintf(c.out, "Minimum Detectable Effect: %+.2f%% (relative)\n", mde*100)
	fmt.Fprintf(c.out, "Target Rate: %.2f%%\n", baseline*(1+mde)*100)
	fmt.Fprintf(c.out, "Alpha: %.3f\n", alpha)
	fmt.Fprintf(c.out, "Power: %.2f\n", power)
	fmt.Fprintf(c.out, "Required Sample Size: %d per group (%d total)\n", perGroup, 2*perGroup)
}

// RenderRevenue prints descriptive statistics for one group's purchasers.
func (c *Console) RenderRevenue(label string, s *domainstats.RevenueSummary) {
	fmt.Fprintf(c.out, "\n=== REVENUE: %s ===\n", label)
	if s.Purchasers == 0 {
		fmt.Fprintf(c.out, "No purchasers.\n")
		return
	}
	fmt.Fprintf(c.out, "Purchasers: %d\n", s.Purchasers)
	fmt.Fprintf(c.out, "Mean: %.2f  StdDev: %.2f\n", s.Mean, s.StdDev)
	fmt.Fprintf(c.out, "Min: %.2f  Q25: %.2f  Median: %.2f  Q75: %.2f  Max: %.2f\n",
		s.Min, s.Q25, s.Median, s.Q75, s.Max)
}

func sigMark(significant bool) string {
	if significant {
		return "YES"
	}
	return "no"
}
