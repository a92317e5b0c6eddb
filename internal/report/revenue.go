package report

import (
	"github.com/montanaflynn/stats"

	"goab/domain/experiment"
	domainstats "goab/domain/stats"
)

// SummarizeRevenue computes descriptive statistics over the revenue of one
// group's purchasers. A group with no purchasers yields a zero summary.
func SummarizeRevenue(ds *experiment.Dataset, group string) (*domainstats.RevenueSummary, error) {
	data := make([]float64, 0, ds.Len())
	for _, r := range ds.Records {
		if r.Group == group && r.Converted && r.Revenue > 0 {
			data = append(data, r.Revenue)
		}
	}

	summary := &domainstats.RevenueSummary{Purchasers: len(data)}
	if len(data) == 0 {
		return summary, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return nil, err
	}
	minimum, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	// Percentile rejects fractional indexes at or below 1, so quartiles
	// need at least four values. Below that the extremes stand in.
	q25, q75 := minimum, maximum
	if len(data) >= 4 {
		if q25, err = stats.Percentile(data, 25); err != nil {
			return nil, err
		}
		if q75, err = stats.Percentile(data, 75); err != nil {
			return nil, err
		}
	}

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = minimum
	summary.Max = maximum
	summary.Median = median
	summary.Q25 = q25
	summary.Q75 = q75
	return summary, nil
}
