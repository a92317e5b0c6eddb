package experiment

import (
	"fmt"
	"sort"

	"goab/domain/core"
)

// Record is one unit of observation: a user assigned to a group, with a
// binary outcome and optional segment attributes.
type Record struct {
	UserID    string            `json:"user_id"`
	Group     string            `json:"group"`
	Converted bool              `json:"converted"`
	Segments  map[string]string `json:"segments,omitempty"`
	Revenue   float64           `json:"revenue,omitempty"`
	Timestamp core.Timestamp    `json:"timestamp"`
}

// Dataset is an ordered collection of records. Order is preserved from the
// source so fingerprints and segment breakdowns stay deterministic.
type Dataset struct {
	Records []Record `json:"records"`
}

// NewDataset wraps records without copying.
func NewDataset(records []Record) *Dataset {
	return &Dataset{Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Filter returns the records assigned to the given group label.
func (d *Dataset) Filter(group string) []Record {
	out := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if r.Group == group {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts conversions for one group label.
func (d *Dataset) Summarize(group string) GroupSummary {
	summary := GroupSummary{Label: group}
	for _, r := range d.Records {
		if r.Group != group {
			continue
		}
		summary.Size++
		if r.Converted {
			summary.Conversions++
		}
	}
	return summary
}

// SegmentValues returns the distinct values recorded under a segment key,
// sorted ascending. Records without the key are ignored.
func (d *Dataset) SegmentValues(key core.SegmentKey) []string {
	seen := make(map[string]bool)
	for _, r := range d.Records {
		if v, ok := r.Segments[key.String()]; ok && v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// FilterSegment returns the sub-dataset whose records carry value under key.
func (d *Dataset) FilterSegment(key core.SegmentKey, value string) *Dataset {
	out := make([]Record, 0)
	for _, r := range d.Records {
		if r.Segments[key.String()] == value {
			out = append(out, r)
		}
	}
	return NewDataset(out)
}

// GroupSummary is the sufficient statistic for a binary-outcome group.
type GroupSummary struct {
	Label       string `json:"label"`
	Conversions int    `json:"conversions"`
	Size        int    `json:"size"`
}

// Rate returns the observed conversion rate. Zero-size summaries are rejected
// by Validate before any rate is read.
func (g GroupSummary) Rate() float64 {
	if g.Size == 0 {
		return 0
	}
	return float64(g.Conversions) / float64(g.Size)
}

// Validate checks the summary invariants.
func (g GroupSummary) Validate() error {
	if g.Size <= 0 {
		return core.NewInvalidInputError("size", fmt.Sprintf("must be positive, got %d", g.Size))
	}
	if g.Conversions < 0 || g.Conversions > g.Size {
		return core.NewConversionBoundsError(g.Conversions, g.Size)
	}
	return nil
}
