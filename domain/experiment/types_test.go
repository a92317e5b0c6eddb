package experiment

import (
	"testing"

	"goab/domain/core"
)

func sampleRecords() []Record {
	return []Record{
		{UserID: "C_000001", Group: "A", Converted: true, Segments: map[string]string{"device": "mobile"}},
		{UserID: "C_000002", Group: "A", Converted: false, Segments: map[string]string{"device": "desktop"}},
		{UserID: "C_000003", Group: "A", Converted: false, Segments: map[string]string{"device": "mobile"}},
		{UserID: "T_000001", Group: "B", Converted: true, Segments: map[string]string{"device": "mobile"}},
		{UserID: "T_000002", Group: "B", Converted: true, Segments: map[string]string{"device": "tablet"}},
	}
}

// TestSummarize tests conversion counting per group label
func TestSummarize(t *testing.T) {
	ds := NewDataset(sampleRecords())

	control := ds.Summarize("A")
	if control.Size != 3 {
		t.Errorf("Expected control size 3, got %d", control.Size)
	}
	if control.Conversions != 1 {
		t.Errorf("Expected 1 control conversion, got %d", control.Conversions)
	}

	treatment := ds.Summarize("B")
	if treatment.Size != 2 || treatment.Conversions != 2 {
		t.Errorf("Expected treatment 2/2, got %d/%d", treatment.Conversions, treatment.Size)
	}

	missing := ds.Summarize("C")
	if missing.Size != 0 {
		t.Errorf("Expected unknown group to be empty, got size %d", missing.Size)
	}
}

// TestSegmentValuesSorted tests that segment values come back sorted and deduplicated
func TestSegmentValuesSorted(t *testing.T) {
	ds := NewDataset(sampleRecords())

	values := ds.SegmentValues(core.SegmentKey("device"))
	expected := []string{"desktop", "mobile", "tablet"}
	if len(values) != len(expected) {
		t.Fatalf("Expected %d segment values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("Expected value %q at position %d, got %q", expected[i], i, v)
		}
	}

	none := ds.SegmentValues(core.SegmentKey("country"))
	if len(none) != 0 {
		t.Errorf("Expected no values for unknown key, got %v", none)
	}
}

// TestFilterSegment tests sub-dataset extraction by segment value
func TestFilterSegment(t *testing.T) {
	ds := NewDataset(sampleRecords())

	mobile := ds.FilterSegment(core.SegmentKey("device"), "mobile")
	if mobile.Len() != 3 {
		t.Errorf("Expected 3 mobile records, got %d", mobile.Len())
	}
	for _, r := range mobile.Records {
		if r.Segments["device"] != "mobile" {
			t.Errorf("Record %s leaked into mobile segment", r.UserID)
		}
	}
}

// TestGroupSummaryValidate tests summary invariants
func TestGroupSummaryValidate(t *testing.T) {
	tests := []struct {
		name     string
		summary  GroupSummary
		hasError bool
	}{
		{"valid", GroupSummary{Label: "A", Conversions: 10, Size: 100}, false},
		{"zero conversions", GroupSummary{Label: "A", Conversions: 0, Size: 100}, false},
		{"all converted", GroupSummary{Label: "A", Conversions: 100, Size: 100}, false},
		{"zero size", GroupSummary{Label: "A", Conversions: 0, Size: 0}, true},
		{"negative conversions", GroupSummary{Label: "A", Conversions: -1, Size: 100}, true},
		{"conversions exceed size", GroupSummary{Label: "A", Conversions: 101, Size: 100}, true},
	}

	for _, test := range tests {
		err := test.summary.Validate()
		if test.hasError && err == nil {
			t.Errorf("%s: expected error, got none", test.name)
		}
		if !test.hasError && err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
		}
		if test.hasError && err != nil && !core.IsInvalidInput(err) {
			t.Errorf("%s: expected invalid input classification, got %v", test.name, err)
		}
	}
}

// TestGroupSummaryRate tests the observed rate computation
func TestGroupSummaryRate(t *testing.T) {
	s := GroupSummary{Label: "A", Conversions: 25, Size: 200}
	if got := s.Rate(); got != 0.125 {
		t.Errorf("Expected rate 0.125, got %f", got)
	}
}
