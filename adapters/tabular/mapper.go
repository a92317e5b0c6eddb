package tabular

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"goab/domain/core"
	"goab/domain/experiment"
)

// Schema names the columns the mapper pulls record fields from. Only
// GroupField and OutcomeField are required; everything else is optional
// and skipped when the column is absent.
type Schema struct {
	GroupField   string
	OutcomeField string

	SegmentFields  []string
	RevenueField   string
	UserIDField    string
	TimestampField string
}

// DefaultSchema matches the columns the dataset generator writes.
func DefaultSchema() Schema {
	return Schema{
		GroupField:     "group",
		OutcomeField:   "converted",
		SegmentFields:  []string{"device", "user_type", "age_group"},
		RevenueField:   "revenue",
		UserIDField:    "user_id",
		TimestampField: "timestamp",
	}
}

// timestampFormats are tried in order when parsing the timestamp column.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MapRecords converts a raw table into a typed dataset. Rows whose group or
// outcome cell is blank are skipped and counted; a non-blank outcome that
// parses as neither boolean nor 0/1 is an error.
func MapRecords(t *Table, s Schema) (*experiment.Dataset, int, error) {
	if !hasHeader(t, s.GroupField) {
		return nil, 0, core.NewInvalidInputError("group column", fmt.Sprintf("%q not found in %v", s.GroupField, t.Headers))
	}
	if !hasHeader(t, s.OutcomeField) {
		return nil, 0, core.NewInvalidInputError("outcome column", fmt.Sprintf("%q not found in %v", s.OutcomeField, t.Headers))
	}

	records := make([]experiment.Record, 0, len(t.Rows))
	skipped := 0

	for i, row := range t.Rows {
		group := row[s.GroupField]
		outcome := row[s.OutcomeField]
		if group == "" || outcome == "" {
			skipped++
			continue
		}

		converted, err := parseOutcome(outcome)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i+1, err)
		}

		rec := experiment.Record{
			Group:     group,
			Converted: converted,
		}
		if s.UserIDField != "" {
			rec.UserID = row[s.UserIDField]
		}
		if s.RevenueField != "" {
			if cell := row[s.RevenueField]; cell != "" {
				revenue, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, 0, fmt.Errorf("row %d: %w", i+1,
						core.NewInvalidInputError("revenue", fmt.Sprintf("cannot parse %q", cell)))
				}
				rec.Revenue = revenue
			}
		}
		if s.TimestampField != "" {
			if ts, ok := parseTimestamp(row[s.TimestampField]); ok {
				rec.Timestamp = core.NewTimestamp(ts)
			}
		}
		for _, field := range s.SegmentFields {
			if v := row[field]; v != "" {
				if rec.Segments == nil {
					rec.Segments = make(map[string]string, len(s.SegmentFields))
				}
				rec.Segments[field] = v
			}
		}

		records = append(records, rec)
	}

	return experiment.NewDataset(records), skipped, nil
}

func hasHeader(t *Table, name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// parseOutcome interprets the conversion cell. Accepts 1/0, true/false and
// yes/no in any case.
func parseOutcome(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	default:
		return false, core.NewInvalidInputError("outcome", fmt.Sprintf("cannot interpret %q as a conversion flag", v))
	}
}

// parseTimestamp tries the known formats. Unparseable cells are left zero
// rather than failing the whole load.
func parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
