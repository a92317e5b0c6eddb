package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goab/domain/core"
)

func sampleTable() *Table {
	return &Table{
		Headers: []string{"user_id", "group", "timestamp", "device", "converted", "revenue"},
		Rows: []RowData{
			{"user_id": "C_000001", "group": "A", "timestamp": "2025-03-01T10:00:00Z", "device": "mobile", "converted": "1", "revenue": "0.00"},
			{"user_id": "T_000001", "group": "B", "timestamp": "2025-03-02T11:30:00Z", "device": "desktop", "converted": "0", "revenue": ""},
			{"user_id": "T_000002", "group": "B", "timestamp": "2025-03-03", "device": "", "converted": "true", "revenue": "1249.50"},
		},
	}
}

func TestMapRecordsDefaults(t *testing.T) {
	schema := DefaultSchema()
	ds, skipped, err := MapRecords(sampleTable(), schema)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Equal(t, 3, ds.Len())

	first := ds.Records[0]
	assert.Equal(t, "C_000001", first.UserID)
	assert.Equal(t, "A", first.Group)
	assert.True(t, first.Converted)
	assert.Equal(t, "mobile", first.Segments["device"])
	assert.False(t, first.Timestamp.IsZero())

	second := ds.Records[1]
	assert.False(t, second.Converted)
	assert.Equal(t, 0.0, second.Revenue)

	third := ds.Records[2]
	assert.True(t, third.Converted)
	assert.Equal(t, 1249.50, third.Revenue)
	assert.False(t, third.Timestamp.IsZero(), "date-only timestamps should parse")
	assert.NotContains(t, third.Segments, "device", "blank segment cells should be dropped")
}

func TestMapRecordsSkipsBlankRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows,
		RowData{"user_id": "X_1", "group": "", "converted": "1"},
		RowData{"user_id": "X_2", "group": "A", "converted": ""},
	)

	ds, skipped, err := MapRecords(table, DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, 3, ds.Len())
}

func TestMapRecordsMissingColumns(t *testing.T) {
	table := &Table{
		Headers: []string{"user_id", "outcome"},
		Rows:    []RowData{{"user_id": "u1", "outcome": "1"}},
	}

	_, _, err := MapRecords(table, DefaultSchema())
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))

	schema := DefaultSchema()
	schema.GroupField = "user_id"
	_, _, err = MapRecords(table, schema)
	require.Error(t, err, "outcome column still missing")
	assert.True(t, core.IsInvalidInput(err))
}

func TestMapRecordsOutcomeSpellings(t *testing.T) {
	cases := []struct {
		cell string
		want bool
	}{
		{"1", true}, {"0", false},
		{"true", true}, {"FALSE", false},
		{"Yes", true}, {"no", false},
		{"Y", true}, {"n", false},
	}

	for _, c := range cases {
		table := &Table{
			Headers: []string{"group", "converted"},
			Rows:    []RowData{{"group": "A", "converted": c.cell}},
		}
		ds, _, err := MapRecords(table, DefaultSchema())
		require.NoError(t, err, "cell %q", c.cell)
		assert.Equal(t, c.want, ds.Records[0].Converted, "cell %q", c.cell)
	}
}

func TestMapRecordsBadOutcome(t *testing.T) {
	table := &Table{
		Headers: []string{"group", "converted"},
		Rows:    []RowData{{"group": "A", "converted": "maybe"}},
	}

	_, _, err := MapRecords(table, DefaultSchema())
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "maybe")
}

func TestMapRecordsBadRevenue(t *testing.T) {
	table := &Table{
		Headers: []string{"group", "converted", "revenue"},
		Rows:    []RowData{{"group": "A", "converted": "1", "revenue": "lots"}},
	}

	_, _, err := MapRecords(table, DefaultSchema())
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestMapRecordsUnparseableTimestamp(t *testing.T) {
	table := &Table{
		Headers: []string{"group", "converted", "timestamp"},
		Rows:    []RowData{{"group": "A", "converted": "1", "timestamp": "yesterday"}},
	}

	ds, _, err := MapRecords(table, DefaultSchema())
	require.NoError(t, err, "bad timestamps should not fail the load")
	assert.True(t, ds.Records[0].Timestamp.IsZero())
}
