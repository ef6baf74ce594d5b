package exceltab

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildSheet writes plain rows starting at A1 and returns the
// workbook bytes.
func buildSheet(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExportImportRoundTrip(t *testing.T) {
	issued := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	out := []ledgerRow{
		{Name: "A", Amount: 10.5, Region: "east", Paid: true, IssuedOn: issued},
		{Name: "B", Amount: 20, Region: "west"},
	}
	data, err := NewBuilder(Options{}).GenerateSimple(out)
	require.NoError(t, err)

	cols, err := ColumnsFor(ledgerRow{})
	require.NoError(t, err)
	// skip the merged title row
	in, err := ReadRecords[ledgerRow](data, cols, ImportOptions{StartRow: 1})
	require.NoError(t, err)
	require.Len(t, in, 2)

	assert.Equal(t, "A", in[0].Name)
	assert.Equal(t, 10.5, in[0].Amount)
	assert.Equal(t, "east", in[0].Region)
	assert.True(t, in[0].Paid)
	assert.Equal(t, "15/03/2024", in[0].IssuedOn.Format(defaultDateFormat))

	assert.Equal(t, "B", in[1].Name)
	assert.False(t, in[1].Paid)
	assert.True(t, in[1].IssuedOn.IsZero())
}

func TestHeaderMatchingIsFuzzy(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Full name (surname first)", "Total amount"},
		{"A", 10},
	})
	cols := []ImportColumn{
		{Title: "name", Field: "Name", Required: true},
		{Title: "amount", Field: "Amount"},
	}
	in, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "A", in[0].Name)
	assert.Equal(t, float64(10), in[0].Amount)
}

func TestMissingRequiredColumn(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Amount"},
		{10},
	})
	cols := []ImportColumn{
		{Title: "Name", Field: "Name", Required: true},
		{Title: "Amount", Field: "Amount"},
	}
	_, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.Error(t, err)
	var missing *MissingRequiredColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Name", missing.Title)
}

func TestMissingRequiredValue(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Name", "Amount"},
		{"", 10},
	})
	cols := []ImportColumn{
		{Title: "Name", Field: "Name", Required: true},
		{Title: "Amount", Field: "Amount"},
	}
	_, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.Error(t, err)
	var missing *MissingRequiredValueError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 2, missing.Row)
}

func TestSpecialSentinelHaltsSheet(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Name", "Amount"},
		{"A", 1},
		{"STOP"},
		{"B", 2},
	})
	cols := []ImportColumn{
		{Title: "Name", Field: "Name"},
		{Title: "Amount", Field: "Amount"},
		{Title: "Stato", Special: true, Aliases: []string{"STOP"}},
	}
	in, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, in, 1, "sentinel row and everything after it must be dropped")
	assert.Equal(t, "A", in[0].Name)
}

func TestEmptyRowsAreDropped(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Name", "Amount"},
		{"A", 1},
		{},
		{"B", 2},
	})
	cols := []ImportColumn{
		{Title: "Name", Field: "Name"},
		{Title: "Amount", Field: "Amount"},
	}
	in, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, in, 2)
	assert.Equal(t, "B", in[1].Name)
}

func TestCoercionFailureOnOptionalColumnRecovers(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Name", "Amount"},
		{"A", "not a number"},
	})
	cols := []ImportColumn{
		{Title: "Name", Field: "Name"},
		{Title: "Amount", Field: "Amount"},
	}
	in, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Zero(t, in[0].Amount)
}

func TestCoercionFailureOnRequiredColumnFails(t *testing.T) {
	data := buildSheet(t, [][]interface{}{
		{"Name", "Amount"},
		{"A", "not a number"},
	})
	cols := []ImportColumn{
		{Title: "Name", Field: "Name"},
		{Title: "Amount", Field: "Amount", Required: true},
	}
	_, err := ReadRecords[ledgerRow](data, cols, ImportOptions{})
	require.Error(t, err)
	var coercion *CellCoercionError
	require.True(t, errors.As(err, &coercion))
	assert.Equal(t, "Amount", coercion.Title)
}

func TestReadRecordsWithGeneralities(t *testing.T) {
	type searchParams struct {
		Customer string
		From     time.Time
	}
	data := buildSheet(t, [][]interface{}{
		{"Customer", "ACME"},
		{"From", "15/03/2024"},
		{},
		{"Name", "Amount"},
		{"A", 1},
		{"B", 2},
	})
	generalCols := []ImportColumn{
		{Title: "Customer", Field: "Customer"},
		{Title: "From", Field: "From"},
	}
	cols := []ImportColumn{
		{Title: "Name", Field: "Name"},
		{Title: "Amount", Field: "Amount"},
	}
	general, in, err := ReadRecordsWithGeneralities[searchParams, ledgerRow](data, generalCols, cols, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ACME", general.Customer)
	assert.Equal(t, "15/03/2024", general.From.Format(defaultDateFormat))
	require.Len(t, in, 2)
	assert.Equal(t, float64(2), in[1].Amount)
}

func TestReadRecordsWithoutColumnsIsConfigurationError(t *testing.T) {
	data := buildSheet(t, [][]interface{}{{"Name"}})
	_, err := ReadRecords[ledgerRow](data, nil, ImportOptions{})
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}
