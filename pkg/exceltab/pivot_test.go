package exceltab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pivotLedger() []ledgerRow {
	return []ledgerRow{
		{Name: "A", Amount: 10, Region: "east"},
		{Name: "B", Amount: 20, Region: "west"},
		{Name: "C", Amount: 30, Region: "east"},
	}
}

func TestPivotFirstSeenOrder(t *testing.T) {
	table := &Table{
		Rows: pivotLedger(),
		Pivot: &Pivot{
			Title:      "By region",
			Conditions: []string{"Region"},
			Values:     []string{"Amount"},
		},
	}
	data, err := NewBuilder(Options{}).GenerateTables(table)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	// table rows 1..5, one blank, then title and header
	title, err := f.GetCellValue("Sheet1", "A7")
	require.NoError(t, err)
	assert.Equal(t, "By region", title)

	first, err := f.GetCellValue("Sheet1", "A9")
	require.NoError(t, err)
	second, err := f.GetCellValue("Sheet1", "A10")
	require.NoError(t, err)
	assert.Equal(t, []string{"east", "west"}, []string{first, second},
		"groups must keep first-seen order")

	formula, err := f.GetCellFormula("Sheet1", "B9")
	require.NoError(t, err)
	assert.Equal(t, `SUMIFS(B3:B5,C3:C5,"east")`, formula)
}

func TestPivotOnAnotherSheet(t *testing.T) {
	table := &Table{
		Rows: pivotLedger(),
		Pivot: &Pivot{
			Sheet:      "Summary",
			Title:      "By region",
			Conditions: []string{"Region"},
			Values:     []string{"Amount"},
		},
	}
	data, err := NewBuilder(Options{}).GenerateTables(table)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	formula, err := f.GetCellFormula("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, `SUMIFS(Sheet1!B3:B5,Sheet1!C3:C5,"east")`, formula)
}

func TestPivotTrailingSpecial(t *testing.T) {
	table := &Table{
		Rows: pivotLedger(),
		Pivot: &Pivot{
			Title:      "By region",
			Conditions: []string{"Region"},
			Values:     []string{"Amount"},
			Special:    &SpecialField{Label: "Total"},
		},
	}
	data, err := NewBuilder(Options{}).GenerateTables(table)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	label, err := f.GetCellValue("Sheet1", "A11")
	require.NoError(t, err)
	assert.Equal(t, "Total", label)
	formula, err := f.GetCellFormula("Sheet1", "B11")
	require.NoError(t, err)
	assert.Equal(t, "SUM(B9:B10)", formula)
}

func TestPivotGroupsBlankConditionAsEmptyString(t *testing.T) {
	table := &Table{
		Rows: []ledgerRow{
			{Name: "A", Amount: 10, Region: "east"},
			{Name: "B", Amount: 20},
		},
		Pivot: &Pivot{
			Title:      "By region",
			Conditions: []string{"Region"},
			Values:     []string{"Amount"},
		},
	}
	data, err := NewBuilder(Options{}).GenerateTables(table)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	blank, err := f.GetCellValue("Sheet1", "A9")
	require.NoError(t, err)
	second, err := f.GetCellValue("Sheet1", "A8")
	require.NoError(t, err)
	assert.Equal(t, "east", second)
	assert.Empty(t, blank)

	formula, err := f.GetCellFormula("Sheet1", "B9")
	require.NoError(t, err)
	assert.Equal(t, `SUMIFS(B3:B4,C3:C4,"")`, formula,
		"records without a region must sum under the empty criteria")
}

func TestPivotUnknownConditionColumnIsSkipped(t *testing.T) {
	table := &Table{
		Rows: pivotLedger(),
		Pivot: &Pivot{
			Title:      "By region",
			Conditions: []string{"NoSuchColumn"},
			Values:     []string{"Amount"},
		},
	}
	data, err := NewBuilder(Options{}).GenerateTables(table)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 5, "pivot with unresolvable condition must be omitted")
}
