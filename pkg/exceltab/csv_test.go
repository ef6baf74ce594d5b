package exceltab

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCSV(t *testing.T) {
	rows := []ledgerRow{
		{Name: "A", Amount: 10.5, Region: "east", Paid: true, IssuedOn: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{Name: "B", Amount: 20, Region: "west"},
	}
	out, err := GenerateCSV(rows)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Name", "Amount", "Region", "Paid", "Issued"}, records[0])
	assert.Equal(t, []string{"A", "10.5", "east", "SI", "15/03/2024"}, records[1])
	assert.Equal(t, []string{"B", "20", "west", "NO", ""}, records[2])
}

func TestGenerateCSVRejectsEmptyInput(t *testing.T) {
	_, err := GenerateCSV([]ledgerRow{})
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = GenerateCSV(42)
	assert.ErrorAs(t, err, &cfgErr)
}
