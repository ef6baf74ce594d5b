package exceltab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
options:
  font_name: Arial
  header_color: FFEECC
  orientation: horizontal
  table_gap: 3
columns:
  - title: Importo
    field: Amount
    category: currency
    required: true
  - title: Stato
    special: true
    aliases: [STOP, FINE]
`))
	require.NoError(t, err)
	assert.Equal(t, "Arial", cfg.Options.FontName)
	assert.Equal(t, Horizontal, cfg.Options.Orientation)
	assert.Equal(t, 3, cfg.Options.TableGap)
	require.Len(t, cfg.Columns, 2)
	assert.Equal(t, "Amount", cfg.Columns[0].Field)
	assert.Equal(t, CategoryCurrency, cfg.Columns[0].Category)
	assert.True(t, cfg.Columns[0].Required)
	assert.True(t, cfg.Columns[1].Special)
	assert.Equal(t, []string{"STOP", "FINE"}, cfg.Columns[1].Aliases)
}

func TestLoadConfigDefaultsToVertical(t *testing.T) {
	cfg, err := LoadConfig([]byte("columns:\n  - title: Nome\n    field: Name\n"))
	require.NoError(t, err)
	assert.Equal(t, Vertical, cfg.Options.Orientation)
}

func TestLoadConfigRejectsUnknownOrientation(t *testing.T) {
	_, err := LoadConfig([]byte("options:\n  orientation: diagonal\n"))
	require.Error(t, err)
}

func TestLoadConfigRejectsColumnWithoutField(t *testing.T) {
	_, err := LoadConfig([]byte("columns:\n  - title: Nome\n"))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
