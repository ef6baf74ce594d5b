package exceltab

// Orientation controls how records are laid out on a sheet.
type Orientation int

const (
	// Vertical writes one record per row, tables stacked top to bottom.
	Vertical Orientation = iota
	// Horizontal packs tables side by side, reusing the same row band.
	Horizontal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	}
	return "unknown"
}

// DataCategory drives cell typing and number formatting.
type DataCategory string

const (
	CategoryText       DataCategory = "text"
	CategoryNumber     DataCategory = "number"
	CategoryCurrency   DataCategory = "currency"
	CategoryDate       DataCategory = "date"
	CategoryPercentage DataCategory = "percentage"
	CategoryFormula    DataCategory = "formula"
)

// Operation selects how a computed column combines its source columns.
type Operation string

const (
	OpSum         Operation = "sum"
	OpSubtraction Operation = "subtraction"
	OpDivision    Operation = "division"
	OpCustom      Operation = "custom"
)

// SpecialField describes a computed column appended after a table's data
// rows. Columns name record fields by their struct field name or label.
// For OpCustom, Template holds a formula with "?" placeholders replaced
// left to right by the resolved range of each referenced column.
type SpecialField struct {
	Label     string
	Order     int
	Operation Operation
	Columns   []string
	Template  string
	Color     string
}

// ReferenceLabel is a free-standing annotation row merged across the
// table's column span, written above the title.
type ReferenceLabel struct {
	Text string
	Bold bool
}

// Pivot aggregates a table's records grouped by condition columns, one
// output row per distinct combination in order of first appearance.
// Values are emitted as conditional-sum formulas over the source range.
type Pivot struct {
	Sheet      string
	Title      string
	Conditions []string
	Values     []string
	Formula    string // aggregate formula name, defaults to SUMIFS
	Special    *SpecialField
}

// Table is one fully configured export table. Rows must be a non-empty
// slice of one tagged struct type.
type Table struct {
	Sheet      string
	Title      string
	Rows       interface{}
	HideHeader bool
	Labels     []ReferenceLabel
	Specials   []SpecialField
	Pivot      *Pivot
}

// Report is a composite document: one key/value block of general data
// followed by any number of tables. GeneralSpecials reserve rows under
// the key/value block that each table fills with its own aggregate.
type Report struct {
	General         interface{}
	GeneralSpecials []SpecialField
	Tables          []*Table
}

// Options configures a Builder. The zero value is usable, every field
// has a default applied by NewBuilder.
type Options struct {
	FontName    string      `yaml:"font_name"`
	HeaderColor string      `yaml:"header_color"`
	Orientation Orientation `yaml:"orientation"`
	TableGap    int         `yaml:"table_gap"`
	FreezeCols  int         `yaml:"freeze_cols"`
	FreezeRows  int         `yaml:"freeze_rows"`
	NoAutosize  bool        `yaml:"no_autosize"`
}

const (
	defaultFontName    = "Calibri"
	defaultHeaderColor = "DDEBF7"
	defaultTableGap    = 2
	defaultDateFormat  = "02/01/2006"
)

// ImportColumn binds a spreadsheet column to a struct field. A header
// cell matches when its text contains Title or any alias, ignoring
// case; the first configured column to match wins. A Special column's
// aliases act as sentinel values: a cell equal to one of them stops
// row consumption for the whole sheet.
type ImportColumn struct {
	Title    string       `yaml:"title"`
	Field    string       `yaml:"field"`
	Category DataCategory `yaml:"category,omitempty"`
	Aliases  []string     `yaml:"aliases,omitempty"`
	Required bool         `yaml:"required,omitempty"`
	Special  bool         `yaml:"special,omitempty"`
}

// ImportOptions positions the import inside the workbook. StartRow and
// StartCol are 0-based offsets skipped before the header row.
type ImportOptions struct {
	Sheet    string
	StartRow int
	StartCol int
}

// rowStatus classifies one imported row from its cell outcomes.
type rowStatus int

const (
	rowEmpty rowStatus = iota
	rowValues
	rowSpecial
)

// TableNamer lets a record type declare its table title.
type TableNamer interface {
	TableName() string
}
