package exceltab

import "fmt"

// ConfigurationError reports unusable caller input: an empty record
// list, an empty column configuration, or an unknown orientation.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("exceltab: invalid configuration: %s", e.Reason)
}

func configErrf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// MissingRequiredColumnError reports a required import column that
// never matched any header cell. Raised before any data row is read.
type MissingRequiredColumnError struct {
	Title string
}

func (e *MissingRequiredColumnError) Error() string {
	return fmt.Sprintf("exceltab: required column %q not found in header row", e.Title)
}

// MissingRequiredValueError reports a blank required field on a data
// row. The whole import fails, partial imports are not returned.
type MissingRequiredValueError struct {
	Title string
	Row   int
}

func (e *MissingRequiredValueError) Error() string {
	return fmt.Sprintf("exceltab: required column %q is empty at row %d", e.Title, e.Row)
}

// CellCoercionError reports a cell value that could not be converted to
// its field's type. Non-required fields recover by leaving the field
// unset; the error is surfaced only for required fields.
type CellCoercionError struct {
	Title string
	Row   int
	Value string
	Kind  string
}

func (e *CellCoercionError) Error() string {
	return fmt.Sprintf("exceltab: cannot convert %q to %s for column %q at row %d", e.Value, e.Kind, e.Title, e.Row)
}

// UnresolvedFormulaReferenceError reports a computed column whose
// referenced source column does not exist in the record type. The
// formula is omitted instead of failing the table.
type UnresolvedFormulaReferenceError struct {
	Label  string
	Column string
}

func (e *UnresolvedFormulaReferenceError) Error() string {
	return fmt.Sprintf("exceltab: computed column %q references unknown column %q", e.Label, e.Column)
}
