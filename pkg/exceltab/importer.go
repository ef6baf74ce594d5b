package exceltab

import (
	"bytes"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ReadRecords parses a workbook into typed records. Header cells are
// matched against the configured columns by case-insensitive
// containment, first match wins; a required column that never matches
// fails before any data row is read. Rows whose cells are all empty
// are dropped; a cell holding a sentinel value stops consumption of
// the whole sheet.
func ReadRecords[T any](data []byte, cols []ImportColumn, opts ImportOptions) ([]T, error) {
	rows, err := sheetRows(data, &opts)
	if err != nil {
		return nil, err
	}
	records, _, err := readTable[T](rows, opts.StartRow, cols, opts)
	return records, err
}

// ReadRecordsWithGeneralities parses a leading key/value block into G,
// then the table that follows it into records of T. The block ends at
// the first blank row.
func ReadRecordsWithGeneralities[G, T any](data []byte, generalCols, cols []ImportColumn, opts ImportOptions) (G, []T, error) {
	var general G
	rows, err := sheetRows(data, &opts)
	if err != nil {
		return general, nil, err
	}
	next, err := readGeneral(rows, opts, generalCols, &general)
	if err != nil {
		return general, nil, err
	}
	records, _, err := readTable[T](rows, next, cols, opts)
	return general, records, err
}

func sheetRows(data []byte, opts *ImportOptions) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if opts.Sheet == "" {
		opts.Sheet = f.GetSheetName(0)
	}
	return f.GetRows(opts.Sheet, excelize.Options{RawCellValue: true})
}

// readGeneral consumes label/value pairs until the first blank row and
// returns the index of the row after it.
func readGeneral(rows [][]string, opts ImportOptions, cols []ImportColumn, out interface{}) (int, error) {
	if len(cols) == 0 {
		return 0, configErrf("no general columns configured")
	}
	rv := reflect.ValueOf(out).Elem()
	i := opts.StartRow
	for ; i < len(rows); i++ {
		if blankRow(rows[i], opts.StartCol) {
			i++
			break
		}
		label := cellAt(rows[i], opts.StartCol)
		raw := cellAt(rows[i], opts.StartCol+1)
		col := matchTitle(cols, label)
		if col == nil {
			continue
		}
		if raw == "" {
			continue
		}
		if err := assignField(rv, col, raw, i+1); err != nil {
			return 0, err
		}
	}
	return i, nil
}

func readTable[T any](rows [][]string, from int, cols []ImportColumn, opts ImportOptions) ([]T, int, error) {
	if len(cols) == 0 {
		return nil, 0, configErrf("no import columns configured")
	}
	headerIdx := from
	for headerIdx < len(rows) && blankRow(rows[headerIdx], opts.StartCol) {
		headerIdx++
	}
	if headerIdx >= len(rows) {
		return nil, 0, configErrf("sheet %q has no header row", opts.Sheet)
	}
	mapped, sentinels, err := matchColumns(rows[headerIdx], opts.StartCol, cols)
	if err != nil {
		return nil, 0, err
	}

	indexes := make([]int, 0, len(mapped))
	for idx := range mapped {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var records []T
	i := headerIdx + 1
	for ; i < len(rows); i++ {
		var rec T
		status, err := readRow(reflect.ValueOf(&rec).Elem(), rows[i], indexes, mapped, sentinels, i+1)
		if err != nil {
			return nil, 0, err
		}
		if status == rowSpecial {
			break
		}
		if status == rowEmpty {
			continue
		}
		records = append(records, rec)
	}
	return records, i, nil
}

// matchColumns resolves the header row into a column index to config
// map. Sentinel configs never bind to a column, their aliases act as
// stop values during row reading.
func matchColumns(header []string, startCol int, cols []ImportColumn) (map[int]*ImportColumn, []ImportColumn, error) {
	var sentinels []ImportColumn
	pending := make([]*ImportColumn, 0, len(cols))
	for i := range cols {
		if cols[i].Special {
			sentinels = append(sentinels, cols[i])
			continue
		}
		pending = append(pending, &cols[i])
	}
	mapped := make(map[int]*ImportColumn)
	for idx := startCol; idx < len(header); idx++ {
		text := strings.TrimSpace(header[idx])
		if text == "" {
			continue
		}
		for pi, col := range pending {
			if col == nil || !titleMatches(col, text) {
				continue
			}
			mapped[idx] = col
			pending[pi] = nil
			break
		}
	}
	for _, col := range pending {
		if col != nil && col.Required {
			return nil, nil, &MissingRequiredColumnError{Title: col.Title}
		}
	}
	return mapped, sentinels, nil
}

// titleMatches reports whether a header cell binds to a configured
// column: the cell text contains the title or an alias, ignoring case.
func titleMatches(col *ImportColumn, header string) bool {
	lower := strings.ToLower(header)
	if col.Title != "" && strings.Contains(lower, strings.ToLower(col.Title)) {
		return true
	}
	for _, alias := range col.Aliases {
		if alias != "" && strings.Contains(lower, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

func matchTitle(cols []ImportColumn, label string) *ImportColumn {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	for i := range cols {
		if titleMatches(&cols[i], label) {
			return &cols[i]
		}
	}
	return nil
}

// readRow visits the mapped cells left to right. A sentinel value
// classifies the row special at once; otherwise the row is VALUES when
// at least one cell held data, and a blank cell under a required
// column fails the import for such a row.
func readRow(rec reflect.Value, row []string, indexes []int, mapped map[int]*ImportColumn, sentinels []ImportColumn, excelRow int) (rowStatus, error) {
	status := rowEmpty
	var blankRequired *ImportColumn
	for _, idx := range indexes {
		col := mapped[idx]
		raw := strings.TrimSpace(cellAt(row, idx))
		if isSentinel(raw, sentinels) {
			return rowSpecial, nil
		}
		if raw == "" {
			if col.Required && blankRequired == nil {
				blankRequired = col
			}
			continue
		}
		if err := assignField(rec, col, raw, excelRow); err != nil {
			return status, err
		}
		status = rowValues
	}
	if status == rowValues && blankRequired != nil {
		return status, &MissingRequiredValueError{Title: blankRequired.Title, Row: excelRow}
	}
	return status, nil
}

func isSentinel(raw string, sentinels []ImportColumn) bool {
	if raw == "" {
		return false
	}
	for _, s := range sentinels {
		if strings.EqualFold(raw, s.Title) {
			return true
		}
		for _, alias := range s.Aliases {
			if strings.EqualFold(raw, alias) {
				return true
			}
		}
	}
	return false
}

// assignField coerces a raw cell value into the named struct field.
// Coercion failures on non-required columns leave the field unset.
func assignField(rec reflect.Value, col *ImportColumn, raw string, excelRow int) error {
	fv := rec.FieldByName(col.Field)
	if !fv.IsValid() || !fv.CanSet() {
		return configErrf("column %q targets unknown field %q", col.Title, col.Field)
	}
	if err := coerce(fv, raw); err != nil {
		cerr := &CellCoercionError{Title: col.Title, Row: excelRow, Value: raw, Kind: fv.Type().String()}
		if col.Required {
			return cerr
		}
		log.Debug().Err(cerr).Msg("cell value skipped")
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func coerce(fv reflect.Value, raw string) error {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return coerce(fv.Elem(), raw)
	}
	if fv.Type() == timeType {
		t, err := parseDate(raw)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := parseNumber(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(math.Round(f)))
	case reflect.Float32, reflect.Float64:
		f, err := parseNumber(raw)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return configErrf("unsupported field kind %s", fv.Kind())
	}
	return nil
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
}

// parseDate accepts both raw serial numbers and dd/mm/yyyy text.
func parseDate(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Parse(defaultDateFormat, raw)
}

func parseBool(raw string) (bool, error) {
	switch strings.ToUpper(raw) {
	case "SI", "TRUE", "1", "X":
		return true, nil
	case "NO", "FALSE", "0", "":
		return false, nil
	}
	return false, configErrf("not a boolean value %q", raw)
}

func blankRow(row []string, startCol int) bool {
	for i := startCol; i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
