package exceltab

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// GenerateCSV renders a record slice as a semicolon-delimited dump:
// one header line of labels in column order, one line per record. No
// formulas, no styling.
func GenerateCSV(records interface{}) ([]byte, error) {
	recs := reflect.ValueOf(records)
	if recs.Kind() == reflect.Ptr {
		recs = recs.Elem()
	}
	if recs.Kind() != reflect.Slice {
		return nil, configErrf("csv rows must be a slice, got %T", records)
	}
	if recs.Len() == 0 {
		return nil, configErrf("csv export has no records")
	}
	specs, err := resolveSpecs(recs.Type().Elem())
	if err != nil {
		return nil, err
	}
	if len(specs.ordered) == 0 {
		return nil, configErrf("record type %s declares no exported columns", recs.Type().Elem())
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	header := make([]string, len(specs.ordered))
	for i := range specs.ordered {
		header[i] = specs.ordered[i].Label
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	line := make([]string, len(specs.ordered))
	for i := 0; i < recs.Len(); i++ {
		rec := recs.Index(i)
		for j := range specs.ordered {
			line[j] = csvValue(rec, &specs.ordered[j])
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvValue(rec reflect.Value, spec *FieldSpec) string {
	v, ok := fieldValue(rec, spec)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case time.Time:
		return x.Format(defaultDateFormat)
	case bool:
		if x {
			return "SI"
		}
		return "NO"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
