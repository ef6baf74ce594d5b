package exceltab

import (
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"
)

// tablePlacement records where a table landed so that computed columns
// and pivots can reference its data range afterwards.
type tablePlacement struct {
	sheet     string
	colOffset int
	firstCol  int
	lastCol   int
	dataFirst int
	dataLast  int
	specs     *typeSpecs
}

// columnOf resolves a field name or label to its absolute column.
func (p *tablePlacement) columnOf(name string) (int, bool) {
	spec := p.specs.lookup(name)
	if spec == nil {
		return 0, false
	}
	return p.colOffset + spec.Order + 1, true
}

func (b *Builder) writeTable(t *Table) error {
	recs := reflect.ValueOf(t.Rows)
	if recs.Kind() == reflect.Ptr {
		recs = recs.Elem()
	}
	if recs.Kind() != reflect.Slice {
		return configErrf("table rows must be a slice, got %T", t.Rows)
	}
	if recs.Len() == 0 {
		return configErrf("table has no records")
	}
	specs, err := b.specsFor(recs.Type().Elem())
	if err != nil {
		return err
	}
	if len(specs.ordered) == 0 {
		return configErrf("record type %s declares no exported columns", recs.Type().Elem())
	}
	if err := b.lay.switchSheet(sheetOrDefault(t.Sheet)); err != nil {
		return err
	}

	horizontal := b.opts.Orientation == Horizontal
	b.lay.beginTable(horizontal)
	colOffset := 0
	if horizontal {
		colOffset = b.lay.cur.colOffset
	}
	p := &tablePlacement{
		sheet:     b.lay.sheet,
		colOffset: colOffset,
		firstCol:  colOffset + specs.minOrder() + 1,
		lastCol:   colOffset + specs.maxOrder() + 1,
		specs:     specs,
	}

	if err := b.writeLabels(p, t.Labels, horizontal); err != nil {
		return err
	}
	if err := b.writeTitle(p, tableTitle(t.Title, recs.Index(0).Interface()), horizontal); err != nil {
		return err
	}
	if !t.HideHeader {
		if err := b.writeHeader(p, horizontal); err != nil {
			return err
		}
	}
	for i := 0; i < recs.Len(); i++ {
		row := b.lay.tableRow(horizontal)
		if p.dataFirst == 0 {
			p.dataFirst = row
		}
		p.dataLast = row
		if err := b.writeRecord(p, recs.Index(i), row); err != nil {
			return err
		}
	}

	if err := b.writeSpecials(p, t.Specials, horizontal); err != nil {
		return err
	}
	if err := b.fillReserved(p); err != nil {
		return err
	}
	if t.Pivot != nil {
		if err := b.writePivot(p, recs, t.Pivot); err != nil {
			return err
		}
	}
	b.lay.endTable(horizontal, p.lastCol, b.opts.TableGap)
	return nil
}

func sheetOrDefault(name string) string {
	if name == "" {
		return defaultSheet
	}
	return name
}

func (b *Builder) writeLabels(p *tablePlacement, labels []ReferenceLabel, horizontal bool) error {
	for _, label := range labels {
		row := b.lay.tableRow(horizontal)
		styleID, err := b.styles.labelStyle(label.Bold)
		if err != nil {
			return err
		}
		first := b.cols.cell(p.firstCol, row)
		last := b.cols.cell(p.lastCol, row)
		if err := b.f.SetCellValue(p.sheet, first, label.Text); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(p.sheet, first, last, styleID); err != nil {
			return err
		}
		if p.lastCol > p.firstCol {
			if err := b.f.MergeCell(p.sheet, first, last); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) writeTitle(p *tablePlacement, title string, horizontal bool) error {
	if title == "" {
		return nil
	}
	row := b.lay.tableRow(horizontal)
	styleID, err := b.styles.titleStyle()
	if err != nil {
		return err
	}
	first := b.cols.cell(p.firstCol, row)
	last := b.cols.cell(p.lastCol, row)
	if err := b.f.SetCellValue(p.sheet, first, title); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(p.sheet, first, last, styleID); err != nil {
		return err
	}
	if p.lastCol > p.firstCol {
		if err := b.f.MergeCell(p.sheet, first, last); err != nil {
			return err
		}
	}
	return b.f.SetRowHeight(p.sheet, row, 22)
}

func (b *Builder) writeHeader(p *tablePlacement, horizontal bool) error {
	row := b.lay.tableRow(horizontal)
	styleID, err := b.styles.headerStyle()
	if err != nil {
		return err
	}
	for i := range p.specs.ordered {
		spec := &p.specs.ordered[i]
		col := p.colOffset + spec.Order + 1
		cell := b.cols.cell(col, row)
		if err := b.f.SetCellValue(p.sheet, cell, spec.Label); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(p.sheet, cell, cell, styleID); err != nil {
			return err
		}
		b.lay.track(col, cellWidth(spec.Label))
	}
	return nil
}

func (b *Builder) writeRecord(p *tablePlacement, rec reflect.Value, row int) error {
	for i := range p.specs.ordered {
		spec := &p.specs.ordered[i]
		col := p.colOffset + spec.Order + 1
		cell := b.cols.cell(col, row)
		if spec.Category == CategoryFormula {
			if err := b.writeRowFormula(p, spec, cell, row); err != nil {
				return err
			}
			continue
		}
		styleID, err := b.styles.styleFor(spec.Category, spec.Color)
		if err != nil {
			return err
		}
		if err := b.f.SetCellStyle(p.sheet, cell, cell, styleID); err != nil {
			return err
		}
		value, ok := fieldValue(rec, spec)
		if !ok {
			// blank but styled, keeps column ranges uniform
			continue
		}
		if err := b.f.SetCellValue(p.sheet, cell, exportValue(value)); err != nil {
			return err
		}
		b.lay.track(col, valueWidth(value, spec.Category))
	}
	return nil
}

// writeRowFormula emits a per-record computed cell combining other
// cells of the same row. An unresolvable referenced column leaves the
// cell blank instead of failing the table.
func (b *Builder) writeRowFormula(p *tablePlacement, spec *FieldSpec, cell string, row int) error {
	styleID, err := b.styles.formulaStyle(spec.Color)
	if err != nil {
		return err
	}
	if err := b.f.SetCellStyle(p.sheet, cell, cell, styleID); err != nil {
		return err
	}
	refs := make([]string, 0, len(spec.FormulaCols))
	for _, name := range spec.FormulaCols {
		col, ok := p.columnOf(name)
		if !ok {
			dropFormula(&UnresolvedFormulaReferenceError{Label: spec.Label, Column: name})
			return nil
		}
		refs = append(refs, b.cols.cell(col, row))
	}
	formula, err := buildAggregate(spec.FormulaOp, refs, spec.FormulaTemplate)
	if err != nil {
		dropFormula(err)
		return nil
	}
	return b.f.SetCellFormula(p.sheet, cell, formula)
}

// writeGeneral renders a single tagged struct as a two-column
// key/value block.
func (b *Builder) writeGeneral(general interface{}) error {
	rv := reflect.ValueOf(general)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	specs, err := b.specsFor(rv.Type())
	if err != nil {
		return err
	}
	if len(specs.ordered) == 0 {
		return configErrf("general type %s declares no exported columns", rv.Type())
	}
	headerID, err := b.styles.headerStyle()
	if err != nil {
		return err
	}
	for i := range specs.ordered {
		spec := &specs.ordered[i]
		row := b.lay.nextRow()
		labelCell := b.cols.cell(1, row)
		valueCell := b.cols.cell(2, row)
		if err := b.f.SetCellValue(b.lay.sheet, labelCell, spec.Label); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(b.lay.sheet, labelCell, labelCell, headerID); err != nil {
			return err
		}
		styleID, err := b.styles.styleFor(spec.Category, spec.Color)
		if err != nil {
			return err
		}
		if err := b.f.SetCellStyle(b.lay.sheet, valueCell, valueCell, styleID); err != nil {
			return err
		}
		if value, ok := fieldValue(rv, spec); ok {
			if err := b.f.SetCellValue(b.lay.sheet, valueCell, exportValue(value)); err != nil {
				return err
			}
			b.lay.track(2, valueWidth(value, spec.Category))
		}
		b.lay.track(1, cellWidth(spec.Label))
	}
	b.lay.emptyRows(1)
	return nil
}

// fillReserved appends this table's aggregate to every reserved report
// row, one column per table.
func (b *Builder) fillReserved(p *tablePlacement) error {
	for _, res := range b.reserved {
		col, ok := p.columnOf(firstColumn(res.spec))
		if !ok {
			dropFormula(&UnresolvedFormulaReferenceError{Label: res.spec.Label, Column: firstColumn(res.spec)})
			continue
		}
		ref := b.cols.rangeRef(col, p.dataFirst, p.dataLast)
		if res.sheet != p.sheet {
			ref = qualify(p.sheet, ref)
		}
		formula, err := buildAggregate(operationOrSum(res.spec.Operation), []string{ref}, res.spec.Template)
		if err != nil {
			dropFormula(err)
			continue
		}
		cell := b.cols.cell(res.nextCol, res.row)
		styleID, err := b.styles.formulaStyle(res.spec.Color)
		if err != nil {
			return err
		}
		if err := b.f.SetCellStyle(res.sheet, cell, cell, styleID); err != nil {
			return err
		}
		if err := b.f.SetCellFormula(res.sheet, cell, formula); err != nil {
			return err
		}
		res.nextCol++
	}
	return nil
}

func firstColumn(sp SpecialField) string {
	if len(sp.Columns) == 0 {
		return ""
	}
	return sp.Columns[0]
}

func operationOrSum(op Operation) Operation {
	if op == "" {
		return OpSum
	}
	return op
}

// fieldValue extracts a record field, dereferencing pointers. The
// second return is false when the value is unset.
func fieldValue(rec reflect.Value, spec *FieldSpec) (interface{}, bool) {
	for rec.Kind() == reflect.Ptr {
		if rec.IsNil() {
			return nil, false
		}
		rec = rec.Elem()
	}
	fv := rec.Field(spec.Index)
	for fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil, false
		}
		fv = fv.Elem()
	}
	v := fv.Interface()
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil, false
		}
	case time.Time:
		if x.IsZero() {
			return nil, false
		}
	}
	return v, true
}

// exportValue maps Go values to their spreadsheet form. Booleans
// render as SI/NO to match the documents the import side consumes.
func exportValue(v interface{}) interface{} {
	if bv, ok := v.(bool); ok {
		if bv {
			return "SI"
		}
		return "NO"
	}
	return v
}

func cellWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

func valueWidth(v interface{}, cat DataCategory) float64 {
	switch cat {
	case CategoryDate:
		return 12
	case CategoryCurrency, CategoryNumber, CategoryPercentage:
		return 14
	}
	return cellWidth(fmt.Sprint(v))
}
