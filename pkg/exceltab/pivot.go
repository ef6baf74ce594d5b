package exceltab

import (
	"reflect"
	"strings"
)

// pivotGroup is one distinct combination of condition values, kept in
// order of first appearance.
type pivotGroup struct {
	values   []interface{}
	criteria []string
}

// writePivot groups a finished table's records by the pivot's
// condition columns and writes one aggregated row per group, on the
// table's own sheet or on the pivot's target sheet.
func (b *Builder) writePivot(p *tablePlacement, recs reflect.Value, piv *Pivot) error {
	condSpecs := make([]*FieldSpec, 0, len(piv.Conditions))
	for _, name := range piv.Conditions {
		spec := p.specs.lookup(name)
		if spec == nil {
			dropFormula(&UnresolvedFormulaReferenceError{Label: piv.Title, Column: name})
			return nil
		}
		condSpecs = append(condSpecs, spec)
	}
	if len(condSpecs) == 0 {
		return configErrf("pivot %q has no condition columns", piv.Title)
	}
	valueSpecs := make([]*FieldSpec, 0, len(piv.Values))
	for _, name := range piv.Values {
		spec := p.specs.lookup(name)
		if spec == nil {
			dropFormula(&UnresolvedFormulaReferenceError{Label: piv.Title, Column: name})
			continue
		}
		valueSpecs = append(valueSpecs, spec)
	}
	if len(valueSpecs) == 0 {
		return configErrf("pivot %q has no value columns", piv.Title)
	}
	groups := collectGroups(recs, condSpecs)

	sourceSheet := p.sheet
	cross := piv.Sheet != "" && piv.Sheet != p.sheet
	if cross {
		if err := b.lay.switchSheet(piv.Sheet); err != nil {
			return err
		}
		defer b.lay.switchSheet(sourceSheet)
	} else {
		b.lay.emptyRows(1)
	}

	base := b.lay.cur.colOffset
	if !cross {
		base = p.colOffset
	}
	span := len(condSpecs) + len(valueSpecs)
	firstCol := base + 1
	lastCol := base + span

	if err := b.writePivotTitle(piv.Title, firstCol, lastCol); err != nil {
		return err
	}
	if err := b.writePivotHeader(condSpecs, valueSpecs, firstCol); err != nil {
		return err
	}

	qualSheet := ""
	if cross {
		qualSheet = sourceSheet
	}
	condRanges := make([]string, len(condSpecs))
	for i, spec := range condSpecs {
		condRanges[i] = qualify(qualSheet, b.cols.rangeRef(p.colOffset+spec.Order+1, p.dataFirst, p.dataLast))
	}

	dataFirst, dataLast := 0, 0
	for _, g := range groups {
		row := b.lay.nextRow()
		if dataFirst == 0 {
			dataFirst = row
		}
		dataLast = row
		for i, spec := range condSpecs {
			cell := b.cols.cell(firstCol+i, row)
			styleID, err := b.styles.styleFor(spec.Category, spec.Color)
			if err != nil {
				return err
			}
			if err := b.f.SetCellStyle(b.lay.sheet, cell, cell, styleID); err != nil {
				return err
			}
			if err := b.f.SetCellValue(b.lay.sheet, cell, exportValue(g.values[i])); err != nil {
				return err
			}
			b.lay.track(firstCol+i, valueWidth(g.values[i], spec.Category))
		}
		for i, spec := range valueSpecs {
			sumRange := qualify(qualSheet, b.cols.rangeRef(p.colOffset+spec.Order+1, p.dataFirst, p.dataLast))
			formula := buildConditionalSum(piv.Formula, sumRange, condRanges, g.criteria)
			cell := b.cols.cell(firstCol+len(condSpecs)+i, row)
			if err := b.writeFormulaCell(b.lay.sheet, cell, formula, spec.Color); err != nil {
				return err
			}
		}
	}

	if piv.Special != nil && dataFirst > 0 {
		if err := b.writePivotSpecial(piv.Special, firstCol, len(condSpecs), len(valueSpecs), dataFirst, dataLast); err != nil {
			return err
		}
	}
	return nil
}

// collectGroups walks the records once and returns the distinct
// condition combinations in first-seen order, duplicates removed.
// Unset condition values group as the empty string so their criteria
// matches the blank source cells.
func collectGroups(recs reflect.Value, condSpecs []*FieldSpec) []pivotGroup {
	var groups []pivotGroup
	seen := make(map[string]bool)
	for i := 0; i < recs.Len(); i++ {
		rec := recs.Index(i)
		values := make([]interface{}, len(condSpecs))
		criteria := make([]string, len(condSpecs))
		for j, spec := range condSpecs {
			v, ok := fieldValue(rec, spec)
			if !ok {
				v = ""
			}
			values[j] = v
			criteria[j] = quoteCriteria(v)
		}
		key := strings.Join(criteria, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		groups = append(groups, pivotGroup{values: values, criteria: criteria})
	}
	return groups
}

func (b *Builder) writePivotTitle(title string, firstCol, lastCol int) error {
	if title == "" {
		return nil
	}
	row := b.lay.nextRow()
	styleID, err := b.styles.titleStyle()
	if err != nil {
		return err
	}
	first := b.cols.cell(firstCol, row)
	last := b.cols.cell(lastCol, row)
	if err := b.f.SetCellValue(b.lay.sheet, first, title); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(b.lay.sheet, first, last, styleID); err != nil {
		return err
	}
	if lastCol > firstCol {
		return b.f.MergeCell(b.lay.sheet, first, last)
	}
	return nil
}

func (b *Builder) writePivotHeader(condSpecs, valueSpecs []*FieldSpec, firstCol int) error {
	row := b.lay.nextRow()
	styleID, err := b.styles.headerStyle()
	if err != nil {
		return err
	}
	all := append(append([]*FieldSpec{}, condSpecs...), valueSpecs...)
	for i, spec := range all {
		cell := b.cols.cell(firstCol+i, row)
		if err := b.f.SetCellValue(b.lay.sheet, cell, spec.Label); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(b.lay.sheet, cell, cell, styleID); err != nil {
			return err
		}
		b.lay.track(firstCol+i, cellWidth(spec.Label))
	}
	return nil
}

// writePivotSpecial totals the pivot's own rows: the label sits under
// the condition columns, one aggregate under each value column.
func (b *Builder) writePivotSpecial(sp *SpecialField, firstCol, condCount, valueCount, dataFirst, dataLast int) error {
	row := b.lay.nextRow()
	if err := b.writeSpecialLabel(b.lay.sheet, firstCol, row, sp.Label); err != nil {
		return err
	}
	for i := 0; i < valueCount; i++ {
		col := firstCol + condCount + i
		formula, err := buildAggregate(operationOrSum(sp.Operation), []string{b.cols.rangeRef(col, dataFirst, dataLast)}, sp.Template)
		if err != nil {
			dropFormula(err)
			continue
		}
		if err := b.writeFormulaCell(b.lay.sheet, b.cols.cell(col, row), formula, sp.Color); err != nil {
			return err
		}
	}
	return nil
}
