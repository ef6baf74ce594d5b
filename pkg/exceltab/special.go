package exceltab

import (
	"github.com/rs/zerolog/log"
)

// dropFormula records a computed cell that was omitted because its
// source column could not be resolved. The table itself still renders.
func dropFormula(err error) {
	log.Debug().Err(err).Msg("computed column omitted")
}

// writeSpecials appends the computed rows of a finished table. A SUM
// field writes one aggregate per referenced column, at that column's
// own position; every other operation writes a single cell next to the
// field's label.
func (b *Builder) writeSpecials(p *tablePlacement, specials []SpecialField, horizontal bool) error {
	for _, sp := range specials {
		row := b.lay.tableRow(horizontal)
		labelCol := p.colOffset + sp.Order + 1
		if err := b.writeSpecialLabel(p.sheet, labelCol, row, sp.Label); err != nil {
			return err
		}
		switch operationOrSum(sp.Operation) {
		case OpSum:
			if err := b.writeSumColumns(p, sp, row); err != nil {
				return err
			}
		default:
			if err := b.writeCombined(p, sp, labelCol+1, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) writeSpecialLabel(sheet string, col, row int, label string) error {
	styleID, err := b.styles.headerStyle()
	if err != nil {
		return err
	}
	cell := b.cols.cell(col, row)
	if err := b.f.SetCellValue(sheet, cell, label); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
		return err
	}
	b.lay.track(col, cellWidth(label))
	return nil
}

func (b *Builder) writeSumColumns(p *tablePlacement, sp SpecialField, row int) error {
	for _, name := range sp.Columns {
		col, ok := p.columnOf(name)
		if !ok {
			dropFormula(&UnresolvedFormulaReferenceError{Label: sp.Label, Column: name})
			continue
		}
		formula, err := buildAggregate(OpSum, []string{b.cols.rangeRef(col, p.dataFirst, p.dataLast)}, "")
		if err != nil {
			dropFormula(err)
			continue
		}
		if err := b.writeFormulaCell(p.sheet, b.cols.cell(col, row), formula, sp.Color); err != nil {
			return err
		}
	}
	return nil
}

// writeCombined resolves every referenced column up front; a single
// missing one omits the whole formula.
func (b *Builder) writeCombined(p *tablePlacement, sp SpecialField, col, row int) error {
	refs := make([]string, 0, len(sp.Columns))
	for _, name := range sp.Columns {
		c, ok := p.columnOf(name)
		if !ok {
			dropFormula(&UnresolvedFormulaReferenceError{Label: sp.Label, Column: name})
			return nil
		}
		refs = append(refs, b.cols.rangeRef(c, p.dataFirst, p.dataLast))
	}
	formula, err := buildAggregate(sp.Operation, refs, sp.Template)
	if err != nil {
		dropFormula(err)
		return nil
	}
	return b.writeFormulaCell(p.sheet, b.cols.cell(col, row), formula, sp.Color)
}

func (b *Builder) writeFormulaCell(sheet, cell, formula, color string) error {
	styleID, err := b.styles.formulaStyle(color)
	if err != nil {
		return err
	}
	if err := b.f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
		return err
	}
	return b.f.SetCellFormula(sheet, cell, formula)
}
