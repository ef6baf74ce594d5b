// Package exceltab generates and parses tabular spreadsheet documents
// from arbitrary record types, driven entirely by per-field metadata
// declared as struct tags. Callers supply plain record slices; the
// package infers layout, styling, computed columns and grouped
// aggregations, and reverses the mapping on import.
package exceltab

import (
	"bytes"
	"reflect"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Builder turns records into a serialized workbook. A Builder may be
// reused for sequential generations but must not be shared across
// concurrent calls: the style cache and layout cursors belong to the
// generation in progress.
type Builder struct {
	opts   Options
	f      *excelize.File
	lay    *layout
	styles *styleSet
	specs  map[reflect.Type]*typeSpecs
	cols   colNames

	reserved []*reservedSpecial
}

// reservedSpecial is a row under a report's general block, filled with
// one aggregate cell per table as the tables are written.
type reservedSpecial struct {
	spec    SpecialField
	sheet   string
	row     int
	nextCol int
}

// NewBuilder applies defaults to opts and returns a ready Builder.
func NewBuilder(opts Options) *Builder {
	if opts.FontName == "" {
		opts.FontName = defaultFontName
	}
	if opts.HeaderColor == "" {
		opts.HeaderColor = defaultHeaderColor
	}
	if opts.TableGap <= 0 {
		opts.TableGap = defaultTableGap
	}
	return &Builder{opts: opts}
}

func (b *Builder) reset() {
	b.f = excelize.NewFile()
	b.lay = newLayout(b.f)
	b.styles = newStyleSet(b.f, b.opts.FontName, b.opts.HeaderColor)
	b.specs = make(map[reflect.Type]*typeSpecs)
	b.cols = make(colNames)
	b.reserved = nil
}

func (b *Builder) specsFor(t reflect.Type) (*typeSpecs, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if specs, ok := b.specs[t]; ok {
		return specs, nil
	}
	specs, err := resolveSpecs(t)
	if err != nil {
		return nil, err
	}
	b.specs[t] = specs
	return specs, nil
}

// GenerateSimple writes one bare table per record list, all on the
// default sheet, and returns the workbook bytes.
func (b *Builder) GenerateSimple(lists ...interface{}) ([]byte, error) {
	if len(lists) == 0 {
		return nil, configErrf("no record lists supplied")
	}
	tables := make([]*Table, len(lists))
	for i, list := range lists {
		tables[i] = &Table{Rows: list}
	}
	return b.GenerateTables(tables...)
}

// GenerateTables writes fully configured tables, each on its declared
// sheet, and returns the workbook bytes.
func (b *Builder) GenerateTables(tables ...*Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, configErrf("no tables supplied")
	}
	if b.opts.Orientation != Vertical && b.opts.Orientation != Horizontal {
		return nil, configErrf("unknown orientation %d", b.opts.Orientation)
	}
	b.reset()
	for _, t := range tables {
		if err := b.writeTable(t); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

// GenerateReport writes a composite document: the general key/value
// block, its reserved aggregate rows, then every table.
func (b *Builder) GenerateReport(r *Report) ([]byte, error) {
	if r == nil || len(r.Tables) == 0 {
		return nil, configErrf("report has no tables")
	}
	if b.opts.Orientation != Vertical && b.opts.Orientation != Horizontal {
		return nil, configErrf("unknown orientation %d", b.opts.Orientation)
	}
	b.reset()
	if err := b.lay.switchSheet(defaultSheet); err != nil {
		return nil, err
	}
	if r.General != nil {
		if err := b.writeGeneral(r.General); err != nil {
			return nil, err
		}
	}
	for _, sp := range r.GeneralSpecials {
		row := b.lay.nextRow()
		labelID, err := b.styles.headerStyle()
		if err != nil {
			return nil, err
		}
		cell := b.cols.cell(sp.Order+1, row)
		if err := b.f.SetCellValue(b.lay.sheet, cell, sp.Label); err != nil {
			return nil, err
		}
		if err := b.f.SetCellStyle(b.lay.sheet, cell, cell, labelID); err != nil {
			return nil, err
		}
		b.lay.track(sp.Order+1, cellWidth(sp.Label))
		b.reserved = append(b.reserved, &reservedSpecial{spec: sp, sheet: b.lay.sheet, row: row, nextCol: sp.Order + 2})
	}
	if len(r.GeneralSpecials) > 0 {
		b.lay.emptyRows(1)
	}
	for _, t := range r.Tables {
		if err := b.writeTable(t); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

func (b *Builder) finish() ([]byte, error) {
	if !b.opts.NoAutosize {
		if err := b.lay.autosize(); err != nil {
			return nil, err
		}
	}
	if err := b.lay.freeze(b.opts.FreezeCols, b.opts.FreezeRows); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := b.f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
