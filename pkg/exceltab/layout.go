package exceltab

import (
	"github.com/xuri/excelize/v2"
)

// sheetCursor is the mutable layout state of one sheet. Rows are
// 1-based throughout, matching spreadsheet addressing.
type sheetCursor struct {
	row        int // next free row
	colOffset  int // columns consumed by earlier tables, horizontal only
	bandStart  int // first row of the shared horizontal band
	bandNext   int // next band row handed out to the current table
	firstTable bool
}

// layout owns the active sheet, one cursor per sheet, and the column
// widths accumulated for the final autosize pass. Cursors live in a
// map keyed by sheet name so that switching back to a sheet resumes
// exactly where it left off.
type layout struct {
	f       *excelize.File
	cursors map[string]*sheetCursor
	sheet   string
	cur     *sheetCursor
	widths  map[string]map[int]float64
}

func newLayout(f *excelize.File) *layout {
	return &layout{
		f:       f,
		cursors: make(map[string]*sheetCursor),
		widths:  make(map[string]map[int]float64),
	}
}

// switchSheet makes name the active sheet, creating it on first use.
// The very first sheet renames the workbook's default sheet instead of
// adding a second one.
func (l *layout) switchSheet(name string) error {
	if name == "" {
		name = "Sheet1"
	}
	if l.sheet == name {
		return nil
	}
	if cur, ok := l.cursors[name]; ok {
		l.sheet, l.cur = name, cur
		return nil
	}
	if len(l.cursors) == 0 {
		if err := l.f.SetSheetName(l.f.GetSheetName(0), name); err != nil {
			return err
		}
	} else {
		if _, err := l.f.NewSheet(name); err != nil {
			return err
		}
	}
	cur := &sheetCursor{row: 1, firstTable: true}
	l.cursors[name] = cur
	l.sheet, l.cur = name, cur
	return nil
}

// nextRow hands out the next free row and advances the pointer.
func (l *layout) nextRow() int {
	r := l.cur.row
	l.cur.row++
	return r
}

// beginTable prepares the cursor for a new table. Under horizontal
// orientation the second and later tables rewind to the band start so
// their rows line up with the first table's.
func (l *layout) beginTable(horizontal bool) {
	if !horizontal {
		return
	}
	if l.cur.firstTable {
		l.cur.bandStart = l.cur.row
		return
	}
	l.cur.bandNext = l.cur.bandStart
}

// tableRow hands out the row for the next table line. Side-by-side
// tables reuse the rows already written by the first table of the
// band; once the band is exhausted the sheet grows as usual.
func (l *layout) tableRow(horizontal bool) int {
	if horizontal && !l.cur.firstTable {
		if l.cur.bandNext < l.cur.row {
			r := l.cur.bandNext
			l.cur.bandNext++
			return r
		}
		l.cur.bandNext = l.cur.row + 1
	}
	return l.nextRow()
}

// endTable moves the cursor past a finished table: horizontal tables
// shift the column offset, vertical ones leave a gap of blank rows.
func (l *layout) endTable(horizontal bool, lastCol, gap int) {
	l.cur.firstTable = false
	if horizontal {
		l.cur.colOffset = lastCol + gap
		return
	}
	l.emptyRows(gap)
}

func (l *layout) emptyRows(n int) {
	l.cur.row += n
}

// track records the rendered width of a cell for autosizing.
func (l *layout) track(col int, width float64) {
	cols := l.widths[l.sheet]
	if cols == nil {
		cols = make(map[int]float64)
		l.widths[l.sheet] = cols
	}
	if width > cols[col] {
		cols[col] = width
	}
}

const maxColWidth = 60

func (l *layout) autosize() error {
	for sheet, cols := range l.widths {
		for col, width := range cols {
			name, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return err
			}
			if width > maxColWidth {
				width = maxColWidth
			}
			if err := l.f.SetColWidth(sheet, name, name, width+2); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *layout) freeze(cols, rows int) error {
	if cols == 0 && rows == 0 {
		return nil
	}
	topLeft, err := excelize.CoordinatesToCellName(cols+1, rows+1)
	if err != nil {
		return err
	}
	for sheet := range l.cursors {
		err := l.f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			XSplit:      cols,
			YSplit:      rows,
			TopLeftCell: topLeft,
			ActivePane:  "bottomRight",
		})
		if err != nil {
			return err
		}
	}
	return nil
}
