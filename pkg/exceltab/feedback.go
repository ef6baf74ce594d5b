package exceltab

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FeedbackStatus is the outcome of a later validation step for one
// imported row.
type FeedbackStatus int

const (
	StatusOK FeedbackStatus = iota
	StatusWarning
	StatusError
)

// RowFeedback targets one row, optionally one column of it, with a
// validation outcome. Row is the 1-based sheet row of the record.
type RowFeedback struct {
	Row     int
	Column  string // field name or title, empty for a row-level outcome
	Status  FeedbackStatus
	Message string
}

// DefaultOKMessage marks rows that passed validation.
const DefaultOKMessage = "IMPORT OK"

const (
	okColor      = "C6EFCE"
	warningColor = "FFEB9C"
	errorColor   = "FFC7CE"
)

const commentAuthor = "exceltab"

func statusColor(s FeedbackStatus) string {
	switch s {
	case StatusWarning:
		return warningColor
	case StatusError:
		return errorColor
	}
	return okColor
}

// Annotate re-opens previously generated bytes and marks every data
// row with its validation outcome: prior comments and fills are
// cleared, a trailing status cell is written per row, and column-level
// findings recolor the offending cell and attach a comment. Rows with
// no finding receive the default OK marker. Processing stops at the
// first fully blank row.
func Annotate(data []byte, cols []ImportColumn, feedback []RowFeedback, opts ImportOptions) ([]byte, error) {
	if len(cols) == 0 {
		return nil, configErrf("no import columns configured")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if opts.Sheet == "" {
		opts.Sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(opts.Sheet)
	if err != nil {
		return nil, err
	}

	headerIdx := opts.StartRow
	for headerIdx < len(rows) && blankRow(rows[headerIdx], opts.StartCol) {
		headerIdx++
	}
	if headerIdx >= len(rows) {
		return nil, configErrf("sheet %q has no header row", opts.Sheet)
	}
	mapped, _, err := matchColumns(rows[headerIdx], opts.StartCol, cols)
	if err != nil {
		return nil, err
	}
	markerCol := len(rows[headerIdx]) + 1

	if err := clearComments(f, opts.Sheet); err != nil {
		return nil, err
	}

	styles := newStyleSet(f, defaultFontName, defaultHeaderColor)
	names := make(colNames)
	byRow := make(map[int][]RowFeedback)
	for _, fb := range feedback {
		byRow[fb.Row] = append(byRow[fb.Row], fb)
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		if blankRow(rows[i], opts.StartCol) {
			break
		}
		excelRow := i + 1
		if err := resetRow(f, styles, names, opts.Sheet, mapped, excelRow); err != nil {
			return nil, err
		}
		if err := annotateRow(f, styles, names, opts.Sheet, mapped, markerCol, excelRow, byRow[excelRow]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clearComments(f *excelize.File, sheet string) error {
	comments, err := f.GetComments(sheet)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := f.DeleteComment(sheet, c.Cell); err != nil {
			return err
		}
	}
	return nil
}

// resetRow restores every mapped cell to its neutral category style,
// wiping fills left by an earlier annotation pass.
func resetRow(f *excelize.File, styles *styleSet, names colNames, sheet string, mapped map[int]*ImportColumn, excelRow int) error {
	for idx, col := range mapped {
		styleID, err := styles.styleFor(categoryOrText(col.Category), "")
		if err != nil {
			return err
		}
		cell := names.cell(idx+1, excelRow)
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
	}
	return nil
}

func annotateRow(f *excelize.File, styles *styleSet, names colNames, sheet string, mapped map[int]*ImportColumn, markerCol, excelRow int, findings []RowFeedback) error {
	worst := StatusOK
	message := ""
	for _, fb := range findings {
		if fb.Status > worst {
			worst = fb.Status
		}
		if message == "" && fb.Message != "" {
			message = fb.Message
		}
		if fb.Column == "" {
			continue
		}
		idx, col := findMappedColumn(mapped, fb.Column)
		if col == nil {
			continue
		}
		cell := names.cell(idx+1, excelRow)
		styleID, err := styles.styleFor(categoryOrText(col.Category), statusColor(fb.Status))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
		if fb.Message != "" {
			err := f.AddComment(sheet, excelize.Comment{
				Cell:      cell,
				Author:    commentAuthor,
				Paragraph: []excelize.RichTextRun{{Text: fb.Message}},
			})
			if err != nil {
				return err
			}
		}
	}
	if message == "" {
		message = DefaultOKMessage
	}
	marker := names.cell(markerCol, excelRow)
	styleID, err := styles.markerStyle(statusColor(worst))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, marker, marker, styleID); err != nil {
		return err
	}
	return f.SetCellValue(sheet, marker, message)
}

func findMappedColumn(mapped map[int]*ImportColumn, name string) (int, *ImportColumn) {
	for idx, col := range mapped {
		if strings.EqualFold(col.Field, name) || strings.EqualFold(col.Title, name) {
			return idx, col
		}
	}
	return 0, nil
}

func categoryOrText(cat DataCategory) DataCategory {
	if cat == "" {
		return CategoryText
	}
	return cat
}
