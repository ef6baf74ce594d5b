package exceltab

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	numFmtNumber     = "#,##0.00"
	numFmtCurrency   = `#,##0.00 "€"`
	numFmtDate       = "dd/mm/yyyy"
	numFmtPercentage = "0.00%"
)

// styleSet caches every style resource of one workbook. Styles are
// keyed by a signature string so that the number of distinct resources
// is bounded by the distinct (category, color) pairs actually used,
// never by the number of cells written.
type styleSet struct {
	f           *excelize.File
	fontName    string
	headerColor string
	cache       map[string]int
}

func newStyleSet(f *excelize.File, fontName, headerColor string) *styleSet {
	return &styleSet{
		f:           f,
		fontName:    fontName,
		headerColor: headerColor,
		cache:       make(map[string]int),
	}
}

func (s *styleSet) count() int {
	return len(s.cache)
}

func (s *styleSet) memoize(key string, build func() *excelize.Style) (int, error) {
	if id, ok := s.cache[key]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(build())
	if err != nil {
		return 0, err
	}
	s.cache[key] = id
	return id, nil
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Style: 1, Color: "808080"})
	}
	return borders
}

func categoryNumFmt(cat DataCategory) string {
	switch cat {
	case CategoryNumber, CategoryFormula:
		return numFmtNumber
	case CategoryCurrency:
		return numFmtCurrency
	case CategoryDate:
		return numFmtDate
	case CategoryPercentage:
		return numFmtPercentage
	}
	return ""
}

// styleFor returns the data-cell style of one category, optionally
// filled with an override color.
func (s *styleSet) styleFor(cat DataCategory, color string) (int, error) {
	var sb strings.Builder
	sb.WriteString("cell|")
	sb.WriteString(string(cat))
	sb.WriteString("|")
	sb.WriteString(color)
	return s.memoize(sb.String(), func() *excelize.Style {
		style := &excelize.Style{
			Font:      &excelize.Font{Family: s.fontName, Size: 11},
			Border:    thinBorders(),
			Alignment: &excelize.Alignment{Vertical: "center"},
		}
		if fmtCode := categoryNumFmt(cat); fmtCode != "" {
			code := fmtCode
			style.CustomNumFmt = &code
		}
		if color != "" {
			style.Fill = excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
		}
		return style
	})
}

// formulaStyle is the bold variant applied to computed cells so that
// formula results stand apart from plain data.
func (s *styleSet) formulaStyle(color string) (int, error) {
	var sb strings.Builder
	sb.WriteString("formula|")
	sb.WriteString(color)
	return s.memoize(sb.String(), func() *excelize.Style {
		code := numFmtNumber
		style := &excelize.Style{
			Font:         &excelize.Font{Family: s.fontName, Size: 11, Bold: true},
			Border:       thinBorders(),
			Alignment:    &excelize.Alignment{Vertical: "center"},
			CustomNumFmt: &code,
		}
		if color != "" {
			style.Fill = excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
		}
		return style
	})
}

func (s *styleSet) headerStyle() (int, error) {
	return s.memoize("header", func() *excelize.Style {
		return &excelize.Style{
			Font:      &excelize.Font{Family: s.fontName, Size: 11, Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{s.headerColor}, Pattern: 1},
			Border:    thinBorders(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}
	})
}

func (s *styleSet) titleStyle() (int, error) {
	return s.memoize("title", func() *excelize.Style {
		return &excelize.Style{
			Font:      &excelize.Font{Family: s.fontName, Size: 14, Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{s.headerColor}, Pattern: 1},
			Border:    thinBorders(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}
	})
}

func (s *styleSet) labelStyle(bold bool) (int, error) {
	key := "label|plain"
	if bold {
		key = "label|bold"
	}
	return s.memoize(key, func() *excelize.Style {
		return &excelize.Style{
			Font:      &excelize.Font{Family: s.fontName, Size: 11, Bold: bold, Italic: !bold},
			Alignment: &excelize.Alignment{Vertical: "center"},
		}
	})
}

// markerStyle colors the trailing status cell written by the feedback
// pass.
func (s *styleSet) markerStyle(color string) (int, error) {
	var sb strings.Builder
	sb.WriteString("marker|")
	sb.WriteString(color)
	return s.memoize(sb.String(), func() *excelize.Style {
		style := &excelize.Style{
			Font:      &excelize.Font{Family: s.fontName, Size: 11},
			Border:    thinBorders(),
			Alignment: &excelize.Alignment{Vertical: "center"},
		}
		if color != "" {
			style.Fill = excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
		}
		return style
	})
}
