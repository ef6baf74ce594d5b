package exceltab

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const formulaPlaceholder = "?"

// colNames caches column number to letter conversions, the lookup is
// hot in wide tables.
type colNames map[int]string

func (c colNames) name(col int) string {
	if name, ok := c[col]; ok {
		return name
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	c[col] = name
	return name
}

func (c colNames) cell(col, row int) string {
	return c.name(col) + strconv.Itoa(row)
}

func (c colNames) rangeRef(col, firstRow, lastRow int) string {
	return c.cell(col, firstRow) + ":" + c.cell(col, lastRow)
}

// qualify prefixes a reference with its sheet when the formula lives
// on a different sheet.
func qualify(sheet, ref string) string {
	if sheet == "" {
		return ref
	}
	return sheet + "!" + ref
}

// quoteCriteria renders a grouping value as a formula criteria
// literal: strings are quoted, numbers stay bare.
func quoteCriteria(v interface{}) string {
	switch x := v.(type) {
	case string:
		return `"` + strings.ReplaceAll(x, `"`, `""`) + `"`
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return `"` + fmt.Sprint(x) + `"`
	}
}

// buildAggregate composes the formula text of a computed column over
// already resolved references. For OpCustom, template placeholders are
// substituted left to right; a template with more placeholders than
// references fails.
func buildAggregate(op Operation, refs []string, template string) (string, error) {
	if op != OpCustom && len(refs) == 0 {
		return "", fmt.Errorf("operation %s needs at least one reference", op)
	}
	switch op {
	case OpSum:
		return "SUM(" + strings.Join(refs, ",") + ")", nil
	case OpSubtraction:
		return joinRanges(refs, "-"), nil
	case OpDivision:
		return joinRanges(refs, "/"), nil
	case OpCustom:
		return substituteTemplate(template, refs)
	}
	return "", fmt.Errorf("unknown operation %q", op)
}

// joinRanges wraps multi-row ranges in SUM so that subtraction and
// division stay scalar.
func joinRanges(refs []string, sep string) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		if strings.Contains(ref, ":") {
			parts[i] = "SUM(" + ref + ")"
		} else {
			parts[i] = ref
		}
	}
	return strings.Join(parts, sep)
}

func substituteTemplate(template string, refs []string) (string, error) {
	if template == "" {
		return "", fmt.Errorf("custom operation without template")
	}
	out := template
	for _, ref := range refs {
		if !strings.Contains(out, formulaPlaceholder) {
			break
		}
		out = strings.Replace(out, formulaPlaceholder, ref, 1)
	}
	if strings.Contains(out, formulaPlaceholder) {
		return "", fmt.Errorf("template %q has unresolved placeholders", template)
	}
	return out, nil
}

// buildConditionalSum composes the grouped-conditional-sum formula of
// one pivot value cell: name(sumRange, condRange1, crit1, ...).
func buildConditionalSum(name, sumRange string, condRanges, criteria []string) string {
	if name == "" {
		name = "SUMIFS"
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	sb.WriteString(sumRange)
	for i, cond := range condRanges {
		sb.WriteString(",")
		sb.WriteString(cond)
		sb.WriteString(",")
		sb.WriteString(criteria[i])
	}
	sb.WriteString(")")
	return sb.String()
}
