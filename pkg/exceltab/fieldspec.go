package exceltab

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// FieldSpec is the resolved export/import metadata of one struct field.
// Derived once per record type and cached for the life of a builder or
// import call.
type FieldSpec struct {
	Name     string
	Index    int
	Order    int
	Label    string
	Category DataCategory
	Color    string
	Required bool
	Aliases  []string
	Special  bool

	FormulaOp       Operation
	FormulaCols     []string
	FormulaTemplate string
}

// typeSpecs holds every resolved spec of one record type. Ordinary
// fields are sorted by order; special fields keep their own order
// space and never take part in ordinary cell mapping.
type typeSpecs struct {
	ordered []FieldSpec
	special []FieldSpec
	byKey   map[string]*FieldSpec // lowercased field name and label
}

func (s *typeSpecs) lookup(name string) *FieldSpec {
	return s.byKey[strings.ToLower(name)]
}

func (s *typeSpecs) minOrder() int {
	if len(s.ordered) == 0 {
		return 0
	}
	return s.ordered[0].Order
}

func (s *typeSpecs) maxOrder() int {
	if len(s.ordered) == 0 {
		return 0
	}
	return s.ordered[len(s.ordered)-1].Order
}

// resolveSpecs introspects a struct type and extracts the specs of
// every field carrying an `excel` tag. Fields without the tag are
// skipped, absence of metadata is exclusion, not an error.
func resolveSpecs(t reflect.Type) (*typeSpecs, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, configErrf("record type %s is not a struct", t)
	}
	specs := &typeSpecs{byKey: make(map[string]*FieldSpec)}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, ok := field.Tag.Lookup("excel")
		if !ok {
			continue
		}
		spec, err := parseFieldTag(field, i, tag)
		if err != nil {
			return nil, err
		}
		if spec.Special {
			specs.special = append(specs.special, spec)
		} else {
			specs.ordered = append(specs.ordered, spec)
		}
	}
	sort.SliceStable(specs.ordered, func(i, j int) bool {
		return specs.ordered[i].Order < specs.ordered[j].Order
	})
	for i := range specs.ordered {
		spec := &specs.ordered[i]
		specs.byKey[strings.ToLower(spec.Name)] = spec
		specs.byKey[strings.ToLower(spec.Label)] = spec
	}
	return specs, nil
}

func parseFieldTag(field reflect.StructField, index int, tag string) (FieldSpec, error) {
	spec := FieldSpec{
		Name:     field.Name,
		Index:    index,
		Label:    field.Name,
		Category: CategoryText,
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value := part, ""
		if eq := strings.Index(part, "="); eq >= 0 {
			key, value = part[:eq], part[eq+1:]
		}
		switch key {
		case "label":
			spec.Label = value
		case "order":
			n, err := strconv.Atoi(value)
			if err != nil {
				return spec, configErrf("field %s: bad order %q", field.Name, value)
			}
			spec.Order = n
		case "category":
			switch DataCategory(value) {
			case CategoryText, CategoryNumber, CategoryCurrency, CategoryDate, CategoryPercentage, CategoryFormula:
				spec.Category = DataCategory(value)
			default:
				return spec, configErrf("field %s: unknown category %q", field.Name, value)
			}
		case "color":
			spec.Color = value
		case "required":
			spec.Required = true
		case "special":
			spec.Special = true
		case "alias":
			for _, a := range strings.Split(value, "|") {
				if a = strings.TrimSpace(a); a != "" {
					spec.Aliases = append(spec.Aliases, a)
				}
			}
		default:
			return spec, configErrf("field %s: unknown excel tag key %q", field.Name, key)
		}
	}
	if formula, ok := field.Tag.Lookup("formula"); ok {
		if err := parseFormulaTag(&spec, formula); err != nil {
			return spec, err
		}
		spec.Category = CategoryFormula
	}
	return spec, nil
}

func parseFormulaTag(spec *FieldSpec, tag string) error {
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value := part, ""
		if eq := strings.Index(part, "="); eq >= 0 {
			key, value = part[:eq], part[eq+1:]
		}
		switch key {
		case "op":
			switch Operation(value) {
			case OpSum, OpSubtraction, OpDivision, OpCustom:
				spec.FormulaOp = Operation(value)
			default:
				return configErrf("field %s: unknown formula operation %q", spec.Name, value)
			}
		case "cols":
			for _, c := range strings.Split(value, "|") {
				if c = strings.TrimSpace(c); c != "" {
					spec.FormulaCols = append(spec.FormulaCols, c)
				}
			}
		case "template":
			spec.FormulaTemplate = value
		default:
			return configErrf("field %s: unknown formula tag key %q", spec.Name, key)
		}
	}
	if spec.FormulaOp == "" {
		return configErrf("field %s: formula tag without operation", spec.Name)
	}
	return nil
}

// tableTitle resolves the display title of a table: the explicit
// override, the type's own TableName, or the bare type name.
func tableTitle(override string, sample interface{}) string {
	if override != "" {
		return override
	}
	if n, ok := sample.(TableNamer); ok {
		return n.TableName()
	}
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// ColumnsFor derives an import column configuration from a record
// type's excel tags: label becomes the matched title, aliases and the
// required and special flags carry over.
func ColumnsFor(sample interface{}) ([]ImportColumn, error) {
	specs, err := resolveSpecs(reflect.TypeOf(sample))
	if err != nil {
		return nil, err
	}
	cols := make([]ImportColumn, 0, len(specs.ordered)+len(specs.special))
	for _, spec := range specs.ordered {
		cols = append(cols, ImportColumn{
			Title:    spec.Label,
			Field:    spec.Name,
			Category: spec.Category,
			Aliases:  spec.Aliases,
			Required: spec.Required,
		})
	}
	for _, spec := range specs.special {
		cols = append(cols, ImportColumn{
			Title:   spec.Label,
			Field:   spec.Name,
			Aliases: spec.Aliases,
			Special: true,
		})
	}
	return cols, nil
}
