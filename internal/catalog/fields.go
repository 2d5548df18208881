package catalog

import (
	"strings"

	"github.com/JakeFAU/menu-catalog/internal/normalize"
)

type fieldAccessor struct {
	name string
	get  func(ProductRecord) any
}

func stringField(name string, get func(ProductRecord) string) fieldAccessor {
	return fieldAccessor{name: name, get: func(p ProductRecord) any {
		return get(p)
	}}
}

// nutrientField yields an untyped nil for an absent value so it encodes as null.
func nutrientField(name string) fieldAccessor {
	return fieldAccessor{name: name, get: func(p ProductRecord) any {
		v := p.Nutrient(name)
		if v == nil {
			return nil
		}
		return *v
	}}
}

// fieldTable lists every addressable record field in JSON order.
var fieldTable = func() []fieldAccessor {
	table := []fieldAccessor{
		stringField("url", func(p ProductRecord) string { return p.URL }),
		stringField("name", func(p ProductRecord) string { return p.Name }),
		stringField("description", func(p ProductRecord) string { return p.Description }),
	}
	for _, field := range normalize.NutritionFields() {
		table = append(table, nutrientField(field))
	}
	return table
}()

// FieldNames returns the canonical names of all record fields.
func FieldNames() []string {
	names := make([]string, 0, len(fieldTable))
	for _, f := range fieldTable {
		names = append(names, f.name)
	}
	return names
}

// Field looks up a schema field by name, ignoring case. It returns the
// canonical field name and value; absent nutrients are nil and absent text is
// empty. ok is false only for names outside the schema.
func (p ProductRecord) Field(name string) (string, any, bool) {
	for _, f := range fieldTable {
		if !strings.EqualFold(f.name, name) {
			continue
		}
		return f.name, f.get(p), true
	}
	return "", nil, false
}
