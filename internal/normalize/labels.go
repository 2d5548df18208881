package normalize

// Canonical nutrition field names used in the catalog file.
const (
	FieldCalories        = "calories"
	FieldFats            = "fats"
	FieldCarbs           = "carbs"
	FieldProteins        = "proteins"
	FieldUnsaturatedFats = "unsaturated_fats"
	FieldSugar           = "sugar"
	FieldSalt            = "salt"
	FieldPortion         = "portion"
)

// labelMap maps normalized labels from the Ukrainian menu site to field names.
// Some labels keep their trailing colon because the site renders them that way.
var labelMap = map[string]string{
	"калорійність":    FieldCalories,
	"жири":            FieldFats,
	"вуглеводи":       FieldCarbs,
	"білки":           FieldProteins,
	"ненасичені жири": FieldUnsaturatedFats,
	"нжк:":            FieldUnsaturatedFats,
	"цукор:":          FieldSugar,
	"сіль:":           FieldSalt,
	"порція:":         FieldPortion,
}

// LookupLabel resolves a raw page label to its canonical field name.
func LookupLabel(raw string) (string, bool) {
	field, ok := labelMap[NormalizeLabel(raw)]
	return field, ok
}

// NutritionFields lists the canonical nutrition fields in catalog order.
func NutritionFields() []string {
	return []string{
		FieldCalories,
		FieldFats,
		FieldCarbs,
		FieldProteins,
		FieldUnsaturatedFats,
		FieldSugar,
		FieldSalt,
		FieldPortion,
	}
}
