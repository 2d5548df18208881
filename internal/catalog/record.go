// Package catalog holds the product record schema and the immutable, indexed
// collection of records loaded from the persisted catalog file.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JakeFAU/menu-catalog/internal/normalize"
)

// ErrInvalidRecord marks a record that fails schema validation.
var ErrInvalidRecord = errors.New("invalid product record")

// ProductRecord is one scraped menu item. Nutrition values are nil when the
// source page did not carry them.
type ProductRecord struct {
	URL             string   `json:"url,omitempty"`
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	Calories        *float64 `json:"calories,omitempty"`
	Fats            *float64 `json:"fats,omitempty"`
	Carbs           *float64 `json:"carbs,omitempty"`
	Proteins        *float64 `json:"proteins,omitempty"`
	UnsaturatedFats *float64 `json:"unsaturated_fats,omitempty"`
	Sugar           *float64 `json:"sugar,omitempty"`
	Salt            *float64 `json:"salt,omitempty"`
	Portion         *float64 `json:"portion,omitempty"`
}

// Validate checks the invariants every served record must satisfy.
func (p ProductRecord) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	for _, field := range normalize.NutritionFields() {
		if v := p.Nutrient(field); v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidRecord, field, *v)
		}
	}
	return nil
}

// Key returns the case-insensitive index key for the record.
func (p ProductRecord) Key() string {
	return nameKey(p.Name)
}

// HasNutrition reports whether at least one nutrition field is populated.
func (p ProductRecord) HasNutrition() bool {
	for _, field := range normalize.NutritionFields() {
		if p.Nutrient(field) != nil {
			return true
		}
	}
	return false
}

// Nutrient returns the pointer backing a canonical nutrition field, or nil
// for unknown fields.
func (p *ProductRecord) Nutrient(field string) *float64 {
	if slot := p.nutrientSlot(field); slot != nil {
		return *slot
	}
	return nil
}

// SetNutrient stores value under a canonical nutrition field. It returns
// false when field is not part of the schema.
func (p *ProductRecord) SetNutrient(field string, value float64) bool {
	slot := p.nutrientSlot(field)
	if slot == nil {
		return false
	}
	v := value
	*slot = &v
	return true
}

func (p *ProductRecord) nutrientSlot(field string) **float64 {
	switch field {
	case normalize.FieldCalories:
		return &p.Calories
	case normalize.FieldFats:
		return &p.Fats
	case normalize.FieldCarbs:
		return &p.Carbs
	case normalize.FieldProteins:
		return &p.Proteins
	case normalize.FieldUnsaturatedFats:
		return &p.UnsaturatedFats
	case normalize.FieldSugar:
		return &p.Sugar
	case normalize.FieldSalt:
		return &p.Salt
	case normalize.FieldPortion:
		return &p.Portion
	default:
		return nil
	}
}

func nameKey(name string) string {
	return strings.ToLower(name)
}
