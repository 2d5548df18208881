// Package query exposes read operations over an immutable product catalog.
package query

import (
	"errors"
	"fmt"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
)

var (
	// ErrProductNotFound is returned when no product matches the requested name.
	ErrProductNotFound = errors.New("product not found")
	// ErrFieldNotFound is returned when the product exists but the field is
	// unknown or not populated.
	ErrFieldNotFound = errors.New("field not found")
)

// Service answers catalog queries. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	catalog *catalog.Catalog
}

// NewService builds a Service over c. A nil catalog behaves as empty.
func NewService(c *catalog.Catalog) *Service {
	if c == nil {
		c = catalog.Empty()
	}
	return &Service{catalog: c}
}

// ListAll returns every product in crawl order.
func (s *Service) ListAll() []catalog.ProductRecord {
	return s.catalog.Products()
}

// Count returns the number of loaded products.
func (s *Service) Count() int {
	return s.catalog.Len()
}

// GetByName finds a product by exact name, ignoring case.
func (s *Service) GetByName(name string) (catalog.ProductRecord, error) {
	product, ok := s.catalog.Lookup(name)
	if !ok {
		return catalog.ProductRecord{}, fmt.Errorf("%w: %q", ErrProductNotFound, name)
	}
	return product, nil
}

// GetField returns a single-entry map of the matched canonical field name to
// its value. Both the product name and the field name ignore case.
func (s *Service) GetField(name, field string) (map[string]any, error) {
	product, err := s.GetByName(name)
	if err != nil {
		return nil, err
	}
	canonical, value, ok := product.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q in product %q", ErrFieldNotFound, field, name)
	}
	return map[string]any{canonical: value}, nil
}
