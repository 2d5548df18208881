package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// Catalog is the serving-time view of the product list. It is built once and
// never mutated, so concurrent readers need no locking.
type Catalog struct {
	products []ProductRecord
	byName   map[string]ProductRecord
}

// New indexes records in order. Later records win on name collisions.
func New(records []ProductRecord) *Catalog {
	c := &Catalog{
		products: make([]ProductRecord, len(records)),
		byName:   make(map[string]ProductRecord, len(records)),
	}
	copy(c.products, records)
	for _, p := range c.products {
		c.byName[p.Key()] = p
	}
	return c
}

// Empty returns a catalog with no products.
func Empty() *Catalog {
	return New(nil)
}

// Products returns the records in crawl order.
func (c *Catalog) Products() []ProductRecord {
	out := make([]ProductRecord, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup finds a product by name, ignoring case.
func (c *Catalog) Lookup(name string) (ProductRecord, bool) {
	p, ok := c.byName[nameKey(name)]
	return p, ok
}

// Len reports the number of records in crawl order, duplicates included.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Load reads the catalog file at path. Any file-level failure yields an empty
// catalog so the API can still start; the cause is logged.
func Load(path string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Loading product catalog", zap.String("path", path))
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration.
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("Catalog file not found; serving an empty catalog. Run the crawl first.",
				zap.String("path", path))
		} else {
			logger.Error("Failed to read catalog file; serving an empty catalog",
				zap.String("path", path), zap.Error(err))
		}
		return Empty()
	}
	c, err := Decode(bytes.NewReader(data), logger)
	if err != nil {
		logger.Error("Failed to decode catalog file; serving an empty catalog",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}
	logger.Info("Product catalog loaded", zap.String("path", path), zap.Int("products", c.Len()))
	return c
}

// ErrTrailingData reports content after the top-level JSON array.
var ErrTrailingData = errors.New("unexpected data after catalog array")

// Decode parses a JSON array of product objects. Elements that fail to decode
// or validate are skipped with a warning; only a malformed document is an error.
func Decode(r io.Reader, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dec := json.NewDecoder(r)
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", ErrTrailingData)
	}
	records := make([]ProductRecord, 0, len(raw))
	for i, elem := range raw {
		record, err := decodeRecord(elem)
		if err != nil {
			logger.Warn("Skipping invalid product record",
				zap.Int("index", i),
				zap.String("name", peekName(elem)),
				zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return New(records), nil
}

func decodeRecord(elem json.RawMessage) (ProductRecord, error) {
	var record ProductRecord
	if err := json.Unmarshal(elem, &record); err != nil {
		return ProductRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := record.Validate(); err != nil {
		return ProductRecord{}, err
	}
	return record, nil
}

func peekName(elem json.RawMessage) string {
	var probe struct {
		Name any `json:"name"`
	}
	if err := json.Unmarshal(elem, &probe); err != nil || probe.Name == nil {
		return "N/A"
	}
	return fmt.Sprint(probe.Name)
}

// Encode writes records as an indented JSON array, keeping non-ASCII text
// readable.
func Encode(w io.Writer, records []ProductRecord) error {
	if records == nil {
		records = []ProductRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// Marshal returns the encoded form of records.
func Marshal(records []ProductRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
