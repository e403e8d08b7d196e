package product

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the read-only product list the storefront sells from.
type Catalog interface {
	List(filter ProductFilter) []Product
	ByID(id string) (Product, error)
	Categories() []Category
	Featured() []Product
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
	Featured   []string   `yaml:"featured"`
}

type staticCatalog struct {
	categories []Category
	products   []Product
	byID       map[string]int
	featured   []string
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog parses and validates a YAML catalog document.
func ParseCatalog(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[c.ID] = true
	}

	c := &staticCatalog{
		categories: f.Categories,
		products:   f.Products,
		byID:       make(map[string]int, len(f.Products)),
	}

	for i, p := range f.Products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, p.ID)
		}
		if len(categories) > 0 && !categories[p.Category] {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownCategory, p.Category, p.ID)
		}
		c.byID[p.ID] = i
	}

	for _, id := range f.Featured {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("featured %w: %s", ErrProductNotFound, id)
		}
	}
	c.featured = f.Featured

	return c, nil
}

func (c *staticCatalog) List(filter ProductFilter) []Product {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if filter.Category != "" && filter.Category != CategoryAll && p.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, clone(p))
	}
	return out
}

func (c *staticCatalog) ByID(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return clone(c.products[i]), nil
}

func (c *staticCatalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

func (c *staticCatalog) Featured() []Product {
	out := make([]Product, 0, len(c.featured))
	for _, id := range c.featured {
		out = append(out, clone(c.products[c.byID[id]]))
	}
	return out
}

func clone(p Product) Product {
	p.Highlights = append([]string(nil), p.Highlights...)
	return p
}
