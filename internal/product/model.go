package product

import "github.com/shopspring/decimal"

// CategoryAll matches every product.
const CategoryAll = "all"

type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Emoji string `json:"emoji" yaml:"emoji"`
}

type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Category    string          `json:"category" yaml:"category"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Unit        string          `json:"unit" yaml:"unit"`
	Eggs        int             `json:"eggs" yaml:"eggs"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Badge       string          `json:"badge,omitempty" yaml:"badge"`
	Emoji       string          `json:"emoji,omitempty" yaml:"emoji"`
	Rating      float64         `json:"rating,omitempty" yaml:"rating"`
	ReviewCount int             `json:"reviewCount,omitempty" yaml:"reviewCount"`
	InStock     bool            `json:"inStock" yaml:"inStock"`
	Highlights  []string        `json:"highlights,omitempty" yaml:"highlights"`
}

type ProductFilter struct {
	// Category is a category id; empty or CategoryAll matches everything.
	Category string
	// Search is matched case-insensitively against name and description.
	Search string
}
