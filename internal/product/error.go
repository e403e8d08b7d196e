package product

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrInvalidPrice     = errors.New("product price must not be negative")
	ErrUnknownCategory  = errors.New("unknown product category")
)
