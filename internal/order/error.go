package order

import "errors"

var (
	// -- Delivery info validation --
	ErrNameRequired    = errors.New("name is required")
	ErrPhoneRequired   = errors.New("phone number is required")
	ErrAddressRequired = errors.New("delivery address is required")

	// -- Lookup --
	ErrOrderNotFound = errors.New("order not found")
)
