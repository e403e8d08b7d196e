package order

import (
	"errors"
	"strings"
)

type DeliveryInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (d DeliveryInfo) Normalize() DeliveryInfo {
	return DeliveryInfo{
		Name:    strings.TrimSpace(d.Name),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
		Notes:   strings.TrimSpace(d.Notes),
	}
}

// Validate reports every missing required field at once.
func (d DeliveryInfo) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if strings.TrimSpace(d.Phone) == "" {
		errs = append(errs, ErrPhoneRequired)
	}
	if strings.TrimSpace(d.Address) == "" {
		errs = append(errs, ErrAddressRequired)
	}
	return errors.Join(errs...)
}
