package user

import "errors"

var (
	ErrMissingFields         = errors.New("please fill in all fields")
	ErrMissingRequiredFields = errors.New("please fill in all required fields")
	ErrPasswordTooShort      = errors.New("password must be at least 6 characters")
	ErrInvalidEmail          = errors.New("please enter a valid email address")
	ErrNotAuthenticated      = errors.New("not signed in")
	ErrInvalidToken          = errors.New("invalid session token")
)
