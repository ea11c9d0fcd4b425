package domain

import "errors"

// Guest validation errors. These mirror the field-level rules the scheduling
// widget enforces before a submit is allowed to reach the network.
var (
	ErrGuestFirstNameRequired = errors.New("first name is required")
	ErrGuestLastNameRequired  = errors.New("last name is required")
	ErrGuestEmailInvalid      = errors.New("email address is invalid")
	ErrGuestPhoneInvalid      = errors.New("phone number is invalid")
)
