package services

import "errors"

// Validation failures. Controllers map them to 4xx notices.
var (
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrBlocked            = errors.New("account is blocked")
	ErrForbidden          = errors.New("not allowed")
	ErrInvalidCreative    = errors.New("creative rejected")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrPlacementTaken     = errors.New("placement is rented by another organization")
)
