package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSlug        = errors.New("invalid slug")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrEmptyCart          = errors.New("no products to check out")
	ErrPaymentProvider    = errors.New("payment provider error")
	ErrMalformedEvent     = errors.New("malformed payment event")
	ErrUnhandledEvent     = errors.New("event type not handled")
)
