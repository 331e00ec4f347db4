package domain

import "errors"

var (
	ErrInvalidField       = errors.New("invalid field")
	ErrInvalidHeld        = errors.New("invalid held field")
	ErrOutputField        = errors.New("field is calculated and cannot be edited")
	ErrAutoCalculateFixed = errors.New("auto-calculate cannot be toggled for this variant")
	ErrInvalidPolicy      = errors.New("invalid policy")
	ErrInvalidVariant     = errors.New("invalid variant")
	ErrInvalidSource      = errors.New("invalid input source")
	ErrSessionNotFound    = errors.New("session not found")
)
