package model

import "errors"

// Sentinel errors shared by the store drivers and HTTP handlers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)
