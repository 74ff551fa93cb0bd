package entity

import "errors"

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailConflict   = errors.New("email already registered")
)
