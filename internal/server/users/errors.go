package users

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUnknownUser    = errors.New("unknown user")
	ErrDuplicateEmail = errors.New("duplicate email")
)
