package accounts

import "errors"

var (
	ErrMissingUserID = errors.New("account has no user id")
	ErrInvalidToken  = errors.New("invalid access token")
)
