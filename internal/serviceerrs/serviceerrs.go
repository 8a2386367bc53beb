package serviceerrs

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidToken  = errors.New("invalid token")
	ErrHashBusy      = errors.New("password hashing is busy")
	ErrEmptySecret   = errors.New("secret key is empty")
)
