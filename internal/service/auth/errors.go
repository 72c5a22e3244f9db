package auth

import "errors"

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpToken        = errors.New("expired token")
	ErrInvalidRole     = errors.New("invalid role in token")
	ErrActionForbidden = errors.New("action forbidden")
)
