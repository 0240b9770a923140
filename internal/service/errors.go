package service

import "errors"

var (
	ErrValidation           = errors.New("validation error")
	ErrConflict             = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidRole          = errors.New("role_id is invalid")
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
	ErrInvalidSort          = errors.New("invalid sort_by")
)
