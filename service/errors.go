package service

import "errors"

// ErrInvalidInput marks a request rejected before any store or remote
// access happens.
var ErrInvalidInput = errors.New("invalid input")
