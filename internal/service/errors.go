package service

import "errors"

// ErrThreadNotFound is returned when an operation references a thread that
// does not exist. The handler layer maps it to 404.
var ErrThreadNotFound = errors.New("thread not found")
