package core

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrLastPage        = errors.New("cannot delete the only page")
	ErrPageLocked      = errors.New("page is locked")
	ErrInvalidGradient = errors.New("invalid gradient")
	ErrInvalidDocument = errors.New("invalid document")
	ErrNoWorkspace     = errors.New("workspace unavailable")
	ErrUnsupported     = errors.New("unsupported")
	ErrInvalidArgument = errors.New("invalid argument")
)
