package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrUnknownEntity       = errors.New("unknown entity type")
	ErrReferenceIndex      = errors.New("reference index build failed")
	ErrUnsupportedDriver   = errors.New("unsupported driver")
)
