package domain

import "errors"

// Error taxonomy. Callers wrap these with fmt.Errorf("%w: ...") and test
// with errors.Is.
var (
	// ErrConfiguration covers missing or invalid config paths, unknown
	// modifiers, invalid provider accessor names and malformed type shapes.
	ErrConfiguration = errors.New("configuration error")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownModifier = errors.New("unknown column modifier")
	ErrReadOnly        = errors.New("config is read-only")

	// ErrDataIntegrity is returned when a fetched row lacks a key column or
	// a declared column.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrUpdate is returned by drivers when writing a row fails.
	ErrUpdate = errors.New("update failed")

	// ErrDriver is returned for an unrecognized backend.
	ErrDriver = errors.New("unknown database driver")
)
