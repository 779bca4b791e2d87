package models

import "errors"

var (
	// ErrNotFound is returned by stores when a keyed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEntry is returned when an entry id is already stored.
	ErrDuplicateEntry = errors.New("usage entry already exists")
)
