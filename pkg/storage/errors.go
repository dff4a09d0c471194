package storage

import "errors"

// ErrNotFound is returned when the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// ErrAlreadyExists is returned when a conditional put finds an item already in place,
// e.g. a duplicate account number or a second granted consent of the same type.
var ErrAlreadyExists = errors.New("item already exists")

// ErrVersionConflict is returned when an optimistic-lock check fails because the item changed
// between the read and the write.
var ErrVersionConflict = errors.New("item was modified concurrently")
