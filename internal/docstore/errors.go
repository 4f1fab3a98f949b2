package docstore

import "errors"

// Common errors for document store operations.
var (
	ErrNotFound         = errors.New("document not found")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrClosed           = errors.New("store closed")
)
