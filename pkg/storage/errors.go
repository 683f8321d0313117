package storage

import "errors"

// Errors returned by System implementations.
var (
	ErrNotFound         = errors.New("storage: key not found")
	ErrPermissionDenied = errors.New("storage: permission denied")
	// ErrInvalidKey covers empty keys and path traversal attempts.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrExists is returned by Create when the key is already occupied.
	ErrExists = errors.New("storage: key already exists")
)
