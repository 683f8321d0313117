package remote

import "errors"

var (
	ErrNotFound  = errors.New("generated image not found")
	ErrDuplicate = errors.New("generated image already exists")
)
