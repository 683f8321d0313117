package records

import "errors"

var (
	ErrInvalidPrompt      = errors.New("prompt must not be empty")
	ErrInvalidAspectRatio = errors.New("unsupported aspect ratio")
	ErrInvalidModel       = errors.New("unsupported model")
	ErrInvalidReference   = errors.New("invalid reference image")
)
