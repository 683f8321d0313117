package console

import "errors"

var (
	ErrCredentialRequired = errors.New("provider credential required")
	ErrEmptyCredential    = errors.New("credential must not be empty")
	ErrNotFound           = errors.New("record not found")
	ErrClosed             = errors.New("console is closed")
)

// Messages recorded on records when background work fails.
const (
	MessageInvalidCredential = "Invalid credential"
	MessageUploadFailed      = "Saved locally only (remote upload failed)"
	MessageFailed            = "Failed"
)
