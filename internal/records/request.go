package records

import (
	"fmt"
	"strings"
)

// GenerationRequest is a caller-supplied generation job.
type GenerationRequest struct {
	Prompt      string
	AspectRatio AspectRatio
	Model       Model
	References  []Reference
}

// Normalize applies the default model and trims the prompt.
func (r *GenerationRequest) Normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Model == "" {
		r.Model = DefaultModel
	}
}

// Validate reports the first invalid field.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrInvalidPrompt
	}
	if !r.AspectRatio.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAspectRatio, r.AspectRatio)
	}
	if !r.Model.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidModel, r.Model)
	}
	return nil
}
