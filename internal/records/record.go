// Package records defines generated image records, generation requests,
// and the merge protocol that reconciles local and remote collections.
package records

import (
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a record. Pending is transient;
// success and error are terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Terminal reports whether s is success or error.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Record is a single tracked generation attempt and its outcome.
// The JSON field names are the local snapshot wire format.
type Record struct {
	ID           string      `json:"id"`
	URL          string      `json:"url,omitempty"`
	Prompt       string      `json:"prompt"`
	AspectRatio  AspectRatio `json:"aspectRatio"`
	Timestamp    int64       `json:"timestamp"`
	Status       Status      `json:"status"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// Time returns the record timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// InlineData splits a data URI url into its MIME type and base64 payload.
// It returns ok=false for remote URLs and empty urls.
func (r Record) InlineData() (mimeType, data string, ok bool) {
	rest, found := strings.CutPrefix(r.URL, "data:")
	if !found {
		return "", "", false
	}
	mimeType, data, found = strings.Cut(rest, ";base64,")
	if !found || mimeType == "" || data == "" {
		return "", "", false
	}
	return mimeType, data, true
}

// DataURI formats an inline payload as a data URI.
func DataURI(mimeType, data string) string {
	return "data:" + mimeType + ";base64," + data
}

// AspectRatio is one of the fixed output ratios.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectTall      AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// AspectRatios lists every supported ratio.
var AspectRatios = []AspectRatio{
	AspectSquare,
	AspectPortrait,
	AspectLandscape,
	AspectTall,
	AspectWide,
}

func (a AspectRatio) Valid() bool {
	return slices.Contains(AspectRatios, a)
}

// Model identifies a provider model.
type Model string

const (
	ModelGeminiProImage   Model = "gemini-3-pro-image-preview"
	ModelGeminiFlashImage Model = "gemini-2.5-flash-image"
	ModelImagen           Model = "imagen-4.0-generate-001"
	ModelImagenFast       Model = "imagen-4.0-fast-generate-001"

	DefaultModel = ModelGeminiProImage
)

// Models lists every supported model.
var Models = []Model{
	ModelGeminiProImage,
	ModelGeminiFlashImage,
	ModelImagen,
	ModelImagenFast,
}

func (m Model) Valid() bool {
	return slices.Contains(Models, m)
}

// ImagesOnly reports whether the model belongs to the image-only family,
// which takes count and aspect parameters but no reference images.
func (m Model) ImagesOnly() bool {
	return strings.HasPrefix(string(m), "imagen-")
}

// Medium is the target of prompt improvement.
type Medium string

const (
	MediumImage Medium = "image"
	MediumVideo Medium = "video"
)
