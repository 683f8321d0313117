package records

import (
	"fmt"
	"regexp"
	"strings"
)

// MinInlineLength is the shortest base64 payload accepted as an image.
const MinInlineLength = 100

var dataURIPattern = regexp.MustCompile(`^data:([\w.+-]+/[\w.+-]+);base64,(.+)$`)

// Reference is a reference image: either a URLReference or an InlineReference.
type Reference interface {
	reference()
	String() string
}

// URLReference is a remote image that must be fetched before submission.
type URLReference struct {
	URL string
}

func (URLReference) reference() {}

func (r URLReference) String() string {
	return r.URL
}

// InlineReference is a base64 encoded image payload.
type InlineReference struct {
	MIMEType string
	Data     string
}

func (InlineReference) reference() {}

func (r InlineReference) String() string {
	return DataURI(r.MIMEType, r.Data)
}

// ParseReference decides the reference shape once at the boundary.
// Data URIs keep their MIME type; bare base64 longer than MinInlineLength
// is treated as PNG; http(s) URLs become URLReference.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)

	if m := dataURIPattern.FindStringSubmatch(raw); m != nil {
		return InlineReference{MIMEType: m[1], Data: m[2]}, nil
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return URLReference{URL: raw}, nil
	}

	if len(raw) > MinInlineLength && !strings.HasPrefix(raw, "data:") {
		return InlineReference{MIMEType: "image/png", Data: raw}, nil
	}

	return nil, fmt.Errorf("%w: unrecognized format (%d chars)", ErrInvalidReference, len(raw))
}

// ParseReferences parses each value, returning the valid references in order
// and the errors for those that were rejected.
func ParseReferences(values []string) ([]Reference, []error) {
	refs := make([]Reference, 0, len(values))
	var errs []error

	for i, v := range values {
		ref, err := ParseReference(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("reference %d: %w", i, err))
			continue
		}
		refs = append(refs, ref)
	}

	return refs, errs
}
