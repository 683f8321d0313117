package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/docker/go-units"
	"github.com/gabriel-vasile/mimetype"
	"github.com/patrickmn/go-cache"
)

// inlineImage is a decoded reference ready to send as an inline part.
type inlineImage struct {
	mimeType string
	data     []byte
}

// resolver turns references into inline image payloads, fetching URL
// references over HTTP and caching the fetched results.
type resolver struct {
	http    *http.Client
	cache   *cache.Cache
	maxSize int64
	logger  *slog.Logger
}

func newResolver(httpClient *http.Client, maxSize int64, ttl time.Duration, logger *slog.Logger) *resolver {
	return &resolver{
		http:    httpClient,
		cache:   cache.New(ttl, 2*ttl),
		maxSize: maxSize,
		logger:  logger,
	}
}

// resolve returns the references that could be decoded, in order.
// Failures are logged and the reference is dropped.
func (r *resolver) resolve(ctx context.Context, refs []records.Reference) []inlineImage {
	images := make([]inlineImage, 0, len(refs))

	for i, ref := range refs {
		img, err := r.resolveOne(ctx, ref)
		if err != nil {
			r.logger.Warn("reference image skipped", "index", i, "error", err)
			continue
		}
		images = append(images, img)
		r.logger.Debug("reference image added",
			"index", i,
			"mime_type", img.mimeType,
			"size", units.HumanSize(float64(len(img.data))),
		)
	}

	return images
}

func (r *resolver) resolveOne(ctx context.Context, ref records.Reference) (inlineImage, error) {
	switch ref := ref.(type) {
	case records.InlineReference:
		return decodeInline(ref)
	case records.URLReference:
		if cached, ok := r.cache.Get(ref.URL); ok {
			return cached.(inlineImage), nil
		}
		img, err := r.fetch(ctx, ref.URL)
		if err != nil {
			return inlineImage{}, err
		}
		r.cache.Set(ref.URL, img, cache.DefaultExpiration)
		return img, nil
	default:
		return inlineImage{}, fmt.Errorf("%w: unsupported reference type %T", records.ErrInvalidReference, ref)
	}
}

func decodeInline(ref records.InlineReference) (inlineImage, error) {
	if len(ref.Data) <= records.MinInlineLength {
		return inlineImage{}, fmt.Errorf("%w: inline payload too short (%d chars)", records.ErrInvalidReference, len(ref.Data))
	}

	data, err := base64.StdEncoding.DecodeString(ref.Data)
	if err != nil {
		return inlineImage{}, fmt.Errorf("%w: %v", records.ErrInvalidReference, err)
	}

	return inlineImage{mimeType: ref.MIMEType, data: data}, nil
}

func (r *resolver) fetch(ctx context.Context, url string) (inlineImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return inlineImage{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return inlineImage{}, fmt.Errorf("fetch reference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return inlineImage{}, fmt.Errorf("fetch reference: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return inlineImage{}, fmt.Errorf("read reference: %w", err)
	}
	if int64(len(data)) > r.maxSize {
		return inlineImage{}, fmt.Errorf("reference exceeds %s", units.HumanSize(float64(r.maxSize)))
	}
	if len(data) == 0 {
		return inlineImage{}, fmt.Errorf("reference body is empty")
	}

	mimeType := contentType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return inlineImage{}, fmt.Errorf("reference is not an image: %s", mimeType)
	}

	return inlineImage{mimeType: mimeType, data: data}, nil
}

func contentType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}
