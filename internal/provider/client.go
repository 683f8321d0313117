// Package provider issues image generation requests to the Gemini API,
// retrying rate-limited calls with exponential backoff and jitter.
package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrMissingCredential is returned when no credential is supplied.
var ErrMissingCredential = errors.New("provider credential is missing")

// Models is the subset of *genai.Models the client calls.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Factory builds a Models handle bound to credential.
type Factory func(ctx context.Context, credential string) (Models, error)

// GenAI is the production Factory backed by the Gemini developer API.
func GenAI(ctx context.Context, credential string) (Models, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client.Models, nil
}

// Image is a generated image payload: base64 data tagged with a MIME type.
type Image struct {
	MIMEType string
	Data     string
}

// DataURI formats the image as a data URI.
func (i Image) DataURI() string {
	return records.DataURI(i.MIMEType, i.Data)
}

// Client generates images and improves prompts.
type Client struct {
	factory     Factory
	resolver    *resolver
	limiter     *rate.Limiter
	promptModel string
	baseDelay   time.Duration
	jitter      time.Duration
	maxRetries  int
	logger      *slog.Logger
}

// New creates a provider client. httpClient fetches URL references.
func New(cfg *Config, factory Factory, httpClient *http.Client, logger *slog.Logger) *Client {
	logger = logger.With("system", "provider")

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.ReferenceTimeoutDuration()}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		factory:     factory,
		resolver:    newResolver(httpClient, cfg.ReferenceMaxBytes(), cfg.ReferenceCacheTTLDuration(), logger),
		limiter:     limiter,
		promptModel: cfg.PromptModel,
		baseDelay:   cfg.BaseDelayDuration(),
		jitter:      cfg.JitterDuration(),
		maxRetries:  cfg.MaxRetries,
		logger:      logger,
	}
}

// Generate runs one generation request. Rate-limit failures are retried up
// to the configured bound; every other failure is returned immediately.
// Returned errors are *Error values.
func (c *Client) Generate(ctx context.Context, credential string, req records.GenerationRequest) (Image, error) {
	if credential == "" {
		return Image{}, &Error{Message: ErrMissingCredential.Error(), Cause: ErrMissingCredential}
	}

	models, err := c.factory(ctx, credential)
	if err != nil {
		return Image{}, classify(err)
	}

	var references []inlineImage
	if !req.Model.ImagesOnly() && len(req.References) > 0 {
		references = c.resolver.resolve(ctx, req.References)
	}

	var (
		img     Image
		attempt int
	)

	op := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		var err error
		if req.Model.ImagesOnly() {
			img, err = c.generateImages(ctx, models, req)
		} else {
			img, err = c.generateContent(ctx, models, req, references)
		}
		if err == nil {
			return nil
		}

		perr := classify(err)
		if !perr.RateLimited() {
			return backoff.Permanent(perr)
		}
		return perr
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("rate limited, retrying",
			"model", req.Model,
			"attempt", attempt,
			"wait", wait.Round(time.Millisecond),
			"error", err,
		)
	}

	policy := backoff.WithContext(newRetryPolicy(c.baseDelay, c.jitter, c.maxRetries), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.logger.Error("generation failed", "model", req.Model, "attempts", attempt, "error", err)
		return Image{}, classify(err)
	}

	c.logger.Info("generation succeeded", "model", req.Model, "attempts", attempt, "mime_type", img.MIMEType)
	return img, nil
}

func (c *Client) generateContent(ctx context.Context, models Models, req records.GenerationRequest, references []inlineImage) (Image, error) {
	parts := make([]*genai.Part, 0, len(references)+1)
	parts = append(parts, genai.NewPartFromText(guidedPrompt(req.Prompt, len(references))))
	for _, ref := range references {
		parts = append(parts, genai.NewPartFromBytes(ref.data, ref.mimeType))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(req.AspectRatio),
		},
	}

	resp, err := models.GenerateContent(ctx, string(req.Model), contents, config)
	if err != nil {
		return Image{}, err
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Image{}, ErrEmptyResponse
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return Image{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
		}, nil
	}

	return Image{}, ErrNoImageData
}

func (c *Client) generateImages(ctx context.Context, models Models, req records.GenerationRequest) (Image, error) {
	resp, err := models.GenerateImages(ctx, string(req.Model), req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    string(req.AspectRatio),
	})
	if err != nil {
		return Image{}, err
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return Image{}, ErrNoImages
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return Image{}, ErrNoImageData
	}

	mimeType := generated.Image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return Image{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(generated.Image.ImageBytes),
	}, nil
}

// ImprovePrompt asks the prompt model to expand text for medium.
// It never fails: on any error or empty output the input is returned unchanged.
func (c *Client) ImprovePrompt(ctx context.Context, credential, text string, medium records.Medium) string {
	if credential == "" || strings.TrimSpace(text) == "" {
		return text
	}

	models, err := c.factory(ctx, credential)
	if err != nil {
		c.logger.Warn("prompt improvement unavailable", "error", err)
		return text
	}

	resp, err := models.GenerateContent(ctx, c.promptModel, genai.Text(improverPrompt(text, medium)), nil)
	if err != nil {
		c.logger.Warn("prompt improvement failed", "medium", medium, "error", err)
		return text
	}
	if resp == nil {
		return text
	}

	improved := strings.TrimSpace(resp.Text())
	if improved == "" {
		return text
	}
	return improved
}
