// Package api exposes the console over HTTP JSON.
package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/image-lab/internal/console"
	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/JaimeStill/image-lab/pkg/handlers"
	"github.com/JaimeStill/image-lab/pkg/pagination"
	"github.com/JaimeStill/image-lab/pkg/routes"
	"github.com/JaimeStill/image-lab/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
)

// Console is the lifecycle manager surface the API drives.
type Console interface {
	Submit(ctx context.Context, req records.GenerationRequest) (records.Record, error)
	Records() []records.Record
	Find(id string) (records.Record, error)
	Delete(ctx context.Context, ids ...string) int
	ImprovePrompt(ctx context.Context, text string, medium records.Medium) string
	SetCredential(ctx context.Context, credential string) error
	ClearCredential(ctx context.Context) error
	CredentialStatus() console.CredentialStatus
}

// Handler serves the console API, remote blobs, and health probes.
type Handler struct {
	console    Console
	blobs      storage.System
	folder     string
	ready      func() bool
	schemas    schemas
	pagination pagination.Config
	maxBody    int64
	logger     *slog.Logger
}

// NewHandler compiles the request schemas and creates a Handler.
// Only blob keys under folder are served. ready reports whether the service
// has finished starting.
func NewHandler(
	c Console,
	blobs storage.System,
	folder string,
	ready func() bool,
	pagination pagination.Config,
	maxBody int64,
	logger *slog.Logger,
) (*Handler, error) {
	s, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	return &Handler{
		console:    c,
		blobs:      blobs,
		folder:     strings.Trim(folder, "/"),
		ready:      ready,
		schemas:    s,
		pagination: pagination,
		maxBody:    maxBody,
		logger:     logger.With("system", "api"),
	}, nil
}

// Routes returns every route group the handler serves.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix:      "/api/generations",
			Description: "Generation submission",
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: h.Generate},
			},
		},
		{
			Prefix:      "/api/images",
			Description: "Generated image records",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.List},
				{Method: "GET", Pattern: "/{id}", Handler: h.Get},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
				{Method: "POST", Pattern: "/delete", Handler: h.DeleteBatch},
			},
		},
		{
			Prefix:      "/api/prompts",
			Description: "Prompt improvement",
			Routes: []routes.Route{
				{Method: "POST", Pattern: "/improve", Handler: h.ImprovePrompt},
			},
		},
		{
			Prefix:      "/api/credential",
			Description: "Provider credential",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.CredentialStatus},
				{Method: "PUT", Pattern: "", Handler: h.SetCredential},
				{Method: "DELETE", Pattern: "", Handler: h.ClearCredential},
			},
		},
		{
			Prefix:      "/blobs",
			Description: "Remote store blobs",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/{key...}", Handler: h.ServeBlob},
			},
		},
		{
			Description: "Health probes",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/healthz", Handler: h.Healthz},
				{Method: "GET", Pattern: "/readyz", Handler: h.Readyz},
			},
		},
	}
}

type generationBody struct {
	Prompt          string   `json:"prompt"`
	AspectRatio     string   `json:"aspectRatio"`
	Model           string   `json:"model"`
	ReferenceImages []string `json:"referenceImages"`
}

type improveBody struct {
	Prompt string `json:"prompt"`
	Medium string `json:"medium"`
}

type credentialBody struct {
	Key string `json:"key"`
}

type deleteBody struct {
	IDs []string `json:"ids"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := bind[generationBody](h.schemas, schemaGeneration, w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, bodyStatus(err), err)
		return
	}

	refs, errs := records.ParseReferences(body.ReferenceImages)
	for _, err := range errs {
		h.logger.Warn("reference image dropped", "error", err)
	}

	rec, err := h.console.Submit(r.Context(), records.GenerationRequest{
		Prompt:      body.Prompt,
		AspectRatio: records.AspectRatio(body.AspectRatio),
		Model:       records.Model(body.Model),
		References:  refs,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, rec)
}

// List pages the collection newest first. The search parameter filters by
// prompt text and status filters by lifecycle state.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	status := records.Status(r.URL.Query().Get("status"))

	if status != "" && !status.Valid() {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid status filter"))
		return
	}

	recs := h.console.Records()
	if page.Search != nil || status != "" {
		recs = filter(recs, page.Search, status)
	}

	handlers.RespondJSON(w, http.StatusOK, pagination.Slice(recs, page))
}

func filter(recs []records.Record, search *string, status records.Status) []records.Record {
	var term string
	if search != nil {
		term = strings.ToLower(*search)
	}

	return slices.DeleteFunc(slices.Clone(recs), func(r records.Record) bool {
		if status != "" && r.Status != status {
			return true
		}
		return term != "" && !strings.Contains(strings.ToLower(r.Prompt), term)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.console.Find(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.console.Delete(r.Context(), r.PathValue("id")) == 0 {
		handlers.RespondError(w, h.logger, http.StatusNotFound, console.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	body, err := bind[deleteBody](h.schemas, schemaDelete, w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, bodyStatus(err), err)
		return
	}

	h.console.Delete(r.Context(), body.IDs...)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImprovePrompt(w http.ResponseWriter, r *http.Request) {
	body, err := bind[improveBody](h.schemas, schemaImprove, w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, bodyStatus(err), err)
		return
	}

	medium := records.MediumImage
	if body.Medium != "" {
		medium = records.Medium(body.Medium)
	}

	improved := h.console.ImprovePrompt(r.Context(), body.Prompt, medium)
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"prompt": improved})
}

func (h *Handler) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.console.CredentialStatus())
}

func (h *Handler) SetCredential(w http.ResponseWriter, r *http.Request) {
	body, err := bind[credentialBody](h.schemas, schemaCredential, w, r, h.maxBody)
	if err != nil {
		handlers.RespondError(w, h.logger, bodyStatus(err), err)
		return
	}

	if err := h.console.SetCredential(r.Context(), body.Key); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.console.CredentialStatus())
}

func (h *Handler) ClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.console.ClearCredential(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if h.folder == "" || !strings.HasPrefix(key, h.folder+"/") {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	data, err := h.blobs.Retrieve(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, path.Base(key), time.Time{}, bytes.NewReader(data))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// MapHTTPStatus maps domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, console.ErrCredentialRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, console.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, console.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, records.ErrInvalidPrompt),
		errors.Is(err, records.ErrInvalidAspectRatio),
		errors.Is(err, records.ErrInvalidModel),
		errors.Is(err, records.ErrInvalidReference),
		errors.Is(err, console.ErrEmptyCredential),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func bodyStatus(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
