// Package remote is the shared image store: blobs live in a storage system
// and metadata rows in the generated_images table. Every operation reports
// success as a bool and logs failures instead of returning them.
package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/JaimeStill/image-lab/pkg/storage"
	"github.com/docker/go-units"
)

// System uploads, lists, and deletes shared images.
type System interface {
	Upload(ctx context.Context, rec records.Record) bool
	FetchAll(ctx context.Context) []records.Record
	Delete(ctx context.Context, id string) bool
}

type store struct {
	table     Table
	blobs     storage.System
	folder    string
	publicURL string
	maxSize   int64
	logger    *slog.Logger
}

// New creates a remote store. cfg must be finalized.
func New(cfg *Config, table Table, blobs storage.System, maxSize int64, logger *slog.Logger) System {
	return &store{
		table:     table,
		blobs:     blobs,
		folder:    cfg.Folder,
		publicURL: cfg.PublicBaseURL,
		maxSize:   maxSize,
		logger:    logger.With("system", "remote"),
	}
}

func (s *store) Upload(ctx context.Context, rec records.Record) bool {
	mimeType, data, ok := rec.InlineData()
	if !ok {
		s.logger.Warn("upload skipped: record has no inline image", "id", rec.ID)
		return false
	}

	blob, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		s.logger.Error("upload failed: invalid image payload", "id", rec.ID, "error", err)
		return false
	}

	if int64(len(blob)) > s.maxSize {
		s.logger.Error("upload failed: image too large",
			"id", rec.ID,
			"size", units.HumanSize(float64(len(blob))),
			"limit", units.HumanSize(float64(s.maxSize)),
		)
		return false
	}

	key := s.storageKey(rec.ID, mimeType)
	if err := s.blobs.Create(ctx, key, blob); err != nil {
		s.logger.Error("upload failed: blob write", "id", rec.ID, "storage_path", key, "error", err)
		return false
	}

	row := Row{
		ID:           rec.ID,
		Prompt:       rec.Prompt,
		AspectRatio:  string(rec.AspectRatio),
		Timestamp:    rec.Timestamp,
		Status:       string(rec.Status),
		StoragePath:  key,
		PublicURL:    s.publicURL + "/" + key,
		ErrorMessage: rec.ErrorMessage,
	}

	if err := s.table.Insert(ctx, row); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Error("cleanup failed after insert error", "storage_path", key, "error", delErr)
		}
		s.logger.Error("upload failed: metadata insert", "id", rec.ID, "error", err)
		return false
	}

	s.logger.Info("image uploaded", "id", rec.ID, "storage_path", key, "size", units.HumanSize(float64(len(blob))))
	return true
}

func (s *store) FetchAll(ctx context.Context) []records.Record {
	rows, err := s.table.List(ctx)
	if err != nil {
		s.logger.Error("fetch failed", "error", err)
		return []records.Record{}
	}

	recs := make([]records.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, records.Record{
			ID:           row.ID,
			URL:          row.PublicURL,
			Prompt:       row.Prompt,
			AspectRatio:  records.AspectRatio(row.AspectRatio),
			Timestamp:    row.Timestamp,
			Status:       records.Status(row.Status),
			ErrorMessage: row.ErrorMessage,
		})
	}
	return recs
}

func (s *store) Delete(ctx context.Context, id string) bool {
	key, err := s.table.StoragePath(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("delete skipped: no remote copy", "id", id)
		} else {
			s.logger.Error("delete failed: lookup", "id", id, "error", err)
		}
		return false
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error("blob delete failed", "id", id, "storage_path", key, "error", err)
	}

	if err := s.table.Delete(ctx, id); err != nil {
		s.logger.Error("delete failed: metadata", "id", id, "error", err)
		return false
	}

	s.logger.Info("image deleted", "id", id, "storage_path", key)
	return true
}

func (s *store) storageKey(id, mimeType string) string {
	return path.Join(s.folder, id+"."+extension(mimeType))
}

// extension derives a file extension from the MIME subtype,
// e.g. image/svg+xml becomes svg.
func extension(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = mimeType
	}
	_, sub, ok := strings.Cut(mt, "/")
	if !ok || sub == "" {
		return "bin"
	}
	sub, _, _ = strings.Cut(sub, "+")
	return sub
}

type disabled struct{}

// Disabled returns a System for deployments without a shared store.
// Uploads and deletes report false and FetchAll is always empty.
func Disabled() System {
	return disabled{}
}

func (disabled) Upload(context.Context, records.Record) bool { return false }

func (disabled) FetchAll(context.Context) []records.Record { return []records.Record{} }

func (disabled) Delete(context.Context, string) bool { return false }
