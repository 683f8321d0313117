// Package snapshot persists the local copy of the record collection and the
// stored provider credential in a storage system rooted at the local data dir.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/JaimeStill/image-lab/pkg/storage"
)

const (
	// RecordsKey holds the JSON array of records.
	RecordsKey = "generated_images.json"

	// Limit caps how many records a snapshot keeps.
	Limit = 50
)

// Store reads and writes the records snapshot.
type Store struct {
	storage storage.System
	logger  *slog.Logger
}

// New creates a snapshot store over sys.
func New(sys storage.System, logger *slog.Logger) *Store {
	return &Store{
		storage: sys,
		logger:  logger.With("system", "snapshot"),
	}
}

// Read returns the persisted records. A missing or unreadable snapshot is
// logged and yields an empty collection.
func (s *Store) Read(ctx context.Context) []records.Record {
	data, err := s.storage.Retrieve(ctx, RecordsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("snapshot read failed", "error", err)
		}
		return []records.Record{}
	}

	var recs []records.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		s.logger.Error("snapshot is corrupt, ignoring", "error", err)
		return []records.Record{}
	}
	if recs == nil {
		return []records.Record{}
	}
	return recs
}

// Write persists the first Limit records in the order given.
func (s *Store) Write(ctx context.Context, recs []records.Record) error {
	if len(recs) > Limit {
		recs = recs[:Limit]
	}
	if recs == nil {
		recs = []records.Record{}
	}

	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.storage.Store(ctx, RecordsKey, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.Debug("snapshot written", "records", len(recs))
	return nil
}
