package remote_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/JaimeStill/image-lab/internal/remote"
	"github.com/JaimeStill/image-lab/pkg/storage"
)

type memTable struct {
	mu        sync.Mutex
	rows      map[string]remote.Row
	insertErr error
	listErr   error
	deleteErr error
}

func newMemTable() *memTable {
	return &memTable{rows: make(map[string]remote.Row)}
}

func (m *memTable) Insert(ctx context.Context, row remote.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.rows[row.ID]; ok {
		return remote.ErrDuplicate
	}
	m.rows[row.ID] = row
	return nil
}

func (m *memTable) List(ctx context.Context) ([]remote.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	rows := make([]remote.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b remote.Row) int { return int(b.Timestamp - a.Timestamp) })
	return rows, nil
}

func (m *memTable) StoragePath(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return "", remote.ErrNotFound
	}
	return r.StoragePath, nil
}

func (m *memTable) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rows[id]; !ok {
		return remote.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T, table remote.Table, maxSize int64) (remote.System, storage.System) {
	t.Helper()

	blobs, err := storage.New(&storage.Config{BasePath: t.TempDir()}, discard())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	cfg := &remote.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	return remote.New(cfg, table, blobs, maxSize, discard()), blobs
}

func successRecord(id string, ts int64, payload []byte, mimeType string) records.Record {
	return records.Record{
		ID:          id,
		URL:         records.DataURI(mimeType, base64.StdEncoding.EncodeToString(payload)),
		Prompt:      "a lighthouse at dusk",
		AspectRatio: records.AspectWide,
		Timestamp:   ts,
		Status:      records.StatusSuccess,
	}
}

func TestUpload(t *testing.T) {
	table := newMemTable()
	store, blobs := newStore(t, table, 1024)
	ctx := context.Background()

	rec := successRecord("img-1", 1000, []byte("png-bytes"), "image/png")
	if !store.Upload(ctx, rec) {
		t.Fatal("Upload() = false, want true")
	}

	data, err := blobs.Retrieve(ctx, "generated-images/img-1.png")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("blob = %q, want png-bytes", data)
	}

	row := table.rows["img-1"]
	if row.PublicURL != "/blobs/generated-images/img-1.png" {
		t.Errorf("PublicURL = %q", row.PublicURL)
	}
	if row.AspectRatio != "16:9" || row.Status != "success" || row.Timestamp != 1000 {
		t.Errorf("row = %+v, want metadata copied from record", row)
	}
}

func TestUpload_Extension(t *testing.T) {
	tests := []struct {
		mimeType string
		key      string
	}{
		{"image/jpeg", "generated-images/a.jpeg"},
		{"image/svg+xml", "generated-images/a.svg"},
		{"image/webp", "generated-images/a.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			store, blobs := newStore(t, newMemTable(), 1024)
			ctx := context.Background()

			if !store.Upload(ctx, successRecord("a", 1, []byte("x"), tt.mimeType)) {
				t.Fatal("Upload() = false, want true")
			}
			ok, err := blobs.Validate(ctx, tt.key)
			if err != nil || !ok {
				t.Errorf("Validate(%q) = %v, %v; want true", tt.key, ok, err)
			}
		})
	}
}

func TestUpload_Refusals(t *testing.T) {
	ctx := context.Background()

	t.Run("remote url", func(t *testing.T) {
		store, _ := newStore(t, newMemTable(), 1024)
		rec := records.Record{ID: "r", URL: "https://example.com/x.png", Status: records.StatusSuccess}
		if store.Upload(ctx, rec) {
			t.Error("Upload() = true, want false")
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		store, _ := newStore(t, newMemTable(), 1024)
		rec := records.Record{ID: "r", URL: "data:image/png;base64,!!!not-base64!!!"}
		if store.Upload(ctx, rec) {
			t.Error("Upload() = true, want false")
		}
	})

	t.Run("too large", func(t *testing.T) {
		table := newMemTable()
		store, _ := newStore(t, table, 4)
		if store.Upload(ctx, successRecord("big", 1, []byte("more than four"), "image/png")) {
			t.Error("Upload() = true, want false")
		}
		if len(table.rows) != 0 {
			t.Errorf("rows = %d, want 0", len(table.rows))
		}
	})

	t.Run("existing key", func(t *testing.T) {
		table := newMemTable()
		store, blobs := newStore(t, table, 1024)

		if !store.Upload(ctx, successRecord("dup", 1, []byte("first"), "image/png")) {
			t.Fatal("first Upload() = false, want true")
		}
		if store.Upload(ctx, successRecord("dup", 2, []byte("second"), "image/png")) {
			t.Error("second Upload() = true, want false")
		}

		data, _ := blobs.Retrieve(ctx, "generated-images/dup.png")
		if string(data) != "first" {
			t.Errorf("blob = %q, want original contents preserved", data)
		}
	})
}

func TestUpload_InsertFailureRemovesBlob(t *testing.T) {
	table := newMemTable()
	table.insertErr = remote.ErrDuplicate
	store, blobs := newStore(t, table, 1024)
	ctx := context.Background()

	if store.Upload(ctx, successRecord("x", 1, []byte("data"), "image/png")) {
		t.Fatal("Upload() = true, want false")
	}

	ok, err := blobs.Validate(ctx, "generated-images/x.png")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ok {
		t.Error("blob should be removed after failed insert")
	}
}

func TestFetchAll(t *testing.T) {
	table := newMemTable()
	store, _ := newStore(t, table, 1024)
	ctx := context.Background()

	store.Upload(ctx, successRecord("old", 100, []byte("a"), "image/png"))
	store.Upload(ctx, successRecord("new", 200, []byte("b"), "image/png"))

	recs := store.FetchAll(ctx)
	if len(recs) != 2 {
		t.Fatalf("FetchAll() len = %d, want 2", len(recs))
	}
	if recs[0].ID != "new" || recs[1].ID != "old" {
		t.Errorf("order = [%s %s], want [new old]", recs[0].ID, recs[1].ID)
	}
	if recs[0].URL != "/blobs/generated-images/new.png" {
		t.Errorf("URL = %q, want public url", recs[0].URL)
	}
	if recs[0].Prompt != "a lighthouse at dusk" || recs[0].Status != records.StatusSuccess {
		t.Errorf("record = %+v", recs[0])
	}
}

func TestFetchAll_FailureIsEmpty(t *testing.T) {
	table := newMemTable()
	table.listErr = errors.New("connection refused")
	store, _ := newStore(t, table, 1024)

	recs := store.FetchAll(context.Background())
	if recs == nil || len(recs) != 0 {
		t.Errorf("FetchAll() = %v, want empty non-nil slice", recs)
	}
}

func TestDelete(t *testing.T) {
	table := newMemTable()
	store, blobs := newStore(t, table, 1024)
	ctx := context.Background()

	store.Upload(ctx, successRecord("gone", 1, []byte("a"), "image/png"))

	if !store.Delete(ctx, "gone") {
		t.Fatal("Delete() = false, want true")
	}
	if _, ok := table.rows["gone"]; ok {
		t.Error("row still present after Delete")
	}
	if ok, _ := blobs.Validate(ctx, "generated-images/gone.png"); ok {
		t.Error("blob still present after Delete")
	}

	if store.Delete(ctx, "gone") {
		t.Error("second Delete() = true, want false")
	}
}

func TestDelete_MissingBlobStillDeletesRow(t *testing.T) {
	table := newMemTable()
	table.rows["orphan"] = remote.Row{ID: "orphan", StoragePath: "generated-images/orphan.png"}
	store, _ := newStore(t, table, 1024)

	if !store.Delete(context.Background(), "orphan") {
		t.Error("Delete() = false, want true")
	}
}

func TestDelete_RowFailure(t *testing.T) {
	table := newMemTable()
	store, _ := newStore(t, table, 1024)
	ctx := context.Background()

	store.Upload(ctx, successRecord("stuck", 1, []byte("a"), "image/png"))
	table.deleteErr = errors.New("deadlock detected")

	if store.Delete(ctx, "stuck") {
		t.Error("Delete() = true, want false")
	}
}

func TestDisabled(t *testing.T) {
	store := remote.Disabled()
	ctx := context.Background()

	if store.Upload(ctx, successRecord("a", 1, []byte("a"), "image/png")) {
		t.Error("Upload() = true, want false")
	}
	if store.Delete(ctx, "a") {
		t.Error("Delete() = true, want false")
	}
	if recs := store.FetchAll(ctx); recs == nil || len(recs) != 0 {
		t.Errorf("FetchAll() = %v, want empty", recs)
	}
}

func TestConfig_Finalize(t *testing.T) {
	t.Setenv("TEST_REMOTE_ENABLED", "true")
	t.Setenv("TEST_REMOTE_FOLDER", "/shared/")

	cfg := &remote.Config{PublicBaseURL: "https://cdn.example.com/"}
	env := &remote.Env{Enabled: "TEST_REMOTE_ENABLED", Folder: "TEST_REMOTE_FOLDER"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
	if cfg.Folder != "shared" {
		t.Errorf("Folder = %q, want shared", cfg.Folder)
	}
	if cfg.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
}

func TestConfig_RejectsTraversal(t *testing.T) {
	cfg := &remote.Config{Folder: "../outside"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() error = nil, want error")
	}
}
