// Package console tracks generation requests from submission to a terminal
// state. It owns the in-memory record collection, reconciles it with the
// local snapshot and the shared remote store, and persists changes with a
// debounced snapshot write.
package console

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/image-lab/internal/provider"
	"github.com/JaimeStill/image-lab/internal/records"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Generator produces images and improved prompts.
type Generator interface {
	Generate(ctx context.Context, credential string, req records.GenerationRequest) (provider.Image, error)
	ImprovePrompt(ctx context.Context, credential, text string, medium records.Medium) string
}

// RemoteStore is the shared image collection.
type RemoteStore interface {
	Upload(ctx context.Context, rec records.Record) bool
	FetchAll(ctx context.Context) []records.Record
	Delete(ctx context.Context, id string) bool
}

// SnapshotStore is the local copy of the collection.
type SnapshotStore interface {
	Read(ctx context.Context) []records.Record
	Write(ctx context.Context, recs []records.Record) error
}

// CredentialStore holds the user-supplied provider credential.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// Listener is told when a credential must be supplied before generating.
type Listener interface {
	CredentialRequired()
}

// Deps are the collaborators of a Manager. Listener is optional.
type Deps struct {
	Generator   Generator
	Remote      RemoteStore
	Snapshot    SnapshotStore
	Credentials CredentialStore
	Listener    Listener
}

// CredentialStatus describes whether generation can proceed.
type CredentialStatus struct {
	Configured bool `json:"configured"`
	Required   bool `json:"required"`
}

// Manager is the generation request lifecycle manager.
type Manager struct {
	generator   Generator
	remote      RemoteStore
	snapshot    SnapshotStore
	credentials CredentialStore
	listener    Listener
	logger      *slog.Logger

	override        string
	fallback        string
	debounce        time.Duration
	generateTimeout time.Duration
	syncTimeout     time.Duration

	mu       sync.Mutex
	recs     []records.Record
	stored   string
	required bool
	dirty    bool
	timer    *time.Timer
	closed   bool

	writeMu sync.Mutex
	tasks   sync.WaitGroup
}

// New creates a Manager. cfg must be finalized.
func New(cfg *Config, deps Deps, logger *slog.Logger) *Manager {
	return &Manager{
		generator:       deps.Generator,
		remote:          deps.Remote,
		snapshot:        deps.Snapshot,
		credentials:     deps.Credentials,
		listener:        deps.Listener,
		logger:          logger.With("system", "console"),
		override:        strings.TrimSpace(cfg.CredentialOverride),
		fallback:        strings.TrimSpace(cfg.DefaultCredential),
		debounce:        cfg.DebounceDelayDuration(),
		generateTimeout: cfg.GenerateTimeoutDuration(),
		syncTimeout:     cfg.SyncTimeoutDuration(),
		recs:            []records.Record{},
	}
}

// Load reads the local snapshot, the remote collection, and the stored
// credential concurrently, then replaces the collection with the merge of
// both sources. Remote records win on id collisions; records already held in
// memory win over both.
func (m *Manager) Load(ctx context.Context) error {
	var (
		local  []records.Record
		shared []records.Record
		stored string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		local = m.snapshot.Read(gctx)
		return nil
	})
	g.Go(func() error {
		shared = m.remote.FetchAll(gctx)
		return nil
	})
	g.Go(func() error {
		s, err := m.credentials.Load(gctx)
		if err != nil {
			m.logger.Warn("stored credential unavailable", "error", err)
			return nil
		}
		stored = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	merged := records.Merge(local, shared)

	m.mu.Lock()
	// Records submitted while loading are newer than either source.
	merged = records.Merge(merged, m.recs)
	m.recs = merged
	if m.stored == "" {
		m.stored = stored
	}
	m.required = m.credentialLocked() == ""
	m.schedulePersistLocked()
	required := m.required
	m.mu.Unlock()

	counts := records.CountByStatus(merged)
	m.logger.Info("collection loaded",
		"local", len(local),
		"remote", len(shared),
		"total", len(merged),
		"pending", counts[records.StatusPending],
		"success", counts[records.StatusSuccess],
		"error", counts[records.StatusError],
	)

	if required {
		m.notifyCredentialRequired()
	}
	return nil
}

// Submit validates req and records it as pending. The provider call runs in
// the background; the returned record reflects the state at submission.
func (m *Manager) Submit(ctx context.Context, req records.GenerationRequest) (records.Record, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return records.Record{}, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return records.Record{}, ErrClosed
	}

	credential := m.credentialLocked()
	if credential == "" {
		m.required = true
		m.mu.Unlock()
		m.notifyCredentialRequired()
		return records.Record{}, ErrCredentialRequired
	}

	rec := records.Record{
		ID:          uuid.NewString(),
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Timestamp:   time.Now().UnixMilli(),
		Status:      records.StatusPending,
	}

	next := make([]records.Record, 0, len(m.recs)+1)
	next = append(next, rec)
	m.recs = append(next, m.recs...)
	m.schedulePersistLocked()

	m.tasks.Go(func() {
		m.generate(context.WithoutCancel(ctx), rec.ID, credential, req)
	})
	m.mu.Unlock()

	m.logger.Info("generation submitted",
		"id", rec.ID,
		"model", req.Model,
		"aspect_ratio", req.AspectRatio,
		"references", len(req.References),
	)
	return rec, nil
}

func (m *Manager) generate(ctx context.Context, id, credential string, req records.GenerationRequest) {
	ctx, cancel := context.WithTimeout(ctx, m.generateTimeout)
	defer cancel()

	img, err := m.generator.Generate(ctx, credential, req)
	if err == nil {
		rec, ok := m.apply(id, func(r *records.Record) bool {
			if r.Status != records.StatusPending {
				return false
			}
			r.Status = records.StatusSuccess
			r.URL = img.DataURI()
			r.ErrorMessage = ""
			return true
		})
		if !ok {
			m.logger.Info("generation result discarded", "id", id)
			return
		}
		m.tasks.Go(func() {
			m.upload(ctx, rec)
		})
		return
	}

	message := err.Error()
	if provider.IsAuth(err) {
		message = MessageInvalidCredential
	} else if message == "" {
		message = MessageFailed
	}

	_, ok := m.apply(id, func(r *records.Record) bool {
		if r.Status != records.StatusPending {
			return false
		}
		r.Status = records.StatusError
		r.ErrorMessage = message
		return true
	})
	m.logger.Warn("generation failed", "id", id, "error", err, "applied", ok)

	if provider.IsAuth(err) {
		m.invalidateCredential(ctx)
	}
}

func (m *Manager) upload(ctx context.Context, rec records.Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.syncTimeout)
	defer cancel()

	if m.remote.Upload(ctx, rec) {
		return
	}

	_, ok := m.apply(rec.ID, func(r *records.Record) bool {
		if r.Status != records.StatusSuccess {
			return false
		}
		r.ErrorMessage = MessageUploadFailed
		return true
	})
	m.logger.Warn("remote upload failed, keeping local copy", "id", rec.ID, "applied", ok)
}

func (m *Manager) invalidateCredential(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.syncTimeout)
	defer cancel()

	if err := m.credentials.Clear(ctx); err != nil {
		m.logger.Error("clear stored credential failed", "error", err)
	}

	m.mu.Lock()
	m.stored = ""
	m.required = true
	m.mu.Unlock()

	m.notifyCredentialRequired()
}

// Delete removes the given records immediately and deletes their remote
// copies in the background. It returns the number of records removed.
// Remote failures are logged; removed records are never restored.
func (m *Manager) Delete(ctx context.Context, ids ...string) int {
	m.mu.Lock()
	next := make([]records.Record, 0, len(m.recs))
	var removed []string
	for _, r := range m.recs {
		if slices.Contains(ids, r.ID) {
			removed = append(removed, r.ID)
			continue
		}
		next = append(next, r)
	}
	if len(removed) == 0 {
		m.mu.Unlock()
		return 0
	}
	m.recs = next
	m.schedulePersistLocked()

	for _, id := range removed {
		m.tasks.Go(func() {
			m.deleteRemote(context.WithoutCancel(ctx), id)
		})
	}
	m.mu.Unlock()

	m.logger.Info("records deleted", "count", len(removed))
	return len(removed)
}

func (m *Manager) deleteRemote(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(ctx, m.syncTimeout)
	defer cancel()

	if !m.remote.Delete(ctx, id) {
		m.logger.Warn("remote delete failed", "id", id)
	}
}

// Records returns the current collection, newest submissions first.
// The slice is shared and must not be modified.
func (m *Manager) Records() []records.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs
}

// Find returns the record with id.
func (m *Manager) Find(id string) (records.Record, error) {
	recs := m.Records()
	if i := slices.IndexFunc(recs, func(r records.Record) bool { return r.ID == id }); i >= 0 {
		return recs[i], nil
	}
	return records.Record{}, ErrNotFound
}

// ImprovePrompt expands text for medium. It never fails; without a
// credential or on provider errors the input is returned as is.
func (m *Manager) ImprovePrompt(ctx context.Context, text string, medium records.Medium) string {
	m.mu.Lock()
	credential := m.credentialLocked()
	m.mu.Unlock()

	return m.generator.ImprovePrompt(ctx, credential, text, medium)
}

// SetCredential stores credential for future submissions.
func (m *Manager) SetCredential(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyCredential
	}
	if err := m.credentials.Save(ctx, credential); err != nil {
		return err
	}

	m.mu.Lock()
	m.stored = credential
	m.required = false
	m.mu.Unlock()

	m.logger.Info("credential updated")
	return nil
}

// ClearCredential removes the stored credential.
func (m *Manager) ClearCredential(ctx context.Context) error {
	if err := m.credentials.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.stored = ""
	m.required = m.credentialLocked() == ""
	m.mu.Unlock()

	m.logger.Info("credential cleared")
	return nil
}

// CredentialStatus reports whether a credential is available and whether
// the user has been asked to supply one.
func (m *Manager) CredentialStatus() CredentialStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	configured := m.credentialLocked() != ""
	return CredentialStatus{
		Configured: configured,
		Required:   m.required || !configured,
	}
}

// Flush waits for background work to finish and writes any pending
// snapshot immediately.
func (m *Manager) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	m.persist()
	return nil
}

// Close rejects further submissions and flushes.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	if err := m.Flush(ctx); err != nil {
		return err
	}
	m.logger.Info("console closed")
	return nil
}

// credentialLocked resolves the active credential: override, then stored,
// then default. m.mu must be held.
func (m *Manager) credentialLocked() string {
	for _, c := range []string{m.override, m.stored, m.fallback} {
		if c != "" {
			return c
		}
	}
	return ""
}

// apply updates the record with id if fn reports a change. Updates for
// records that no longer exist are dropped.
func (m *Manager) apply(id string, fn func(*records.Record) bool) (records.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.recs, func(r records.Record) bool { return r.ID == id })
	if i < 0 {
		return records.Record{}, false
	}

	next := slices.Clone(m.recs)
	if !fn(&next[i]) {
		return records.Record{}, false
	}

	m.recs = next
	m.schedulePersistLocked()
	return next[i], true
}

// schedulePersistLocked restarts the debounce timer. m.mu must be held.
func (m *Manager) schedulePersistLocked() {
	m.dirty = true
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.persist)
}

// persist writes the collection as it is when the write begins.
func (m *Manager) persist() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return
	}
	recs := m.recs
	m.dirty = false
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.syncTimeout)
	defer cancel()

	if err := m.snapshot.Write(ctx, recs); err != nil {
		m.logger.Error("snapshot write failed", "error", err)
		return
	}
	m.logger.Debug("snapshot written", "records", len(recs))
}

func (m *Manager) notifyCredentialRequired() {
	if m.listener != nil {
		m.listener.CredentialRequired()
	}
}
