package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/image-lab/pkg/storage"
)

// CredentialKey holds the stored provider credential as plain text.
const CredentialKey = "provider_credential"

// CredentialStore persists the user-supplied provider credential.
type CredentialStore struct {
	storage storage.System
	logger  *slog.Logger
}

// NewCredentialStore creates a credential store over sys.
func NewCredentialStore(sys storage.System, logger *slog.Logger) *CredentialStore {
	return &CredentialStore{
		storage: sys,
		logger:  logger.With("system", "credential"),
	}
}

// Load returns the stored credential, or "" if none is stored.
func (c *CredentialStore) Load(ctx context.Context) (string, error) {
	data, err := c.storage.Retrieve(ctx, CredentialKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load credential: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save replaces the stored credential.
func (c *CredentialStore) Save(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return c.Clear(ctx)
	}
	if err := c.storage.Store(ctx, CredentialKey, []byte(credential)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	c.logger.Info("credential stored")
	return nil
}

// Clear removes the stored credential. Clearing an absent credential is not an error.
func (c *CredentialStore) Clear(ctx context.Context) error {
	if err := c.storage.Delete(ctx, CredentialKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	c.logger.Info("credential cleared")
	return nil
}
