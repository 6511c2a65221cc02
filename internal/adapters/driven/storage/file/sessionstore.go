package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
)

var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore persists the operator-captured session context as
// <data-dir>/session.json, mode 0600 since it carries credentials.
type SessionStore struct {
	path string
}

// NewSessionStore creates a session store under the given data directory.
// If dataDir is empty, defaults to ~/.shelfsync.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	dataDir, err := defaultDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &SessionStore{path: filepath.Join(dataDir, "session.json")}, nil
}

// Session returns the stored session context, or
// domain.ErrSessionRequired when none has been supplied.
func (s *SessionStore) Session(_ context.Context) (*domain.SessionContext, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionRequired
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session domain.SessionContext
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.IsZero() {
		return nil, domain.ErrSessionRequired
	}
	return &session, nil
}

// Save persists a freshly captured session context.
func (s *SessionStore) Save(_ context.Context, session domain.SessionContext) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := writeAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
