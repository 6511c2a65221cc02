package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
	"github.com/shelfsync/shelfsync-cli/internal/logger"
)

var _ driven.RecoveryStore = (*RecoveryStore)(nil)

// RecoveryStore reads recovery source files dropped into
// <data-dir>/recovery by external collection tools.
type RecoveryStore struct {
	dir string
}

// NewRecoveryStore creates a recovery store under the given data
// directory. If dataDir is empty, defaults to ~/.shelfsync.
func NewRecoveryStore(dataDir string) (*RecoveryStore, error) {
	dataDir, err := defaultDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(dataDir, "recovery")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating recovery directory: %w", err)
	}
	return &RecoveryStore{dir: dir}, nil
}

// rawRecoverySource mirrors the file shape with pointer fields so that a
// missing block can be told apart from an empty one.
type rawRecoverySource struct {
	Metadata     *domain.RecoveryMetadata `json:"metadata"`
	Descriptions *[]rawDescriptionEntry   `json:"descriptions"`
}

type rawDescriptionEntry struct {
	Identity    json.RawMessage `json:"identity"`
	Description string          `json:"description"`
}

// Load reads and validates one recovery source. A file missing its
// metadata block or its descriptions list is malformed as a whole; it is
// never partially loaded.
func (s *RecoveryStore) Load(_ context.Context, name string) (*domain.RecoverySource, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: recovery source %q", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("read recovery source %q: %w", name, err)
	}

	var raw rawRecoverySource
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrMalformedSource, name, err)
	}
	if raw.Metadata == nil {
		return nil, fmt.Errorf("%w: %q: missing metadata block", domain.ErrMalformedSource, name)
	}
	if raw.Descriptions == nil {
		return nil, fmt.Errorf("%w: %q: missing descriptions list", domain.ErrMalformedSource, name)
	}

	source := &domain.RecoverySource{
		Name:         name,
		Metadata:     *raw.Metadata,
		Descriptions: make([]domain.DescriptionEntry, 0, len(*raw.Descriptions)),
	}
	for i, entry := range *raw.Descriptions {
		id, err := decodeIdentity(entry.Identity)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: entry %d: invalid identity", domain.ErrMalformedSource, name, i)
		}
		source.Descriptions = append(source.Descriptions, domain.DescriptionEntry{
			Identity:    id,
			Description: entry.Description,
		})
	}
	return source, nil
}

// List returns the available source names in file-name order.
func (s *RecoveryStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading recovery directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Watch reports recovery source file names as they appear or change. The
// channel closes when ctx is cancelled.
func (s *RecoveryStore) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating recovery watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching recovery directory: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
					continue
				}
				name := filepath.Base(event.Name)
				if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
					continue
				}
				select {
				case out <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Recovery watcher: %v", err)
			}
		}
	}()
	return out, nil
}
