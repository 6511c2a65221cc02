package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interfaces.
var (
	_ driven.SnapshotStore     = (*SnapshotStore)(nil)
	_ driven.IdentityListStore = (*SnapshotStore)(nil)
)

const snapshotPrefix = "snapshot-"

// SnapshotStore persists library snapshots as timestamped JSON files
// under <data-dir>/snapshots. Names sort chronologically, so the lexical
// order of files is the version order.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a snapshot store under the given data
// directory. If dataDir is empty, defaults to ~/.shelfsync.
func NewSnapshotStore(dataDir string) (*SnapshotStore, error) {
	dataDir, err := defaultDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(dataDir, "snapshots")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating snapshots directory: %w", err)
	}
	return &SnapshotStore{dir: dir}, nil
}

// Save writes the snapshot as a new version and returns its name. The
// previous snapshot is never touched.
func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.LibrarySnapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	name := snapshotPrefix + stamp + ".json"
	path := filepath.Join(s.dir, name)

	// Two merges inside the same second still get distinct versions.
	for seq := 1; ; seq++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s%s-%d.json", snapshotPrefix, stamp, seq)
		path = filepath.Join(s.dir, name)
	}

	if err := writeAtomic(path, data, 0600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return name, nil
}

// List returns all snapshot names, oldest first.
func (s *SnapshotStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Latest loads the most recent snapshot.
func (s *SnapshotStore) Latest(ctx context.Context) (*domain.LibrarySnapshot, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Load(ctx, names[len(names)-1])
}

// Load loads a snapshot by name.
func (s *SnapshotStore) Load(_ context.Context, name string) (*domain.LibrarySnapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: snapshot %q", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}

	var snapshot domain.LibrarySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	return &snapshot, nil
}

// identityListEntry accepts both the canonical object identity form and
// the bare-string form older exports use.
type identityListEntry struct {
	Identity json.RawMessage `json:"identity"`
	Title    string          `json:"title"`
	Authors  string          `json:"authors"`
}

// LoadIdentityList reads an identity-list file used to scope a targeted
// run.
func (s *SnapshotStore) LoadIdentityList(_ context.Context, path string) ([]domain.IdentityListEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity list: %w", err)
	}

	var raw []identityListEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode identity list: %w", err)
	}

	entries := make([]domain.IdentityListEntry, 0, len(raw))
	for i, entry := range raw {
		id, err := decodeIdentity(entry.Identity)
		if err != nil {
			return nil, fmt.Errorf("identity list entry %d: %w", i, err)
		}
		entries = append(entries, domain.IdentityListEntry{
			Identity: id,
			Title:    entry.Title,
			Authors:  entry.Authors,
		})
	}
	return entries, nil
}

// SaveIdentityList writes an identity list, e.g. the still-missing subset
// a follow-up run should target.
func (s *SnapshotStore) SaveIdentityList(_ context.Context, path string, entries []domain.IdentityListEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity list: %w", err)
	}
	if err := writeAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("write identity list: %w", err)
	}
	return nil
}

// decodeIdentity parses either {"kind":...,"value":...} or a bare string.
func decodeIdentity(raw json.RawMessage) (domain.Identity, error) {
	if len(raw) == 0 {
		return domain.Identity{}, domain.ErrInvalidIdentity
	}

	var obj struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != "" {
		return domain.ParseIdentity(obj.Kind + ":" + obj.Value)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Identity{}, domain.ErrInvalidIdentity
	}
	return domain.ParseIdentity(s)
}
