package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

func TestSettingsStore_Load_MissingFile_Defaults(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	settings, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBatchSize, settings.Storefront.BatchSize)
	assert.Equal(t, domain.DefaultRequestDelayMS, settings.Storefront.RequestDelayMS)
	assert.Equal(t, "ebook", settings.Storefront.ContentFilter)
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	settings := domain.DefaultSettings()
	settings.Storefront.BaseURL = "https://store.example.com"
	settings.Storefront.RequestDelayMS = 2500
	settings.Merge.Precedence = []string{"traditional.json", "ai-summary.json"}

	require.NoError(t, store.Save(ctx, settings))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", loaded.Storefront.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, loaded.RequestDelay())
	assert.Equal(t, []string{"traditional.json", "ai-summary.json"}, loaded.Merge.Precedence)
}

func TestSettingsStore_Load_PartialFile_Normalised(t *testing.T) {
	dir := t.TempDir()
	content := `
[storefront]
base_url = "https://store.example.com"
batch_size = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	settings, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", settings.Storefront.BaseURL)
	// Zero values fall back to the tuned defaults.
	assert.Equal(t, domain.DefaultBatchSize, settings.Storefront.BatchSize)
	assert.Equal(t, domain.DefaultTimeoutSeconds, settings.Storefront.TimeoutSeconds)
}

func TestSettingsStore_Load_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [toml"), 0600))

	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	_, err = store.Load(context.Background())

	assert.Error(t, err)
}
