package changes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	snap, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFileStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(ctx, domain.Snapshot{"https://u/a": {Lastmod: "1", Hash: "h1"}}))
	require.NoError(t, fs.Save(ctx, domain.Snapshot{"https://u/b": {Lastmod: "2", Hash: "h2"}}))

	snap, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Snapshot{"https://u/b": {Lastmod: "2", Hash: "h2"}}, snap)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_RejectsMalformedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"https://u/a":{"hash":"h1"}}`), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedSnapshot)
}
