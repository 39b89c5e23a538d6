package blob_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husaynirfan1/lukisan-server/internal/blob"
)

func newStore(t *testing.T) *blob.Store {
	t.Helper()
	store, err := blob.NewStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	return store
}

func TestStore_PutAndOpen(t *testing.T) {
	store := newStore(t)

	payload := []byte("png-bytes")
	ref, err := store.Put(payload)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	got, err := store.Open(ref)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	size, err := store.Size(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size)
}

func TestStore_UniqueRefs(t *testing.T) {
	store := newStore(t)

	a, err := store.Put([]byte("one"))
	require.NoError(t, err)
	b, err := store.Put([]byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_OpenMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Open("no-such-ref")
	assert.ErrorIs(t, err, blob.ErrNotFound)

	_, err = store.Size("no-such-ref")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newStore(t)

	ref, err := store.Put([]byte("short lived"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ref))
	_, err = store.Open(ref)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ref))
}

func TestStore_NoStrayTempFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	store, err := blob.NewStore(root)
	require.NoError(t, err)

	ref, err := store.Put([]byte("payload"))
	require.NoError(t, err)

	var names []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			names = append(names, info.Name())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ref}, names)
}
