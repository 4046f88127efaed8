package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ownerID := uuid.New()

	path, err := store.Save(ctx, ownerID, "notes.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, ownerID.String()+"/"))
	assert.True(t, strings.HasSuffix(path, "_notes.pdf"))

	data, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	exists, err := store.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, path))

	exists, err = store.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	data, err := store.Get(context.Background(), uuid.New().String()+"/nothing.txt")

	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Delete(context.Background(), uuid.New().String()+"/nothing.txt"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "../../etc/passwd")

	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalStoreSanitizesFilename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path, err := store.Save(ctx, uuid.New(), "../../../evil.sh", strings.NewReader("x"))

	require.NoError(t, err)
	assert.NotContains(t, path, "..")
	assert.True(t, strings.HasSuffix(path, "_evil.sh"))
}
