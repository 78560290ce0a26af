package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minetrack/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(context.Background(), config.StorageConfig{
		Backend:       config.StorageBackendLocal,
		PublicBaseURL: "/static/",
		Local:         config.LocalConfig{Dir: dir},
	})
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(context.Background()))
	return s, dir
}

func TestLocalStorage_PutOverwritesAndGets(t *testing.T) {
	s, dir := newLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "avatars/user_1.jpg", strings.NewReader("first"), 5, "image/jpeg"))
	require.NoError(t, s.Put(ctx, "avatars/user_1.jpg", strings.NewReader("second"), 6, "image/jpeg"))

	rc, err := s.Get(ctx, "avatars/user_1.jpg")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	assert.FileExists(t, filepath.Join(dir, "avatars", "user_1.jpg"))
	assert.Equal(t, "/static/avatars/user_1.jpg", s.URL("avatars/user_1.jpg"))
}

func TestLocalStorage_MissingObject(t *testing.T) {
	s, _ := newLocalStorage(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "avatars/none.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "avatars/none.jpg"), ErrObjectNotFound)
}

func TestLocalStorage_KeysStayInsideRoot(t *testing.T) {
	s, dir := newLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "../../escape.txt", strings.NewReader("x"), 1, "text/plain"))
	assert.FileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
}
