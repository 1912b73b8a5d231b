package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bookworm-api/internal/pkg/crypto"
)

func newTestStore(t *testing.T) (*FilesystemStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir, "http://localhost:3000/media/", zerolog.Nop())
	require.NoError(t, err)
	return store, dir
}

func TestFilesystemStore_Upload(t *testing.T) {
	store, dir := newTestStore(t)

	data := []byte("cover image bytes")
	hash := crypto.ComputeSHA256(data)

	upload, err := store.Upload(context.Background(), data, "image/png")
	require.NoError(t, err)
	require.Equal(t, hash, upload.Handle)
	require.Equal(t, "http://localhost:3000/media/"+hash[0:2]+"/"+hash[2:4]+"/"+hash, upload.URL)

	stored, err := os.ReadFile(filepath.Join(dir, hash[0:2], hash[2:4], hash))
	require.NoError(t, err)
	require.Equal(t, data, stored)

	// Same content again is a no-op with the same result.
	again, err := store.Upload(context.Background(), data, "image/png")
	require.NoError(t, err)
	require.Equal(t, upload, again)
}

func TestFilesystemStore_UploadHandleRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	upload, err := store.Upload(context.Background(), []byte("payload"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, upload.Handle, HandleFromURL(upload.URL))
}

func TestFilesystemStore_Delete(t *testing.T) {
	store, dir := newTestStore(t)

	data := []byte("to be removed")
	upload, err := store.Upload(context.Background(), data, "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), upload.Handle))

	hash := upload.Handle
	_, err = os.Stat(filepath.Join(dir, hash[0:2], hash[2:4], hash))
	require.True(t, os.IsNotExist(err))

	// Deleting again is not an error.
	require.NoError(t, store.Delete(context.Background(), upload.Handle))
}

func TestFilesystemStore_DeleteInvalidHandle(t *testing.T) {
	store, _ := newTestStore(t)
	require.Error(t, store.Delete(context.Background(), "ab"))
}
