package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	info, err := store.Put(ctx, "documents/a.pdf", strings.NewReader("%PDF-1.4"), PutObjectOptions{Size: 8, ContentType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	rc, got, err := store.Get(ctx, "documents/a.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, int64(8), got.Size)

	require.NoError(t, store.Delete(ctx, "documents/a.pdf"))
	require.NoError(t, store.Delete(ctx, "documents/a.pdf"), "second delete is a no-op")

	_, _, err = store.Get(ctx, "documents/a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_PutReportsWrittenSize(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)

	// declared size is advisory; the result reflects what landed on disk
	info, err := store.Put(ctx, "documents/b.bin", strings.NewReader("0123456789"), PutObjectOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)
	assert.Equal(t, "documents/b.bin", info.Key)

	info, err = store.Put(ctx, "documents/b.bin", strings.NewReader("abc"), PutObjectOptions{Size: 99})
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)

	entries, err := os.ReadDir(filepath.Join(root, "documents"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left beside the object")
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../x", "documents/../../x", "/etc/passwd"} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestLocalStorage_Import(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "upload.png")
	require.NoError(t, os.WriteFile(src, []byte("png-bytes"), 0o644))

	info, err := store.Import(ctx, src, "documents/1-owner-x.png", PutObjectOptions{ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.Size)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(root, "documents", "1-owner-x.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestMoveFile_CrossDeviceFallback(t *testing.T) {
	orig := renameFile
	t.Cleanup(func() { renameFile = orig })
	renameFile = func(string, string) error {
		return &os.LinkError{Op: "rename", Err: syscall.EXDEV}
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	payload := bytes.Repeat([]byte{0xAB}, 64*1024)
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	dstDir := filepath.Join(dir, "dst")
	require.NoError(t, os.MkdirAll(dstDir, 0o755))
	dst := filepath.Join(dstDir, "out.bin")

	require.NoError(t, MoveFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp file beside the destination")
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	assert.True(t, os.IsNotExist(err))
}
