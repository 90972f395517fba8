package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "pixel.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, 4, 3)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "inspect", path)
		require.NoError(t, err)
		assert.Contains(t, out, "pixel.png\timage/png\t")
		assert.Contains(t, out, "\t4x3\n")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "inspect", "--json", path)
		require.NoError(t, err)

		var got inspection
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "image/png", got.MimeType)
		assert.Equal(t, 4, got.Width)
		assert.Equal(t, 3, got.Height)
		assert.Equal(t, int64(4*9525), got.DocxCX)
		assert.Equal(t, int64(3*9525), got.DocxCY)
		assert.Zero(t, got.Pages)
	})

	t.Run("plain text file", func(t *testing.T) {
		txt := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
		info, err := inspectFile(txt)
		require.NoError(t, err)
		assert.Equal(t, "text/plain; charset=utf-8", info.MimeType)
		assert.Equal(t, "5 B", info.SizeHuman)
		assert.Zero(t, info.Width)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "inspect", filepath.Join(dir, "nope.png"))
		require.Error(t, err)
	})

	t.Run("requires an argument", func(t *testing.T) {
		_, err := execute(t, "inspect")
		require.Error(t, err)
	})
}

func TestCompressRejects(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, 2, 2)

	_, err := execute(t, "compress", "--tier", "extreme", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported tier "extreme"`)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	_, err = execute(t, "compress", txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only images and PDFs")
}

func TestCompressImage(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, 8, 8)
	dst := filepath.Join(dir, "out.png")

	out, err := execute(t, "compress", "--tier", "light", "-o", dst, path)
	require.NoError(t, err)
	assert.Contains(t, out, dst+": ")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestMergeArgs(t *testing.T) {
	_, err := execute(t, "merge", "out.pdf")
	require.Error(t, err)

	_, err = execute(t, "merge", "--tier", "huge", "out.pdf", "a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tier")
}

func TestCompressedName(t *testing.T) {
	assert.Equal(t, "dir/scan.min.pdf", compressedName("dir/scan.pdf"))
	assert.Equal(t, "photo.min", compressedName("photo"))
}
