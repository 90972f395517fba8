package imageinfo

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"mediadocs/internal/apperror"
	"mediadocs/internal/storage"
)

// DefaultSide is used for both dimensions when a header cannot be parsed,
// which yields a square aspect ratio.
const DefaultSide = 300

const (
	minAspect = 0.01
	// EMUs per pixel at 96 DPI.
	emuPerPixel = 9525
)

// EmbeddedImage is a stored photo or signature ready to be placed in a
// generated document.
type EmbeddedImage struct {
	Width     int
	Height    int
	Data      []byte
	Extension string // ".png" or ".jpg"
}

// Fetcher is the slice of storage.Storage needed to read an image.
type Fetcher interface {
	Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
}

// LoadEmbeddedImage reads the image stored under key and measures it.
// Only PNG and JPEG are accepted.
func LoadEmbeddedImage(ctx context.Context, store Fetcher, key string) (*EmbeddedImage, error) {
	ext, ok := normalizeExt(path.Ext(key))
	if !ok {
		return nil, apperror.ErrUnsupportedSignatureOrPhotoFormat
	}

	rc, _, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", key, err)
	}
	return NewEmbeddedImage(data, ext), nil
}

// NewEmbeddedImage measures data, substituting a square default when the
// header is unreadable.
func NewEmbeddedImage(data []byte, ext string) *EmbeddedImage {
	img := &EmbeddedImage{Width: DefaultSide, Height: DefaultSide, Data: data, Extension: ext}
	if size, ok := Dimensions(data, ext); ok && size.Width > 0 && size.Height > 0 {
		img.Width = size.Width
		img.Height = size.Height
	}
	return img
}

// AspectRatio is width over height.
func (e *EmbeddedImage) AspectRatio() float64 {
	if e.Height <= 0 {
		return 1
	}
	return float64(e.Width) / float64(e.Height)
}

// FitWidth scales the image to targetWidth, deriving the height from the
// aspect ratio. Degenerate ratios are clamped so the height stays bounded.
func (e *EmbeddedImage) FitWidth(targetWidth int) (int, int) {
	aspect := math.Max(e.AspectRatio(), minAspect)
	h := int(math.Round(float64(targetWidth) / aspect))
	return targetWidth, h
}

// DocxExtentEMU converts a pixel box to the EMU extent used by wp:extent in
// OOXML drawings.
func DocxExtentEMU(widthPx, heightPx int) (cx, cy int64) {
	return int64(widthPx) * emuPerPixel, int64(heightPx) * emuPerPixel
}

func normalizeExt(ext string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".png":
		return ".png", true
	case ".jpg", ".jpeg":
		return ".jpg", true
	}
	return "", false
}
