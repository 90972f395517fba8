package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"mediadocs/internal/apperror"
)

// CompressImage re-encodes a PNG or JPEG at the tier's quality. It never
// fails on codec problems: when decoding or encoding breaks, or the result is
// not smaller, the original bytes come back unchanged. Non-image input is a
// caller error.
func (t *Transformer) CompressImage(ctx context.Context, data []byte, mimeType string, tier Tier) ([]byte, error) {
	k := classify(mimeType)
	switch k {
	case kindOther, kindPDF:
		return nil, apperror.ErrUnsupportedCompressionTarget
	case kindImage:
		t.fallback(ctx, "format", mimeType, nil)
		return data, nil
	}

	_, span := t.tracer.Start(ctx, "image.compress")
	defer span.End()

	out, reason, err := reencode(data, k, tier.ImageQuality())
	if err != nil {
		t.fallback(ctx, reason, mimeType, err)
		return data, nil
	}
	if len(out) >= len(data) {
		t.fallback(ctx, "not_smaller", mimeType, nil)
		return data, nil
	}
	return out, nil
}

func reencode(data []byte, k kind, quality int) ([]byte, string, error) {
	var (
		img image.Image
		err error
	)
	switch k {
	case kindJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		img, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "decode", fmt.Errorf("decode: %w", err)
	}

	var buf bytes.Buffer
	switch k {
	case kindJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	default:
		enc := png.Encoder{CompressionLevel: pngLevel(quality)}
		err = enc.Encode(&buf, img)
	}
	if err != nil {
		return nil, "encode", fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), "", nil
}

// PNG is lossless, so quality only picks how hard the encoder works.
func pngLevel(quality int) png.CompressionLevel {
	switch {
	case quality >= 85:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

func (t *Transformer) fallback(ctx context.Context, reason, mimeType string, err error) {
	t.metrics.imageFallbacks.WithLabelValues(reason).Inc()
	attrs := []any{"reason", reason, "mime_type", mimeType}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	t.logger.WarnContext(ctx, "image compression skipped", attrs...)
}
