package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"mediadocs/internal/apperror"
	"mediadocs/internal/imageinfo"
)

// Input is one file taking part in a merge.
type Input struct {
	Name     string
	MimeType string
	Data     []byte
}

// Merge concatenates inputs, in order, into a single PDF. Images become one
// full-bleed page the size of their pixel dimensions. PDFs are compressed
// first when precompress is set. Only PNG, JPEG and PDF inputs are accepted.
func (t *Transformer) Merge(ctx context.Context, inputs []Input, tier Tier, precompress bool) (out []byte, err error) {
	if len(inputs) == 0 {
		return nil, apperror.ErrFileRequired
	}
	for _, in := range inputs {
		switch classify(in.MimeType) {
		case kindPNG, kindJPEG, kindPDF:
		default:
			return nil, apperror.ErrUnsupportedMergeInput.WithDetails(map[string]any{
				"file":      in.Name,
				"mime_type": in.MimeType,
			})
		}
	}

	ctx, span := t.tracer.Start(ctx, "media.merge")
	defer span.End()

	tf := newTempFiles(t.tempDir)
	defer func() {
		if cerr := tf.cleanup(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("remove temp files: %w", cerr))
			out = nil
		}
	}()

	parts := make([]string, 0, len(inputs))
	for i, in := range inputs {
		var part string
		switch k := classify(in.MimeType); k {
		case kindPDF:
			data := in.Data
			if precompress {
				if data, err = t.CompressPDF(ctx, data, tier); err != nil {
					return nil, err
				}
			}
			part, err = tf.write("merge-part-*.pdf", data)
		default:
			part, err = t.imagePage(tf, in.Data, k)
		}
		if err != nil {
			return nil, fmt.Errorf("prepare merge input %d (%s): %w", i, in.Name, err)
		}
		parts = append(parts, part)
	}

	outPath, err := tf.reserve("merge-out-*.pdf")
	if err != nil {
		return nil, err
	}
	if err := t.runGhostscript(ctx, "merge", outPath, parts, tier.PDFProfile()); err != nil {
		return nil, pdfFailure(err)
	}
	return readOutput(outPath)
}

// imagePage writes a one-page PDF whose media box matches the image's pixel
// size, with the image filling it.
func (t *Transformer) imagePage(tf *tempFiles, data []byte, k kind) (string, error) {
	ext := ".png"
	if k == kindJPEG {
		ext = ".jpg"
	}
	size, ok := imageinfo.Dimensions(data, ext)
	if !ok || size.Width == 0 || size.Height == 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("read image size: %w", err)
		}
		size = imageinfo.Size{Width: cfg.Width, Height: cfg.Height}
	}

	imp, err := api.Import(fmt.Sprintf("dimensions:%d %d, position:full", size.Width, size.Height), types.POINTS)
	if err != nil {
		return "", fmt.Errorf("image page setup: %w", err)
	}

	f, err := tf.create("merge-img-*.pdf")
	if err != nil {
		return "", err
	}
	err = api.ImportImages(nil, f, []io.Reader{bytes.NewReader(data)}, imp, nil)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("wrap image in pdf: %w", err)
	}
	return f.Name(), nil
}
