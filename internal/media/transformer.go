// Package media recompresses images, optimizes PDFs through Ghostscript and
// merges mixed image/PDF inputs into one document.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mediadocs/internal/apperror"
	"mediadocs/internal/logging"
)

// DefaultTimeout bounds a single Ghostscript run.
const DefaultTimeout = 120 * time.Second

// Config is the static setup of a Transformer.
type Config struct {
	GhostscriptPath string
	Timeout         time.Duration
	// TempDir holds scratch files; empty means os.TempDir().
	TempDir string
}

// Transformer is safe for concurrent use.
type Transformer struct {
	gsPath  string
	timeout time.Duration
	tempDir string
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

var disablePDFConfigDir sync.Once

// New builds a Transformer. logger and metrics may be nil.
func New(cfg Config, logger *slog.Logger, metrics *Metrics) *Transformer {
	// pdfcpu otherwise writes a config file under the user's home.
	disablePDFConfigDir.Do(api.DisableConfigDir)

	if cfg.GhostscriptPath == "" {
		cfg.GhostscriptPath = "gs"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	return &Transformer{
		gsPath:  cfg.GhostscriptPath,
		timeout: cfg.Timeout,
		tempDir: cfg.TempDir,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("mediadocs/internal/media"),
	}
}

// CompressPDF runs data through Ghostscript with the tier's profile. There is
// no fallback: a failed run is reported as PDF_PROCESSING_FAILED.
func (t *Transformer) CompressPDF(ctx context.Context, data []byte, tier Tier) (out []byte, err error) {
	tf := newTempFiles(t.tempDir)
	defer func() {
		if cerr := tf.cleanup(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("remove temp files: %w", cerr))
			out = nil
		}
	}()

	in, err := tf.write("compress-in-*.pdf", data)
	if err != nil {
		return nil, err
	}
	outPath, err := tf.reserve("compress-out-*.pdf")
	if err != nil {
		return nil, err
	}

	if err := t.runGhostscript(ctx, "compress", outPath, []string{in}, tier.PDFProfile()); err != nil {
		return nil, pdfFailure(err)
	}
	return readOutput(outPath)
}

func readOutput(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read optimizer output: %w", err)
	}
	if len(b) == 0 {
		return nil, apperror.Wrap(apperror.ErrPDFProcessingFailed, "PDF optimizer produced no output", nil)
	}
	return b, nil
}

func pdfFailure(err error) error {
	var optErr *OptimizerError
	if !errors.As(err, &optErr) {
		return err
	}
	return apperror.Wrap(apperror.ErrPDFProcessingFailed, "", optErr).WithDetails(map[string]any{
		"diagnostics": strings.TrimSpace(optErr.Output),
		"timed_out":   optErr.TimedOut,
	})
}

// kind classifies a mime type for the pipeline.
type kind int

const (
	kindOther kind = iota
	kindPNG
	kindJPEG
	kindImage // an image we cannot re-encode
	kindPDF
)

func classify(mimeType string) kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/png":
		return kindPNG
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return kindJPEG
	case "application/pdf", "application/x-pdf":
		return kindPDF
	}
	if strings.HasPrefix(mt, "image/") {
		return kindImage
	}
	return kindOther
}

// IsImage reports whether mimeType is an image type.
func IsImage(mimeType string) bool {
	k := classify(mimeType)
	return k == kindPNG || k == kindJPEG || k == kindImage
}

// IsPDF reports whether mimeType is a PDF.
func IsPDF(mimeType string) bool { return classify(mimeType) == kindPDF }
