package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// commandContext is swapped in tests to fake the gs binary.
var commandContext = exec.CommandContext

const maxDiagnosticBytes = 4096

// OptimizerError is a failed or timed out Ghostscript run.
type OptimizerError struct {
	Output   string
	TimedOut bool
	Err      error
}

func (e *OptimizerError) Error() string {
	if e.TimedOut {
		return "ghostscript timed out"
	}
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		return fmt.Sprintf("ghostscript failed: %v", e.Err)
	}
	return fmt.Sprintf("ghostscript failed: %v: %s", e.Err, msg)
}

func (e *OptimizerError) Unwrap() error { return e.Err }

func ghostscriptArgs(outputPath string, inputs []string, p PDFProfile) []string {
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-dSAFER",
		fmt.Sprintf("-dPDFSETTINGS=%s", p.Settings),
		"-dDownsampleColorImages=true",
		fmt.Sprintf("-dColorImageResolution=%d", p.DPI),
		"-dDownsampleGrayImages=true",
		fmt.Sprintf("-dGrayImageResolution=%d", p.DPI),
		"-dDownsampleMonoImages=true",
		fmt.Sprintf("-dMonoImageResolution=%d", p.DPI),
		fmt.Sprintf("-dJPEGQ=%d", p.JPEGQuality),
		fmt.Sprintf("-sOutputFile=%s", outputPath),
	}
	return append(args, inputs...)
}

// runGhostscript writes the optimized concatenation of inputs to outputPath.
// The run is detached from ctx cancellation and bounded by t.timeout only.
func (t *Transformer) runGhostscript(ctx context.Context, op, outputPath string, inputs []string, p PDFProfile) error {
	ctx, span := t.tracer.Start(ctx, "ghostscript."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("pdf.settings", p.Settings),
		attribute.Int("pdf.dpi", p.DPI),
		attribute.Int("pdf.inputs", len(inputs)),
	)

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	cmd := commandContext(runCtx, t.gsPath, ghostscriptArgs(outputPath, inputs, p)...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	t.metrics.optimizerDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if err == nil {
		t.metrics.optimizerRuns.WithLabelValues(op, "ok").Inc()
		return nil
	}

	optErr := &OptimizerError{
		Output:   truncate(output.String(), maxDiagnosticBytes),
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
		Err:      err,
	}
	outcome := "error"
	if optErr.TimedOut {
		outcome = "timeout"
	}
	t.metrics.optimizerRuns.WithLabelValues(op, outcome).Inc()
	span.RecordError(optErr)
	span.SetStatus(codes.Error, outcome)
	t.logger.Error("ghostscript failed",
		"operation", op,
		"timed_out", optErr.TimedOut,
		"elapsed_ms", elapsed.Milliseconds(),
		"error", err,
	)
	return optErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
