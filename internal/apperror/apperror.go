package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying the HTTP status and machine-readable code
// that the handler layer reports to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code, so callers can
// compare against the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New returns a fresh error value with the given status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap copies base, attaching cause and an optional replacement message.
func Wrap(base *Error, message string, cause error) *Error {
	out := *base
	if message != "" {
		out.Message = message
	}
	out.Err = cause
	if base.Details != nil {
		out.Details = make(map[string]any, len(base.Details))
		for k, v := range base.Details {
			out.Details[k] = v
		}
	}
	return &out
}

// WithDetails returns a copy of e with the extra detail fields merged in.
func (e *Error) WithDetails(kv map[string]any) *Error {
	out := Wrap(e, "", e.Err)
	if out.Details == nil {
		out.Details = make(map[string]any, len(kv))
	}
	for k, v := range kv {
		out.Details[k] = v
	}
	return out
}

var (
	ErrFileRequired                      = New(http.StatusBadRequest, "FILE_REQUIRED", "at least one file is required")
	ErrUnsupportedCompressionOption      = New(http.StatusBadRequest, "UNSUPPORTED_COMPRESSION_OPTION", "compression must be one of auto, light, medium, strong")
	ErrUnsupportedCompressionTarget      = New(http.StatusBadRequest, "UNSUPPORTED_COMPRESSION_TARGET", "only images can be recompressed")
	ErrUnsupportedMergeInput             = New(http.StatusBadRequest, "UNSUPPORTED_MERGE_INPUT", "only PDF and image files can be merged")
	ErrStorageLimitExceeded              = New(http.StatusBadRequest, "STORAGE_LIMIT_EXCEEDED", "storage limit exceeded")
	ErrTempFileNotFound                  = New(http.StatusBadRequest, "TEMP_FILE_NOT_FOUND", "temporary file not found")
	ErrInvalidTempPath                   = New(http.StatusBadRequest, "INVALID_TEMP_PATH", "invalid temporary file path")
	ErrUnsupportedSignatureOrPhotoFormat = New(http.StatusBadRequest, "UNSUPPORTED_SIGNATURE_OR_PHOTO_FORMAT", "photo and signature must be PNG or JPEG")
	ErrUnsupportedDocumentType           = New(http.StatusBadRequest, "UNSUPPORTED_DOCUMENT_TYPE", "unknown document type")
	ErrFileTooLarge                      = New(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload size limit")
	ErrDocumentNotFound                  = New(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
	ErrOwnerRequired                     = New(http.StatusUnauthorized, "OWNER_REQUIRED", "owner identity is required")
	ErrPDFProcessingFailed               = New(http.StatusUnprocessableEntity, "PDF_PROCESSING_FAILED", "PDF processing failed")
)

// StorageLimitExceeded builds the quota error with the limit expressed in MB.
func StorageLimitExceeded(limitBytes int64) *Error {
	mb := float64(limitBytes) / (1024 * 1024)
	return ErrStorageLimitExceeded.WithDetails(map[string]any{
		"limit_bytes": limitBytes,
		"limit_mb":    mb,
	}).withMessage(fmt.Sprintf("storage limit of %s MB exceeded", formatMB(mb)))
}

func (e *Error) withMessage(msg string) *Error {
	e.Message = msg
	return e
}

func formatMB(mb float64) string {
	if mb == float64(int64(mb)) {
		return fmt.Sprintf("%d", int64(mb))
	}
	return fmt.Sprintf("%.2f", mb)
}

// As is a shorthand for errors.As against *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
