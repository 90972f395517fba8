package handler

import (
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediadocs/internal/apperror"
	"mediadocs/internal/http/middleware"
	"mediadocs/internal/imageinfo"
	"mediadocs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics(gatherer))

	docs := app.Group("/documents", middleware.Owner())
	docs.Get("", ListDocuments(docSvc))
	docs.Post("", UploadDocuments(docSvc))
	docs.Post("/promote", PromoteDocument(docSvc))
	docs.Get("/usage", GetUsage(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Get("/:id/download", DownloadDocument(docSvc))
	docs.Get("/:id/image", GetEmbeddedImage(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Checks database connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the Prometheus registry behind g.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// ListDocuments godoc
// @Summary List the owner's documents
// @Tags documents
// @Produce json
// @Param X-Owner-ID header string true "Owner id"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), middleware.OwnerID(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocuments godoc
// @Summary Upload one or more documents
// @Description Files go in "files" (repeatable) or "file". With merge=true and several files
// @Description the inputs are merged into a single PDF.
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param X-Owner-ID header string true "Owner id"
// @Param files formData file true "Files to upload"
// @Param type formData string true "Document type" Enums(cv, letter, portfolio, diploma, certificate, identity, photo, signature, other)
// @Param compression formData string false "Compression tier" Enums(auto, light, medium, strong)
// @Param merge formData bool false "Merge all files into one PDF"
// @Param name formData string false "Name of the merged PDF"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /documents [post]
func UploadDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeServiceError(c, apperror.ErrFileRequired)
		}
		headers := make([]*multipart.FileHeader, 0, len(form.File["files"])+len(form.File["file"]))
		headers = append(headers, form.File["files"]...)
		headers = append(headers, form.File["file"]...)
		if len(headers) == 0 {
			return writeServiceError(c, apperror.ErrFileRequired)
		}

		files := make([]service.FileInput, 0, len(headers))
		for _, fh := range headers {
			data, err := readFormFile(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			files = append(files, service.FileInput{
				Name:         fh.Filename,
				DeclaredMime: fh.Header.Get("Content-Type"),
				Data:         data,
			})
		}

		merge := false
		if v := formValue(form, "merge"); v != "" {
			if merge, err = strconv.ParseBool(v); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_MERGE_FLAG", "merge must be true or false")
			}
		}

		docs, err := docSvc.Ingest(c.UserContext(), service.IngestRequest{
			OwnerID:     middleware.OwnerID(c),
			Files:       files,
			Type:        formValue(form, "type"),
			Compression: formValue(form, "compression"),
			Merge:       merge,
			MergedName:  formValue(form, "name"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		if len(docs) == 1 {
			return c.Status(fiber.StatusCreated).JSON(docs[0])
		}
		return c.Status(fiber.StatusCreated).JSON(docs)
	}
}

type promoteRequest struct {
	TempPath     string `json:"temp_path"`
	Type         string `json:"type"`
	OriginalName string `json:"original_name"`
}

// PromoteDocument godoc
// @Summary Attach a temporary upload as a permanent document
// @Tags documents
// @Accept json
// @Produce json
// @Param X-Owner-ID header string true "Owner id"
// @Param body body promoteRequest true "Temp file reference"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Router /documents/promote [post]
func PromoteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promoteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.AttachTemp(c.UserContext(), service.AttachRequest{
			OwnerID:      middleware.OwnerID(c),
			TempPath:     req.TempPath,
			Type:         req.Type,
			OriginalName: req.OriginalName,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetUsage godoc
// @Summary Storage usage of the owner
// @Tags documents
// @Produce json
// @Param X-Owner-ID header string true "Owner id"
// @Success 200 {object} quota.Usage
// @Failure 401 {object} errorPayload
// @Router /documents/usage [get]
func GetUsage(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := docSvc.Usage(c.UserContext(), middleware.OwnerID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param X-Owner-ID header string true "Owner id"
// @Param id path string true "Document id"
// @Success 200 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), middleware.OwnerID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument godoc
// @Summary Download the stored bytes of a document
// @Tags documents
// @Produce octet-stream
// @Param X-Owner-ID header string true "Owner id"
// @Param id path string true "Document id"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/download [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, doc, err := docSvc.Open(c.UserContext(), middleware.OwnerID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		mimeType := doc.MimeType
		if mimeType == "" {
			mimeType = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, mimeType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(doc.OriginalName))
		// fasthttp closes rc once the body has been written
		return c.SendStream(rc, int(doc.Size))
	}
}

type docxExtent struct {
	CX int64 `json:"cx"`
	CY int64 `json:"cy"`
}

type embeddedImageResponse struct {
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Extension   string     `json:"extension"`
	Size        int        `json:"size"`
	AspectRatio float64    `json:"aspect_ratio"`
	DocxExtent  docxExtent `json:"docx_extent"`
}

// GetEmbeddedImage godoc
// @Summary Measure a stored photo or signature for document embedding
// @Description With width set, the box is scaled to that width keeping the aspect ratio.
// @Tags documents
// @Produce json
// @Param X-Owner-ID header string true "Owner id"
// @Param id path string true "Document id"
// @Param width query int false "Target width in pixels"
// @Success 200 {object} embeddedImageResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/image [get]
func GetEmbeddedImage(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		target := 0
		if v := c.Query("width"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_WIDTH", "width must be a positive integer")
			}
			target = n
		}

		img, err := docSvc.EmbeddedImage(c.UserContext(), middleware.OwnerID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		w, h := img.Width, img.Height
		if target > 0 {
			w, h = img.FitWidth(target)
		}
		cx, cy := imageinfo.DocxExtentEMU(w, h)
		return c.JSON(embeddedImageResponse{
			Width:       w,
			Height:      h,
			Extension:   img.Extension,
			Size:        len(img.Data),
			AspectRatio: img.AspectRatio(),
			DocxExtent:  docxExtent{CX: cx, CY: cy},
		})
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Tags documents
// @Param X-Owner-ID header string true "Owner id"
// @Param id path string true "Document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), middleware.OwnerID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
