package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"mediadocs/internal/apperror"
	"mediadocs/internal/imageinfo"
	"mediadocs/internal/logging"
	"mediadocs/internal/media"
	"mediadocs/internal/model"
	"mediadocs/internal/promote"
	"mediadocs/internal/quota"
	"mediadocs/internal/repository"
	"mediadocs/internal/storage"
)

// MergedName is the original name given to a merged upload when the caller
// does not supply one.
const MergedName = "merged.pdf"

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// FileInput is one uploaded file as received from the client.
type FileInput struct {
	Name         string
	DeclaredMime string
	Data         []byte
}

// IngestRequest describes an upload. Compression is optional; Merge only
// applies when more than one file is supplied.
type IngestRequest struct {
	OwnerID     string
	Files       []FileInput
	Type        string
	Compression string
	Merge       bool
	// MergedName overrides MergedName for the merge path.
	MergedName string
}

// AttachRequest promotes an already uploaded temp file into a Document.
type AttachRequest struct {
	OwnerID      string
	TempPath     string
	Type         string
	OriginalName string
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Ingest validates, optionally compresses or merges, quota-checks and
	// stores the files, returning one Document per stored object.
	Ingest(ctx context.Context, req IngestRequest) ([]model.Document, error)

	// AttachTemp moves a temp upload into permanent storage and records it.
	AttachTemp(ctx context.Context, req AttachRequest) (*model.Document, error)

	// List returns the owner's documents using limit/offset and a total count.
	List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document of the owner.
	Get(ctx context.Context, ownerID, id string) (*model.Document, error)

	// Open returns the document and a reader over its bytes. The caller closes the reader.
	Open(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Document, error)

	// Delete removes a document from both storage and repository.
	Delete(ctx context.Context, ownerID, id string) error

	// Usage reports the owner's storage consumption.
	Usage(ctx context.Context, ownerID string) (*quota.Usage, error)

	// EmbeddedImage loads a stored photo or signature sized for document embedding.
	EmbeddedImage(ctx context.Context, ownerID, id string) (*imageinfo.EmbeddedImage, error)
}

// Transformer is the subset of media.Transformer the service drives.
type Transformer interface {
	CompressImage(ctx context.Context, data []byte, mimeType string, tier media.Tier) ([]byte, error)
	CompressPDF(ctx context.Context, data []byte, tier media.Tier) ([]byte, error)
	Merge(ctx context.Context, inputs []media.Input, tier media.Tier, precompress bool) ([]byte, error)
}

// Promoter is the subset of promote.Promoter the service drives.
type Promoter interface {
	Lookup(publicPath string) (*promote.TempFile, error)
	Promote(ctx context.Context, publicPath, ownerID string, opt storage.PutObjectOptions) (storage.ObjectInfo, error)
}

// Accountant is the subset of quota.Accountant the service drives.
type Accountant interface {
	AssertWithinQuota(ctx context.Context, ownerID string, candidateBytes int64) error
	Usage(ctx context.Context, ownerID string) (*quota.Usage, error)
	Lock(ctx context.Context, ownerID string) (func() error, error)
}

// Deps wires a DocumentService. Logger may be nil; MaxFileBytes <= 0 disables the per-file limit.
type Deps struct {
	Store        storage.Storage
	Repo         repository.DocumentRepository
	Media        Transformer
	Promoter     Promoter
	Quota        Accountant
	Namer        *promote.Namer
	Logger       *slog.Logger
	MaxFileBytes int64
}

type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	media    Transformer
	promoter Promoter
	quota    Accountant
	namer    *promote.Namer
	logger   *slog.Logger
	maxFile  int64
	now      func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d Deps) DocumentService {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Namer == nil {
		d.Namer = promote.NewNamer()
	}
	return &documentService{
		store:    d.Store,
		repo:     d.Repo,
		media:    d.Media,
		promoter: d.Promoter,
		quota:    d.Quota,
		namer:    d.Namer,
		logger:   d.Logger.With("component", "document_service"),
		maxFile:  d.MaxFileBytes,
		now:      time.Now,
	}
}

// pending is a file ready to be written: final bytes, name and mime type.
type pending struct {
	name string
	mime string
	data []byte
}

func (s *documentService) Ingest(ctx context.Context, req IngestRequest) ([]model.Document, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, apperror.ErrOwnerRequired
	}
	if len(req.Files) == 0 {
		return nil, apperror.ErrFileRequired
	}
	docType, ok := model.ParseDocumentType(req.Type)
	if !ok {
		return nil, apperror.ErrUnsupportedDocumentType.WithDetails(map[string]any{"type": req.Type})
	}
	compress := strings.TrimSpace(req.Compression) != ""
	tier := media.TierAuto
	if compress {
		t, err := media.ParseTier(req.Compression)
		if err != nil {
			return nil, err
		}
		tier = t
	}

	files := make([]pending, 0, len(req.Files))
	var incoming int64
	for _, f := range req.Files {
		if len(f.Data) == 0 {
			return nil, apperror.ErrFileRequired.WithDetails(map[string]any{"file": f.Name})
		}
		if s.maxFile > 0 && int64(len(f.Data)) > s.maxFile {
			return nil, apperror.ErrFileTooLarge.WithDetails(map[string]any{
				"file":      f.Name,
				"max_bytes": s.maxFile,
			})
		}
		files = append(files, pending{
			name: originalName(f.Name),
			mime: detectMime(f.Data, f.DeclaredMime),
			data: f.Data,
		})
		incoming += int64(len(f.Data))
	}

	unlock, err := s.quota.Lock(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("acquire quota lock: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.WarnContext(ctx, "quota_unlock_failed", "owner_id", req.OwnerID, "error", err.Error())
		}
	}()

	if err := s.quota.AssertWithinQuota(ctx, req.OwnerID, incoming); err != nil {
		return nil, err
	}

	if req.Merge && len(files) > 1 {
		merged, err := s.merge(ctx, files, tier, compress, req.MergedName)
		if err != nil {
			return nil, err
		}
		files = []pending{merged}
	} else if compress {
		for i := range files {
			out, err := s.compress(ctx, files[i], tier)
			if err != nil {
				return nil, err
			}
			files[i].data = out
		}
	}

	var final int64
	for _, f := range files {
		final += int64(len(f.data))
	}
	if err := s.quota.AssertWithinQuota(ctx, req.OwnerID, final); err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(files))
	for _, f := range files {
		doc, err := s.persist(ctx, req.OwnerID, docType, f)
		if err != nil {
			s.rollback(ctx, docs)
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *documentService) merge(ctx context.Context, files []pending, tier media.Tier, precompress bool, name string) (pending, error) {
	inputs := make([]media.Input, len(files))
	for i, f := range files {
		inputs[i] = media.Input{Name: f.name, MimeType: f.mime, Data: f.data}
	}
	out, err := s.media.Merge(ctx, inputs, tier, precompress)
	if err != nil {
		return pending{}, err
	}
	return pending{name: mergedName(name), mime: "application/pdf", data: out}, nil
}

// compress applies the tier to images and PDFs; anything else is stored as uploaded.
func (s *documentService) compress(ctx context.Context, f pending, tier media.Tier) ([]byte, error) {
	switch {
	case media.IsImage(f.mime):
		return s.media.CompressImage(ctx, f.data, f.mime, tier)
	case media.IsPDF(f.mime):
		return s.media.CompressPDF(ctx, f.data, tier)
	default:
		return f.data, nil
	}
}

// persist writes the bytes under a fresh key and records the row. A failed
// insert removes the written object again.
func (s *documentService) persist(ctx context.Context, ownerID string, docType model.DocumentType, f pending) (*model.Document, error) {
	key := s.namer.Key(ownerID, f.name)
	info, err := s.store.Put(ctx, key, bytes.NewReader(f.data), storage.PutObjectOptions{
		Size:        int64(len(f.data)),
		ContentType: f.mime,
		Metadata:    map[string]string{"original-filename": f.name},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	return s.record(ctx, ownerID, docType, model.UploadResult{
		Path:         info.Key,
		OriginalName: f.name,
		Size:         info.Size,
		MimeType:     f.mime,
	})
}

func (s *documentService) record(ctx context.Context, ownerID string, docType model.DocumentType, up model.UploadResult) (*model.Document, error) {
	now := s.now().UTC()
	doc := &model.Document{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Type:         docType,
		OriginalName: up.OriginalName,
		Path:         up.Path,
		MimeType:     up.MimeType,
		Size:         up.Size,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), up.Path); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// rollback undoes documents already persisted by a failing request.
func (s *documentService) rollback(ctx context.Context, docs []model.Document) {
	ctx = context.WithoutCancel(ctx)
	for _, d := range docs {
		if err := s.repo.Delete(ctx, d.OwnerID, d.ID); err != nil {
			s.logger.ErrorContext(ctx, "ingest_rollback_failed", "document_id", d.ID, "step", "metadata", "error", err.Error())
			continue
		}
		if err := s.store.Delete(ctx, d.Path); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.ErrorContext(ctx, "ingest_rollback_failed", "document_id", d.ID, "step", "storage", "error", err.Error())
		}
	}
}

func (s *documentService) AttachTemp(ctx context.Context, req AttachRequest) (*model.Document, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, apperror.ErrOwnerRequired
	}
	docType, ok := model.ParseDocumentType(req.Type)
	if !ok {
		return nil, apperror.ErrUnsupportedDocumentType.WithDetails(map[string]any{"type": req.Type})
	}
	tf, err := s.promoter.Lookup(req.TempPath)
	if err != nil {
		return nil, err
	}

	unlock, err := s.quota.Lock(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("acquire quota lock: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.WarnContext(ctx, "quota_unlock_failed", "owner_id", req.OwnerID, "error", err.Error())
		}
	}()

	if err := s.quota.AssertWithinQuota(ctx, req.OwnerID, tf.Size); err != nil {
		return nil, err
	}

	name := req.OriginalName
	if strings.TrimSpace(name) == "" {
		name = tf.Name
	}
	name = originalName(name)
	mimeType := "application/octet-stream"
	if m, err := mimetype.DetectFile(tf.LocalPath); err == nil {
		mimeType = baseMime(m.String())
	}

	info, err := s.promoter.Promote(ctx, req.TempPath, req.OwnerID, storage.PutObjectOptions{
		Size:        tf.Size,
		ContentType: mimeType,
		Metadata:    map[string]string{"original-filename": name},
	})
	if err != nil {
		return nil, err
	}
	return s.record(ctx, req.OwnerID, docType, model.UploadResult{
		Path:         info.Key,
		OriginalName: name,
		Size:         info.Size,
		MimeType:     mimeType,
	})
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperror.ErrOwnerRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, ownerID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Get(ctx context.Context, ownerID, id string) (*model.Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperror.ErrOwnerRequired
	}
	if id == "" {
		return nil, apperror.ErrDocumentNotFound
	}
	doc, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Open(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.ErrorContext(ctx, "document_object_missing", "document_id", doc.ID, "path", doc.Path)
			return nil, nil, apperror.ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("open storage object: %w", err)
	}
	return rc, doc, nil
}

// Delete removes the record, then its object. A row never outlives its
// object; an object whose removal fails is logged and left behind.
func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if err := s.store.Delete(ctx, doc.Path); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.ErrorContext(ctx, "document_object_orphaned", "document_id", doc.ID, "path", doc.Path, "error", err.Error())
	}
	return nil
}

func (s *documentService) Usage(ctx context.Context, ownerID string) (*quota.Usage, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperror.ErrOwnerRequired
	}
	return s.quota.Usage(ctx, ownerID)
}

func (s *documentService) EmbeddedImage(ctx context.Context, ownerID, id string) (*imageinfo.EmbeddedImage, error) {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	img, err := imageinfo.LoadEmbeddedImage(ctx, s.store, doc.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.ErrDocumentNotFound
		}
		return nil, err
	}
	return img, nil
}

// detectMime trusts the content over the client, except when the content
// is not recognized at all.
func detectMime(data []byte, declared string) string {
	m := mimetype.Detect(data)
	if m.Is("application/octet-stream") && strings.TrimSpace(declared) != "" {
		return baseMime(declared)
	}
	return baseMime(m.String())
}

func baseMime(s string) string {
	base, _, _ := strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func originalName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func mergedName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return MergedName
	}
	name = originalName(name)
	if !strings.EqualFold(path.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
