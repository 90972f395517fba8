package model

import (
	"strings"
	"time"
)

// DocumentType is the category an owner files a document under.
type DocumentType string

const (
	DocumentTypeCV          DocumentType = "cv"
	DocumentTypeLetter      DocumentType = "letter"
	DocumentTypePortfolio   DocumentType = "portfolio"
	DocumentTypeDiploma     DocumentType = "diploma"
	DocumentTypeCertificate DocumentType = "certificate"
	DocumentTypeIdentity    DocumentType = "identity"
	DocumentTypePhoto       DocumentType = "photo"
	DocumentTypeSignature   DocumentType = "signature"
	DocumentTypeOther       DocumentType = "other"
)

var documentTypes = map[DocumentType]struct{}{
	DocumentTypeCV:          {},
	DocumentTypeLetter:      {},
	DocumentTypePortfolio:   {},
	DocumentTypeDiploma:     {},
	DocumentTypeCertificate: {},
	DocumentTypeIdentity:    {},
	DocumentTypePhoto:       {},
	DocumentTypeSignature:   {},
	DocumentTypeOther:       {},
}

// ParseDocumentType normalizes s and reports whether it names a known type.
func ParseDocumentType(s string) (DocumentType, bool) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	_, ok := documentTypes[t]
	return t, ok
}

// Document is a file an owner keeps in permanent storage.
// Its tags only shape the API JSON; persistence lives in the repository.
// Path is the storage key and always points at an existing object once the
// row is persisted.
type Document struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	Type         DocumentType `json:"type"`
	OriginalName string       `json:"original_name"`
	Path         string       `json:"path"`
	MimeType     string       `json:"mime_type"`
	Size         int64        `json:"size"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// UploadResult describes bytes that have been written to permanent storage
// and are about to be recorded as a Document.
type UploadResult struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
}
