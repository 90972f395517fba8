package repository

import (
	"context"

	"mediadocs/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// Every read and delete is scoped to an owner.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns the owner's document with the given ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, ownerID, id string) (*model.Document, error)

	// List returns a page of the owner's documents, newest first, and the owner's total count.
	List(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes the owner's document. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, ownerID, id string) error
}

// QuotaRepository reads the figures behind storage quota decisions.
type QuotaRepository interface {
	// SumSizeByOwner returns the total size in bytes of the owner's documents.
	SumSizeByOwner(ctx context.Context, ownerID string) (int64, error)

	// LimitForOwner returns the owner's limit override, with ok=false when none is set.
	LimitForOwner(ctx context.Context, ownerID string) (limit int64, ok bool, err error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
