package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mediadocs/internal/repository"
)

// QuotaPostgres answers quota queries from the documents and storage_quotas tables.
type QuotaPostgres struct {
	db *sql.DB
}

// NewQuotaPostgres creates a new QuotaPostgres repository.
func NewQuotaPostgres(db *sql.DB) *QuotaPostgres {
	return &QuotaPostgres{db: db}
}

var _ repository.QuotaRepository = (*QuotaPostgres)(nil)

// SumSizeByOwner returns the total size of the owner's documents.
func (r *QuotaPostgres) SumSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(size), 0) FROM documents WHERE owner_id = $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// LimitForOwner returns the owner's limit override if one is stored.
func (r *QuotaPostgres) LimitForOwner(ctx context.Context, ownerID string) (int64, bool, error) {
	const q = `SELECT total_bytes_limit FROM storage_quotas WHERE owner_id = $1`
	var limit int64
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&limit)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return limit, true, nil
}
