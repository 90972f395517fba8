package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"mediadocs/internal/model"
	"mediadocs/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var documentCols = []string{"id", "owner_id", "type", "original_name", "path", "mime_type", "size", "created_at", "updated_at"}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		ID:           "doc-1",
		OwnerID:      "owner-1",
		Type:         model.DocumentTypeCV,
		OriginalName: "cv.pdf",
		Path:         "documents/1-owner1-abc.pdf",
		MimeType:     "application/pdf",
		Size:         123,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	rows := sqlmock.NewRows(documentCols).
		AddRow(doc.ID, doc.OwnerID, "cv", doc.OriginalName, doc.Path, doc.MimeType, doc.Size, now, now)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.OwnerID, "cv", doc.OriginalName, doc.Path, doc.MimeType, doc.Size, now, now).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.Equal(t, doc, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(documentCols).
			AddRow("doc-1", "owner-1", "photo", "me.png", "documents/x.png", "image/png", 100, time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1 AND owner_id = \\$2").
			WithArgs("doc-1", "owner-1").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "owner-1", "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, model.DocumentTypePhoto, doc.Type)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1 AND owner_id = \\$2").
			WithArgs("doc-1", "someone-else").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "someone-else", "doc-1")

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, doc)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents WHERE owner_id = \\$1").
			WithArgs("owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows(documentCols).
			AddRow("b", "owner-1", "letter", "l.pdf", "documents/b.pdf", "application/pdf", 10, time.Now(), time.Now()).
			AddRow("a", "owner-1", "cv", "c.pdf", "documents/a.pdf", "application/pdf", 20, time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE owner_id = \\$1 ORDER BY").
			WithArgs("owner-1", 10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, "owner-1", repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, "b", res.Items[0].ID)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
			WillReturnError(errors.New("db down"))

		_, err := repo.List(ctx, "owner-1", repository.PageQuery{Limit: 10})
		assert.EqualError(t, err, "db down")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = \\$1 AND owner_id = \\$2").
		WithArgs("doc-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "owner-1", "doc-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewQuotaPostgres(db)
	ctx := context.Background()

	t.Run("sum", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(size\\), 0\\) FROM documents WHERE owner_id = \\$1").
			WithArgs("owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(9437184)))

		used, err := repo.SumSizeByOwner(ctx, "owner-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(9437184), used)
	})

	t.Run("limit override", func(t *testing.T) {
		mock.ExpectQuery("SELECT total_bytes_limit FROM storage_quotas").
			WithArgs("owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"total_bytes_limit"}).AddRow(int64(20971520)))

		limit, ok, err := repo.LimitForOwner(ctx, "owner-1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(20971520), limit)
	})

	t.Run("no override", func(t *testing.T) {
		mock.ExpectQuery("SELECT total_bytes_limit FROM storage_quotas").
			WithArgs("owner-2").
			WillReturnError(sql.ErrNoRows)

		_, ok, err := repo.LimitForOwner(ctx, "owner-2")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
