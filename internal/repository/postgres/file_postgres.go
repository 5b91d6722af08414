package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/math-u-t/litedrive/internal/model"
	"github.com/math-u-t/litedrive/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Each call checks a dedicated connection out of the pool and returns it on exit.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, owner_id, file_name, storage_path, file_size, mime_type, url, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.FileRecord, error) {
	var f model.FileRecord
	if err := s.Scan(
		&f.ID,
		&f.OwnerID,
		&f.FileName,
		&f.StoragePath,
		&f.FileSize,
		&f.MimeType,
		&f.URL,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Insert stores a record; the id is generated by the database.
func (r *FilePostgres) Insert(ctx context.Context, rec *model.FileRecord) (string, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	const q = `
		INSERT INTO files (owner_id, file_name, storage_path, file_size, mime_type, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id string
	if err := conn.QueryRowContext(ctx, q,
		rec.OwnerID,
		rec.FileName,
		rec.StoragePath,
		rec.FileSize,
		rec.MimeType,
		rec.URL,
		rec.CreatedAt,
	).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// FindOne fetches a single record by id and owner.
func (r *FilePostgres) FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	q := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND owner_id = $2`
	f, err := scanFile(conn.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// DeleteOne removes a record by id and owner and reports how many rows were deleted.
func (r *FilePostgres) DeleteOne(ctx context.Context, id, ownerID string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	const q = `DELETE FROM files WHERE id = $1 AND owner_id = $2`
	res, err := conn.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindByOwner returns all records of one owner, newest first.
func (r *FilePostgres) FindByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	q := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := conn.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileRecord, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Ping verifies database connectivity.
func (r *FilePostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
