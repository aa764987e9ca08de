package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secureshare/internal/common"
	"secureshare/internal/dbx"
	"secureshare/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (owner_id, filename, media_type, size, storage_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, upload_date
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.Filename, file.MediaType, file.Size, file.StorageKey).
		Scan(&file.ID, &file.UploadDate)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query :=
		`SELECT id, owner_id, filename, media_type, size, storage_key, upload_date FROM files
		 WHERE id = $1
		 `

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&file.ID, &file.OwnerID, &file.Filename, &file.MediaType, &file.Size, &file.StorageKey, &file.UploadDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query :=
		`SELECT id, owner_id, filename, media_type, size, storage_key, upload_date FROM files
		 WHERE owner_id = $1
		 ORDER BY upload_date DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Filename, &item.MediaType, &item.Size, &item.StorageKey, &item.UploadDate); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
