package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secureshare/internal/common"
	"secureshare/internal/dbx"
	"secureshare/internal/server/models"
)

// PostgresRepository implements share grant storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, share *models.Share) (*models.Share, error) {
	query :=
		`INSERT INTO shares (token, file_id, grantee_id, permission, created_by, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		share.Token, share.FileID, share.GranteeID, share.Permission, share.CreatedBy, share.ExpiresAt).
		Scan(&share.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return share, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	query :=
		`SELECT token, file_id, grantee_id, permission, created_by, expires_at, created_at FROM shares
		 WHERE token = $1
		 `

	share := &models.Share{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&share.Token, &share.FileID, &share.GranteeID, &share.Permission, &share.CreatedBy, &share.ExpiresAt, &share.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrGrantNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return share, nil
}

// DeleteByFileID removes every grant for a file. Used when the file itself
// is deleted so stale tokens cannot resolve.
func (r *PostgresRepository) DeleteByFileID(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to delete shares: %w", err)
	}
	return nil
}
