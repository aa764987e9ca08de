package shares

import (
	"context"

	"secureshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, share *models.Share) (*models.Share, error)
	GetByToken(ctx context.Context, token string) (*models.Share, error)
	DeleteByFileID(ctx context.Context, fileID string) error
}
