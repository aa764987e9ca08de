package services

import (
	"context"
	"errors"
	"time"

	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/server/models"
	"secureshare/internal/server/repositories/files"
	"secureshare/internal/server/repositories/shares"
	"secureshare/internal/server/storage"
)

// AllowedShareTTLSeconds enumerates the accepted grant lifetimes. A value
// outside the set is rejected, never clamped to the nearest member.
var AllowedShareTTLSeconds = map[int]struct{}{
	900: {}, 1800: {}, 3600: {}, 7200: {},
	14400: {}, 28800: {}, 43200: {}, 86400: {},
}

// nowFunc is a test seam for expiry checks.
var nowFunc = time.Now

type ShareService struct {
	shares shares.Repository
	files  files.Repository
	blobs  storage.BlobStore
}

func NewShareService(shareRepo shares.Repository, fileRepo files.Repository, blobs storage.BlobStore) *ShareService {
	return &ShareService{shares: shareRepo, files: fileRepo, blobs: blobs}
}

// Create issues a grant on one of the caller's files.
func (s *ShareService) Create(ctx context.Context, caller *models.User, fileID, granteeID, permission string, ttlSeconds int) (*models.Share, error) {
	if permission != "view" && permission != "download" {
		return nil, common.ErrValidation
	}
	if _, ok := AllowedShareTTLSeconds[ttlSeconds]; !ok {
		return nil, common.ErrInvalidShareTTL
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	if file.OwnerID != caller.ID {
		return nil, common.ErrForbidden
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}

	share := &models.Share{
		Token:      token,
		FileID:     fileID,
		GranteeID:  granteeID,
		Permission: permission,
		CreatedBy:  caller.ID,
		ExpiresAt:  nowFunc().Add(time.Duration(ttlSeconds) * time.Second),
	}

	share, err = s.shares.Create(ctx, share)
	if err != nil {
		return nil, common.ErrInternal
	}
	return share, nil
}

// Resolve exchanges a token for the shared file and its envelope. An
// unknown token and a lapsed one are reported separately.
func (s *ShareService) Resolve(ctx context.Context, token string) (*models.Share, *models.File, *cryptox.Envelope, error) {
	share, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrGrantNotFound) {
			return nil, nil, nil, common.ErrGrantNotFound
		}
		return nil, nil, nil, common.ErrInternal
	}

	if !nowFunc().Before(share.ExpiresAt) {
		return nil, nil, nil, common.ErrGrantExpired
	}

	file, err := s.files.GetByID(ctx, share.FileID)
	if err != nil {
		// the file is gone, so the grant points at nothing
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, nil, common.ErrGrantNotFound
		}
		return nil, nil, nil, common.ErrInternal
	}

	raw, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, nil, common.ErrInternal
	}

	env := &cryptox.Envelope{}
	if err := env.UnmarshalJSON(raw); err != nil {
		return nil, nil, nil, common.ErrInternal
	}

	return share, file, env, nil
}
