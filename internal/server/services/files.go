package services

import (
	"context"
	"errors"
	"fmt"

	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/rbac"
	"secureshare/internal/server/models"
	"secureshare/internal/server/repositories/files"
	"secureshare/internal/server/repositories/shares"
	"secureshare/internal/server/storage"
)

type FileService struct {
	files  files.Repository
	shares shares.Repository
	blobs  storage.BlobStore
}

func NewFileService(fileRepo files.Repository, shareRepo shares.Repository, blobs storage.BlobStore) *FileService {
	return &FileService{files: fileRepo, shares: shareRepo, blobs: blobs}
}

// Upload persists a sealed envelope: the blob goes to object storage, the
// projection to the database. The envelope is validated structurally but
// never decrypted; the server has no key for it anyway.
func (s *FileService) Upload(ctx context.Context, owner *models.User, env *cryptox.Envelope) (*models.File, error) {
	raw, err := env.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	key := storage.RandomStorageKey(owner.ID)
	if err := s.blobs.Put(ctx, key, raw); err != nil {
		return nil, common.ErrInternal
	}

	file := &models.File{
		OwnerID:    owner.ID,
		Filename:   env.Name,
		MediaType:  env.MediaType,
		Size:       int64(len(env.Ciphertext)),
		StorageKey: key,
	}

	file, err = s.files.Create(ctx, file)
	if err != nil {
		// best effort: do not leave an orphaned blob behind
		_ = s.blobs.Delete(ctx, key)
		return nil, common.ErrInternal
	}

	return file, nil
}

// Download returns the file's envelope. Non-owners need manage-files.
func (s *FileService) Download(ctx context.Context, caller *models.User, fileID string) (*models.File, *cryptox.Envelope, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, common.ErrInternal
	}

	if file.OwnerID != caller.ID && !s.canManageFiles(caller) {
		return nil, nil, common.ErrForbidden
	}

	env, err := s.loadEnvelope(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return file, env, nil
}

// Delete removes a file, its blob and any outstanding grants. Owners may
// delete their own files; manage-files may delete any.
func (s *FileService) Delete(ctx context.Context, caller *models.User, fileID string) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	if file.OwnerID != caller.ID && !s.canManageFiles(caller) {
		return common.ErrForbidden
	}

	if err := s.shares.DeleteByFileID(ctx, fileID); err != nil {
		return common.ErrInternal
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		return common.ErrInternal
	}
	// the blob is unreachable once the row is gone
	_ = s.blobs.Delete(ctx, file.StorageKey)
	return nil
}

// List returns the caller's files, most recent first.
func (s *FileService) List(ctx context.Context, caller *models.User) ([]*models.File, error) {
	result, err := s.files.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

func (s *FileService) loadEnvelope(ctx context.Context, storageKey string) (*cryptox.Envelope, error) {
	raw, err := s.blobs.Get(ctx, storageKey)
	if err != nil {
		return nil, common.ErrInternal
	}

	env := &cryptox.Envelope{}
	if err := env.UnmarshalJSON(raw); err != nil {
		return nil, common.ErrInternal
	}
	return env, nil
}

func (s *FileService) canManageFiles(caller *models.User) bool {
	return rbac.CanAccess(
		[]rbac.Role{caller.Role},
		rbac.Permissions(caller.Role),
		[]rbac.Permission{rbac.PermManageFiles},
	)
}
