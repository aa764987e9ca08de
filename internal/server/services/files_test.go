package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/rbac"
	"secureshare/internal/server/models"
)

func sealedEnvelope(t *testing.T, plaintext []byte, name string) *cryptox.Envelope {
	t.Helper()
	key := cryptox.GenerateKey()
	env, err := cryptox.Seal(plaintext, key, name, "text/plain")
	require.NoError(t, err)
	return env
}

func testUser(id string, role rbac.Role) *models.User {
	return &models.User{ID: id, Name: id, Email: id + "@example.com", Role: role}
}

func setupFileService() (*FileService, *memFileRepo, *memShareRepo, *memBlobStore) {
	fileRepo := newMemFileRepo()
	shareRepo := newMemShareRepo()
	blobs := newMemBlobStore()
	return NewFileService(fileRepo, shareRepo, blobs), fileRepo, shareRepo, blobs
}

func TestUploadAndDownload(t *testing.T) {
	svc, _, _, blobs := setupFileService()
	ctx := context.Background()
	owner := testUser("u1", rbac.RoleUser)

	env := sealedEnvelope(t, []byte("contents"), "doc.txt")
	file, err := svc.Upload(ctx, owner, env)
	require.NoError(t, err)
	assert.Equal(t, "doc.txt", file.Filename)
	assert.Equal(t, int64(len(env.Ciphertext)), file.Size)
	assert.Equal(t, 1, blobs.len())

	gotFile, gotEnv, err := svc.Download(ctx, owner, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, gotFile.ID)

	// the stored envelope still opens
	plaintext, err := gotEnv.Open()
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), plaintext)
}

func TestDownload_Access(t *testing.T) {
	svc, _, _, _ := setupFileService()
	ctx := context.Background()
	owner := testUser("u1", rbac.RoleUser)

	file, err := svc.Upload(ctx, owner, sealedEnvelope(t, []byte("x"), "a.txt"))
	require.NoError(t, err)

	t.Run("stranger is refused", func(t *testing.T) {
		_, _, err := svc.Download(ctx, testUser("u2", rbac.RoleUser), file.ID)
		assert.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("admin may fetch anything", func(t *testing.T) {
		_, _, err := svc.Download(ctx, testUser("root", rbac.RoleAdmin), file.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := svc.Download(ctx, owner, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDelete_RemovesBlobAndGrants(t *testing.T) {
	svc, _, shareRepo, blobs := setupFileService()
	ctx := context.Background()
	owner := testUser("u1", rbac.RoleUser)

	file, err := svc.Upload(ctx, owner, sealedEnvelope(t, []byte("x"), "a.txt"))
	require.NoError(t, err)

	_, err = shareRepo.Create(ctx, &models.Share{Token: "tok", FileID: file.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, file.ID))
	assert.Equal(t, 0, blobs.len())

	_, err = shareRepo.GetByToken(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrGrantNotFound)

	// deleting again reports the file gone
	assert.ErrorIs(t, svc.Delete(ctx, owner, file.ID), common.ErrNotFound)
}

func TestDelete_Ownership(t *testing.T) {
	svc, _, _, _ := setupFileService()
	ctx := context.Background()
	owner := testUser("u1", rbac.RoleUser)

	file, err := svc.Upload(ctx, owner, sealedEnvelope(t, []byte("x"), "a.txt"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, testUser("u2", rbac.RoleUser), file.ID), common.ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, testUser("root", rbac.RoleAdmin), file.ID))
}

func TestList_OnlyOwn(t *testing.T) {
	svc, _, _, _ := setupFileService()
	ctx := context.Background()
	alice := testUser("u1", rbac.RoleUser)
	bob := testUser("u2", rbac.RoleUser)

	_, err := svc.Upload(ctx, alice, sealedEnvelope(t, []byte("a"), "a.txt"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, bob, sealedEnvelope(t, []byte("b"), "b.txt"))
	require.NoError(t, err)

	files, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Filename)
}
