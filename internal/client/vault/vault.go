// Package vault orchestrates the protected file workflows: client-side
// encryption before upload, decryption after download, share grants and the
// local listing that mirrors the server state. All permission checks happen
// here, before any network call is made.
package vault

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"secureshare/internal/client/api"
	"secureshare/internal/client/models"
	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/logging"
	"secureshare/internal/rbac"
)

// AllowedShareTTLs enumerates the accepted grant lifetimes in seconds,
// 15 minutes up to 24 hours. Anything else is rejected, never clamped.
var AllowedShareTTLs = []int{900, 1800, 3600, 7200, 14400, 28800, 43200, 86400}

// Session is the slice of the session manager the vault needs: who is signed
// in and what they may do.
type Session interface {
	IsAuthenticated() bool
	Identity() *models.Identity
	Roles() []rbac.Role
	Permissions() []rbac.Permission
}

// Vault coordinates uploads, downloads, deletions and share grants for the
// signed-in user. The listing it maintains is ordered most recent first and
// is only changed after the server confirms an operation.
type Vault struct {
	client  api.Client
	session Session
	log     logging.Logger

	mu    sync.RWMutex
	files []models.FileRecord
}

func New(client api.Client, session Session, log logging.Logger) *Vault {
	return &Vault{client: client, session: session, log: log}
}

// Files returns a copy of the current listing, most recent upload first.
func (v *Vault) Files() []models.FileRecord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]models.FileRecord(nil), v.files...)
}

// Refresh replaces the listing with the server's view.
func (v *Vault) Refresh(ctx context.Context) error {
	if err := v.require(rbac.PermFileDownload, rbac.PermManageFiles); err != nil {
		return err
	}

	files, err := v.client.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UploadDate.After(files[j].UploadDate)
	})

	v.mu.Lock()
	v.files = files
	v.mu.Unlock()
	return nil
}

// ProtectAndUpload encrypts plaintext under a fresh key and uploads the
// sealed envelope. onProgress, when non-nil, observes a non-decreasing
// percentage that reaches 100 exactly once, on completion. The listing is
// updated only after the server acknowledges the upload.
func (v *Vault) ProtectAndUpload(ctx context.Context, name, mediaType string, plaintext []byte, onProgress func(int)) (*models.FileRecord, error) {
	if err := v.require(rbac.PermFileUpload); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("file name is required: %w", common.ErrValidation)
	}

	key := cryptox.GenerateKey()
	defer common.WipeByteArray(key)

	env, err := cryptox.Seal(plaintext, key, name, mediaType)
	if err != nil {
		return nil, fmt.Errorf("sealing %q: %w", name, err)
	}

	record, err := v.client.Upload(ctx, env, onProgress)
	if err != nil {
		return nil, fmt.Errorf("uploading %q: %w", name, err)
	}

	v.mu.Lock()
	v.files = append([]models.FileRecord{*record}, v.files...)
	v.mu.Unlock()

	if v.log != nil {
		v.log.Info(ctx, "file uploaded", "file_id", record.ID, "size", record.Size)
	}
	return record, nil
}

// FetchAndDecrypt downloads a file's envelope and opens it. A tampered or
// truncated envelope surfaces as an integrity failure, never as garbage
// plaintext.
func (v *Vault) FetchAndDecrypt(ctx context.Context, fileID string) ([]byte, *cryptox.Envelope, error) {
	if err := v.require(rbac.PermFileDownload); err != nil {
		return nil, nil, err
	}

	env, err := v.client.Download(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading %q: %w", fileID, err)
	}

	plaintext, err := env.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("decrypting %q: %w", fileID, err)
	}
	return plaintext, env, nil
}

// DeleteFile removes a file. Owners may delete their own files; the
// manage-files permission allows deleting any. The listing is trimmed only
// after the server confirms.
func (v *Vault) DeleteFile(ctx context.Context, fileID string) error {
	identity := v.session.Identity()
	if identity == nil {
		return common.ErrUnauthorized
	}
	if !rbac.HasPermission(v.session.Permissions(), rbac.PermManageFiles) {
		if rec := v.find(fileID); rec != nil && rec.OwnerID != identity.ID {
			return fmt.Errorf("file %q is owned by another user: %w", fileID, common.ErrForbidden)
		}
	}

	if err := v.client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("deleting %q: %w", fileID, err)
	}

	v.mu.Lock()
	for i, f := range v.files {
		if f.ID == fileID {
			v.files = append(v.files[:i], v.files[i+1:]...)
			break
		}
	}
	v.mu.Unlock()
	return nil
}

// CreateGrant issues a time-limited share of one of the caller's files.
// ttlSeconds must be one of AllowedShareTTLs.
func (v *Vault) CreateGrant(ctx context.Context, fileID, granteeID string, perm models.GrantPermission, ttlSeconds int) (*models.ShareGrant, error) {
	if err := v.require(rbac.PermFileShare); err != nil {
		return nil, err
	}
	if _, err := models.ParseGrantPermission(string(perm)); err != nil {
		return nil, err
	}
	if !validTTL(ttlSeconds) {
		return nil, fmt.Errorf("share duration %ds: %w", ttlSeconds, common.ErrInvalidShareTTL)
	}

	identity := v.session.Identity()
	if rec := v.find(fileID); rec != nil && identity != nil && rec.OwnerID != identity.ID &&
		!rbac.HasPermission(v.session.Permissions(), rbac.PermManageFiles) {
		return nil, fmt.Errorf("file %q is owned by another user: %w", fileID, common.ErrForbidden)
	}

	grant, err := v.client.CreateShareGrant(ctx, fileID, granteeID, perm, ttlSeconds)
	if err != nil {
		return nil, fmt.Errorf("creating share grant: %w", err)
	}
	if v.log != nil {
		v.log.Info(ctx, "share grant created", "file_id", fileID, "permission", string(perm), "expires_at", grant.ExpiresAt)
	}
	return grant, nil
}

// ResolveGrant exchanges a share token for the shared file. A missing token
// and a lapsed one are distinct failures so the caller can say which.
func (v *Vault) ResolveGrant(ctx context.Context, token string) (*models.SharedFile, error) {
	if token == "" {
		return nil, fmt.Errorf("share token is required: %w", common.ErrValidation)
	}
	shared, err := v.client.ResolveShareLink(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolving share %q: %w", token, err)
	}
	return shared, nil
}

// OpenShared decrypts a shared file in memory. Both view and download grants
// permit this.
func (v *Vault) OpenShared(shared *models.SharedFile) ([]byte, error) {
	if shared == nil || shared.Envelope == nil {
		return nil, fmt.Errorf("shared file has no payload: %w", common.ErrValidation)
	}
	plaintext, err := shared.Envelope.Open()
	if err != nil {
		return nil, fmt.Errorf("decrypting shared file %q: %w", shared.Record.ID, err)
	}
	return plaintext, nil
}

// SaveShared writes a shared file's plaintext to w. Only download grants may
// export; a view grant never reaches an export path.
func (v *Vault) SaveShared(shared *models.SharedFile, w io.Writer) error {
	if shared == nil || shared.Envelope == nil {
		return fmt.Errorf("shared file has no payload: %w", common.ErrValidation)
	}
	if shared.Permission != models.GrantDownload {
		return fmt.Errorf("grant permits viewing only: %w", common.ErrForbidden)
	}
	plaintext, err := shared.Envelope.Open()
	if err != nil {
		return fmt.Errorf("decrypting shared file %q: %w", shared.Record.ID, err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return fmt.Errorf("writing shared file %q: %w", shared.Record.ID, err)
	}
	return nil
}

// require checks that the session holds at least one of the listed
// permissions. Admin short-circuits.
func (v *Vault) require(required ...rbac.Permission) error {
	if !v.session.IsAuthenticated() {
		return common.ErrUnauthorized
	}
	if !rbac.CanAccess(v.session.Roles(), v.session.Permissions(), required) {
		return fmt.Errorf("missing permission: %w", common.ErrForbidden)
	}
	return nil
}

func (v *Vault) find(fileID string) *models.FileRecord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for i := range v.files {
		if v.files[i].ID == fileID {
			return &v.files[i]
		}
	}
	return nil
}

func validTTL(ttl int) bool {
	for _, allowed := range AllowedShareTTLs {
		if ttl == allowed {
			return true
		}
	}
	return false
}
