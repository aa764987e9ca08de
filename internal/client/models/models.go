// Package models defines client-side domain types shared by the API client,
// the session state machine and the vault orchestrator.
package models

import (
	"fmt"
	"time"

	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/rbac"
)

// Identity is the immutable snapshot of the signed-in user held for the
// lifetime of a session. It is created server-side on registration and
// discarded on logout or expiry.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  rbac.Role
}

// FileRecord is the server-owned projection of a stored file. The client
// never mutates it directly; upload and delete return updated projections.
type FileRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"upload_date"`
	OwnerID    string    `json:"owner_id"`
}

// GrantPermission is the scope of a share grant. It is deliberately
// narrower than the rbac vocabulary: a grant can only ever view or
// download, never manage.
type GrantPermission string

const (
	GrantView     GrantPermission = "view"
	GrantDownload GrantPermission = "download"
)

// ParseGrantPermission validates a wire string.
func ParseGrantPermission(s string) (GrantPermission, error) {
	switch GrantPermission(s) {
	case GrantView:
		return GrantView, nil
	case GrantDownload:
		return GrantDownload, nil
	default:
		return "", fmt.Errorf("unknown share permission %q: %w", s, common.ErrValidation)
	}
}

// ShareGrant is a scoped, time-limited permission record granting access to
// one file without a full session. Past ExpiresAt the grant is inert.
type ShareGrant struct {
	Token      string          `json:"token"`
	FileID     string          `json:"file_id"`
	GranteeID  string          `json:"grantee_id"`
	Permission GrantPermission `json:"permission"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// SharedFile is the result of resolving a share link: the ciphertext-bearing
// envelope, the file projection and the minimum permission the grant implies.
type SharedFile struct {
	Record     FileRecord
	Envelope   *cryptox.Envelope
	Permission GrantPermission
}
