// Package models holds the server-side database projections.
package models

import (
	"time"

	"secureshare/internal/rbac"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Salt         []byte
	Role         rbac.Role
	CreatedAt    time.Time
}

// File is the metadata row for an uploaded envelope. The envelope itself
// lives in object storage under StorageKey.
type File struct {
	ID         string
	OwnerID    string
	Filename   string
	MediaType  string
	Size       int64
	StorageKey string
	UploadDate time.Time
}

// Share is a scoped grant of one file to one grantee. Past ExpiresAt the
// row is inert and resolution reports it as lapsed.
type Share struct {
	Token      string
	FileID     string
	GranteeID  string
	Permission string
	CreatedBy  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
