package api

import (
	"context"

	"secureshare/internal/client/models"
	"secureshare/internal/cryptox"
)

// Client is the transport-agnostic contract to the secureshare backend.
// The session state machine and the vault orchestrator depend on this
// interface only; tests substitute fakes.
type Client interface {
	Close() error

	// Auth flow.
	Register(ctx context.Context, name, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (verificationID string, err error)
	VerifyLogin(ctx context.Context, verificationID, code string) (*models.Identity, error)
	Logout(ctx context.Context) error

	// File operations.
	ListFiles(ctx context.Context) ([]models.FileRecord, error)
	Upload(ctx context.Context, env *cryptox.Envelope, onProgress func(percent int)) (*models.FileRecord, error)
	Download(ctx context.Context, fileID string) (*cryptox.Envelope, error)
	DeleteFile(ctx context.Context, fileID string) error

	// Share grants.
	CreateShareGrant(ctx context.Context, fileID, granteeID string, perm models.GrantPermission, ttlSeconds int) (*models.ShareGrant, error)
	ResolveShareLink(ctx context.Context, token string) (*models.SharedFile, error)

	// Admin surface.
	ListUsers(ctx context.Context) ([]models.Identity, error)
	DeleteUser(ctx context.Context, userID string) error

	// Session token held for outbound requests. SetToken exists so a
	// rehydrated session can resume without re-authenticating.
	Token() string
	SetToken(token string)
}
