package session

import (
	"context"
	"encoding/json"
	"fmt"

	"secureshare/internal/client/models"
	"secureshare/internal/client/repositories/metadata"
	"secureshare/internal/rbac"
)

// snapshotKey is the single local-store slot the session occupies. It is
// overwritten on every save, never appended to.
const snapshotKey = "session"

// Snapshot is the durable projection of an authenticated session: identity
// and the bearer token, enough to rehydrate after a restart without a
// network round trip. File encryption keys are never part of it.
type Snapshot struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Token           string `json:"token"`
}

// Store persists and restores the session snapshot.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// MetadataStore keeps the snapshot in the client's local key/value
// repository.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, snapshotKey, data); err != nil {
		return fmt.Errorf("saving session snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when the slot is empty.
func (s *MetadataStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.repo.Get(ctx, snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("loading session snapshot: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &snap, nil
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, snapshotKey)
}

// snapshotFrom builds the durable projection for an authenticated identity.
func snapshotFrom(identity *models.Identity, token string) *Snapshot {
	return &Snapshot{
		IsAuthenticated: true,
		UserID:          identity.ID,
		Name:            identity.Name,
		Email:           identity.Email,
		Role:            identity.Role.String(),
		Token:           token,
	}
}

// identityFrom rebuilds the in-memory identity from a snapshot.
func identityFrom(snap *Snapshot) (*models.Identity, error) {
	role, err := rbac.ParseRole(snap.Role)
	if err != nil {
		return nil, err
	}
	return &models.Identity{
		ID:    snap.UserID,
		Name:  snap.Name,
		Email: snap.Email,
		Role:  role,
	}, nil
}
