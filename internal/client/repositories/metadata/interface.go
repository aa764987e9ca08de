package metadata

import (
	"context"
)

// Repository is a small key/value store for client-side state that must
// survive restarts, such as the persisted session snapshot. Values are
// opaque bytes; cryptographic key material must never be stored here.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
