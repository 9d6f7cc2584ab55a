// Package tokens persists the client's two opaque credentials — the access
// and refresh tokens — in the local key-value store. This is the only
// durable client-side state; everything else is refetched from the API.
package tokens

import "context"

// Storage keys. Other running clients watch the store file and react when
// the access token row changes or disappears.
const (
	KeyAccessToken  = "authToken"
	KeyRefreshToken = "refreshToken"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
