package port

import "context"

// SessionStore is durable key-value storage scoped to browsing sessions.
type SessionStore interface {
	// Get reports false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
