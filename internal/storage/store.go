// internal/storage/store.go
package storage

import (
	"context"
	"errors"
)

// Scope selects one of the two persistence tiers.
type Scope string

const (
	// ScopeHandoff holds short-lived navigation handoffs. Reads through
	// TakeOnce consume the value so a second read misses.
	ScopeHandoff Scope = "handoff"

	// ScopeSession holds session-durable state that survives repeated
	// reads until removed or expired.
	ScopeSession Scope = "session"
)

// ErrNotFound reports an absent key. Callers distinguish it from
// transport failures, which surface as wrapped backend errors.
var ErrNotFound = errors.New("storage: key not found")

// Store is the tier-agnostic persistence surface. Values are opaque
// byte payloads; serialization belongs to the caller.
type Store interface {
	// Peek reads a value without consuming it, regardless of scope.
	Peek(ctx context.Context, scope Scope, key string) ([]byte, error)

	// TakeOnce reads and atomically removes a value. On ScopeSession it
	// behaves like Peek; consumption applies to the handoff tier only.
	TakeOnce(ctx context.Context, scope Scope, key string) ([]byte, error)

	// Put writes a value into the given scope, overwriting any previous
	// value under the same key.
	Put(ctx context.Context, scope Scope, key string, value []byte) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, scope Scope, key string) error

	// Close releases any underlying resources.
	Close() error
}
