package registry

import (
	"context"
	"errors"
)

// ErrEntryNotFound is the explicit "no entry" signal from a Store lookup.
var ErrEntryNotFound = errors.New("registry: entry not found")

// IsNotFound reports whether err is (or wraps) ErrEntryNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrEntryNotFound) }

// Store is the registry-publication collaborator boundary.
//
// Contract:
// - GetEntry MUST return ErrEntryNotFound when no entry exists for the key.
// - SetEntry MUST reject an entry whose revision does not exceed the stored one.
// - The store never inspects entry data; it is an opaque, bounded blob.
//
// Implementations may suspend on network I/O; callers impose timeouts via
// ctx.
type Store interface {
	GetEntry(ctx context.Context, publicKey, dataKey string) (*SignedEntry, error)
	SetEntry(ctx context.Context, publicKey string, se SignedEntry) error
}
