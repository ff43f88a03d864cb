package storage

import "errors"

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrInvalidCID  = errors.New("storage: invalid cid")
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	ErrImmutable   = errors.New("storage: immutable blob mismatch")

	// ErrStaleRevision is returned by registry-store implementations when a
	// Set carries a revision that does not exceed the stored one. This is
	// the collaborator-side rejection that surfaces a lost optimistic-
	// concurrency race to the caller.
	ErrStaleRevision = errors.New("storage: stale registry revision")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsStaleRevision(err error) bool { return errors.Is(err, ErrStaleRevision) }
