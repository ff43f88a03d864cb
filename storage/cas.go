package storage

import "github.com/ipfs/go-cid"

// CAS is the blob-storage collaborator boundary: a minimal
// content-addressable store for opaque byte blobs (typically encrypted
// containers).
//
// Contract:
// - Put MUST be idempotent.
// - Stored blobs MUST be immutable.
// - CIDs MUST be derived from the bytes written (cidutil convention).
// - Get MUST return ErrNotFound when the CID is absent.
//
// The core hands a store raw bytes and receives back only bytes or an
// opaque content identifier; keys and plaintext never cross this boundary.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
