package registry

import (
	"context"
	"math"

	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

// NextEntry runs the read-verify-increment sequence for an update to
// (kp.PublicKey, dataKey) and returns the signed entry to publish.
//
// With no prior entry the revision is 0. With a prior entry, its signature
// is verified first -- the whole operation aborts if verification fails --
// and the new revision is previous+1. This sequence is the sole
// concurrency-control mechanism; a racing writer is detected by the store
// rejecting a non-increasing revision at publish time.
func NextEntry(ctx context.Context, store Store, kp keys.KeyPair, dataKey string, hashedDataKey bool, data []byte) (SignedEntry, error) {
	if store == nil {
		return SignedEntry{}, skyerr.Validation("store", "store must not be nil")
	}
	prev, err := store.GetEntry(ctx, kp.PublicKey, dataKey)
	var revision uint64
	switch {
	case err == nil:
		if verr := VerifyEntry(*prev, hashedDataKey, kp.PublicKey); verr != nil {
			return SignedEntry{}, verr
		}
		if prev.Revision == math.MaxUint64 {
			return SignedEntry{}, skyerr.Newf(skyerr.KindOverflow, "revision for dataKey %q cannot increase past %d", dataKey, prev.Revision)
		}
		revision = prev.Revision + 1
	case IsNotFound(err):
		revision = 0
	default:
		return SignedEntry{}, err
	}

	return SignEntry(Entry{DataKey: dataKey, Data: data, Revision: revision}, hashedDataKey, kp)
}

// Publish signs the next entry and hands it to the store in one pass.
func Publish(ctx context.Context, store Store, kp keys.KeyPair, dataKey string, hashedDataKey bool, data []byte) (SignedEntry, error) {
	se, err := NextEntry(ctx, store, kp, dataKey, hashedDataKey, data)
	if err != nil {
		return SignedEntry{}, err
	}
	if err := store.SetEntry(ctx, kp.PublicKey, se); err != nil {
		return SignedEntry{}, err
	}
	return se, nil
}
