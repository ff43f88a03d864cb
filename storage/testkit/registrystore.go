package testkit

import (
	"bytes"
	"context"
	"testing"

	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

// NewRegistryStore constructs a fresh, empty registry store for a test.
// The returned store MUST be isolated from other tests.
type NewRegistryStore func(t *testing.T) registry.Store

// RunRegistryStoreConformance exercises the registry.Store contract against
// an implementation: not-found signaling, round-trips, and the stale-
// revision rejection that backs optimistic concurrency.
func RunRegistryStoreConformance(t *testing.T, newStore NewRegistryStore) {
	t.Helper()

	kp, err := keys.GenKeyPairFromSeed("registry store conformance seed")
	if err != nil {
		t.Fatalf("GenKeyPairFromSeed: %v", err)
	}
	sign := func(t *testing.T, dataKey string, data []byte, revision uint64) registry.SignedEntry {
		t.Helper()
		se, err := registry.SignEntry(registry.Entry{DataKey: dataKey, Data: data, Revision: revision}, false, kp)
		if err != nil {
			t.Fatalf("SignEntry: %v", err)
		}
		return se
	}

	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetEntry(context.Background(), kp.PublicKey, "absent")
		if !registry.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrEntryNotFound", err)
		}
	})

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		want := sign(t, "doc", []byte("pointer"), 0)

		if err := store.SetEntry(ctx, kp.PublicKey, want); err != nil {
			t.Fatalf("SetEntry: %v", err)
		}
		got, err := store.GetEntry(ctx, kp.PublicKey, "doc")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.DataKey != want.DataKey || !bytes.Equal(got.Data, want.Data) ||
			got.Revision != want.Revision || got.Signature != want.Signature {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
		}
		if err := registry.VerifyEntry(*got, false, kp.PublicKey); err != nil {
			t.Fatalf("VerifyEntry after round trip: %v", err)
		}
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if err := store.SetEntry(ctx, kp.PublicKey, sign(t, "a", []byte("1"), 0)); err != nil {
			t.Fatalf("SetEntry a: %v", err)
		}
		if err := store.SetEntry(ctx, kp.PublicKey, sign(t, "b", []byte("2"), 0)); err != nil {
			t.Fatalf("SetEntry b: %v", err)
		}
		other, err := keys.GenKeyPairFromSeed("a different identity")
		if err != nil {
			t.Fatalf("GenKeyPairFromSeed: %v", err)
		}
		if _, err := store.GetEntry(ctx, other.PublicKey, "a"); !registry.IsNotFound(err) {
			t.Fatalf("expected entries to be scoped per public key, got %v", err)
		}
	})

	t.Run("RejectStaleRevision", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if err := store.SetEntry(ctx, kp.PublicKey, sign(t, "doc", []byte("v2"), 2)); err != nil {
			t.Fatalf("SetEntry rev 2: %v", err)
		}
		for _, stale := range []uint64{2, 1, 0} {
			err := store.SetEntry(ctx, kp.PublicKey, sign(t, "doc", []byte("stale"), stale))
			if !storage.IsStaleRevision(err) {
				t.Fatalf("SetEntry rev %d: got err=%v want ErrStaleRevision", stale, err)
			}
		}
		if err := store.SetEntry(ctx, kp.PublicKey, sign(t, "doc", []byte("v3"), 3)); err != nil {
			t.Fatalf("SetEntry rev 3: %v", err)
		}
		got, err := store.GetEntry(ctx, kp.PublicKey, "doc")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Revision != 3 || string(got.Data) != "v3" {
			t.Fatalf("expected rev 3 to win, got %+v", got)
		}
	})
}
