package localfs

import (
	"context"
	"os"
	"testing"

	"github.com/SkynetHQ/skynet-go/cidutil"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
	"github.com/SkynetHQ/skynet-go/storage/testkit"
)

func TestLocalFS_CASConformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		cas, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return cas
	})
}

func TestLocalFS_RegistryConformance(t *testing.T) {
	testkit.RunRegistryStoreConformance(t, func(t *testing.T) registry.Store {
		t.Helper()
		store, err := NewRegistryStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewRegistryStore failed: %v", err)
		}
		return store
	})
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	cas, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original")
	id, err := cas.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored blob out-of-band.
	path := cas.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Get must detect hash mismatch.
	_, err = cas.Get(id)
	if err != storage.ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, storage.ErrCIDMismatch)
	}

	// Put must not "repair" or overwrite the corrupted blob.
	_, err = cas.Put(orig)
	if err != storage.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, storage.ErrImmutable)
	}

	// Sanity: the CID is still the CID of the original bytes.
	wantID, err := cidutil.CIDv1RawSHA256CID(orig)
	if err != nil {
		t.Fatalf("CIDv1RawSHA256CID failed: %v", err)
	}
	if id != wantID {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}

func TestRegistryStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewRegistryStore(dir)
	if err != nil {
		t.Fatalf("NewRegistryStore: %v", err)
	}
	se := registry.SignedEntry{
		Entry:     registry.Entry{DataKey: "doc", Data: []byte("pointer"), Revision: 0},
		Signature: "00",
	}
	if err := store.SetEntry(ctx, "pubkey", se); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	reopened, err := NewRegistryStore(dir)
	if err != nil {
		t.Fatalf("NewRegistryStore reopen: %v", err)
	}
	got, err := reopened.GetEntry(ctx, "pubkey", "doc")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Revision != 0 || string(got.Data) != "pointer" {
		t.Fatalf("unexpected entry after reopen: %+v", got)
	}
}
