package backend

import (
	"context"
	"flag"
	"sync"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/SkynetHQ/skynet-go/cidutil"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

type fakeCAS struct {
	blobs map[cid.Cid][]byte
}

func newFakeCAS() *fakeCAS { return &fakeCAS{blobs: map[cid.Cid][]byte{}} }

func (f *fakeCAS) Put(bytes []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	f.blobs[id] = append([]byte(nil), bytes...)
	return id, nil
}

func (f *fakeCAS) Get(id cid.Cid) ([]byte, error) {
	b, ok := f.blobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

func (f *fakeCAS) Has(id cid.Cid) bool {
	_, ok := f.blobs[id]
	return ok
}

type fakeRegistry struct{}

func (fakeRegistry) GetEntry(context.Context, string, string) (*registry.SignedEntry, error) {
	return nil, registry.ErrEntryNotFound
}

func (fakeRegistry) SetEntry(context.Context, string, registry.SignedEntry) error { return nil }

var (
	memberOnce sync.Once
	memberA    *fakeCAS
	memberB    *fakeCAS
)

// registerMembers installs two fixed fake backends the composite tests
// select via the member flags. Stores are reset per test.
func registerMembers(t *testing.T) {
	t.Helper()
	memberOnce.Do(func() {
		memberA = newFakeCAS()
		memberB = newFakeCAS()
		MustRegister(Backend{
			Name:          "fake-a",
			Usage:         UsageCLI | UsageDaemon,
			RegisterFlags: func(fs *flag.FlagSet) {},
			Open: func() (Opened, func() error, error) {
				return Opened{CAS: memberA, Registry: fakeRegistry{}}, nil, nil
			},
		})
		MustRegister(Backend{
			Name:          "fake-b",
			Usage:         UsageCLI | UsageDaemon,
			RegisterFlags: func(fs *flag.FlagSet) {},
			Open: func() (Opened, func() error, error) {
				return Opened{CAS: memberB}, nil, nil
			},
		})
	})
	memberA.blobs = map[cid.Cid][]byte{}
	memberB.blobs = map[cid.Cid][]byte{}
}

func TestReplicateBackendWritesAllMembers(t *testing.T) {
	registerMembers(t)
	flagReplicateBackends = "fake-a, fake-b"

	opened, closeFn, err := Open("replicate", UsageCLI)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	id, err := opened.CAS.Put([]byte("everywhere"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !memberA.Has(id) || !memberB.Has(id) {
		t.Fatalf("blob should land in both members")
	}
	if opened.Registry == nil {
		t.Fatalf("registry should come from the first member providing one")
	}
}

func TestMultiBackendWritesFirstReadsAll(t *testing.T) {
	registerMembers(t)
	flagMultiBackends = "fake-a,fake-b"

	opened, closeFn, err := Open("multi", UsageDaemon)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	id, err := opened.CAS.Put([]byte("cache me"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !memberA.Has(id) {
		t.Fatalf("first member should take the write")
	}
	if memberB.Has(id) {
		t.Fatalf("second member should not take the write")
	}

	// Fallback read: a blob only the second member holds.
	deep, err := memberB.Put([]byte("only deep"))
	if err != nil {
		t.Fatalf("member Put: %v", err)
	}
	got, err := opened.CAS.Get(deep)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "only deep" {
		t.Fatalf("payload mismatch")
	}
}

func TestCompositeBackendRejectsBadMembers(t *testing.T) {
	registerMembers(t)

	flagReplicateBackends = ""
	if _, _, err := Open("replicate", UsageCLI); err == nil {
		t.Fatalf("empty member list should fail")
	}

	flagReplicateBackends = "no-such-backend"
	if _, _, err := Open("replicate", UsageCLI); err == nil {
		t.Fatalf("unknown member should fail")
	}

	flagReplicateBackends = "multi"
	if _, _, err := Open("replicate", UsageCLI); err == nil {
		t.Fatalf("nested composite should fail")
	}
}
