package hiddenfs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/pathseed"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage/localfs"
)

type note struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func newTestFS(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	cas, err := localfs.New(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	reg, err := localfs.NewRegistryStore(filepath.Join(dir, "registry"))
	if err != nil {
		t.Fatalf("NewRegistryStore: %v", err)
	}
	kp, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	if err != nil {
		t.Fatalf("GenKeyPairAndSeed: %v", err)
	}
	return New(cas, reg, kp)
}

func testRoot(b byte) pathseed.DirectorySeed {
	var root pathseed.DirectorySeed
	for i := range root {
		root[i] = b
	}
	return root
}

func TestSetGetRoundTrip(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	root := testRoot(1)

	want := note{Title: "groceries", Body: "eggs, flour"}
	if err := fs.SetJSON(ctx, root, "lists/shopping.json", want); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var got note
	if err := fs.GetJSON(ctx, root, "lists/shopping.json", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestGetMissingFile(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	root := testRoot(1)

	var got note
	err := fs.GetJSON(ctx, root, "nope.json", &got)
	if !IsNotFound(err) {
		t.Fatalf("got err=%v want ErrFileNotFound", err)
	}
}

func TestOverwriteAdvancesRevision(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	root := testRoot(1)

	for i, body := range []string{"v0", "v1", "v2"} {
		if err := fs.SetJSON(ctx, root, "doc.json", note{Body: body}); err != nil {
			t.Fatalf("SetJSON %d: %v", i, err)
		}
	}

	var got note
	if err := fs.GetJSON(ctx, root, "doc.json", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.Body != "v2" {
		t.Fatalf("got body %q want v2", got.Body)
	}

	fileSeed, err := root.DeriveFile("doc.json")
	if err != nil {
		t.Fatalf("DeriveFile: %v", err)
	}
	se, err := fs.Registry.GetEntry(ctx, fs.Owner.PublicKey, fileSeed.Tweak())
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if se.Revision != 2 {
		t.Fatalf("revision = %d, want 2", se.Revision)
	}
}

// Two FS values sharing stores and owner resolve the same files from the
// seed alone.
func TestDeterministicResolution(t *testing.T) {
	writer := newTestFS(t)
	reader := New(writer.CAS, writer.Registry, writer.Owner)
	ctx := context.Background()
	root := testRoot(7)

	if err := writer.SetJSON(ctx, root, "a/b/c.json", note{Body: "shared"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var got note
	if err := reader.GetJSON(ctx, root, "a/b/c.json", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.Body != "shared" {
		t.Fatalf("got body %q want shared", got.Body)
	}

	// Path normalization: redundant slashes resolve to the same file.
	if err := reader.GetJSON(ctx, root, "a//b/c.json", &got); err != nil {
		t.Fatalf("GetJSON normalized: %v", err)
	}
}

func TestPathsAreIndependent(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	root := testRoot(1)

	if err := fs.SetJSON(ctx, root, "one.json", note{Body: "one"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var got note
	if err := fs.GetJSON(ctx, root, "two.json", &got); !IsNotFound(err) {
		t.Fatalf("got err=%v want ErrFileNotFound", err)
	}
	if err := fs.GetJSON(ctx, testRoot(2), "one.json", &got); !IsNotFound(err) {
		t.Fatalf("different root: got err=%v want ErrFileNotFound", err)
	}
}

func TestWrongOwnerCannotResolve(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	root := testRoot(1)

	if err := fs.SetJSON(ctx, root, "doc.json", note{Body: "mine"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	other, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	if err != nil {
		t.Fatalf("GenKeyPairAndSeed: %v", err)
	}
	stranger := New(fs.CAS, fs.Registry, other)
	var got note
	if err := stranger.GetJSON(ctx, root, "doc.json", &got); !IsNotFound(err) {
		t.Fatalf("got err=%v want ErrFileNotFound", err)
	}
}

// The registry slot carries only a CID; the path never appears in the
// stored dataKey.
func TestRegistrySlotHidesPath(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()
	root := testRoot(1)
	const path = "secret/location.json"

	if err := fs.SetJSON(ctx, root, path, note{Body: "x"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	fileSeed, err := root.DeriveFile(path)
	if err != nil {
		t.Fatalf("DeriveFile: %v", err)
	}
	tweak := fileSeed.Tweak()
	if len(tweak) != 64 {
		t.Fatalf("tweak length = %d, want 64 hex chars", len(tweak))
	}
	se, err := fs.Registry.GetEntry(ctx, fs.Owner.PublicKey, tweak)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if err := registry.VerifyEntry(*se, true, fs.Owner.PublicKey); err != nil {
		t.Fatalf("VerifyEntry: %v", err)
	}
	if len(se.Data) > registry.MaxDataSize {
		t.Fatalf("entry data %d bytes exceeds limit", len(se.Data))
	}
}
