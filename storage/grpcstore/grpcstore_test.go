package grpcstore

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
	"github.com/SkynetHQ/skynet-go/storage/localfs"
)

func newLoopbackClient(t *testing.T) *Client {
	t.Helper()

	dir := t.TempDir()
	cas, err := localfs.New(dir + "/blobs")
	require.NoError(t, err)
	reg, err := localfs.NewRegistryStore(dir + "/registry")
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterStoreServer(srv, &Server{CAS: cas, Registry: reg})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewStoreClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCStore_BlobRoundTrip(t *testing.T) {
	client := newLoopbackClient(t)

	payload := []byte("hello grpcstore")
	id, err := client.Put(payload)
	require.NoError(t, err)
	require.True(t, id.Defined())
	require.True(t, client.Has(id))

	got, err := client.Get(id)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestGRPCStore_GetMissingBlob(t *testing.T) {
	// Compute a valid CID in one store, look it up in an empty one.
	seed := newLoopbackClient(t)
	id, err := seed.Put([]byte("absent elsewhere"))
	require.NoError(t, err)

	client := newLoopbackClient(t)
	_, err = client.Get(id)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.False(t, client.Has(id))
}

func TestGRPCStore_RegistryPublish(t *testing.T) {
	client := newLoopbackClient(t)
	ctx := context.Background()

	kp, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	require.NoError(t, err)

	_, err = client.GetEntry(ctx, kp.PublicKey, "doc")
	require.ErrorIs(t, err, registry.ErrEntryNotFound)

	se, err := registry.Publish(ctx, client, kp, "doc", false, []byte("v0"))
	require.NoError(t, err)
	require.Equal(t, uint64(0), se.Revision)

	got, err := client.GetEntry(ctx, kp.PublicKey, "doc")
	require.NoError(t, err)
	require.Equal(t, se.Revision, got.Revision)
	require.Equal(t, se.Data, got.Data)
	require.Equal(t, se.Signature, got.Signature)

	se2, err := registry.Publish(ctx, client, kp, "doc", false, []byte("v1"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), se2.Revision)
}

func TestGRPCStore_RejectsStaleRevision(t *testing.T) {
	client := newLoopbackClient(t)
	ctx := context.Background()

	kp, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	require.NoError(t, err)

	_, err = registry.Publish(ctx, client, kp, "doc", false, []byte("v0"))
	require.NoError(t, err)
	_, err = registry.Publish(ctx, client, kp, "doc", false, []byte("v1"))
	require.NoError(t, err)

	// Replay of revision 0.
	stale, err := registry.SignEntry(registry.Entry{DataKey: "doc", Data: []byte("old"), Revision: 0}, false, kp)
	require.NoError(t, err)
	err = client.SetEntry(ctx, kp.PublicKey, stale)
	require.ErrorIs(t, err, storage.ErrStaleRevision)
}

func TestGRPCStore_RejectsBadSignature(t *testing.T) {
	client := newLoopbackClient(t)
	ctx := context.Background()

	kp, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	require.NoError(t, err)
	other, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	require.NoError(t, err)

	// Signed by the wrong key for the claimed slot.
	se, err := registry.SignEntry(registry.Entry{DataKey: "doc", Data: []byte("v0"), Revision: 0}, false, other)
	require.NoError(t, err)
	err = client.SetEntry(ctx, kp.PublicKey, se)
	require.Error(t, err)

	_, err = client.GetEntry(ctx, kp.PublicKey, "doc")
	require.ErrorIs(t, err, registry.ErrEntryNotFound)
}

func TestGRPCStore_AcceptsHashedDataKeyEntries(t *testing.T) {
	client := newLoopbackClient(t)
	ctx := context.Background()

	kp, _, err := keys.GenKeyPairAndSeed(keys.DefaultSeedLength)
	require.NoError(t, err)

	// 32-byte hex dataKey as produced by tweak derivation.
	tweak := "4a5d9d1f0e2b7c8d4a5d9d1f0e2b7c8d4a5d9d1f0e2b7c8d4a5d9d1f0e2b7c8d"
	se, err := registry.SignEntry(registry.Entry{DataKey: tweak, Data: []byte("cid-bytes"), Revision: 0}, true, kp)
	require.NoError(t, err)
	require.NoError(t, client.SetEntry(ctx, kp.PublicKey, se))

	got, err := client.GetEntry(ctx, kp.PublicKey, tweak)
	require.NoError(t, err)
	require.Equal(t, se.Signature, got.Signature)
}
