package grpcstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/SkynetHQ/skynet-go/cidutil"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

// Client implements storage.CAS and registry.Store over the Store gRPC
// service.
type Client struct {
	cc     *grpc.ClientConn
	client StoreClient

	// Timeout applies per blob RPC when non-zero. Registry RPCs take a
	// caller context instead.
	Timeout time.Duration
}

var (
	_ storage.CAS    = (*Client)(nil)
	_ registry.Store = (*Client)(nil)
)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewStoreClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Put(data []byte) (cid.Cid, error) {
	if c == nil || c.client == nil {
		return cid.Undef, storage.ErrNotFound
	}
	expected, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}

	ctx, cancel := c.blobCtx()
	defer cancel()

	reply, err := c.client.PutBlob(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return cid.Undef, mapRPC(err)
	}
	id, err := cidutil.Decode(reply.GetValue())
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	if id != expected {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return id, nil
}

func (c *Client) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	ctx, cancel := c.blobCtx()
	defer cancel()

	reply, err := c.client.GetBlob(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return nil, mapRPC(err)
	}
	b := reply.GetValue()
	got, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *Client) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	ctx, cancel := c.blobCtx()
	defer cancel()

	reply, err := c.client.HasBlob(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return false
	}
	return reply.GetValue()
}

// GetEntry implements registry.Store.
func (c *Client) GetEntry(ctx context.Context, publicKey, dataKey string) (*registry.SignedEntry, error) {
	req, err := json.Marshal(entryRequest{PublicKey: publicKey, DataKey: dataKey})
	if err != nil {
		return nil, err
	}
	reply, err := c.client.GetEntry(ctx, wrapperspb.Bytes(req))
	if err != nil {
		return nil, mapRPC(err)
	}
	var w wireEntry
	if err := json.Unmarshal(reply.GetValue(), &w); err != nil {
		return nil, err
	}
	se := w.signedEntry()
	return &se, nil
}

// SetEntry implements registry.Store.
func (c *Client) SetEntry(ctx context.Context, publicKey string, se registry.SignedEntry) error {
	b, err := json.Marshal(toWire(publicKey, se))
	if err != nil {
		return err
	}
	if _, err := c.client.SetEntry(ctx, wrapperspb.Bytes(b)); err != nil {
		return mapRPC(err)
	}
	return nil
}

func (c *Client) blobCtx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
