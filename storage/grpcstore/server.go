package grpcstore

import (
	"context"
	"encoding/json"

	logging "github.com/ipfs/go-log/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/SkynetHQ/skynet-go/cidutil"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

var log = logging.Logger("storage/grpcstore")

// Server exposes a blob store and a registry store over the Store gRPC
// service.
//
// The server is the trust boundary of the publication collaborator: it
// verifies entry signatures and rejects non-increasing revisions before
// touching the backing store, so a malicious or racing client cannot
// regress a slot.
type Server struct {
	UnimplementedStoreServer
	CAS      storage.CAS
	Registry registry.Store
}

func (s *Server) PutBlob(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing blob store")
	}
	b := in.GetValue()
	// Enforce the CID contract on the server side too.
	expected, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return nil, status.Error(codes.Internal, "cid computation failed")
	}
	id, err := s.CAS.Put(b)
	if err != nil {
		return nil, mapErr(err)
	}
	if id != expected {
		return nil, status.Error(codes.DataLoss, storage.ErrCIDMismatch.Error())
	}
	log.Debugw("stored blob", "cid", id.String(), "size", len(b))
	return wrapperspb.String(id.String()), nil
}

func (s *Server) GetBlob(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing blob store")
	}
	id, err := cidutil.Decode(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	}
	b, err := s.CAS.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	got, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return nil, status.Error(codes.Internal, "cid computation failed")
	}
	if got != id {
		return nil, status.Error(codes.DataLoss, storage.ErrCIDMismatch.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) HasBlob(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing blob store")
	}
	id, err := cidutil.Decode(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	}
	return wrapperspb.Bool(s.CAS.Has(id)), nil
}

func (s *Server) GetEntry(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Registry == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing registry store")
	}
	var req entryRequest
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed entry request")
	}
	if req.PublicKey == "" || req.DataKey == "" {
		return nil, status.Error(codes.InvalidArgument, "publicKey and dataKey are required")
	}
	se, err := s.Registry.GetEntry(ctx, req.PublicKey, req.DataKey)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := json.Marshal(toWire(req.PublicKey, *se))
	if err != nil {
		return nil, status.Error(codes.Internal, "entry encoding failed")
	}
	return wrapperspb.Bytes(out), nil
}

func (s *Server) SetEntry(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Registry == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing registry store")
	}
	var w wireEntry
	if err := json.Unmarshal(in.GetValue(), &w); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed entry")
	}
	if w.PublicKey == "" || w.DataKey == "" {
		return nil, status.Error(codes.InvalidArgument, "publicKey and dataKey are required")
	}
	se := w.signedEntry()

	// The dataKey representation is not self-describing; accept either but
	// require that at least one verifies.
	if err := registry.VerifyEntry(se, true, w.PublicKey); err != nil {
		if err2 := registry.VerifyEntry(se, false, w.PublicKey); err2 != nil {
			log.Debugw("rejected unverifiable entry", "publicKey", w.PublicKey, "dataKey", w.DataKey)
			return nil, status.Error(codes.Unauthenticated, "could not verify signature")
		}
	}

	prev, err := s.Registry.GetEntry(ctx, w.PublicKey, w.DataKey)
	if err != nil && !registry.IsNotFound(err) {
		return nil, mapErr(err)
	}
	if prev != nil && se.Revision <= prev.Revision {
		return nil, status.Error(codes.Aborted, storage.ErrStaleRevision.Error())
	}

	if err := s.Registry.SetEntry(ctx, w.PublicKey, se); err != nil {
		return nil, mapErr(err)
	}
	log.Debugw("published entry", "publicKey", w.PublicKey, "revision", se.Revision)
	return wrapperspb.Bool(true), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case storage.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case registry.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case err == storage.ErrInvalidCID:
		return status.Error(codes.InvalidArgument, err.Error())
	case err == storage.ErrCIDMismatch:
		return status.Error(codes.DataLoss, err.Error())
	case storage.IsStaleRevision(err):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
