// Package hiddenfs is the end-to-end private-file API: a hierarchical
// namespace of encrypted JSON files layered over a content-addressed blob
// store and a signed registry.
//
// File locations and keys are derived from a directory seed and a path, so
// two holders of the same seed resolve the same file without any shared
// index. The registry entry for a file stores only the blob CID; the file
// name, content and size tier stay hidden from the stores.
package hiddenfs

import (
	"context"
	"errors"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/SkynetHQ/skynet-go/cidutil"
	"github.com/SkynetHQ/skynet-go/container"
	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/pathseed"
	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/skyerr"
	"github.com/SkynetHQ/skynet-go/storage"
)

var log = logging.Logger("hiddenfs")

// ErrFileNotFound is returned by GetJSON when no file exists at the path.
var ErrFileNotFound = errors.New("hiddenfs: file not found")

// IsNotFound reports whether err is (or wraps) ErrFileNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrFileNotFound) }

// FS reads and writes private files for one owner key pair.
type FS struct {
	CAS      storage.CAS
	Registry registry.Store
	Owner    keys.KeyPair
}

// New returns an FS over the given stores and owner key pair.
func New(cas storage.CAS, reg registry.Store, owner keys.KeyPair) *FS {
	return &FS{CAS: cas, Registry: reg, Owner: owner}
}

// fileSlot is everything derived from (root, path): the registry dataKey
// (tweak) and the container key.
type fileSlot struct {
	tweak string
	key   [container.KeyLength]byte
}

func slotFor(root pathseed.DirectorySeed, path string) (fileSlot, error) {
	fileSeed, err := root.DeriveFile(path)
	if err != nil {
		return fileSlot{}, err
	}
	return fileSlot{
		tweak: fileSeed.Tweak(),
		key:   fileSeed.KeyEntropy(),
	}, nil
}

// SetJSON encrypts payload into a padded container, stores the blob, and
// publishes the blob's CID under the file's derived registry slot. The
// registry revision strictly increases on every overwrite of the same
// path.
func (fs *FS) SetJSON(ctx context.Context, root pathseed.DirectorySeed, path string, payload any) error {
	slot, err := slotFor(root, path)
	if err != nil {
		return err
	}

	blob, err := container.EncryptJSON(payload, container.Metadata{Version: container.CurrentVersion}, &slot.key)
	if err != nil {
		return err
	}
	id, err := fs.CAS.Put(blob)
	if err != nil {
		return err
	}

	data := id.Bytes()
	if len(data) > registry.MaxDataSize {
		return skyerr.Validation("data", "cid is %d bytes, exceeds the %d-byte registry data limit", len(data), registry.MaxDataSize)
	}
	se, err := registry.Publish(ctx, fs.Registry, fs.Owner, slot.tweak, true, data)
	if err != nil {
		return err
	}
	log.Debugw("wrote file", "path", path, "cid", id.String(), "revision", se.Revision, "size", len(blob))
	return nil
}

// GetJSON resolves path under root, fetches and authenticates the current
// version of the file, and decrypts its JSON payload into out.
//
// Returns ErrFileNotFound when no registry entry or blob exists for the
// path. Any tampering with the fetched blob surfaces as an authentication
// or CID-mismatch error, never as silently wrong data.
func (fs *FS) GetJSON(ctx context.Context, root pathseed.DirectorySeed, path string, out any) error {
	slot, err := slotFor(root, path)
	if err != nil {
		return err
	}

	se, err := fs.Registry.GetEntry(ctx, fs.Owner.PublicKey, slot.tweak)
	if err != nil {
		if registry.IsNotFound(err) {
			return ErrFileNotFound
		}
		return err
	}
	if err := registry.VerifyEntry(*se, true, fs.Owner.PublicKey); err != nil {
		return err
	}

	id, err := cid.Cast(se.Data)
	if err != nil {
		return skyerr.Wrap(skyerr.KindFormat, "registry entry does not hold a cid", err)
	}
	blob, err := fs.CAS.Get(id)
	if err != nil {
		if storage.IsNotFound(err) {
			return ErrFileNotFound
		}
		return err
	}
	got, err := cidutil.CIDv1RawSHA256CID(blob)
	if err != nil {
		return err
	}
	if got != id {
		return storage.ErrCIDMismatch
	}
	return container.DecryptJSON(blob, &slot.key, out)
}
