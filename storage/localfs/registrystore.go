package localfs

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

// RegistryStore is a filesystem-backed registry.Store.
//
// Each (publicKey, dataKey) slot is one JSON file, replaced atomically on
// update. SetEntry enforces that revisions strictly increase, the same rejection
// a remote registry applies to a racing writer. Signatures are stored but
// not verified here; verification belongs to the registry protocol layer.
type RegistryStore struct {
	root string

	mu sync.Mutex
}

// NewRegistryStore constructs a registry store rooted at root.
func NewRegistryStore(root string) (*RegistryStore, error) {
	if root == "" {
		return nil, errors.New("localfs: registry root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &RegistryStore{root: root}, nil
}

// entryFile is the on-disk JSON form of a signed entry.
type entryFile struct {
	DataKey   string `json:"dataKey"`
	Data      []byte `json:"data"`
	Revision  uint64 `json:"revision"`
	Signature string `json:"signature"`
}

func (s *RegistryStore) pathFor(publicKey, dataKey string) string {
	// dataKey is an arbitrary string (often a 64-hex tweak); hex-encode it
	// so every value is a safe file name.
	return filepath.Join(s.root, publicKey, hex.EncodeToString([]byte(dataKey))+".json")
}

func (s *RegistryStore) GetEntry(_ context.Context, publicKey, dataKey string) (*registry.SignedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(publicKey, dataKey)
}

func (s *RegistryStore) load(publicKey, dataKey string) (*registry.SignedEntry, error) {
	b, err := os.ReadFile(s.pathFor(publicKey, dataKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, registry.ErrEntryNotFound
		}
		return nil, err
	}
	var ef entryFile
	if err := json.Unmarshal(b, &ef); err != nil {
		return nil, err
	}
	return &registry.SignedEntry{
		Entry: registry.Entry{
			DataKey:  ef.DataKey,
			Data:     ef.Data,
			Revision: ef.Revision,
		},
		Signature: ef.Signature,
	}, nil
}

func (s *RegistryStore) SetEntry(_ context.Context, publicKey string, se registry.SignedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.load(publicKey, se.DataKey)
	if err != nil && !registry.IsNotFound(err) {
		return err
	}
	if prev != nil && se.Revision <= prev.Revision {
		return storage.ErrStaleRevision
	}

	path := s.pathFor(publicKey, se.DataKey)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(entryFile{
		DataKey:   se.DataKey,
		Data:      se.Data,
		Revision:  se.Revision,
		Signature: se.Signature,
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
