// Package backend is the build-time plugin registry for storage backends.
//
// In Go, "plugins" are linked at build time: a backend registers itself via
// init(), and is enabled in a binary by importing the backend package
// (often as a blank import).
package backend

import (
	"flag"
	"fmt"
	"sort"
	"sync"

	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

// Usage restricts which programs should accept a given backend.
type Usage uint8

const (
	// UsageCLI marks backends available in CLI programs (e.g. skynet).
	UsageCLI Usage = 1 << iota
	// UsageDaemon marks backends available in long-running daemons
	// (e.g. skynet-storaged).
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }

// Opened bundles the two collaborator stores a backend provides. Registry
// may be nil for blob-only backends.
type Opened struct {
	CAS      storage.CAS
	Registry registry.Store
}

// Backend is a build-time plugin that can open a blob store and,
// optionally, a registry store.
//
// Backends typically register themselves in init():
//
//	backend.MustRegister(backend.Backend{ ... })
type Backend struct {
	Name        string
	Description string
	Usage       Usage

	// RegisterFlags adds backend-specific flags to fs.
	// It must be safe to call exactly once per process.
	RegisterFlags func(fs *flag.FlagSet)

	// Open constructs the stores using values parsed into flags registered
	// by RegisterFlags. It returns an optional close function.
	Open func() (Opened, func() error, error)
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

// Register registers a backend.
func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("backend: name is required")
	}
	if b.RegisterFlags == nil {
		return fmt.Errorf("backend: %q missing RegisterFlags", b.Name)
	}
	if b.Open == nil {
		return fmt.Errorf("backend: %q missing Open", b.Name)
	}
	if b.Usage == 0 {
		return fmt.Errorf("backend: %q missing Usage", b.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("backend: %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns backends matching usage, sorted by name.
func List(usage Usage) []Backend {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterFlags registers flags for all backends matching usage.
//
// This enables single-pass flag parsing (Go's flag package rejects unknown
// flags).
func RegisterFlags(fs *flag.FlagSet, usage Usage) {
	for _, b := range List(usage) {
		b.RegisterFlags(fs)
	}
}

// Open opens the named backend if it exists and matches usage.
func Open(name string, usage Usage) (Opened, func() error, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return Opened{}, nil, fmt.Errorf("unknown backend %q", name)
	}
	if !b.Usage.allows(usage) {
		return Opened{}, nil, fmt.Errorf("backend %q not supported in this binary", name)
	}
	return b.Open()
}
