package localfs

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/SkynetHQ/skynet-go/storage/backend"
)

var (
	flagDir string
)

func init() {
	backend.MustRegister(backend.Backend{
		Name:        "localfs",
		Description: "Local filesystem blob + registry store (directory)",
		Usage:       backend.UsageCLI | backend.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagDir, "localfs-dir", "", "LocalFS store directory (for --backend=localfs)")
		},
		Open: func() (backend.Opened, func() error, error) {
			if flagDir == "" {
				return backend.Opened{}, nil, fmt.Errorf("missing --localfs-dir")
			}
			cas, err := New(filepath.Join(flagDir, "blobs"))
			if err != nil {
				return backend.Opened{}, nil, err
			}
			reg, err := NewRegistryStore(filepath.Join(flagDir, "registry"))
			if err != nil {
				return backend.Opened{}, nil, err
			}
			return backend.Opened{CAS: cas, Registry: reg}, nil, nil
		},
	})
}
