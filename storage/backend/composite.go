package backend

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/storage"
)

// Composite backends combine other registered backends. "multi" reads
// across its members in order and writes to the first (a local cache in
// front of a remote store); "replicate" writes every blob to all members
// so one CID stays fetchable from every portal.
//
// The registry store comes from the first member that provides one;
// registry entries are already replay-protected by revision, so they are
// not fanned out.

var (
	flagMultiBackends     string
	flagReplicateBackends string
)

func init() {
	MustRegister(Backend{
		Name:        "multi",
		Description: "Ordered read fallback across other backends; writes go to the first",
		Usage:       UsageCLI | UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagMultiBackends, "multi-backends", "", "Comma-separated member backends, read in order (for --backend=multi)")
		},
		Open: func() (Opened, func() error, error) {
			return openComposite("multi", flagMultiBackends, false)
		},
	})
	MustRegister(Backend{
		Name:        "replicate",
		Description: "Replicate every blob to all member backends",
		Usage:       UsageCLI | UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagReplicateBackends, "replicate-backends", "", "Comma-separated member backends, all written (for --backend=replicate)")
		},
		Open: func() (Opened, func() error, error) {
			return openComposite("replicate", flagReplicateBackends, true)
		},
	})
}

func openComposite(name, members string, replicate bool) (Opened, func() error, error) {
	var memberNames []string
	for _, m := range strings.Split(members, ",") {
		if m = strings.TrimSpace(m); m != "" {
			memberNames = append(memberNames, m)
		}
	}
	if len(memberNames) == 0 {
		return Opened{}, nil, fmt.Errorf("missing --%s-backends", name)
	}

	var (
		closers       []func() error
		named         []storage.NamedCAS
		firstRegistry registry.Store
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, member := range memberNames {
		if member == "multi" || member == "replicate" {
			_ = closeAll()
			return Opened{}, nil, fmt.Errorf("backend %q cannot nest composite backend %q", name, member)
		}
		mu.RLock()
		b, ok := backends[member]
		mu.RUnlock()
		if !ok {
			_ = closeAll()
			return Opened{}, nil, fmt.Errorf("unknown member backend %q", member)
		}
		opened, closeFn, err := b.Open()
		if err != nil {
			_ = closeAll()
			return Opened{}, nil, fmt.Errorf("open member backend %q: %w", member, err)
		}
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
		named = append(named, storage.NamedCAS{Name: member, CAS: opened.CAS})
		if firstRegistry == nil {
			firstRegistry = opened.Registry
		}
	}

	out := Opened{Registry: firstRegistry}
	if replicate {
		out.CAS = storage.ReplicatingCAS{Backends: named}
	} else {
		adapters := make([]storage.CAS, len(named))
		for i, n := range named {
			adapters[i] = n.CAS
		}
		out.CAS = storage.MultiCAS{Adapters: adapters}
	}
	return out, closeAll, nil
}
