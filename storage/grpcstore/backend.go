package grpcstore

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/SkynetHQ/skynet-go/storage/backend"
)

var (
	flagTarget      string
	flagDialTimeout time.Duration
	flagTimeout     time.Duration
	flagMaxMsgBytes int
)

func init() {
	backend.MustRegister(backend.Backend{
		Name:        "grpc",
		Description: "gRPC store client (talks to a skynet-storaged daemon)",
		Usage:       backend.UsageCLI,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagTarget, "grpc-target", "", "gRPC target host:port (for --backend=grpc)")
			fs.DurationVar(&flagDialTimeout, "grpc-dial-timeout", 5*time.Second, "Dial timeout (for --backend=grpc)")
			fs.DurationVar(&flagTimeout, "grpc-timeout", 0, "Per-RPC timeout for blob calls (for --backend=grpc)")
			fs.IntVar(&flagMaxMsgBytes, "grpc-max-msg-bytes", 0, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
		},
		Open: func() (backend.Opened, func() error, error) {
			target := strings.TrimSpace(flagTarget)
			if target == "" {
				return backend.Opened{}, nil, fmt.Errorf("missing --grpc-target")
			}
			client, err := Dial(target, DialOptions{Timeout: flagDialTimeout, MaxMsgBytes: flagMaxMsgBytes})
			if err != nil {
				return backend.Opened{}, nil, err
			}
			client.Timeout = flagTimeout
			return backend.Opened{CAS: client, Registry: client}, client.Close, nil
		},
	})
}
