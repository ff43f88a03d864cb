package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"google.golang.org/grpc"

	"github.com/SkynetHQ/skynet-go/storage/backend"
	"github.com/SkynetHQ/skynet-go/storage/grpcstore"

	_ "github.com/SkynetHQ/skynet-go/storage/localfs"
)

var log = logging.Logger("skynet-storaged")

func main() {
	fs := flag.NewFlagSet("skynet-storaged", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backendName := fs.String("backend", "localfs", "storage backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")

	backend.RegisterFlags(fs, backend.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range backend.List(backend.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	if err := logging.SetLogLevel("*", *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opened, closeFn, err := backend.Open(*backendName, backend.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}
	if opened.Registry == nil {
		fmt.Fprintf(os.Stderr, "backend %q has no registry store\n", *backendName)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterStoreServer(s, &grpcstore.Server{CAS: opened.CAS, Registry: opened.Registry})

	log.Infow("listening", "addr", lis.Addr().String(), "backend", *backendName)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
