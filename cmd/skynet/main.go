package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/SkynetHQ/skynet-go/container"
	"github.com/SkynetHQ/skynet-go/cryptoutil"
	"github.com/SkynetHQ/skynet-go/hiddenfs"
	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/padding"
	"github.com/SkynetHQ/skynet-go/pathseed"
	"github.com/SkynetHQ/skynet-go/storage/backend"

	_ "github.com/SkynetHQ/skynet-go/storage/grpcstore"
	_ "github.com/SkynetHQ/skynet-go/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "seed":
		return cmdSeed(args[1:], out, errOut)
	case "tweak":
		return cmdTweak(args[1:], out, errOut)
	case "pad":
		return cmdPad(args[1:], out, errOut)
	case "file":
		return cmdFile(args[1:], out, errOut)
	case "fs":
		return cmdFS(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "skynet: private filesystem CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  skynet key gen [--seed-len <bytes>] [--save] [--seed-path <path>] [--force]")
	fmt.Fprintln(w, "  skynet key from-seed (--seed <hex> | --seed-path <path>)")
	fmt.Fprintln(w, "  skynet key child --seed <hex> --sub <name>")
	fmt.Fprintln(w, "  skynet seed derive --path-seed <128hex> --sub-path <a/b/c> [--directory]")
	fmt.Fprintln(w, "  skynet tweak --file-seed <64hex> [--entropy]")
	fmt.Fprintln(w, "  skynet pad <size> | skynet pad --check <size>")
	fmt.Fprintln(w, "  skynet file encrypt --key <64hex> --in <json> [--out <file>]")
	fmt.Fprintln(w, "  skynet file decrypt --key <64hex> --in <file> [--out <json>]")
	fmt.Fprintln(w, "  skynet fs set --backend <name> [backend flags] --path <p> --in <json> [--seed <128hex> | --seed-path <path>]")
	fmt.Fprintln(w, "  skynet fs get --backend <name> [backend flags] --path <p> [--out <json>] [--seed <128hex> | --seed-path <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - the root seed is 64 bytes (128 hex chars); the default seed file is ~/.skynet/seed")
	fmt.Fprintln(w, "  - fs set/get derive everything (keys, registry slot, blob key) from the seed and path")
	fmt.Fprintln(w, "  - fs payloads must be valid JSON")
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: skynet key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: gen, from-seed, child")
		return 2
	}
	switch args[0] {
	case "gen":
		return cmdKeyGen(args[1:], out, errOut)
	case "from-seed":
		return cmdKeyFromSeed(args[1:], out, errOut)
	case "child":
		return cmdKeyChild(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKeyGen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seedLen int
	var save bool
	var seedPath string
	var force bool
	fs.IntVar(&seedLen, "seed-len", keys.DefaultSeedLength, "Seed length in bytes")
	fs.BoolVar(&save, "save", false, "Save the seed to the seed file")
	fs.StringVar(&seedPath, "seed-path", "", "Seed file path (default ~/.skynet/seed)")
	fs.BoolVar(&force, "force", false, "Overwrite an existing seed file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	kp, seed, err := keys.GenKeyPairAndSeed(seedLen)
	if err != nil {
		fmt.Fprintf(errOut, "gen: %v\n", err)
		return 1
	}
	if save {
		path := seedPath
		if path == "" {
			path, err = keys.DefaultSeedPath()
			if err != nil {
				fmt.Fprintf(errOut, "seed path: %v\n", err)
				return 1
			}
		}
		if err := keys.SaveSeedFile(path, seed, force); err != nil {
			fmt.Fprintf(errOut, "save seed: %v\n", err)
			return 1
		}
		fmt.Fprintf(errOut, "seed saved to %s\n", path)
	}
	fmt.Fprintf(out, "Seed: %s\n", seed)
	fmt.Fprintf(out, "Public-Key: %s\n", kp.PublicKey)
	return 0
}

func cmdKeyFromSeed(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key from-seed", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seed string
	var seedPath string
	fs.StringVar(&seed, "seed", "", "Seed as hex")
	fs.StringVar(&seedPath, "seed-path", "", "Seed file path (default ~/.skynet/seed)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	seed, code := resolveSeed(seed, seedPath, errOut)
	if code != 0 {
		return code
	}
	kp, err := keys.GenKeyPairFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "invalid seed: %v\n", err)
		return 2
	}
	fmt.Fprintf(out, "Public-Key: %s\n", kp.PublicKey)
	return 0
}

func cmdKeyChild(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key child", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seed string
	var sub string
	fs.StringVar(&seed, "seed", "", "Master seed as hex")
	fs.StringVar(&sub, "sub", "", "Child name")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if seed == "" || sub == "" {
		fmt.Fprintln(errOut, "usage: skynet key child --seed <hex> --sub <name>")
		return 2
	}
	fmt.Fprintln(out, keys.DeriveChildSeed(seed, sub))
	return 0
}

func cmdSeed(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "derive" {
		fmt.Fprintln(errOut, "usage: skynet seed derive --path-seed <128hex> --sub-path <a/b/c> [--directory]")
		return 2
	}
	fs := flag.NewFlagSet("seed derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var pathSeed string
	var subPath string
	var directory bool
	fs.StringVar(&pathSeed, "path-seed", "", "Directory seed as 128 hex chars")
	fs.StringVar(&subPath, "sub-path", "", "Path below the directory")
	fs.BoolVar(&directory, "directory", false, "Derive a directory seed instead of a file seed")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if pathSeed == "" || subPath == "" {
		fmt.Fprintln(errOut, "usage: skynet seed derive --path-seed <128hex> --sub-path <a/b/c> [--directory]")
		return 2
	}
	derived, err := pathseed.DeriveEncryptedPathSeed(pathSeed, subPath, directory)
	if err != nil {
		fmt.Fprintf(errOut, "derive: %v\n", err)
		return 2
	}
	fmt.Fprintln(out, derived)
	return 0
}

func cmdTweak(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("tweak", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var fileSeed string
	var entropy bool
	fs.StringVar(&fileSeed, "file-seed", "", "File seed as 64 hex chars")
	fs.BoolVar(&entropy, "entropy", false, "Also print the file key entropy")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fileSeed == "" {
		fmt.Fprintln(errOut, "usage: skynet tweak --file-seed <64hex> [--entropy]")
		return 2
	}
	tweak, err := pathseed.DeriveEncryptedFileTweak(fileSeed)
	if err != nil {
		fmt.Fprintf(errOut, "tweak: %v\n", err)
		return 2
	}
	fmt.Fprintf(out, "Tweak: %s\n", tweak)
	if entropy {
		ent, err := pathseed.DeriveEncryptedFileKeyEntropy(fileSeed)
		if err != nil {
			fmt.Fprintf(errOut, "entropy: %v\n", err)
			return 2
		}
		fmt.Fprintf(out, "Key-Entropy: %s\n", cryptoutil.ToHex(ent[:]))
	}
	return 0
}

func cmdPad(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("pad", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var check bool
	fs.BoolVar(&check, "check", false, "Report whether the size is a valid padded block size")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: skynet pad [--check] <size>")
		return 2
	}
	size, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(errOut, "invalid size: %v\n", err)
		return 2
	}
	if check {
		ok, err := padding.CheckPaddedBlock(size)
		if err != nil {
			fmt.Fprintf(errOut, "check: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(out, "not padded")
			return 1
		}
		fmt.Fprintln(out, "padded")
		return 0
	}
	padded, err := padding.PadFileSize(size)
	if err != nil {
		fmt.Fprintf(errOut, "pad: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, padded)
	return 0
}

func cmdFile(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: skynet file <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: encrypt, decrypt")
		return 2
	}
	switch args[0] {
	case "encrypt":
		return cmdFileEncrypt(args[1:], out, errOut)
	case "decrypt":
		return cmdFileDecrypt(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown file subcommand: %s\n", args[0])
		return 2
	}
}

func parseContainerKey(keyHex string, errOut io.Writer) (*[container.KeyLength]byte, int) {
	b, err := cryptoutil.FromHexExact("key", keyHex, container.KeyLength)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --key: %v\n", err)
		return nil, 2
	}
	var key [container.KeyLength]byte
	copy(key[:], b)
	return &key, 0
}

func cmdFileEncrypt(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("file encrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var keyHex string
	var inPath string
	var outPath string
	fs.StringVar(&keyHex, "key", "", "Container key as 64 hex chars")
	fs.StringVar(&inPath, "in", "", "JSON payload file")
	fs.StringVar(&outPath, "out", "", "Output container file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if keyHex == "" || inPath == "" {
		fmt.Fprintln(errOut, "usage: skynet file encrypt --key <64hex> --in <json> [--out <file>]")
		return 2
	}
	key, code := parseContainerKey(keyHex, errOut)
	if code != 0 {
		return code
	}
	payload, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	if !json.Valid(payload) {
		fmt.Fprintln(errOut, "payload is not valid JSON")
		return 2
	}
	blob, err := container.EncryptJSON(json.RawMessage(payload), container.Metadata{Version: container.CurrentVersion}, key)
	if err != nil {
		fmt.Fprintf(errOut, "encrypt: %v\n", err)
		return 1
	}
	return writeOutput(outPath, blob, out, errOut)
}

func cmdFileDecrypt(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("file decrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var keyHex string
	var inPath string
	var outPath string
	fs.StringVar(&keyHex, "key", "", "Container key as 64 hex chars")
	fs.StringVar(&inPath, "in", "", "Container file")
	fs.StringVar(&outPath, "out", "", "Output JSON file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if keyHex == "" || inPath == "" {
		fmt.Fprintln(errOut, "usage: skynet file decrypt --key <64hex> --in <file> [--out <json>]")
		return 2
	}
	key, code := parseContainerKey(keyHex, errOut)
	if code != 0 {
		return code
	}
	blob, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	var payload json.RawMessage
	if err := container.DecryptJSON(blob, key, &payload); err != nil {
		fmt.Fprintf(errOut, "decrypt: %v\n", err)
		return 1
	}
	return writeOutput(outPath, append(payload, '\n'), out, errOut)
}

func writeOutput(path string, b []byte, out io.Writer, errOut io.Writer) int {
	if path == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write --out: %v\n", err)
		return 1
	}
	return 0
}

func cmdFS(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: skynet fs <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: set, get")
		return 2
	}
	switch args[0] {
	case "set":
		return cmdFSSet(args[1:], out, errOut)
	case "get":
		return cmdFSGet(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown fs subcommand: %s\n", args[0])
		return 2
	}
}

// fsFlags are the flags shared by fs set and fs get.
type fsFlags struct {
	backendName string
	seed        string
	seedPath    string
	path        string
}

func (f *fsFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.backendName, "backend", "localfs", "Storage backend name")
	fs.StringVar(&f.seed, "seed", "", "Root seed as 128 hex chars")
	fs.StringVar(&f.seedPath, "seed-path", "", "Seed file path (default ~/.skynet/seed)")
	fs.StringVar(&f.path, "path", "", "File path inside the private filesystem")
	backend.RegisterFlags(fs, backend.UsageCLI)
}

// open resolves the seed, derives the owner key pair and the root
// directory seed, and opens the selected backend.
func (f *fsFlags) open(errOut io.Writer) (*hiddenfs.FS, pathseed.DirectorySeed, func() error, int) {
	var zero pathseed.DirectorySeed
	if f.path == "" {
		fmt.Fprintln(errOut, "missing --path")
		return nil, zero, nil, 2
	}
	seed, code := resolveSeed(f.seed, f.seedPath, errOut)
	if code != 0 {
		return nil, zero, nil, code
	}
	root, err := pathseed.ParseDirectorySeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "invalid seed: %v\n", err)
		return nil, zero, nil, 2
	}
	kp, err := keys.GenKeyPairFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "invalid seed: %v\n", err)
		return nil, zero, nil, 2
	}
	opened, closeFn, err := backend.Open(f.backendName, backend.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, zero, nil, 2
	}
	if opened.Registry == nil {
		if closeFn != nil {
			_ = closeFn()
		}
		fmt.Fprintf(errOut, "backend %q has no registry store\n", f.backendName)
		return nil, zero, nil, 2
	}
	return hiddenfs.New(opened.CAS, opened.Registry, kp), root, closeFn, 0
}

func resolveSeed(seed, seedPath string, errOut io.Writer) (string, int) {
	if seed != "" {
		if seedPath != "" {
			fmt.Fprintln(errOut, "conflicting flags: --seed and --seed-path")
			return "", 2
		}
		return strings.ToLower(strings.TrimSpace(seed)), 0
	}
	path := seedPath
	if path == "" {
		var err error
		path, err = keys.DefaultSeedPath()
		if err != nil {
			fmt.Fprintf(errOut, "seed path: %v\n", err)
			return "", 1
		}
	}
	loaded, err := keys.LoadSeedFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "load seed: %v\n", err)
		return "", 1
	}
	return loaded, 0
}

func cmdFSSet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("fs set", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var ff fsFlags
	var inPath string
	ff.register(fs)
	fs.StringVar(&inPath, "in", "", "JSON payload file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "usage: skynet fs set --path <p> --in <json> [--seed ... | --seed-path ...]")
		return 2
	}

	payload, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --in: %v\n", err)
		return 1
	}
	if !json.Valid(payload) {
		fmt.Fprintln(errOut, "payload is not valid JSON")
		return 2
	}

	hfs, root, closeFn, code := ff.open(errOut)
	if code != 0 {
		return code
	}
	if closeFn != nil {
		defer closeFn()
	}

	if err := hfs.SetJSON(context.Background(), root, ff.path, json.RawMessage(payload)); err != nil {
		fmt.Fprintf(errOut, "set: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}

func cmdFSGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("fs get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var ff fsFlags
	var outPath string
	ff.register(fs)
	fs.StringVar(&outPath, "out", "", "Output JSON file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	hfs, root, closeFn, code := ff.open(errOut)
	if code != 0 {
		return code
	}
	if closeFn != nil {
		defer closeFn()
	}

	var payload json.RawMessage
	if err := hfs.GetJSON(context.Background(), root, ff.path, &payload); err != nil {
		if hiddenfs.IsNotFound(err) {
			fmt.Fprintf(errOut, "not found: %s\n", ff.path)
			return 1
		}
		fmt.Fprintf(errOut, "get: %v\n", err)
		return 1
	}
	return writeOutput(outPath, append(payload, '\n'), out, errOut)
}
