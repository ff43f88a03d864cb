package keys

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/SkynetHQ/skynet-go/cryptoutil"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

// Seed files hold the ROOT secret only. Derived seeds and keys are never
// persisted; they are recomputed from the root on every use.

// DefaultSeedPath returns the conventional location of the root seed file.
func DefaultSeedPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".skynet", "seed"), nil
}

// SaveSeedFile writes a hex seed to path with 0600 permissions, creating
// parent directories as needed. It refuses to overwrite unless overwrite
// is set.
func SaveSeedFile(path, seed string, overwrite bool) error {
	if _, err := cryptoutil.FromHex("seed", seed); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strings.ToLower(seed) + "\n"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadSeedFile reads a hex seed written by SaveSeedFile.
func LoadSeedFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	seed := strings.ToLower(strings.TrimSpace(string(b)))
	if seed == "" {
		return "", skyerr.Validation("seed", "seed file %s is empty", path)
	}
	if _, err := cryptoutil.FromHex("seed", seed); err != nil {
		return "", err
	}
	return seed, nil
}
