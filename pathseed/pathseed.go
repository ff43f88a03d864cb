// Package pathseed derives directory and file seeds from a root seed and a
// slash-delimited logical path.
//
// The hierarchy is compositional: the seed for a path depends only on the
// root seed and the path string, never on how the path was decomposed into
// derivation steps. A party holding only a subtree's directory seed derives
// every descendant identically to a party holding the root. Directory-level
// derivations keep the full 64-byte wide-hash output; only the file leaf is
// truncated to 32 bytes, which is exactly what preserves compositionality.
package pathseed

import (
	"strings"

	"github.com/SkynetHQ/skynet-go/cryptoutil"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

// Seed lengths in raw bytes. The hex forms are twice these.
const (
	DirectorySeedSize = 64
	FileSeedSize      = 32
)

// keyEntropyLabel domain-separates file-key entropy from the file tweak so
// knowledge of one does not yield the other.
const keyEntropyLabel = "encrypted file key entropy"

// DirectorySeed is a full-width seed scoped to a logical directory.
type DirectorySeed [DirectorySeedSize]byte

// FileSeed is a truncated seed scoped to a logical file.
type FileSeed [FileSeedSize]byte

// ParseDirectorySeed parses a 128-hex-character directory seed.
func ParseDirectorySeed(pathSeed string) (DirectorySeed, error) {
	var out DirectorySeed
	b, err := cryptoutil.FromHexExact("pathSeed", pathSeed, DirectorySeedSize)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ParseFileSeed parses a 64-hex-character file seed.
func ParseFileSeed(fileSeed string) (FileSeed, error) {
	var out FileSeed
	b, err := cryptoutil.FromHexExact("fileSeed", fileSeed, FileSeedSize)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Hex returns the seed as 128 lowercase hex characters.
func (d DirectorySeed) Hex() string { return cryptoutil.ToHex(d[:]) }

// Hex returns the seed as 64 lowercase hex characters.
func (f FileSeed) Hex() string { return cryptoutil.ToHex(f[:]) }

// splitPath splits subPath on "/" and drops empty segments, so repeated or
// trailing slashes do not change the derivation.
func splitPath(subPath string) ([]string, error) {
	var segments []string
	for _, seg := range strings.Split(subPath, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil, skyerr.Validation("subPath", "subPath must contain at least one non-empty segment, got %q", subPath)
	}
	return segments, nil
}

// deriveStep derives the next full-width directory-level seed for one path
// segment.
func deriveStep(current DirectorySeed, segment string) DirectorySeed {
	return DirectorySeed(cryptoutil.HashWide(current[:], []byte(segment)))
}

// DeriveDirectory derives the directory seed for subPath below d.
func (d DirectorySeed) DeriveDirectory(subPath string) (DirectorySeed, error) {
	segments, err := splitPath(subPath)
	if err != nil {
		return DirectorySeed{}, err
	}
	current := d
	for _, seg := range segments {
		current = deriveStep(current, seg)
	}
	return current, nil
}

// DeriveFile derives the file seed for subPath below d. The final segment
// uses the same wide derivation as directories but keeps only the first 32
// bytes.
func (d DirectorySeed) DeriveFile(subPath string) (FileSeed, error) {
	segments, err := splitPath(subPath)
	if err != nil {
		return FileSeed{}, err
	}
	current := d
	for _, seg := range segments[:len(segments)-1] {
		current = deriveStep(current, seg)
	}
	leaf := deriveStep(current, segments[len(segments)-1])
	var out FileSeed
	copy(out[:], leaf[:FileSeedSize])
	return out, nil
}

// DeriveEncryptedPathSeed is the hex-boundary form of the typed derivation:
// pathSeed must be a 128-hex-character directory seed; the result is 128
// hex characters for a directory and 64 for a file.
func DeriveEncryptedPathSeed(pathSeed, subPath string, isDirectory bool) (string, error) {
	root, err := ParseDirectorySeed(pathSeed)
	if err != nil {
		return "", err
	}
	if isDirectory {
		d, err := root.DeriveDirectory(subPath)
		if err != nil {
			return "", err
		}
		return d.Hex(), nil
	}
	f, err := root.DeriveFile(subPath)
	if err != nil {
		return "", err
	}
	return f.Hex(), nil
}

// Tweak returns the registry dataKey for this file seed:
// hex(hash(seedBytes)). The registry stores the tweak, never the
// human-readable path.
func (f FileSeed) Tweak() string {
	sum := cryptoutil.HashBytes(f[:])
	return cryptoutil.ToHex(sum[:])
}

// KeyEntropy returns the 32 bytes of symmetric key material for this file
// seed. The derivation is labeled so it is distinct from the tweak.
func (f FileSeed) KeyEntropy() [FileSeedSize]byte {
	return cryptoutil.HashAll([]byte(keyEntropyLabel), f[:])
}

// DeriveEncryptedFileTweak is the hex-boundary form of FileSeed.Tweak.
func DeriveEncryptedFileTweak(fileSeed string) (string, error) {
	f, err := ParseFileSeed(fileSeed)
	if err != nil {
		return "", err
	}
	return f.Tweak(), nil
}

// DeriveEncryptedFileKeyEntropy is the hex-boundary form of
// FileSeed.KeyEntropy.
func DeriveEncryptedFileKeyEntropy(fileSeed string) ([FileSeedSize]byte, error) {
	f, err := ParseFileSeed(fileSeed)
	if err != nil {
		return [FileSeedSize]byte{}, err
	}
	return f.KeyEntropy(), nil
}
