// Package container implements the encrypted container codec: a fixed
// layout of [nonce][metadata region][authenticated ciphertext] whose total
// length is always a member of the public padded-size set.
//
// The metadata region is a fixed-length, unauthenticated field carrying
// only the format version, placed before the ciphertext so a decoder can
// reject an unsupported version before attempting authenticated
// decryption. Size padding lives inside the authenticated plaintext as
// trailing zero bytes, so every bit of the padded region is covered by the
// AEAD tag.
package container

import (
	"bytes"
	"crypto/rand"
	"encoding/json"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/SkynetHQ/skynet-go/padding"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

const (
	// NonceLength is the XSalsa20-Poly1305 nonce size.
	NonceLength = 24
	// MetadataLength is the fixed size of the version-carrying region.
	MetadataLength = 16
	// Overhead is the AEAD authentication overhead.
	Overhead = secretbox.Overhead
	// KeyLength is the symmetric key size.
	KeyLength = 32

	// TotalOverhead is every byte of a container that is not payload.
	TotalOverhead = NonceLength + MetadataLength + Overhead

	// CurrentVersion is the single supported container format version.
	CurrentVersion = 1
)

// Metadata is the container's hidden-field metadata. Version must fit in a
// single byte; the type is wider only so out-of-range values can be
// rejected explicitly instead of silently truncated.
type Metadata struct {
	Version uint16
}

func encodeMetadata(meta Metadata) ([MetadataLength]byte, error) {
	var region [MetadataLength]byte
	if meta.Version > 0xff {
		return region, skyerr.Newf(skyerr.KindOverflow, "metadata version %d does not fit in one byte", meta.Version)
	}
	region[0] = byte(meta.Version)
	return region, nil
}

// EncryptJSON serializes payload as UTF-8 JSON, zero-pads it so the total
// container length lands on the padded-size set, and seals it under key
// with a fresh random nonce.
func EncryptJSON(payload any, meta Metadata, key *[KeyLength]byte) ([]byte, error) {
	if key == nil {
		return nil, skyerr.Validation("key", "key must not be nil")
	}
	region, err := encodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, skyerr.Wrap(skyerr.KindValidation, "payload is not JSON-serializable", err)
	}

	totalSize, err := padding.PadFileSize(uint64(len(data) + TotalOverhead))
	if err != nil {
		return nil, err
	}
	// JSON never ends in a zero byte, so trailing zero padding is
	// unambiguous on decode.
	plaintext := make([]byte, int(totalSize)-TotalOverhead)
	copy(plaintext, data)

	var nonce [NonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, skyerr.Wrap(skyerr.KindInternal, "secure random source failed", err)
	}

	out := make([]byte, 0, totalSize)
	out = append(out, nonce[:]...)
	out = append(out, region[:]...)
	out = secretbox.Seal(out, plaintext, &nonce, key)
	return out, nil
}

// DecryptJSON decodes a container produced by EncryptJSON into out.
//
// Checks run cheapest first: total length must be a padded block, then the
// version byte must match CurrentVersion, and only then is authenticated
// decryption attempted. An authentication failure is deliberately
// undifferentiated: a corrupted nonce, corrupted ciphertext, and a wrong
// key are indistinguishable.
func DecryptJSON(b []byte, key *[KeyLength]byte, out any) error {
	if key == nil {
		return skyerr.Validation("key", "key must not be nil")
	}
	ok, err := padding.CheckPaddedBlock(uint64(len(b)))
	if err != nil {
		return err
	}
	if !ok || len(b) < TotalOverhead {
		return skyerr.Newf(skyerr.KindFormat, "container length %d is not a padded block size", len(b))
	}

	if v := b[NonceLength]; v != CurrentVersion {
		return skyerr.Newf(skyerr.KindFormat, "unsupported container version %d, expected %d", v, CurrentVersion)
	}

	var nonce [NonceLength]byte
	copy(nonce[:], b[:NonceLength])
	ciphertext := b[NonceLength+MetadataLength:]

	plaintext, opened := secretbox.Open(nil, ciphertext, &nonce, key)
	if !opened {
		return skyerr.New(skyerr.KindAuthentication, "container decryption failed")
	}

	data := bytes.TrimRight(plaintext, "\x00")
	if err := json.Unmarshal(data, out); err != nil {
		return skyerr.Wrap(skyerr.KindFormat, "container payload is not valid JSON", err)
	}
	return nil
}
