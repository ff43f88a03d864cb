// Package registry canonicalizes, signs, and verifies mutable registry
// entries, and implements the read-verify-increment revision protocol that
// provides optimistic concurrency for a (publicKey, dataKey) slot.
package registry

import (
	"crypto/ed25519"

	"github.com/SkynetHQ/skynet-go/cryptoutil"
	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

// MaxDataSize bounds Entry.Data. Registry entries carry pointers (content
// identifiers), not payloads.
const MaxDataSize = 113

// Entry is a mutable registry record: a small data blob stored under
// (publicKey, dataKey) at a strictly increasing revision.
type Entry struct {
	DataKey  string
	Data     []byte
	Revision uint64
}

// SignedEntry is an Entry plus the owner's signature (128 lowercase hex
// characters) over the entry's canonical hash.
type SignedEntry struct {
	Entry
	Signature string
}

func dataKeyBytes(dataKey string, hashedDataKey bool) ([]byte, error) {
	if hashedDataKey {
		// The caller asserts dataKey is already a hex-encoded hash, e.g. a
		// file tweak. Hashing the hex characters instead of the decoded
		// bytes would silently produce an unverifiable entry.
		return cryptoutil.FromHexExact("dataKey", dataKey, cryptoutil.HashSize)
	}
	return []byte(dataKey), nil
}

// HashEntry returns the canonical 32-byte digest of an entry:
// hash(dataKeyBytes || lengthPrefixed(data) || uint64le(revision)).
//
// hashedDataKey states whether DataKey is a hex-encoded hash (decoded
// before hashing) or an arbitrary string (hashed as raw UTF-8). Data is
// length-prefixed so distinct triples cannot collide by concatenation.
func HashEntry(e Entry, hashedDataKey bool) ([cryptoutil.HashSize]byte, error) {
	var zero [cryptoutil.HashSize]byte
	if len(e.Data) > MaxDataSize {
		return zero, skyerr.Validation("data", "entry data must be at most %d bytes, got %d", MaxDataSize, len(e.Data))
	}
	dk, err := dataKeyBytes(e.DataKey, hashedDataKey)
	if err != nil {
		return zero, err
	}
	return cryptoutil.HashAll(
		dk,
		cryptoutil.EncodePrefixedBytes(e.Data),
		cryptoutil.EncodeUint64(e.Revision),
	), nil
}

// SignEntry hashes the entry canonically and signs the digest with the key
// pair's private key.
func SignEntry(e Entry, hashedDataKey bool, kp keys.KeyPair) (SignedEntry, error) {
	digest, err := HashEntry(e, hashedDataKey)
	if err != nil {
		return SignedEntry{}, err
	}
	priv, err := keys.PrivateKeyFromHex(kp.PrivateKey)
	if err != nil {
		return SignedEntry{}, err
	}
	sig := ed25519.Sign(priv, digest[:])
	return SignedEntry{Entry: e, Signature: cryptoutil.ToHex(sig)}, nil
}

// VerifyEntry checks a signed entry against the claimed public key. A
// failed verification is an authentication error; it indicates either a
// corrupted local seed or an adversarial prior entry and is never ignored.
func VerifyEntry(se SignedEntry, hashedDataKey bool, publicKey string) error {
	digest, err := HashEntry(se.Entry, hashedDataKey)
	if err != nil {
		return err
	}
	pub, err := keys.PublicKeyFromHex(publicKey)
	if err != nil {
		return err
	}
	sig, err := cryptoutil.FromHexExact("signature", se.Signature, ed25519.SignatureSize)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, digest[:], sig) {
		return skyerr.New(skyerr.KindAuthentication, "could not verify signature")
	}
	return nil
}
