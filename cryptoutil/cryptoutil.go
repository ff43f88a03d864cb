// Package cryptoutil provides the hash and key-derivation primitives the
// rest of the module is built on, plus the byte-encoding helpers used by
// canonical hash preimages.
//
// All multi-argument hashes are defined as hashing the concatenation of the
// arguments in call order; argument order is part of every downstream
// contract.
package cryptoutil

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"
)

// HashSize is the digest length of the module's hash primitive.
const HashSize = 32

// WideHashSize is the output length of the wide-output construction used
// for directory-seed derivation.
const WideHashSize = 64

// KDF parameters. These are a compatibility contract: changing any of them
// changes every derived key pair.
const (
	kdfIterations = 1000
	kdfSalt       = ""
	kdfKeyLength  = 32
)

// HashAll returns the BLAKE2b-256 digest of the concatenation of args in
// call order.
func HashAll(args ...[]byte) [HashSize]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for invalid key lengths; nil is valid.
		panic(err)
	}
	for _, a := range args {
		_, _ = h.Write(a)
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashBytes returns the BLAKE2b-256 digest of b.
func HashBytes(b []byte) [HashSize]byte {
	return blake2b.Sum256(b)
}

// HashWide returns the BLAKE2b-512 digest of the concatenation of args in
// call order. The full 64-byte output is the wide construction that keeps
// intermediate directory seeds at full entropy.
func HashWide(args ...[]byte) [WideHashSize]byte {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	for _, a := range args {
		_, _ = h.Write(a)
	}
	var out [WideHashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// DeriveKey stretches a low-entropy or arbitrary-length secret into 32
// bytes of key material using PBKDF2-SHA256 with a fixed iteration count
// and empty salt. It is deterministic and deliberately slow.
func DeriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(kdfSalt), kdfIterations, kdfKeyLength, sha256.New)
}
