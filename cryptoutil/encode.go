package cryptoutil

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/SkynetHQ/skynet-go/skyerr"
)

// EncodeUint64 encodes x as 8 little-endian bytes. Registry revisions and
// length prefixes use this fixed-width form so no two distinct canonical
// preimages can collide by concatenation.
func EncodeUint64(x uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, x)
	return out
}

// EncodePrefixedBytes encodes b as a little-endian 64-bit length prefix
// followed by the bytes themselves.
func EncodePrefixedBytes(b []byte) []byte {
	out := make([]byte, 8+len(b))
	binary.LittleEndian.PutUint64(out, uint64(len(b)))
	copy(out[8:], b)
	return out
}

// ToHex encodes b as lowercase hex with no prefix. This is the module-wide
// string convention for seeds, keys, tweaks, and signatures.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes a hex string, accepting either case. The param name is
// used in the validation error when s is malformed.
func FromHex(param, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return nil, skyerr.Validation(param, "%s is not valid hex: %q", param, s)
	}
	return b, nil
}

// FromHexExact decodes a hex string and requires exactly byteLen decoded
// bytes, reporting the actual and expected lengths otherwise.
func FromHexExact(param, s string, byteLen int) ([]byte, error) {
	b, err := FromHex(param, s)
	if err != nil {
		return nil, err
	}
	if len(b) != byteLen {
		return nil, skyerr.Validation(param, "%s must be %d hex characters (%d bytes), got %d characters",
			param, byteLen*2, byteLen, len(s))
	}
	return b, nil
}
