// Package cidutil fixes the content-identifier convention for the blob
// store: CIDv1, raw codec, sha2-256 multihash. Every stored blob,
// encrypted container or not, is addressed this way.
package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var errUndefinedCID = errors.New("cidutil: undefined cid")

// CIDv1RawSHA256 returns the CIDv1 string for data.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length this is unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDv1RawSHA256CID returns the CIDv1 for data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Decode parses a CID string, rejecting the undefined CID.
func Decode(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, errUndefinedCID
	}
	return id, nil
}
