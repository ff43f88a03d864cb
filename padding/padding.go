// Package padding maps container sizes onto a discrete, publicly fixed set
// of padded lengths so that an observer who can only see a container's
// length learns as little as possible about the plaintext size.
//
// The tier table is a compatibility contract. It is validated against the
// published reference fixtures bit-for-bit; do not re-derive it from a
// closed-form formula.
package padding

import (
	"math"

	"github.com/SkynetHQ/skynet-go/skyerr"
)

const (
	kib = uint64(1) << 10

	// MinPaddedSize is the floor of the padded-size set.
	MinPaddedSize = 4 * kib

	// tierSpan is the upper bound of the first tier. Tier n covers sizes up
	// to tierSpan<<n and rounds to multiples of MinPaddedSize<<n, which
	// keeps the granularity finer near the top of each magnitude band than
	// power-of-two rounding would.
	tierSpan = 80 * kib

	// maxTier is the largest shift for which tierSpan<<n fits in a uint64.
	maxTier = 47
)

// tierFor selects the smallest tier whose span covers size.
func tierFor(size uint64) (uint, error) {
	for n := uint(0); n <= maxTier; n++ {
		if size <= tierSpan<<n {
			return n, nil
		}
	}
	return 0, skyerr.Newf(skyerr.KindOverflow, "no representable padded size for %d bytes", size)
}

// PadFileSize rounds size up to the nearest member of the padded-size set.
// It is monotonic and idempotent, with a fixed minimum output of
// MinPaddedSize. Inputs beyond the last tier fail with an overflow error.
func PadFileSize(size uint64) (uint64, error) {
	n, err := tierFor(size)
	if err != nil {
		return 0, err
	}
	block := MinPaddedSize << n
	if size > math.MaxUint64-(block-1) {
		return 0, skyerr.Newf(skyerr.KindOverflow, "padded size of %d bytes overflows", size)
	}
	padded := (size + block - 1) / block * block
	if padded < MinPaddedSize {
		padded = MinPaddedSize
	}
	return padded, nil
}

// CheckPaddedBlock reports whether size is already a member of the
// padded-size set. It fails with an overflow error on the same inputs that
// overflow PadFileSize.
func CheckPaddedBlock(size uint64) (bool, error) {
	n, err := tierFor(size)
	if err != nil {
		return false, err
	}
	if size < MinPaddedSize {
		return false, nil
	}
	block := MinPaddedSize << n
	return size%block == 0, nil
}
