package vm

import (
	"github.com/holiman/uint256"

	"github.com/bnb-chain/evmcore/common"
)

// U256 is the 256-bit unsigned integer type used throughout the
// interpreter (C1). holiman/uint256.Int already stores its value as
// [4]uint64 in little-endian limb order — value = limb0 + limb1*2^64 +
// limb2*2^128 + limb3*2^192 — which is exactly the canonical limb
// decomposition §3 requires, so U256 is a direct alias rather than a
// reimplementation.
type U256 = uint256.Int

// NewU256 constructs a U256 from a small unsigned value.
func NewU256(v uint64) *U256 { return uint256.NewInt(v) }

// U256FromHash decodes the 32-byte big-endian wire representation (§3) into
// a U256.
func U256FromHash(h common.Hash) *U256 {
	var u U256
	return u.SetBytes32(h[:])
}

// U256FromBytes decodes a big-endian byte slice (shorter than 32 bytes is
// implicitly zero-extended on the left) into a U256.
func U256FromBytes(b []byte) *U256 {
	var u U256
	return u.SetBytes(b)
}

// ToHash re-encodes a U256 as its 32-byte big-endian wire representation.
func ToHash(u *U256) common.Hash {
	return common.Hash(u.Bytes32())
}

// Limbs returns the four little-endian 64-bit limbs backing u, per §3's
// canonical decomposition. Index 0 is the least significant limb.
func Limbs(u *U256) [4]uint64 {
	return [4]uint64{u[0], u[1], u[2], u[3]}
}

// limb0AsU64 implements the §4.13 U64-normalisation rule: selected = is_u64
// ? limb0 : UINT64_MAX, where is_u64 = (limb1 == 0) && (limb2 == 0) && (limb3 == 0).
func limb0AsU64(u *U256) (value uint64, fits bool) {
	if u[1] == 0 && u[2] == 0 && u[3] == 0 {
		return u[0], true
	}
	return ^uint64(0), false
}
