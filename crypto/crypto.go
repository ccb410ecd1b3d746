// Package crypto wraps the Keccak-256 primitive and the two address
// derivation schemes (CREATE/CREATE2) the interpreter needs. Both the
// interpreter (KECCAK256, CREATE, CREATE2) and the MIR runtime function
// table call through this package so the two execution paths hash
// identically.
package crypto

import (
	"hash"

	"golang.org/x/crypto/sha3"

	"github.com/bnb-chain/evmcore/common"
)

// KeccakState extends hash.Hash with the sha3 state's Read, letting callers
// pull a fixed-size digest without allocating a new slice (the interpreter's
// KECCAK256 handler reuses one of these across the whole call frame).
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState returns a fresh Keccak-256 sponge satisfying KeccakState.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Keccak256Hash is Keccak256 with the result wrapped as a common.Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	return common.BytesToHash(Keccak256(data...))
}

// CreateAddress derives the address of a contract created via CREATE, per
// address = keccak256(rlp([sender, nonce]))[12:].
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	enc := rlpEncodeCreate(sender, nonce)
	return common.BytesToAddress(Keccak256(enc))
}

// CreateAddress2 derives the address of a contract created via CREATE2, per
// address = keccak256(0xff ++ sender ++ salt ++ keccak256(init_code))[12:].
func CreateAddress2(sender common.Address, salt [32]byte, initCodeHash []byte) common.Address {
	data := make([]byte, 0, 1+20+32+32)
	data = append(data, 0xff)
	data = append(data, sender.Bytes()...)
	data = append(data, salt[:]...)
	data = append(data, initCodeHash...)
	return common.BytesToAddress(Keccak256(data))
}

// rlpEncodeCreate encodes the minimal [sender, nonce] list CreateAddress
// needs without pulling in a general RLP encoder: sender is always a
// 20-byte string, nonce is encoded as its minimal big-endian representation
// (empty for zero).
func rlpEncodeCreate(sender common.Address, nonce uint64) []byte {
	nonceBytes := encodeUint(nonce)
	senderField := append([]byte{0x80 + 20}, sender.Bytes()...)
	nonceField := encodeRLPBytes(nonceBytes)
	payload := append(senderField, nonceField...)
	return append(encodeRLPListHeader(len(payload)), payload...)
}

func encodeUint(n uint64) []byte {
	if n == 0 {
		return nil
	}
	var b [8]byte
	i := 8
	for n > 0 {
		i--
		b[i] = byte(n)
		n >>= 8
	}
	return b[i:]
}

func encodeRLPBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{0x80 + byte(len(b))}, b...)
	}
	lenBytes := encodeUint(uint64(len(b)))
	return append(append([]byte{0xb7 + byte(len(lenBytes))}, lenBytes...), b...)
}

func encodeRLPListHeader(payloadLen int) []byte {
	if payloadLen < 56 {
		return []byte{0xc0 + byte(payloadLen)}
	}
	lenBytes := encodeUint(uint64(payloadLen))
	return append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
}
