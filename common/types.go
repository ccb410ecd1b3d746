// Package common holds the small value types shared by the interpreter and
// the MIR compiler: 20-byte addresses and 32-byte hashes/words, with the
// hex codecs the rest of the tree expects from them.
package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	AddressLength = 20
	HashLength    = 32
)

// Address represents the 20-byte address of an EVM account.
type Address [AddressLength]byte

// BytesToAddress returns Address with the last AddressLength bytes of b.
// If b is larger than the address length it will be cropped from the left.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress returns Address with byte values of s, accepting an optional
// "0x" prefix.
func HexToAddress(s string) Address {
	return BytesToAddress(FromHex(s))
}

func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == Address{} }

// Hash represents a 32-byte word: a Keccak digest, a storage key, or a
// 32-byte-padded U256 wire value.
type Hash [HashLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

func HexToHash(s string) Hash {
	return BytesToHash(FromHex(s))
}

func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == Hash{} }

// FromHex decodes a hex string, tolerating an optional "0x"/"0X" prefix and
// an odd number of digits (left-padded with a zero nibble).
func FromHex(s string) []byte {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// Bytes2Hex is the inverse of FromHex without the 0x prefix.
func Bytes2Hex(b []byte) string { return hex.EncodeToString(b) }

func (a Address) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "%s", a.Hex())
}

func (h Hash) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "%s", h.Hex())
}
