package vm

import (
	"math"

	"github.com/bnb-chain/evmcore/params"
)

// Memory is the byte-addressable, lazily expanded memory of one frame
// (§3 C3). It never shrinks; growth always rounds up to a whole number of
// 32-byte words (invariant 2 in §3) and is capped at params.MaxMemorySize.
type Memory struct {
	store []byte
}

func newMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Len() int { return len(m.store) }

// words returns ⌈size/32⌉, the unit the §4.2 expansion formula is defined over.
func words(size uint64) uint64 {
	return (size + 31) / 32
}

// expansionCost implements §4.2's memory expansion formula:
// cost(size) = size_words^2/512 + 3*size_words, charged as the delta from
// the current size to the new size.
func expansionCost(curWords, newWords uint64) uint64 {
	cur := curWords*curWords/params.MemoryGasQuadCoeff + params.MemoryGas*curWords
	new := newWords*newWords/params.MemoryGasQuadCoeff + params.MemoryGas*newWords
	return new - cur
}

// memorySizeForAccess computes the byte size memory must grow to in order
// to cover [offset, offset+size), rounded up to a multiple of 32, or
// reports that the access overflows/exceeds the ceiling.
func memorySizeForAccess(offset, size uint64) (newSize uint64, ok bool) {
	if size == 0 {
		return 0, true
	}
	// offset+size must not overflow uint64.
	if offset > math.MaxUint64-size {
		return 0, false
	}
	end := offset + size
	if end > params.MaxMemorySize {
		return 0, false
	}
	return words(end) * 32, true
}

// resize grows the backing store to newSize bytes (a multiple of 32),
// zero-filling the new tail. It is a no-op if newSize <= current size.
func (m *Memory) resize(newSize uint64) {
	if uint64(len(m.store)) >= newSize {
		return
	}
	grown := make([]byte, newSize)
	copy(grown, m.store)
	m.store = grown
}

// Set writes value into [offset, offset+len(value)). Caller must have
// already resized memory to cover the window.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("memory write out of bounds after resize")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes a 32-byte big-endian encoding of val at offset.
func (m *Memory) Set32(offset uint64, val *U256) {
	if offset+32 > uint64(len(m.store)) {
		panic("memory write out of bounds after resize")
	}
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// GetCopy returns a freshly allocated copy of [offset, offset+size), zero
// padded for any portion past the current memory size.
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	if offset < uint64(len(m.store)) {
		copy(out, m.store[offset:])
	}
	return out
}

// GetPtr returns a slice view of [offset, offset+size) when fully within
// bounds (no padding); callers that need stability across further memory
// growth must copy.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Data returns the full backing store (read-only use expected).
func (m *Memory) Data() []byte { return m.store }

// EnsureSize grows memory to cover [offset, offset+size) if it doesn't
// already, rounding up to a whole word per invariant 2. The interpreter's
// own dispatch loop resizes memory as a side effect of computing gas cost
// (interpreter.go); callers that reach Memory without going through that
// gas-metered path, such as the runtime function table, must call this
// first. A zero-length access never grows memory, matching
// memorySizeForAccess.
func (m *Memory) EnsureSize(offset, size uint64) {
	newSize, ok := memorySizeForAccess(offset, size)
	if !ok {
		return
	}
	m.resize(newSize)
}

// Copy implements MCOPY's overlap-safe memmove semantics.
func (m *Memory) Copy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}
