// Package runtime builds the C13 runtime function table: the concrete
// RuntimeTable a compiled Program (core/compiler) calls into for every
// opcode that touches host state, is variable-cost, or is otherwise too
// expensive to lower inline. It is the compiled path's equivalent of
// core/vm's direct interpreter dispatch table, sharing the same Frame and
// Host so both execution paths see identical state and produce identical
// results.
package runtime

import (
	"github.com/bnb-chain/evmcore/core/compiler"
	"github.com/bnb-chain/evmcore/core/vm"
	"github.com/bnb-chain/evmcore/crypto"
)

// Context is the state one Table closes over: the frame a compiled
// Program is running against, and the Host it delegates every side effect
// to. It mirrors core/vm's EVMInterpreter, down to lazily allocating and
// reusing a single Keccak sponge across the frame's KECCAK256 calls.
type Context struct {
	Frame *vm.Frame
	Host  vm.Host

	hasher    crypto.KeccakState
	hasherBuf [32]byte
}

// New wraps frame and host in a Context ready to build a Table from.
func New(frame *vm.Frame, host vm.Host) *Context {
	return &Context{Frame: frame, Host: host}
}

// keccak256 hashes data with the Context's reused sponge, per
// core/vm/instructions.go's opKeccak256.
func (c *Context) keccak256(data []byte) []byte {
	if c.hasher == nil {
		c.hasher = crypto.NewKeccakState()
	} else {
		c.hasher.Reset()
	}
	c.hasher.Write(data)
	c.hasher.Read(c.hasherBuf[:])
	out := make([]byte, 32)
	copy(out, c.hasherBuf[:])
	return out
}

// Table builds the compiler.RuntimeTable a Program compiled from c.Frame's
// code should be evaluated against.
func (c *Context) Table() compiler.RuntimeTable {
	return newTable(c)
}
