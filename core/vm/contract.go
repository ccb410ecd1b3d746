package vm

import (
	"encoding/binary"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/params"
)

// Frame is one call-frame (§3 "Call frame", C4): the complete state of a
// single invocation, owning its own stack, memory and PC. Frames are kept
// in LIFO order by the interpreter driver (C7); CALL/CREATE push a new
// Frame, RETURN/REVERT/STOP/SELFDESTRUCT/a fatal error pop it.
type Frame struct {
	pc uint64

	Stack  *Stack
	Memory *Memory

	Gas       uint64 // gas_left
	GasRefund uint64

	Kind   CallKind
	Static bool
	Depth  int

	Caller    common.Address
	Address   common.Address // recipient / the account whose storage this frame touches
	CodeAddr  common.Address // account whose code is executing (for CALLCODE/DELEGATECALL, != Address)
	Value     *U256
	Input     []byte

	code      []byte // padded bytecode (§4.8): len(code) == len(rawCode)+33
	rawCodeLen int
	jumpdests bitvec

	// ReturnData is the return-data buffer (§3): overwritten by the most
	// recent sub-call or by this frame's own RETURN/REVERT, visible to
	// RETURNDATASIZE/RETURNDATACOPY.
	ReturnData []byte

	IsDeployment bool

	// calldataCache memoises CALLDATALOAD's 32-byte windows keyed by
	// offset (§3 "Cache": "calldata 32-byte windows keyed by
	// (message, offset)"), avoiding a bounds-checked copy on every load
	// of the same offset — common in ABI-decoding loops that re-read a
	// fixed set of argument slots. Lazily allocated: a frame that never
	// calls CALLDATALOAD never pays for it.
	calldataCache *fastcache.Cache
}

// NewFrame builds a top-level or sub-call frame. code is the raw,
// unpadded bytecode; NewFrame pads it per §4.8 and computes the JUMPDEST
// bitmap.
func NewFrame(caller, address common.Address, value *U256, gas uint64, code []byte, static bool, kind CallKind, depth int) *Frame {
	f := &Frame{
		Stack:      newStack(),
		Memory:     newMemory(),
		Gas:        gas,
		Caller:     caller,
		Address:    address,
		CodeAddr:   address,
		Value:      value,
		Static:     static,
		Kind:       kind,
		Depth:      depth,
		rawCodeLen: len(code),
	}
	f.code = padCode(code)
	f.jumpdests = codeBitmap(f.code)
	return f
}

// NewTopLevelFrame builds the single frame a top-level transaction (as
// opposed to a CALL/CREATE re-entering the VM) runs in, deducting the
// §4.2/§4.4 basic execution cost (params.TxGas, 21000) from gas before
// gas_left is set — §8's first invariant: "for all bytecode b and gas
// g >= 21000, starting a top-level execution creates exactly one frame
// with gas_left = g - 21000". Fails with ErrOutOfGas if gas is below the
// basic cost, before any frame is allocated.
func NewTopLevelFrame(caller, address common.Address, value *U256, gas uint64, code []byte, input []byte) (*Frame, error) {
	if gas < params.TxGas {
		return nil, ErrOutOfGas
	}
	f := NewFrame(caller, address, value, gas-params.TxGas, code, false, CallKindCall, 0)
	f.Input = input
	return f, nil
}

func (f *Frame) Release() {
	returnStack(f.Stack)
}

func (f *Frame) PC() uint64 { return f.pc }

func (f *Frame) SetPC(pc uint64) { f.pc = pc }

func (f *Frame) Code() []byte { return f.code }

// CodeSize is the CODESIZE/EXTCODESIZE-visible length: the original,
// unpadded bytecode length.
func (f *Frame) CodeSize() int { return f.rawCodeLen }

// CodeAt returns the opcode byte at pc, or STOP if pc is within the §4.8
// padding tail or beyond it.
func (f *Frame) CodeAt(pc uint64) OpCode {
	if pc >= uint64(len(f.code)) {
		return STOP
	}
	return OpCode(f.code[pc])
}

// validJumpdest reports whether dest is a valid JUMP/JUMPI target: within
// the original (unpadded) code, on an opcode boundary (not PUSH data), and
// the byte there is JUMPDEST.
func (f *Frame) validJumpdest(dest *U256) bool {
	udest, overflow := dest.Uint64WithOverflow()
	if overflow || udest >= uint64(f.rawCodeLen) {
		return false
	}
	if OpCode(f.code[udest]) != JUMPDEST {
		return false
	}
	return f.jumpdests.codeSegment(udest)
}

// UseGas deducts cost from Gas, failing with ErrOutOfGas if insufficient.
func (f *Frame) UseGas(cost uint64) error {
	if f.Gas < cost {
		return ErrOutOfGas
	}
	f.Gas -= cost
	return nil
}

// applyRefund folds an SSTORE refund delta (§4.2's nine-way table) into the
// frame's accumulated refund, clamped at zero: a negative delta can claw
// back a refund credited earlier in the same frame but never below it.
func (f *Frame) applyRefund(delta int64) {
	if delta >= 0 {
		f.GasRefund += uint64(delta)
		return
	}
	d := uint64(-delta)
	if d > f.GasRefund {
		f.GasRefund = 0
	} else {
		f.GasRefund -= d
	}
}

// cachedCalldataWindow returns the 32-byte CALLDATALOAD window at offset,
// computing and caching it on first access. f.Input is immutable for the
// life of the frame, so the cache needs no invalidation.
func (f *Frame) cachedCalldataWindow(offset uint64) []byte {
	if f.calldataCache == nil {
		f.calldataCache = fastcache.New(32 * 1024)
	}
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], offset)
	if v, ok := f.calldataCache.HasGet(nil, key[:]); ok {
		return v
	}
	v := getData(f.Input, offset, 32)
	f.calldataCache.Set(key[:], v)
	return v
}

// padCode implements C8: copy code into a buffer of size len(code)+33,
// trailing bytes zero (STOP), so (a) a trailing PUSHn with a truncated
// immediate reads zeros, and (b) the interpreter always terminates running
// off the end.
func padCode(code []byte) []byte {
	padded := make([]byte, len(code)+33)
	copy(padded, code)
	return padded
}
