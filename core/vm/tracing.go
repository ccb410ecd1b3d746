package vm

import "github.com/bnb-chain/evmcore/common"

// Hooks is the optional tracer callback set the interpreter and EVM.Call
// invoke around opcode execution and frame entry/exit, adapted from the
// teacher's core/tracing.Hooks to this module's Frame/OpCode types. Every
// field is independently nil-able and skipped when unset, so attaching a
// tracer never forces paying for callbacks it doesn't implement.
type Hooks struct {
	// OnOpcode fires before an opcode's execute function runs, once gas
	// for the opcode (constant + memory expansion + dynamic) has already
	// been deducted from frame.Gas.
	OnOpcode func(pc uint64, op OpCode, gas, cost uint64, frame *Frame, returnData []byte, depth int, err error)

	// OnFault fires instead of OnOpcode's follow-up when execute returns
	// any error other than a clean STOP/RETURN/REVERT.
	OnFault func(pc uint64, op OpCode, gas, cost uint64, frame *Frame, depth int, err error)

	// OnEnter/OnExit bracket one EVM.Call invocation: a top-level
	// transaction or a CALL/CREATE-family re-entry into the VM.
	OnEnter func(depth int, kind CallKind, from, to common.Address, input []byte, gas uint64, value *U256)
	OnExit  func(depth int, output []byte, gasUsed uint64, err error, reverted bool)

	// OnGasChange fires around non-opcode gas adjustments the interpreter
	// loop itself doesn't see, e.g. the refund credited to the caller on
	// a clean RETURN.
	OnGasChange func(old, new uint64, reason GasChangeReason)
}

// GasChangeReason labels an OnGasChange callback's cause, mirroring the
// subset of the teacher's tracing.GasChangeReason enum this module's
// Non-goals leave relevant (no precompiles, no intrinsic calldata cost
// beyond the flat basic-execution charge already folded into TxGas).
type GasChangeReason uint8

const (
	GasChangeCallOpCode GasChangeReason = iota
	GasChangeCallRefund
	GasChangeCallLeftOverReturned
)
