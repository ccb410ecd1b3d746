package vm

import "github.com/pkg/errors"

// Sentinel error kinds (§7). Handlers either return nil (SUCCESS) or one of
// these; the driver never inspects anything finer-grained than errors.Is
// against this list.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrStackOverflow            = errors.New("stack overflow")
	ErrStackUnderflow           = errors.New("stack underflow")
	ErrBadJumpDestination       = errors.New("invalid jump destination")
	ErrInvalidInstruction       = errors.New("invalid instruction")
	ErrUnsupportedOpcode        = errors.New("unsupported opcode")
	ErrInvalidMemoryAccess      = errors.New("invalid memory access")
	ErrTooLargeRequiredMemory   = errors.New("required memory size too large")
	ErrCallDepthExceeded        = errors.New("max call depth exceeded")
	ErrStaticModeViolation      = errors.New("write protection in static call")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrMaxInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrInvalidCode              = errors.New("invalid code: must not begin with 0xef")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
)

// errStopToken is the interpreter loop's internal "halt cleanly" signal:
// STOP, RETURN and SELFDESTRUCT return it to distinguish a completed frame
// (possibly with zero-length output) from "keep executing at pc+1". It
// never escapes Run.
var errStopToken = errors.New("stop token")

// isRevert reports whether err is the distinguished REVERT status, the only
// fatal-looking status that keeps gas_left and return-data (§7).
func isRevert(err error) bool {
	return errors.Is(err, ErrExecutionReverted)
}
