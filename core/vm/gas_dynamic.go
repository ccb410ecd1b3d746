package vm

import (
	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/params"
	"github.com/pkg/errors"
)

// The memorySizeFunc family below reads stack operands with Back(n),
//0-indexed from the top, WITHOUT popping — the interpreter loop needs the
// memory-expansion cost before the opcode's execute function runs (and
// pops for real).

func memSingleWindow(offsetIdx, sizeIdx int) memorySizeFunc {
	return func(stack *Stack) (uint64, uint64, error) {
		size := stack.Back(sizeIdx)
		if size.IsZero() {
			return 0, 0, nil
		}
		offset := stack.Back(offsetIdx)
		if !offset.IsUint64() || !size.IsUint64() {
			return 0, 0, ErrTooLargeRequiredMemory
		}
		return offset.Uint64(), size.Uint64(), nil
	}
}

func memFixedWindow(offsetIdx int, size uint64) memorySizeFunc {
	return func(stack *Stack) (uint64, uint64, error) {
		offset := stack.Back(offsetIdx)
		if !offset.IsUint64() {
			return 0, 0, ErrTooLargeRequiredMemory
		}
		return offset.Uint64(), size, nil
	}
}

// memTwoWindows combines two independent [offset,size) windows (CALL's
// input and output buffers) into the single larger one the caller must
// resize memory to cover.
func memTwoWindows(offsetA, sizeA, offsetB, sizeB int) memorySizeFunc {
	return func(stack *Stack) (uint64, uint64, error) {
		var maxEnd uint64
		for _, w := range [][2]int{{offsetA, sizeA}, {offsetB, sizeB}} {
			size := stack.Back(w[1])
			if size.IsZero() {
				continue
			}
			offset := stack.Back(w[0])
			if !offset.IsUint64() || !size.IsUint64() {
				return 0, 0, ErrTooLargeRequiredMemory
			}
			end := offset.Uint64() + size.Uint64()
			if end > maxEnd {
				maxEnd = end
			}
		}
		return 0, maxEnd, nil
	}
}

func memMcopy(stack *Stack) (uint64, uint64, error) {
	dst, src, size := stack.Back(0), stack.Back(1), stack.Back(2)
	if size.IsZero() {
		return 0, 0, nil
	}
	if !dst.IsUint64() || !src.IsUint64() || !size.IsUint64() {
		return 0, 0, ErrTooLargeRequiredMemory
	}
	end := dst.Uint64()
	if e := src.Uint64(); e > end {
		end = e
	}
	return 0, end + size.Uint64(), nil
}

func gasKeccak256(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size := stack.Back(1)
	wordGas, overflow := safeMul(params.Keccak256WordGas, words(size.Uint64()))
	if overflow {
		return 0, ErrTooLargeRequiredMemory
	}
	return wordGas, nil
}

func gasLog(n int) gasFunc {
	return func(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		size := stack.Back(1)
		gas := uint64(n) * params.LogTopicGas
		byteCost, overflow := safeMul(params.LogDataGas, size.Uint64())
		if overflow {
			return 0, ErrTooLargeRequiredMemory
		}
		return gas + byteCost, nil
	}
}

func gasExp(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	exponent := stack.Back(1)
	if exponent.IsZero() {
		return 0, nil
	}
	byteLen := (exponent.BitLen() + 7) / 8
	return uint64(byteLen) * params.ExpByteGas, nil
}

func gasSload(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	loc := stack.Back(0)
	status := interp.evm.Host.AccessStorage(frame.Address, loc.Bytes32())
	return sloadCost(interp.evm.rules, status), nil
}

// gasSstore charges SSTORE's status-dependent cost. The nine-way status
// can only be known by performing the write, so the write happens here
// (inside the dynamic-gas phase, before the constant+dynamic charge is
// known to succeed) and opSstore's execute merely applies the refund this
// function stashes on the interpreter — if gas then turns out
// insufficient, the whole frame aborts and its effects are discarded by
// the caller, so the early write is never observable.
func gasSstore(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if interp.evm.rules.IsEIP2929 && frame.Gas <= params.SstoreSentryGasEIP2200 {
		return 0, errors.Wrap(ErrOutOfGas, "sstore sentry")
	}
	loc, val := stack.Back(0), stack.Back(1)
	access := coldStorageAccessSurcharge(interp.evm.rules, interp.evm.Host.AccessStorage(frame.Address, loc.Bytes32()))
	status := interp.evm.Host.SetStorage(frame.Address, loc.Bytes32(), val.Bytes32())
	gas, refundDelta := sstoreGasAndRefund(interp.evm.rules, status)
	interp.pendingRefundDelta = refundDelta
	interp.sstoreWritten = true
	return gas + access, nil
}

func gasBalance(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := common20(stack.Back(0))
	status := interp.evm.Host.AccessAccount(addr)
	return accountAccessCost(interp.evm.rules, status), nil
}

func gasExtCodeSize(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasBalance(interp, frame, stack, mem, memorySize)
}

func gasExtCodeHash(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasBalance(interp, frame, stack, mem, memorySize)
}

func gasExtCodeCopy(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size := stack.Back(3)
	wordGas, overflow := safeMul(params.CopyGas, words(size.Uint64()))
	if overflow {
		return 0, ErrTooLargeRequiredMemory
	}
	addr := common20(stack.Back(0))
	status := interp.evm.Host.AccessAccount(addr)
	return wordGas + accountAccessCost(interp.evm.rules, status), nil
}

func gasCopy(sizeIdx int) gasFunc {
	return func(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		size := stack.Back(sizeIdx)
		wordGas, overflow := safeMul(params.CopyGas, words(size.Uint64()))
		if overflow {
			return 0, ErrTooLargeRequiredMemory
		}
		return wordGas, nil
	}
}

func gasSelfdestruct(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	beneficiary := common20(stack.Back(0))
	var gas uint64
	if interp.evm.rules.IsEIP2929 {
		gas += accountAccessCost(interp.evm.rules, interp.evm.Host.AccessAccount(beneficiary))
	}
	if interp.evm.rules.IsEIP150 && !interp.evm.Host.AccountExists(beneficiary) && !interp.evm.Host.GetBalance(frame.Address).IsZero() {
		gas += params.CallNewAccountGas
	}
	return gas, nil
}

// gasCall computes CALL/CALLCODE/DELEGATECALL/STATICCALL's dynamic gas
// component (cold-access surcharge, value-transfer and new-account
// surcharges) and, via the 63/64 rule, the amount of gas offered to the
// callee — stashed on the interpreter for the execute function to read,
// since by the time execute runs the stack has already been popped.
func gasCall(kind CallKind) gasFunc {
	return func(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		var valueIdx = -1
		if kind == CallKindCall || kind == CallKindCallCode {
			valueIdx = 2
		}
		addr := common20(stack.Back(1))
		status := interp.evm.Host.AccessAccount(addr)
		var gas uint64
		if interp.evm.rules.IsEIP2929 {
			gas += accountAccessCost(interp.evm.rules, status)
		}
		transfersValue := valueIdx >= 0 && !stack.Back(valueIdx).IsZero()
		if transfersValue {
			gas += params.CallValueTransferGas
		}
		if kind == CallKindCall && transfersValue && !interp.evm.Host.AccountExists(addr) {
			gas += params.CallNewAccountGas
		}

		memGas := expansionCost(words(uint64(mem.Len())), words(memorySize))
		gasArg := stack.Back(0)
		available := frame.Gas - gas - memGas
		if interp.evm.rules.IsEIP150 {
			available -= available / 64
		}
		wanted := gasArg.Uint64()
		if !gasArg.IsUint64() || wanted > available {
			wanted = available
		}
		interp.callGasTemp = wanted
		return gas, nil
	}
}

func gasCreate(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memGas := expansionCost(words(uint64(mem.Len())), words(memorySize))
	available := frame.Gas - memGas
	if interp.evm.rules.IsEIP150 {
		available -= available / 64
	}
	interp.callGasTemp = available
	return 0, nil
}

func gasCreate2(interp *EVMInterpreter, frame *Frame, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size := stack.Back(2)
	wordGas, overflow := safeMul(params.Keccak256WordGas, words(size.Uint64()))
	if overflow {
		return 0, ErrTooLargeRequiredMemory
	}
	memGas := expansionCost(words(uint64(mem.Len())), words(memorySize))
	available := frame.Gas - memGas
	if interp.evm.rules.IsEIP150 {
		available -= available / 64
	}
	interp.callGasTemp = available
	return wordGas, nil
}

func safeMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	return r, r/a != b
}

func common20(u *U256) common.Address {
	return common.Address(u.Bytes20())
}
