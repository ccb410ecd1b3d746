// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"math"

	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/crypto"
)

func opAdd(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opExp(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	base, exponent := frame.Stack.pop(), frame.Stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	back, num := frame.Stack.pop(), frame.Stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opNot(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.peek()
	x.Not(x)
	return nil, nil
}

func opLt(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opByte(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	th, val := frame.Stack.pop(), frame.Stack.peek()
	val.Byte(&th)
	return nil, nil
}

func opAddmod(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop2()
	z := frame.Stack.peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop2()
	z := frame.Stack.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opSHL(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSHR(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSAR(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opKeccak256(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.pop(), frame.Stack.peek()
	data := frame.Memory.GetPtr(offset.Uint64(), size.Uint64())

	if interp.hasher == nil {
		interp.hasher = crypto.NewKeccakState()
	} else {
		interp.hasher.Reset()
	}
	interp.hasher.Write(data)
	interp.hasher.Read(interp.hasherBuf[:])

	size.SetBytes(interp.hasherBuf[:])
	return nil, nil
}

func opAddress(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetBytes(frame.Address.Bytes()))
	return nil, nil
}

func opBalance(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.peek()
	address := common.Address(slot.Bytes20())
	slot.Set(interp.evm.Host.GetBalance(address))
	return nil, nil
}

func opOrigin(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetBytes(interp.evm.Host.GetTxContext().Origin.Bytes()))
	return nil, nil
}

func opCaller(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetBytes(frame.Caller.Bytes()))
	return nil, nil
}

func opCallValue(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(frame.Value)
	return nil, nil
}

func opCallDataLoad(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		x.SetBytes(frame.cachedCalldataWindow(offset))
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(uint64(len(frame.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	memOffset, dataOffset := frame.Stack.pop2()
	length := frame.Stack.pop()
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = math.MaxUint64
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), getData(frame.Input, dataOffset64, length.Uint64()))
	return nil, nil
}

func opReturnDataSize(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(uint64(len(frame.ReturnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	memOffset, dataOffset := frame.Stack.pop2()
	length := frame.Stack.pop()

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	end := dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(frame.ReturnData)) < end64 {
		return nil, ErrReturnDataOutOfBounds
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), frame.ReturnData[offset64:end64])
	return nil, nil
}

func opExtCodeSize(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.peek()
	slot.SetUint64(interp.evm.Host.GetCodeSize(slot.Bytes20()))
	return nil, nil
}

func opCodeSize(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(uint64(frame.CodeSize())))
	return nil, nil
}

func opCodeCopy(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	memOffset, codeOffset := frame.Stack.pop2()
	length := frame.Stack.pop()
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	codeCopy := getData(frame.Code()[:frame.CodeSize()], uint64CodeOffset, length.Uint64())
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opExtCodeCopy(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	stack := frame.Stack
	a := stack.pop()
	memOffset, codeOffset := stack.pop2()
	length := stack.pop()

	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	addr := common.Address(a.Bytes20())
	buf := make([]byte, length.Uint64())
	n := interp.evm.Host.CopyCode(addr, uint64CodeOffset, buf)
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), buf[:n])
	if n < len(buf) {
		frame.Memory.Set(memOffset.Uint64()+uint64(n), uint64(len(buf)-n), make([]byte, len(buf)-n))
	}
	return nil, nil
}

func opExtCodeHash(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.peek()
	address := common.Address(slot.Bytes20())
	if !interp.evm.Host.AccountExists(address) {
		slot.Clear()
	} else {
		slot.SetBytes(interp.evm.Host.GetCodeHash(address).Bytes())
	}
	return nil, nil
}

func opGasprice(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(interp.evm.Host.GetTxContext().GasPrice)
	return nil, nil
}

func opBlockhash(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	num := frame.Stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	tctx := interp.evm.Host.GetTxContext()
	var lower uint64
	if tctx.BlockNumber >= 257 {
		lower = tctx.BlockNumber - 256
	}
	if num64 >= lower && num64 < tctx.BlockNumber {
		num.SetBytes(interp.evm.Host.GetBlockHash(num64).Bytes())
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetBytes(interp.evm.Host.GetTxContext().Coinbase.Bytes()))
	return nil, nil
}

func opTimestamp(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(interp.evm.Host.GetTxContext().BlockTime))
	return nil, nil
}

func opNumber(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(interp.evm.Host.GetTxContext().BlockNumber))
	return nil, nil
}

func opRandom(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetBytes(interp.evm.Host.GetTxContext().PrevRandao.Bytes()))
	return nil, nil
}

func opGasLimit(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(interp.evm.Host.GetTxContext().GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(interp.evm.Host.GetTxContext().ChainID)
	return nil, nil
}

func opSelfBalance(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(interp.evm.Host.GetBalance(frame.Address))
	return nil, nil
}

func opBaseFee(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(interp.evm.Host.GetTxContext().BaseFee)
	return nil, nil
}

func opBlobHash(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	idx := frame.Stack.peek()
	hashes := interp.evm.Host.GetTxContext().BlobHashes
	if i, overflow := idx.Uint64WithOverflow(); !overflow && i < uint64(len(hashes)) {
		idx.SetBytes(hashes[i].Bytes())
	} else {
		idx.Clear()
	}
	return nil, nil
}

func opBlobBaseFee(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(interp.evm.Host.GetTxContext().BlobBaseFee)
	return nil, nil
}

func opPop(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.pop()
	return nil, nil
}

func opMload(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	v := frame.Stack.peek()
	v.SetBytes(frame.Memory.GetPtr(v.Uint64(), 32))
	return nil, nil
}

func opMstore(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	mStart, val := frame.Stack.pop2()
	frame.Memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	off, val := frame.Stack.pop2()
	frame.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opMcopy(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	dst, src := frame.Stack.pop2()
	size := frame.Stack.pop()
	frame.Memory.Copy(dst.Uint64(), src.Uint64(), size.Uint64())
	return nil, nil
}

func opSload(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	loc := frame.Stack.peek()
	hash := common.Hash(loc.Bytes32())
	val := interp.evm.Host.GetStorage(frame.Address, hash)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Static {
		return nil, ErrStaticModeViolation
	}
	frame.Stack.pop2() // already applied by gasSstore
	if interp.sstoreWritten {
		frame.applyRefund(interp.pendingRefundDelta)
		interp.sstoreWritten = false
	}
	return nil, nil
}

func opTload(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	loc := frame.Stack.peek()
	val := interp.evm.Host.GetTransientStorage(frame.Address, common.Hash(loc.Bytes32()))
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opTstore(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Static {
		return nil, ErrStaticModeViolation
	}
	loc, val := frame.Stack.pop2()
	interp.evm.Host.SetTransientStorage(frame.Address, loc.Bytes32(), val.Bytes32())
	return nil, nil
}

func opJump(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	pos := frame.Stack.pop()
	if !frame.validJumpdest(&pos) {
		return nil, ErrBadJumpDestination
	}
	*pc = pos.Uint64() - 1 // interpreter loop increments pc
	return nil, nil
}

func opJumpi(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	pos, cond := frame.Stack.pop2()
	if !cond.IsZero() {
		if !frame.validJumpdest(&pos) {
			return nil, ErrBadJumpDestination
		}
		*pc = pos.Uint64() - 1
	}
	return nil, nil
}

func opJumpdest(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(uint64(frame.Memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256).SetUint64(frame.Gas))
	return nil, nil
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
		frame.Stack.swap(n)
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
		frame.Stack.dup(n)
		return nil, nil
	}
}

// makePush builds PUSHn: read pushByteSize bytes of immediate data starting
// right after the opcode (zero-padded past the end of code), push it, and
// advance pc past the immediate.
func makePush(pushByteSize int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
		codeLen := uint64(len(frame.Code()))
		start := *pc + 1
		integer := new(U256)
		if start >= codeLen {
			frame.Stack.push(integer.Clear())
		} else {
			end := start + uint64(pushByteSize)
			if end > codeLen {
				end = codeLen
			}
			frame.Stack.push(integer.SetBytes(frame.Code()[start:end]))
		}
		*pc += uint64(pushByteSize)
		return nil, nil
	}
}

func opPush0(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(U256))
	return nil, nil
}

func makeLog(size int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
		if frame.Static {
			return nil, ErrStaticModeViolation
		}
		stack := frame.Stack
		mStart, mSize := stack.pop(), stack.pop()
		topics := make([]common.Hash, size)
		for i := 0; i < size; i++ {
			addr := stack.pop()
			topics[i] = addr.Bytes32()
		}
		d := frame.Memory.GetCopy(mStart.Uint64(), mSize.Uint64())
		interp.evm.Host.EmitLog(frame.Address, d, topics)
		return nil, nil
	}
}

func opCreate(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return doCreate(pc, interp, frame, CallKindCreate)
}

func opCreate2(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return doCreate(pc, interp, frame, CallKindCreate2)
}

func doCreate(pc *uint64, interp *EVMInterpreter, frame *Frame, kind CallKind) ([]byte, error) {
	if frame.Static {
		return nil, ErrStaticModeViolation
	}
	var value, salt U256
	var offset, size U256
	if kind == CallKindCreate2 {
		value, offset = frame.Stack.pop2()
		size, salt = frame.Stack.pop2()
	} else {
		value, offset = frame.Stack.pop2()
		size = frame.Stack.pop()
	}
	input := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())

	gas := interp.callGasTemp
	msg := CallMessage{
		Kind:     kind,
		Static:   frame.Static,
		Depth:    frame.Depth + 1,
		Gas:      gas,
		Sender:   frame.Address,
		Value:    &value,
		Input:    input,
		CodeAddr: frame.Address,
	}
	if kind == CallKindCreate2 {
		msg.Salt = &salt
	}
	result := interp.evm.Host.Call(msg)

	stackvalue := size
	if !result.Success {
		stackvalue.Clear()
	} else {
		stackvalue.SetBytes(result.CreateAddr.Bytes())
	}
	frame.Stack.push(&stackvalue)
	frame.Gas += result.GasLeft
	frame.GasRefund += result.GasRefund

	if !result.Success {
		frame.ReturnData = result.Output
		return nil, nil
	}
	frame.ReturnData = nil
	return nil, nil
}

func opCall(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return doCall(pc, interp, frame, CallKindCall)
}

func opCallCode(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return doCall(pc, interp, frame, CallKindCallCode)
}

func opDelegateCall(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return doCall(pc, interp, frame, CallKindDelegateCall)
}

func opStaticCall(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return doCall(pc, interp, frame, CallKindStaticCall)
}

func doCall(pc *uint64, interp *EVMInterpreter, frame *Frame, kind CallKind) ([]byte, error) {
	stack := frame.Stack
	temp := stack.pop() // gas argument; actual gas offered is interp.callGasTemp
	gas := interp.callGasTemp

	addr := stack.pop()
	var value U256
	if kind == CallKindCall || kind == CallKindCallCode {
		value = stack.pop()
	}
	inOffset, inSize := stack.pop2()
	retOffset, retSize := stack.pop2()
	toAddr := common.Address(addr.Bytes20())
	args := frame.Memory.GetPtr(inOffset.Uint64(), inSize.Uint64())

	if kind == CallKindCall && frame.Static && !value.IsZero() {
		return nil, ErrStaticModeViolation
	}
	if !value.IsZero() {
		gas += 2300 // stipend, matched below by the value-transfer surcharge already charged as constant/dynamic gas
	}

	msg := CallMessage{
		Kind:      kind,
		Static:    frame.Static || kind == CallKindStaticCall,
		Depth:     frame.Depth + 1,
		Gas:       gas,
		Recipient: toAddr,
		Sender:    frame.Address,
		Value:     &value,
		Input:     args,
		CodeAddr:  toAddr,
	}
	switch kind {
	case CallKindDelegateCall:
		msg.Sender = frame.Caller
		msg.Value = frame.Value
		msg.Recipient = frame.Address
	case CallKindCallCode:
		msg.Recipient = frame.Address
	}

	result := interp.evm.Host.Call(msg)

	if !result.Success {
		temp.Clear()
	} else {
		temp.SetOne()
	}
	stack.push(&temp)
	frame.Memory.Set(retOffset.Uint64(), retSize.Uint64(), result.Output)

	frame.Gas += result.GasLeft
	frame.GasRefund += result.GasRefund
	frame.ReturnData = result.Output
	return nil, nil
}

func opReturn(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.pop2()
	return frame.Memory.GetCopy(offset.Uint64(), size.Uint64()), errStopToken
}

func opRevert(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.pop2()
	ret := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())
	frame.ReturnData = ret
	return ret, ErrExecutionReverted
}

func opStop(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return nil, errStopToken
}

func opUndefined(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	return nil, ErrUnsupportedOpcode
}

func opSelfdestruct(pc *uint64, interp *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Static {
		return nil, ErrStaticModeViolation
	}
	beneficiary := frame.Stack.pop()
	interp.evm.Host.Selfdestruct(frame.Address, beneficiary.Bytes20())
	return nil, errStopToken
}
