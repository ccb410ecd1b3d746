// Copyright 2014 The go-ethereum Authors
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
	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/crypto"
	"github.com/bnb-chain/evmcore/log"
	"github.com/bnb-chain/evmcore/params"
	"github.com/pkg/errors"
)

// Config bundles the ambient knobs the interpreter reads.
type Config struct {
	Rules     params.Rules
	NoBaseFee bool

	// Tracer, when non-nil, receives per-opcode and per-frame callbacks as
	// the interpreter runs. Every field is independently nil-able; the
	// interpreter checks each before calling it.
	Tracer *Hooks
}

// EVMInterpreter executes one call-frame's bytecode at a time (C6/C7): the
// bytecode-to-effect half of the module. It never recurses into sub-calls
// itself; CALL/CREATE-family opcodes hand off to Host.Call, whose
// implementation is free to re-enter EVM.Call for the child frame.
type EVMInterpreter struct {
	evm   *EVM
	table *JumpTable

	// callGasTemp carries the "gas to grant the callee" computed by a
	// CALL-family opcode's dynamicGas function across to its execute
	// function, since the 63/64 rule (EIP-150) needs the frame's gas
	// after the constant+dynamic charge but the stack pop for the callee
	// address happens in execute.
	callGasTemp uint64

	// pendingRefundDelta/sstoreWritten carry gasSstore's already-performed
	// write and computed refund delta over to opSstore's execute, which
	// only needs to fold the refund in (see gasSstore).
	pendingRefundDelta int64
	sstoreWritten      bool

	hasher    crypto.KeccakState
	hasherBuf common.Hash
}

// NewEVMInterpreter builds an interpreter bound to evm's Host/rules.
func NewEVMInterpreter(evm *EVM) *EVMInterpreter {
	return &EVMInterpreter{evm: evm, table: evm.table}
}

// Run executes frame's bytecode from its current pc until STOP/RETURN/
// REVERT/an error, or gas is exhausted (§4.4/§4.6/§4.7 of the call-frame
// lifecycle). ret is non-nil only for RETURN/REVERT.
func (in *EVMInterpreter) Run(frame *Frame) (ret []byte, err error) {
	frame.ReturnData = nil

	var (
		op     OpCode
		mem    = frame.Memory
		stack  = frame.Stack
		pc     = frame.pc
		cost   uint64
		tracer = in.evm.Config.Tracer
	)

	for {
		op = frame.CodeAt(pc)
		operation := in.table[op]
		if operation == nil || operation.undefined {
			return nil, errors.Wrapf(ErrInvalidInstruction, "opcode 0x%x", byte(op))
		}

		if sLen := stack.len(); sLen < operation.minStack {
			return nil, ErrStackUnderflow
		} else if sLen > operation.maxStack {
			return nil, ErrStackOverflow
		}

		cost = operation.constantGas
		if frame.Gas < cost {
			log.DebugBy(nil, "out of gas", "pc", pc, "op", op.String(), "required", cost, "available", frame.Gas)
			return nil, ErrOutOfGas
		}

		var memorySize uint64
		if operation.memorySize != nil {
			offset, size, merr := operation.memorySize(stack)
			if merr != nil {
				return nil, merr
			}
			gasCost, newSize, merr := memoryGasCost(mem, offset, size)
			if merr != nil {
				return nil, merr
			}
			memorySize = newSize
			cost += gasCost
			if frame.Gas < cost {
				log.DebugBy(nil, "out of gas", "pc", pc, "op", op.String(), "required", cost, "available", frame.Gas)
				return nil, ErrOutOfGas
			}
		}

		if operation.dynamicGas != nil {
			dyn, derr := operation.dynamicGas(in, frame, stack, mem, memorySize)
			if derr != nil {
				return nil, derr
			}
			cost += dyn
			if frame.Gas < cost {
				log.DebugBy(nil, "out of dynamic gas", "pc", pc, "op", op.String(), "required", cost, "available", frame.Gas)
				return nil, ErrOutOfGas
			}
		}

		frame.Gas -= cost

		if memorySize > uint64(mem.Len()) {
			mem.resize(memorySize)
		}

		if tracer != nil && tracer.OnOpcode != nil {
			tracer.OnOpcode(pc, op, frame.Gas, cost, frame, frame.ReturnData, frame.Depth, nil)
		}

		frame.pc = pc
		res, err := operation.execute(&pc, in, frame)
		pc = frame.pc

		switch err {
		case nil:
			pc++
		case errStopToken:
			return res, nil
		case ErrExecutionReverted:
			return res, ErrExecutionReverted
		default:
			log.TraceBy(nil, "opcode fault", "pc", pc, "op", op.String(), "depth", frame.Depth, "err", err)
			if tracer != nil && tracer.OnFault != nil {
				tracer.OnFault(pc, op, frame.Gas, cost, frame, frame.Depth, err)
			}
			return nil, err
		}
	}
}
