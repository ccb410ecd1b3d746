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
	"github.com/bnb-chain/evmcore/params"
)

// EVM ties a Host (§4.5, the sole side-effecting dependency) to a jump
// table built for a chain revision, and drives one frame's bytecode at a
// time (C7). It holds no state of its own beyond that wiring: call-frame
// stacking, value transfer, and code storage on CREATE all live on the
// other side of Host, so a single EVM is safely reused across the whole
// lifetime of a call tree.
type EVM struct {
	Host   Host
	Config Config
	rules  params.Rules
	table  *JumpTable

	interpreter *EVMInterpreter
}

// NewEVM builds an EVM bound to host, with a jump table selected for rules
// and no tracer attached.
func NewEVM(host Host, rules params.Rules) *EVM {
	return NewEVMWithConfig(host, Config{Rules: rules})
}

// NewEVMWithConfig builds an EVM from a full Config, e.g. to attach a
// Tracer. cfg.Rules selects the jump table exactly as NewEVM's rules does.
func NewEVMWithConfig(host Host, cfg Config) *EVM {
	evm := &EVM{Host: host, Config: cfg, rules: cfg.Rules}
	evm.table = NewJumpTable(cfg.Rules)
	evm.interpreter = NewEVMInterpreter(evm)
	return evm
}

// Rules exposes the revision this EVM was built for, read by opcodes whose
// behavior or gas cost depends on it (e.g. SSTORE, EXTCODEHASH, BASEFEE).
func (evm *EVM) Rules() params.Rules { return evm.rules }

// Call runs frame's bytecode to completion (C4/C7's frame lifecycle). It is
// the single entry point both for a top-level transaction and for a Host's
// own Call implementation re-entering the VM for a child frame — the depth
// check here is what enforces the 1024-frame limit regardless of caller.
//
// On success ret is RETURN's output (nil for a bare STOP) and leftOverGas
// is the frame's remaining gas. On REVERT, ret carries the revert reason
// and leftOverGas is still refunded to the caller. Any other error consumes
// the frame's entire remaining gas, per §4.4's fatal-error rule.
func (evm *EVM) Call(frame *Frame) (ret []byte, leftOverGas uint64, err error) {
	if frame.Depth > int(params.CallCreateDepth) {
		return nil, frame.Gas, ErrCallDepthExceeded
	}

	tracer := evm.Config.Tracer
	if tracer != nil && tracer.OnEnter != nil {
		tracer.OnEnter(frame.Depth, frame.Kind, frame.Caller, frame.Address, frame.Input, frame.Gas, frame.Value)
	}
	initialGas := frame.Gas

	ret, err = evm.interpreter.Run(frame)
	if err != nil {
		if err == ErrExecutionReverted {
			if tracer != nil && tracer.OnExit != nil {
				tracer.OnExit(frame.Depth, ret, initialGas-frame.Gas, err, true)
			}
			return ret, frame.Gas, err
		}
		if tracer != nil && tracer.OnExit != nil {
			tracer.OnExit(frame.Depth, nil, initialGas, err, false)
		}
		frame.Gas = 0
		return nil, 0, err
	}
	if tracer != nil && tracer.OnExit != nil {
		tracer.OnExit(frame.Depth, ret, initialGas-frame.Gas, nil, false)
	}
	return ret, frame.Gas, nil
}
