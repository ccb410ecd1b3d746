package compiler

import (
	"github.com/bnb-chain/evmcore/core/vm"
	"github.com/pkg/errors"
)

// runtimeSig describes a fixed-arity runtime call: the ABI kind of each
// EVM-stack-popped argument (in pop order, i.e. top of stack first) and
// of its return value. Variable-arity opcodes (LOGn, the CALL family) are
// lowered by hand in visitBlock instead of through this table.
type runtimeSig struct {
	args []RuntimeArgKind
	ret  RuntimeArgKind
}

var fixedRuntimeSigs = map[vm.OpCode]runtimeSig{
	vm.MUL: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.DIV: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.SDIV: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.MOD: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.SMOD: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.ADDMOD: {[]RuntimeArgKind{ArgU256, ArgU256, ArgU256}, ArgU256},
	vm.MULMOD: {[]RuntimeArgKind{ArgU256, ArgU256, ArgU256}, ArgU256},
	vm.EXP: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.SIGNEXTEND: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.BYTE: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgU256},
	vm.KECCAK256: {[]RuntimeArgKind{ArgU64, ArgU64}, ArgBytes32},

	vm.ADDRESS: {nil, ArgU256}, vm.ORIGIN: {nil, ArgU256}, vm.CALLER: {nil, ArgU256},
	vm.CALLVALUE: {nil, ArgU256}, vm.CALLDATASIZE: {nil, ArgU64}, vm.CODESIZE: {nil, ArgU64},
	vm.GASPRICE: {nil, ArgU256}, vm.RETURNDATASIZE: {nil, ArgU64},
	vm.COINBASE: {nil, ArgU256}, vm.TIMESTAMP: {nil, ArgU64}, vm.NUMBER: {nil, ArgU64},
	vm.PREVRANDAO: {nil, ArgU256}, vm.GASLIMIT: {nil, ArgU64}, vm.CHAINID: {nil, ArgU256},
	vm.SELFBALANCE: {nil, ArgU256}, vm.BASEFEE: {nil, ArgU256}, vm.BLOBBASEFEE: {nil, ArgU256},
	vm.GAS: {nil, ArgU64},

	vm.BALANCE: {[]RuntimeArgKind{ArgU256}, ArgU256},
	vm.EXTCODESIZE: {[]RuntimeArgKind{ArgU256}, ArgU64},
	vm.EXTCODEHASH: {[]RuntimeArgKind{ArgU256}, ArgBytes32},
	vm.BLOCKHASH: {[]RuntimeArgKind{ArgU64}, ArgBytes32},
	vm.BLOBHASH: {[]RuntimeArgKind{ArgU64}, ArgU256},
	vm.CALLDATALOAD: {[]RuntimeArgKind{ArgU64}, ArgU256},

	vm.CALLDATACOPY: {[]RuntimeArgKind{ArgU64, ArgU64, ArgU64}, ArgVoid},
	vm.CODECOPY:      {[]RuntimeArgKind{ArgU64, ArgU64, ArgU64}, ArgVoid},
	vm.RETURNDATACOPY: {[]RuntimeArgKind{ArgU64, ArgU64, ArgU64}, ArgVoid},
	vm.EXTCODECOPY: {[]RuntimeArgKind{ArgU256, ArgU64, ArgU64, ArgU64}, ArgVoid},

	vm.SLOAD:  {[]RuntimeArgKind{ArgU256}, ArgU256},
	vm.SSTORE: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgVoid},
	vm.TLOAD:  {[]RuntimeArgKind{ArgU256}, ArgU256},
	vm.TSTORE: {[]RuntimeArgKind{ArgU256, ArgU256}, ArgVoid},
	vm.MLOAD:  {[]RuntimeArgKind{ArgU64}, ArgU256},
	vm.MSTORE: {[]RuntimeArgKind{ArgU64, ArgU256}, ArgVoid},
	vm.MSTORE8: {[]RuntimeArgKind{ArgU64, ArgU256}, ArgVoid},
	vm.MCOPY:  {[]RuntimeArgKind{ArgU64, ArgU64, ArgU64}, ArgVoid},

	vm.SELFDESTRUCT: {[]RuntimeArgKind{ArgU256}, ArgVoid},
}

// Compile runs the C10 visitor over code and returns the lowered Program.
// rules gates which opcodes are legal (mirrors vm.NewJumpTable's masking).
func Compile(code []byte, cfg vm.Config) (*Program, error) {
	b := newBuilder(cfg)
	pc := uint64(0)
	for pc < uint64(len(code)) {
		op := vm.OpCode(code[pc])

		if op.IsPush() {
			n := op.PushSize()
			start := pc + 1
			end := start + uint64(n)
			if end > uint64(len(code)) {
				end = uint64(len(code))
			}
			var buf [32]byte
			copy(buf[32-n:], code[start:end])
			var v vm.U256
			v.SetBytes(buf[:])
			b.push(ConstOperand(v))
			pc = end
			continue
		}

		switch {
		case op >= vm.DUP1 && op <= vm.DUP16:
			b.dup(int(op-vm.DUP1) + 1)
			pc++
			continue
		case op >= vm.SWAP1 && op <= vm.SWAP16:
			b.swap(int(op-vm.SWAP1) + 1)
			pc++
			continue
		case op >= vm.LOG0 && op <= vm.LOG4:
			if err := visitLog(b, int(op-vm.LOG0)); err != nil {
				return nil, err
			}
			pc++
			continue
		}

		switch op {
		case vm.POP:
			b.pop()
		case vm.JUMPDEST:
			if pc != b.block.FirstPC {
				b.block.Term = Terminator{Kind: TermFallthrough}
				b.spillLive()
				b.startBlock(pc)
			}
		case vm.JUMP:
			dest := b.pop()
			b.block.Term = Terminator{Kind: TermJump, Dest: dest}
			b.spillLive()
			b.startBlock(pc + 1)
		case vm.JUMPI:
			dest, cond := b.pop(), b.pop()
			b.block.Term = Terminator{Kind: TermJumpIf, Dest: dest, Cond: cond}
			b.spillLive()
			b.startBlock(pc + 1)
		case vm.STOP:
			b.block.Term = Terminator{Kind: TermStop}
		case vm.RETURN, vm.REVERT:
			off, size := b.pop(), b.pop()
			kind := TermReturn
			if op == vm.REVERT {
				kind = TermRevert
			}
			b.block.Term = Terminator{Kind: kind, ReturnOffset: off, ReturnSize: size}
		case vm.SELFDESTRUCT:
			addr := b.pop()
			emitRuntimeCall(b, "selfdestruct", ArgVoid, []RuntimeArgKind{ArgU256}, addr)
			b.block.Term = Terminator{Kind: TermSelfdestruct}
		case vm.INVALID:
			b.block.Term = Terminator{Kind: TermInvalid}
		default:
			if err := visitOpcode(b, op); err != nil {
				return nil, err
			}
		}
		pc++
	}
	return b.prog, nil
}

func visitLog(b *Builder, n int) error {
	off, size := b.pop(), b.pop()
	argKinds := []RuntimeArgKind{ArgU64, ArgU64}
	ops := []Operand{off, size}
	for i := 0; i < n; i++ {
		ops = append(ops, b.pop())
		argKinds = append(argKinds, ArgU256)
	}
	name := []string{"log0", "log1", "log2", "log3", "log4"}[n]
	emitRuntimeCall(b, name, ArgVoid, argKinds, ops...)
	return nil
}

func visitOpcode(b *Builder, op vm.OpCode) error {
	switch op {
	case vm.ADD:
		rhs, lhs := b.pop(), b.pop()
		out := lowerAdd(b, lhs.LimbsOf(b), rhs.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.SUB:
		// EVM SUB computes top - second (the first-popped value minus the
		// second-popped), matching instructions.go's opSub: x.Sub(x, y)
		// where x is popped first.
		top, second := b.pop(), b.pop()
		out := lowerSub(b, top.LimbsOf(b), second.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.AND, vm.OR, vm.XOR:
		rhs, lhs := b.pop(), b.pop()
		op64 := map[vm.OpCode]LimbOp{vm.AND: LimbAnd, vm.OR: LimbOr, vm.XOR: LimbXor}[op]
		out := lowerBitwise(b, op64, lhs.LimbsOf(b), rhs.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.NOT:
		v := b.pop()
		out := lowerNot(b, v.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.SHL, vm.SHR, vm.SAR:
		shiftAmt, val := b.pop(), b.pop()
		dir := shiftLeft
		if op != vm.SHL {
			dir = shiftRight
		}
		out := lowerShift(b, dir, op == vm.SAR, val.LimbsOf(b), shiftAmt.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.ISZERO:
		v := b.pop()
		out := lowerIsZero(b, v.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.EQ:
		top, second := b.pop(), b.pop()
		out := lowerEq(b, top.LimbsOf(b), second.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	case vm.LT, vm.GT, vm.SLT, vm.SGT:
		// EVM predicate is top OP second (opLt etc.: x.Lt(y) with x popped
		// first), so top must be lowerCompare's lhs.
		top, second := b.pop(), b.pop()
		kind := map[vm.OpCode]compareKind{vm.LT: cmpLT, vm.GT: cmpGT, vm.SLT: cmpSLT, vm.SGT: cmpSGT}[op]
		out := lowerCompare(b, kind, top.LimbsOf(b), second.LimbsOf(b))
		b.push(Operand{Kind: MultiLimbInstr, Limbs: out})
		return nil
	}

	if op == vm.CALL || op == vm.CALLCODE || op == vm.DELEGATECALL || op == vm.STATICCALL {
		return visitCall(b, op)
	}
	if op == vm.CREATE || op == vm.CREATE2 {
		return visitCreate(b, op)
	}

	name, ok := vmOpToRuntimeName[op]
	if !ok {
		return errors.Wrapf(ErrUnsupportedOpcode, "opcode 0x%x", byte(op))
	}
	sig, ok := fixedRuntimeSigs[op]
	if !ok {
		return errors.Wrapf(ErrUnsupportedOpcode, "opcode 0x%x has no runtime signature", byte(op))
	}
	ops := make([]Operand, len(sig.args))
	for i := range sig.args {
		ops[i] = b.pop()
	}
	result := emitRuntimeCall(b, name, sig.ret, sig.args, ops...)
	if sig.ret != ArgVoid {
		b.push(result)
	}
	return nil
}

func visitCall(b *Builder, op vm.OpCode) error {
	gas, addr := b.pop(), b.pop()
	var value Operand
	hasValue := op == vm.CALL || op == vm.CALLCODE
	if hasValue {
		value = b.pop()
	}
	inOff, inSize := b.pop(), b.pop()
	outOff, outSize := b.pop(), b.pop()

	name := map[vm.OpCode]string{
		vm.CALL: "call", vm.CALLCODE: "callcode",
		vm.DELEGATECALL: "delegatecall", vm.STATICCALL: "staticcall",
	}[op]
	argKinds := []RuntimeArgKind{ArgU64, ArgU256}
	ops := []Operand{gas, addr}
	if hasValue {
		argKinds = append(argKinds, ArgU256)
		ops = append(ops, value)
	}
	argKinds = append(argKinds, ArgU64, ArgU64, ArgU64, ArgU64)
	ops = append(ops, inOff, inSize, outOff, outSize)

	result := emitRuntimeCall(b, name, ArgU64, argKinds, ops...)
	b.push(result)
	return nil
}

func visitCreate(b *Builder, op vm.OpCode) error {
	value, off, size := b.pop(), b.pop(), b.pop()
	if op == vm.CREATE {
		result := emitRuntimeCall(b, "create", ArgU256,
			[]RuntimeArgKind{ArgU256, ArgU64, ArgU64}, value, off, size)
		b.push(result)
		return nil
	}
	salt := b.pop()
	result := emitRuntimeCall(b, "create2", ArgU256,
		[]RuntimeArgKind{ArgU256, ArgU64, ArgU64, ArgU256}, value, off, size, salt)
	b.push(result)
	return nil
}
