package compiler

import "github.com/pkg/errors"

// ArgValue is a runtime-call argument or return value in its evaluated
// (as opposed to lowered-MIR) form.
type ArgValue struct {
	Kind  RuntimeArgKind
	U64   uint64
	Bytes []byte    // ArgBytes32, always 32 bytes
	U256  [4]uint64 // little-endian limbs
}

// RuntimeFunc is one entry of the runtime function table (C13). The real
// table (runtime/table.go, built against a vm.Host) is injected here; this
// package only defines the calling convention.
type RuntimeFunc func(args []ArgValue) (ArgValue, error)

// RuntimeTable is the C13 "struct of function pointers", indexed by name.
type RuntimeTable map[string]RuntimeFunc

// Eval walks prog's basic blocks with a tree-walk interpreter, calling
// into table for every lowered runtime call. It exists so tests can
// assert the compiler's output is semantically equivalent to core/vm's
// direct interpreter (§8) without a real backend: this is not how a
// production build would execute a Program, but it is exactly what the
// lowering rules in C11/C12/C13 need to be checked against.
type Eval struct {
	table RuntimeTable
	vars  map[*VarSlot]uint64
	calls map[*RuntimeCall]ArgValue
}

func NewEval(table RuntimeTable) *Eval {
	return &Eval{table: table, vars: map[*VarSlot]uint64{}, calls: map[*RuntimeCall]ArgValue{}}
}

// Run executes prog starting at its entry block, following terminators
// until it hits a RETURN/REVERT/STOP/SELFDESTRUCT/INVALID, and returns the
// output bytes (nil for STOP) or an error.
func (e *Eval) Run(prog *Program) ([]byte, error) {
	blk := prog.Blocks[0]
	for {
		results := make(map[*Limb]uint64, len(blk.Nodes))
		for _, n := range blk.Nodes {
			v, err := e.evalLimb(n, results)
			if err != nil {
				return nil, err
			}
			results[n] = v
		}
		switch blk.Term.Kind {
		case TermStop:
			return nil, nil
		case TermReturn, TermRevert:
			off := e.evalOperandLow64(blk.Term.ReturnOffset, results)
			sz := e.evalOperandLow64(blk.Term.ReturnSize, results)
			out, err := e.table["memload_raw"](args(u64(off), u64(sz)))
			if err != nil {
				return nil, err
			}
			if blk.Term.Kind == TermRevert {
				return out.Bytes, errors.New("execution reverted")
			}
			return out.Bytes, nil
		case TermSelfdestruct:
			return nil, nil
		case TermInvalid:
			return nil, errors.New("invalid instruction")
		case TermJump:
			pc := e.evalOperandLow64(blk.Term.Dest, results)
			idx, ok := prog.blockByPC[pc]
			if !ok {
				return nil, errors.Errorf("compiler: jump to unknown block at pc %d", pc)
			}
			blk = prog.Blocks[idx]
		case TermJumpIf:
			cond := e.evalOperandLow64(blk.Term.Cond, results)
			if cond != 0 {
				pc := e.evalOperandLow64(blk.Term.Dest, results)
				idx, ok := prog.blockByPC[pc]
				if !ok {
					return nil, errors.Errorf("compiler: jumpi to unknown block at pc %d", pc)
				}
				blk = prog.Blocks[idx]
			} else {
				idx := e.nextBlock(prog, blk)
				if idx < 0 {
					return nil, nil
				}
				blk = prog.Blocks[idx]
			}
		default: // TermFallthrough
			idx := e.nextBlock(prog, blk)
			if idx < 0 {
				return nil, nil
			}
			blk = prog.Blocks[idx]
		}
	}
}

func (e *Eval) nextBlock(prog *Program, cur *BasicBlock) int {
	for i, b := range prog.Blocks {
		if b == cur {
			if i+1 < len(prog.Blocks) {
				return i + 1
			}
			return -1
		}
	}
	return -1
}

func (e *Eval) evalOperandLow64(o Operand, results map[*Limb]uint64) uint64 {
	switch o.Kind {
	case ConstantU256:
		return o.Const.Uint64()
	case MultiLimbInstr:
		return results[o.Limbs[0]]
	case MultiLimbVar:
		return e.vars[o.Vars[0]]
	case SingleTyped:
		return results[o.Single]
	default:
		return 0
	}
}

func (e *Eval) evalLimb(l *Limb, results map[*Limb]uint64) (uint64, error) {
	switch l.Op {
	case LimbConst:
		return l.ConstV, nil
	case LimbReadVar:
		return e.vars[l.Var], nil
	case LimbWriteVar:
		v := results[l.A]
		e.vars[l.Var] = v
		return v, nil
	case LimbAddCarry:
		return results[l.A] + results[l.B] + results[l.C], nil
	case LimbSubBorrow:
		return results[l.A] - results[l.B] - results[l.C], nil
	case LimbAnd:
		return results[l.A] & results[l.B], nil
	case LimbOr:
		return results[l.A] | results[l.B], nil
	case LimbXor:
		return results[l.A] ^ results[l.B], nil
	case LimbNot:
		return ^results[l.A], nil
	case LimbShl:
		return results[l.A] << (results[l.B] & 63), nil
	case LimbShr:
		return results[l.A] >> (results[l.B] & 63), nil
	case LimbSar:
		return uint64(int64(results[l.A]) >> (results[l.B] & 63)), nil
	case LimbEq:
		if results[l.A] == results[l.B] {
			return 1, nil
		}
		return 0, nil
	case LimbLtU:
		if results[l.A] < results[l.B] {
			return 1, nil
		}
		return 0, nil
	case LimbLtS:
		if int64(results[l.A]) < int64(results[l.B]) {
			return 1, nil
		}
		return 0, nil
	case LimbSelect:
		if results[l.A] != 0 {
			return results[l.B], nil
		}
		return results[l.C], nil
	case LimbCall:
		return e.evalCall(l, results)
	}
	return 0, errors.Errorf("compiler: unhandled limb op %d", l.Op)
}

func (e *Eval) evalCall(l *Limb, results map[*Limb]uint64) (uint64, error) {
	res, ok := e.calls[l.Call]
	if !ok {
		fn, ok := e.table[l.Call.Name]
		if !ok {
			return 0, errors.Errorf("compiler: no runtime function %q", l.Call.Name)
		}
		callArgs := make([]ArgValue, len(l.Call.Args))
		for i, a := range l.Call.Args {
			callArgs[i] = e.evalArg(a, results)
		}
		var err error
		res, err = fn(callArgs)
		if err != nil {
			return 0, err
		}
		e.calls[l.Call] = res
	}
	switch l.Call.Ret {
	case ArgU64:
		return res.U64, nil
	case ArgU256:
		return res.U256[l.ConstV], nil
	default:
		return 0, nil
	}
}

func (e *Eval) evalArg(a RuntimeArg, results map[*Limb]uint64) ArgValue {
	switch a.Kind {
	case ArgU64:
		return ArgValue{Kind: ArgU64, U64: results[a.U64]}
	case ArgBytes32:
		return ArgValue{Kind: ArgBytes32, Bytes: nil}
	case ArgU256:
		var limbs [4]uint64
		for i := 0; i < 4; i++ {
			limbs[i] = results[a.Limbs[i]]
		}
		return ArgValue{Kind: ArgU256, U256: limbs}
	default:
		return ArgValue{Kind: ArgVoid}
	}
}

func args(vs ...ArgValue) []ArgValue { return vs }
func u64(v uint64) ArgValue          { return ArgValue{Kind: ArgU64, U64: v} }
