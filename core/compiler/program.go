package compiler

import (
	"github.com/bnb-chain/evmcore/core/vm"
	"github.com/pkg/errors"
)

// Program is the compiled form of one contract's code: a sequence of basic
// blocks plus the runtime calls (C13) they reference. It has no backend of
// its own — codegen/register-allocation is out of scope (§4.11's
// rationale names them as consumers of this shape) — but Eval (eval.go)
// interprets it directly for parity testing against core/vm (§8).
type Program struct {
	Blocks    []*BasicBlock
	blockByPC map[uint64]int
	nextVar   int
}

// Builder carries the mutable state of one compile pass: the operand
// stack that shadows the EVM stack (C10), the block currently being
// filled, and variable-slot allocation for values that cross block
// boundaries.
type Builder struct {
	prog  *Program
	block *BasicBlock
	stack []Operand
	rules vm.Config
}

// ErrUnsupportedOpcode is returned at compile time for any opcode the
// visitor has no lowering rule for (C10).
var ErrUnsupportedOpcode = errors.New("unsupported opcode")

func newBuilder(rules vm.Config) *Builder {
	prog := &Program{blockByPC: map[uint64]int{}}
	b := &Builder{prog: prog, rules: rules}
	b.startBlock(0)
	return b
}

func (b *Builder) startBlock(pc uint64) *BasicBlock {
	blk := &BasicBlock{FirstPC: pc}
	b.prog.blockByPC[pc] = len(b.prog.Blocks)
	b.prog.Blocks = append(b.prog.Blocks, blk)
	b.block = blk
	return blk
}

func (b *Builder) push(o Operand) { b.stack = append(b.stack, o) }

func (b *Builder) pop() Operand {
	n := len(b.stack) - 1
	v := b.stack[n]
	b.stack = b.stack[:n]
	return v
}

func (b *Builder) peek(n int) *Operand { return &b.stack[len(b.stack)-1-n] }

func (b *Builder) swap(n int) {
	top := len(b.stack) - 1
	b.stack[top], b.stack[top-n] = b.stack[top-n], b.stack[top]
}

func (b *Builder) dup(n int) { b.push(b.stack[len(b.stack)-n]) }

func (b *Builder) const64(v uint64) *Limb {
	return b.block.emit(&Limb{Op: LimbConst, ConstV: v})
}

func (b *Builder) allocVar() *VarSlot {
	v := &VarSlot{id: b.prog.nextVar}
	b.prog.nextVar++
	return v
}

func (b *Builder) readVar(v *VarSlot) *Limb {
	return b.block.emit(&Limb{Op: LimbReadVar, Var: v})
}

// spillLive materialises every operand still on the shadow stack into a
// multi-limb variable tuple, since a jump may enter a block whose
// predecessor is unknown to the linear pass. This is the "materialise a
// stack slot across a control-flow edge" case named in C9's operand list.
func (b *Builder) spillLive() []Operand {
	spilled := make([]Operand, len(b.stack))
	for i, o := range b.stack {
		if o.Kind == ConstantU256 || o.Kind == MultiLimbInstr {
			limbs := o.LimbsOf(b)
			var vars [4]*VarSlot
			for j := 0; j < 4; j++ {
				vars[j] = b.allocVar()
			}
			b.writeVars(vars, limbs)
			spilled[i] = Operand{Kind: MultiLimbVar, Vars: vars}
		} else {
			spilled[i] = o
		}
	}
	b.stack = spilled
	return spilled
}

func (b *Builder) writeVars(vars [4]*VarSlot, limbs [4]*Limb) {
	for i := 0; i < 4; i++ {
		b.block.emit(&Limb{Op: LimbWriteVar, Var: vars[i], A: limbs[i]})
	}
}
