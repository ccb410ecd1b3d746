package compiler

import "github.com/bnb-chain/evmcore/core/vm"

// OperandKind tags the cases an Operand (C9) may carry. Multi-limb tuples
// exist only for UINT256; the constructors below assert that.
type OperandKind uint8

const (
	Empty OperandKind = iota
	ConstantU256
	MultiLimbInstr
	MultiLimbVar
	SingleTyped
)

// SingleKind distinguishes the narrower single-instruction operand shapes
// used when a value is semantically smaller than a full U256.
type SingleKind uint8

const (
	UINT64 SingleKind = iota
	BYTES32
	ADDRESS
)

// Operand is one compiler-visible value on the shadow stack (C9). Exactly
// one of the payload fields is meaningful, selected by Kind.
type Operand struct {
	Kind   OperandKind
	Const  vm.U256      // ConstantU256
	Limbs  [4]*Limb      // MultiLimbInstr: four i64-producing MIR nodes, little-endian limb order
	Vars   [4]*VarSlot    // MultiLimbVar: four read/write variable slots, little-endian limb order
	Single *Limb         // SingleTyped: one instruction producing the narrower value
	SKind  SingleKind    // SingleTyped only
}

// EmptyOperand is the sentinel used for void-returning opcodes.
func EmptyOperand() Operand { return Operand{Kind: Empty} }

// ConstOperand materialises a constant U256 into an operand. It is not
// emitted into the MIR program until something consumes it (C9: "only
// when used").
func ConstOperand(v vm.U256) Operand { return Operand{Kind: ConstantU256, Const: v} }

// SingleOperand wraps a narrower single-instruction value.
func SingleOperand(kind SingleKind, l *Limb) Operand {
	return Operand{Kind: SingleTyped, Single: l, SKind: kind}
}

// LimbsOf returns the four limb-producing nodes for a multi-limb operand,
// materialising a constant into four Const64 nodes on first use and
// loading a variable tuple's four slots into Read nodes. Panics on a
// SingleTyped/Empty operand — the visitor must never feed one to a
// multi-limb lowering rule.
func (o Operand) LimbsOf(b *Builder) [4]*Limb {
	switch o.Kind {
	case ConstantU256:
		limbs := vm.Limbs(&o.Const)
		return [4]*Limb{b.const64(limbs[0]), b.const64(limbs[1]), b.const64(limbs[2]), b.const64(limbs[3])}
	case MultiLimbInstr:
		return o.Limbs
	case MultiLimbVar:
		var out [4]*Limb
		for i := 0; i < 4; i++ {
			out[i] = b.readVar(o.Vars[i])
		}
		return out
	default:
		panic("compiler: LimbsOf on a non-multi-limb operand")
	}
}
