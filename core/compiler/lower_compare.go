package compiler

// lowerIsZero implements C12's ISZERO: reduce the four limbs by OR,
// compare to zero, extend to limb0; other limbs are zero.
func lowerIsZero(b *Builder, v [4]*Limb) [4]*Limb {
	or := v[0]
	for i := 1; i < 4; i++ {
		or = b.block.emit(&Limb{Op: LimbOr, A: or, B: v[i]})
	}
	result := b.block.emit(&Limb{Op: LimbEq, A: or, B: b.const64(0)})
	return [4]*Limb{result, b.const64(0), b.const64(0), b.const64(0)}
}

// lowerEq implements C12's EQ: four limb-wise equalities AND'ed together.
func lowerEq(b *Builder, lhs, rhs [4]*Limb) [4]*Limb {
	acc := b.block.emit(&Limb{Op: LimbEq, A: lhs[0], B: rhs[0]})
	for i := 1; i < 4; i++ {
		eq := b.block.emit(&Limb{Op: LimbEq, A: lhs[i], B: rhs[i]})
		acc = b.block.emit(&Limb{Op: LimbAnd, A: acc, B: eq})
	}
	return [4]*Limb{acc, b.const64(0), b.const64(0), b.const64(0)}
}

// compareKind distinguishes the four ordered comparisons; only the top
// limb differs between signed and unsigned.
type compareKind uint8

const (
	cmpLT compareKind = iota
	cmpGT
	cmpSLT
	cmpSGT
)

// lowerCompare implements C12's LT/GT/SLT/SGT. lt_i/eq_i are computed for
// limbs 3 down to 0, then folded into a select chain built from the
// bottom (limb 0) up: the most significant differing limb decides the
// result, so at each step "equal so far" defers to the lower limbs'
// already-folded verdict and "not equal" is decided by this limb's lt_i.
func lowerCompare(b *Builder, kind compareKind, lhs, rhs [4]*Limb) [4]*Limb {
	ltAt := func(i int) *Limb {
		if (kind == cmpSLT || kind == cmpSGT) && i == 3 {
			if kind == cmpSLT {
				return b.block.emit(&Limb{Op: LimbLtS, A: lhs[i], B: rhs[i]})
			}
			return b.block.emit(&Limb{Op: LimbLtS, A: rhs[i], B: lhs[i]})
		}
		if kind == cmpLT || kind == cmpSLT {
			return b.block.emit(&Limb{Op: LimbLtU, A: lhs[i], B: rhs[i]})
		}
		return b.block.emit(&Limb{Op: LimbLtU, A: rhs[i], B: lhs[i]})
	}

	result := ltAt(0)
	for i := 1; i <= 3; i++ {
		eq := b.block.emit(&Limb{Op: LimbEq, A: lhs[i], B: rhs[i]})
		result = b.block.emit(&Limb{Op: LimbSelect, A: eq, B: result, C: ltAt(i)})
	}
	return [4]*Limb{result, b.const64(0), b.const64(0), b.const64(0)}
}
