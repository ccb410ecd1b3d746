package compiler

// lowerAdd implements C11's ADD: four sequential 64-bit add-with-carry
// pairs, limb 0 (least significant) first; the carry out of the top limb
// is discarded (wrap-around, matching U256's modular arithmetic).
func lowerAdd(b *Builder, lhs, rhs [4]*Limb) [4]*Limb {
	var out [4]*Limb
	var carry *Limb
	for i := 0; i < 4; i++ {
		if carry == nil {
			out[i] = b.block.emit(newLimb(LimbAddCarry, lhs[i], rhs[i], b.const64(0)))
		} else {
			out[i] = b.block.emit(newLimb(LimbAddCarry, lhs[i], rhs[i], carry))
		}
		carry = carryOfAdd(b, lhs[i], rhs[i], out[i])
	}
	return out
}

// carryOfAdd computes carry-out = result < lhs (unsigned), the standard
// add-with-carry overflow test.
func carryOfAdd(b *Builder, lhs, _, result *Limb) *Limb {
	return b.block.emit(newLimb(LimbLtU, result, lhs, nil))
}

// lowerSub implements C11's SUB: four sub-with-borrow pairs. borrow_out
// of limb i = (lhs_i < rhs_i) | (diff1_i < borrow_in), where diff1_i =
// lhs_i - rhs_i computed before the borrow-in subtraction.
func lowerSub(b *Builder, lhs, rhs [4]*Limb) [4]*Limb {
	var out [4]*Limb
	var borrow *Limb
	for i := 0; i < 4; i++ {
		bi := borrow
		if bi == nil {
			bi = b.const64(0)
		}
		diff1 := b.block.emit(newLimb(LimbSubBorrow, lhs[i], rhs[i], b.const64(0)))
		final := b.block.emit(newLimb(LimbSubBorrow, diff1, bi, b.const64(0)))
		out[i] = final

		lhsLtRhs := b.block.emit(newLimb(LimbLtU, lhs[i], rhs[i], nil))
		diff1LtBi := b.block.emit(newLimb(LimbLtU, diff1, bi, nil))
		or := b.block.emit(newLimb(LimbOr, lhsLtRhs, diff1LtBi, nil))
		borrow = or
	}
	return out
}

// lowerBitwise implements C11's AND/OR/XOR: four independent limb-wise ops.
func lowerBitwise(b *Builder, op LimbOp, lhs, rhs [4]*Limb) [4]*Limb {
	var out [4]*Limb
	for i := 0; i < 4; i++ {
		out[i] = b.block.emit(newLimb(op, lhs[i], rhs[i], nil))
	}
	return out
}

// lowerNot implements C11's NOT: four independent limb-wise bitwise-nots.
func lowerNot(b *Builder, v [4]*Limb) [4]*Limb {
	var out [4]*Limb
	for i := 0; i < 4; i++ {
		out[i] = b.block.emit(newLimb(LimbNot, v[i], nil, nil))
	}
	return out
}

// shiftDirection selects which way an intra-limb carry flows: SHL pulls
// bits up from the limb below, SHR/SAR pull bits down from the limb above.
type shiftDirection uint8

const (
	shiftLeft shiftDirection = iota
	shiftRight
)

// lowerShift implements C11's branch-free SHL/SHR/SAR lowering. shiftVal
// is the four-limb shift-amount operand (only its low limb matters unless
// the large-shift flag fires). arithmetic selects SAR's sign-extending
// carry fill and LargeShiftResult.
func lowerShift(b *Builder, dir shiftDirection, arithmetic bool, val, shiftVal [4]*Limb) [4]*Limb {
	shiftLow := shiftVal[0]

	// large-shift flag: any high limb of the shift amount is non-zero, or
	// the low limb alone already exceeds 255.
	hiNonZero := b.const64(0)
	for i := 1; i < 4; i++ {
		isZero := b.block.emit(&Limb{Op: LimbEq, A: shiftVal[i], B: b.const64(0)})
		notZero := b.block.emit(&Limb{Op: LimbXor, A: isZero, B: b.const64(1)})
		hiNonZero = b.block.emit(&Limb{Op: LimbOr, A: hiNonZero, B: notZero})
	}
	geq256 := b.block.emit(&Limb{Op: LimbLtU, A: b.const64(255), B: shiftLow})
	largeShift := b.block.emit(&Limb{Op: LimbOr, A: hiNonZero, B: geq256})

	intraShift := b.block.emit(&Limb{Op: LimbAnd, A: shiftLow, B: b.const64(63)})
	// displacement = shift / 64, capped implicitly since a large shift is
	// overridden below regardless of what displacement computes to.
	displacementShift := b.block.emit(&Limb{Op: LimbShr, A: shiftLow, B: b.const64(6)})

	inv := b.block.emit(&Limb{Op: LimbSubBorrow, A: b.const64(64), B: intraShift, C: b.const64(0)})

	var out [4]*Limb
	for i := 0; i < 4; i++ {
		primary := selectByDisplacement(b, dir, val, i, displacementShift, intraShift)
		carry := selectCarry(b, dir, val, i, displacementShift, inv, intraShift)
		out[i] = b.block.emit(&Limb{Op: LimbOr, A: primary, B: carry})
	}

	large := largeShiftResult(b, dir, arithmetic, val)
	for i := 0; i < 4; i++ {
		out[i] = b.block.emit(&Limb{Op: LimbSelect, A: largeShift, B: large[i], C: out[i]})
	}
	return out
}

// selectByDisplacement builds the select-chain over all four input limbs
// that picks the one at inter-limb displacement d from limb i, shifted
// intra-limb by the low 6 bits of the shift amount.
func selectByDisplacement(b *Builder, dir shiftDirection, val [4]*Limb, i int, displacement, intra *Limb) *Limb {
	var chain *Limb
	for d := 0; d < 4; d++ {
		var srcIdx int
		if dir == shiftLeft {
			srcIdx = i - d
		} else {
			srcIdx = i + d
		}
		var src *Limb
		if srcIdx < 0 || srcIdx > 3 {
			src = b.const64(0)
		} else {
			src = val[srcIdx]
		}
		var shifted *Limb
		if dir == shiftLeft {
			shifted = b.block.emit(&Limb{Op: LimbShl, A: src, B: intra})
		} else {
			shifted = b.block.emit(&Limb{Op: LimbShr, A: src, B: intra})
		}
		isD := b.block.emit(&Limb{Op: LimbEq, A: displacement, B: b.const64(uint64(d))})
		if chain == nil {
			chain = shifted
		} else {
			chain = b.block.emit(&Limb{Op: LimbSelect, A: isD, B: shifted, C: chain})
		}
	}
	return chain
}

// selectCarry mirrors selectByDisplacement for the adjacent-limb carry-in
// contribution, shifted by 64-intra (SHL) or intra (SHR/SAR).
func selectCarry(b *Builder, dir shiftDirection, val [4]*Limb, i int, displacement, inv, intra *Limb) *Limb {
	var chain *Limb
	for d := 0; d < 4; d++ {
		var srcIdx int
		if dir == shiftLeft {
			srcIdx = i - d - 1
		} else {
			srcIdx = i + d + 1
		}
		var src *Limb
		if srcIdx < 0 || srcIdx > 3 {
			src = b.const64(0)
		} else {
			src = val[srcIdx]
		}
		var shifted *Limb
		if dir == shiftLeft {
			shifted = b.block.emit(&Limb{Op: LimbShr, A: src, B: inv})
		} else {
			shifted = b.block.emit(&Limb{Op: LimbShl, A: src, B: inv})
		}
		isD := b.block.emit(&Limb{Op: LimbEq, A: displacement, B: b.const64(uint64(d))})
		if chain == nil {
			chain = shifted
		} else {
			chain = b.block.emit(&Limb{Op: LimbSelect, A: isD, B: shifted, C: chain})
		}
	}
	// A zero intra-limb shift means "shift by 0" for the carry contribution,
	// which the shift-by-inv (=64) formula would otherwise compute as a
	// full 64-bit shift (undefined for a 64-bit shift amount); mask it out.
	intraIsZero := b.block.emit(&Limb{Op: LimbEq, A: intra, B: b.const64(0)})
	return b.block.emit(&Limb{Op: LimbSelect, A: intraIsZero, B: b.const64(0), C: chain})
}

// largeShiftResult is C11's LargeShiftResult: zero for SHL/SHR, or an
// all-ones word for SAR when the operand's top bit (sign) is set.
func largeShiftResult(b *Builder, dir shiftDirection, arithmetic bool, val [4]*Limb) [4]*Limb {
	zero := [4]*Limb{b.const64(0), b.const64(0), b.const64(0), b.const64(0)}
	if !arithmetic {
		return zero
	}
	signBit := b.block.emit(&Limb{Op: LimbShr, A: val[3], B: b.const64(63)})
	signSet := b.block.emit(&Limb{Op: LimbEq, A: signBit, B: b.const64(1)})
	allOnes := b.const64(^uint64(0))
	var out [4]*Limb
	for i := 0; i < 4; i++ {
		out[i] = b.block.emit(&Limb{Op: LimbSelect, A: signSet, B: allOnes, C: zero[i]})
	}
	return out
}
