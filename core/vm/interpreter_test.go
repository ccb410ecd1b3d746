package vm

import (
	"bytes"
	"testing"

	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/crypto"
	"github.com/bnb-chain/evmcore/params"
)

func runTopLevel(t *testing.T, host Host, code []byte, gas uint64) (ret []byte, leftOver uint64, err error, frame *Frame) {
	t.Helper()
	frame, err = NewTopLevelFrame(common.Address{}, common.Address{1}, NewU256(0), gas, code, nil)
	if err != nil {
		return nil, 0, err, nil
	}
	evm := NewEVM(host, params.RulesForRevision(params.Cancun))
	ret, leftOver, err = evm.Call(frame)
	return ret, leftOver, err, frame
}

// §8 scenario 1: PUSH1 3, PUSH1 4, ADD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN.
func TestScenarioSimpleAdd(t *testing.T) {
	code := []byte{0x60, 0x03, 0x60, 0x04, 0x01, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	host := newFakeHost()
	ret, leftOver, err, frame := runTopLevel(t, host, code, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]byte, 32)
	want[31] = 7
	if !bytes.Equal(ret, want) {
		t.Fatalf("return data = %x, want %x", ret, want)
	}
	gasUsed := (100000 - params.TxGas) - leftOver
	if gasUsed != 24 {
		t.Fatalf("gas used = %d, want 24 (7*GasFastestStep + 1-word memory expansion)", gasUsed)
	}
	_ = frame
}

// §8 scenario 2: KECCAK256 of "abc".
func TestScenarioKeccakAbc(t *testing.T) {
	// MSTORE "abc" left-padded to 32 bytes at offset 0: PUSH32 <abc-padded>, PUSH1 0, MSTORE,
	// then KECCAK256(0,3), PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN.
	var padded [32]byte
	copy(padded[29:], "abc")
	code := append([]byte{0x7f}, padded[:]...)
	code = append(code, 0x60, 0x00, 0x52) // PUSH1 0, MSTORE
	code = append(code, 0x60, 0x03, 0x60, 0x00, 0x20)
	code = append(code, 0x60, 0x00, 0x52)
	code = append(code, 0x60, 0x20, 0x60, 0x00, 0xf3)

	host := newFakeHost()
	ret, _, err, _ := runTopLevel(t, host, code, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := crypto.Keccak256([]byte("abc"))
	if !bytes.Equal(ret, want) {
		t.Fatalf("keccak(abc) = %x, want %x", ret, want)
	}
	wantHex := common.HexToHash("0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45")
	if !bytes.Equal(ret, wantHex.Bytes()) {
		t.Fatalf("keccak(abc) = %x, want golden %x", ret, wantHex)
	}
}

// §8 scenario 3: REVERT retains gas and return-data, credits no refund.
func TestScenarioRevertRetainsGas(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x00, 0xfd} // PUSH1 1, PUSH1 0, REVERT
	host := newFakeHost()
	ret, leftOver, err, frame := runTopLevel(t, host, code, 100000)
	if err != ErrExecutionReverted {
		t.Fatalf("err = %v, want ErrExecutionReverted", err)
	}
	if len(ret) != 1 || ret[0] != 0 {
		t.Fatalf("return data = %x, want one zero byte", ret)
	}
	if leftOver == 0 {
		t.Fatalf("leftOver = 0, want > 0")
	}
	if frame.GasRefund != 0 {
		t.Fatalf("GasRefund = %d, want 0 on revert", frame.GasRefund)
	}
}

// §8 scenario 4: cold SSTORE 0->1 charges 22100 on Cancun; a subsequent
// SSTORE to an already-warm slot in a fresh frame then charges only 100.
func TestScenarioSstoreColdThenWarm(t *testing.T) {
	// PUSH1 1, PUSH1 0, SSTORE, STOP
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x00}

	coldHost := newFakeHost()
	_, coldLeftOver, err, _ := runTopLevel(t, coldHost, code, 100000)
	if err != nil {
		t.Fatalf("cold run: unexpected error: %v", err)
	}
	coldUsed := (100000 - params.TxGas) - coldLeftOver
	if coldUsed != 22106 { // PUSH1+PUSH1 (3+3) + 22100 cold SSTORE
		t.Fatalf("cold SSTORE gas used = %d, want 22106", coldUsed)
	}

	warmHost := newFakeHost()
	warmHost.AccessStorage(common.Address{1}, common.Hash{}) // pre-warm the slot
	_, warmLeftOver, err, _ := runTopLevel(t, warmHost, code, 100000)
	if err != nil {
		t.Fatalf("warm run: unexpected error: %v", err)
	}
	warmUsed := (100000 - params.TxGas) - warmLeftOver
	if warmUsed != 106 { // PUSH1+PUSH1 (3+3) + 100 warm SSTORE
		t.Fatalf("warm SSTORE gas used = %d, want 106", warmUsed)
	}
}

// §8 scenario 5: JUMPDEST validity. PUSH1 3, JUMP, STOP, JUMPDEST, PUSH1 42,
// PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN returns 42; corrupting the
// JUMPDEST byte to STOP causes BadJumpDestination.
func TestScenarioJumpdestValidity(t *testing.T) {
	code := []byte{0x60, 0x03, 0x56, 0x00, 0x5b, 0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	host := newFakeHost()
	ret, _, err, _ := runTopLevel(t, host, code, 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := make([]byte, 32)
	want[31] = 42
	if !bytes.Equal(ret, want) {
		t.Fatalf("return data = %x, want %x", ret, want)
	}

	bad := append([]byte{}, code...)
	bad[4] = byte(STOP)
	_, _, err, _ = runTopLevel(t, host, bad, 100000)
	if err != ErrBadJumpDestination {
		t.Fatalf("err = %v, want ErrBadJumpDestination", err)
	}
}

// §8 boundary: JUMP to code_size fails.
func TestJumpToCodeSizeFails(t *testing.T) {
	// PUSH1 <len(code)>, JUMP — the pushed destination equals code_size.
	code := []byte{0x60, 0x03, 0x56}
	host := newFakeHost()
	_, _, err, _ := runTopLevel(t, host, code, 100000)
	if err != ErrBadJumpDestination {
		t.Fatalf("err = %v, want ErrBadJumpDestination", err)
	}
}

// §8 boundary: RETURNDATACOPY past the end of the return-data buffer fails.
func TestReturnDataCopyOutOfBounds(t *testing.T) {
	// A sub-call that returns nothing, then RETURNDATACOPY(0, 0, 1).
	code := []byte{
		0x60, 0x01, 0x60, 0x00, 0x60, 0x00, 0x3e, // PUSH1 1, PUSH1 0, PUSH1 0, RETURNDATACOPY
	}
	host := newFakeHost()
	_, _, err, _ := runTopLevel(t, host, code, 100000)
	if err != ErrReturnDataOutOfBounds && err != ErrInvalidMemoryAccess {
		t.Fatalf("err = %v, want a return-data-out-of-bounds error", err)
	}
}

// §8 scenario 6: shift correctness across the 64-bit boundary.
func TestScenarioShiftAcrossLimbBoundary(t *testing.T) {
	runShift := func(opcode byte, shiftAmt byte, operand [32]byte) [32]byte {
		code := []byte{0x7f}
		code = append(code, operand[:]...)
		code = append(code, 0x60, shiftAmt, opcode, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3)
		host := newFakeHost()
		ret, _, err, _ := runTopLevel(t, host, code, 1000000)
		if err != nil {
			t.Fatalf("opcode %#x: unexpected error: %v", opcode, err)
		}
		var out [32]byte
		copy(out[:], ret)
		return out
	}

	// x = 2^63: SHL(1, x) = 2^64 (limb1=1, limb0=0).
	var x1 [32]byte
	x1[24] = 0x80 // big-endian byte 24 holds bit 63's byte within the low 8 bytes
	got := runShift(byte(SHL), 1, x1)
	var want1 [32]byte
	want1[23] = 0x01 // 2^64 big-endian: byte index 23 (from the left) is the '1'
	if got != want1 {
		t.Fatalf("SHL(1, 2^63) = %x, want %x", got, want1)
	}

	// x = 2^64: SHR(1, x) = 2^63 (limb0 = 1<<63, limb1 = 0).
	var x2 [32]byte
	x2[23] = 0x01
	got = runShift(byte(SHR), 1, x2)
	var want2 [32]byte
	want2[24] = 0x80
	if got != want2 {
		t.Fatalf("SHR(1, 2^64) = %x, want %x", got, want2)
	}

	// x = 2^255: SAR(1, x) has the top two bits of the result set (sign-extends).
	var x3 [32]byte
	x3[0] = 0x80
	got = runShift(byte(SAR), 1, x3)
	if got[0] != 0xc0 {
		t.Fatalf("SAR(1, 2^255) top byte = %#x, want 0xc0", got[0])
	}
}

// §8 boundary: stack at exactly 1024 allows POP but not PUSH.
func TestStackBoundaryAtLimit(t *testing.T) {
	s := newStack()
	defer returnStack(s)
	for i := 0; i < params.StackLimit; i++ {
		v := NewU256(uint64(i))
		s.push(v)
	}
	if s.len() != params.StackLimit {
		t.Fatalf("len = %d, want %d", s.len(), params.StackLimit)
	}
	_ = s.pop()
	if s.len() != params.StackLimit-1 {
		t.Fatalf("len after pop = %d, want %d", s.len(), params.StackLimit-1)
	}
}
