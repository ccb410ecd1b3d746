package compiler

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bnb-chain/evmcore/core/vm"
	"github.com/bnb-chain/evmcore/crypto"
)

// loggedCall records one CALL-family or CREATE-family invocation the stub
// table saw, for tests that need to assert on what got dispatched rather
// than just the return value.
type loggedCall struct {
	name string
	args []ArgValue
}

// stubTable backs MSTORE/RETURN (and a handful of runtime-call-lowered
// opcodes exercised by the tests below) with a flat byte buffer and an
// in-memory storage map, standing in for the real vm.Host-backed table in
// runtime/table.go (unimportable here: it depends on this package, and this
// file lives in package compiler itself).
func stubTable(mem *[]byte) RuntimeTable {
	return stubTableWithCalls(mem, nil)
}

// stubTableWithCalls is stubTable plus CALL/CREATE/LOG recording into
// *calls, for tests that need to inspect dispatched runtime calls.
func stubTableWithCalls(mem *[]byte, calls *[]loggedCall) RuntimeTable {
	ensure := func(end uint64) {
		if uint64(len(*mem)) < end {
			grown := make([]byte, end)
			copy(grown, *mem)
			*mem = grown
		}
	}
	readMem := func(off, sz uint64) []byte {
		ensure(off + sz)
		out := make([]byte, sz)
		copy(out, (*mem)[off:off+sz])
		return out
	}
	record := func(name string, args []ArgValue) {
		if calls != nil {
			*calls = append(*calls, loggedCall{name, args})
		}
	}
	storage := map[[4]uint64][4]uint64{}
	binop := func(f func(z, x, y *vm.U256) *vm.U256) RuntimeFunc {
		return func(args []ArgValue) (ArgValue, error) {
			x := vm.U256(args[0].U256)
			y := vm.U256(args[1].U256)
			var z vm.U256
			f(&z, &x, &y)
			return ArgValue{Kind: ArgU256, U256: vm.Limbs(&z)}, nil
		}
	}
	triop := func(f func(z, x, y, m *vm.U256) *vm.U256) RuntimeFunc {
		return func(args []ArgValue) (ArgValue, error) {
			x := vm.U256(args[0].U256)
			y := vm.U256(args[1].U256)
			m := vm.U256(args[2].U256)
			var z vm.U256
			f(&z, &x, &y, &m)
			return ArgValue{Kind: ArgU256, U256: vm.Limbs(&z)}, nil
		}
	}
	return RuntimeTable{
		"mstore": func(args []ArgValue) (ArgValue, error) {
			off := args[0].U64
			ensure(off + 32)
			var b [32]byte
			for i := 0; i < 4; i++ {
				binary.BigEndian.PutUint64(b[24-8*i:32-8*i], args[1].U256[i])
			}
			copy((*mem)[off:off+32], b[:])
			return ArgValue{}, nil
		},
		"memload_raw": func(args []ArgValue) (ArgValue, error) {
			return ArgValue{Kind: ArgBytes32, Bytes: readMem(args[0].U64, args[1].U64)}, nil
		},
		"mul":  binop(func(z, x, y *vm.U256) *vm.U256 { return z.Mul(x, y) }),
		"div":  binop(func(z, x, y *vm.U256) *vm.U256 { return z.Div(x, y) }),
		"sdiv": binop(func(z, x, y *vm.U256) *vm.U256 { return z.SDiv(x, y) }),
		"mod":  binop(func(z, x, y *vm.U256) *vm.U256 { return z.Mod(x, y) }),
		"smod": binop(func(z, x, y *vm.U256) *vm.U256 { return z.SMod(x, y) }),
		"addmod": triop(func(z, x, y, m *vm.U256) *vm.U256 { return z.AddMod(x, y, m) }),
		"mulmod": triop(func(z, x, y, m *vm.U256) *vm.U256 { return z.MulMod(x, y, m) }),
		"exp": func(args []ArgValue) (ArgValue, error) {
			base := vm.U256(args[0].U256)
			exp := vm.U256(args[1].U256)
			var z vm.U256
			z.Exp(&base, &exp)
			return ArgValue{Kind: ArgU256, U256: vm.Limbs(&z)}, nil
		},
		"keccak256": func(args []ArgValue) (ArgValue, error) {
			sum := crypto.Keccak256(readMem(args[0].U64, args[1].U64))
			return ArgValue{Kind: ArgBytes32, Bytes: sum}, nil
		},
		"sload": func(args []ArgValue) (ArgValue, error) {
			v := storage[args[0].U256]
			return ArgValue{Kind: ArgU256, U256: v}, nil
		},
		"sstore": func(args []ArgValue) (ArgValue, error) {
			storage[args[0].U256] = args[1].U256
			return ArgValue{}, nil
		},
		"log0": func(args []ArgValue) (ArgValue, error) { record("log0", args); return ArgValue{}, nil },
		"log1": func(args []ArgValue) (ArgValue, error) { record("log1", args); return ArgValue{}, nil },
		"log2": func(args []ArgValue) (ArgValue, error) { record("log2", args); return ArgValue{}, nil },
		"log3": func(args []ArgValue) (ArgValue, error) { record("log3", args); return ArgValue{}, nil },
		"log4": func(args []ArgValue) (ArgValue, error) { record("log4", args); return ArgValue{}, nil },
		"call": func(args []ArgValue) (ArgValue, error) {
			record("call", args)
			return ArgValue{Kind: ArgU64, U64: 1}, nil
		},
		"callcode": func(args []ArgValue) (ArgValue, error) {
			record("callcode", args)
			return ArgValue{Kind: ArgU64, U64: 1}, nil
		},
		"delegatecall": func(args []ArgValue) (ArgValue, error) {
			record("delegatecall", args)
			return ArgValue{Kind: ArgU64, U64: 1}, nil
		},
		"staticcall": func(args []ArgValue) (ArgValue, error) {
			record("staticcall", args)
			return ArgValue{Kind: ArgU64, U64: 1}, nil
		},
		"create": func(args []ArgValue) (ArgValue, error) {
			record("create", args)
			return ArgValue{Kind: ArgU256, U256: [4]uint64{0, 0, 0, 0xc0ffee}}, nil
		},
		"create2": func(args []ArgValue) (ArgValue, error) {
			record("create2", args)
			return ArgValue{Kind: ArgU256, U256: [4]uint64{0, 0, 0, 0xc0ffee}}, nil
		},
	}
}

// returnLowByte compiles and runs code, returning the low byte of its
// 32-byte RETURN output.
func returnLowByte(t *testing.T, code []byte) byte {
	t.Helper()
	prog, err := Compile(code, vm.Config{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var mem []byte
	out, err := NewEval(stubTable(&mem)).Run(prog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 32 {
		t.Fatalf("expected 32 return bytes, got %d", len(out))
	}
	for _, b := range out[:31] {
		if b != 0 {
			t.Fatalf("expected zero padding, got %v", out)
		}
	}
	return out[31]
}

// pushRet0 appends "PUSH1 0; MSTORE; PUSH1 32; PUSH1 0; RETURN" to store
// whatever is on top of the stack and return it.
func pushRet0() []byte {
	return []byte{
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
}

func TestCompileAddAndReturn(t *testing.T) {
	// PUSH1 2; PUSH1 1; ADD; PUSH1 0; MSTORE; PUSH1 32; PUSH1 0; RETURN
	code := []byte{
		byte(vm.PUSH1), 2,
		byte(vm.PUSH1), 1,
		byte(vm.ADD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	prog, err := Compile(code, vm.Config{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var mem []byte
	out, err := NewEval(stubTable(&mem)).Run(prog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 32 {
		t.Fatalf("expected 32 return bytes, got %d", len(out))
	}
	if out[31] != 3 {
		t.Fatalf("expected 1+2=3 in the low byte, got %d", out[31])
	}
	for _, b := range out[:31] {
		if b != 0 {
			t.Fatalf("expected zero padding, got %v", out)
		}
	}
}

func TestCompileComparisons(t *testing.T) {
	cases := []struct {
		name string
		op   vm.OpCode
		a, b byte
		want byte
	}{
		{"LT true", vm.LT, 1, 2, 1},
		{"LT false", vm.LT, 2, 1, 0},
		{"GT true", vm.GT, 2, 1, 1},
		{"EQ true", vm.EQ, 5, 5, 1},
		{"EQ false", vm.EQ, 5, 6, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// push b then a so the stack top-to-bottom is [a, b] as EVM
			// requires (LT pops a then b, computes a<b).
			code := []byte{
				byte(vm.PUSH1), c.b,
				byte(vm.PUSH1), c.a,
				byte(c.op),
				byte(vm.PUSH1), 0,
				byte(vm.MSTORE),
				byte(vm.PUSH1), 32,
				byte(vm.PUSH1), 0,
				byte(vm.RETURN),
			}
			prog, err := Compile(code, vm.Config{})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			var mem []byte
			out, err := NewEval(stubTable(&mem)).Run(prog)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if out[31] != c.want {
				t.Fatalf("got %d want %d", out[31], c.want)
			}
		})
	}
}

func TestCompileUnsupportedOpcode(t *testing.T) {
	code := []byte{0x0c} // unassigned opcode
	if _, err := Compile(code, vm.Config{}); err == nil {
		t.Fatal("expected an error for an unsupported opcode")
	}
}

func TestCompileRuntimeArithmetic(t *testing.T) {
	cases := []struct {
		name string
		op   vm.OpCode
		a, b byte
		want byte
	}{
		{"MUL", vm.MUL, 6, 7, 42},
		{"DIV", vm.DIV, 20, 3, 6},
		{"MOD", vm.MOD, 20, 3, 2},
		{"SDIV", vm.SDIV, 20, 3, 6},
		{"SMOD", vm.SMOD, 20, 3, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// DIV computes x/y where x=top(first-popped). Push y then x so
			// x ends up on top, matching opDiv's x,y := pop(),peek() order.
			code := append([]byte{
				byte(vm.PUSH1), c.b,
				byte(vm.PUSH1), c.a,
				byte(c.op),
			}, pushRet0()...)
			got := returnLowByte(t, code)
			if got != c.want {
				t.Fatalf("got %d want %d", got, c.want)
			}
		})
	}
}

func TestCompileShifts(t *testing.T) {
	cases := []struct {
		name  string
		op    vm.OpCode
		shift byte
		val   byte
		want  byte
	}{
		{"SHL small", vm.SHL, 2, 1, 4},
		{"SHR small", vm.SHR, 2, 8, 2},
		{"SAR small positive", vm.SAR, 1, 8, 4},
		{"SHL large shift zero", vm.SHL, 255, 1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// SHL/SHR/SAR pop shift then value: shiftAmt, val := pop(), pop().
			code := append([]byte{
				byte(vm.PUSH1), c.val,
				byte(vm.PUSH1), c.shift,
				byte(c.op),
			}, pushRet0()...)
			got := returnLowByte(t, code)
			if got != c.want {
				t.Fatalf("got %d want %d", got, c.want)
			}
		})
	}
}

func TestCompileIsZeroAndNot(t *testing.T) {
	// ISZERO(0) == 1
	code := append([]byte{byte(vm.PUSH1), 0, byte(vm.ISZERO)}, pushRet0()...)
	if got := returnLowByte(t, code); got != 1 {
		t.Fatalf("ISZERO(0): got %d want 1", got)
	}
	// ISZERO(5) == 0
	code = append([]byte{byte(vm.PUSH1), 5, byte(vm.ISZERO)}, pushRet0()...)
	if got := returnLowByte(t, code); got != 0 {
		t.Fatalf("ISZERO(5): got %d want 0", got)
	}
	// NOT(0)'s low byte is 0xff.
	code = append([]byte{byte(vm.PUSH1), 0, byte(vm.NOT)}, pushRet0()...)
	if got := returnLowByte(t, code); got != 0xff {
		t.Fatalf("NOT(0): got %x want ff", got)
	}
}

func TestCompileStorageRoundTrip(t *testing.T) {
	// SSTORE(slot=1, value=9); SLOAD(slot=1); RETURN
	code := append([]byte{
		byte(vm.PUSH1), 9,
		byte(vm.PUSH1), 1,
		byte(vm.SSTORE),
		byte(vm.PUSH1), 1,
		byte(vm.SLOAD),
	}, pushRet0()...)
	if got := returnLowByte(t, code); got != 9 {
		t.Fatalf("got %d want 9", got)
	}
}

func TestCompileJumpSkipsDeadCode(t *testing.T) {
	// PUSH1 5; JUMP; INVALID; INVALID; JUMPDEST; PUSH1 7; <return>
	code := []byte{
		byte(vm.PUSH1), 5,
		byte(vm.JUMP),
		byte(vm.INVALID),
		byte(vm.INVALID),
		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 7,
	}
	code = append(code, pushRet0()...)
	if got := returnLowByte(t, code); got != 7 {
		t.Fatalf("got %d want 7", got)
	}
}

func TestCompileJumpiTaken(t *testing.T) {
	// PUSH1 1 (cond); PUSH1 <dest>; JUMPI; INVALID; JUMPDEST; PUSH1 42; <return>
	head := []byte{
		byte(vm.PUSH1), 1,
		byte(vm.PUSH1), 0, // dest patched below
		byte(vm.JUMPI),
		byte(vm.INVALID),
		byte(vm.JUMPDEST),
	}
	dest := byte(len(head) - 1) // index of the JUMPDEST byte itself
	head[3] = dest
	code := append(head, byte(vm.PUSH1), 42)
	code = append(code, pushRet0()...)
	if got := returnLowByte(t, code); got != 42 {
		t.Fatalf("got %d want 42", got)
	}
}

func TestCompileJumpiNotTaken(t *testing.T) {
	// PUSH1 0 (cond); PUSH1 <dest=INVALID>; JUMPI; PUSH1 42; <return>; INVALID
	tail := pushRet0()
	// dest points past the fallthrough path, at a trailing INVALID.
	head := []byte{
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 0, // dest patched below
		byte(vm.JUMPI),
		byte(vm.PUSH1), 42,
	}
	dest := byte(len(head) + len(tail))
	head[3] = dest
	code := append(head, tail...)
	code = append(code, byte(vm.INVALID))
	if got := returnLowByte(t, code); got != 42 {
		t.Fatalf("got %d want 42", got)
	}
}

func TestCompileAddmodMulmodExp(t *testing.T) {
	cases := []struct {
		name       string
		op         vm.OpCode
		x, y, mOrE byte
		want       byte
	}{
		{"ADDMOD", vm.ADDMOD, 10, 10, 8, 4},
		{"MULMOD", vm.MULMOD, 10, 10, 8, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// ADDMOD/MULMOD pop x, y, m in that order (m popped last), so
			// push m, then y, then x.
			code := append([]byte{
				byte(vm.PUSH1), c.mOrE,
				byte(vm.PUSH1), c.y,
				byte(vm.PUSH1), c.x,
				byte(c.op),
			}, pushRet0()...)
			got := returnLowByte(t, code)
			if got != c.want {
				t.Fatalf("got %d want %d", got, c.want)
			}
		})
	}

	t.Run("EXP", func(t *testing.T) {
		// EXP pops base then exponent, so push exponent then base.
		code := append([]byte{
			byte(vm.PUSH1), 10,
			byte(vm.PUSH1), 2,
			byte(vm.EXP),
		}, pushRet0()...)
		got := returnLowByte(t, code)
		if got != 0 { // 2^10 = 1024, low byte is 0
			t.Fatalf("got %d want 0 (1024 & 0xff)", got)
		}
	})
}

func TestCompileSarLargeShiftSignExtends(t *testing.T) {
	// A value with the sign bit set (top byte 0x80, rest zero) shifted
	// right arithmetically by 256 (>= 256 is the "large shift" branch in
	// lowerShift) must fill with all ones, per largeShiftResult.
	var negative [32]byte
	negative[0] = 0x80
	code := []byte{byte(vm.PUSH32)}
	code = append(code, negative[:]...)
	code = append(code,
		byte(vm.PUSH2), 0x01, 0x00, // shift amount 256
		byte(vm.SAR),
	)
	code = append(code, pushRet0()...)
	if got := returnLowByte(t, code); got != 0xff {
		t.Fatalf("SAR large shift sign-extend: got %#x want 0xff", got)
	}
}

func TestCompileKeccak256(t *testing.T) {
	// KECCAK256 over the empty input (memory never written).
	code := []byte{
		byte(vm.PUSH1), 0, // size
		byte(vm.PUSH1), 0, // offset
		byte(vm.KECCAK256),
		byte(vm.STOP),
	}
	prog, err := Compile(code, vm.Config{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var mem []byte
	eval := NewEval(stubTable(&mem))
	if _, err := eval.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var call *RuntimeCall
	for _, n := range prog.Blocks[0].Nodes {
		if n.Op == LimbCall && n.Call.Name == "keccak256" {
			call = n.Call
			break
		}
	}
	if call == nil {
		t.Fatal("expected a keccak256 runtime call in the lowered program")
	}
	got := eval.calls[call].Bytes
	want := crypto.Keccak256(nil)
	if !bytes.Equal(got, want) {
		t.Fatalf("keccak256(empty): got %x want %x", got, want)
	}
}

func TestCompileLogEmitsTopicsAndData(t *testing.T) {
	// MSTORE(0, 99); LOG1(offset=0, size=32, topic=7)
	code := []byte{
		byte(vm.PUSH1), 99,
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 7, // topic, pushed deepest (popped last)
		byte(vm.PUSH1), 32, // size
		byte(vm.PUSH1), 0, // offset, pushed last (popped first)
		byte(vm.LOG1),
		byte(vm.STOP),
	}
	prog, err := Compile(code, vm.Config{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var mem []byte
	var calls []loggedCall
	if _, err := NewEval(stubTableWithCalls(&mem, &calls)).Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 1 || calls[0].name != "log1" {
		t.Fatalf("expected one log1 call, got %+v", calls)
	}
	args := calls[0].args
	if args[0].U64 != 0 || args[1].U64 != 32 {
		t.Fatalf("log1: got offset=%d size=%d, want 0,32", args[0].U64, args[1].U64)
	}
	if args[2].U256[0] != 7 {
		t.Fatalf("log1: got topic %d want 7", args[2].U256[0])
	}
}

func TestCompileCallDispatchesWithCorrectArgOrder(t *testing.T) {
	// CALL pops gas, addr, value, inOff, inSize, outOff, outSize in that
	// order, so push in reverse.
	code := []byte{
		byte(vm.PUSH1), 0, // outSize
		byte(vm.PUSH1), 0, // outOff
		byte(vm.PUSH1), 0, // inSize
		byte(vm.PUSH1), 0, // inOff
		byte(vm.PUSH1), 0, // value
		byte(vm.PUSH1), 0xab, // addr
		byte(vm.PUSH2), 0xc3, 0x50, // gas = 50000
		byte(vm.CALL),
		byte(vm.STOP),
	}
	prog, err := Compile(code, vm.Config{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var mem []byte
	var calls []loggedCall
	if _, err := NewEval(stubTableWithCalls(&mem, &calls)).Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 1 || calls[0].name != "call" {
		t.Fatalf("expected one call dispatch, got %+v", calls)
	}
	args := calls[0].args
	if args[0].U64 != 50000 {
		t.Fatalf("call: got gas %d want 50000", args[0].U64)
	}
	if args[1].U256[0] != 0xab {
		t.Fatalf("call: got addr low limb %#x want 0xab", args[1].U256[0])
	}
}

func TestCompileCreateAndCreate2DispatchWithCorrectArgOrder(t *testing.T) {
	t.Run("CREATE", func(t *testing.T) {
		// CREATE pops value, off, size in that order.
		code := []byte{
			byte(vm.PUSH1), 10, // size
			byte(vm.PUSH1), 0, // off
			byte(vm.PUSH1), 0, // value
			byte(vm.CREATE),
			byte(vm.STOP),
		}
		prog, err := Compile(code, vm.Config{})
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		var mem []byte
		var calls []loggedCall
		if _, err := NewEval(stubTableWithCalls(&mem, &calls)).Run(prog); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(calls) != 1 || calls[0].name != "create" {
			t.Fatalf("expected one create dispatch, got %+v", calls)
		}
		if calls[0].args[2].U64 != 10 {
			t.Fatalf("create: got size %d want 10", calls[0].args[2].U64)
		}
	})

	t.Run("CREATE2", func(t *testing.T) {
		// CREATE2 pops value, off, size, salt in that order (salt last).
		code := []byte{
			byte(vm.PUSH1), 99, // salt
			byte(vm.PUSH1), 10, // size
			byte(vm.PUSH1), 0, // off
			byte(vm.PUSH1), 0, // value
			byte(vm.CREATE2),
			byte(vm.STOP),
		}
		prog, err := Compile(code, vm.Config{})
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		var mem []byte
		var calls []loggedCall
		if _, err := NewEval(stubTableWithCalls(&mem, &calls)).Run(prog); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(calls) != 1 || calls[0].name != "create2" {
			t.Fatalf("expected one create2 dispatch, got %+v", calls)
		}
		if calls[0].args[3].U256[0] != 99 {
			t.Fatalf("create2: got salt %d want 99", calls[0].args[3].U256[0])
		}
	})
}
