package runtime

import (
	"testing"

	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/core/compiler"
	"github.com/bnb-chain/evmcore/core/vm"
)

// fakeHost is a minimal in-memory vm.Host standing in for a real state
// database, enough to drive every table entry in an isolated unit test.
type fakeHost struct {
	storage    map[common.Hash]common.Hash
	transient  map[common.Hash]common.Hash
	balances   map[common.Address]*vm.U256
	codeHashes map[common.Address]common.Hash
	txctx      vm.TxContext
	logs       []loggedEvent
	callResult vm.CallResult
	lastCall   vm.CallMessage
}

type loggedEvent struct {
	addr   common.Address
	data   []byte
	topics []common.Hash
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		storage:    map[common.Hash]common.Hash{},
		transient:  map[common.Hash]common.Hash{},
		balances:   map[common.Address]*vm.U256{},
		codeHashes: map[common.Address]common.Hash{},
	}
}

func (h *fakeHost) AccountExists(addr common.Address) bool { return h.balances[addr] != nil }
func (h *fakeHost) AccessAccount(common.Address) vm.AccessStatus { return vm.Warm }
func (h *fakeHost) AccessStorage(common.Address, common.Hash) vm.AccessStatus { return vm.Warm }

func (h *fakeHost) GetStorage(_ common.Address, key common.Hash) common.Hash { return h.storage[key] }
func (h *fakeHost) SetStorage(_ common.Address, key, value common.Hash) vm.StorageStatus {
	h.storage[key] = value
	return vm.StorageAssigned
}

func (h *fakeHost) GetTransientStorage(_ common.Address, key common.Hash) common.Hash {
	return h.transient[key]
}
func (h *fakeHost) SetTransientStorage(_ common.Address, key, value common.Hash) {
	h.transient[key] = value
}

func (h *fakeHost) GetBalance(addr common.Address) *vm.U256 {
	if b, ok := h.balances[addr]; ok {
		return b
	}
	return vm.NewU256(0)
}
func (h *fakeHost) GetCodeSize(common.Address) uint64      { return 0 }
func (h *fakeHost) GetCodeHash(addr common.Address) common.Hash { return h.codeHashes[addr] }
func (h *fakeHost) CopyCode(common.Address, uint64, []byte) int { return 0 }

func (h *fakeHost) Selfdestruct(common.Address, common.Address) bool { return true }

func (h *fakeHost) Call(msg vm.CallMessage) vm.CallResult {
	h.lastCall = msg
	return h.callResult
}

func (h *fakeHost) GetTxContext() vm.TxContext        { return h.txctx }
func (h *fakeHost) GetBlockHash(uint64) common.Hash   { return common.Hash{} }

func (h *fakeHost) EmitLog(addr common.Address, data []byte, topics []common.Hash) {
	h.logs = append(h.logs, loggedEvent{addr, data, topics})
}

// argU256FromVal builds an ArgU256 ArgValue from a *vm.U256.
func argU256FromVal(u *vm.U256) compiler.ArgValue {
	return compiler.ArgValue{Kind: compiler.ArgU256, U256: vm.Limbs(u)}
}

func u256Value(v uint64) compiler.ArgValue { return argU256FromVal(vm.NewU256(v)) }

func u256Uint64(limbs [4]uint64) uint64 {
	u := vm.U256(limbs)
	return u.Uint64()
}

func u256Bytes20(limbs [4]uint64) [20]byte {
	u := vm.U256(limbs)
	return u.Bytes20()
}

func newFrame(addr, caller common.Address, value *vm.U256) *vm.Frame {
	return vm.NewFrame(caller, addr, value, 1_000_000, nil, false, vm.CallKindCall, 0)
}

func TestTableArithmetic(t *testing.T) {
	ctx := New(newFrame(common.Address{}, common.Address{}, vm.NewU256(0)), newFakeHost())
	table := ctx.Table()

	out, err := table["mul"]([]compiler.ArgValue{u256Value(6), u256Value(7)})
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if got := u256Uint64(out.U256); got != 42 {
		t.Fatalf("mul: got %d want 42", got)
	}

	out, err = table["addmod"]([]compiler.ArgValue{u256Value(10), u256Value(10), u256Value(8)})
	if err != nil {
		t.Fatalf("addmod: %v", err)
	}
	if got := u256Uint64(out.U256); got != 4 {
		t.Fatalf("addmod: got %d want 4", got)
	}

	out, err = table["exp"]([]compiler.ArgValue{u256Value(2), u256Value(10)})
	if err != nil {
		t.Fatalf("exp: %v", err)
	}
	if got := u256Uint64(out.U256); got != 1024 {
		t.Fatalf("exp: got %d want 1024", got)
	}
}

func TestTableStorageRoundTrip(t *testing.T) {
	addr := common.BytesToAddress([]byte{1})
	host := newFakeHost()
	ctx := New(newFrame(addr, common.Address{}, vm.NewU256(0)), host)
	table := ctx.Table()

	if _, err := table["sstore"]([]compiler.ArgValue{u256Value(1), u256Value(9)}); err != nil {
		t.Fatalf("sstore: %v", err)
	}
	out, err := table["sload"]([]compiler.ArgValue{u256Value(1)})
	if err != nil {
		t.Fatalf("sload: %v", err)
	}
	if got := u256Uint64(out.U256); got != 9 {
		t.Fatalf("sload: got %d want 9", got)
	}
}

func TestTableSstoreRejectsStaticFrame(t *testing.T) {
	frame := vm.NewFrame(common.Address{}, common.Address{}, vm.NewU256(0), 1_000_000, nil, true, vm.CallKindStaticCall, 0)
	ctx := New(frame, newFakeHost())
	table := ctx.Table()

	if _, err := table["sstore"]([]compiler.ArgValue{u256Value(1), u256Value(9)}); err != vm.ErrStaticModeViolation {
		t.Fatalf("expected ErrStaticModeViolation, got %v", err)
	}
}

func TestTableEnvironmentQueries(t *testing.T) {
	addr := common.BytesToAddress([]byte{0xaa})
	caller := common.BytesToAddress([]byte{0xbb})
	ctx := New(newFrame(addr, caller, vm.NewU256(5)), newFakeHost())
	table := ctx.Table()

	out, _ := table["address"](nil)
	if got := common.Address(u256Bytes20(out.U256)); got != addr {
		t.Fatalf("address: got %x want %x", got, addr)
	}
	out, _ = table["caller"](nil)
	if got := common.Address(u256Bytes20(out.U256)); got != caller {
		t.Fatalf("caller: got %x want %x", got, caller)
	}
	out, _ = table["callvalue"](nil)
	if got := u256Uint64(out.U256); got != 5 {
		t.Fatalf("callvalue: got %d want 5", got)
	}
}

func TestTableMemoryRoundTrip(t *testing.T) {
	ctx := New(newFrame(common.Address{}, common.Address{}, vm.NewU256(0)), newFakeHost())
	table := ctx.Table()

	if _, err := table["mstore"]([]compiler.ArgValue{u64Arg(0), u256Value(0x2a)}); err != nil {
		t.Fatalf("mstore: %v", err)
	}
	out, err := table["mload"]([]compiler.ArgValue{u64Arg(0)})
	if err != nil {
		t.Fatalf("mload: %v", err)
	}
	if got := u256Uint64(out.U256); got != 0x2a {
		t.Fatalf("mload: got %#x want 0x2a", got)
	}
}

func TestTableKeccak256(t *testing.T) {
	ctx := New(newFrame(common.Address{}, common.Address{}, vm.NewU256(0)), newFakeHost())
	table := ctx.Table()

	if _, err := table["mstore"]([]compiler.ArgValue{u64Arg(0), u256Value(0)}); err != nil {
		t.Fatalf("mstore: %v", err)
	}
	out, err := table["keccak256"]([]compiler.ArgValue{u64Arg(0), u64Arg(32)})
	if err != nil {
		t.Fatalf("keccak256: %v", err)
	}
	if len(out.Bytes) != 32 {
		t.Fatalf("keccak256: expected a 32-byte digest, got %d bytes", len(out.Bytes))
	}
	// A second call over identical input must produce the same digest,
	// exercising the hasher-reuse path in Context.keccak256.
	out2, _ := table["keccak256"]([]compiler.ArgValue{u64Arg(0), u64Arg(32)})
	if string(out.Bytes) != string(out2.Bytes) {
		t.Fatalf("keccak256: expected identical digests across reused hasher")
	}
}

func TestTableLog(t *testing.T) {
	addr := common.BytesToAddress([]byte{7})
	host := newFakeHost()
	ctx := New(newFrame(addr, common.Address{}, vm.NewU256(0)), host)
	table := ctx.Table()

	if _, err := table["mstore"]([]compiler.ArgValue{u64Arg(0), u256Value(99)}); err != nil {
		t.Fatalf("mstore: %v", err)
	}
	if _, err := table["log1"]([]compiler.ArgValue{u64Arg(0), u64Arg(32), u256Value(1)}); err != nil {
		t.Fatalf("log1: %v", err)
	}
	if len(host.logs) != 1 {
		t.Fatalf("expected 1 emitted log, got %d", len(host.logs))
	}
	if host.logs[0].addr != addr {
		t.Fatalf("log address: got %x want %x", host.logs[0].addr, addr)
	}
	if len(host.logs[0].topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(host.logs[0].topics))
	}
}

func TestTableCallDelegatesToHost(t *testing.T) {
	addr := common.BytesToAddress([]byte{1})
	target := common.BytesToAddress([]byte{2})
	host := newFakeHost()
	host.callResult = vm.CallResult{Success: true, GasLeft: 100, Output: []byte{0x42}}
	frame := newFrame(addr, common.Address{}, vm.NewU256(0))
	ctx := New(frame, host)
	table := ctx.Table()

	targetU256 := argU256FromVal(new(vm.U256).SetBytes(target.Bytes()))
	out, err := table["call"]([]compiler.ArgValue{
		u64Arg(50000), targetU256, u256Value(0),
		u64Arg(0), u64Arg(0), u64Arg(0), u64Arg(1),
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.U64 != 1 {
		t.Fatalf("call: expected success flag 1, got %d", out.U64)
	}
	if host.lastCall.Recipient != target {
		t.Fatalf("call: host saw recipient %x want %x", host.lastCall.Recipient, target)
	}
	if want := uint64(1_000_000 + 100); frame.Gas != want {
		t.Fatalf("call: frame.Gas = %d, want %d (leftover gas folded back in)", frame.Gas, want)
	}
}
