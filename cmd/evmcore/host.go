package main

import (
	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/core/vm"
	"github.com/bnb-chain/evmcore/crypto"
)

// memHost is the reference vm.Host this CLI runs bytecode against: no
// trie, no persistent database, no networking (§1's Non-goals) — just the
// in-memory account/storage/log bookkeeping a standalone bytecode runner
// needs to make CALL/SLOAD/BALANCE/etc. observable. Grounded on core/vm's
// own test-only fakeHost (core/vm/testhost_test.go), generalized here to
// support real CALL re-entry into evm.Call for a child frame and exported
// for cmd/evmcore's sole consumption.
type memHost struct {
	evm *vm.EVM

	accounts map[common.Address]*account
	logs     []emittedLog

	warmAccounts mapset.Set[common.Address]
	warmStorage  map[common.Address]mapset.Set[common.Hash]

	blockHashes *lru.Cache[uint64, common.Hash]

	txCtx vm.TxContext

	depth int
}

type account struct {
	balance   *vm.U256
	code      []byte
	nonce     uint64
	storage   map[common.Hash]common.Hash
	transient map[common.Hash]common.Hash
}

type emittedLog struct {
	addr   common.Address
	data   []byte
	topics []common.Hash
}

func newMemHost(code []byte, recipient common.Address, initialBalance *vm.U256) *memHost {
	blockHashes, _ := lru.New[uint64, common.Hash](256)
	h := &memHost{
		accounts:     map[common.Address]*account{},
		warmAccounts: mapset.NewSet[common.Address](),
		warmStorage:  map[common.Address]mapset.Set[common.Hash]{},
		blockHashes:  blockHashes,
		txCtx: vm.TxContext{
			GasPrice: vm.NewU256(1),
			ChainID:  vm.NewU256(1),
			BaseFee:  vm.NewU256(0),
			GasLimit: 30_000_000,
		},
	}
	h.account(recipient).code = code
	if initialBalance != nil {
		h.account(recipient).balance = initialBalance.Clone()
	}
	return h
}

func (h *memHost) account(addr common.Address) *account {
	a, ok := h.accounts[addr]
	if !ok {
		a = &account{
			balance:   vm.NewU256(0),
			storage:   map[common.Hash]common.Hash{},
			transient: map[common.Hash]common.Hash{},
		}
		h.accounts[addr] = a
	}
	return a
}

func (h *memHost) AccountExists(addr common.Address) bool {
	a, ok := h.accounts[addr]
	return ok && (a.balance.Sign() != 0 || a.nonce != 0 || len(a.code) != 0)
}

// AccessAccount implements EIP-2929 warm/cold bookkeeping with a
// deckarep/golang-set/v2 set, per SPEC_FULL's domain-stack wiring for
// "C4 frame-stack bookkeeping": first touch in the whole run is cold,
// everything after is warm (transient storage's per-transaction clearing
// is the only thing ever reset; warm-access sets never are).
func (h *memHost) AccessAccount(addr common.Address) vm.AccessStatus {
	if h.warmAccounts.Contains(addr) {
		return vm.Warm
	}
	h.warmAccounts.Add(addr)
	return vm.Cold
}

func (h *memHost) AccessStorage(addr common.Address, key common.Hash) vm.AccessStatus {
	set, ok := h.warmStorage[addr]
	if !ok {
		set = mapset.NewSet[common.Hash]()
		h.warmStorage[addr] = set
	}
	if set.Contains(key) {
		return vm.Warm
	}
	set.Add(key)
	return vm.Cold
}

func (h *memHost) GetStorage(addr common.Address, key common.Hash) common.Hash {
	return h.account(addr).storage[key]
}

func (h *memHost) SetStorage(addr common.Address, key, value common.Hash) vm.StorageStatus {
	a := h.account(addr)
	current := a.storage[key]
	if current == value {
		a.storage[key] = value
		return vm.StorageAssigned
	}
	var status vm.StorageStatus
	switch {
	case current.IsZero():
		status = vm.StorageAdded
	case value.IsZero():
		status = vm.StorageDeleted
	default:
		status = vm.StorageModified
	}
	a.storage[key] = value
	return status
}

func (h *memHost) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	return h.account(addr).transient[key]
}

func (h *memHost) SetTransientStorage(addr common.Address, key, value common.Hash) {
	h.account(addr).transient[key] = value
}

func (h *memHost) GetBalance(addr common.Address) *vm.U256 {
	return h.account(addr).balance.Clone()
}

func (h *memHost) GetCodeSize(addr common.Address) uint64 {
	return uint64(len(h.account(addr).code))
}

func (h *memHost) GetCodeHash(addr common.Address) common.Hash {
	code := h.account(addr).code
	if len(code) == 0 {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(code)
}

func (h *memHost) CopyCode(addr common.Address, offset uint64, buf []byte) int {
	code := h.account(addr).code
	if offset >= uint64(len(code)) {
		return 0
	}
	return copy(buf, code[offset:])
}

func (h *memHost) Selfdestruct(addr, beneficiary common.Address) bool {
	a := h.account(addr)
	bal := a.balance
	h.account(beneficiary).balance.Add(h.account(beneficiary).balance, bal)
	a.balance = vm.NewU256(0)
	return true
}

// Call re-enters evm.Call for CALL/CALLCODE/DELEGATECALL/STATICCALL and
// performs the value transfer; CREATE/CREATE2 are not supported by this
// standalone runner (no code-deposit/init-code semantics worth modeling
// without a real sender nonce sequence) and fail immediately.
func (h *memHost) Call(msg vm.CallMessage) vm.CallResult {
	if msg.Kind == vm.CallKindCreate || msg.Kind == vm.CallKindCreate2 {
		return vm.CallResult{Success: false, GasLeft: msg.Gas}
	}
	if msg.Depth > 1024 {
		return vm.CallResult{Success: false, GasLeft: msg.Gas}
	}

	if msg.Value != nil && !msg.Value.IsZero() {
		from := h.account(msg.Sender)
		if from.balance.Cmp(msg.Value) < 0 {
			return vm.CallResult{Success: false, GasLeft: msg.Gas}
		}
		from.balance.Sub(from.balance, msg.Value)
		h.account(msg.Recipient).balance.Add(h.account(msg.Recipient).balance, msg.Value)
	}

	code := h.account(msg.CodeAddr).code
	frame := vm.NewFrame(msg.Sender, msg.Recipient, msg.Value, msg.Gas, code, msg.Static, msg.Kind, msg.Depth)
	frame.Input = msg.Input
	defer frame.Release()

	out, leftOver, err := h.evm.Call(frame)
	return vm.CallResult{
		Success:   err == nil,
		GasLeft:   leftOver,
		GasRefund: frame.GasRefund,
		Output:    out,
	}
}

func (h *memHost) GetTxContext() vm.TxContext { return h.txCtx }

// GetBlockHash synthesizes a deterministic pseudo-hash for a standalone
// run (there is no real chain to ask), cached per §3's "Cache" entry for
// block-hash lookups keyed by block number.
func (h *memHost) GetBlockHash(number uint64) common.Hash {
	if v, ok := h.blockHashes.Get(number); ok {
		return v
	}
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(number >> (8 * (7 - i)))
	}
	hash := crypto.Keccak256Hash(buf[:])
	h.blockHashes.Add(number, hash)
	return hash
}

func (h *memHost) EmitLog(addr common.Address, data []byte, topics []common.Hash) {
	h.logs = append(h.logs, emittedLog{addr: addr, data: data, topics: topics})
}
