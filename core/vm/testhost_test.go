package vm

import (
	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/params"
)

// fakeHost is a minimal, in-memory Host (§4.5) used only by this package's
// own tests: it exercises the interpreter driver end to end without
// pulling in a real state/trie implementation, which is explicitly out of
// scope (§1). Every account starts warm-empty; AccessAccount/AccessStorage
// mark-on-first-touch like a real EIP-2929 access list.
type fakeHost struct {
	balances map[common.Address]*U256
	code     map[common.Address][]byte
	storage  map[common.Address]map[common.Hash]common.Hash
	transient map[common.Address]map[common.Hash]common.Hash

	warmAccounts map[common.Address]bool
	warmStorage  map[common.Address]map[common.Hash]bool

	logs []loggedEvent

	txCtx TxContext

	// callDepthLimit lets a test simulate the host's own call-depth guard
	// (§8: "CALL at depth 1024 returns 0 success ... no child frame
	// created") without constructing 1024 real frames.
	callDepthLimit int
	calls          []CallMessage
}

type loggedEvent struct {
	addr   common.Address
	data   []byte
	topics []common.Hash
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		balances:     map[common.Address]*U256{},
		code:         map[common.Address][]byte{},
		storage:      map[common.Address]map[common.Hash]common.Hash{},
		transient:    map[common.Address]map[common.Hash]common.Hash{},
		warmAccounts: map[common.Address]bool{},
		warmStorage:  map[common.Address]map[common.Hash]bool{},
		txCtx: TxContext{
			GasPrice: NewU256(1),
			ChainID:  NewU256(1),
			BaseFee:  NewU256(0),
		},
		callDepthLimit: int(params.CallCreateDepth),
	}
}

func (h *fakeHost) AccountExists(addr common.Address) bool {
	_, ok := h.balances[addr]
	return ok
}

func (h *fakeHost) AccessAccount(addr common.Address) AccessStatus {
	if h.warmAccounts[addr] {
		return Warm
	}
	h.warmAccounts[addr] = true
	return Cold
}

func (h *fakeHost) AccessStorage(addr common.Address, key common.Hash) AccessStatus {
	m := h.warmStorage[addr]
	if m == nil {
		m = map[common.Hash]bool{}
		h.warmStorage[addr] = m
	}
	if m[key] {
		return Warm
	}
	m[key] = true
	return Cold
}

func (h *fakeHost) GetStorage(addr common.Address, key common.Hash) common.Hash {
	return h.storage[addr][key]
}

func (h *fakeHost) SetStorage(addr common.Address, key, value common.Hash) StorageStatus {
	m := h.storage[addr]
	if m == nil {
		m = map[common.Hash]common.Hash{}
		h.storage[addr] = m
	}
	current := m[key]
	m[key] = value
	switch {
	case current == value:
		return StorageAssigned
	case current.IsZero() && !value.IsZero():
		return StorageAdded
	case !current.IsZero() && value.IsZero():
		return StorageDeleted
	default:
		return StorageModified
	}
}

func (h *fakeHost) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	return h.transient[addr][key]
}

func (h *fakeHost) SetTransientStorage(addr common.Address, key, value common.Hash) {
	m := h.transient[addr]
	if m == nil {
		m = map[common.Hash]common.Hash{}
		h.transient[addr] = m
	}
	m[key] = value
}

func (h *fakeHost) GetBalance(addr common.Address) *U256 {
	if b, ok := h.balances[addr]; ok {
		return b
	}
	return NewU256(0)
}

func (h *fakeHost) GetCodeSize(addr common.Address) uint64 { return uint64(len(h.code[addr])) }

func (h *fakeHost) GetCodeHash(addr common.Address) common.Hash { return common.Hash{} }

func (h *fakeHost) CopyCode(addr common.Address, offset uint64, buf []byte) int {
	code := h.code[addr]
	if offset >= uint64(len(code)) {
		return 0
	}
	return copy(buf, code[offset:])
}

func (h *fakeHost) Selfdestruct(addr, beneficiary common.Address) bool { return true }

func (h *fakeHost) Call(msg CallMessage) CallResult {
	h.calls = append(h.calls, msg)
	if msg.Depth > h.callDepthLimit {
		return CallResult{Success: false, GasLeft: msg.Gas}
	}
	return CallResult{Success: true, GasLeft: msg.Gas}
}

func (h *fakeHost) GetTxContext() TxContext { return h.txCtx }

func (h *fakeHost) GetBlockHash(number uint64) common.Hash { return common.Hash{} }

func (h *fakeHost) EmitLog(addr common.Address, data []byte, topics []common.Hash) {
	h.logs = append(h.logs, loggedEvent{addr, data, topics})
}
