package vm

import "github.com/bnb-chain/evmcore/common"

// AccessStatus reports whether an account/storage access was the first in
// the transaction (Cold) or had already been touched (Warm), per EIP-2929.
type AccessStatus uint8

const (
	Warm AccessStatus = iota
	Cold
)

// StorageStatus is the nine-way SSTORE transition status the host reports
// for a given (address, key, new-value) write, indexing the C2 SSTORE cost
// table (§4.2, §4.5).
type StorageStatus uint8

const (
	StorageAssigned StorageStatus = iota // no-op write: new == current
	StorageAdded                         // 0 -> non-zero, original was 0
	StorageDeleted                       // non-zero -> 0
	StorageModified                      // non-zero -> different non-zero
	StorageDeletedAdded                  // original non-zero, current 0, new non-zero
	StorageModifiedDeleted               // original non-zero, current non-zero, new 0
	StorageDeletedRestored               // original non-zero, current 0, new == original
	StorageAddedDeleted                  // original 0, current non-zero, new 0
	StorageModifiedRestored              // original non-zero, current different, new == original
)

// CallKind distinguishes the message-send opcodes and CREATE/CREATE2, per
// §3's call-frame "kind" field.
type CallKind uint8

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
	CallKindCreate
	CallKindCreate2
)

// TxContext is the cached-once-per-execution transaction/block context
// (§3's "Cache" entry, §4.5's get_tx_context).
type TxContext struct {
	GasPrice     *U256
	Origin       common.Address
	Coinbase     common.Address
	BlockNumber  uint64
	BlockTime    uint64
	GasLimit     uint64
	PrevRandao   common.Hash
	ChainID      *U256
	BaseFee      *U256
	BlobBaseFee  *U256
	BlobHashes   []common.Hash
}

// CallMessage is the argument to Host.Call: everything needed to run a
// sub-invocation (CALL/CALLCODE/DELEGATECALL/STATICCALL/CREATE/CREATE2).
type CallMessage struct {
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       uint64
	Recipient common.Address // target of CALL*, or the (pre-derived) new address for CREATE*
	Sender    common.Address // caller, or for DELEGATECALL the grandparent's original caller
	Value     *U256
	Input     []byte
	CodeAddr  common.Address // account whose code executes (differs from Recipient for CALLCODE/DELEGATECALL)
	Salt      *U256          // CREATE2 only
}

// CallResult is the host's answer to a Call.
type CallResult struct {
	Success      bool
	GasLeft      uint64
	GasRefund    uint64
	Output       []byte
	CreateAddr   common.Address // populated for CREATE/CREATE2
}

// Host is the capability set C6-C13 consume for every side effect (§4.5).
// It is the only side-effecting dependency of this module; everything else
// is pure computation over U256/Stack/Memory.
type Host interface {
	AccountExists(addr common.Address) bool
	AccessAccount(addr common.Address) AccessStatus
	AccessStorage(addr common.Address, key common.Hash) AccessStatus

	GetStorage(addr common.Address, key common.Hash) common.Hash
	SetStorage(addr common.Address, key, value common.Hash) StorageStatus

	GetTransientStorage(addr common.Address, key common.Hash) common.Hash
	SetTransientStorage(addr common.Address, key, value common.Hash)

	GetBalance(addr common.Address) *U256
	GetCodeSize(addr common.Address) uint64
	GetCodeHash(addr common.Address) common.Hash
	CopyCode(addr common.Address, offset uint64, buf []byte) int

	Selfdestruct(addr, beneficiary common.Address) bool

	Call(msg CallMessage) CallResult

	GetTxContext() TxContext
	GetBlockHash(number uint64) common.Hash

	EmitLog(addr common.Address, data []byte, topics []common.Hash)
}
