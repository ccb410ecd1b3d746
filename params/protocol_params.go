// Package params holds the revision enumeration (C2's "per-revision
// instruction-metrics table" selector) and the gas-schedule constants the
// interpreter's gas table and the MIR runtime functions both read from.
package params

const (
	// TxGas is the basic transaction cost deducted from the top-level
	// frame before any opcode runs (§4.2, §4.4).
	TxGas uint64 = 21000

	// CallCreateDepth is the maximum call-stack depth (§4.6 CALL family,
	// §7 CallDepthExceeded).
	CallCreateDepth uint64 = 1024

	// StackLimit is the maximum number of elements on the EVM stack (§3).
	StackLimit = 1024

	// MaxCodeSize is the maximum length of contract creation output
	// (EIP-170).
	MaxCodeSize = 24576

	// MaxInitCodeSize is the maximum length of CREATE/CREATE2 init code
	// (EIP-3860), 2 * MaxCodeSize.
	MaxInitCodeSize = 2 * MaxCodeSize

	// MaxCallDataWindow is the implementation-chosen ceiling on memory
	// expansion (§3 "Expansion is capped at an implementation-chosen
	// ceiling").
	MaxMemorySize = 0x1000000 // 16 MiB, generous enough for any real contract

	// CreateDataGas is charged per byte of returned contract-creation
	// code (Gcodedeposit).
	CreateDataGas uint64 = 200

	// Keccak256Gas/Keccak256WordGas price KECCAK256's base cost and its
	// per-32-byte-word surcharge.
	Keccak256Gas     uint64 = 30
	Keccak256WordGas uint64 = 6

	// Memory expansion formula coefficients (§4.2): words^2/MemoryGasQuadCoeff + MemoryGas*words.
	MemoryGas           uint64 = 3
	MemoryGasQuadCoeff  uint64 = 512
	CopyGas             uint64 = 3

	// LogGas/LogDataGas/LogTopicGas price LOG0..LOG4.
	LogGas      uint64 = 375
	LogDataGas  uint64 = 8
	LogTopicGas uint64 = 375

	// JumpdestGas is JUMPDEST's cost.
	JumpdestGas uint64 = 1

	// Sha3Gas is an alias kept for readers coming from the Keccak256Gas
	// naming used elsewhere in the corpus.
	Sha3Gas     = Keccak256Gas
	Sha3WordGas = Keccak256WordGas

	// EIP-2929 cold/warm access costs.
	ColdAccountAccessCost uint64 = 2600
	ColdSloadCost         uint64 = 2100
	WarmStorageReadCost   uint64 = 100

	// SstoreSentryGasEIP2200 is the minimum gas that must remain before an
	// SSTORE is permitted at all (post-Istanbul net-metering safety net).
	SstoreSentryGasEIP2200 uint64 = 2300

	// CallStipend is the stipend forwarded to the callee on a CALL that
	// also transfers nonzero value.
	CallStipend uint64 = 2300

	// CallValueTransferGas is the surcharge for CALL/CALLCODE with a
	// nonzero value argument.
	CallValueTransferGas uint64 = 9000

	// CallNewAccountGas is charged when CALL/CALLCODE targets a
	// non-existent account while transferring value.
	CallNewAccountGas uint64 = 25000

	// SelfdestructRefundGas was the refund for SELFDESTRUCT before
	// EIP-3529 removed it.
	SelfdestructRefundGas uint64 = 24000

	// MaxRefundQuotient is the divisor applied to gas_used to bound the
	// refund credited on clean return (§4.2, post-London = 5, pre-London = 2).
	MaxRefundQuotientLondon uint64 = 5
	MaxRefundQuotientLegacy uint64 = 2

	// ExpGas/ExpByteGas price EXP's base cost and its per-byte-of-exponent
	// surcharge (post-Spurious-Dragon value).
	ExpGas     uint64 = 10
	ExpByteGas uint64 = 50

	// The classic opcode "step" tiers: most opcodes' constant gas is one
	// of these six values.
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	// GasSelfdestruct/GasCreate/GasCall/GasCallValue and friends price the
	// call and create family's constant component; their dynamic
	// component (63/64 rule, cold surcharge, value/new-account surcharge)
	// lives in the gas table.
	GasSelfdestruct uint64 = 5000
	GasCreate       uint64 = 32000
)
