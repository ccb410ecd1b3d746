package vm

import (
	"github.com/bnb-chain/evmcore/params"
)

// sstoreCosts is the nine-way (status -> {gas, refundDelta}) table the
// C2 contract requires, keyed by StorageStatus. It mirrors the net-cost
// metering schedule since Constantinople/Istanbul/Berlin/London (EIP-2200,
// EIP-2929, EIP-3529); this module targets post-Berlin revisions (Cancun
// default) so only the modern schedule is tabulated:
//
//	WarmAccess = 100, Set = 20000, ReSet = 5000-2100 = 2900, Clear = 4800
//
// (the legacy non-net-metered schedule and the pre-London Clear=15000
// refund are handled by sstoreCostLegacy below for completeness of the
// revision switch, matching the dual-table shape of the reference engine
// this module's storage-cost semantics were cross-checked against).
type sstoreCost struct {
	gas         uint64
	refundDelta int64
}

var sstoreCostsLondon = map[StorageStatus]sstoreCost{
	StorageAssigned:         {params.WarmStorageReadCost, 0},
	StorageAdded:            {20000, 0},
	StorageDeleted:          {2900, 4800},
	StorageModified:         {2900, 0},
	StorageDeletedAdded:     {params.WarmStorageReadCost, -4800},
	StorageModifiedDeleted:  {params.WarmStorageReadCost, 4800},
	StorageDeletedRestored:  {params.WarmStorageReadCost, 2900 - int64(params.WarmStorageReadCost) - 4800},
	StorageAddedDeleted:     {params.WarmStorageReadCost, 20000 - int64(params.WarmStorageReadCost)},
	StorageModifiedRestored: {params.WarmStorageReadCost, 2900 - int64(params.WarmStorageReadCost)},
}

var sstoreCostsIstanbul = map[StorageStatus]sstoreCost{
	StorageAssigned:         {800, 0},
	StorageAdded:            {20000, 0},
	StorageDeleted:          {5000, 15000},
	StorageModified:         {5000, 0},
	StorageDeletedAdded:     {800, -15000},
	StorageModifiedDeleted:  {800, 15000},
	StorageDeletedRestored:  {800, 5000 - 800 - 15000},
	StorageAddedDeleted:     {800, 20000 - 800},
	StorageModifiedRestored: {800, 5000 - 800},
}

var sstoreCostsLegacy = map[StorageStatus]sstoreCost{
	StorageAssigned:         {5000, 0},
	StorageAdded:            {20000, 0},
	StorageDeleted:          {5000, 15000},
	StorageModified:         {5000, 0},
	StorageDeletedAdded:     {20000, 0},
	StorageModifiedDeleted:  {5000, 15000},
	StorageDeletedRestored:  {20000, 0},
	StorageAddedDeleted:     {5000, 15000},
	StorageModifiedRestored: {5000, 0},
}

// sstoreGasAndRefund implements the C2 contract: look up (revision, status)
// in the appropriate table.
func sstoreGasAndRefund(rules params.Rules, status StorageStatus) (gas uint64, refundDelta int64) {
	var table map[StorageStatus]sstoreCost
	switch {
	case rules.IsBerlin:
		table = sstoreCostsLondon
	case rules.IsIstanbul:
		table = sstoreCostsIstanbul
	default:
		table = sstoreCostsLegacy
	}
	c := table[status]
	return c.gas, c.refundDelta
}

// accountAccessCost returns the full account-access gas charge for BALANCE,
// EXTCODESIZE, EXTCODECOPY, EXTCODEHASH, SELFDESTRUCT, CALL, STATICCALL,
// DELEGATECALL, CALLCODE (§4.2's "base cost per opcode from the revision's
// metrics table"), mirroring sloadCost's shape: the return value is the
// opcode's entire account-access charge, not a delta layered on some other
// baseline, since none of BALANCE/EXTCODESIZE/EXTCODEHASH/EXTCODECOPY carry
// a constantGas entry in the jump table.
func accountAccessCost(rules params.Rules, status AccessStatus) uint64 {
	if !rules.IsEIP2929 {
		return 700
	}
	if status == Cold {
		return params.ColdAccountAccessCost
	}
	return params.WarmStorageReadCost
}

// coldStorageAccessSurcharge is SSTORE's cold-slot surcharge (§4.2 "Cold
// SLOAD: 2100 cold, 100 warm"): unlike the account-level surcharge above,
// EIP-2929 prices a cold storage slot's first touch at the full
// ColdSloadCost on top of the nine-way table's entry, which already nets
// out the warm baseline (e.g. SSTORE_RESET_GAS 5000 - ColdSloadCost 2100 =
// 2900 for StorageModified).
func coldStorageAccessSurcharge(rules params.Rules, status AccessStatus) uint64 {
	if !rules.IsEIP2929 {
		return 0
	}
	if status == Cold {
		return params.ColdSloadCost
	}
	return 0
}

// sloadCost returns SLOAD's gas cost for a given access status (§4.2).
func sloadCost(rules params.Rules, status AccessStatus) uint64 {
	if !rules.IsEIP2929 {
		if rules.IsIstanbul {
			return 800
		}
		return 200
	}
	if status == Cold {
		return params.ColdSloadCost
	}
	return params.WarmStorageReadCost
}

// refundQuotient returns the divisor applied to gas_used to bound the
// credited refund (§4.2, §4.4): /5 post-London, /2 before.
func refundQuotient(rules params.Rules) uint64 {
	if rules.IsLondon {
		return params.MaxRefundQuotientLondon
	}
	return params.MaxRefundQuotientLegacy
}

// CreditedRefund caps frame's accumulated refund at gas_used/5 (post-London,
// /2 before), per §4.2's "Gas refund credited to the caller on clean RETURN"
// rule and §8's "for all executions that return normally, gas_refund_credited
// <= gas_used / 5" property. gasUsed is initial_gas - gas_left_on_exit,
// measured by the caller (a frame does not know its own initial gas).
func CreditedRefund(rules params.Rules, gasUsed, refund uint64) uint64 {
	limit := gasUsed / refundQuotient(rules)
	if refund > limit {
		return limit
	}
	return refund
}

// memoryGasCost charges the §4.2 expansion formula for growing memory from
// its current size to cover [offset, offset+size). Returns 0 extra cost
// (and leaves memory untouched) for zero-length accesses.
func memoryGasCost(mem *Memory, offset, size uint64) (uint64, uint64, error) {
	newSize, ok := memorySizeForAccess(offset, size)
	if !ok {
		return 0, 0, ErrTooLargeRequiredMemory
	}
	curSize := uint64(mem.Len())
	if newSize <= curSize {
		return 0, curSize, nil
	}
	cost := expansionCost(words(curSize), words(newSize))
	return cost, newSize, nil
}
