package vm

import "github.com/bnb-chain/evmcore/params"

func minStackOf(pops int) int { return pops }

func maxStackOf(pops, pushes int) int { return params.StackLimit + pops - pushes }

// newCancunInstructionSet builds the full 256-entry table for the Cancun
// revision (§1's default); NewJumpTable derives earlier revisions from it
// by masking out opcodes that didn't exist yet.
func newCancunInstructionSet() *JumpTable {
	tbl := &JumpTable{}
	for i := range tbl {
		tbl[i] = &operation{execute: opUndefined, undefined: true}
	}

	set := func(op OpCode, o operation) { tbl[op] = &o }

	set(STOP, operation{execute: opStop, minStack: minStackOf(0), maxStack: maxStackOf(0, 0)})
	set(ADD, operation{execute: opAdd, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(MUL, operation{execute: opMul, constantGas: params.GasFastStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SUB, operation{execute: opSub, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(DIV, operation{execute: opDiv, constantGas: params.GasFastStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SDIV, operation{execute: opSdiv, constantGas: params.GasFastStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(MOD, operation{execute: opMod, constantGas: params.GasFastStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SMOD, operation{execute: opSmod, constantGas: params.GasFastStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(ADDMOD, operation{execute: opAddmod, constantGas: params.GasMidStep, minStack: minStackOf(3), maxStack: maxStackOf(3, 1)})
	set(MULMOD, operation{execute: opMulmod, constantGas: params.GasMidStep, minStack: minStackOf(3), maxStack: maxStackOf(3, 1)})
	set(EXP, operation{execute: opExp, constantGas: params.ExpGas, dynamicGas: gasExp, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SIGNEXTEND, operation{execute: opSignExtend, constantGas: params.GasFastStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})

	set(LT, operation{execute: opLt, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(GT, operation{execute: opGt, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SLT, operation{execute: opSlt, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SGT, operation{execute: opSgt, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(EQ, operation{execute: opEq, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(ISZERO, operation{execute: opIszero, constantGas: params.GasFastestStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(AND, operation{execute: opAnd, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(OR, operation{execute: opOr, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(XOR, operation{execute: opXor, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(NOT, operation{execute: opNot, constantGas: params.GasFastestStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(BYTE, operation{execute: opByte, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SHL, operation{execute: opSHL, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SHR, operation{execute: opSHR, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})
	set(SAR, operation{execute: opSAR, constantGas: params.GasFastestStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 1)})

	set(KECCAK256, operation{
		execute: opKeccak256, constantGas: params.Keccak256Gas, dynamicGas: gasKeccak256,
		memorySize: memSingleWindow(0, 1), minStack: minStackOf(2), maxStack: maxStackOf(2, 1),
	})

	set(ADDRESS, operation{execute: opAddress, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(BALANCE, operation{execute: opBalance, dynamicGas: gasBalance, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(ORIGIN, operation{execute: opOrigin, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(CALLER, operation{execute: opCaller, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(CALLVALUE, operation{execute: opCallValue, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(CALLDATALOAD, operation{execute: opCallDataLoad, constantGas: params.GasFastestStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(CALLDATASIZE, operation{execute: opCallDataSize, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(CALLDATACOPY, operation{
		execute: opCallDataCopy, constantGas: params.GasFastestStep, dynamicGas: gasCopy(2),
		memorySize: memSingleWindow(0, 2), minStack: minStackOf(3), maxStack: maxStackOf(3, 0),
	})
	set(CODESIZE, operation{execute: opCodeSize, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(CODECOPY, operation{
		execute: opCodeCopy, constantGas: params.GasFastestStep, dynamicGas: gasCopy(2),
		memorySize: memSingleWindow(0, 2), minStack: minStackOf(3), maxStack: maxStackOf(3, 0),
	})
	set(GASPRICE, operation{execute: opGasprice, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(EXTCODESIZE, operation{execute: opExtCodeSize, dynamicGas: gasExtCodeSize, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(EXTCODECOPY, operation{
		execute: opExtCodeCopy, dynamicGas: gasExtCodeCopy,
		memorySize: memSingleWindow(1, 3), minStack: minStackOf(4), maxStack: maxStackOf(4, 0),
	})
	set(RETURNDATASIZE, operation{execute: opReturnDataSize, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(RETURNDATACOPY, operation{
		execute: opReturnDataCopy, constantGas: params.GasFastestStep, dynamicGas: gasCopy(2),
		memorySize: memSingleWindow(0, 2), minStack: minStackOf(3), maxStack: maxStackOf(3, 0),
	})
	set(EXTCODEHASH, operation{execute: opExtCodeHash, dynamicGas: gasExtCodeHash, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})

	set(BLOCKHASH, operation{execute: opBlockhash, constantGas: params.GasExtStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(COINBASE, operation{execute: opCoinbase, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(TIMESTAMP, operation{execute: opTimestamp, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(NUMBER, operation{execute: opNumber, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(PREVRANDAO, operation{execute: opRandom, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(GASLIMIT, operation{execute: opGasLimit, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(CHAINID, operation{execute: opChainID, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(SELFBALANCE, operation{execute: opSelfBalance, constantGas: params.GasFastStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(BASEFEE, operation{execute: opBaseFee, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(BLOBHASH, operation{execute: opBlobHash, constantGas: params.GasFastestStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(BLOBBASEFEE, operation{execute: opBlobBaseFee, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})

	set(POP, operation{execute: opPop, constantGas: params.GasQuickStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 0)})
	set(MLOAD, operation{
		execute: opMload, constantGas: params.GasFastestStep,
		memorySize: memFixedWindow(0, 32), minStack: minStackOf(1), maxStack: maxStackOf(1, 1),
	})
	set(MSTORE, operation{
		execute: opMstore, constantGas: params.GasFastestStep,
		memorySize: memFixedWindow(0, 32), minStack: minStackOf(2), maxStack: maxStackOf(2, 0),
	})
	set(MSTORE8, operation{
		execute: opMstore8, constantGas: params.GasFastestStep,
		memorySize: memFixedWindow(0, 1), minStack: minStackOf(2), maxStack: maxStackOf(2, 0),
	})
	set(SLOAD, operation{execute: opSload, dynamicGas: gasSload, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(SSTORE, operation{execute: opSstore, dynamicGas: gasSstore, minStack: minStackOf(2), maxStack: maxStackOf(2, 0)})
	set(JUMP, operation{execute: opJump, constantGas: params.GasMidStep, minStack: minStackOf(1), maxStack: maxStackOf(1, 0)})
	set(JUMPI, operation{execute: opJumpi, constantGas: params.GasSlowStep, minStack: minStackOf(2), maxStack: maxStackOf(2, 0)})
	set(PC, operation{execute: opPc, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(MSIZE, operation{execute: opMsize, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(GAS, operation{execute: opGas, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	set(JUMPDEST, operation{execute: opJumpdest, constantGas: params.JumpdestGas, minStack: minStackOf(0), maxStack: maxStackOf(0, 0)})
	set(TLOAD, operation{execute: opTload, constantGas: params.WarmStorageReadCost, minStack: minStackOf(1), maxStack: maxStackOf(1, 1)})
	set(TSTORE, operation{execute: opTstore, constantGas: params.WarmStorageReadCost, minStack: minStackOf(2), maxStack: maxStackOf(2, 0)})
	set(MCOPY, operation{
		execute: opMcopy, constantGas: params.GasFastestStep, dynamicGas: gasCopy(2),
		memorySize: memMcopy, minStack: minStackOf(3), maxStack: maxStackOf(3, 0),
	})
	set(PUSH0, operation{execute: opPush0, constantGas: params.GasQuickStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})

	for n := 1; n <= 32; n++ {
		op := OpCode(int(PUSH1) + n - 1)
		set(op, operation{execute: makePush(n), constantGas: params.GasFastestStep, minStack: minStackOf(0), maxStack: maxStackOf(0, 1)})
	}
	for n := 1; n <= 16; n++ {
		op := OpCode(int(DUP1) + n - 1)
		set(op, operation{execute: makeDup(n), constantGas: params.GasFastestStep, minStack: minStackOf(n), maxStack: maxStackOf(n, n+1)})
	}
	for n := 1; n <= 16; n++ {
		op := OpCode(int(SWAP1) + n - 1)
		set(op, operation{execute: makeSwap(n), constantGas: params.GasFastestStep, minStack: minStackOf(n + 1), maxStack: maxStackOf(n+1, n+1)})
	}
	for n := 0; n <= 4; n++ {
		op := OpCode(int(LOG0) + n)
		set(op, operation{
			execute: makeLog(n), constantGas: params.LogGas, dynamicGas: gasLog(n),
			memorySize: memSingleWindow(0, 1), minStack: minStackOf(n + 2), maxStack: maxStackOf(n+2, 0),
		})
	}

	set(CREATE, operation{
		execute: opCreate, constantGas: params.GasCreate, dynamicGas: gasCreate,
		memorySize: memSingleWindow(1, 2), minStack: minStackOf(3), maxStack: maxStackOf(3, 1),
	})
	set(CALL, operation{
		execute: opCall, dynamicGas: gasCall(CallKindCall),
		memorySize: memTwoWindows(3, 4, 5, 6), minStack: minStackOf(7), maxStack: maxStackOf(7, 1),
	})
	set(CALLCODE, operation{
		execute: opCallCode, dynamicGas: gasCall(CallKindCallCode),
		memorySize: memTwoWindows(3, 4, 5, 6), minStack: minStackOf(7), maxStack: maxStackOf(7, 1),
	})
	set(RETURN, operation{execute: opReturn, memorySize: memSingleWindow(0, 1), minStack: minStackOf(2), maxStack: maxStackOf(2, 0)})
	set(DELEGATECALL, operation{
		execute: opDelegateCall, dynamicGas: gasCall(CallKindDelegateCall),
		memorySize: memTwoWindows(2, 3, 4, 5), minStack: minStackOf(6), maxStack: maxStackOf(6, 1),
	})
	set(CREATE2, operation{
		execute: opCreate2, constantGas: params.GasCreate, dynamicGas: gasCreate2,
		memorySize: memSingleWindow(1, 2), minStack: minStackOf(4), maxStack: maxStackOf(4, 1),
	})
	set(STATICCALL, operation{
		execute: opStaticCall, dynamicGas: gasCall(CallKindStaticCall),
		memorySize: memTwoWindows(2, 3, 4, 5), minStack: minStackOf(6), maxStack: maxStackOf(6, 1),
	})
	set(REVERT, operation{execute: opRevert, memorySize: memSingleWindow(0, 1), minStack: minStackOf(2), maxStack: maxStackOf(2, 0)})
	set(INVALID, operation{execute: opUndefined, minStack: minStackOf(0), maxStack: maxStackOf(0, 0)})
	set(SELFDESTRUCT, operation{execute: opSelfdestruct, constantGas: params.GasSelfdestruct, dynamicGas: gasSelfdestruct, minStack: minStackOf(1), maxStack: maxStackOf(1, 0)})

	return tbl
}
