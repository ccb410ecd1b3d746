package runtime

import (
	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/core/compiler"
	"github.com/bnb-chain/evmcore/core/vm"
)

// --- ArgValue <-> domain-type conversions -----------------------------

func argU256Val(a compiler.ArgValue) vm.U256 { return vm.U256(a.U256) }

func u256Arg(u vm.U256) compiler.ArgValue {
	return compiler.ArgValue{Kind: compiler.ArgU256, U256: vm.Limbs(&u)}
}

func u64Arg(v uint64) compiler.ArgValue {
	return compiler.ArgValue{Kind: compiler.ArgU64, U64: v}
}

func bytes32Arg(b []byte) compiler.ArgValue {
	var buf [32]byte
	copy(buf[32-len(b):], b)
	return compiler.ArgValue{Kind: compiler.ArgBytes32, Bytes: buf[:]}
}

func addrOf(u vm.U256) common.Address { return common.Address(u.Bytes20()) }

func u256FromAddr(addr common.Address) vm.U256 {
	var u vm.U256
	u.SetBytes(addr.Bytes())
	return u
}

func u256FromHash(h common.Hash) vm.U256 { return *vm.U256FromHash(h) }

// zeroPadded mirrors core/vm/util.go's getData: data[offset:offset+size],
// zero-padded where the window runs past data's end (or starts past it
// entirely).
func zeroPadded(data []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset > uint64(len(data)) {
		return out
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}

func binop(f func(z, x, y *vm.U256) *vm.U256) compiler.RuntimeFunc {
	return func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		x, y := argU256Val(args[0]), argU256Val(args[1])
		var z vm.U256
		f(&z, &x, &y)
		return u256Arg(z), nil
	}
}

// newTable builds the C13 runtime function table against c. Every entry is
// grounded on the correspondingly named opXxx handler in
// core/vm/instructions.go, adapted from Stack.pop()/peek() to the
// []compiler.ArgValue calling convention C13/the visitor establishes
// (arguments arrive in EVM stack pop order). None of these entries charge
// or check gas: gas accounting for the compiled path is a backend concern
// (the C13 calling convention only carries values), so frame.Gas is read
// where an opcode exposes it but never debited here.
func newTable(c *Context) compiler.RuntimeTable {
	f := c.Frame
	h := c.Host

	t := compiler.RuntimeTable{
		"mul":  binop(func(z, x, y *vm.U256) *vm.U256 { return z.Mul(x, y) }),
		"div":  binop(func(z, x, y *vm.U256) *vm.U256 { return z.Div(x, y) }),
		"sdiv": binop(func(z, x, y *vm.U256) *vm.U256 { return z.SDiv(x, y) }),
		"mod":  binop(func(z, x, y *vm.U256) *vm.U256 { return z.Mod(x, y) }),
		"smod": binop(func(z, x, y *vm.U256) *vm.U256 { return z.SMod(x, y) }),

		"addmod": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			x, y, m := argU256Val(args[0]), argU256Val(args[1]), argU256Val(args[2])
			var z vm.U256
			z.AddMod(&x, &y, &m)
			return u256Arg(z), nil
		},
		"mulmod": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			x, y, m := argU256Val(args[0]), argU256Val(args[1]), argU256Val(args[2])
			var z vm.U256
			z.MulMod(&x, &y, &m)
			return u256Arg(z), nil
		},
		"exp": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			base, exp := argU256Val(args[0]), argU256Val(args[1])
			var z vm.U256
			z.Exp(&base, &exp)
			return u256Arg(z), nil
		},
		"signextend": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			back, num := argU256Val(args[0]), argU256Val(args[1])
			var z vm.U256
			z.ExtendSign(&num, &back)
			return u256Arg(z), nil
		},
		"byte": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			idx, val := argU256Val(args[0]), argU256Val(args[1])
			val.Byte(&idx)
			return u256Arg(val), nil
		},
		"keccak256": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			off, size := args[0].U64, args[1].U64
			f.Memory.EnsureSize(off, size)
			return bytes32Arg(c.keccak256(f.Memory.GetPtr(off, size))), nil
		},

		"address":   func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(u256FromAddr(f.Address)), nil },
		"origin":    func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(u256FromAddr(h.GetTxContext().Origin)), nil },
		"caller":    func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(u256FromAddr(f.Caller)), nil },
		"callvalue": func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(*f.Value), nil },
		"balance": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			addr := addrOf(argU256Val(args[0]))
			return u256Arg(*h.GetBalance(addr)), nil
		},
		"selfbalance": func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(*h.GetBalance(f.Address)), nil },
		"gasprice":    func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(*h.GetTxContext().GasPrice), nil },
		"coinbase":    func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(u256FromAddr(h.GetTxContext().Coinbase)), nil },
		"timestamp":   func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(h.GetTxContext().BlockTime), nil },
		"number":      func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(h.GetTxContext().BlockNumber), nil },
		"prevrandao":  func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(u256FromHash(h.GetTxContext().PrevRandao)), nil },
		"gaslimit":    func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(h.GetTxContext().GasLimit), nil },
		"chainid":     func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(*h.GetTxContext().ChainID), nil },
		"basefee":     func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(*h.GetTxContext().BaseFee), nil },
		"blobbasefee": func([]compiler.ArgValue) (compiler.ArgValue, error) { return u256Arg(*h.GetTxContext().BlobBaseFee), nil },
		"gas":         func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(f.Gas), nil },

		"blockhash": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			num := args[0].U64
			tctx := h.GetTxContext()
			var lower uint64
			if tctx.BlockNumber >= 257 {
				lower = tctx.BlockNumber - 256
			}
			if num >= lower && num < tctx.BlockNumber {
				return bytes32Arg(h.GetBlockHash(num).Bytes()), nil
			}
			return bytes32Arg(nil), nil
		},
		"blobhash": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			idx := args[0].U64
			hashes := h.GetTxContext().BlobHashes
			if idx < uint64(len(hashes)) {
				return u256Arg(u256FromHash(hashes[idx])), nil
			}
			return u256Arg(vm.U256{}), nil
		},

		"calldataload": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			var z vm.U256
			z.SetBytes(zeroPadded(f.Input, args[0].U64, 32))
			return u256Arg(z), nil
		},
		"calldatasize": func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(uint64(len(f.Input))), nil },
		"calldatacopy": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			dst, src, size := args[0].U64, args[1].U64, args[2].U64
			f.Memory.EnsureSize(dst, size)
			f.Memory.Set(dst, size, zeroPadded(f.Input, src, size))
			return compiler.ArgValue{}, nil
		},
		"returndatasize": func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(uint64(len(f.ReturnData))), nil },
		"returndatacopy": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			dst, src, size := args[0].U64, args[1].U64, args[2].U64
			end := src + size
			if end < src || uint64(len(f.ReturnData)) < end {
				return compiler.ArgValue{}, vm.ErrReturnDataOutOfBounds
			}
			f.Memory.EnsureSize(dst, size)
			f.Memory.Set(dst, size, f.ReturnData[src:end])
			return compiler.ArgValue{}, nil
		},
		"codesize": func([]compiler.ArgValue) (compiler.ArgValue, error) { return u64Arg(uint64(f.CodeSize())), nil },
		"codecopy": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			dst, src, size := args[0].U64, args[1].U64, args[2].U64
			f.Memory.EnsureSize(dst, size)
			f.Memory.Set(dst, size, zeroPadded(f.Code()[:f.CodeSize()], src, size))
			return compiler.ArgValue{}, nil
		},
		"extcodesize": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			return u64Arg(h.GetCodeSize(addrOf(argU256Val(args[0])))), nil
		},
		"extcodehash": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			addr := addrOf(argU256Val(args[0]))
			if !h.AccountExists(addr) {
				return bytes32Arg(nil), nil
			}
			return bytes32Arg(h.GetCodeHash(addr).Bytes()), nil
		},
		"extcodecopy": func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			addr := addrOf(argU256Val(args[0]))
			dst, src, size := args[1].U64, args[2].U64, args[3].U64
			buf := make([]byte, size)
			h.CopyCode(addr, src, buf)
			f.Memory.EnsureSize(dst, size)
			f.Memory.Set(dst, size, buf)
			return compiler.ArgValue{}, nil
		},

	}

	t["sload"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		k := argU256Val(args[0])
		key := vm.ToHash(&k)
		return u256Arg(u256FromHash(h.GetStorage(f.Address, key))), nil
	}
	t["sstore"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		if f.Static {
			return compiler.ArgValue{}, vm.ErrStaticModeViolation
		}
		key, val := argU256Val(args[0]), argU256Val(args[1])
		h.SetStorage(f.Address, vm.ToHash(&key), vm.ToHash(&val))
		return compiler.ArgValue{}, nil
	}
	t["tload"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		k := argU256Val(args[0])
		key := vm.ToHash(&k)
		return u256Arg(u256FromHash(h.GetTransientStorage(f.Address, key))), nil
	}
	t["tstore"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		if f.Static {
			return compiler.ArgValue{}, vm.ErrStaticModeViolation
		}
		key, val := argU256Val(args[0]), argU256Val(args[1])
		h.SetTransientStorage(f.Address, vm.ToHash(&key), vm.ToHash(&val))
		return compiler.ArgValue{}, nil
	}

	t["mload"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		off := args[0].U64
		f.Memory.EnsureSize(off, 32)
		var z vm.U256
		z.SetBytes(f.Memory.GetPtr(off, 32))
		return u256Arg(z), nil
	}
	t["mstore"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		off := args[0].U64
		val := argU256Val(args[1])
		f.Memory.EnsureSize(off, 32)
		f.Memory.Set32(off, &val)
		return compiler.ArgValue{}, nil
	}
	t["mstore8"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		off := args[0].U64
		val := argU256Val(args[1])
		f.Memory.EnsureSize(off, 1)
		f.Memory.Set(off, 1, []byte{byte(val.Uint64())})
		return compiler.ArgValue{}, nil
	}
	t["mcopy"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		dst, src, size := args[0].U64, args[1].U64, args[2].U64
		f.Memory.EnsureSize(dst, size)
		f.Memory.EnsureSize(src, size)
		f.Memory.Copy(dst, src, size)
		return compiler.ArgValue{}, nil
	}

	for n := 0; n <= 4; n++ {
		n := n
		name := []string{"log0", "log1", "log2", "log3", "log4"}[n]
		t[name] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
			if f.Static {
				return compiler.ArgValue{}, vm.ErrStaticModeViolation
			}
			off, size := args[0].U64, args[1].U64
			topics := make([]common.Hash, n)
			for i := 0; i < n; i++ {
				v := argU256Val(args[2+i])
				topics[i] = vm.ToHash(&v)
			}
			f.Memory.EnsureSize(off, size)
			data := f.Memory.GetCopy(off, size)
			h.EmitLog(f.Address, data, topics)
			return compiler.ArgValue{}, nil
		}
	}

	t["create"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		return doCreate(f, h, args, vm.CallKindCreate)
	}
	t["create2"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		return doCreate(f, h, args, vm.CallKindCreate2)
	}
	t["call"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) { return doCall(f, h, args, vm.CallKindCall) }
	t["callcode"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) { return doCall(f, h, args, vm.CallKindCallCode) }
	t["delegatecall"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		return doCall(f, h, args, vm.CallKindDelegateCall)
	}
	t["staticcall"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		return doCall(f, h, args, vm.CallKindStaticCall)
	}

	t["selfdestruct"] = func(args []compiler.ArgValue) (compiler.ArgValue, error) {
		if f.Static {
			return compiler.ArgValue{}, vm.ErrStaticModeViolation
		}
		beneficiary := addrOf(argU256Val(args[0]))
		h.Selfdestruct(f.Address, beneficiary)
		return compiler.ArgValue{}, nil
	}

	return t
}

// doCreate is grounded on core/vm/instructions.go's doCreate: build a
// CallMessage, delegate entirely to Host.Call, and fold the result's gas
// and return-data back into the frame.
func doCreate(f *vm.Frame, h vm.Host, args []compiler.ArgValue, kind vm.CallKind) (compiler.ArgValue, error) {
	if f.Static {
		return compiler.ArgValue{}, vm.ErrStaticModeViolation
	}
	value := argU256Val(args[0])
	off, size := args[1].U64, args[2].U64
	f.Memory.EnsureSize(off, size)
	input := f.Memory.GetCopy(off, size)

	msg := vm.CallMessage{
		Kind:     kind,
		Static:   f.Static,
		Depth:    f.Depth + 1,
		Gas:      f.Gas,
		Sender:   f.Address,
		Value:    &value,
		Input:    input,
		CodeAddr: f.Address,
	}
	if kind == vm.CallKindCreate2 {
		salt := argU256Val(args[3])
		msg.Salt = &salt
	}

	result := h.Call(msg)
	f.Gas += result.GasLeft
	f.GasRefund += result.GasRefund
	if !result.Success {
		f.ReturnData = result.Output
		return u256Arg(vm.U256{}), nil
	}
	f.ReturnData = nil
	return u256Arg(u256FromAddr(result.CreateAddr)), nil
}

// doCall is grounded on core/vm/instructions.go's doCall: the same
// per-kind Sender/Value/Recipient substitutions, the value-transfer
// stipend, and the gas/return-data bookkeeping after Host.Call returns.
func doCall(f *vm.Frame, h vm.Host, args []compiler.ArgValue, kind vm.CallKind) (compiler.ArgValue, error) {
	i := 0
	gas := args[i].U64
	i++
	toAddr := addrOf(argU256Val(args[i]))
	i++
	var value vm.U256
	hasValue := kind == vm.CallKindCall || kind == vm.CallKindCallCode
	if hasValue {
		value = argU256Val(args[i])
		i++
	}
	inOff, inSize, outOff, outSize := args[i].U64, args[i+1].U64, args[i+2].U64, args[i+3].U64

	if kind == vm.CallKindCall && f.Static && !value.IsZero() {
		return compiler.ArgValue{}, vm.ErrStaticModeViolation
	}
	if !value.IsZero() {
		gas += 2300
	}

	f.Memory.EnsureSize(inOff, inSize)
	input := f.Memory.GetPtr(inOff, inSize)

	msg := vm.CallMessage{
		Kind:      kind,
		Static:    f.Static || kind == vm.CallKindStaticCall,
		Depth:     f.Depth + 1,
		Gas:       gas,
		Recipient: toAddr,
		Sender:    f.Address,
		Value:     &value,
		Input:     input,
		CodeAddr:  toAddr,
	}
	switch kind {
	case vm.CallKindDelegateCall:
		msg.Sender = f.Caller
		msg.Value = f.Value
		msg.Recipient = f.Address
	case vm.CallKindCallCode:
		msg.Recipient = f.Address
	}

	result := h.Call(msg)
	f.Memory.EnsureSize(outOff, outSize)
	// Set copies min(outSize, len(result.Output)) bytes, per Memory.Set;
	// a short output leaves the rest of the output window untouched,
	// matching doCall's frame.Memory.Set(retOffset, retSize, result.Output).
	f.Memory.Set(outOff, outSize, result.Output)
	f.Gas += result.GasLeft
	f.GasRefund += result.GasRefund
	f.ReturnData = result.Output

	if result.Success {
		return u64Arg(1), nil
	}
	return u64Arg(0), nil
}
