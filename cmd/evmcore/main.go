// Command evmcore runs a standalone EVM bytecode buffer to completion and
// reports gas usage, return data and (optionally) an opcode trace. It is
// the thin driver §1 puts out of scope for the core: everything it does
// beyond loading bytecode and printing results belongs to core/vm,
// core/compiler and runtime.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bnb-chain/evmcore/common"
	"github.com/bnb-chain/evmcore/core/compiler"
	"github.com/bnb-chain/evmcore/core/vm"
	"github.com/bnb-chain/evmcore/loader"
	"github.com/bnb-chain/evmcore/log"
	"github.com/bnb-chain/evmcore/params"
	"github.com/bnb-chain/evmcore/runtime"
)

var (
	codeFlag = &cli.StringFlag{
		Name:  "code",
		Usage: "contract bytecode as hex (with or without 0x prefix)",
	}
	fileFlag = &cli.StringFlag{
		Name:  "codefile",
		Usage: "path to a file containing hex-encoded bytecode",
	}
	rawFileFlag = &cli.StringFlag{
		Name:  "rawfile",
		Usage: "path to a file containing raw (non-hex) bytecode bytes",
	}
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "calldata as hex (with or without 0x prefix)",
	}
	gasFlag = &cli.Uint64Flag{
		Name:  "gas",
		Usage: "gas available to the top-level execution",
		Value: 10_000_000,
	}
	valueFlag = &cli.StringFlag{
		Name:  "value",
		Usage: "wei value sent with the top-level call, decimal",
		Value: "0",
	}
	mirFlag = &cli.BoolFlag{
		Name:  "mir",
		Usage: "run through the EVM-to-MIR compiler and the reference MIR evaluator instead of the direct interpreter",
	}
	traceFlag = &cli.BoolFlag{
		Name:  "trace",
		Usage: "print an opcode-level trace (interpreter path only)",
	}
	revisionFlag = &cli.StringFlag{
		Name:  "revision",
		Usage: "chain revision to run under (istanbul, berlin, london, cancun)",
		Value: "cancun",
	}
)

func main() {
	app := &cli.App{
		Name:  "evmcore",
		Usage: "run EVM bytecode through the interpreter or the MIR compiler",
		Flags: []cli.Flag{
			codeFlag, fileFlag, rawFileFlag, inputFlag, gasFlag, valueFlag, mirFlag, traceFlag, revisionFlag,
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Error("evmcore: run failed", "err", err)
		fmt.Fprintf(os.Stderr, "evmcore: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	code, err := loadCode(c)
	if err != nil {
		return err
	}
	input := common.FromHex(c.String(inputFlag.Name))

	rules := revisionRules(c.String(revisionFlag.Name))
	recipient := common.HexToAddress("0x00000000000000000000000000000000000a11")
	value := vm.NewU256(0)
	if err := value.SetFromDecimal(c.String(valueFlag.Name)); err != nil {
		return errors.Wrap(err, "evmcore: invalid --value")
	}

	if c.Bool(mirFlag.Name) {
		return runMIR(code, input, rules)
	}
	return runInterpreter(code, input, recipient, value, c.Uint64(gasFlag.Name), rules, c.Bool(traceFlag.Name))
}

func loadCode(c *cli.Context) ([]byte, error) {
	switch {
	case c.String(codeFlag.Name) != "":
		return loader.LoadHexString(c.String(codeFlag.Name))
	case c.String(fileFlag.Name) != "":
		return loader.LoadHexFile(c.String(fileFlag.Name))
	case c.String(rawFileFlag.Name) != "":
		return loader.LoadRawFile(c.String(rawFileFlag.Name))
	default:
		return nil, cli.Exit("one of --code, --codefile or --rawfile is required", 1)
	}
}

func revisionRules(name string) params.Rules {
	switch name {
	case "istanbul":
		return params.RulesForRevision(params.Istanbul)
	case "berlin":
		return params.RulesForRevision(params.Berlin)
	case "london":
		return params.RulesForRevision(params.London)
	default:
		return params.RulesForRevision(params.Cancun)
	}
}

func runInterpreter(code, input []byte, recipient common.Address, value *vm.U256, gas uint64, rules params.Rules, trace bool) error {
	host := newMemHost(code, recipient, nil)

	cfg := vm.Config{Rules: rules}
	if trace {
		cfg.Tracer = &vm.Hooks{
			OnOpcode: func(pc uint64, op vm.OpCode, gasLeft, cost uint64, frame *vm.Frame, returnData []byte, depth int, err error) {
				fmt.Printf("pc=%04d op=%-14s gas=%d cost=%d depth=%d\n", pc, op.String(), gasLeft, cost, depth)
			},
			OnFault: func(pc uint64, op vm.OpCode, gasLeft, cost uint64, frame *vm.Frame, depth int, err error) {
				fmt.Printf("pc=%04d op=%-14s FAULT: %v\n", pc, op.String(), err)
			},
		}
	}
	evm := vm.NewEVMWithConfig(host, cfg)
	host.evm = evm

	frame, err := vm.NewTopLevelFrame(common.Address{}, recipient, value, gas, code, input)
	if err != nil {
		return err
	}
	defer frame.Release()

	ret, leftOver, err := evm.Call(frame)
	gasUsed := (gas - params.TxGas) - leftOver
	refund := vm.CreditedRefund(rules, gasUsed, frame.GasRefund)

	printResult(err, ret, gasUsed, refund)
	return nil
}

// runMIR compiles code with core/compiler and evaluates it with the
// reference tree-walking Eval (§12's "reference MIR executor"), wired
// against the same Host semantics via runtime.Context/Table so its
// output can be diffed against the interpreter path's for the same code.
func runMIR(code, input []byte, rules params.Rules) error {
	prog, err := compiler.Compile(code, vm.Config{Rules: rules})
	if err != nil {
		return err
	}

	host := newMemHost(code, common.Address{}, nil)
	frame := vm.NewFrame(common.Address{}, common.Address{}, vm.NewU256(0), 10_000_000, code, false, vm.CallKindCall, 0)
	frame.Input = input
	defer frame.Release()

	evm := vm.NewEVM(host, rules)
	host.evm = evm
	ctx := runtime.New(frame, host)

	out, err := compiler.NewEval(ctx.Table()).Run(prog)
	printResult(err, out, 0, 0)
	return nil
}

func printResult(err error, ret []byte, gasUsed, refund uint64) {
	if err != nil && err != vm.ErrExecutionReverted {
		fmt.Printf("status: %s\n", err)
		return
	}
	status := "success"
	if err == vm.ErrExecutionReverted {
		status = "reverted"
	}
	fmt.Printf("status: %s\n", status)
	fmt.Printf("gas used: %d\n", gasUsed)
	fmt.Printf("gas refund: %d\n", refund)
	fmt.Printf("return data: 0x%s\n", hex.EncodeToString(ret))
}
