// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Fantom-foundation/Vela/go/examples"
	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var RunCmd = addCommonFlags(cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Runs the given contract code as a single message call",
	ArgsUsage: "<hex code>",
	Flags: []cli.Flag{
		interpreterFlag,
		processorFlag,
		&cli.StringFlag{
			Name:      "code-file",
			Usage:     "read the hex encoded contract code from the given file",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "input",
			Usage: "hex encoded call data",
		},
		&cli.Int64Flag{
			Name:  "gas",
			Usage: "gas provided to the call",
			Value: 10_000_000,
		},
		&cli.Uint64Flag{
			Name:  "value",
			Usage: "value transferred with the call",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "log every executed instruction",
		},
	},
})

func doRun(ctx *cli.Context) error {
	code, err := readCode(ctx)
	if err != nil {
		return err
	}
	input, err := parseHex(ctx.String("input"))
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return fmt.Errorf("no code provided, use an argument or --code-file")
	}

	hooks := vela.NewHooks()
	if ctx.Bool("trace") {
		hooks.Step.Subscribe(func(step vela.Step) error {
			log.Info("Step", "depth", step.Depth, "pc", step.Pc, "op", step.OpName(), "gas", step.Gas, "stack", len(step.Stack))
			return nil
		})
	}
	hooks.BeforeMessage.Subscribe(func(message vela.Message) error {
		log.Debug("Message", "kind", message.Kind, "from", message.Sender, "to", message.Recipient, "gas", message.Gas, "depth", message.Depth)
		return nil
	})
	hooks.NewContract.Subscribe(func(contract vela.NewContract) error {
		log.Debug("New contract", "address", contract.Address, "size", len(contract.Code))
		return nil
	})

	processor, _, err := createProcessor(ctx, hooks)
	if err != nil {
		return err
	}

	value := vela.NewValue(ctx.Uint64("value"))
	context := state.NewContext(state.WorldState{
		examples.CallerAddress:   {Balance: value},
		examples.ContractAddress: {Code: code},
	})
	gas := vela.Gas(ctx.Int64("gas"))
	result, err := processor.RunCall(
		vela.BlockParameters{},
		vela.TransactionParameters{Origin: examples.CallerAddress},
		vela.Message{
			Kind:      vela.Call,
			Sender:    examples.CallerAddress,
			Recipient: examples.ContractAddress,
			Input:     vela.Data(input),
			Value:     value,
			Gas:       gas,
		},
		context,
	)
	if err != nil {
		return fmt.Errorf("failed to run code: %w", err)
	}

	out := ctx.App.Writer
	fmt.Fprintf(out, "Success:  %t\n", result.Success)
	if result.Err != nil {
		fmt.Fprintf(out, "Error:    %v\n", result.Err)
	}
	fmt.Fprintf(out, "Output:   0x%x\n", result.Output)
	fmt.Fprintf(out, "Gas used: %d\n", result.GasUsed)
	fmt.Fprintf(out, "Refund:   %d\n", result.GasRefund)
	for _, entry := range result.Logs {
		fmt.Fprintf(out, "Log:      %v topics=%v data=0x%x\n", entry.Address, entry.Topics, entry.Data)
	}
	return nil
}

func readCode(ctx *cli.Context) (vela.Code, error) {
	if filename := ctx.String("code-file"); filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read code: %w", err)
		}
		return parseHex(string(data))
	}
	return parseHex(ctx.Args().First())
}

func parseHex(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
		text = "0x" + text
	}
	data, err := hexutil.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("invalid hex encoding %q: %w", text, err)
	}
	return data, nil
}
