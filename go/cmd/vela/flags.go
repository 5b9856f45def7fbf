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
	"runtime/pprof"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var verbosityFlag = &cli.IntFlag{
	Name:  "verbosity",
	Usage: "log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
	Value: 3,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:      "cpuprofile",
	Usage:     "store CPU profile in the provided filename",
	TakesFile: true,
}

var interpreterFlag = &cli.StringFlag{
	Name:  "interpreter",
	Usage: "name of the registered interpreter to use",
	Value: "evm",
}

var processorFlag = &cli.StringFlag{
	Name:  "processor",
	Usage: "name of the registered processor to use",
	Value: "floria",
}

func setupLogging(ctx *cli.Context) error {
	level := ctx.Int(verbosityFlag.Name)
	if level < 0 || level > 5 {
		return fmt.Errorf("invalid verbosity %d, must be in [0,5]", level)
	}
	handler := log.NewGlogHandler(log.NewTerminalHandler(ctx.App.ErrWriter, false))
	handler.Verbosity(log.FromLegacyLevel(level))
	log.SetDefault(log.NewLogger(handler))
	return nil
}

// addCommonFlags extends the given command by the flags shared among all
// commands and wraps its action accordingly.
func addCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, cpuProfileFlag)

	action := command.Action
	command.Action = func(ctx *cli.Context) error {
		if filename := ctx.String(cpuProfileFlag.Name); filename != "" {
			f, err := os.Create(filename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}
		return action(ctx)
	}
	return command
}

// createProcessor instantiates the interpreter and processor selected by
// the command line flags.
func createProcessor(ctx *cli.Context, hooks *vela.Hooks) (vela.Processor, vela.Interpreter, error) {
	interpreterName := ctx.String(interpreterFlag.Name)
	interpreter, err := vela.NewInterpreter(interpreterName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create interpreter %q: %w", interpreterName, err)
	}

	config := vela.DefaultProcessorConfig()
	config.Hooks = hooks
	processorName := ctx.String(processorFlag.Name)
	processor := vela.GetProcessor(processorName, interpreter, config)
	if processor == nil {
		return nil, nil, fmt.Errorf("unknown processor %q", processorName)
	}
	return processor, interpreter, nil
}
