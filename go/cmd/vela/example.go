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
	"slices"
	"strings"
	"time"

	"github.com/Fantom-foundation/Vela/go/examples"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
)

var ExampleCmd = addCommonFlags(cli.Command{
	Action:    doExample,
	Name:      "example",
	Usage:     "Runs an example contract repeatedly and reports its throughput",
	ArgsUsage: "<example>",
	Flags: []cli.Flag{
		interpreterFlag,
		processorFlag,
		&cli.IntFlag{
			Name:  "argument",
			Usage: "argument passed to the example contract",
			Value: 10,
		},
		&cli.IntFlag{
			Name:  "rounds",
			Usage: "number of executions",
			Value: 1000,
		},
	},
})

func doExample(ctx *cli.Context) error {
	name := ctx.Args().First()
	example, found := examples.GetExample(name)
	if !found {
		names := []string{}
		for _, cur := range examples.GetAllExamples() {
			names = append(names, cur.Name)
		}
		return fmt.Errorf("unknown example %q, use one of: %s", name, strings.Join(names, ", "))
	}

	processor, interpreter, err := createProcessor(ctx, nil)
	if err != nil {
		return err
	}
	if profiler, ok := interpreter.(vela.ProfilingInterpreter); ok {
		profiler.ResetProfile()
		defer profiler.DumpProfile()
	}

	argument := ctx.Int("argument")
	rounds := ctx.Int("rounds")
	if rounds <= 0 {
		return fmt.Errorf("number of rounds must be positive, got %d", rounds)
	}
	want := example.RunReference(argument)

	out := ctx.App.Writer
	fmt.Fprintf(out, "Running %s(%d) %d times ...\n", example.Name, argument, rounds)
	durations := make([]time.Duration, 0, rounds)
	gas := vela.Gas(0)
	start := time.Now()
	for i := 0; i < rounds; i++ {
		roundStart := time.Now()
		result, err := example.RunOn(processor, argument)
		if err != nil {
			return err
		}
		durations = append(durations, time.Since(roundStart))
		if result.Result != want {
			return fmt.Errorf("unexpected result in round %d, wanted %d, got %d", i, want, result.Result)
		}
		gas += result.UsedGas
	}
	total := time.Since(start)

	slices.Sort(durations)
	fmt.Fprintf(out, "Result:     %d\n", want)
	fmt.Fprintf(out, "Gas/call:   %d\n", gas/vela.Gas(rounds))
	fmt.Fprintf(out, "Median:     %v\n", durations[len(durations)/2])
	fmt.Fprintf(out, "Throughput: %scalls/s, %sgas/s\n",
		unitconv.FormatPrefix(float64(rounds)/total.Seconds(), unitconv.SI, 1),
		unitconv.FormatPrefix(float64(gas)/total.Seconds(), unitconv.SI, 1),
	)
	return nil
}
