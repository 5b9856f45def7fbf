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

	"github.com/Fantom-foundation/Vela/go/examples"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var ListCmd = cli.Command{
	Action: doList,
	Name:   "list",
	Usage:  "Lists the available interpreters, processors, and examples",
}

func doList(ctx *cli.Context) error {
	out := ctx.App.Writer

	interpreters := maps.Keys(vela.GetAllRegisteredInterpreters())
	slices.Sort(interpreters)
	fmt.Fprintln(out, "Interpreters:")
	for _, name := range interpreters {
		fmt.Fprintf(out, "\t%s\n", name)
	}

	processors := maps.Keys(vela.GetAllRegisteredProcessorFactories())
	slices.Sort(processors)
	fmt.Fprintln(out, "Processors:")
	for _, name := range processors {
		fmt.Fprintf(out, "\t%s\n", name)
	}

	fmt.Fprintln(out, "Examples:")
	for _, example := range examples.GetAllExamples() {
		fmt.Fprintf(out, "\t%s\n", example.Name)
	}
	return nil
}
