// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package examples provides contracts with an (int)->int entry point and a
// Go reference implementation of the same function. They are used for
// end-to-end tests, benchmarks, and the command line tool.
package examples

import (
	"fmt"
	"math"
	"slices"

	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
)

var (
	// ContractAddress is the address the example code is deployed at.
	ContractAddress = vela.Address{0x42}
	// CallerAddress is the sender and origin of example calls.
	CallerAddress = vela.Address{0x01}
)

// Example is an executable description of a contract and an entry point with a (int)->int signature.
type Example struct {
	exampleSpec
}

type exampleSpec struct {
	Name      string
	code      vela.Code
	function  uint32        // < selector of the called function, ignored by hand-written code
	reference func(int) int // < computes the same function in Go
}

func (s exampleSpec) build() Example {
	return Example{exampleSpec: s}
}

// Code returns the runtime code of the example contract.
func (e *Example) Code() vela.Code {
	return slices.Clone(e.code)
}

// Input returns the call data invoking the example with the given argument.
func (e *Example) Input(argument int) vela.Data {
	return encodeArgument(e.function, argument)
}

// State returns a world state with the example contract deployed.
func (e *Example) State() state.WorldState {
	return state.WorldState{
		ContractAddress: state.Account{Code: e.Code()},
	}
}

type Result struct {
	Result  int
	UsedGas vela.Gas
}

// RunOn runs this example as a single message on the given processor.
func (e *Example) RunOn(processor vela.Processor, argument int) (Result, error) {
	const initialGas = math.MaxInt64
	context := state.NewContext(e.State())
	res, err := processor.RunCall(
		vela.BlockParameters{},
		vela.TransactionParameters{Origin: CallerAddress},
		vela.Message{
			Kind:      vela.Call,
			Sender:    CallerAddress,
			Recipient: ContractAddress,
			Input:     e.Input(argument),
			Gas:       initialGas,
		},
		context,
	)
	if err != nil {
		return Result{}, err
	}
	if !res.Success {
		return Result{}, fmt.Errorf("execution of example %s failed: %w", e.Name, res.Err)
	}

	result, err := decodeOutput(res.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Result:  result,
		UsedGas: res.GasUsed,
	}, nil
}

// RunReference runs the reference function of this example to produce the expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

// GetAllExamples lists all examples, sorted by name.
func GetAllExamples() []Example {
	res := []Example{
		GetArithmeticExample(),
		GetFibExample(),
		GetSha3Example(),
		GetJumpdestAnalysisExample(),
		GetPush32AnalysisExample(),
	}
	slices.SortFunc(res, func(a, b Example) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return res
}

// GetExample looks up an example by name.
func GetExample(name string) (Example, bool) {
	for _, example := range GetAllExamples() {
		if example.Name == name {
			return example, true
		}
	}
	return Example{}, false
}

func encodeArgument(function uint32, arg int) vela.Data {
	// function selector followed by the argument padded to 32 bytes
	data := make(vela.Data, 4+32)

	data[0] = byte(function >> 24)
	data[1] = byte(function >> 16)
	data[2] = byte(function >> 8)
	data[3] = byte(function)

	data[4+28] = byte(arg >> 24)
	data[5+28] = byte(arg >> 16)
	data[6+28] = byte(arg >> 8)
	data[7+28] = byte(arg)

	return data
}

func decodeOutput(output vela.Data) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return (int(output[28]) << 24) | (int(output[29]) << 16) | (int(output[30]) << 8) | (int(output[31]) << 0), nil
}
