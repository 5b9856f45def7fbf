// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"fmt"

	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
	"github.com/holiman/uint256"
)

const initialTestGas vela.Gas = 1 << 44

// testContractAddress is the account running the code passed to testEVM.Run.
var testContractAddress = vela.Address{0x42}

// testEVM is a minimal EVM wrapping an interpreter into an environment
// capable of processing nested calls. It misses almost all features of a
// full message-call executor, most notably value transfers, snapshots, and
// contract creation, and is only intended for tests in this package.
type testEVM struct {
	interpreter vela.Interpreter
	state       *state.Context
}

func newTestEVM(variant string, world state.WorldState) *testEVM {
	interpreter, err := vela.NewInterpreter(variant)
	if err != nil {
		panic(fmt.Sprintf("failed to create interpreter %s: %v", variant, err))
	}
	return &testEVM{
		interpreter: interpreter,
		state:       state.NewContext(world),
	}
}

type runResult struct {
	Output  []byte
	GasUsed vela.Gas
	Success bool
	Err     error
}

func (e *testEVM) Run(code []byte, input []byte) (runResult, error) {
	return e.RunWithGas(code, input, initialTestGas)
}

func (e *testEVM) RunWithGas(code []byte, input []byte, gas vela.Gas) (runResult, error) {
	result, err := e.interpreter.Run(vela.Parameters{
		Context:   &runContextAdapter{Context: e.state, evm: e},
		Kind:      vela.Call,
		Gas:       gas,
		Recipient: testContractAddress,
		Input:     input,
		Code:      code,
	})
	if err != nil {
		return runResult{}, err
	}
	return runResult{
		Output:  result.Output,
		GasUsed: gas - result.GasLeft,
		Success: result.Success,
		Err:     result.Err,
	}, nil
}

// runContextAdapter completes the state with the ability to run nested
// calls using the interpreter of the test EVM.
type runContextAdapter struct {
	*state.Context
	evm    *testEVM
	depth  int
	static bool
}

func (a *runContextAdapter) Call(kind vela.CallKind, parameters vela.CallParameters) (vela.CallResult, error) {
	if kind == vela.Create || kind == vela.Create2 {
		return vela.CallResult{}, nil
	}
	if a.depth+1 > vela.DefaultProtocolParameters().MaxCallDepth {
		return vela.CallResult{GasLeft: parameters.Gas, Err: vela.ErrDepthExceeded}, nil
	}

	codeAddress := parameters.Recipient
	if kind == vela.DelegateCall || kind == vela.CallCode {
		codeAddress = parameters.CodeAddress
	}
	nested := &runContextAdapter{
		Context: a.Context,
		evm:     a.evm,
		depth:   a.depth + 1,
		static:  a.static || kind == vela.StaticCall,
	}
	result, err := a.evm.interpreter.Run(vela.Parameters{
		Context:   nested,
		Kind:      kind,
		Static:    nested.static,
		Depth:     nested.depth,
		Gas:       parameters.Gas,
		Recipient: parameters.Recipient,
		Sender:    parameters.Sender,
		Input:     parameters.Input,
		Value:     parameters.Value,
		Code:      a.GetCode(codeAddress),
	})
	if err != nil {
		return vela.CallResult{}, err
	}
	return vela.CallResult{
		Output:    result.Output,
		GasLeft:   result.GasLeft,
		GasRefund: result.GasRefund,
		Success:   result.Success,
		Err:       result.Err,
	}, nil
}

// pushValues produces code pushing the given values on the stack. The last
// value ends up on top.
func pushValues(values ...*uint256.Int) []byte {
	code := []byte{}
	for _, value := range values {
		data := value.Bytes32()
		code = append(code, byte(vm.PUSH32))
		code = append(code, data[:]...)
	}
	return code
}

// returnTopOfStack is code returning the top element of the stack as a
// 32-byte word.
var returnTopOfStack = []byte{
	byte(vm.PUSH1), 0,
	byte(vm.MSTORE),
	byte(vm.PUSH1), 32,
	byte(vm.PUSH1), 0,
	byte(vm.RETURN),
}
