// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"pgregory.net/rand"
)

// initCodeReturning produces init code deploying the given code.
func initCodeReturning(code []byte) []byte {
	res := []byte{}
	for i, b := range code {
		res = append(res, pushToStack(uint256.NewInt(uint64(i)), uint256.NewInt(uint64(b)))...)
		res = append(res, byte(vm.MSTORE8))
	}
	res = append(res, pushToStack(uint256.NewInt(0), uint256.NewInt(uint64(len(code))))...)
	return append(res, byte(vm.RETURN))
}

// initCodeReturningZeros produces init code deploying size zero bytes.
func initCodeReturningZeros(size int) []byte {
	res := pushToStack(uint256.NewInt(0), uint256.NewInt(uint64(size)))
	return append(res, byte(vm.RETURN))
}

// factoryCode produces a contract creating a contract from its input using
// CREATE2 with the given salt, or CREATE if the salt is nil. The address of
// the created contract is returned.
func factoryCode(salt *uint256.Int) []byte {
	code := []byte{byte(vm.CALLDATASIZE)}
	code = append(code, pushToStack(uint256.NewInt(0), uint256.NewInt(0))...)
	code = append(code, byte(vm.CALLDATACOPY))
	// stack after copy: empty; push create arguments
	if salt != nil {
		code = append(code, pushToStack(salt)...)
	}
	code = append(code, byte(vm.CALLDATASIZE))
	code = append(code, pushToStack(uint256.NewInt(0), uint256.NewInt(0))...)
	if salt != nil {
		code = append(code, byte(vm.CREATE2))
	} else {
		code = append(code, byte(vm.CREATE))
	}
	code = append(code, pushToStack(uint256.NewInt(0))...)
	code = append(code, byte(vm.MSTORE))
	return append(code, returnMemoryWord...)
}

func TestProcessor_CreateTransactionDeploysCode(t *testing.T) {
	deployed := []byte{byte(vm.STOP)}
	sender := vela.Address{1}
	created := vela.Address(crypto.CreateAddress(common.Address(sender), 0))

	for processorName, processor := range getProcessors() {
		t.Run(processorName, func(t *testing.T) {
			context := state.NewContext(state.WorldState{sender: {Balance: vela.NewValue(100)}})
			transaction := vela.Transaction{
				Sender:   sender,
				Input:    initCodeReturning(deployed),
				GasLimit: sufficientGas,
				Value:    vela.NewValue(10),
			}
			result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
			if err != nil || !result.Receipt.Success {
				t.Fatalf("execution was not successful or failed with error %v", err)
			}
			if result.Receipt.ContractAddress == nil || *result.Receipt.ContractAddress != created {
				t.Fatalf("unexpected contract address %v", result.Receipt.ContractAddress)
			}

			want := state.WorldState{
				sender:  {Balance: vela.NewValue(90), Nonce: 1},
				created: {Balance: vela.NewValue(10), Nonce: 1, Code: deployed},
			}
			if got := context.State(); !want.Equal(got) {
				t.Errorf("unexpected state: %v", got.Diff(want))
			}
		})
	}
}

func TestProcessor_CreatedAddressesAreDeterministic(t *testing.T) {
	rnd := rand.New(0)
	for processorName, processor := range getProcessors() {
		t.Run(processorName, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				var sender vela.Address
				rnd.Read(sender[:])
				nonce := rnd.Uint64n(1 << 20)
				initCode := initCodeReturning([]byte{byte(rnd.Uint32n(0xEF))})

				context := state.NewContext(state.WorldState{sender: {Nonce: nonce}})
				transaction := vela.Transaction{
					Sender:   sender,
					Nonce:    nonce,
					Input:    initCode,
					GasLimit: sufficientGas,
				}
				result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
				if err != nil || !result.Receipt.Success {
					t.Fatalf("execution was not successful or failed with error %v", err)
				}
				want := vela.Address(crypto.CreateAddress(common.Address(sender), nonce))
				if got := result.Receipt.ContractAddress; got == nil || *got != want {
					t.Errorf("unexpected address for sender %v and nonce %d, want %v, got %v", sender, nonce, want, got)
				}
			}
		})
	}
}

func TestProcessor_Create2AddressesAreDeterministic(t *testing.T) {
	rnd := rand.New(0)
	factory := vela.Address{0xFA}
	for processorName, processor := range getProcessors() {
		t.Run(processorName, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				var salt vela.Hash
				rnd.Read(salt[:])
				initCode := initCodeReturning([]byte{byte(rnd.Uint32n(0xEF))})
				code := factoryCode(new(uint256.Int).SetBytes(salt[:]))

				context := state.NewContext(state.WorldState{factory: {Code: code, Nonce: 1}})
				transaction := vela.Transaction{
					Sender:    vela.Address{1},
					Recipient: &factory,
					Input:     initCode,
					GasLimit:  sufficientGas,
				}
				result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
				if err != nil || !result.Receipt.Success {
					t.Fatalf("execution was not successful or failed with error %v", err)
				}

				want := crypto.CreateAddress2(common.Address(factory), common.Hash(salt), crypto.Keccak256(initCode))
				if got := result.Receipt.Output; !bytes.Equal(got, common.LeftPadBytes(want[:], 32)) {
					t.Errorf("unexpected address for salt %v, want %v, got %x", salt, want, got)
				}
				if got := context.GetNonce(factory); got != 2 {
					t.Errorf("factory nonce should be incremented, got %d", got)
				}
			}
		})
	}
}

func TestProcessor_CreateInitCodeIsExecutedInRightContext(t *testing.T) {
	sender := vela.Address{1}
	factory := vela.Address{0xFA}
	created := vela.Address(crypto.CreateAddress(common.Address(factory), 1))

	// init code storing ADDRESS in slot 0 and CALLER in slot 1
	initCode := []byte{
		byte(vm.ADDRESS),
		byte(vm.PUSH1), 0,
		byte(vm.SSTORE),
		byte(vm.CALLER),
		byte(vm.PUSH1), 1,
		byte(vm.SSTORE),
	}

	for processorName, processor := range getProcessors() {
		t.Run(processorName, func(t *testing.T) {
			context := state.NewContext(state.WorldState{factory: {Code: factoryCode(nil), Nonce: 1}})
			transaction := vela.Transaction{
				Sender:    sender,
				Recipient: &factory,
				Input:     initCode,
				GasLimit:  sufficientGas,
			}
			result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
			if err != nil || !result.Receipt.Success {
				t.Fatalf("execution was not successful or failed with error %v", err)
			}
			if got := result.Receipt.Output; !bytes.Equal(got, common.LeftPadBytes(created[:], 32)) {
				t.Fatalf("unexpected created address %x, want %v", got, created)
			}
			if got := context.GetStorage(created, vela.Key{}); !bytes.Equal(got[12:], created[:]) {
				t.Errorf("ADDRESS in init code should be the created account, got %v", got)
			}
			if got := context.GetStorage(created, vela.Key{31: 1}); !bytes.Equal(got[12:], factory[:]) {
				t.Errorf("CALLER in init code should be the factory, got %v", got)
			}
		})
	}
}

func TestProcessor_FailingCreationsAreReported(t *testing.T) {
	sender := vela.Address{1}
	created := vela.Address(crypto.CreateAddress(common.Address(sender), 0))
	maxCodeSize := vela.DefaultProtocolParameters().MaxCodeSize

	tests := map[string]struct {
		initCode []byte
		before   state.WorldState
	}{
		"code with 0xEF prefix": {
			initCode: initCodeReturning([]byte{0xEF, 0x00}),
		},
		"code too large": {
			initCode: initCodeReturningZeros(maxCodeSize + 1),
		},
		"address collision": {
			initCode: initCodeReturning([]byte{byte(vm.STOP)}),
			before:   state.WorldState{created: {Code: vela.Code{byte(vm.STOP)}}},
		},
		"reverting init code": {
			initCode: []byte{byte(vm.PUSH1), 0, byte(vm.PUSH1), 0, byte(vm.REVERT)},
		},
	}

	for processorName, processor := range getProcessors() {
		for name, test := range tests {
			t.Run(fmt.Sprintf("%s-%s", processorName, name), func(t *testing.T) {
				before := test.before.Clone()
				if before == nil {
					before = state.WorldState{}
				}
				before[sender] = state.Account{Balance: vela.NewValue(100)}
				context := state.NewContext(before)

				transaction := vela.Transaction{
					Sender:   sender,
					Input:    test.initCode,
					GasLimit: sufficientGas,
					Value:    vela.NewValue(10),
				}
				result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.Receipt.Success || result.Receipt.ContractAddress != nil {
					t.Errorf("creation should have failed, got %+v", result.Receipt)
				}

				want := before.Clone()
				want[sender] = state.Account{Balance: vela.NewValue(100), Nonce: 1}
				if got := context.State(); !want.Equal(got) {
					t.Errorf("unexpected state: %v", got.Diff(want))
				}
			})
		}
	}
}

func TestProcessor_MaximumCodeSizeCanBeDeployed(t *testing.T) {
	sender := vela.Address{1}
	created := vela.Address(crypto.CreateAddress(common.Address(sender), 0))
	maxCodeSize := vela.DefaultProtocolParameters().MaxCodeSize

	for processorName, processor := range getProcessors() {
		t.Run(processorName, func(t *testing.T) {
			context := state.NewContext(nil)
			transaction := vela.Transaction{
				Sender:   sender,
				Input:    initCodeReturningZeros(maxCodeSize),
				GasLimit: 10 * sufficientGas,
			}
			result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
			if err != nil || !result.Receipt.Success {
				t.Fatalf("execution was not successful or failed with error %v", err)
			}
			if got := context.GetCodeSize(created); got != maxCodeSize {
				t.Errorf("unexpected code size %d", got)
			}
		})
	}
}
