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
	"fmt"
	"slices"
	"testing"

	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/exp/maps"

	_ "github.com/Fantom-foundation/Vela/go/interpreter/evm"  // < registers evm interpreters for testing
	_ "github.com/Fantom-foundation/Vela/go/processor/floria" // < registers floria processor for testing
)

const sufficientGas = vela.Gas(1_000_000)

// testedInterpreters are the interpreter configurations scenarios are run
// with. Tracing configurations are excluded to keep the test output clean.
var testedInterpreters = []string{"evm", "evm-no-analysis-cache"}

func getScenarios() map[string]Scenario {
	sender := vela.Address{1}
	receiver := vela.Address{2}
	coinbase := vela.Address{3}
	createdAddress := vela.Address(crypto.CreateAddress(common.Address(sender), 4))

	returningCode := vela.Code{
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	revertingCode := vela.Code{
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 0,
		byte(vm.REVERT),
	}
	storingCode := vela.Code{
		byte(vm.PUSH1), 1,
		byte(vm.PUSH1), 0,
		byte(vm.SSTORE),
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 0,
		byte(vm.SSTORE),
	}

	return map[string]Scenario{
		"SuccessfulValueTransfer": {
			Before: state.WorldState{
				sender: {Balance: vela.NewValue(100), Nonce: 4},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  21_000,
				Value:     vela.NewValue(3),
				Nonce:     4,
			},
			After: state.WorldState{
				sender:   {Balance: vela.NewValue(97), Nonce: 5},
				receiver: {Balance: vela.NewValue(3)},
			},
			Receipt: vela.Receipt{Success: true, GasUsed: 21_000},
		},
		"ValueTransferBeyondBalanceIsRejected": {
			Before: state.WorldState{
				sender: {Balance: vela.NewValue(10), Nonce: 4},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  21_000,
				Value:     vela.NewValue(20),
				Nonce:     4,
			},
			Error: vela.ErrInsufficientFunds,
		},
		"SkipBalanceTransfersFromEmptyAccount": {
			Before: state.WorldState{},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  21_000,
				Value:     vela.NewValue(20),
			},
			Options: vela.TxOptions{SkipBalance: true},
			After: state.WorldState{
				sender:   {Nonce: 1},
				receiver: {Balance: vela.NewValue(20)},
			},
			Receipt: vela.Receipt{Success: true, GasUsed: 21_000},
		},
		"TransferToAccountWithoutCode": {
			Before: state.WorldState{
				sender:   {Balance: vela.NewValue(100)},
				receiver: {Balance: vela.NewValue(1)},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  50_000,
				Value:     vela.NewValue(1),
				Input:     vela.Data{1, 2, 3},
			},
			After: state.WorldState{
				sender:   {Balance: vela.NewValue(99), Nonce: 1},
				receiver: {Balance: vela.NewValue(2)},
			},
			Receipt: vela.Receipt{Success: true, GasUsed: 21_000 + 3*16},
		},
		"SuccessfulContractCall": {
			Before: state.WorldState{
				sender:   {Balance: vela.NewValue(100), Nonce: 4},
				receiver: {Code: returningCode},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  21_000 + 2*3, // < value transfer + 2 push instructions (return is free)
				Value:     vela.NewValue(3),
				Nonce:     4,
			},
			After: state.WorldState{
				sender:   {Balance: vela.NewValue(97), Nonce: 5},
				receiver: {Balance: vela.NewValue(3), Code: returningCode},
			},
			Receipt: vela.Receipt{Success: true, GasUsed: 21_000 + 2*3},
		},
		"RevertingContractCall": {
			Before: state.WorldState{
				sender:   {Balance: vela.NewValue(100), Nonce: 4},
				receiver: {Code: revertingCode},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  21_000 + 2*3,
				Value:     vela.NewValue(3),
				Nonce:     4,
			},
			After: state.WorldState{
				sender:   {Balance: vela.NewValue(100), Nonce: 5},
				receiver: {Code: revertingCode},
			},
			Receipt: vela.Receipt{Success: false, GasUsed: 21_000 + 2*3},
		},
		"OutOfGasConsumesAllGas": {
			Parameters: vela.BlockParameters{Coinbase: coinbase},
			Before: state.WorldState{
				sender:   {Balance: vela.NewValue(100_000)},
				receiver: {Code: returningCode},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  21_000 + 5,
				GasPrice:  vela.NewValue(1),
			},
			After: state.WorldState{
				sender:   {Balance: vela.NewValue(100_000 - 21_005), Nonce: 1},
				receiver: {Code: returningCode},
				coinbase: {Balance: vela.NewValue(21_005)},
			},
			Receipt: vela.Receipt{Success: false, GasUsed: 21_005},
		},
		"StorageRefundIsGranted": {
			Parameters: vela.BlockParameters{Coinbase: coinbase},
			Before: state.WorldState{
				sender:   {Balance: vela.NewValue(1_000_000)},
				receiver: {Code: storingCode},
			},
			Transaction: vela.Transaction{
				Sender:    sender,
				Recipient: &receiver,
				GasLimit:  100_000,
				GasPrice:  vela.NewValue(1),
			},
			After: state.WorldState{
				// 20000 for adding the slot, 800 for resetting it, and 4*3 for
				// the pushes, minus a refund of 19200 for restoring the slot
				sender:   {Balance: vela.NewValue(1_000_000 - 22_612), Nonce: 1},
				receiver: {Code: storingCode},
				coinbase: {Balance: vela.NewValue(22_612)},
			},
			Receipt: vela.Receipt{Success: true, GasUsed: 21_000 + 20_000 + 800 + 12 - 19_200},
		},
		"SuccessfulContractCreation": {
			Before: state.WorldState{
				sender: {Balance: vela.NewValue(100), Nonce: 4},
			},
			Transaction: vela.Transaction{
				Sender:   sender,
				GasLimit: 53_000,
				Value:    vela.NewValue(3),
				Nonce:    4,
			},
			After: state.WorldState{
				sender: {Balance: vela.NewValue(97), Nonce: 5},
				createdAddress: {
					Balance: vela.NewValue(3),
					Nonce:   1,
				},
			},
			Receipt: vela.Receipt{
				Success:         true,
				GasUsed:         53_000,
				ContractAddress: &createdAddress,
			},
		},
	}
}

func RunProcessorTests(t *testing.T, processor vela.Processor) {
	for name, s := range getScenarios() {
		t.Run(name, func(t *testing.T) {
			s.Run(t, processor)
		})
	}
}

func TestProcessor_Scenarios(t *testing.T) {
	for name, processor := range getProcessors() {
		t.Run(name, func(t *testing.T) {
			RunProcessorTests(t, processor)
		})
	}
}

// getProcessors returns a map containing all registered processors instantiated
// with the tested interpreter configurations.
func getProcessors() map[string]vela.Processor {
	return getProcessorsWithHooks(nil)
}

func getProcessorsWithHooks(hooks *vela.Hooks) map[string]vela.Processor {
	res := map[string]vela.Processor{}
	for processorName, factory := range vela.GetAllRegisteredProcessorFactories() {
		for _, interpreterName := range testedInterpreters {
			interpreter, err := vela.NewInterpreter(interpreterName)
			if err != nil {
				panic(fmt.Sprintf("failed to load interpreter %s: %v", interpreterName, err))
			}
			config := vela.DefaultProcessorConfig()
			config.Hooks = hooks
			config.Protocol.RequireSignature = false
			res[fmt.Sprintf("%s/%s", processorName, interpreterName)] = factory(interpreter, config)
		}
	}
	return res
}

func TestGetProcessors_ContainsMainConfigurations(t *testing.T) {
	all := maps.Keys(getProcessors())
	wanted := []string{"floria/evm", "floria/evm-no-analysis-cache"}
	for _, n := range wanted {
		if !slices.Contains(all, n) {
			t.Errorf("Configuration %q is not registered, got %v", n, all)
		}
	}
}
