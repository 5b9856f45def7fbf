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
	"testing"

	"github.com/Fantom-foundation/Vela/go/examples"
	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/holiman/uint256"
)

func TestProcessor_ExamplesAsCalls(t *testing.T) {
	for _, example := range examples.GetAllExamples() {
		for processorName, processor := range getProcessors() {
			for i := 0; i < 10; i++ {
				t.Run(fmt.Sprintf("%s-%s-%d", example.Name, processorName, i), func(t *testing.T) {
					want := example.RunReference(i)
					got, err := example.RunOn(processor, i)
					if err != nil {
						t.Fatalf("error processing contract: %v", err)
					}
					if want != got.Result {
						t.Fatalf("incorrect result, wanted %d, got %d", want, got.Result)
					}
				})
			}
		}
	}
}

func TestProcessor_ExamplesAsTransactions(t *testing.T) {
	sender := examples.CallerAddress
	recipient := examples.ContractAddress
	for _, example := range examples.GetAllExamples() {
		for processorName, processor := range getProcessors() {
			t.Run(fmt.Sprintf("%s-%s", example.Name, processorName), func(t *testing.T) {
				context := state.NewContext(example.State())
				for i := 0; i < 10; i++ {
					transaction := vela.Transaction{
						Sender:    sender,
						Recipient: &recipient,
						Nonce:     uint64(i),
						Input:     example.Input(i),
						GasLimit:  10 * sufficientGas,
					}
					result, err := processor.RunTx(vela.BlockParameters{}, transaction, vela.TxOptions{}, context)
					if err != nil {
						t.Fatalf("error processing transaction %d: %v", i, err)
					}
					if !result.Receipt.Success {
						t.Fatalf("transaction %d failed", i)
					}
					got := new(uint256.Int).SetBytes(result.Receipt.Output)
					if want := uint64(example.RunReference(i)); got.Uint64() != want {
						t.Errorf("incorrect result for argument %d, wanted %d, got %d", i, want, got.Uint64())
					}
				}
				if got := context.GetNonce(sender); got != 10 {
					t.Errorf("unexpected sender nonce, wanted 10, got %d", got)
				}
			})
		}
	}
}

func TestProcessor_ExamplesAsBlock(t *testing.T) {
	sender := examples.CallerAddress
	recipient := examples.ContractAddress
	for _, example := range examples.GetAllExamples() {
		for processorName, processor := range getProcessors() {
			t.Run(fmt.Sprintf("%s-%s", example.Name, processorName), func(t *testing.T) {
				block := vela.Block{
					Header: vela.BlockParameters{
						BlockNumber: 1,
						GasLimit:    100 * sufficientGas,
					},
				}
				for i := 0; i < 5; i++ {
					block.Transactions = append(block.Transactions, vela.Transaction{
						Sender:    sender,
						Recipient: &recipient,
						Nonce:     uint64(i),
						Input:     example.Input(i),
						GasLimit:  10 * sufficientGas,
					})
				}

				context := state.NewContext(example.State())
				result, err := processor.RunBlock(block, vela.BlockOptions{Generate: true}, context)
				if err != nil {
					t.Fatalf("error processing block: %v", err)
				}
				if len(result.Receipts) != len(block.Transactions) {
					t.Fatalf("unexpected number of receipts, wanted %d, got %d", len(block.Transactions), len(result.Receipts))
				}
				cumulative := vela.Gas(0)
				for i, receipt := range result.Receipts {
					cumulative += receipt.GasUsed
					if receipt.CumulativeGasUsed != cumulative {
						t.Errorf("receipt %d has wrong cumulative gas, wanted %d, got %d", i, cumulative, receipt.CumulativeGasUsed)
					}
					got := new(uint256.Int).SetBytes(receipt.Output)
					if want := uint64(example.RunReference(i)); got.Uint64() != want {
						t.Errorf("incorrect result for argument %d, wanted %d, got %d", i, want, got.Uint64())
					}
				}
				if result.GasUsed != cumulative {
					t.Errorf("unexpected block gas, wanted %d, got %d", cumulative, result.GasUsed)
				}
			})
		}
	}
}
