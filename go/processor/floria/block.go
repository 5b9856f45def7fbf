// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package floria

import (
	"fmt"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/log"
)

func (p *processor) RunBlock(
	block vela.Block,
	options vela.BlockOptions,
	context vela.TransactionContext,
) (vela.BlockResult, error) {
	if !options.SkipBlockValidation {
		if err := validateHeader(block); err != nil {
			return vela.BlockResult{}, err
		}
	}
	if err := p.hooks.EmitBeforeBlock(block); err != nil {
		return vela.BlockResult{}, err
	}

	result := vela.BlockResult{
		Results:  make([]vela.ExecutionResult, 0, len(block.Transactions)),
		Receipts: make([]vela.Receipt, 0, len(block.Transactions)),
	}
	for i, transaction := range block.Transactions {
		txResult, err := p.runTx(block.Header, transaction, vela.TxOptions{}, context, result.GasUsed)
		if err != nil {
			return vela.BlockResult{}, fmt.Errorf("transaction %d of block %d: %w", i, block.Header.BlockNumber, err)
		}
		result.GasUsed = txResult.Receipt.CumulativeGasUsed
		result.Results = append(result.Results, txResult.ExecutionResult)
		result.Receipts = append(result.Receipts, txResult.Receipt)
		result.Bloom = mergeBlooms(result.Bloom, txResult.Receipt.Bloom)
	}

	if reward := p.protocol.BlockReward; !reward.IsZero() {
		coinbase := block.Header.Coinbase
		context.SetBalance(coinbase, vela.Add(context.GetBalance(coinbase), reward))
		if finalizer, ok := context.(vela.TransactionFinalizer); ok {
			finalizer.EndTransaction()
		}
	}
	result.ReceiptsRoot = receiptsRoot(result.Receipts)

	if !options.Generate && !options.SkipBlockValidation {
		if err := checkCommitments(block, result); err != nil {
			return vela.BlockResult{}, err
		}
	}
	result.Block = block
	result.Block.ReceiptsRoot = result.ReceiptsRoot
	result.Block.GasUsed = result.GasUsed

	log.Debug("Executed block",
		"number", block.Header.BlockNumber, "transactions", len(block.Transactions),
		"gasUsed", result.GasUsed, "receiptsRoot", result.ReceiptsRoot)

	if err := p.hooks.EmitAfterBlock(result); err != nil {
		return vela.BlockResult{}, err
	}
	return result, nil
}

func validateHeader(block vela.Block) error {
	if block.Header.GasLimit <= 0 {
		return fmt.Errorf("%w: gas limit must be positive, got %d", vela.ErrInvalidBlock, block.Header.GasLimit)
	}
	total := vela.Gas(0)
	for _, transaction := range block.Transactions {
		total += transaction.GasLimit
		if total > block.Header.GasLimit {
			return fmt.Errorf("%w: %w: transactions require more than %d gas",
				vela.ErrInvalidBlock, vela.ErrGasLimitReached, block.Header.GasLimit)
		}
	}
	return nil
}

// checkCommitments compares the commitments present in a block with the
// computed ones. Zero values in the block are not checked.
func checkCommitments(block vela.Block, result vela.BlockResult) error {
	if block.ReceiptsRoot != (vela.Hash{}) && block.ReceiptsRoot != result.ReceiptsRoot {
		return fmt.Errorf("%w: %w: have %v, want %v",
			vela.ErrInvalidBlock, vela.ErrReceiptsRootMismatch, result.ReceiptsRoot, block.ReceiptsRoot)
	}
	if block.GasUsed != 0 && block.GasUsed != result.GasUsed {
		return fmt.Errorf("%w: %w: have %d, want %d",
			vela.ErrInvalidBlock, vela.ErrGasUsedMismatch, result.GasUsed, block.GasUsed)
	}
	return nil
}
