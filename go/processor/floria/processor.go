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
	"math"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

func init() {
	vela.RegisterProcessorFactory("floria", newProcessor)
}

func newProcessor(interpreter vela.Interpreter, config vela.ProcessorConfig) vela.Processor {
	return &processor{
		interpreter: interpreter,
		hooks:       config.Hooks,
		protocol:    config.Protocol,
	}
}

type processor struct {
	interpreter vela.Interpreter
	hooks       *vela.Hooks
	protocol    vela.ProtocolParameters
}

func (p *processor) RunTx(
	blockParams vela.BlockParameters,
	transaction vela.Transaction,
	options vela.TxOptions,
	context vela.TransactionContext,
) (vela.TransactionResult, error) {
	return p.runTx(blockParams, transaction, options, context, 0)
}

// runTx executes a transaction following gasUsedBefore units of gas consumed
// by preceding transactions of the same block. The receipt is final before
// it is reported to observers.
func (p *processor) runTx(
	blockParams vela.BlockParameters,
	transaction vela.Transaction,
	options vela.TxOptions,
	context vela.TransactionContext,
	gasUsedBefore vela.Gas,
) (vela.TransactionResult, error) {
	intrinsicGas, err := p.validateTransaction(blockParams, transaction, options, context)
	if err != nil {
		log.Debug("Rejected transaction", "sender", transaction.Sender, "nonce", transaction.Nonce, "err", err)
		return vela.TransactionResult{}, err
	}
	if err := p.hooks.EmitBeforeTx(transaction); err != nil {
		return vela.TransactionResult{}, err
	}

	if options.SkipBalance {
		topUpBalance(transaction, context)
	}
	buyGas(transaction, context)
	if !transaction.IsCreation() {
		// Creations increment the nonce of the sender as part of the message.
		context.SetNonce(transaction.Sender, context.GetNonce(transaction.Sender)+1)
	}

	runContext := p.newRunContext(blockParams, transactionParameters(transaction), context)
	callResult, err := runContext.dispatch(topLevelMessage(transaction, transaction.GasLimit-intrinsicGas))
	if err != nil {
		return vela.TransactionResult{}, err
	}

	gasUsed := transaction.GasLimit - callResult.GasLeft
	refund := computeRefund(callResult.GasRefund, gasUsed, p.protocol.RefundQuotient)
	gasUsed -= refund
	gasLeft := callResult.GasLeft + refund

	refundGas(transaction, gasLeft, context)
	payCoinbase(blockParams.Coinbase, transaction.GasPrice, gasUsed, context)

	var logs []vela.Log
	if callResult.Success {
		logs = context.GetLogs()
	}
	result := vela.ExecutionResult{
		Success:        callResult.Success,
		GasUsed:        gasUsed,
		GasLeft:        gasLeft,
		GasRefund:      refund,
		Output:         callResult.Output,
		CreatedAddress: callResult.CreatedAddress,
		Logs:           logs,
		Err:            callResult.Err,
	}
	receipt := vela.Receipt{
		Success:           callResult.Success,
		Output:            callResult.Output,
		GasUsed:           gasUsed,
		CumulativeGasUsed: gasUsedBefore + gasUsed,
		Logs:              logs,
		Bloom:             logsBloom(logs),
	}
	if transaction.IsCreation() && callResult.Success {
		created := callResult.CreatedAddress
		receipt.ContractAddress = &created
	}

	if finalizer, ok := context.(vela.TransactionFinalizer); ok {
		finalizer.EndTransaction()
	}

	txResult := vela.TransactionResult{
		Transaction:     transaction,
		ExecutionResult: result,
		Receipt:         receipt,
		GasRefund:       refund,
	}
	log.Debug("Executed transaction",
		"sender", transaction.Sender, "nonce", transaction.Nonce,
		"success", result.Success, "gasUsed", gasUsed, "refund", refund, "err", result.Err)

	if err := p.hooks.EmitAfterTx(txResult); err != nil {
		return vela.TransactionResult{}, err
	}
	return txResult, nil
}

// validateTransaction checks all preconditions of a transaction without
// modifying the state. It returns the intrinsic gas of the transaction.
func (p *processor) validateTransaction(
	blockParams vela.BlockParameters,
	transaction vela.Transaction,
	options vela.TxOptions,
	context vela.TransactionContext,
) (vela.Gas, error) {
	if p.protocol.RequireSignature && len(transaction.Signature) == 0 {
		return 0, fmt.Errorf("%w: %w", vela.ErrInvalidTransaction, vela.ErrMissingSignature)
	}
	if transaction.GasLimit < 0 {
		return 0, fmt.Errorf("%w: %w: negative gas limit %d", vela.ErrInvalidTransaction, vela.ErrIntrinsicGas, transaction.GasLimit)
	}
	if blockParams.GasLimit > 0 && transaction.GasLimit > blockParams.GasLimit {
		return 0, fmt.Errorf("%w: %w: have %d, want at most %d",
			vela.ErrInvalidTransaction, vela.ErrGasLimitReached, transaction.GasLimit, blockParams.GasLimit)
	}

	stateNonce := context.GetNonce(transaction.Sender)
	if !options.SkipNonce {
		if transaction.Nonce < stateNonce {
			return 0, fmt.Errorf("%w: %w: have %d, want %d",
				vela.ErrInvalidTransaction, vela.ErrNonceTooLow, transaction.Nonce, stateNonce)
		}
		if transaction.Nonce > stateNonce {
			return 0, fmt.Errorf("%w: %w: have %d, want %d",
				vela.ErrInvalidTransaction, vela.ErrNonceTooHigh, transaction.Nonce, stateNonce)
		}
	}
	if stateNonce == math.MaxUint64 {
		return 0, fmt.Errorf("%w: %w", vela.ErrInvalidTransaction, vela.ErrNonceOverflow)
	}

	if limit := p.protocol.MaxInitCodeSize; transaction.IsCreation() && limit > 0 && len(transaction.Input) > limit {
		return 0, fmt.Errorf("%w: %w: have %d, want at most %d",
			vela.ErrInvalidTransaction, vela.ErrInitCodeTooLarge, len(transaction.Input), limit)
	}

	intrinsicGas := p.intrinsicGas(transaction)
	if transaction.GasLimit < intrinsicGas {
		return 0, fmt.Errorf("%w: %w: have %d, want %d",
			vela.ErrInvalidTransaction, vela.ErrIntrinsicGas, transaction.GasLimit, intrinsicGas)
	}

	if !options.SkipBalance {
		cost, overflow := transactionCost(transaction)
		balance := context.GetBalance(transaction.Sender)
		if overflow || balance.ToUint256().Cmp(cost) < 0 {
			return 0, fmt.Errorf("%w: %w: have %v, want %v",
				vela.ErrInvalidTransaction, vela.ErrInsufficientFunds, balance, cost)
		}
	}
	return intrinsicGas, nil
}

// intrinsicGas computes the gas charged before any code is executed.
func (p *processor) intrinsicGas(transaction vela.Transaction) vela.Gas {
	gas := p.protocol.TxGas
	if transaction.IsCreation() {
		gas = p.protocol.TxGasContractCreation
	}
	if len(transaction.Input) > 0 {
		nonZeroBytes := vela.Gas(0)
		for _, inputByte := range transaction.Input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := vela.Gas(len(transaction.Input)) - nonZeroBytes
		gas += zeroBytes * p.protocol.TxDataZeroGas
		gas += nonZeroBytes * p.protocol.TxDataNonZeroGas
	}
	// An overflow would require an input of more than 2^63/16 bytes, which
	// is not possible with real world hardware.
	return gas
}

// transactionCost computes gasLimit * gasPrice + value.
func transactionCost(transaction vela.Transaction) (*uint256.Int, bool) {
	cost, overflow := new(uint256.Int).MulOverflow(
		uint256.NewInt(uint64(transaction.GasLimit)),
		transaction.GasPrice.ToUint256(),
	)
	if overflow {
		return cost, true
	}
	return cost.AddOverflow(cost, transaction.Value.ToUint256())
}

// topUpBalance credits the sender with the amount missing to pay for the
// transaction.
func topUpBalance(transaction vela.Transaction, context vela.TransactionContext) {
	cost, overflow := transactionCost(transaction)
	if overflow {
		cost = new(uint256.Int).SetAllOne()
	}
	balance := context.GetBalance(transaction.Sender).ToUint256()
	if balance.Cmp(cost) < 0 {
		context.SetBalance(transaction.Sender, vela.ValueFromUint256(cost))
	}
}

func buyGas(transaction vela.Transaction, context vela.TransactionContext) {
	gasCost := transaction.GasPrice.Scale(uint64(transaction.GasLimit))
	context.SetBalance(transaction.Sender, vela.Sub(context.GetBalance(transaction.Sender), gasCost))
}

func refundGas(transaction vela.Transaction, gasLeft vela.Gas, context vela.TransactionContext) {
	refund := transaction.GasPrice.Scale(uint64(gasLeft))
	context.SetBalance(transaction.Sender, vela.Add(context.GetBalance(transaction.Sender), refund))
}

func payCoinbase(coinbase vela.Address, gasPrice vela.Value, gasUsed vela.Gas, context vela.TransactionContext) {
	fee := gasPrice.Scale(uint64(gasUsed))
	if fee.IsZero() {
		return
	}
	context.SetBalance(coinbase, vela.Add(context.GetBalance(coinbase), fee))
}

// computeRefund caps the accumulated refund at gasUsed/quotient. Negative
// refunds are not granted.
func computeRefund(refund, gasUsed vela.Gas, quotient uint64) vela.Gas {
	if refund <= 0 {
		return 0
	}
	if quotient > 0 {
		refund = min(refund, gasUsed/vela.Gas(quotient))
	}
	return refund
}
