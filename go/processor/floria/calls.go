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
	"github.com/Fantom-foundation/Vela/go/vela"
)

func (p *processor) RunCall(
	blockParams vela.BlockParameters,
	transactionParams vela.TransactionParameters,
	message vela.Message,
	context vela.TransactionContext,
) (vela.ExecutionResult, error) {
	runContext := p.newRunContext(blockParams, transactionParams, context)
	runContext.depth = message.Depth
	runContext.static = message.Static

	result, err := runContext.dispatch(message.Kind, vela.CallParameters{
		Sender:      message.Sender,
		Recipient:   message.Recipient,
		Value:       message.Value,
		Input:       message.Input,
		Gas:         message.Gas,
		Salt:        message.Salt,
		CodeAddress: message.CodeAddress,
	})
	if err != nil {
		return vela.ExecutionResult{}, err
	}

	var logs []vela.Log
	if result.Success {
		logs = context.GetLogs()
	}
	return vela.ExecutionResult{
		Success:        result.Success,
		GasUsed:        message.Gas - result.GasLeft,
		GasLeft:        result.GasLeft,
		GasRefund:      result.GasRefund,
		Output:         result.Output,
		CreatedAddress: result.CreatedAddress,
		Logs:           logs,
		Err:            result.Err,
	}, nil
}

func (p *processor) newRunContext(
	blockParams vela.BlockParameters,
	transactionParams vela.TransactionParameters,
	context vela.TransactionContext,
) runContext {
	return runContext{
		TransactionContext:    context,
		interpreter:           p.interpreter,
		hooks:                 p.hooks,
		protocol:              &p.protocol,
		blockParameters:       blockParams,
		transactionParameters: transactionParams,
	}
}

func transactionParameters(transaction vela.Transaction) vela.TransactionParameters {
	return vela.TransactionParameters{
		Origin:   transaction.Sender,
		GasPrice: transaction.GasPrice,
	}
}

// topLevelMessage derives the message executed by a transaction.
func topLevelMessage(transaction vela.Transaction, gas vela.Gas) (vela.CallKind, vela.CallParameters) {
	params := vela.CallParameters{
		Sender: transaction.Sender,
		Value:  transaction.Value,
		Input:  transaction.Input,
		Gas:    gas,
	}
	if transaction.IsCreation() {
		return vela.Create, params
	}
	params.Recipient = *transaction.Recipient
	params.CodeAddress = *transaction.Recipient
	return vela.Call, params
}
