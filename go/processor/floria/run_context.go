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

	// geth dependencies
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var emptyCodeHash = vela.Hash(crypto.Keccak256(nil))

// runContext dispatches the messages of a single transaction. It is passed
// by value; every call level works on a copy carrying its own depth and
// static flag.
type runContext struct {
	vela.TransactionContext
	interpreter           vela.Interpreter
	hooks                 *vela.Hooks
	protocol              *vela.ProtocolParameters
	blockParameters       vela.BlockParameters
	transactionParameters vela.TransactionParameters
	depth                 int // < the depth of the next message
	static                bool
}

// Call serves nested calls and creations requested by the interpreter.
// Value transferring calls are granted the call stipend on top of the
// forwarded gas.
func (r runContext) Call(kind vela.CallKind, parameters vela.CallParameters) (vela.CallResult, error) {
	if (kind == vela.Call || kind == vela.CallCode) && !parameters.Value.IsZero() {
		parameters.Gas += r.protocol.CallStipend
	}
	return r.dispatch(kind, parameters)
}

// dispatch executes a message at the depth of this context.
func (r runContext) dispatch(kind vela.CallKind, parameters vela.CallParameters) (vela.CallResult, error) {
	if kind == vela.Create || kind == vela.Create2 {
		return r.executeCreate(kind, parameters)
	}
	return r.executeCall(kind, parameters)
}

func (r runContext) executeCall(kind vela.CallKind, parameters vela.CallParameters) (vela.CallResult, error) {
	if kind == vela.Call || kind == vela.StaticCall {
		parameters.CodeAddress = parameters.Recipient
	}
	if r.depth > r.protocol.MaxCallDepth {
		return failWith(vela.ErrDepthExceeded, parameters.Gas), nil
	}
	static := r.static || kind == vela.StaticCall
	if err := r.hooks.EmitBeforeMessage(r.message(kind, parameters, static)); err != nil {
		return vela.CallResult{}, err
	}

	if kind == vela.Call || kind == vela.CallCode {
		if !canTransferValue(r, parameters.Value, parameters.Sender, &parameters.Recipient) {
			return r.finish(failWith(vela.ErrInsufficientBalance, parameters.Gas), parameters.Gas)
		}
	}

	snapshot := r.CreateSnapshot()
	if kind == vela.Call {
		transferValue(r, parameters.Value, parameters.Sender, parameters.Recipient)
	}

	if result, isPrecompiled := handlePrecompiled(parameters.Input, parameters.CodeAddress, parameters.Gas); isPrecompiled {
		if result.Success {
			r.CommitSnapshot(snapshot)
		} else {
			r.RestoreSnapshot(snapshot)
		}
		return r.finish(result, parameters.Gas)
	}

	code := r.GetCode(parameters.CodeAddress)
	if len(code) == 0 {
		r.CommitSnapshot(snapshot)
		return r.finish(vela.CallResult{Success: true, GasLeft: parameters.Gas}, parameters.Gas)
	}
	codeHash := r.GetCodeHash(parameters.CodeAddress)

	nested := r
	nested.depth++
	nested.static = static
	result, err := r.interpreter.Run(vela.Parameters{
		BlockParameters:       r.blockParameters,
		TransactionParameters: r.transactionParameters,
		Context:               nested,
		Hooks:                 r.hooks,
		Kind:                  kind,
		Static:                static,
		Depth:                 r.depth,
		Gas:                   parameters.Gas,
		Recipient:             parameters.Recipient,
		Sender:                parameters.Sender,
		Input:                 parameters.Input,
		Value:                 parameters.Value,
		CodeHash:              &codeHash,
		Code:                  code,
	})
	if err != nil {
		r.RestoreSnapshot(snapshot)
		return vela.CallResult{}, err
	}
	if !result.Success {
		r.RestoreSnapshot(snapshot)
		return r.finish(failedResult(result), parameters.Gas)
	}
	r.CommitSnapshot(snapshot)
	return r.finish(vela.CallResult{
		Output:    result.Output,
		GasLeft:   result.GasLeft,
		GasRefund: result.GasRefund,
		Success:   true,
	}, parameters.Gas)
}

func (r runContext) executeCreate(kind vela.CallKind, parameters vela.CallParameters) (vela.CallResult, error) {
	parameters.Recipient = vela.Address{}
	parameters.CodeAddress = vela.Address{}
	if r.depth > r.protocol.MaxCallDepth {
		return failWith(vela.ErrDepthExceeded, parameters.Gas), nil
	}
	if err := r.hooks.EmitBeforeMessage(r.message(kind, parameters, r.static)); err != nil {
		return vela.CallResult{}, err
	}

	if limit := r.protocol.MaxInitCodeSize; limit > 0 && len(parameters.Input) > limit {
		return r.finish(failWith(vela.ErrInitCodeTooLarge, 0), parameters.Gas)
	}
	if !canTransferValue(r, parameters.Value, parameters.Sender, nil) {
		return r.finish(failWith(vela.ErrInsufficientBalance, parameters.Gas), parameters.Gas)
	}
	nonce := r.GetNonce(parameters.Sender)
	if nonce+1 < nonce {
		return r.finish(failWith(vela.ErrNonceOverflow, parameters.Gas), parameters.Gas)
	}
	r.SetNonce(parameters.Sender, nonce+1)

	code := vela.Code(parameters.Input)
	codeHash := hashCode(code)
	createdAddress := createAddress(kind, parameters.Sender, nonce, parameters.Salt, codeHash)

	if r.GetNonce(createdAddress) != 0 ||
		(r.GetCodeHash(createdAddress) != (vela.Hash{}) &&
			r.GetCodeHash(createdAddress) != emptyCodeHash) {
		return r.finish(failWith(vela.ErrContractAddressCollision, 0), parameters.Gas)
	}

	snapshot := r.CreateSnapshot()
	r.SetNonce(createdAddress, 1)
	transferValue(r, parameters.Value, parameters.Sender, createdAddress)

	nested := r
	nested.depth++
	result, err := r.interpreter.Run(vela.Parameters{
		BlockParameters:       r.blockParameters,
		TransactionParameters: r.transactionParameters,
		Context:               nested,
		Hooks:                 r.hooks,
		Kind:                  kind,
		Static:                r.static,
		Depth:                 r.depth,
		Gas:                   parameters.Gas,
		Recipient:             createdAddress,
		Sender:                parameters.Sender,
		Input:                 nil,
		Value:                 parameters.Value,
		CodeHash:              &codeHash,
		Code:                  code,
	})
	if err != nil {
		r.RestoreSnapshot(snapshot)
		return vela.CallResult{}, err
	}
	if !result.Success {
		r.RestoreSnapshot(snapshot)
		return r.finish(failedResult(result), parameters.Gas)
	}

	deployed := vela.Code(result.Output)
	if err := r.checkDeployedCode(deployed, result.GasLeft); err != nil {
		r.RestoreSnapshot(snapshot)
		return r.finish(failWith(err, 0), parameters.Gas)
	}
	r.SetCode(createdAddress, deployed)
	r.CommitSnapshot(snapshot)

	if err := r.hooks.EmitNewContract(vela.NewContract{Address: createdAddress, Code: deployed}); err != nil {
		return vela.CallResult{}, err
	}
	return r.finish(vela.CallResult{
		Output:         result.Output,
		GasLeft:        result.GasLeft - r.codeDepositCost(deployed),
		GasRefund:      result.GasRefund,
		Success:        true,
		CreatedAddress: createdAddress,
	}, parameters.Gas)
}

// checkDeployedCode verifies that the code returned by an init code may be
// stored with the gas left.
func (r runContext) checkDeployedCode(code vela.Code, gasLeft vela.Gas) error {
	if limit := r.protocol.MaxCodeSize; limit > 0 && len(code) > limit {
		return vela.ErrMaxCodeSizeExceeded
	}
	if len(code) > 0 && code[0] == 0xEF {
		return vela.ErrInvalidCodePrefix
	}
	if gasLeft < r.codeDepositCost(code) {
		return vela.ErrCodeStoreOutOfGas
	}
	return nil
}

func (r runContext) codeDepositCost(code vela.Code) vela.Gas {
	return vela.Gas(len(code)) * r.protocol.CreateDataGas
}

// message describes the given call for the message hooks.
func (r runContext) message(kind vela.CallKind, parameters vela.CallParameters, static bool) vela.Message {
	return vela.Message{
		Kind:        kind,
		Sender:      parameters.Sender,
		Recipient:   parameters.Recipient,
		CodeAddress: parameters.CodeAddress,
		Value:       parameters.Value,
		Input:       parameters.Input,
		Gas:         parameters.Gas,
		Depth:       r.depth,
		Static:      static,
		Salt:        parameters.Salt,
	}
}

// finish reports the completion of a message to the after-message hook.
func (r runContext) finish(result vela.CallResult, gas vela.Gas) (vela.CallResult, error) {
	err := r.hooks.EmitAfterMessage(vela.ExecutionResult{
		Success:        result.Success,
		GasUsed:        gas - result.GasLeft,
		GasLeft:        result.GasLeft,
		GasRefund:      result.GasRefund,
		Output:         result.Output,
		CreatedAddress: result.CreatedAddress,
		Err:            result.Err,
	})
	if err != nil {
		return vela.CallResult{}, err
	}
	return result, nil
}

// failedResult converts an unsuccessful interpreter result. Reverts keep
// their output and remaining gas, all other failures consume all gas.
func failedResult(result vela.Result) vela.CallResult {
	if result.Err == vela.ErrReverted {
		return vela.CallResult{
			Output:  result.Output,
			GasLeft: result.GasLeft,
			Err:     vela.ErrReverted,
		}
	}
	return failWith(result.Err, 0)
}

func failWith(err error, gasLeft vela.Gas) vela.CallResult {
	return vela.CallResult{GasLeft: gasLeft, Err: err}
}

func hashCode(code vela.Code) vela.Hash {
	return vela.Hash(crypto.Keccak256(code))
}

func createAddress(
	kind vela.CallKind,
	sender vela.Address,
	nonce uint64,
	salt vela.Hash,
	initHash vela.Hash,
) vela.Address {
	if kind == vela.Create {
		return vela.Address(crypto.CreateAddress(common.Address(sender), nonce))
	}
	return vela.Address(crypto.CreateAddress2(common.Address(sender), common.Hash(salt), initHash[:]))
}

func canTransferValue(
	context vela.TransactionContext,
	value vela.Value,
	sender vela.Address,
	recipient *vela.Address,
) bool {
	if value.IsZero() {
		return true
	}

	senderBalance := context.GetBalance(sender)
	if senderBalance.Cmp(value) < 0 {
		return false
	}

	if recipient == nil || sender == *recipient {
		return true
	}

	receiverBalance := context.GetBalance(*recipient)
	updatedBalance := vela.Add(receiverBalance, value)
	return updatedBalance.Cmp(receiverBalance) >= 0 && updatedBalance.Cmp(value) >= 0
}

// transferValue moves value from sender to recipient. Only to be called
// after canTransferValue.
func transferValue(
	context vela.TransactionContext,
	value vela.Value,
	sender vela.Address,
	recipient vela.Address,
) {
	if value.IsZero() || sender == recipient {
		return
	}
	context.SetBalance(sender, vela.Sub(context.GetBalance(sender), value))
	context.SetBalance(recipient, vela.Add(context.GetBalance(recipient), value))
}
