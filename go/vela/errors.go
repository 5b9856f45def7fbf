// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vela

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// Validation errors. They are detected before any state is modified and
// reject the enclosing transaction or block.
const (
	ErrInvalidTransaction   = ConstError("invalid transaction")
	ErrNonceTooLow          = ConstError("nonce too low")
	ErrNonceTooHigh         = ConstError("nonce too high")
	ErrInsufficientFunds    = ConstError("insufficient funds for gas * price + value")
	ErrIntrinsicGas         = ConstError("intrinsic gas too low")
	ErrMissingSignature     = ConstError("missing transaction signature")
	ErrGasLimitReached      = ConstError("gas limit reached")
	ErrInvalidBlock         = ConstError("invalid block")
	ErrReceiptsRootMismatch = ConstError("receipts root mismatch")
	ErrGasUsedMismatch      = ConstError("gas used mismatch")
)

// Execution errors. They are reported through results and never abort a
// transaction or block.
const (
	ErrOutOfGas                 = ConstError("out of gas")
	ErrReverted                 = ConstError("execution reverted")
	ErrInvalidOpCode            = ConstError("invalid opcode")
	ErrStackUnderflow           = ConstError("stack underflow")
	ErrStackOverflow            = ConstError("stack overflow")
	ErrInvalidJump              = ConstError("invalid jump destination")
	ErrWriteProtection          = ConstError("write protection")
	ErrDepthExceeded            = ConstError("max call depth exceeded")
	ErrInsufficientBalance      = ConstError("insufficient balance for transfer")
	ErrContractAddressCollision = ConstError("contract address collision")
	ErrMaxCodeSizeExceeded      = ConstError("max code size exceeded")
	ErrInvalidCodePrefix        = ConstError("invalid code: must not begin with 0xef")
	ErrCodeStoreOutOfGas        = ConstError("contract creation code storage out of gas")
	ErrReturnDataOutOfBounds    = ConstError("return data out of bounds")
	ErrGasUintOverflow          = ConstError("gas uint64 overflow")
	ErrInitCodeTooLarge         = ConstError("init code larger than allowed")
	ErrNonceOverflow            = ConstError("nonce overflow")
	ErrPrecompileFailed         = ConstError("precompiled contract failed")
)

// ErrObserverAborted wraps errors raised by hook observers. Such errors
// abort the entire run.
const ErrObserverAborted = ConstError("aborted by hook observer")
