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

//go:generate mockgen -source processor.go -destination processor_mock.go -package vela

// Processor is the execution pipeline running blocks, transactions, and
// individual messages on top of an Interpreter.
type Processor interface {
	// RunBlock executes all transactions of the given block in order. A
	// validation error of any transaction aborts the entire block.
	RunBlock(Block, BlockOptions, TransactionContext) (BlockResult, error)

	// RunTx executes a single transaction. Validation errors are returned
	// as errors before any state is modified. Execution failures are
	// reported through the returned result.
	RunTx(BlockParameters, Transaction, TxOptions, TransactionContext) (TransactionResult, error)

	// RunCall executes a single message, bypassing transaction level
	// validation and gas billing.
	RunCall(BlockParameters, TransactionParameters, Message, TransactionContext) (ExecutionResult, error)
}

// BlockOptions controls the block runner.
type BlockOptions struct {
	// Generate fills in the receipts root and bloom of the result instead
	// of checking them against the values present in the block.
	Generate bool
	// SkipBlockValidation suppresses header checks. Transaction level
	// validation errors still abort the block.
	SkipBlockValidation bool
}

// TxOptions contains testing aids of the transaction runner. Both are
// disabled in normal operation.
type TxOptions struct {
	SkipBalance bool
	SkipNonce   bool
}

// Block is an ordered list of transactions plus header metadata.
type Block struct {
	Header       BlockParameters
	Hash         Hash
	ParentHash   Hash
	Transactions []Transaction

	// Optional commitments checked unless generating or skipping validation.
	// Zero values are not checked.
	ReceiptsRoot Hash
	GasUsed      Gas
}

type Transaction struct {
	Sender    Address  // the sender of the transaction, paying for its execution
	Recipient *Address // the receiver of a transaction, nil if a new contract is to be created
	Nonce     uint64   // the nonce of the sender account, used to prevent replay attacks
	Input     Data     // the input data for the transaction
	Value     Value    // the amount of network currency to transfer to the recipient
	GasLimit  Gas      // the maximum amount of gas that can be used by the transaction
	GasPrice  Value    // the effective price of a unit of gas for this transaction
	Signature []byte   // the already verified signature, only checked for presence
}

// IsCreation reports whether the transaction deploys a new contract.
func (t *Transaction) IsCreation() bool {
	return t.Recipient == nil
}

// Message is the unit of call dispatch. A message is created fresh for every
// call level.
type Message struct {
	Kind        CallKind
	Sender      Address
	Recipient   Address // < zero for creations
	CodeAddress Address // < the account whose code runs for CALLCODE and DELEGATECALL
	Value       Value
	Input       Data // < init code for creations, call data otherwise
	Gas         Gas
	Depth       int
	Static      bool
	Salt        Hash // < only relevant for CREATE2
}

// ExecutionResult is the outcome of a single message.
type ExecutionResult struct {
	Success        bool
	GasUsed        Gas
	GasLeft        Gas
	GasRefund      Gas
	Output         Data
	CreatedAddress Address // < zero unless a creation succeeded
	Logs           []Log
	Err            error // < the execution error kind, nil on success
}

// Failed reports whether the execution ended in an error or revert.
func (r *ExecutionResult) Failed() bool {
	return !r.Success
}

// Reverted reports whether the execution ended in an explicit revert.
func (r *ExecutionResult) Reverted() bool {
	return r.Err == ErrReverted
}

// Receipt summarizes the execution of a transaction.
type Receipt struct {
	Success           bool     // false if the execution ended in a revert or error, true otherwise
	Output            Data     // the output produced by the transaction
	ContractAddress   *Address // filled if a contract was created by this transaction
	GasUsed           Gas      // gas charged for the transaction
	CumulativeGasUsed Gas      // gas charged for this and all previous transactions of the block
	Logs              []Log    // logs produced by the transaction
	Bloom             Bloom    // the bloom filter over the logs
}

// Bloom is a 2048-bit log bloom filter.
type Bloom [256]byte

// TransactionResult wraps the result of the top-level message of a
// transaction together with its receipt.
type TransactionResult struct {
	Transaction     Transaction
	ExecutionResult ExecutionResult
	Receipt         Receipt
	GasRefund       Gas // < the refund actually granted after capping
}

// BlockResult collects the per-transaction results of a block in order.
type BlockResult struct {
	Block        Block
	Results      []ExecutionResult
	Receipts     []Receipt
	GasUsed      Gas
	ReceiptsRoot Hash
	Bloom        Bloom
}

// NewContract is the payload of the new-contract hook.
type NewContract struct {
	Address Address
	Code    Code
}
