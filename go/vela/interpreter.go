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

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package vela

// Interpreter is a component capable of executing the code of a single call
// frame. Nested calls and contract creations are delegated back to the
// RunContext provided through the Parameters.
type Interpreter interface {
	// Run executes the code provided by the parameters in the given context.
	// Execution failures like running out of gas or hitting an invalid
	// instruction are reported through an unsuccessful Result. The error is
	// reserved for unrecoverable issues, including errors raised by hook
	// observers.
	Run(Parameters) (Result, error)
}

// Parameters summarizes the input of a single interpreter run.
type Parameters struct {
	BlockParameters
	TransactionParameters
	Context   RunContext
	Hooks     *Hooks // < may be nil
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       Gas
	Recipient Address
	Sender    Address
	Input     Data
	Value     Value
	CodeHash  *Hash // < optional, used for caching code analysis
	Code      Code
}

// BlockParameters contains the block level information accessible by
// contract code.
type BlockParameters struct {
	ChainID     Word
	BlockNumber int64
	Timestamp   int64
	Coinbase    Address
	GasLimit    Gas
	PrevRandao  Hash
}

// TransactionParameters contains the transaction level information
// accessible by contract code.
type TransactionParameters struct {
	Origin   Address
	GasPrice Value
}

// RunContext is the interface an interpreter uses to access the world state
// and to dispatch nested calls.
type RunContext interface {
	TransactionContext
	Call(kind CallKind, parameter CallParameters) (CallResult, error)
}

// Result summarizes the outcome of an interpreter run.
type Result struct {
	Success   bool
	Output    Data
	GasLeft   Gas
	GasRefund Gas
	Err       error // < the execution error kind if not successful
}

type CallKind int

const (
	Call CallKind = iota
	DelegateCall
	StaticCall
	CallCode
	Create
	Create2
)

// CallParameters describes a nested call or create requested by an
// interpreter through its RunContext.
type CallParameters struct {
	Sender      Address
	Recipient   Address // < not relevant for CREATE and CREATE2 calls
	Value       Value
	Input       Data
	Gas         Gas
	Salt        Hash    // < only relevant for CREATE2 calls
	CodeAddress Address // < only relevant for DELEGATECALL and CALLCODE calls
}

// CallResult summarizes the outcome of a nested call.
type CallResult struct {
	Output         Data
	GasLeft        Gas
	GasRefund      Gas
	CreatedAddress Address // < only meaningful for successful CREATE and CREATE2 calls
	Success        bool
	Err            error // < the execution error kind if not successful
}

// ProfilingInterpreter is an Interpreter collecting execution statistics.
type ProfilingInterpreter interface {
	Interpreter
	ResetProfile()
	DumpProfile()
}
