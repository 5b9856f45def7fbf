// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

import (
	"fmt"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

// status is enumeration of the execution state of an interpreter run.
type status byte

const (
	statusRunning        status = iota // < all fine, ops are processed
	statusStopped                      // < execution stopped with a STOP
	statusReverted                     // < execution stopped with a REVERT
	statusReturned                     // < execution stopped with a RETURN
	statusSelfDestructed               // < execution stopped with a SELFDESTRUCT
	statusFailed                       // < execution stopped with a logic error
)

func (s status) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusStopped:
		return "stopped"
	case statusReverted:
		return "reverted"
	case statusReturned:
		return "returned"
	case statusSelfDestructed:
		return "self-destructed"
	case statusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", byte(s))
}

// context is the execution environment of an interpreter run. It contains
// the input parameters, the contract code and its analysis, and the
// internal execution state of a single call frame.
type context struct {
	// Inputs
	params    vela.Parameters
	context   vela.RunContext
	code      vela.Code
	jumpDests jumpDests

	// Execution state
	pc     int
	gas    vela.Gas
	refund vela.Gas
	stack  *stack
	memory *Memory
	err    error // < the reason of a statusFailed outcome

	// Intermediate data
	returnData []byte // < the result of the last nested contract call

	// Observation
	withSteps bool
}

// useGas reduces the gas level by the given amount. If there is not enough
// gas left, errOutOfGas is returned and the gas level remains unchanged.
func (c *context) useGas(amount vela.Gas) error {
	if c.gas < 0 || amount < 0 || c.gas < amount {
		return errOutOfGas
	}
	c.gas -= amount
	return nil
}

// emitStep reports the state of the frame before executing op.
func (c *context) emitStep(op vm.OpCode) error {
	return c.params.Hooks.EmitStep(vela.Step{
		Pc:         uint64(c.pc),
		Op:         op,
		Gas:        c.gas,
		Stack:      c.stack.snapshot(),
		MemorySize: c.memory.len(),
		Depth:      c.params.Depth,
		Address:    c.params.Recipient,
	})
}

// --- Interpreter ---

type runner interface {
	// run executes the contract code in the given context.
	// Any logical error in the contract execution shall return statusFailed
	// and record the reason in the context. The error is reserved for
	// failures aborting the entire run.
	run(*context) (status, error)
}

type interpreterConfig struct {
	analyzer *analyzer
	runner   runner
}

func run(
	config interpreterConfig,
	params vela.Parameters,
) (vela.Result, error) {
	// Don't bother with the execution if there's no code.
	if len(params.Code) == 0 {
		return vela.Result{
			Success: true,
			GasLeft: params.Gas,
		}, nil
	}

	var dests jumpDests
	if config.analyzer != nil {
		dests = config.analyzer.analyze(params.Code, params.CodeHash)
	} else {
		dests = analyzeJumpDests(params.Code)
	}

	ctxt := context{
		params:    params,
		context:   params.Context,
		code:      params.Code,
		jumpDests: dests,
		gas:       params.Gas,
		stack:     newStack(),
		memory:    NewMemory(),
		withSteps: params.Hooks.StepsObserved(),
	}
	defer returnStack(ctxt.stack)

	if config.runner == nil {
		config.runner = vanillaRunner{}
	}
	status, err := config.runner.run(&ctxt)
	if err != nil {
		return vela.Result{}, err
	}

	return generateResult(status, &ctxt)
}

func generateResult(status status, ctxt *context) (vela.Result, error) {
	switch status {
	case statusStopped, statusSelfDestructed:
		return vela.Result{
			Success:   true,
			GasLeft:   ctxt.gas,
			GasRefund: ctxt.refund,
		}, nil
	case statusReturned:
		return vela.Result{
			Success:   true,
			Output:    ctxt.returnData,
			GasLeft:   ctxt.gas,
			GasRefund: ctxt.refund,
		}, nil
	case statusReverted:
		return vela.Result{
			Success: false,
			Output:  ctxt.returnData,
			GasLeft: ctxt.gas,
			Err:     vela.ErrReverted,
		}, nil
	case statusFailed:
		return vela.Result{
			Success: false,
			Err:     ctxt.err,
		}, nil
	default:
		return vela.Result{}, fmt.Errorf("unexpected error in interpreter, unknown status: %v", status)
	}
}

// --- Runners ---

// vanillaRunner is the default runner that executes the contract code
// without any additional features.
type vanillaRunner struct{}

func (r vanillaRunner) run(c *context) (status, error) {
	return execute(c, false)
}

// --- Execution ---

// execute runs the contract code in the given context. If oneStepOnly is
// true, only the instruction pointed to by the program counter is executed.
// Execution violations (out of gas, stack underflow, ...) are recorded in
// the context and yield statusFailed. Only fatal errors are returned.
func execute(c *context, oneStepOnly bool) (status, error) {
	status, err := steps(c, oneStepOnly)
	if err != nil {
		if cause, fatal := asFatal(err); fatal {
			return statusFailed, cause
		}
		c.err = err
		return statusFailed, nil
	}
	return status, nil
}

// steps executes the contract code in the given context. If oneStepOnly is
// true, only the instruction pointed to by the program counter is executed.
func steps(c *context, oneStepOnly bool) (status, error) {
	status := statusRunning
	for status == statusRunning {
		if c.pc >= len(c.code) {
			return statusStopped, nil
		}

		op := vm.OpCode(c.code[c.pc])

		if c.withSteps {
			if err := c.emitStep(op); err != nil {
				return status, fatalError{err}
			}
		}

		if !vm.IsValid(op) {
			return status, errInvalidOpCode
		}

		// Check stack boundary for every instruction
		if err := checkStackLimits(c.stack.len(), op); err != nil {
			return status, err
		}

		// Consume static gas price for instruction before execution
		if err := c.useGas(staticGasPrices.get(op)); err != nil {
			return status, err
		}

		var err error

		// Execute instruction
		switch op {
		case vm.POP:
			opPop(c)
		case vm.PUSH1:
			opPush1(c)
		case vm.JUMP:
			err = opJump(c)
		case vm.JUMPI:
			err = opJumpi(c)
		case vm.JUMPDEST:
			// nothing
		case vm.AND:
			opAnd(c)
		case vm.OR:
			opOr(c)
		case vm.XOR:
			opXor(c)
		case vm.NOT:
			opNot(c)
		case vm.ISZERO:
			opIszero(c)
		case vm.EQ:
			opEq(c)
		case vm.LT:
			opLt(c)
		case vm.GT:
			opGt(c)
		case vm.SLT:
			opSlt(c)
		case vm.SGT:
			opSgt(c)
		case vm.SHR:
			opShr(c)
		case vm.SHL:
			opShl(c)
		case vm.SAR:
			opSar(c)
		case vm.SIGNEXTEND:
			opSignExtend(c)
		case vm.BYTE:
			opByte(c)
		case vm.ADD:
			opAdd(c)
		case vm.SUB:
			opSub(c)
		case vm.MUL:
			opMul(c)
		case vm.DIV:
			opDiv(c)
		case vm.SDIV:
			opSDiv(c)
		case vm.MOD:
			opMod(c)
		case vm.SMOD:
			opSMod(c)
		case vm.ADDMOD:
			opAddMod(c)
		case vm.MULMOD:
			opMulMod(c)
		case vm.EXP:
			err = opExp(c)
		case vm.SHA3:
			err = opSha3(c)
		case vm.PC:
			opPc(c)
		case vm.GAS:
			opGas(c)
		case vm.MLOAD:
			err = opMload(c)
		case vm.MSTORE:
			err = opMstore(c)
		case vm.MSTORE8:
			err = opMstore8(c)
		case vm.MSIZE:
			opMsize(c)
		case vm.SLOAD:
			opSload(c)
		case vm.SSTORE:
			err = opSstore(c)
		case vm.ADDRESS:
			opAddress(c)
		case vm.BALANCE:
			opBalance(c)
		case vm.SELFBALANCE:
			opSelfbalance(c)
		case vm.ORIGIN:
			opOrigin(c)
		case vm.CALLER:
			opCaller(c)
		case vm.CALLVALUE:
			opCallvalue(c)
		case vm.CALLDATALOAD:
			opCallDataload(c)
		case vm.CALLDATASIZE:
			opCallDatasize(c)
		case vm.CALLDATACOPY:
			err = genericDataCopy(c, c.params.Input)
		case vm.CODESIZE:
			opCodeSize(c)
		case vm.CODECOPY:
			err = genericDataCopy(c, c.params.Code)
		case vm.GASPRICE:
			opGasPrice(c)
		case vm.EXTCODESIZE:
			opExtcodesize(c)
		case vm.EXTCODECOPY:
			err = opExtCodeCopy(c)
		case vm.EXTCODEHASH:
			opExtcodehash(c)
		case vm.RETURNDATASIZE:
			opReturnDataSize(c)
		case vm.RETURNDATACOPY:
			err = opReturnDataCopy(c)
		case vm.BLOCKHASH:
			opBlockhash(c)
		case vm.COINBASE:
			opCoinbase(c)
		case vm.TIMESTAMP:
			opTimestamp(c)
		case vm.NUMBER:
			opNumber(c)
		case vm.DIFFICULTY:
			opDifficulty(c)
		case vm.GASLIMIT:
			opGasLimit(c)
		case vm.CHAINID:
			opChainId(c)
		case vm.LOG0, vm.LOG1, vm.LOG2, vm.LOG3, vm.LOG4:
			err = opLog(c, int(op-vm.LOG0))
		case vm.CREATE:
			err = genericCreate(c, vela.Create)
		case vm.CREATE2:
			err = genericCreate(c, vela.Create2)
		case vm.CALL:
			err = opCall(c)
		case vm.CALLCODE:
			err = genericCall(c, vela.CallCode)
		case vm.DELEGATECALL:
			err = genericCall(c, vela.DelegateCall)
		case vm.STATICCALL:
			err = genericCall(c, vela.StaticCall)
		case vm.RETURN:
			err = opEndWithResult(c)
			status = statusReturned
		case vm.REVERT:
			err = opEndWithResult(c)
			status = statusReverted
		case vm.STOP:
			status = statusStopped
		case vm.SELFDESTRUCT:
			status, err = opSelfdestruct(c)
		default:
			switch {
			case op.IsPush():
				opPush(c, int(op-vm.PUSH1)+1)
			case vm.DUP1 <= op && op <= vm.DUP16:
				opDup(c, int(op-vm.DUP1)+1)
			case vm.SWAP1 <= op && op <= vm.SWAP16:
				opSwap(c, int(op-vm.SWAP1)+1)
			default:
				err = errInvalidOpCode
			}
		}

		if err != nil {
			return status, err
		}

		c.pc++

		if oneStepOnly {
			return status, nil
		}
	}
	return status, nil
}
