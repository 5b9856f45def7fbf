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

	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

// opCodePropertyMap is a lookup table for OpCode properties precomputed
// from a property function.
type opCodePropertyMap[T any] struct {
	lookup [256]T
}

// newOpCodePropertyMap creates a new OpCode property map. The property
// function must not panic for undefined OpCodes.
func newOpCodePropertyMap[T any](property func(op vm.OpCode) T) opCodePropertyMap[T] {
	lookup := [256]T{}
	for i := 0; i < 256; i++ {
		lookup[i] = property(vm.OpCode(i))
	}
	return opCodePropertyMap[T]{lookup}
}

func (p *opCodePropertyMap[T]) get(op vm.OpCode) T {
	return p.lookup[op]
}

// stackUsage defines the effect of an instruction on the stack. The accessed
// interval [from, to) is relative to the stack pointer, delta is the change
// of the stack size.
type stackUsage struct {
	from, to, delta int
}

// computeStackUsage computes the stack usage of the given opcode. An error
// is returned for opcodes outside the instruction set.
func computeStackUsage(op vm.OpCode) (stackUsage, error) {
	makeUsage := func(pops, pushes int) stackUsage {
		delta := pushes - pops
		to := 0
		if delta > 0 {
			to = delta
		}
		return stackUsage{from: -pops, to: to, delta: delta}
	}

	if op.IsPush() {
		return makeUsage(0, 1), nil
	}
	if vm.DUP1 <= op && op <= vm.DUP16 {
		return makeUsage(int(op-vm.DUP1+1), int(op-vm.DUP1+2)), nil
	}
	if vm.SWAP1 <= op && op <= vm.SWAP16 {
		return makeUsage(int(op-vm.SWAP1+2), int(op-vm.SWAP1+2)), nil
	}
	if vm.LOG0 <= op && op <= vm.LOG4 {
		return makeUsage(int(op-vm.LOG0+2), 0), nil
	}

	switch op {
	case vm.JUMPDEST, vm.STOP:
		return makeUsage(0, 0), nil
	case vm.MSIZE, vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE, vm.CALLDATASIZE,
		vm.CODESIZE, vm.GASPRICE, vm.COINBASE, vm.TIMESTAMP, vm.NUMBER,
		vm.DIFFICULTY, vm.GASLIMIT, vm.PC, vm.GAS, vm.RETURNDATASIZE,
		vm.SELFBALANCE, vm.CHAINID:
		return makeUsage(0, 1), nil
	case vm.POP, vm.JUMP, vm.SELFDESTRUCT:
		return makeUsage(1, 0), nil
	case vm.ISZERO, vm.NOT, vm.BALANCE, vm.CALLDATALOAD, vm.EXTCODESIZE,
		vm.BLOCKHASH, vm.MLOAD, vm.SLOAD, vm.EXTCODEHASH:
		return makeUsage(1, 1), nil
	case vm.MSTORE, vm.MSTORE8, vm.SSTORE, vm.JUMPI, vm.RETURN, vm.REVERT:
		return makeUsage(2, 0), nil
	case vm.ADD, vm.SUB, vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.EXP, vm.SIGNEXTEND,
		vm.SHA3, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.AND, vm.XOR, vm.OR, vm.BYTE,
		vm.SHL, vm.SHR, vm.SAR:
		return makeUsage(2, 1), nil
	case vm.CALLDATACOPY, vm.CODECOPY, vm.RETURNDATACOPY:
		return makeUsage(3, 0), nil
	case vm.ADDMOD, vm.MULMOD, vm.CREATE:
		return makeUsage(3, 1), nil
	case vm.EXTCODECOPY:
		return makeUsage(4, 0), nil
	case vm.CREATE2:
		return makeUsage(4, 1), nil
	case vm.STATICCALL, vm.DELEGATECALL:
		return makeUsage(6, 1), nil
	case vm.CALL, vm.CALLCODE:
		return makeUsage(7, 1), nil
	}

	return stackUsage{}, fmt.Errorf("unsupported opcode: %v", op)
}

// stackLimits defines the stack size range an instruction may be executed in.
type stackLimits struct {
	min int // minimum stack size required before running the instruction
	max int // maximum stack size allowed before running the instruction
}

var precomputedStackLimits = newOpCodePropertyMap(func(op vm.OpCode) stackLimits {
	usage, err := computeStackUsage(op)
	if err != nil {
		return stackLimits{}
	}
	return stackLimits{
		min: -usage.from,
		max: maxStackSize - usage.to,
	}
})

// checkStackLimits checks that op will not make an out of bounds access
// with the current stack size.
func checkStackLimits(stackLen int, op vm.OpCode) error {
	limits := precomputedStackLimits.get(op)
	if stackLen < limits.min {
		return errStackUnderflow
	}
	if stackLen > limits.max {
		return errStackOverflow
	}
	return nil
}
