// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

// instructionInfo contains meta-information about instructions used for
// generating test cases.
type instructionInfo struct {
	stack stackUsage
	gas   gasUsage
}

type stackUsage struct {
	popped int // < the number of elements popped from the stack
	pushed int // < the number of elements pushed on the stack
}

type gasUsage struct {
	static  vela.Gas
	dynamic bool // < true if the costs depend on the arguments or the state
}

// getInstructions returns the instruction set supported by all interpreters.
func getInstructions() map[vm.OpCode]instructionInfo {
	none := stackUsage{}
	op := func(x int) stackUsage { return stackUsage{popped: x, pushed: 1} }
	consume := func(x int) stackUsage { return stackUsage{popped: x} }

	const gasJumpDest vela.Gas = 1
	const gasQuickStep vela.Gas = 2
	const gasFastestStep vela.Gas = 3
	const gasFastStep vela.Gas = 5
	const gasMidStep vela.Gas = 8
	const gasSlowStep vela.Gas = 10
	const gasExtStep vela.Gas = 20
	const gasSha3 vela.Gas = 30
	const gasExt vela.Gas = 700
	const gasSload vela.Gas = 800
	const gasSelfDestruct vela.Gas = 5000
	const gasCreate vela.Gas = 32000

	static := func(gas vela.Gas) gasUsage { return gasUsage{static: gas} }
	dynamic := func(gas vela.Gas) gasUsage { return gasUsage{static: gas, dynamic: true} }

	res := map[vm.OpCode]instructionInfo{
		vm.STOP:           {none, static(0)},
		vm.ADD:            {op(2), static(gasFastestStep)},
		vm.MUL:            {op(2), static(gasFastStep)},
		vm.SUB:            {op(2), static(gasFastestStep)},
		vm.DIV:            {op(2), static(gasFastStep)},
		vm.SDIV:           {op(2), static(gasFastStep)},
		vm.MOD:            {op(2), static(gasFastStep)},
		vm.SMOD:           {op(2), static(gasFastStep)},
		vm.ADDMOD:         {op(3), static(gasMidStep)},
		vm.MULMOD:         {op(3), static(gasMidStep)},
		vm.EXP:            {op(2), dynamic(gasSlowStep)},
		vm.SIGNEXTEND:     {op(2), static(gasFastStep)},
		vm.LT:             {op(2), static(gasFastestStep)},
		vm.GT:             {op(2), static(gasFastestStep)},
		vm.SLT:            {op(2), static(gasFastestStep)},
		vm.SGT:            {op(2), static(gasFastestStep)},
		vm.EQ:             {op(2), static(gasFastestStep)},
		vm.ISZERO:         {op(1), static(gasFastestStep)},
		vm.AND:            {op(2), static(gasFastestStep)},
		vm.XOR:            {op(2), static(gasFastestStep)},
		vm.OR:             {op(2), static(gasFastestStep)},
		vm.NOT:            {op(1), static(gasFastestStep)},
		vm.BYTE:           {op(2), static(gasFastestStep)},
		vm.SHL:            {op(2), static(gasFastestStep)},
		vm.SHR:            {op(2), static(gasFastestStep)},
		vm.SAR:            {op(2), static(gasFastestStep)},
		vm.SHA3:           {op(2), dynamic(gasSha3)},
		vm.ADDRESS:        {op(0), static(gasQuickStep)},
		vm.BALANCE:        {op(1), static(gasExt)},
		vm.ORIGIN:         {op(0), static(gasQuickStep)},
		vm.CALLER:         {op(0), static(gasQuickStep)},
		vm.CALLVALUE:      {op(0), static(gasQuickStep)},
		vm.CALLDATALOAD:   {op(1), static(gasFastestStep)},
		vm.CALLDATASIZE:   {op(0), static(gasQuickStep)},
		vm.CALLDATACOPY:   {consume(3), dynamic(gasFastestStep)},
		vm.CODESIZE:       {op(0), static(gasQuickStep)},
		vm.CODECOPY:       {consume(3), dynamic(gasFastestStep)},
		vm.GASPRICE:       {op(0), static(gasQuickStep)},
		vm.EXTCODESIZE:    {op(1), static(gasExt)},
		vm.EXTCODECOPY:    {consume(4), dynamic(gasExt)},
		vm.RETURNDATASIZE: {op(0), static(gasQuickStep)},
		vm.RETURNDATACOPY: {consume(3), dynamic(gasFastestStep)},
		vm.EXTCODEHASH:    {op(1), static(gasExt)},
		vm.BLOCKHASH:      {op(1), static(gasExtStep)},
		vm.COINBASE:       {op(0), static(gasQuickStep)},
		vm.TIMESTAMP:      {op(0), static(gasQuickStep)},
		vm.NUMBER:         {op(0), static(gasQuickStep)},
		vm.DIFFICULTY:     {op(0), static(gasQuickStep)},
		vm.GASLIMIT:       {op(0), static(gasQuickStep)},
		vm.CHAINID:        {op(0), static(gasQuickStep)},
		vm.SELFBALANCE:    {op(0), static(gasFastStep)},
		vm.POP:            {consume(1), static(gasQuickStep)},
		vm.MLOAD:          {op(1), dynamic(gasFastestStep)},
		vm.MSTORE:         {consume(2), dynamic(gasFastestStep)},
		vm.MSTORE8:        {consume(2), dynamic(gasFastestStep)},
		vm.SLOAD:          {op(1), static(gasSload)},
		vm.SSTORE:         {consume(2), dynamic(0)},
		vm.JUMP:           {consume(1), static(gasMidStep)},
		vm.JUMPI:          {consume(2), static(gasSlowStep)},
		vm.PC:             {op(0), static(gasQuickStep)},
		vm.MSIZE:          {op(0), static(gasQuickStep)},
		vm.GAS:            {op(0), static(gasQuickStep)},
		vm.JUMPDEST:       {none, static(gasJumpDest)},
		vm.CREATE:         {op(3), dynamic(gasCreate)},
		vm.CALL:           {op(7), dynamic(gasExt)},
		vm.CALLCODE:       {op(7), dynamic(gasExt)},
		vm.RETURN:         {consume(2), dynamic(0)},
		vm.DELEGATECALL:   {op(6), dynamic(gasExt)},
		vm.CREATE2:        {op(4), dynamic(gasCreate)},
		vm.STATICCALL:     {op(6), dynamic(gasExt)},
		vm.REVERT:         {consume(2), dynamic(0)},
		vm.SELFDESTRUCT:   {consume(1), dynamic(gasSelfDestruct)},
	}
	for i := 0; i < 32; i++ {
		res[vm.PUSH1+vm.OpCode(i)] = instructionInfo{op(0), static(gasFastestStep)}
	}
	for i := 1; i <= 16; i++ {
		res[vm.DUP1+vm.OpCode(i-1)] = instructionInfo{stackUsage{popped: i, pushed: i + 1}, static(gasFastestStep)}
		res[vm.SWAP1+vm.OpCode(i-1)] = instructionInfo{stackUsage{popped: i + 1, pushed: i + 1}, static(gasFastestStep)}
	}
	for i := 0; i <= 4; i++ {
		res[vm.LOG0+vm.OpCode(i)] = instructionInfo{consume(i + 2), dynamic(vela.Gas(i+1) * 375)}
	}
	return res
}
