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
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

const (
	CallNewAccountGas       vela.Gas = 25000 // Paid for CALL when the destination address didn't exist prior.
	CallValueTransferGas    vela.Gas = 9000  // Paid for CALL when the value transfer is non-zero.
	CreateBySelfdestructGas vela.Gas = 25000 // Paid for SELFDESTRUCT when the beneficiary is a new account.
	SelfdestructRefundGas   vela.Gas = 24000 // Refunded following a selfdestruct operation.

	SloadGasEIP2200                   vela.Gas = 800   // Cost of SLOAD, also charged for no-op SSTOREs
	SstoreSetGasEIP2200               vela.Gas = 20000 // Once per SSTORE operation from clean zero to non-zero
	SstoreResetGasEIP2200             vela.Gas = 5000  // Once per SSTORE operation from clean non-zero to something else
	SstoreClearsScheduleRefundEIP2200 vela.Gas = 15000 // Once per SSTORE operation for clearing an originally existing storage slot
	SstoreSentryGasEIP2200            vela.Gas = 2300  // Minimum gas required to be present for an SSTORE call, not consumed

	LogTopicGas    vela.Gas = 375 // Per topic of a LOG instruction, included in the static price.
	LogDataGas     vela.Gas = 8   // Per byte of data logged.
	CopyGas        vela.Gas = 3   // Per word copied by *COPY instructions.
	Sha3WordGas    vela.Gas = 6   // Per word hashed by SHA3 and CREATE2.
	ExpByteGas     vela.Gas = 50  // Per byte of the exponent of EXP.
	InvalidOpPrice vela.Gas = 0   // Invalid instructions fail before consuming gas.
)

var staticGasPrices = newOpCodePropertyMap(getStaticGasPriceInternal)

// getStaticGasPriceInternal defines the gas charged for an instruction
// before it is executed. Dynamic components are charged by the
// instructions themselves.
func getStaticGasPriceInternal(op vm.OpCode) vela.Gas {
	if op.IsPush() {
		return 3
	}
	if vm.DUP1 <= op && op <= vm.DUP16 {
		return 3
	}
	if vm.SWAP1 <= op && op <= vm.SWAP16 {
		return 3
	}
	if vm.LT <= op && op <= vm.SAR {
		return 3
	}
	if vm.LOG0 <= op && op <= vm.LOG4 {
		return LogTopicGas * vela.Gas(op-vm.LOG0+1)
	}
	switch op {
	case vm.STOP, vm.RETURN, vm.REVERT, vm.SSTORE:
		return 0
	case vm.JUMPDEST:
		return 1
	case vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE, vm.CALLDATASIZE,
		vm.CODESIZE, vm.GASPRICE, vm.COINBASE, vm.TIMESTAMP, vm.NUMBER,
		vm.DIFFICULTY, vm.GASLIMIT, vm.CHAINID, vm.RETURNDATASIZE, vm.POP,
		vm.PC, vm.MSIZE, vm.GAS:
		return 2
	case vm.ADD, vm.SUB, vm.CALLDATALOAD, vm.CALLDATACOPY, vm.CODECOPY,
		vm.RETURNDATACOPY, vm.MLOAD, vm.MSTORE, vm.MSTORE8:
		return 3
	case vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.SIGNEXTEND, vm.SELFBALANCE:
		return 5
	case vm.ADDMOD, vm.MULMOD, vm.JUMP:
		return 8
	case vm.EXP, vm.JUMPI:
		return 10
	case vm.BLOCKHASH:
		return 20
	case vm.SHA3:
		return 30
	case vm.BALANCE, vm.EXTCODESIZE, vm.EXTCODECOPY, vm.EXTCODEHASH,
		vm.CALL, vm.CALLCODE, vm.DELEGATECALL, vm.STATICCALL:
		return 700
	case vm.SLOAD:
		return SloadGasEIP2200
	case vm.SELFDESTRUCT:
		return 5000
	case vm.CREATE, vm.CREATE2:
		return 32000
	}
	return InvalidOpPrice
}

// getDynamicCostsForSstore computes the gas charged for an SSTORE according
// to EIP-2200.
func getDynamicCostsForSstore(status vela.StorageStatus) vela.Gas {
	switch status {
	case vela.StorageAdded:
		return SstoreSetGasEIP2200
	case vela.StorageModified, vela.StorageDeleted:
		return SstoreResetGasEIP2200
	}
	return SloadGasEIP2200
}

// getRefundForSstore computes the refund granted or revoked by an SSTORE
// according to EIP-2200. The result may be negative.
func getRefundForSstore(status vela.StorageStatus) vela.Gas {
	switch status {
	case vela.StorageDeleted, vela.StorageModifiedDeleted:
		return SstoreClearsScheduleRefundEIP2200
	case vela.StorageDeletedAdded:
		return -SstoreClearsScheduleRefundEIP2200
	case vela.StorageDeletedRestored:
		return -SstoreClearsScheduleRefundEIP2200 + SstoreResetGasEIP2200 - SloadGasEIP2200
	case vela.StorageAddedDeleted:
		return SstoreSetGasEIP2200 - SloadGasEIP2200
	case vela.StorageModifiedRestored:
		return SstoreResetGasEIP2200 - SloadGasEIP2200
	}
	return 0
}
