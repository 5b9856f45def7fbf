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
	"testing"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

func TestStaticGasPrices_MatchIstanbulSchedule(t *testing.T) {
	tests := map[vm.OpCode]vela.Gas{
		vm.STOP:         0,
		vm.ADD:          3,
		vm.MUL:          5,
		vm.ADDMOD:       8,
		vm.EXP:          10,
		vm.SHA3:         30,
		vm.BALANCE:      700,
		vm.SELFBALANCE:  5,
		vm.BLOCKHASH:    20,
		vm.SLOAD:        800,
		vm.SSTORE:       0,
		vm.JUMPDEST:     1,
		vm.PUSH1:        3,
		vm.PUSH32:       3,
		vm.DUP16:        3,
		vm.SWAP1:        3,
		vm.LOG0:         375,
		vm.LOG4:         1875,
		vm.CREATE:       32000,
		vm.CREATE2:      32000,
		vm.CALL:         700,
		vm.STATICCALL:   700,
		vm.SELFDESTRUCT: 5000,
		vm.INVALID:      0,
	}

	for op, want := range tests {
		if got := staticGasPrices.get(op); got != want {
			t.Errorf("unexpected static gas price for %v, wanted %d, got %d", op, want, got)
		}
	}
}

func TestStaticGasPrices_UndefinedOpCodesAreFree(t *testing.T) {
	for i := 0; i < 256; i++ {
		op := vm.OpCode(i)
		if vm.IsValid(op) {
			continue
		}
		if got := staticGasPrices.get(op); got != InvalidOpPrice {
			t.Errorf("unexpected price for invalid op %v: %d", op, got)
		}
	}
}

func TestSstoreCosts_NeverRefundMoreThanCharged(t *testing.T) {
	statuses := []vela.StorageStatus{
		vela.StorageAssigned,
		vela.StorageAdded,
		vela.StorageDeleted,
		vela.StorageModified,
		vela.StorageDeletedAdded,
		vela.StorageModifiedDeleted,
		vela.StorageDeletedRestored,
		vela.StorageAddedDeleted,
		vela.StorageModifiedRestored,
	}
	for _, status := range statuses {
		cost := getDynamicCostsForSstore(status)
		refund := getRefundForSstore(status)
		if cost < SloadGasEIP2200 {
			t.Errorf("%v: SSTORE must cost at least %d, got %d", status, SloadGasEIP2200, cost)
		}
		if refund > SstoreSetGasEIP2200 {
			t.Errorf("%v: unexpected refund %d", status, refund)
		}
	}
}
