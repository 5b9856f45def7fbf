// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"testing"

	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
)

func TestScenario_Clone(t *testing.T) {
	s1 := Scenario{
		Before: state.WorldState{{1}: state.Account{Balance: vela.NewValue(1)}},
		After:  state.WorldState{{1}: state.Account{Balance: vela.NewValue(2)}},
		Transaction: vela.Transaction{
			Sender: vela.Address{1},
		},
		Receipt: vela.Receipt{Success: true, GasUsed: 12},
	}
	s2 := s1.Clone()

	s2.Before[vela.Address{1}] = state.Account{Balance: vela.NewValue(3)}
	s2.After[vela.Address{2}] = state.Account{Nonce: 1}

	if got := s1.Before[vela.Address{1}].Balance; got != vela.NewValue(1) {
		t.Errorf("clone shares the before state, got %v", got)
	}
	if _, found := s1.After[vela.Address{2}]; found {
		t.Errorf("clone shares the after state")
	}
	if s1.Receipt.GasUsed != s2.Receipt.GasUsed || s1.Transaction.Sender != s2.Transaction.Sender {
		t.Errorf("clone lost fields")
	}
}

func TestCheckReceipt_DetectsDifferences(t *testing.T) {
	created := vela.Address{3}
	other := vela.Address{4}
	base := vela.Receipt{
		Success:         true,
		GasUsed:         21_000,
		Output:          vela.Data{1},
		ContractAddress: &created,
		Logs:            []vela.Log{{Address: vela.Address{1}, Topics: []vela.Hash{{2}}, Data: vela.Data{3}}},
	}

	tests := map[string]func(*vela.Receipt){
		"success":         func(r *vela.Receipt) { r.Success = false },
		"gas used":        func(r *vela.Receipt) { r.GasUsed++ },
		"output":          func(r *vela.Receipt) { r.Output = vela.Data{2} },
		"missing address": func(r *vela.Receipt) { r.ContractAddress = nil },
		"other address":   func(r *vela.Receipt) { r.ContractAddress = &other },
		"missing log":     func(r *vela.Receipt) { r.Logs = nil },
		"log address":     func(r *vela.Receipt) { r.Logs = []vela.Log{{Address: vela.Address{9}, Topics: []vela.Hash{{2}}, Data: vela.Data{3}}} },
		"log topics":      func(r *vela.Receipt) { r.Logs = []vela.Log{{Address: vela.Address{1}, Data: vela.Data{3}}} },
		"log data":        func(r *vela.Receipt) { r.Logs = []vela.Log{{Address: vela.Address{1}, Topics: []vela.Hash{{2}}}} },
	}

	if err := CheckReceipt(base, base); err != nil {
		t.Fatalf("equal receipts reported as different: %v", err)
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			modified := base
			modify(&modified)
			if err := CheckReceipt(base, modified); err == nil {
				t.Errorf("difference not detected")
			}
		})
	}
}
