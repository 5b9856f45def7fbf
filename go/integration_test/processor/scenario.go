// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package processor contains end-to-end scenarios running transactions and
// blocks through the registered processors on top of the in-memory state.
package processor

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Vela/go/state"
	"github.com/Fantom-foundation/Vela/go/vela"
)

// Scenario represents a test scenario for a transaction processor. A scenario
// consists of a world state before and after the operation, a transaction to
// be executed, block parameters, and the expected receipt. If Error is set,
// the transaction is expected to be rejected and the state to stay unchanged.
type Scenario struct {
	Before      state.WorldState
	After       state.WorldState
	Parameters  vela.BlockParameters
	Transaction vela.Transaction
	Options     vela.TxOptions
	Receipt     vela.Receipt
	Error       error
}

func (s *Scenario) Run(t *testing.T, processor vela.Processor) {
	t.Helper()
	context := state.NewContext(s.Before)
	result, err := processor.RunTx(s.Parameters, s.Transaction, s.Options, context)
	if s.Error != nil {
		if !errors.Is(err, s.Error) {
			t.Fatalf("unexpected error, want %v, got %v", s.Error, err)
		}
		if diff := s.Before.Diff(context.State()); len(diff) != 0 {
			t.Fatalf("rejected transaction modified the state:\n\t%s", strings.Join(diff, "\n\t"))
		}
		return
	}
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}

	if want, got := s.After, context.State(); !want.Equal(got) {
		diff := strings.Join(got.Diff(want), "\n\t")
		t.Fatalf("unexpected world state after the operation: \n\t%v", diff)
	}
	if err := CheckReceipt(s.Receipt, result.Receipt); err != nil {
		t.Error(err)
	}
}

func (s *Scenario) Clone() Scenario {
	return Scenario{
		Before:      s.Before.Clone(),
		After:       s.After.Clone(),
		Parameters:  s.Parameters,
		Transaction: s.Transaction,
		Options:     s.Options,
		Receipt:     s.Receipt,
		Error:       s.Error,
	}
}

// CheckReceipt compares the observable fields of two receipts. The bloom
// and the cumulative gas are not compared.
func CheckReceipt(want, got vela.Receipt) error {
	var errs []error
	if want.Success != got.Success {
		errs = append(errs, fmt.Errorf("unexpected success, want %v, got %v", want.Success, got.Success))
	}
	if want.GasUsed != got.GasUsed {
		errs = append(errs, fmt.Errorf("unexpected gas used, want %v, got %v", want.GasUsed, got.GasUsed))
	}
	if !bytes.Equal(want.Output, got.Output) {
		errs = append(errs, fmt.Errorf("unexpected output, want %x, got %x", want.Output, got.Output))
	}

	switch {
	case want.ContractAddress == nil && got.ContractAddress != nil:
		errs = append(errs, fmt.Errorf("unexpected created contract address, want nil, got %v", *got.ContractAddress))
	case want.ContractAddress != nil && got.ContractAddress == nil:
		errs = append(errs, fmt.Errorf("unexpected created contract address, want %v, got nil", *want.ContractAddress))
	case want.ContractAddress != nil && *want.ContractAddress != *got.ContractAddress:
		errs = append(errs, fmt.Errorf("unexpected created contract address, want %v, got %v", *want.ContractAddress, *got.ContractAddress))
	}

	if len(want.Logs) != len(got.Logs) {
		errs = append(errs, fmt.Errorf("unexpected receipt logs, want %v, got %v", want.Logs, got.Logs))
		return errors.Join(errs...)
	}
	for i, w := range want.Logs {
		g := got.Logs[i]
		if w.Address != g.Address {
			errs = append(errs, fmt.Errorf("unexpected log address, want %v, got %v", w.Address, g.Address))
		}
		if !slices.Equal(w.Topics, g.Topics) {
			errs = append(errs, fmt.Errorf("unexpected log topics, want %v, got %v", w.Topics, g.Topics))
		}
		if !bytes.Equal(w.Data, g.Data) {
			errs = append(errs, fmt.Errorf("unexpected log data, want %x, got %x", w.Data, g.Data))
		}
	}
	return errors.Join(errs...)
}
