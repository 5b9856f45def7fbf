// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"testing"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/crypto"
	"pgregory.net/rand"
)

var _ vela.TransactionContext = (*Context)(nil)
var _ vela.TransactionFinalizer = (*Context)(nil)

func TestContext_InitialStateIsCopied(t *testing.T) {
	initial := WorldState{{1}: Account{Balance: vela.NewValue(5)}}
	ctxt := NewContext(initial)
	ctxt.SetBalance(vela.Address{1}, vela.NewValue(7))
	if got := initial[vela.Address{1}].Balance; got != vela.NewValue(5) {
		t.Errorf("initial state was modified: %v", got)
	}
}

func TestContext_AccountExistence(t *testing.T) {
	ctxt := NewContext(WorldState{
		{1}: Account{Balance: vela.NewValue(1)},
		{2}: Account{Nonce: 1},
		{3}: Account{Code: vela.Code{0}},
		{4}: Account{Storage: Storage{{1}: {1}}},
	})
	tests := map[vela.Address]bool{
		{1}: true,
		{2}: true,
		{3}: true,
		{4}: false,
		{5}: false,
	}
	for addr, want := range tests {
		if got := ctxt.AccountExists(addr); got != want {
			t.Errorf("unexpected existence of %v, wanted %t, got %t", addr, want, got)
		}
	}
}

func TestContext_CodeHash(t *testing.T) {
	ctxt := NewContext(WorldState{
		{1}: Account{Code: vela.Code{1, 2, 3}},
		{2}: Account{Balance: vela.NewValue(1)},
	})
	if want, got := vela.Hash(crypto.Keccak256Hash([]byte{1, 2, 3})), ctxt.GetCodeHash(vela.Address{1}); want != got {
		t.Errorf("unexpected code hash, wanted %v, got %v", want, got)
	}
	if want, got := vela.Hash(crypto.Keccak256Hash(nil)), ctxt.GetCodeHash(vela.Address{2}); want != got {
		t.Errorf("unexpected hash of empty code, wanted %v, got %v", want, got)
	}
	if got := ctxt.GetCodeHash(vela.Address{3}); got != (vela.Hash{}) {
		t.Errorf("missing accounts should have a zero code hash, got %v", got)
	}
}

func TestContext_StorageStatusIsRelativeToTransactionStart(t *testing.T) {
	addr, key := vela.Address{1}, vela.Key{1}
	x, y := vela.Word{31: 1}, vela.Word{31: 2}
	ctxt := NewContext(WorldState{addr: Account{Nonce: 1, Storage: Storage{key: x}}})

	steps := []struct {
		value vela.Word
		want  vela.StorageStatus
	}{
		{y, vela.StorageModified},
		{vela.Word{}, vela.StorageModifiedDeleted},
		{x, vela.StorageDeletedRestored},
		{x, vela.StorageAssigned},
	}
	for i, step := range steps {
		if got := ctxt.SetStorage(addr, key, step.value); got != step.want {
			t.Errorf("step %d: unexpected status, wanted %v, got %v", i, step.want, got)
		}
	}

	ctxt.SetStorage(addr, key, y)
	ctxt.EndTransaction()
	if got := ctxt.SetStorage(addr, key, vela.Word{}); got != vela.StorageDeleted {
		t.Errorf("unexpected status in new transaction, got %v", got)
	}
}

func TestContext_RestoreSnapshotUndoesAllChanges(t *testing.T) {
	addr := vela.Address{1}
	initial := WorldState{addr: Account{Balance: vela.NewValue(10), Nonce: 3}}
	ctxt := NewContext(initial)

	snapshot := ctxt.CreateSnapshot()
	ctxt.SetBalance(addr, vela.NewValue(1))
	ctxt.SetNonce(addr, 4)
	ctxt.SetCode(addr, vela.Code{1})
	ctxt.SetStorage(addr, vela.Key{1}, vela.Word{1})
	ctxt.SetBalance(vela.Address{2}, vela.NewValue(9))
	ctxt.EmitLog(vela.Log{Address: addr})
	ctxt.RestoreSnapshot(snapshot)

	if got := ctxt.State(); !initial.Equal(got) {
		t.Errorf("state was not restored: %v", got.Diff(initial))
	}
	if _, found := ctxt.current[vela.Address{2}]; found {
		t.Errorf("accounts created after the snapshot should be removed")
	}
	if len(ctxt.GetLogs()) != 0 {
		t.Errorf("logs were not restored")
	}
}

func TestContext_NestedSnapshots(t *testing.T) {
	addr := vela.Address{1}
	ctxt := NewContext(nil)

	outer := ctxt.CreateSnapshot()
	ctxt.SetBalance(addr, vela.NewValue(1))
	inner := ctxt.CreateSnapshot()
	ctxt.SetBalance(addr, vela.NewValue(2))
	ctxt.CommitSnapshot(inner)

	if got := ctxt.GetBalance(addr); got != vela.NewValue(2) {
		t.Errorf("committed change lost, got %v", got)
	}

	ctxt.RestoreSnapshot(outer)
	if got := ctxt.GetBalance(addr); got != (vela.Value{}) {
		t.Errorf("restoring the outer snapshot should undo the committed inner changes, got %v", got)
	}
}

func TestContext_SnapshotsMustBeClosedInOrder(t *testing.T) {
	ctxt := NewContext(nil)
	outer := ctxt.CreateSnapshot()
	ctxt.CreateSnapshot()

	defer func() {
		if recover() == nil {
			t.Errorf("closing a non-innermost snapshot should panic")
		}
	}()
	ctxt.CommitSnapshot(outer)
}

func TestContext_SelfDestruct(t *testing.T) {
	self, beneficiary := vela.Address{1}, vela.Address{2}
	ctxt := NewContext(WorldState{
		self:        Account{Balance: vela.NewValue(10), Code: vela.Code{1}},
		beneficiary: Account{Balance: vela.NewValue(1)},
	})

	if !ctxt.SelfDestruct(self, beneficiary) {
		t.Errorf("first destruction should be reported")
	}
	if ctxt.SelfDestruct(self, beneficiary) {
		t.Errorf("repeated destruction should not be reported")
	}
	if got := ctxt.GetBalance(beneficiary); got != vela.NewValue(11) {
		t.Errorf("unexpected beneficiary balance %v", got)
	}
	if !ctxt.HasSelfDestructed(self) {
		t.Errorf("account should be marked as destructed")
	}

	ctxt.EndTransaction()
	if _, found := ctxt.State()[self]; found {
		t.Errorf("destructed account should be removed at the end of the transaction")
	}
	if ctxt.HasSelfDestructed(self) {
		t.Errorf("destruction marks should be cleared")
	}
}

func TestContext_SelfDestructToSelfBurnsBalance(t *testing.T) {
	self := vela.Address{1}
	ctxt := NewContext(WorldState{self: Account{Balance: vela.NewValue(10)}})
	ctxt.SelfDestruct(self, self)
	if got := ctxt.GetBalance(self); !got.IsZero() {
		t.Errorf("balance should be burned, got %v", got)
	}
}

func TestContext_RestoreRevivesDestructedAccount(t *testing.T) {
	self := vela.Address{1}
	ctxt := NewContext(WorldState{self: Account{Balance: vela.NewValue(10)}})
	snapshot := ctxt.CreateSnapshot()
	ctxt.SelfDestruct(self, vela.Address{2})
	ctxt.RestoreSnapshot(snapshot)
	if ctxt.HasSelfDestructed(self) {
		t.Errorf("destruction should be undone")
	}
	if got := ctxt.GetBalance(self); got != vela.NewValue(10) {
		t.Errorf("balance should be restored, got %v", got)
	}
}

func TestContext_EndTransactionDropsLogsAndEmptyAccounts(t *testing.T) {
	ctxt := NewContext(nil)
	ctxt.SetBalance(vela.Address{1}, vela.Value{})
	ctxt.SetStorage(vela.Address{2}, vela.Key{1}, vela.Word{})
	ctxt.EmitLog(vela.Log{Address: vela.Address{3}})
	ctxt.EndTransaction()

	if len(ctxt.GetLogs()) != 0 {
		t.Errorf("logs should be cleared")
	}
	if len(ctxt.current) != 0 {
		t.Errorf("empty accounts should be removed, got %v", ctxt.current)
	}
}

func TestContext_EndTransactionWithOpenSnapshotPanics(t *testing.T) {
	ctxt := NewContext(nil)
	ctxt.CreateSnapshot()
	defer func() {
		if recover() == nil {
			t.Errorf("ending a transaction with open snapshots should panic")
		}
	}()
	ctxt.EndTransaction()
}

func TestContext_LogsAreCopied(t *testing.T) {
	ctxt := NewContext(nil)
	data := []byte{1, 2}
	ctxt.EmitLog(vela.Log{Data: data})
	data[0] = 9
	if got := ctxt.GetLogs()[0].Data[0]; got != 1 {
		t.Errorf("log data should be copied, got %d", got)
	}
}

func TestContext_BlockHashes(t *testing.T) {
	ctxt := NewContext(nil)
	ctxt.SetBlockHash(7, vela.Hash{7})
	if got := ctxt.GetBlockHash(7); got != (vela.Hash{7}) {
		t.Errorf("unexpected hash %v", got)
	}
	if got := ctxt.GetBlockHash(8); got != (vela.Hash{}) {
		t.Errorf("unknown blocks should have a zero hash, got %v", got)
	}
}

// TestContext_RandomOperationsAreRestoredBySnapshots applies random
// mutations within randomly nested checkpoints and checks that every
// restore yields the state observed when the checkpoint was created.
func TestContext_RandomOperationsAreRestoredBySnapshots(t *testing.T) {
	r := rand.New(42)
	addresses := []vela.Address{{1}, {2}, {3}}
	keys := []vela.Key{{1}, {2}}

	for round := 0; round < 50; round++ {
		ctxt := NewContext(WorldState{{1}: Account{Balance: vela.NewValue(100)}})
		type checkpoint struct {
			id    vela.Snapshot
			state WorldState
			logs  int
		}
		var open []checkpoint

		for step := 0; step < 200; step++ {
			addr := addresses[r.Intn(len(addresses))]
			switch r.Intn(8) {
			case 0:
				ctxt.SetBalance(addr, vela.NewValue(r.Uint64n(1000)))
			case 1:
				ctxt.SetNonce(addr, r.Uint64n(10))
			case 2:
				ctxt.SetCode(addr, vela.Code{byte(r.Intn(256))})
			case 3:
				ctxt.SetStorage(addr, keys[r.Intn(len(keys))], vela.Word{31: byte(r.Intn(3))})
			case 4:
				ctxt.EmitLog(vela.Log{Address: addr})
			case 5:
				ctxt.SelfDestruct(addr, addresses[r.Intn(len(addresses))])
			case 6:
				open = append(open, checkpoint{
					id:    ctxt.CreateSnapshot(),
					state: ctxt.State(),
					logs:  len(ctxt.GetLogs()),
				})
			case 7:
				if len(open) == 0 {
					continue
				}
				top := open[len(open)-1]
				open = open[:len(open)-1]
				if r.Intn(2) == 0 {
					ctxt.CommitSnapshot(top.id)
					continue
				}
				ctxt.RestoreSnapshot(top.id)
				if got := ctxt.State(); !top.state.Equal(got) {
					t.Fatalf("round %d, step %d: state not restored: %v", round, step, got.Diff(top.state))
				}
				if got := len(ctxt.GetLogs()); got != top.logs {
					t.Fatalf("round %d, step %d: unexpected number of logs, wanted %d, got %d", round, step, top.logs, got)
				}
			}
		}
	}
}
