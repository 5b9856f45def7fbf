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
	"bytes"
	"fmt"
	"slices"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/maps"
)

// Context is a journaled, in-memory vela.TransactionContext. Every mutation
// records an undo operation such that nested checkpoints can be restored.
// Storage statuses are computed relative to the state at the start of the
// current transaction.
//
// A Context is not safe for concurrent use.
type Context struct {
	original    WorldState // < state at the start of the current transaction
	current     WorldState
	logs        []vela.Log
	destructed  map[vela.Address]struct{}
	blockHashes map[int64]vela.Hash

	undo        []func()
	checkpoints []int // < journal length at each open checkpoint
}

// NewContext creates a context starting from a copy of the given state.
func NewContext(initial WorldState) *Context {
	if initial == nil {
		initial = WorldState{}
	}
	return &Context{
		original:    initial.Clone(),
		current:     initial.Clone(),
		destructed:  map[vela.Address]struct{}{},
		blockHashes: map[int64]vela.Hash{},
	}
}

// State returns a copy of the current world state.
func (c *Context) State() WorldState {
	return c.current.Clone()
}

// SetBlockHash registers the hash reported for the given block number.
func (c *Context) SetBlockHash(number int64, hash vela.Hash) {
	c.blockHashes[number] = hash
}

func (c *Context) AccountExists(addr vela.Address) bool {
	account := c.current[addr]
	return !account.IsEmpty()
}

func (c *Context) GetBalance(addr vela.Address) vela.Value {
	return c.current[addr].Balance
}

func (c *Context) SetBalance(addr vela.Address, value vela.Value) {
	c.update(addr, func(a *Account) { a.Balance = value })
}

func (c *Context) GetNonce(addr vela.Address) uint64 {
	return c.current[addr].Nonce
}

func (c *Context) SetNonce(addr vela.Address, value uint64) {
	c.update(addr, func(a *Account) { a.Nonce = value })
}

func (c *Context) GetCode(addr vela.Address) vela.Code {
	return bytes.Clone(c.current[addr].Code)
}

// GetCodeHash returns the Keccak256 hash of the code of the given account,
// or the zero hash if the account does not exist.
func (c *Context) GetCodeHash(addr vela.Address) vela.Hash {
	if !c.AccountExists(addr) {
		return vela.Hash{}
	}
	return vela.Hash(crypto.Keccak256Hash(c.current[addr].Code))
}

func (c *Context) GetCodeSize(addr vela.Address) int {
	return len(c.current[addr].Code)
}

func (c *Context) SetCode(addr vela.Address, code vela.Code) {
	code = bytes.Clone(code)
	c.update(addr, func(a *Account) { a.Code = code })
}

func (c *Context) GetStorage(addr vela.Address, key vela.Key) vela.Word {
	return c.current[addr].Storage[key]
}

func (c *Context) SetStorage(addr vela.Address, key vela.Key, value vela.Word) vela.StorageStatus {
	original := c.original[addr].Storage[key]
	current := c.current[addr].Storage[key]

	account := c.current[addr]
	if account.Storage == nil {
		account.Storage = Storage{}
		c.current[addr] = account
	}
	account.Storage[key] = value
	c.undo = append(c.undo, func() { c.current[addr].Storage[key] = current })

	return vela.GetStorageStatus(original, current, value)
}

func (c *Context) SelfDestruct(addr vela.Address, beneficiary vela.Address) bool {
	balance := c.GetBalance(addr)
	if addr != beneficiary {
		c.SetBalance(beneficiary, vela.Add(c.GetBalance(beneficiary), balance))
	}
	c.SetBalance(addr, vela.Value{})

	if _, found := c.destructed[addr]; found {
		return false
	}
	c.destructed[addr] = struct{}{}
	c.undo = append(c.undo, func() { delete(c.destructed, addr) })
	return true
}

// HasSelfDestructed reports whether the account was destroyed in the
// current transaction.
func (c *Context) HasSelfDestructed(addr vela.Address) bool {
	_, found := c.destructed[addr]
	return found
}

func (c *Context) CreateSnapshot() vela.Snapshot {
	c.checkpoints = append(c.checkpoints, len(c.undo))
	return vela.Snapshot(len(c.checkpoints) - 1)
}

func (c *Context) CommitSnapshot(snapshot vela.Snapshot) {
	c.closeCheckpoint(snapshot)
}

func (c *Context) RestoreSnapshot(snapshot vela.Snapshot) {
	mark := c.closeCheckpoint(snapshot)
	for len(c.undo) > mark {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

// closeCheckpoint pops the innermost checkpoint, which must be the given
// one, and returns the journal length recorded for it.
func (c *Context) closeCheckpoint(snapshot vela.Snapshot) int {
	top := len(c.checkpoints) - 1
	if int(snapshot) != top {
		panic(fmt.Sprintf("checkpoints must be closed in LIFO order, got %d, innermost is %d", snapshot, top))
	}
	mark := c.checkpoints[top]
	c.checkpoints = c.checkpoints[:top]
	return mark
}

func (c *Context) EmitLog(entry vela.Log) {
	size := len(c.logs)
	c.logs = append(c.logs, vela.Log{
		Address: entry.Address,
		Topics:  slices.Clone(entry.Topics),
		Data:    bytes.Clone(entry.Data),
	})
	c.undo = append(c.undo, func() { c.logs = c.logs[:size] })
}

func (c *Context) GetLogs() []vela.Log {
	return slices.Clone(c.logs)
}

// GetBlockHash returns the registered hash of the given block or the zero
// hash if none was registered.
func (c *Context) GetBlockHash(number int64) vela.Hash {
	return c.blockHashes[number]
}

// EndTransaction removes self-destructed and empty touched accounts, makes
// the current state the original state of the next transaction, and drops
// the logs and the journal.
func (c *Context) EndTransaction() {
	if len(c.checkpoints) != 0 {
		panic(fmt.Sprintf("transaction ended with %d open checkpoints", len(c.checkpoints)))
	}
	for addr := range c.destructed {
		delete(c.current, addr)
	}
	for addr, account := range c.current {
		maps.DeleteFunc(account.Storage, func(_ vela.Key, value vela.Word) bool {
			return value == vela.Word{}
		})
		if account.IsEmpty() && len(account.Storage) == 0 {
			delete(c.current, addr)
		}
	}
	log.Trace("Transaction state finalized",
		"accounts", len(c.current), "destructed", len(c.destructed), "logs", len(c.logs))

	c.original = c.current.Clone()
	c.logs = nil
	c.undo = nil
	clear(c.destructed)
}

func (c *Context) update(addr vela.Address, change func(*Account)) {
	original, found := c.current[addr]
	modified := original
	change(&modified)
	c.current[addr] = modified
	c.undo = append(c.undo, func() {
		if found {
			c.current[addr] = original
		} else {
			delete(c.current, addr)
		}
	})
}
