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

import "fmt"

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package vela

// WorldState is the narrow view on account and storage state the execution
// engine operates on. All mutations performed while running blocks,
// transactions, or calls funnel through this interface.
type WorldState interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word) StorageStatus

	// SelfDestruct destroys addr and transfers its balance to beneficiary.
	// If beneficiary does not exist, the balance is transferred anyway.
	// Returns true if it is the first time destroying this addr in the ongoing
	// transaction, false otherwise.
	SelfDestruct(addr Address, beneficiary Address) bool
}

// TransactionContext extends the WorldState by the transaction scoped
// facilities needed by the engine: checkpoints, logs, and block hashes.
type TransactionContext interface {
	WorldState

	// CreateSnapshot opens a checkpoint. Checkpoints nest and must be closed
	// in LIFO order by either CommitSnapshot or RestoreSnapshot.
	CreateSnapshot() Snapshot
	// CommitSnapshot keeps all changes since the given checkpoint. Changes
	// may still be undone by restoring an enclosing checkpoint.
	CommitSnapshot(Snapshot)
	// RestoreSnapshot discards all changes since the given checkpoint.
	RestoreSnapshot(Snapshot)

	EmitLog(Log)
	// GetLogs returns the logs emitted since the start of the current
	// transaction.
	GetLogs() []Log

	GetBlockHash(number int64) Hash
}

// TransactionFinalizer is an optional extension of a TransactionContext.
// If implemented, EndTransaction is called once the effects of a transaction
// are complete. Implementations reset their per-transaction bookkeeping,
// like the logs, the original values of storage slots, and the set of
// self-destructed accounts.
type TransactionFinalizer interface {
	EndTransaction()
}

// Snapshot is a token identifying a checkpoint of a TransactionContext.
type Snapshot int

type Address [20]byte

type Key [32]byte

type Word [32]byte

type Value [32]byte

type Hash [32]byte

type Code []byte

type Data []byte

type Gas int64

// Log is a log entry emitted by a LOG instruction.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

// StorageStatus classifies a storage update by its original, current, and
// new value. It is the basis for SSTORE gas and refund computation.
type StorageStatus int

const (
	// The comment indicates the storage values for the corresponding
	// configuration. X, Y, Z are non-zero numbers, distinct from each other,
	// while 0 is zero.
	//
	// <original> -> <current> -> <new>
	StorageAssigned         StorageStatus = iota
	StorageAdded                          // 0 -> 0 -> Z
	StorageDeleted                        // X -> X -> 0
	StorageModified                       // X -> X -> Z
	StorageDeletedAdded                   // X -> 0 -> Z
	StorageModifiedDeleted                // X -> Y -> 0
	StorageDeletedRestored                // X -> 0 -> X
	StorageAddedDeleted                   // 0 -> Y -> 0
	StorageModifiedRestored               // X -> Y -> X
)

func (s StorageStatus) String() string {
	switch s {
	case StorageAssigned:
		return "StorageAssigned"
	case StorageAdded:
		return "StorageAdded"
	case StorageAddedDeleted:
		return "StorageAddedDeleted"
	case StorageDeletedRestored:
		return "StorageDeletedRestored"
	case StorageDeletedAdded:
		return "StorageDeletedAdded"
	case StorageDeleted:
		return "StorageDeleted"
	case StorageModified:
		return "StorageModified"
	case StorageModifiedDeleted:
		return "StorageModifiedDeleted"
	case StorageModifiedRestored:
		return "StorageModifiedRestored"
	}
	return fmt.Sprintf("StorageStatus(%d)", s)
}

// GetStorageStatus derives the status of a storage update.
func GetStorageStatus(original, current, new Word) StorageStatus {
	var zero = Word{}

	if current == new {
		return StorageAssigned
	}

	// 0 -> 0 -> Z
	if original == zero && current == zero && new != zero {
		return StorageAdded
	}

	// X -> X -> 0
	if original != zero && current == original && new == zero {
		return StorageDeleted
	}

	// X -> X -> Z
	if original != zero && current == original && new != zero && new != original {
		return StorageModified
	}

	// X -> 0 -> Z
	if original != zero && current == zero && new != original && new != zero {
		return StorageDeletedAdded
	}

	// X -> Y -> 0
	if original != zero && current != original && current != zero && new == zero {
		return StorageModifiedDeleted
	}

	// X -> 0 -> X
	if original != zero && current == zero && new == original {
		return StorageDeletedRestored
	}

	// 0 -> Y -> 0
	if original == zero && current != zero && new == zero {
		return StorageAddedDeleted
	}

	// X -> Y -> X
	if original != zero && current != original && current != zero && new == original {
		return StorageModifiedRestored
	}

	return StorageAssigned
}
