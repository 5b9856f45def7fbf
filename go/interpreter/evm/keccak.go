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
	"sync"

	"github.com/Fantom-foundation/Vela/go/vela"
	"golang.org/x/crypto/sha3"
)

// keccakHasherPool recycles hasher instances, which carry a sizable
// internal state, across SHA3 instructions and code-hash computations.
var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

// keccakHasher is the subset of the sha3 state used here. Read squeezes the
// digest without the allocation Sum would need.
type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// Keccak256 computes the legacy Keccak-256 hash of the given data, as used
// by the SHA3 instruction and for code hashes. It is safe for concurrent use.
func Keccak256(data []byte) vela.Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res vela.Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}
