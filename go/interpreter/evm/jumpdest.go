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
	lru "github.com/hashicorp/golang-lru/v2"
)

// jumpDests marks the positions of a code that are valid jump targets. Bytes
// covered by PUSH immediates are never valid targets.
type jumpDests []uint64

func (j jumpDests) isValid(pos uint64) bool {
	if pos/64 >= uint64(len(j)) {
		return false
	}
	return j[pos/64]&(1<<(pos%64)) != 0
}

func (j jumpDests) set(pos int) {
	j[pos/64] |= 1 << (pos % 64)
}

// analyzeJumpDests scans the code for JUMPDEST instructions, skipping the
// data sections of PUSH instructions.
func analyzeJumpDests(code []byte) jumpDests {
	res := make(jumpDests, (len(code)+63)/64)
	for i := 0; i < len(code); {
		op := vm.OpCode(code[i])
		if op == vm.JUMPDEST {
			res.set(i)
		}
		i += op.Width()
	}
	return res
}

// analyzer provides jump destination analyses, caching results of codes
// with a known hash.
type analyzer struct {
	cache *lru.Cache[vela.Hash, jumpDests]
}

// maxCachedCodeLength is the maximum length of codes retained in the cache.
// Longer codes can only be init codes which are rarely re-executed.
const maxCachedCodeLength = 1<<14 + 1<<13 // = 24_576 bytes

// newAnalyzer creates an analyzer retaining up to capacity results. A
// non-positive capacity disables caching.
func newAnalyzer(capacity int) (*analyzer, error) {
	if capacity <= 0 {
		return &analyzer{}, nil
	}
	cache, err := lru.New[vela.Hash, jumpDests](capacity)
	if err != nil {
		return nil, err
	}
	return &analyzer{cache: cache}, nil
}

// analyze returns the jump destinations of the given code. If the code hash
// is not nil, it is assumed to be the hash of the code.
func (a *analyzer) analyze(code vela.Code, codeHash *vela.Hash) jumpDests {
	if a.cache == nil || codeHash == nil {
		return analyzeJumpDests(code)
	}
	if res, found := a.cache.Get(*codeHash); found {
		return res
	}
	res := analyzeJumpDests(code)
	if len(code) <= maxCachedCodeLength {
		a.cache.Add(*codeHash, res)
	}
	return res
}
