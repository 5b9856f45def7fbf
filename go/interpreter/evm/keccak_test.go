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
	"testing"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/crypto"
	"pgregory.net/rand"
)

func TestKeccak256_MatchesReferenceImplementation(t *testing.T) {
	r := rand.New(0)
	for _, size := range []int{0, 1, 31, 32, 33, 135, 136, 137, 1000} {
		data := make([]byte, size)
		r.Read(data)
		if want, got := vela.Hash(crypto.Keccak256Hash(data)), Keccak256(data); want != got {
			t.Errorf("unexpected hash for %d bytes, wanted %x, got %x", size, want, got)
		}
	}
}

func TestKeccak256_CanBeUsedConcurrently(t *testing.T) {
	want := Keccak256([]byte("vela"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Keccak256([]byte("vela")); got != want {
					t.Errorf("unexpected hash %x", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
