// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
	"golang.org/x/crypto/sha3"
)

// GetSha3Example provides a loop computing x iterated hashes of a 32 byte
// word, starting from zero. The result is the last byte of the final hash.
func GetSha3Example() Example {
	code := vela.Code{
		// x = calldata[4:36]
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		// while x != 0
		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), 24,
		byte(vm.JUMPI),

		// memory[0:32] = keccak(memory[0:32])
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.SHA3),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		// x--
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),

		byte(vm.PUSH1), 3,
		byte(vm.JUMP),

		byte(vm.JUMPDEST),

		// memory[0:32] = memory[0:32] & 0xFF
		byte(vm.PUSH1), 0,
		byte(vm.MLOAD),
		byte(vm.PUSH1), 255,
		byte(vm.AND),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "sha3",
		code:      code,
		reference: sha3Ref,
	}.build()
}

func sha3Ref(x int) int {
	var hash vela.Hash
	hasher := sha3.NewLegacyKeccak256()
	for i := 0; i < x; i++ {
		hasher.Reset()
		hasher.Write(hash[:])
		hasher.Sum(hash[:0])
	}
	return int(hash[31])
}
