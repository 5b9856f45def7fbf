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
)

// GetFibExample provides an iterative computation of the n-th Fibonacci
// number. The result is reported modulo 2^32.
func GetFibExample() Example {
	const (
		loop = 7
		end  = 25
	)
	code := vela.Code{
		// stack: n, a=0, b=1
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 1,

		// while n != 0
		byte(vm.JUMPDEST),
		byte(vm.DUP3),
		byte(vm.ISZERO),
		byte(vm.PUSH1), end,
		byte(vm.JUMPI),

		// a, b = b, a+b
		byte(vm.DUP1),
		byte(vm.SWAP2),
		byte(vm.ADD),

		// n--
		byte(vm.SWAP2),
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.SWAP2),

		byte(vm.PUSH1), loop,
		byte(vm.JUMP),

		// return a
		byte(vm.JUMPDEST),
		byte(vm.POP),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "fib",
		code:      code,
		reference: fib,
	}.build()
}

func fib(n int) int {
	a, b := uint32(0), uint32(1)
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return int(a)
}
