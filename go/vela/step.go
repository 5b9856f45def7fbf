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

import (
	"github.com/Fantom-foundation/Vela/go/vela/vm"
	"github.com/holiman/uint256"
)

// Step is the state of a call frame right before an instruction is executed.
// The stack is a copy owned by the receiver, ordered from bottom to top.
type Step struct {
	Pc         uint64
	Op         vm.OpCode
	Gas        Gas
	Stack      []uint256.Int
	MemorySize uint64
	Depth      int
	Address    Address
}

// OpName returns the mnemonic of the executed instruction.
func (s Step) OpName() string {
	return s.Op.String()
}
