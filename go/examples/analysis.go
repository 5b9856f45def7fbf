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

// generateAnalysisCode produces a contract of maximum size returning its
// argument. The bulk of the code is the given filler, which is jumped over.
// Such contracts stress the JUMPDEST analysis and its cache.
func generateAnalysisCode(filler []byte) vela.Code {
	maxCodeLength := vela.DefaultProtocolParameters().MaxCodeSize

	header := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		// destination is filled in below
		byte(vm.PUSH2), 0, 0,
		byte(vm.JUMP),
	}
	trailer := []byte{
		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	fillerSize := maxCodeLength - len(header) - len(trailer)
	body := make([]byte, 0, fillerSize)
	for len(body)+len(filler) <= fillerSize {
		body = append(body, filler...)
	}

	target := len(header) + len(body)
	header[7] = byte(target >> 8)
	header[8] = byte(target)

	code := make(vela.Code, 0, maxCodeLength)
	code = append(code, header...)
	code = append(code, body...)
	return append(code, trailer...)
}

// GetJumpdestAnalysisExample provides a contract padded with JUMPDEST
// instructions, the worst case for the size of the analysis result.
func GetJumpdestAnalysisExample() Example {
	return exampleSpec{
		Name:      "jumpdest",
		code:      generateAnalysisCode([]byte{byte(vm.JUMPDEST)}),
		reference: identity,
	}.build()
}

// GetPush32AnalysisExample provides a contract padded with PUSH32
// instructions whose data consists of JUMPDEST bytes, none of them valid
// jump targets.
func GetPush32AnalysisExample() Example {
	filler := []byte{byte(vm.PUSH32)}
	for i := 0; i < 32; i++ {
		filler = append(filler, byte(vm.JUMPDEST))
	}
	return exampleSpec{
		Name:      "push32",
		code:      generateAnalysisCode(filler),
		reference: identity,
	}.build()
}

func identity(x int) int {
	return x
}
