// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
	"github.com/holiman/uint256"
)

func TestEmptyCodeShouldBeIgnored(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		evm := newTestEVM(variant, nil)
		t.Run(variant, func(t *testing.T) {
			result, err := evm.Run([]byte{}, []byte{})
			if err != nil {
				t.Fatalf("failed to accept empty code, got %v", err)
			}
			if !result.Success || result.GasUsed != 0 {
				t.Errorf("empty code should succeed without consuming gas, got %v", result)
			}
		})
	}
}

func TestPushWithMissingDataIsIgnored(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		evm := newTestEVM(variant, nil)
		for i := 1; i <= 32; i++ {
			op := vm.OpCode(int(vm.PUSH1) - 1 + i)
			t.Run(fmt.Sprintf("%s-%s", variant, op), func(t *testing.T) {
				for j := 0; j < i; j++ {
					code := make([]byte, 1+j)
					code[0] = byte(op)
					result, err := evm.Run(code, []byte{})
					if err != nil {
						t.Fatalf("failed to accept missing data, got %v", err)
					}
					if !result.Success {
						t.Errorf("truncated push should succeed, got %v", result)
					}
				}
			})
		}
	}
}

func TestCanProcessPcBiggerThanCodeLength(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		t.Run(variant, func(t *testing.T) {
			evm := newTestEVM(variant, nil)
			result, err := evm.Run([]byte{byte(vm.PUSH1), byte(32)}, []byte{})
			if err != nil || !result.Success {
				t.Errorf("execution should not fail, error is: %v, success %v", err, result.Success)
			}
		})
	}
}

func TestDetectsInvalidJumps(t *testing.T) {
	tests := map[string][]byte{
		"out of code": {
			byte(vm.PUSH1), 200,
			byte(vm.JUMP),
		},
		"not a jump destination": {
			byte(vm.PUSH1), 3,
			byte(vm.JUMP),
			byte(vm.STOP),
		},
		"into push data": {
			byte(vm.PUSH1), 4,
			byte(vm.JUMP),
			byte(vm.PUSH1), byte(vm.JUMPDEST),
		},
		"beyond 64 bit": append(
			pushValues(uint256.MustFromHex("0x1000000000000000d")),
			byte(vm.JUMP),
			byte(vm.JUMPDEST),
		),
		"conditional beyond 64 bit": append(
			pushValues(uint256.MustFromHex("0x1"), uint256.MustFromHex("0x1000000000000000d")),
			byte(vm.JUMPI),
			byte(vm.JUMPDEST),
		),
	}

	for _, variant := range getAllInterpreterVariantsForTests() {
		for name, code := range tests {
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				evm := newTestEVM(variant, nil)
				result, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected failure in VM execution: %v", err)
				}
				if result.Success || !errors.Is(result.Err, vela.ErrInvalidJump) {
					t.Errorf("expected VM to fail, got %v", result)
				}
			})
		}
	}
}
