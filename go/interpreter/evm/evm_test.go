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
	"testing"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

func TestEvm_RegisteredConfigurations(t *testing.T) {
	for _, name := range []string{"evm", "evm-logging", "evm-stats", "evm-no-analysis-cache"} {
		t.Run(name, func(t *testing.T) {
			interpreter, err := vela.NewInterpreter(name)
			if err != nil {
				t.Fatalf("failed to create interpreter: %v", err)
			}
			if _, ok := interpreter.(*evm); !ok {
				t.Errorf("unexpected interpreter type %T", interpreter)
			}
		})
	}
}

func TestEvm_FactoryRejectsUnknownConfigurations(t *testing.T) {
	if _, err := vela.NewInterpreter("evm", "not a config"); err == nil {
		t.Errorf("expected an error for an unsupported configuration")
	}
}

func TestEvm_FactoryAcceptsExplicitConfig(t *testing.T) {
	interpreter, err := vela.NewInterpreter("evm", Config{AnalysisCacheSize: -1})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	if interpreter.(*evm).analyzer.cache != nil {
		t.Errorf("analysis cache should be disabled")
	}
}

func TestEvm_DefaultCacheSizeIsUsed(t *testing.T) {
	e, err := NewInterpreter(Config{})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	if e.config.AnalysisCacheSize != defaultAnalysisCacheSize {
		t.Errorf("unexpected cache size %d", e.config.AnalysisCacheSize)
	}
}

func TestEvm_RunExecutesCode(t *testing.T) {
	e, err := NewInterpreter(Config{})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	hash := Keccak256(nil)
	code := vela.Code{
		byte(vm.PUSH1), 7, byte(vm.PUSH1), 0, byte(vm.MSTORE8),
		byte(vm.PUSH1), 1, byte(vm.PUSH1), 0, byte(vm.RETURN),
	}
	for i := 0; i < 2; i++ {
		result, err := e.Run(vela.Parameters{Code: code, CodeHash: &hash, Gas: 100})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Success || len(result.Output) != 1 || result.Output[0] != 7 {
			t.Errorf("unexpected result: %+v", result)
		}
	}
}

func TestEvm_ProfileOperationsIgnoreNonStatisticRunners(t *testing.T) {
	e, err := NewInterpreter(Config{})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	e.DumpProfile()
	e.ResetProfile()
}
