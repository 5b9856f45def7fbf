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
	"slices"
	"testing"
)

func TestCoveredVariants_ContainsMainConfigurations(t *testing.T) {
	all := getAllInterpreterVariantsForTests()
	wanted := []string{
		"evm", "evm-stats", "evm-no-analysis-cache",
	}
	for _, n := range wanted {
		if !slices.Contains(all, n) {
			t.Errorf("Variant %q is not registered, got %v", n, all)
		}
	}
	if slices.Contains(all, "evm-logging") {
		t.Errorf("logging variant should not be covered")
	}
}
