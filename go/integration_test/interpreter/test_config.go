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
	"strings"

	_ "github.com/Fantom-foundation/Vela/go/interpreter/evm"
	"github.com/Fantom-foundation/Vela/go/vela"
	"golang.org/x/exp/maps"
)

// getAllInterpreterVariantsForTests returns all registered interpreter variants
// that should be covered in integration tests.
func getAllInterpreterVariantsForTests() []string {
	res := slices.DeleteFunc(
		maps.Keys(vela.GetAllRegisteredInterpreters()),
		func(s string) bool { return strings.Contains(s, "logging") },
	)
	slices.Sort(res)
	return res
}
