// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package floria

import (
	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
)

// handlePrecompiled runs the precompiled contract at the given address, if
// there is one. The second result is false for regular addresses.
func handlePrecompiled(input vela.Data, address vela.Address, gas vela.Gas) (vela.CallResult, bool) {
	contract, ok := precompiledContract(address)
	if !ok {
		return vela.CallResult{}, false
	}
	gasCost := contract.RequiredGas(input)
	if gasCost > uint64(gas) {
		return failWith(vela.ErrOutOfGas, 0), true
	}
	gas -= vela.Gas(gasCost)
	output, err := contract.Run(input)
	if err != nil {
		// precompiled contracts only return errors on invalid input
		return failWith(vela.ErrPrecompileFailed, 0), true
	}
	return vela.CallResult{
		Success: true,
		Output:  output,
		GasLeft: gas,
	}, true
}

func precompiledContract(address vela.Address) (geth.PrecompiledContract, bool) {
	if !vela.IsPrecompiledContract(address) {
		return nil, false
	}
	contract, ok := geth.PrecompiledContractsIstanbul[common.Address(address)]
	return contract, ok
}
