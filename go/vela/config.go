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

import "github.com/ethereum/go-ethereum/params"

// ProtocolParameters are the protocol-version dependent knobs of the engine.
// Historical hard forks changed these values, so they are configuration
// rather than constants.
type ProtocolParameters struct {
	TxGas                 Gas // base cost of a call transaction
	TxGasContractCreation Gas // base cost of a creation transaction
	TxDataZeroGas         Gas // per zero byte of transaction input
	TxDataNonZeroGas      Gas // per non-zero byte of transaction input

	// RefundQuotient caps the refund of a transaction at gasUsed/RefundQuotient.
	RefundQuotient uint64
	// CallStipend is granted to value transferring calls on top of the
	// forwarded gas.
	CallStipend Gas

	MaxCallDepth int
	MaxCodeSize  int
	// MaxInitCodeSize limits the input of creations. Values <= 0 disable
	// the limit, which is the case for the Istanbul rules.
	MaxInitCodeSize int
	CreateDataGas   Gas // per byte of deployed code

	// BlockReward is credited to the coinbase after all transactions of a
	// block have been executed.
	BlockReward Value

	// RequireSignature rejects transactions without a signature.
	RequireSignature bool
}

// DefaultProtocolParameters returns the Istanbul-era parameter set.
func DefaultProtocolParameters() ProtocolParameters {
	return ProtocolParameters{
		TxGas:                 Gas(params.TxGas),
		TxGasContractCreation: Gas(params.TxGasContractCreation),
		TxDataZeroGas:         Gas(params.TxDataZeroGas),
		TxDataNonZeroGas:      Gas(params.TxDataNonZeroGasEIP2028),
		RefundQuotient:        params.RefundQuotient,
		CallStipend:           Gas(params.CallStipend),
		MaxCallDepth:          int(params.CallCreateDepth),
		MaxCodeSize:           params.MaxCodeSize,
		CreateDataGas:         Gas(params.CreateDataGas),
		RequireSignature:      true,
	}
}
