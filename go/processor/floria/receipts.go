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
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
)

// toGethLogs converts logs into their go-ethereum representation.
func toGethLogs(logs []vela.Log) []*types.Log {
	res := make([]*types.Log, 0, len(logs))
	for _, entry := range logs {
		topics := make([]common.Hash, len(entry.Topics))
		for i, topic := range entry.Topics {
			topics[i] = common.Hash(topic)
		}
		res = append(res, &types.Log{
			Address: common.Address(entry.Address),
			Topics:  topics,
			Data:    entry.Data,
		})
	}
	return res
}

// logsBloom computes the 2048-bit bloom filter over the addresses and topics
// of the given logs.
func logsBloom(logs []vela.Log) vela.Bloom {
	receipt := &types.Receipt{Logs: toGethLogs(logs)}
	return vela.Bloom(types.CreateBloom(types.Receipts{receipt}))
}

// mergeBlooms returns the union of the given bloom filters.
func mergeBlooms(blooms ...vela.Bloom) vela.Bloom {
	var res vela.Bloom
	for _, bloom := range blooms {
		for i := range res {
			res[i] |= bloom[i]
		}
	}
	return res
}

// receiptsRoot computes the root of the receipts trie of a block using the
// consensus encoding of legacy receipts.
func receiptsRoot(receipts []vela.Receipt) vela.Hash {
	list := make(types.Receipts, 0, len(receipts))
	for _, receipt := range receipts {
		status := types.ReceiptStatusFailed
		if receipt.Success {
			status = types.ReceiptStatusSuccessful
		}
		list = append(list, &types.Receipt{
			Type:              types.LegacyTxType,
			Status:            status,
			CumulativeGasUsed: uint64(receipt.CumulativeGasUsed),
			Bloom:             types.Bloom(receipt.Bloom),
			Logs:              toGethLogs(receipt.Logs),
		})
	}
	return vela.Hash(types.DeriveSha(list, trie.NewStackTrie(nil)))
}
