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
	"fmt"
	"math"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/holiman/uint256"
)

// Memory is the byte addressable scratch space of a call frame. It grows
// in multiples of 32 bytes and is never shrunk.
type Memory struct {
	store       []byte
	currentCost vela.Gas
}

func NewMemory() *Memory {
	return &Memory{}
}

// maxMemoryExpansionSize is the largest size memory can be expanded to
// without the expansion costs overflowing a 64-bit integer.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// expansionCosts returns the gas to be charged for growing the memory to
// the given size. Requests beyond maxMemoryExpansionSize cost MaxInt64.
func (m *Memory) expansionCosts(size uint64) vela.Gas {
	// static assert that the maximum costs fit into int64
	const (
		maxInWords uint64 = (uint64(maxMemoryExpansionSize) + 31) / 32
		_                 = int64(maxInWords*maxInWords/512 + 3*maxInWords)
	)

	if m.len() >= size {
		return 0
	}
	if size > maxMemoryExpansionSize {
		return vela.Gas(math.MaxInt64)
	}
	words := vela.SizeInWords(size)
	return vela.Gas((words*words)/512+3*words) - m.currentCost
}

// expand grows the memory to cover [offset, offset+size) and charges the
// expansion costs to the given context. A size of zero never expands.
func (m *Memory) expand(offset, size uint64, c *context) error {
	if size == 0 {
		return nil
	}
	needed := offset + size
	if needed < offset {
		return errGasUintOverflow
	}
	if m.len() >= needed {
		return nil
	}
	fee := m.expansionCosts(needed)
	if err := c.useGas(fee); err != nil {
		return err
	}
	m.currentCost += fee
	words := vela.SizeInWords(needed)
	m.store = append(m.store, make([]byte, words*32-m.len())...)
	return nil
}

func (m *Memory) len() uint64 {
	return uint64(len(m.store))
}

func (m *Memory) setByte(offset uint64, value byte, c *context) error {
	if err := m.expand(offset, 1, c); err != nil {
		return err
	}
	m.store[offset] = value
	return nil
}

func (m *Memory) setWord(offset uint64, value *uint256.Int, c *context) error {
	if err := m.expand(offset, 32, c); err != nil {
		return err
	}
	value.WriteToSlice(m.store[offset : offset+32])
	return nil
}

// set copies value into the already expanded memory region.
func (m *Memory) set(offset, size uint64, value []byte) error {
	if size == 0 {
		return nil
	}
	if offset+size < offset {
		return errGasUintOverflow
	}
	if offset+size > m.len() {
		return makeInsufficientMemoryError(m.len(), size, offset)
	}
	copy(m.store[offset:offset+size], value)
	return nil
}

func makeInsufficientMemoryError(memSize, size, offset uint64) error {
	return fmt.Errorf("memory too small, size %d, attempted to write %d bytes at %d", memSize, size, offset)
}

// getSlice expands the memory to cover the requested region and returns a
// slice aliasing it. A size of zero yields nil regardless of the offset.
func (m *Memory) getSlice(offset, size uint64, c *context) ([]byte, error) {
	if err := m.expand(offset, size, c); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return m.store[offset : offset+size], nil
}

func (m *Memory) readWord(offset uint64, target *uint256.Int, c *context) error {
	data, err := m.getSlice(offset, 32, c)
	if err != nil {
		return err
	}
	target.SetBytes32(data)
	return nil
}

// copyData fills target with memory content starting at offset, padding
// with zeros beyond the end of the memory.
func (m *Memory) copyData(offset uint64, target []byte) {
	if m.len() < offset {
		clear(target)
		return
	}
	covered := copy(target, m.store[offset:])
	clear(target[covered:])
}
