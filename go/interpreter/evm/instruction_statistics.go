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
	"sort"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

// statisticRunner is a runner that collects statistics about the instruction
// sequence of the executed code.
type statisticRunner struct {
	mutex sync.Mutex
	stats *statistics
}

func (s *statisticRunner) run(c *context) (status, error) {
	stats := statsCollector{stats: newStatistics()}
	status := statusRunning
	var err error
	for status == statusRunning {
		if c.pc < len(c.code) {
			stats.nextOp(vm.OpCode(c.code[c.pc]))
		}
		status, err = execute(c, true)
		if err != nil {
			break
		}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	s.stats.insert(stats.stats)
	return status, err
}

// getSummary returns a summary of the collected statistics in a
// human-readable format.
func (s *statisticRunner) getSummary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	return s.stats.print()
}

// reset clears the collected statistics.
func (s *statisticRunner) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats = newStatistics()
}

// statistics counts how often single instructions and sequences of two and
// three instructions got executed.
type statistics struct {
	count       uint64
	singleCount map[uint64]uint64
	pairCount   map[uint64]uint64
	tripleCount map[uint64]uint64
}

func newStatistics() *statistics {
	return &statistics{
		singleCount: map[uint64]uint64{},
		pairCount:   map[uint64]uint64{},
		tripleCount: map[uint64]uint64{},
	}
}

// insert adds the instruction counts of the given statistics to this instance.
func (s *statistics) insert(src *statistics) {
	s.count += src.count
	for k, v := range src.singleCount {
		s.singleCount[k] += v
	}
	for k, v := range src.pairCount {
		s.pairCount[k] += v
	}
	for k, v := range src.tripleCount {
		s.tripleCount[k] += v
	}
}

type statisticsEntry struct {
	value uint64
	count uint64
}

func getTopN(data map[uint64]uint64, n int) []statisticsEntry {
	list := make([]statisticsEntry, 0, len(data))
	for k, c := range data {
		list = append(list, statisticsEntry{k, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count == list[j].count {
			return list[i].value < list[j].value
		}
		return list[i].count > list[j].count
	})
	if len(list) < n {
		return list
	}
	return list[0:n]
}

// print returns a human-readable summary of the collected statistics.
func (s *statistics) print() string {
	builder := strings.Builder{}
	write := func(format string, args ...interface{}) {
		builder.WriteString(fmt.Sprintf(format, args...))
	}
	percent := func(count uint64) float32 {
		return float32(count*100) / float32(s.count)
	}

	write("\n----- Statistics ------\n")
	write("\nSteps: %d\n", s.count)
	write("\nSingles:\n")
	for _, e := range getTopN(s.singleCount, 5) {
		write("\t%-30v: %d (%.2f%%)\n", vm.OpCode(e.value), e.count, percent(e.count))
	}
	write("\nPairs:\n")
	for _, e := range getTopN(s.pairCount, 5) {
		write("\t%-30v%-30v: %d (%.2f%%)\n", vm.OpCode(e.value>>8), vm.OpCode(e.value), e.count, percent(e.count))
	}
	write("\nTriples:\n")
	for _, e := range getTopN(s.tripleCount, 5) {
		write("\t%-30v%-30v%-30v: %d (%.2f%%)\n", vm.OpCode(e.value>>16), vm.OpCode(e.value>>8), vm.OpCode(e.value), e.count, percent(e.count))
	}
	write("\n")

	return builder.String()
}

// statsCollector keeps track of the recent history of executed instructions
// to collect instruction sequence statistics.
type statsCollector struct {
	stats *statistics

	last       uint64
	secondLast uint64
}

func (s *statsCollector) nextOp(op vm.OpCode) {
	cur := uint64(op)
	s.stats.count++
	s.stats.singleCount[cur]++
	if s.stats.count > 1 {
		s.stats.pairCount[s.last<<8|cur]++
	}
	if s.stats.count > 2 {
		s.stats.tripleCount[s.secondLast<<16|s.last<<8|cur]++
	}
	s.last, s.secondLast = cur, s.last
}
