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
	"strings"
	"sync"

	"github.com/holiman/uint256"
)

// maxStackSize is the number of words a frame's operand stack can hold.
const maxStackSize = 1024

// stack is the operand stack of a single call frame. Its capacity is fixed
// so that pushes never reallocate while a contract runs.
//
// None of the operations check bounds. The interpreter verifies the stack
// requirements of every instruction before executing it (see
// checkStackLimits), so the helpers below may assume enough elements, or
// enough free slots, are present.
//
// A stack occupies 32 KiB. Frames obtain their stack through newStack and
// hand it back through returnStack to recycle that memory across nested
// calls and runs. A stack must not be shared between goroutines; the pool
// functions themselves are safe for concurrent use.
type stack struct {
	data         [maxStackSize]uint256.Int
	stackPointer int
}

// push places a copy of d on top of the stack.
func (s *stack) push(d *uint256.Int) {
	s.data[s.stackPointer] = *d
	s.stackPointer++
}

// pushUndefined grows the stack by one slot and returns a pointer to it.
// The slot keeps whatever value it held before, so instructions writing
// their result in place must overwrite it completely.
func (s *stack) pushUndefined() *uint256.Int {
	s.stackPointer++
	return &s.data[s.stackPointer-1]
}

// pop removes the top element and returns a pointer to its slot. The value
// behind the pointer is overwritten by the next push.
func (s *stack) pop() *uint256.Int {
	s.stackPointer--
	return &s.data[s.stackPointer]
}

// peek returns a pointer to the top element. Modifying the value through
// the pointer updates the stack in place.
func (s *stack) peek() *uint256.Int {
	return &s.data[s.len()-1]
}

// peekN returns a pointer to the element n positions below the top, where
// peekN(0) is the top itself.
func (s *stack) peekN(n int) *uint256.Int {
	return &s.data[s.len()-n-1]
}

// len returns the number of elements currently on the stack.
func (s *stack) len() int {
	return s.stackPointer
}

// swap exchanges the top element with the one n positions below it. SWAPk
// corresponds to swap(k).
func (s *stack) swap(n int) {
	s.data[s.len()-n-1], s.data[s.len()-1] = s.data[s.len()-1], s.data[s.len()-n-1]
}

// dup pushes a copy of the element n positions below the top. DUPk
// corresponds to dup(k-1).
func (s *stack) dup(n int) {
	s.data[s.stackPointer] = s.data[s.stackPointer-n-1]
	s.stackPointer++
}

// snapshot returns a copy of the stack content, bottom element first. It is
// handed to step observers, which may retain it.
func (s *stack) snapshot() []uint256.Int {
	res := make([]uint256.Int, s.stackPointer)
	copy(res, s.data[:s.stackPointer])
	return res
}

// String lists the elements top first, each prefixed by its position
// counted from the bottom.
func (s *stack) String() string {
	b := strings.Builder{}
	for i := 0; i < s.len(); i++ {
		b.WriteString(fmt.Sprintf("    [%4d] %#x\n", s.len()-i-1, s.peekN(i).Bytes32()))
	}
	return b.String()
}

// ------------------ Stack Pool ------------------

var stackPool = sync.Pool{
	New: func() interface{} {
		return &stack{}
	},
}

// newStack fetches an empty stack from the pool or allocates a new one.
func newStack() *stack {
	return stackPool.Get().(*stack)
}

// returnStack empties s and puts it back into the pool. A stack must be
// returned at most once, and not be used afterwards.
func returnStack(s *stack) {
	s.stackPointer = 0
	stackPool.Put(s)
}
