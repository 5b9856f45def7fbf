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
	"io"

	"github.com/Fantom-foundation/Vela/go/vela/vm"
)

// loggingRunner is a runner that logs the execution of the contract code to
// an io.Writer, one line per instruction.
type loggingRunner struct {
	log io.Writer
}

// newLogger creates a new logging runner that writes to the provided
// io.Writer.
func newLogger(writer io.Writer) loggingRunner {
	return loggingRunner{log: writer}
}

// run executes the code of c until it halts. Each line is written before
// the instruction is executed, so the line of a failing instruction still
// shows up. Write errors abort the run.
func (l loggingRunner) run(c *context) (status, error) {
	status := statusRunning
	var err error
	for status == statusRunning {
		// log format: <op>, <gas>, <top-of-stack>\n
		if c.pc < len(c.code) && l.log != nil {
			top := "-empty-"
			if c.stack.len() > 0 {
				top = c.stack.peek().ToBig().String()
			}
			_, err = fmt.Fprintf(l.log, "%v, %d, %v\n", vm.OpCode(c.code[c.pc]), c.gas, top)
			if err != nil {
				return status, err
			}
		}
		status, err = execute(c, true)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}
