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
	"errors"

	"github.com/Fantom-foundation/Vela/go/vela"
)

const (
	errGasUintOverflow       = vela.ErrGasUintOverflow
	errInvalidJump           = vela.ErrInvalidJump
	errInvalidOpCode         = vela.ErrInvalidOpCode
	errOutOfGas              = vela.ErrOutOfGas
	errReturnDataOutOfBounds = vela.ErrReturnDataOutOfBounds
	errStackOverflow         = vela.ErrStackOverflow
	errStackUnderflow        = vela.ErrStackUnderflow
	errWriteProtection       = vela.ErrWriteProtection
)

// fatalError marks errors that must abort the entire run instead of failing
// the current frame, e.g. errors raised by hook observers.
type fatalError struct {
	cause error
}

func (e fatalError) Error() string {
	return e.cause.Error()
}

func (e fatalError) Unwrap() error {
	return e.cause
}

func asFatal(err error) (error, bool) {
	var fatal fatalError
	if errors.As(err, &fatal) {
		return fatal.cause, true
	}
	return nil, false
}
