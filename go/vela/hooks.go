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

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Hooks is the event bus of the execution pipeline. It is an explicit handle
// passed down the call chain; there is no global registration. A nil *Hooks
// is valid and emits nothing.
//
// Events are emitted in the following order: BeforeBlock, then for each
// transaction BeforeTx, BeforeMessage for each message in pre-order over the
// call tree interleaved with one Step per executed instruction, AfterMessage
// when a message completes, NewContract on each successful deployment, and
// AfterTx. AfterBlock closes the block.
type Hooks struct {
	BeforeBlock   Hook[Block]
	AfterBlock    Hook[BlockResult]
	BeforeTx      Hook[Transaction]
	AfterTx       Hook[TransactionResult]
	BeforeMessage Hook[Message]
	AfterMessage  Hook[ExecutionResult]
	Step          Hook[Step]
	NewContract   Hook[NewContract]
}

// NewHooks creates an empty hook bus.
func NewHooks() *Hooks {
	return &Hooks{}
}

// Observer is notified about a single event. A non-nil error aborts the run
// that emitted the event.
type Observer[T any] func(T) error

// Hook is an ordered list of observers of one event type. Synchronous
// observers run in registration order on the emitting goroutine.
// Asynchronous observers run concurrently; Emit returns only once all of
// them completed.
type Hook[T any] struct {
	mutex         sync.Mutex
	nextId        int
	subscriptions []subscription[T]
}

type subscription[T any] struct {
	id       int
	observer Observer[T]
	async    bool
}

// Subscription is the handle of a registered observer.
type Subscription struct {
	unsubscribe func()
	once        sync.Once
}

// Unsubscribe removes the observer. Further calls have no effect.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.unsubscribe)
}

// Subscribe registers a synchronous observer.
func (h *Hook[T]) Subscribe(observer Observer[T]) *Subscription {
	return h.add(observer, false)
}

// SubscribeAsync registers an observer running on its own goroutine. The
// payload handed to it must not be modified.
func (h *Hook[T]) SubscribeAsync(observer Observer[T]) *Subscription {
	return h.add(observer, true)
}

func (h *Hook[T]) add(observer Observer[T], async bool) *Subscription {
	if observer == nil {
		panic("nil observer")
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	id := h.nextId
	h.nextId++
	h.subscriptions = append(h.subscriptions, subscription[T]{
		id:       id,
		observer: observer,
		async:    async,
	})
	return &Subscription{unsubscribe: func() { h.remove(id) }}
}

func (h *Hook[T]) remove(id int) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for i, cur := range h.subscriptions {
		if cur.id == id {
			h.subscriptions = append(h.subscriptions[:i:i], h.subscriptions[i+1:]...)
			return
		}
	}
}

// Active reports whether there is at least one observer.
func (h *Hook[T]) Active() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.subscriptions) > 0
}

// Emit notifies all observers registered at the time of the call. The first
// error reported by any observer is returned, wrapped in ErrObserverAborted.
func (h *Hook[T]) Emit(payload T) error {
	h.mutex.Lock()
	subscriptions := h.subscriptions
	h.mutex.Unlock()
	if len(subscriptions) == 0 {
		return nil
	}

	var group *errgroup.Group
	var syncErr error
	for _, cur := range subscriptions {
		if cur.async {
			if group == nil {
				group = &errgroup.Group{}
			}
			observer := cur.observer
			group.Go(func() error { return observer(payload) })
			continue
		}
		if err := cur.observer(payload); err != nil {
			syncErr = err
			break
		}
	}
	if group != nil {
		if err := group.Wait(); err != nil && syncErr == nil {
			syncErr = err
		}
	}
	if syncErr != nil {
		return fmt.Errorf("%w: %w", ErrObserverAborted, syncErr)
	}
	return nil
}

// The following emitters tolerate a nil receiver.

func (h *Hooks) EmitBeforeBlock(block Block) error {
	if h == nil {
		return nil
	}
	return h.BeforeBlock.Emit(block)
}

func (h *Hooks) EmitAfterBlock(result BlockResult) error {
	if h == nil {
		return nil
	}
	return h.AfterBlock.Emit(result)
}

func (h *Hooks) EmitBeforeTx(tx Transaction) error {
	if h == nil {
		return nil
	}
	return h.BeforeTx.Emit(tx)
}

func (h *Hooks) EmitAfterTx(result TransactionResult) error {
	if h == nil {
		return nil
	}
	return h.AfterTx.Emit(result)
}

func (h *Hooks) EmitBeforeMessage(message Message) error {
	if h == nil {
		return nil
	}
	return h.BeforeMessage.Emit(message)
}

func (h *Hooks) EmitAfterMessage(result ExecutionResult) error {
	if h == nil {
		return nil
	}
	return h.AfterMessage.Emit(result)
}

func (h *Hooks) EmitNewContract(contract NewContract) error {
	if h == nil {
		return nil
	}
	return h.NewContract.Emit(contract)
}

func (h *Hooks) EmitStep(step Step) error {
	if h == nil {
		return nil
	}
	return h.Step.Emit(step)
}

// StepsObserved reports whether step events need to be produced at all.
func (h *Hooks) StepsObserved() bool {
	return h != nil && h.Step.Active()
}
