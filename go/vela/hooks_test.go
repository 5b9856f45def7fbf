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
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHooks_NilHooksEmitNothing(t *testing.T) {
	var hooks *Hooks
	if err := hooks.EmitBeforeBlock(Block{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := hooks.EmitStep(Step{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if hooks.StepsObserved() {
		t.Errorf("nil hooks must not observe steps")
	}
}

func TestHooks_ObserversAreCalledInRegistrationOrder(t *testing.T) {
	hooks := NewHooks()
	var seen []int
	for i := 0; i < 5; i++ {
		hooks.BeforeTx.Subscribe(func(Transaction) error {
			seen = append(seen, i)
			return nil
		})
	}
	if err := hooks.EmitBeforeTx(Transaction{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{0, 1, 2, 3, 4}; !slices.Equal(want, seen) {
		t.Errorf("unexpected call order, wanted %v, got %v", want, seen)
	}
}

func TestHooks_PayloadIsForwarded(t *testing.T) {
	hooks := NewHooks()
	want := NewContract{Address: Address{1}, Code: Code{0x41}}
	var got NewContract
	hooks.NewContract.Subscribe(func(c NewContract) error {
		got = c
		return nil
	})
	if err := hooks.EmitNewContract(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Address != want.Address || !slices.Equal(got.Code, want.Code) {
		t.Errorf("unexpected payload, wanted %v, got %v", want, got)
	}
}

func TestHooks_UnsubscribedObserversAreNotCalled(t *testing.T) {
	hooks := NewHooks()
	calls := 0
	subscription := hooks.Step.Subscribe(func(Step) error {
		calls++
		return nil
	})
	if !hooks.StepsObserved() {
		t.Errorf("steps should be observed")
	}
	if err := hooks.EmitStep(Step{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	subscription.Unsubscribe()
	subscription.Unsubscribe()
	if hooks.StepsObserved() {
		t.Errorf("steps should no longer be observed")
	}
	if err := hooks.EmitStep(Step{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("unexpected number of calls, wanted 1, got %d", calls)
	}
}

func TestHooks_ObserverErrorsAbortEmission(t *testing.T) {
	hooks := NewHooks()
	injected := errors.New("injected")
	secondCalled := false
	hooks.AfterTx.Subscribe(func(TransactionResult) error { return injected })
	hooks.AfterTx.Subscribe(func(TransactionResult) error {
		secondCalled = true
		return nil
	})

	err := hooks.EmitAfterTx(TransactionResult{})
	if !errors.Is(err, ErrObserverAborted) {
		t.Errorf("expected observer abort, got %v", err)
	}
	if !errors.Is(err, injected) {
		t.Errorf("expected injected error to be wrapped, got %v", err)
	}
	if secondCalled {
		t.Errorf("observers after a failing one must not be called")
	}
}

func TestHooks_AsyncObserversAreAwaited(t *testing.T) {
	hooks := NewHooks()
	var done atomic.Int32
	for i := 0; i < 3; i++ {
		hooks.BeforeMessage.SubscribeAsync(func(Message) error {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}
	if err := hooks.EmitBeforeMessage(Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := done.Load(); got != 3 {
		t.Errorf("emission returned before all observers completed, %d of 3 done", got)
	}
}

func TestHooks_AsyncObserverErrorsArePropagated(t *testing.T) {
	hooks := NewHooks()
	injected := errors.New("injected")
	hooks.AfterBlock.SubscribeAsync(func(BlockResult) error { return injected })
	if err := hooks.EmitAfterBlock(BlockResult{}); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestHooks_ObserversMayUnsubscribeWhileBeingNotified(t *testing.T) {
	hooks := NewHooks()
	var subscription *Subscription
	calls := 0
	subscription = hooks.BeforeBlock.Subscribe(func(Block) error {
		calls++
		subscription.Unsubscribe()
		return nil
	})
	for i := 0; i < 2; i++ {
		if err := hooks.EmitBeforeBlock(Block{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("unexpected number of calls, wanted 1, got %d", calls)
	}
}

func TestHooks_ConcurrentSubscriptionsAreSafe(t *testing.T) {
	hooks := NewHooks()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := hooks.AfterMessage.Subscribe(func(ExecutionResult) error { return nil })
			_ = hooks.EmitAfterMessage(ExecutionResult{})
			s.Unsubscribe()
		}()
	}
	wg.Wait()
	if hooks.AfterMessage.Active() {
		t.Errorf("all observers should have been removed")
	}
}

func TestHooks_SubscribingNilObserverPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic, got nil")
		}
	}()
	NewHooks().Step.Subscribe(nil)
}
