package operation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// SingleOperationManager ensures only 1 operation is happening a time
// An operation can be nested, so if there is already an operation in progress,
// it can have sub-operations without an issue.
//
// Waits are measured on Clock, which defaults to the wall clock when nil.
type SingleOperationManager struct {
	Clock clock.Clock

	mu        sync.Mutex
	currentOp *anOp
}

// NewSingleOperationManager returns a manager whose waits run on clk.
func NewSingleOperationManager(clk clock.Clock) *SingleOperationManager {
	return &SingleOperationManager{Clock: clk}
}

func (sm *SingleOperationManager) clock() clock.Clock {
	if sm.Clock == nil {
		return clock.New()
	}
	return sm.Clock
}

// CancelRunning cancel's a current operation unless it's mine.
func (sm *SingleOperationManager) CancelRunning(ctx context.Context) {
	if ctx.Value(somCtxKeySingleOp) != nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cancelInLock(ctx)
}

// OpRunning returns if there is a current operation.
func (sm *SingleOperationManager) OpRunning() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.currentOp != nil
}

type somCtxKey byte

const somCtxKeySingleOp = somCtxKey(iota)

// New creates a new operation, cancels previous, returns a new context and function to call when done.
func (sm *SingleOperationManager) New(ctx context.Context) (context.Context, func()) {
	// handle nested ops
	if ctx.Value(somCtxKeySingleOp) != nil {
		return ctx, func() {}
	}

	sm.mu.Lock()

	// first cancel any old operation
	sm.cancelInLock(ctx)

	theOp := &anOp{}

	ctx = context.WithValue(ctx, somCtxKeySingleOp, theOp)

	theOp.ctx, theOp.cancelFunc = context.WithCancel(ctx)
	sm.currentOp = theOp
	sm.mu.Unlock()

	return theOp.ctx, func() {
		theOp.cancelFunc()
		sm.mu.Lock()
		if theOp == sm.currentOp {
			sm.currentOp = nil
		}
		sm.mu.Unlock()
	}
}

// NewTimedWaitOp returns true if it finished, false if cancelled.
// If there are other operations pending, this will cancel them.
func (sm *SingleOperationManager) NewTimedWaitOp(ctx context.Context, dur time.Duration) bool {
	ctx, finish := sm.New(ctx)
	defer finish()

	return sm.wait(ctx, dur)
}

// MovingInterface is a utility so can wait on IsMoving easily.
type MovingInterface interface {
	IsMoving(ctx context.Context) (bool, error)
}

// WaitTillStopped waits until IsMoving returns false. If the wait is cancelled by a newer
// operation, or by the caller, stop is called before returning.
func (sm *SingleOperationManager) WaitTillStopped(ctx context.Context, pollTime time.Duration, moving MovingInterface,
	stop func(context.Context) error,
) (err error) {
	// Defers a function that will stop and clean up if the context errors
	defer func(ctx context.Context) {
		var errStop error
		if errors.Is(ctx.Err(), context.Canceled) {
			sm.mu.Lock()
			oldOp := sm.currentOp == ctx.Value(somCtxKeySingleOp)
			noOp := sm.currentOp == nil
			sm.mu.Unlock()

			if oldOp || noOp {
				errStop = stop(context.WithoutCancel(ctx))
			}
		}
		err = multierr.Combine(err, ctx.Err(), errStop)
	}(ctx)
	return sm.WaitForSuccess(
		ctx,
		pollTime,
		func(ctx context.Context) (bool, error) {
			res, err := moving.IsMoving(ctx)
			return !res, err
		},
	)
}

// WaitForSuccess will call testFunc every pollTime until it returns true or an error.
func (sm *SingleOperationManager) WaitForSuccess(
	ctx context.Context,
	pollTime time.Duration,
	testFunc func(ctx context.Context) (bool, error),
) error {
	ctx, finish := sm.New(ctx)
	defer finish()

	for {
		res, err := testFunc(ctx)
		if err != nil {
			return err
		}
		if res {
			return nil
		}

		if !sm.wait(ctx, pollTime) {
			return ctx.Err()
		}
	}
}

// wait blocks for dur on the manager's clock. It returns false if ctx is done first.
func (sm *SingleOperationManager) wait(ctx context.Context, dur time.Duration) bool {
	if dur <= 0 {
		return ctx.Err() == nil
	}
	timer := sm.clock().Timer(dur)
	defer timer.Stop()
	return utils.SelectContextOrWaitChan(ctx, timer.C)
}

func (sm *SingleOperationManager) cancelInLock(ctx context.Context) {
	myOp := ctx.Value(somCtxKeySingleOp)
	op := sm.currentOp

	if op == nil || myOp == op {
		return
	}

	op.cancelFunc()

	sm.currentOp = nil
}

type anOp struct {
	ctx        context.Context
	cancelFunc context.CancelFunc
}
