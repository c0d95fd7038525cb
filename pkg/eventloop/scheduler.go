package eventloop

import (
	"context"
	"time"
)

// Timer is a cancellable handle returned by Scheduler.AfterFunc.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from running. Stop must be called from the scheduler context.
	Stop() bool
}

// Scheduler runs callbacks serially on a single event-handling context.
type Scheduler interface {
	// AfterFunc runs fn on the scheduler context once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// Post enqueues fn to run on the scheduler context. It is safe to call
	// from any goroutine.
	Post(fn func())
}

// Executor is a Scheduler that callers outside the context can block on.
type Executor interface {
	Scheduler
	// Do runs fn on the scheduler context and waits for it to finish.
	Do(ctx context.Context, fn func()) error
}

var (
	_ Executor = (*Loop)(nil)
	_ Executor = (*Manual)(nil)
)
