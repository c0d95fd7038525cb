// Package typing tracks, per field, whether the user is still editing. Each
// field owns an independent trailing-edge debounce timer: every edit cancels
// and restarts it, and only a quiet period of the configured window settles
// the field and triggers its error recomputation.
package typing

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-formflow/pkg/eventloop"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultWindow is the quiet period after which a field settles.
const DefaultWindow = 500 * time.Millisecond

// SettleFunc is invoked on the scheduler context with the field that settled.
type SettleFunc func(field model.FieldName)

// Option configures a Tracker.
type Option func(*Tracker)

// WithWindow overrides the debounce window. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.window = d
		}
	}
}

// WithLogger attaches a logger for settle events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logging.OrDiscard(logger)
	}
}

// Tracker must only be used from its scheduler's context.
type Tracker struct {
	sched    eventloop.Scheduler
	window   time.Duration
	onSettle SettleFunc
	logger   *slog.Logger

	timers map[model.FieldName]eventloop.Timer
	typing map[model.FieldName]bool
	closed bool
}

// NewTracker returns a tracker firing onSettle through sched.
func NewTracker(sched eventloop.Scheduler, onSettle SettleFunc, options ...Option) *Tracker {
	t := &Tracker{
		sched:    sched,
		window:   DefaultWindow,
		onSettle: onSettle,
		logger:   logging.Discard(),
		timers:   make(map[model.FieldName]eventloop.Timer),
		typing:   make(map[model.FieldName]bool),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Window reports the configured debounce window.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// MarkStartTyping flags field as actively edited.
func (t *Tracker) MarkStartTyping(field model.FieldName) {
	if t.closed {
		return
	}
	t.typing[field] = true
}

// OnEdit restarts field's debounce timer, cancelling any pending one.
func (t *Tracker) OnEdit(field model.FieldName) {
	if t.closed {
		return
	}
	t.stopTimer(field)

	var timer eventloop.Timer
	timer = t.sched.AfterFunc(t.window, func() {
		// A newer timer replaced this one; only the latest may settle.
		if t.closed || t.timers[field] != timer {
			return
		}
		delete(t.timers, field)
		t.typing[field] = false
		t.logger.Debug("field settled", slog.String("field", string(field)))
		if t.onSettle != nil {
			t.onSettle(field)
		}
	})
	t.timers[field] = timer
}

// IsTyping reports whether field is inside its debounce window.
func (t *Tracker) IsTyping(field model.FieldName) bool {
	return t.typing[field]
}

// Pending reports whether field has an armed timer.
func (t *Tracker) Pending(field model.FieldName) bool {
	_, ok := t.timers[field]
	return ok
}

// SettleNow cancels field's timer and clears its typing flag without running
// the settle callback. It reports whether the field was typing.
func (t *Tracker) SettleNow(field model.FieldName) bool {
	t.stopTimer(field)
	was := t.typing[field]
	t.typing[field] = false
	return was
}

// Reset cancels every timer and clears all typing flags.
func (t *Tracker) Reset() {
	for field := range t.timers {
		t.stopTimer(field)
	}
	t.typing = make(map[model.FieldName]bool)
}

// Close resets the tracker and turns later calls into no-ops.
func (t *Tracker) Close() {
	t.Reset()
	t.closed = true
}

func (t *Tracker) stopTimer(field model.FieldName) {
	if timer, ok := t.timers[field]; ok {
		timer.Stop()
		delete(t.timers, field)
	}
}
