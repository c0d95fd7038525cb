package eventloop

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by explicit calls. Time only
// moves through Advance and posted tasks only run through RunPending or
// Advance, which makes debounce behaviour reproducible in tests.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
	queue  []func()
	posted chan struct{}
}

// NewManual returns a Manual clock starting at the Unix epoch.
func NewManual() *Manual {
	return &Manual{
		now:    time.Unix(0, 0),
		posted: make(chan struct{}, 1),
	}
}

// Now reports the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers fn to run once the virtual clock passes now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Post queues fn. Safe for concurrent use.
func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.posted <- struct{}{}:
	default:
	}
}

// Do drains the queue and then runs fn on the caller's goroutine, which acts
// as the scheduler context.
func (m *Manual) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.RunPending()
	fn()
	return nil
}

// RunPending runs queued tasks, including tasks they post, until the queue is
// empty. It returns the number of tasks executed.
func (m *Manual) RunPending() int {
	count := 0
	for {
		m.mu.Lock()
		tasks := m.queue
		m.queue = nil
		m.mu.Unlock()
		if len(tasks) == 0 {
			return count
		}
		for _, task := range tasks {
			task()
			count++
		}
	}
}

// WaitPosted blocks until a task is posted from another goroutine or timeout
// elapses. It reports whether a task is queued.
func (m *Manual) WaitPosted(timeout time.Duration) bool {
	if m.Pending() > 0 {
		return true
	}
	select {
	case <-m.posted:
		return true
	case <-time.After(timeout):
		return m.Pending() > 0
	}
}

// Pending reports the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// ActiveTimers reports how many timers are still armed.
func (m *Manual) ActiveTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing due timers in deadline order
// and draining the task queue after each one.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	m.RunPending()
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
		m.RunPending()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	next := m.timers[0]
	if next.due.After(target) {
		return nil
	}
	m.timers = m.timers[1:]
	if next.due.After(m.now) {
		m.now = next.due
	}
	return next
}

func (m *Manual) remove(t *manualTimer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner *Manual
	due   time.Time
	seq   uint64
	fn    func()
}

func (t *manualTimer) Stop() bool {
	return t.owner.remove(t)
}
