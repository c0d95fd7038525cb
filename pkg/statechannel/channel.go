// Package statechannel holds the single-slot hand-off between the form and
// the results view.
//
// A Channel is a session-lifetime value created once by the app and passed to
// both views. It is not a queue: Publish overwrites, Read does not consume.
package statechannel

import (
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Listener observes slot changes. ok is false after Clear.
type Listener func(snapshot model.FormSnapshot, ok bool)

// Channel is safe for concurrent use.
type Channel struct {
	mu        sync.Mutex
	snapshot  model.FormSnapshot
	full      bool
	nextID    int
	listeners map[int]Listener
}

// New returns an empty channel.
func New() *Channel {
	return &Channel{listeners: make(map[int]Listener)}
}

// Publish replaces whatever the slot holds.
func (c *Channel) Publish(snapshot model.FormSnapshot) {
	c.mu.Lock()
	c.snapshot = snapshot.Clone()
	c.full = true
	listeners := c.snapshotListeners()
	out := c.snapshot.Clone()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(out.Clone(), true)
	}
}

// Read returns a copy of the held snapshot without consuming it.
func (c *Channel) Read() (model.FormSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.full {
		return model.FormSnapshot{}, false
	}
	return c.snapshot.Clone(), true
}

// Clear empties the slot. Listeners are notified only if it held a snapshot.
func (c *Channel) Clear() {
	c.mu.Lock()
	if !c.full {
		c.mu.Unlock()
		return
	}
	c.snapshot = model.FormSnapshot{}
	c.full = false
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(model.FormSnapshot{}, false)
	}
}

// Subscribe registers fn for future changes. The returned func unregisters
// it and may be called more than once.
func (c *Channel) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Listeners reports how many listeners are registered.
func (c *Channel) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// snapshotListeners copies the listener set in registration order. Callers
// hold c.mu.
func (c *Channel) snapshotListeners() []Listener {
	if len(c.listeners) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
