package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrNotFound reports a name no renderer answers to.
	ErrNotFound = errors.New("render: renderer not found")
	// ErrDuplicate reports a second renderer under a taken name.
	ErrDuplicate = errors.New("render: renderer already registered")
)

// Registry maps output names to renderers and remembers which one serves an
// empty name. Names are kept sorted as they are added.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Renderer
	names    []string
	fallback string
}

// NewRegistry returns a registry holding renderers, in order. It fails on the
// first renderer Register rejects.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	if err := r.Register(renderers...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds each renderer under its Name(). Nil renderers, blank names
// and taken names are rejected; renderers before the failing one stay
// registered.
func (r *Registry) Register(renderers ...Renderer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, renderer := range renderers {
		if renderer == nil {
			return errors.New("render: renderer is required")
		}
		name := strings.TrimSpace(renderer.Name())
		if name == "" {
			return errors.New("render: renderer name is required")
		}
		if _, taken := r.byName[name]; taken {
			return fmt.Errorf("%w: %q", ErrDuplicate, name)
		}
		r.byName[name] = renderer
		at, _ := slices.BinarySearch(r.names, name)
		r.names = slices.Insert(r.names, at, name)
	}
	return nil
}

// SetDefault picks the renderer Resolve returns for an empty name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %q (have %s)", ErrNotFound, name, strings.Join(r.names, ", "))
	}
	r.fallback = name
	return nil
}

// Default reports the name SetDefault chose, or "" when none was set.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve returns the renderer for name, or the default one when name is
// empty.
func (r *Registry) Resolve(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.fallback
	}
	if renderer, ok := r.byName[name]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}
