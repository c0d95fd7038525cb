package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formflow/pkg/logging"
)

// Route names a screen.
type Route string

const (
	RouteForm    Route = "/"
	RouteResults Route = "/results"
)

// ErrUnknownRoute reports a navigation to a route with no handler and no
// fallback.
var ErrUnknownRoute = errors.New("navigation: unknown route")

// Navigator requests a route change. ok is false when the current page
// refused to deactivate.
type Navigator interface {
	Navigate(ctx context.Context, route Route) (ok bool, err error)
}

// Page is an active screen.
type Page interface {
	// CanDeactivate is consulted before the router leaves the page.
	CanDeactivate(ctx context.Context) (bool, error)
	// Close releases the page's timers, listeners and in-flight work.
	Close()
}

// Activator builds the page for a route. Returning a *RedirectError sends the
// router to another route instead.
type Activator func(ctx context.Context) (Page, error)

// RedirectError asks the router to activate To instead.
type RedirectError struct {
	To Route
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("navigation: redirect to %s", e.To)
}

// Redirect returns an error that makes the router move to route.
func Redirect(route Route) error {
	return &RedirectError{To: route}
}

const maxRedirects = 8

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger attaches a logger.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logging.OrDiscard(logger)
	}
}

// WithFallback sets the route used for unknown destinations. Defaults to
// RouteForm.
func WithFallback(route Route) RouterOption {
	return func(r *Router) {
		r.fallback = route
	}
}

// WithListener registers fn to observe every completed route change.
func WithListener(fn func(Route)) RouterOption {
	return func(r *Router) {
		if fn != nil {
			r.listeners = append(r.listeners, fn)
		}
	}
}

// Router holds the route table and the active page.
type Router struct {
	mu        sync.Mutex
	routes    map[Route]Activator
	fallback  Route
	current   Route
	page      Page
	logger    *slog.Logger
	listeners []func(Route)
}

var _ Navigator = (*Router)(nil)

// NewRouter constructs an empty router.
func NewRouter(options ...RouterOption) *Router {
	r := &Router{
		routes:   make(map[Route]Activator),
		fallback: RouteForm,
		logger:   logging.Discard(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Handle registers the activator for route, replacing any previous one.
func (r *Router) Handle(route Route, activate Activator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route] = activate
}

// Current reports the active route and page.
func (r *Router) Current() (Route, Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.page
}

// Navigate leaves the current page, if it agrees, and activates route.
// Navigating to the active route is a no-op.
func (r *Router) Navigate(ctx context.Context, route Route) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route = r.resolve(route)
	if _, ok := r.routes[route]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownRoute, route)
	}
	if r.page != nil && route == r.current {
		return true, nil
	}

	if r.page != nil {
		ok, err := r.page.CanDeactivate(ctx)
		if err != nil {
			return false, fmt.Errorf("navigation: leave %s: %w", r.current, err)
		}
		if !ok {
			r.logger.Debug("navigation refused", slog.String("from", string(r.current)), slog.String("to", string(route)))
			return false, nil
		}
		r.page.Close()
		r.page = nil
	}

	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return false, fmt.Errorf("navigation: too many redirects ending at %s", route)
		}
		page, err := r.routes[route](ctx)
		var redirect *RedirectError
		if errors.As(err, &redirect) {
			r.logger.Debug("navigation redirected", slog.String("from", string(route)), slog.String("to", string(redirect.To)))
			route = r.resolve(redirect.To)
			if _, ok := r.routes[route]; !ok {
				return false, fmt.Errorf("%w: %s", ErrUnknownRoute, route)
			}
			continue
		}
		if err != nil {
			r.current = ""
			return false, fmt.Errorf("navigation: activate %s: %w", route, err)
		}
		r.current = route
		r.page = page
		break
	}

	r.logger.Debug("navigated", slog.String("route", string(r.current)))
	for _, fn := range r.listeners {
		fn(r.current)
	}
	return true, nil
}

// Close closes the active page.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.page != nil {
		r.page.Close()
		r.page = nil
	}
	r.current = ""
}

func (r *Router) resolve(route Route) Route {
	if _, ok := r.routes[route]; ok {
		return route
	}
	return r.fallback
}
