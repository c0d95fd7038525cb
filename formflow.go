// Package formflow wires the registration form engine into a two-route app:
// the form at "/" and the results view at "/results", joined by a single
// session-scoped state channel.
//
// Every App method hops onto the executor, so an App may be driven from any
// goroutine while form state stays confined to the event context.
package formflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/csvingest"
	"github.com/goliatone/go-formflow/pkg/eventloop"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/html"
	"github.com/goliatone/go-formflow/pkg/renderers/jsonout"
	"github.com/goliatone/go-formflow/pkg/renderers/msgpackout"
	"github.com/goliatone/go-formflow/pkg/renderers/text"
	"github.com/goliatone/go-formflow/pkg/results"
	"github.com/goliatone/go-formflow/pkg/statechannel"
)

var (
	// ErrNotOnForm is returned by form operations while another route is
	// active.
	ErrNotOnForm = errors.New("formflow: form is not active")
	// ErrNotOnResults is returned by results operations while another route
	// is active.
	ErrNotOnResults = errors.New("formflow: results are not active")
)

// Option configures an App.
type Option func(*App)

// WithConfig replaces config.Default().
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithConfirmer sets the blocking yes/no primitive.
func WithConfirmer(confirmer navigation.Confirmer) Option {
	return func(a *App) {
		a.confirmer = confirmer
	}
}

// WithLogger attaches a logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logging.OrDiscard(logger)
	}
}

// WithRenderer registers an extra results renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(a *App) {
		if renderer != nil {
			a.extraRenderers = append(a.extraRenderers, renderer)
		}
	}
}

// WithTextOptions configures the built-in text renderer.
func WithTextOptions(options ...text.Option) Option {
	return func(a *App) {
		a.textOptions = append(a.textOptions, options...)
	}
}

// App owns one user session.
type App struct {
	cfg            config.Config
	exec           eventloop.Executor
	confirmer      navigation.Confirmer
	logger         *slog.Logger
	extraRenderers []render.Renderer
	textOptions    []text.Option

	channel   *statechannel.Channel
	router    *navigation.Router
	pipeline  *csvingest.Pipeline
	renderers *render.Registry

	form    *form.Orchestrator
	results *results.View
}

// New builds an App on exec. Call Start to open the form.
func New(exec eventloop.Executor, options ...Option) (*App, error) {
	if exec == nil {
		return nil, errors.New("formflow: executor is required")
	}
	a := &App{
		cfg:    config.Default(),
		exec:   exec,
		logger: logging.Discard(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	a.channel = statechannel.New()
	a.pipeline = csvingest.New(
		csvingest.WithLogger(a.logger),
		csvingest.WithMaxBytes(a.cfg.MaxFileBytes),
	)
	a.router = navigation.NewRouter(
		navigation.WithRouterLogger(a.logger),
		navigation.WithFallback(navigation.RouteForm),
	)
	a.router.Handle(navigation.RouteForm, a.activateForm)
	a.router.Handle(navigation.RouteResults, a.activateResults)

	htmlRenderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("formflow: %w", err)
	}
	builtin := []render.Renderer{htmlRenderer, text.New(a.textOptions...), jsonout.New(), msgpackout.New()}
	a.renderers, err = render.NewRegistry(append(builtin, a.extraRenderers...)...)
	if err != nil {
		return nil, fmt.Errorf("formflow: %w", err)
	}
	if a.cfg.Output != "" {
		if err := a.renderers.SetDefault(a.cfg.Output); err != nil {
			return nil, fmt.Errorf("formflow: unknown output %q: %w", a.cfg.Output, err)
		}
	}
	return a, nil
}

// Config returns the effective configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Channel returns the session's hand-off channel.
func (a *App) Channel() *statechannel.Channel {
	return a.channel
}

// Renderers lists the registered renderer names.
func (a *App) Renderers() []string {
	return a.renderers.Names()
}

// Start activates the form route.
func (a *App) Start(ctx context.Context) error {
	_, err := a.Navigate(ctx, navigation.RouteForm)
	return err
}

// Navigate moves to route, subject to the active page's guard.
func (a *App) Navigate(ctx context.Context, route navigation.Route) (bool, error) {
	var ok bool
	err := a.do(ctx, func() (err error) {
		ok, err = a.router.Navigate(ctx, route)
		return err
	})
	return ok, err
}

// Route reports the active route, or "" before Start.
func (a *App) Route(ctx context.Context) (navigation.Route, error) {
	var route navigation.Route
	err := a.do(ctx, func() error {
		route, _ = a.router.Current()
		return nil
	})
	return route, err
}

// Close tears down the active page.
func (a *App) Close(ctx context.Context) error {
	return a.do(ctx, func() error {
		a.router.Close()
		a.form = nil
		a.results = nil
		return nil
	})
}

func (a *App) activateForm(context.Context) (navigation.Page, error) {
	a.results = nil
	a.form = form.New(a.exec,
		form.WithRules(a.cfg.Rules()),
		form.WithCatalog(a.cfg.Catalog()),
		form.WithDebounce(a.cfg.Debounce),
		form.WithIngester(a.pipeline),
		form.WithPublisher(a.channel),
		form.WithNavigator(a.router),
		form.WithConfirmer(a.confirmer),
		form.WithGuard(navigation.Policy{Message: a.cfg.Confirm.Leave}),
		form.WithClearMessage(a.cfg.Confirm.Clear),
		form.WithFileErrorMessage(a.cfg.FileError),
		form.WithLogger(a.logger),
	)
	return a.form, nil
}

func (a *App) activateResults(context.Context) (navigation.Page, error) {
	a.form = nil
	view, err := results.Load(a.channel)
	if errors.Is(err, results.ErrNoData) {
		a.logger.Debug("no results to show")
		return nil, navigation.Redirect(navigation.RouteForm)
	}
	if err != nil {
		return nil, err
	}
	a.results = view
	return view, nil
}

func (a *App) do(ctx context.Context, fn func() error) error {
	var err error
	if doErr := a.exec.Do(ctx, func() { err = fn() }); doErr != nil {
		return doErr
	}
	return err
}

func (a *App) onForm(ctx context.Context, fn func(o *form.Orchestrator) error) error {
	return a.do(ctx, func() error {
		if a.form == nil || a.form.Closed() {
			return ErrNotOnForm
		}
		return fn(a.form)
	})
}

func (a *App) onResults(ctx context.Context, fn func(v *results.View) error) error {
	return a.do(ctx, func() error {
		if a.results == nil || a.results.Closed() {
			return ErrNotOnResults
		}
		return fn(a.results)
	})
}

// SetField forwards an edit to the form.
func (a *App) SetField(ctx context.Context, field model.FieldName, value any) error {
	return a.onForm(ctx, func(o *form.Orchestrator) error {
		return o.OnFieldChange(field, value)
	})
}

// SelectFile forwards a file selection to the form.
func (a *App) SelectFile(ctx context.Context, file model.FileHandle) error {
	return a.onForm(ctx, func(o *form.Orchestrator) error {
		return o.OnFileSelected(file)
	})
}

// WaitIngestion blocks until the form has no CSV read in flight. Closing the
// form or navigating away also ends the wait.
func (a *App) WaitIngestion(ctx context.Context) error {
	settled := make(chan struct{})
	var unsubscribe func()
	err := a.onForm(ctx, func(o *form.Orchestrator) error {
		if !o.IngestionPending() {
			close(settled)
			return nil
		}
		var once bool
		unsubscribe = o.Subscribe(func(v form.View) {
			if !v.IngestionPending && !once {
				once = true
				close(settled)
			}
		})
		return nil
	})
	if err != nil {
		return err
	}
	defer func() {
		if unsubscribe != nil {
			_ = a.do(context.Background(), func() error { unsubscribe(); return nil })
		}
	}()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit submits the form. On success the app moves to the results route.
func (a *App) Submit(ctx context.Context) (form.SubmitResult, error) {
	var result form.SubmitResult
	err := a.onForm(ctx, func(o *form.Orchestrator) (err error) {
		result, err = o.Submit(ctx)
		return err
	})
	return result, err
}

// Clear resets the form after confirmation.
func (a *App) Clear(ctx context.Context) (bool, error) {
	var ok bool
	err := a.onForm(ctx, func(o *form.Orchestrator) (err error) {
		ok, err = o.Clear(ctx)
		return err
	})
	return ok, err
}

// CanLeave consults the active page's guard without navigating.
func (a *App) CanLeave(ctx context.Context) (bool, error) {
	var ok bool
	err := a.do(ctx, func() (err error) {
		_, page := a.router.Current()
		if page == nil {
			ok = true
			return nil
		}
		ok, err = page.CanDeactivate(ctx)
		return err
	})
	return ok, err
}

// FormView returns the form's view model.
func (a *App) FormView(ctx context.Context) (form.View, error) {
	var view form.View
	err := a.onForm(ctx, func(o *form.Orchestrator) error {
		view = o.View()
		return nil
	})
	return view, err
}

// ResultsPage returns the results render model.
func (a *App) ResultsPage(ctx context.Context) (results.Page, error) {
	var page results.Page
	err := a.onResults(ctx, func(v *results.View) error {
		page = v.Page()
		return nil
	})
	return page, err
}

// TogglePassword flips the results password between masked and clear.
func (a *App) TogglePassword(ctx context.Context) (bool, error) {
	var visible bool
	err := a.onResults(ctx, func(v *results.View) error {
		visible = v.TogglePassword()
		return nil
	})
	return visible, err
}

// PasswordVisible reports whether the results password is shown in clear.
func (a *App) PasswordVisible(ctx context.Context) (bool, error) {
	var visible bool
	err := a.onResults(ctx, func(v *results.View) error {
		visible = v.PasswordVisible()
		return nil
	})
	return visible, err
}

// GoBack clears the channel and returns to a fresh form.
func (a *App) GoBack(ctx context.Context) (bool, error) {
	var ok bool
	err := a.onResults(ctx, func(v *results.View) (err error) {
		ok, err = v.GoBack(ctx, a.router)
		return err
	})
	return ok, err
}

// Render renders the results page with the named renderer, or the configured
// output when name is empty.
func (a *App) Render(ctx context.Context, name string) ([]byte, string, error) {
	renderer, err := a.renderers.Resolve(name)
	if err != nil {
		return nil, "", fmt.Errorf("formflow: %w", err)
	}
	page, err := a.ResultsPage(ctx)
	if err != nil {
		return nil, "", err
	}
	out, err := renderer.Render(ctx, page)
	if err != nil {
		return nil, "", err
	}
	return out, renderer.ContentType(), nil
}
