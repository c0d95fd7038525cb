// Package html renders the results page as a standalone HTML document.
//
// Every string that came from the user or the CSV file passes through a
// bluemonday strict policy before it reaches the template, so markup in a
// cell can never become markup in the page.
package html

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/render/template"
	"github.com/goliatone/go-formflow/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formflow/pkg/results"
)

//go:embed templates/*.tpl
var embedded embed.FS

const (
	// Name is the registry key.
	Name            = "html"
	defaultTemplate = "results"
	defaultTitle    = "Registration Results"
)

// Option configures the renderer.
type Option func(*Renderer)

// WithTemplateRenderer swaps the template engine. The engine must provide a
// template named by WithTemplateName.
func WithTemplateRenderer(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithTemplateName selects the template to render. A name holding template
// tags is rendered as inline content.
func WithTemplateName(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.templateName = name
		}
	}
}

// WithTitle sets the page heading. It reaches templates as the "title"
// global.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	engine       template.TemplateRenderer
	policy       *bluemonday.Policy
	templateName string
	title        string
}

var _ render.Renderer = (*Renderer)(nil)

// New builds a renderer over the embedded template.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		policy:       bluemonday.StrictPolicy(),
		templateName: defaultTemplate,
		title:        defaultTitle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.engine == nil {
		templates, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("html: templates: %w", err)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(templates))
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}
		r.engine = engine
	}
	if err := r.engine.GlobalContext(map[string]any{"title": r.title}); err != nil {
		return nil, fmt.Errorf("html: title: %w", err)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render's output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML document for page.
func (r *Renderer) Render(ctx context.Context, page results.Page) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("html: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns := r.sanitizeAll(page.Columns)
	rows := make([][]string, 0, len(page.Cells))
	for _, cells := range page.Cells {
		rows = append(rows, r.sanitizeAll(cells))
	}

	data := map[string]any{
		"first_name":   r.policy.Sanitize(page.FirstName),
		"last_name":    r.policy.Sanitize(page.LastName),
		"email":        r.policy.Sanitize(page.Email),
		"subscription": r.policy.Sanitize(page.Subscription),
		"password":     r.policy.Sanitize(page.Password),
		"file_name":    r.policy.Sanitize(page.FileName),
		"columns":      columns,
		"rows":         rows,
	}
	out, err := r.engine.Render(r.templateName, data)
	if err != nil {
		return nil, fmt.Errorf("html: render: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) sanitizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, r.policy.Sanitize(value))
	}
	return out
}
