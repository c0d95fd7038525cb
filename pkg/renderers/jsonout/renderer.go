// Package jsonout renders the results page as JSON. Rows keep their CSV
// column order and typed values.
package jsonout

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/results"
)

// Name is the registry key.
const Name = "json"

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints with the given indent. An empty indent produces
// compact output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// New builds a JSON renderer indenting with two spaces.
func New(options ...Option) *Renderer {
	r := &Renderer{indent: "  "}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render's output.
func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render encodes page followed by a newline.
func (r *Renderer) Render(ctx context.Context, page results.Page) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("jsonout: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		out []byte
		err error
	)
	if r.indent == "" {
		out, err = json.Marshal(page)
	} else {
		out, err = json.MarshalIndent(page, "", r.indent)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonout: encode: %w", err)
	}
	return append(out, '\n'), nil
}
