// Package render defines how a submitted form's results page is turned into
// bytes and keeps the set of available renderers.
package render

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/results"
)

// Renderer converts a results page into a byte representation (HTML, text,
// JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page results.Page) ([]byte, error)
}
