package template

import (
	"io"
)

// TemplateRenderer renders a named template, or inline template content when
// name carries template tags. Output goes to the returned string and to every
// writer in out. GlobalContext merges values every render sees.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
