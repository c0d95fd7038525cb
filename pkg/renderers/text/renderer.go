// Package text renders the results page as a plain-text report with an
// aligned table, sized by display width so wide runes keep columns straight.
package text

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/results"
)

// Name is the registry key.
const Name = "text"

const (
	columnGap       = "  "
	defaultMaxWidth = 32
	ellipsis        = "…"
)

// Option configures the renderer.
type Option func(*Renderer)

// WithMaxCellWidth truncates cells wider than n display columns. Zero or less
// disables truncation.
func WithMaxCellWidth(n int) Option {
	return func(r *Renderer) {
		r.maxWidth = n
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	maxWidth int
}

var _ render.Renderer = (*Renderer)(nil)

// New builds a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{maxWidth: defaultMaxWidth}
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
	return "text/plain; charset=utf-8"
}

// Render writes the detail block followed by the CSV table.
func (r *Renderer) Render(ctx context.Context, page results.Page) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("text: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	details := [][2]string{
		{"First Name", page.FirstName},
		{"Last Name", page.LastName},
		{"Email", page.Email},
		{"Subscription", page.Subscription},
		{"Password", page.Password},
	}
	if page.FileName != "" {
		details = append(details, [2]string{"File", page.FileName})
	}
	labelWidth := 0
	for _, d := range details {
		labelWidth = max(labelWidth, runewidth.StringWidth(d[0])+1)
	}
	for _, d := range details {
		buf.WriteString(runewidth.FillRight(d[0]+":", labelWidth))
		buf.WriteString(" ")
		buf.WriteString(d[1])
		buf.WriteString("\n")
	}

	if len(page.Columns) == 0 {
		return buf.Bytes(), nil
	}
	buf.WriteString("\n")

	header := r.fit(page.Columns)
	rows := make([][]string, 0, len(page.Cells))
	for _, cells := range page.Cells {
		rows = append(rows, r.fit(cells))
	}

	widths := make([]int, len(header))
	for i, cell := range header {
		widths[i] = runewidth.StringWidth(cell)
	}
	for _, row := range rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}
	writeRow(&buf, header, widths)
	writeRow(&buf, rules, widths)
	for _, row := range rows {
		writeRow(&buf, row, widths)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fit(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(cell)
		if r.maxWidth > 0 && runewidth.StringWidth(cell) > r.maxWidth {
			cell = runewidth.Truncate(cell, r.maxWidth, ellipsis)
		}
		out[i] = cell
	}
	return out
}

// writeRow pads every cell but the last so lines carry no trailing blanks.
func writeRow(buf *bytes.Buffer, cells []string, widths []int) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(widths)-1 {
			buf.WriteString(cell)
			break
		}
		buf.WriteString(runewidth.FillRight(cell, w))
		buf.WriteString(columnGap)
	}
	buf.WriteString("\n")
}
