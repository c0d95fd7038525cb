// Package msgpackout renders the results page as MessagePack for programmatic
// consumers. Rows are encoded positionally against Columns.
package msgpackout

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/results"
)

// Name is the registry key.
const Name = "msgpack"

// Document is the encoded shape. Each row holds one value per column.
type Document struct {
	FirstName    string   `msgpack:"firstName"`
	LastName     string   `msgpack:"lastName"`
	Email        string   `msgpack:"email"`
	Subscription string   `msgpack:"subscription"`
	Password     string   `msgpack:"password"`
	FileName     string   `msgpack:"fileName,omitempty"`
	Columns      []string `msgpack:"columns"`
	Rows         [][]any  `msgpack:"rows"`
}

// Renderer implements render.Renderer.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New builds a MessagePack renderer.
func New() *Renderer {
	return &Renderer{}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render's output.
func (r *Renderer) ContentType() string {
	return "application/msgpack"
}

// Render encodes page as a Document.
func (r *Renderer) Render(ctx context.Context, page results.Page) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("msgpackout: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := Document{
		FirstName:    page.FirstName,
		LastName:     page.LastName,
		Email:        page.Email,
		Subscription: page.Subscription,
		Password:     page.Password,
		FileName:     page.FileName,
		Columns:      page.Columns,
		Rows:         make([][]any, 0, len(page.Rows)),
	}
	for _, row := range page.Rows {
		values := make([]any, len(page.Columns))
		for i, column := range page.Columns {
			values[i], _ = row.Get(column)
		}
		doc.Rows = append(doc.Rows, values)
	}

	out, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("msgpackout: encode: %w", err)
	}
	return out, nil
}
