// Package results is the read side of a submitted form: it loads the
// snapshot from the state channel, derives the table columns and masks the
// password until the user reveals it.
package results

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// ErrNoData reports an empty channel or a snapshot without rows.
var ErrNoData = errors.New("results: no data available")

// Source is where the results view reads its snapshot.
type Source interface {
	Read() (model.FormSnapshot, bool)
}

// Clearer empties the source when the user goes back.
type Clearer interface {
	Clear()
}

// View is one activation of the results screen.
type View struct {
	snapshot     model.FormSnapshot
	columns      []string
	showPassword bool
	clearer      Clearer
	closed       bool
}

// Load reads src. Callers redirect to the form on ErrNoData instead of
// rendering.
func Load(src Source) (*View, error) {
	if src == nil {
		return nil, ErrNoData
	}
	snapshot, ok := src.Read()
	if !ok || len(snapshot.CsvRows) == 0 {
		return nil, ErrNoData
	}
	v := &View{
		snapshot: snapshot,
		columns:  snapshot.CsvRows[0].Keys(),
	}
	if c, ok := src.(Clearer); ok {
		v.clearer = c
	}
	return v, nil
}

// Snapshot returns a copy of the loaded snapshot.
func (v *View) Snapshot() model.FormSnapshot {
	return v.snapshot.Clone()
}

// Columns are the keys of the first row, in column order.
func (v *View) Columns() []string {
	return append([]string(nil), v.columns...)
}

// Rows returns the loaded rows.
func (v *View) Rows() []model.CsvRow {
	return model.CloneRows(v.snapshot.CsvRows)
}

// PasswordVisible reports whether the password is shown in clear.
func (v *View) PasswordVisible() bool {
	return v.showPassword
}

// TogglePassword flips between masked and clear text and returns the new
// visibility.
func (v *View) TogglePassword() bool {
	v.showPassword = !v.showPassword
	return v.showPassword
}

// Password returns the password, masked unless revealed.
func (v *View) Password() string {
	if v.showPassword {
		return v.snapshot.Password
	}
	return Mask(v.snapshot.Password)
}

// Mask replaces every character with '*'.
func Mask(password string) string {
	return strings.Repeat("*", len([]rune(password)))
}

// GoBack empties the channel and returns to the form.
func (v *View) GoBack(ctx context.Context, nav navigation.Navigator) (bool, error) {
	if v.clearer != nil {
		v.clearer.Clear()
	}
	if nav == nil {
		return false, nil
	}
	ok, err := nav.Navigate(ctx, navigation.RouteForm)
	if err != nil {
		return false, fmt.Errorf("results: go back: %w", err)
	}
	return ok, nil
}

// CanDeactivate always allows leaving the results screen.
func (v *View) CanDeactivate(context.Context) (bool, error) {
	return true, nil
}

// Close marks the view inactive.
func (v *View) Close() {
	v.closed = true
}

// Closed reports whether Close ran.
func (v *View) Closed() bool {
	return v.closed
}

var _ navigation.Page = (*View)(nil)

// Page is the render-ready form of a results view.
type Page struct {
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Subscription string     `json:"subscription"`
	Password     string     `json:"password"`
	FileName     string     `json:"fileName,omitempty"`
	Columns      []string   `json:"columns"`
	Cells        [][]string `json:"-"`
	// Rows keeps the typed values for encoders that preserve them.
	Rows []model.CsvRow `json:"rows"`
}

// Page builds the render model, formatting every cell as text.
func (v *View) Page() Page {
	page := Page{
		FirstName:    v.snapshot.FirstName,
		LastName:     v.snapshot.LastName,
		Email:        v.snapshot.Email,
		Subscription: string(v.snapshot.Subscription),
		Password:     v.Password(),
		FileName:     v.snapshot.FileName(),
		Columns:      v.Columns(),
		Rows:         v.Rows(),
	}
	page.Cells = make([][]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		cells := make([]string, 0, len(page.Columns))
		for _, column := range page.Columns {
			value, _ := row.Get(column)
			cells = append(cells, FormatCell(value))
		}
		page.Cells = append(page.Cells, cells)
	}
	return page
}

// FormatCell renders a coerced CSV value. Integral numbers print without a
// fraction and nil prints as an empty string.
func FormatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
