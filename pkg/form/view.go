package form

import (
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// FieldState is the validation state of one field.
type FieldState struct {
	Dirty      bool
	Typing     bool
	Violations []validation.Violation
	// Message is the visible error, empty unless the field is dirty, errors
	// are shown, the user is not typing and the field has a violation.
	Message string
}

// FieldView is a FieldState with the field's name and display label.
type FieldView struct {
	Name  model.FieldName
	Label string
	FieldState
}

// View is everything a renderer needs to draw the form.
type View struct {
	Session          string
	Values           model.FormValues
	Fields           []FieldView
	FileName         string
	FileError        string
	IngestionPending bool
	Rows             int
	Submitted        bool
	ShowAllErrors    bool
	CanSubmit        bool
	// Errors is the error summary, filled once errors are shown.
	Errors []string
}

// Field returns the view of name.
func (v View) Field(name model.FieldName) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}

// View builds the current view model.
func (o *Orchestrator) View() View {
	view := View{
		Session:          o.id,
		Values:           o.values,
		Fields:           make([]FieldView, 0, len(model.Fields())),
		FileName:         o.fileName,
		FileError:        o.fileError,
		IngestionPending: o.pending,
		Rows:             len(o.rows),
		Submitted:        o.submitted,
		ShowAllErrors:    o.showAllErrors,
		CanSubmit:        o.CanSubmit(),
	}
	for _, field := range model.Fields() {
		view.Fields = append(view.Fields, FieldView{
			Name:       field,
			Label:      field.Label(),
			FieldState: o.FieldState(field),
		})
	}
	if o.showAllErrors {
		view.Errors = o.ErrorSummary()
	}
	return view
}

// FieldState returns the state of field. Unknown fields read as pristine.
func (o *Orchestrator) FieldState(field model.FieldName) FieldState {
	state, ok := o.fields[field]
	if !ok {
		return FieldState{}
	}
	return FieldState{
		Dirty:      state.dirty,
		Typing:     o.tracker.IsTyping(field),
		Violations: append([]validation.Violation(nil), state.violations...),
		Message:    o.VisibleError(field),
	}
}

// VisibleError returns the message field currently shows.
func (o *Orchestrator) VisibleError(field model.FieldName) string {
	state, ok := o.fields[field]
	if !ok || !state.dirty || !o.showAllErrors || o.tracker.IsTyping(field) {
		return ""
	}
	return o.catalog.FirstMessage(field, state.violations)
}

// IsTyping reports whether field is inside its typing window.
func (o *Orchestrator) IsTyping(field model.FieldName) bool {
	return o.tracker.IsTyping(field)
}

// Dirty reports whether any field was edited since the last reset.
func (o *Orchestrator) Dirty() bool {
	for _, state := range o.fields {
		if state.dirty {
			return true
		}
	}
	return false
}

// Submitted reports whether Submit ran since the last reset.
func (o *Orchestrator) Submitted() bool {
	return o.submitted
}

// ShowAllErrors reports whether errors are displayed.
func (o *Orchestrator) ShowAllErrors() bool {
	return o.showAllErrors
}

// HasCsvRows reports whether a file was ingested.
func (o *Orchestrator) HasCsvRows() bool {
	return len(o.rows) > 0
}

// Rows returns the ingested rows.
func (o *Orchestrator) Rows() []model.CsvRow {
	return model.CloneRows(o.rows)
}

// Values returns the in-progress values.
func (o *Orchestrator) Values() model.FormValues {
	return o.values
}

// FileName is the display name of the selected file, cleared when its
// ingestion fails.
func (o *Orchestrator) FileName() string {
	return o.fileName
}

// FileError is the ingestion failure message for the file field.
func (o *Orchestrator) FileError() string {
	return o.fileError
}

// IngestionPending reports whether a CSV read is in flight.
func (o *Orchestrator) IngestionPending() bool {
	return o.pending
}

// CanSubmit reports whether Submit would evaluate the form.
func (o *Orchestrator) CanSubmit() bool {
	return !o.closed && !o.pending
}

// ErrorSummary lists the first message of every failing field in form order,
// followed by the file error. It evaluates current values and ignores
// visibility.
func (o *Orchestrator) ErrorSummary() []string {
	var messages []string
	for _, field := range model.Fields() {
		violations := o.rules.Validate(field, o.values.Value(field))
		messages = append(messages, o.catalog.FirstMessage(field, violations))
	}
	return render.MergeFormErrors(messages, o.fileError)
}
