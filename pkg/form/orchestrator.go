package form

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/csvingest"
	"github.com/goliatone/go-formflow/pkg/eventloop"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/typing"
	"github.com/goliatone/go-formflow/pkg/validation"
)

type fieldState struct {
	dirty      bool
	violations []validation.Violation
}

// Orchestrator drives one form session.
type Orchestrator struct {
	id               string
	sched            eventloop.Scheduler
	rules            *validation.RuleSet
	catalog          validation.Catalog
	window           time.Duration
	tracker          *typing.Tracker
	ingester         Ingester
	publisher        Publisher
	navigator        navigation.Navigator
	confirmer        navigation.Confirmer
	guard            navigation.Policy
	clearMessage     string
	fileErrorMessage string
	logger           *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	values        model.FormValues
	fields        map[model.FieldName]*fieldState
	submitted     bool
	showAllErrors bool
	rows          []model.CsvRow
	fileName      string
	fileError     string
	generation    uint64
	pending       bool

	nextHandle int
	listeners  map[int]func(View)
	fileInputs map[int]FileInput
}

var _ navigation.Page = (*Orchestrator)(nil)

// New starts a form session with default values on sched.
func New(sched eventloop.Scheduler, options ...Option) *Orchestrator {
	o := &Orchestrator{
		id:               uuid.NewString(),
		sched:            sched,
		rules:            validation.DefaultRuleSet(),
		catalog:          validation.DefaultCatalog(),
		window:           typing.DefaultWindow,
		clearMessage:     DefaultClearMessage,
		fileErrorMessage: DefaultFileErrorMessage,
		logger:           logging.Discard(),
		listeners:        make(map[int]func(View)),
		fileInputs:       make(map[int]FileInput),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.ingester == nil {
		o.ingester = csvingest.New(csvingest.WithLogger(o.logger))
	}
	o.logger = o.logger.With(slog.String("session", o.id))
	o.tracker = typing.NewTracker(sched, o.settle,
		typing.WithWindow(o.window),
		typing.WithLogger(o.logger),
	)
	o.ctx, o.cancel = context.WithCancel(context.Background())
	o.reset()
	return o
}

// ID returns the session id.
func (o *Orchestrator) ID() string {
	return o.id
}

// OnFieldChange stores value for field, marks it dirty and restarts its
// typing window. Text fields take a string; the subscription field takes a
// string or model.SubscriptionTier; the file field delegates to
// OnFileSelected. Rejected values leave the session untouched.
func (o *Orchestrator) OnFieldChange(field model.FieldName, value any) error {
	if o.closed {
		return ErrClosed
	}
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	switch field {
	case model.FieldCsvFile:
		file, ok := value.(model.FileHandle)
		if !ok && value != nil {
			return fmt.Errorf("%w: %s expects a file handle, got %T", ErrInvalidValue, field, value)
		}
		return o.OnFileSelected(file)
	case model.FieldSubscription:
		var raw string
		switch v := value.(type) {
		case string:
			raw = v
		case model.SubscriptionTier:
			raw = string(v)
		default:
			return fmt.Errorf("%w: %s expects a tier, got %T", ErrInvalidValue, field, value)
		}
		tier, err := model.ParseSubscriptionTier(raw)
		if err != nil {
			return fmt.Errorf("form: %s: %w", field, err)
		}
		o.values.Subscription = tier
	default:
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, field, value)
		}
		switch field {
		case model.FieldFirstName:
			o.values.FirstName = text
		case model.FieldLastName:
			o.values.LastName = text
		case model.FieldEmail:
			o.values.Email = text
		case model.FieldPassword:
			o.values.Password = text
		}
	}

	o.fields[field].dirty = true
	o.tracker.MarkStartTyping(field)
	o.tracker.OnEdit(field)
	o.notify()
	return nil
}

// OnFileSelected shows file's name at once and ingests it in the background.
// A nil file is ignored. A later selection, Clear or Close discards the
// result of an earlier one.
func (o *Orchestrator) OnFileSelected(file model.FileHandle) error {
	if o.closed {
		return ErrClosed
	}
	if file == nil {
		return nil
	}

	o.generation++
	gen := o.generation
	o.pending = true
	o.fileName = file.Name()
	o.fileError = ""
	o.fields[model.FieldCsvFile].dirty = true
	o.logger.Debug("file selected", slog.String("file", o.fileName))

	ctx, ingester, sched := o.ctx, o.ingester, o.sched
	go func() {
		rows, err := ingester.Ingest(ctx, file)
		sched.Post(func() {
			o.finishIngest(gen, file, rows, err)
		})
	}()

	o.notify()
	return nil
}

func (o *Orchestrator) finishIngest(gen uint64, file model.FileHandle, rows []model.CsvRow, err error) {
	if o.closed || gen != o.generation {
		o.logger.Debug("stale ingestion dropped", slog.String("file", file.Name()))
		return
	}
	o.pending = false

	if err == nil && len(rows) == 0 {
		err = csvingest.ErrEmptyResult
	}
	if err != nil {
		o.logger.Info("csv ingestion failed", slog.String("file", file.Name()), slog.Any("error", err))
		o.fileName = ""
		o.rows = nil
		o.values.CsvFile = nil
		o.fileError = o.fileErrorMessage
	} else {
		o.logger.Debug("csv ingested", slog.String("file", file.Name()), slog.Int("rows", len(rows)))
		o.rows = model.CloneRows(rows)
		o.values.CsvFile = file
		o.fileError = ""
	}
	o.recompute(model.FieldCsvFile)
	o.notify()
}

// SubmitOutcome classifies a Submit call.
type SubmitOutcome int

const (
	// SubmitInvalid left the user on the form with every violation visible.
	SubmitInvalid SubmitOutcome = iota
	// SubmitAccepted published a snapshot and requested navigation.
	SubmitAccepted
	// SubmitPending was refused because a CSV ingestion is still running.
	SubmitPending
)

func (s SubmitOutcome) String() string {
	switch s {
	case SubmitAccepted:
		return "accepted"
	case SubmitPending:
		return "pending"
	default:
		return "invalid"
	}
}

// SubmitResult reports what Submit did.
type SubmitResult struct {
	Outcome SubmitOutcome
	// Snapshot is the published snapshot when Outcome is SubmitAccepted.
	Snapshot model.FormSnapshot
	// Errors lists the summary messages when Outcome is SubmitInvalid.
	Errors []string
	// Navigated is false when no navigator is set or it refused the move.
	Navigated bool
}

// Submit validates every field immediately, bypassing the typing window. When
// all pass and rows were ingested it publishes the snapshot and requests the
// results route. While an ingestion is pending nothing changes.
func (o *Orchestrator) Submit(ctx context.Context) (SubmitResult, error) {
	if o.closed {
		return SubmitResult{}, ErrClosed
	}
	if o.pending {
		o.logger.Debug("submit refused while ingestion pending")
		return SubmitResult{Outcome: SubmitPending}, nil
	}

	o.submitted = true
	o.showAllErrors = true
	valid := true
	for _, field := range model.Fields() {
		o.fields[field].dirty = true
		o.tracker.SettleNow(field)
		o.recompute(field)
		if len(o.fields[field].violations) > 0 {
			valid = false
		}
	}

	if !valid || len(o.rows) == 0 {
		o.logger.Debug("submit rejected", slog.Int("rows", len(o.rows)))
		o.notify()
		return SubmitResult{Outcome: SubmitInvalid, Errors: o.ErrorSummary()}, nil
	}

	snapshot := o.values.Snapshot(o.rows)
	if o.publisher != nil {
		o.publisher.Publish(snapshot)
	}
	o.logger.Info("form submitted", slog.Int("rows", len(o.rows)))
	o.notify()

	result := SubmitResult{Outcome: SubmitAccepted, Snapshot: snapshot.Clone()}
	if o.navigator == nil {
		return result, nil
	}
	ok, err := o.navigator.Navigate(ctx, navigation.RouteResults)
	if err != nil {
		return result, fmt.Errorf("form: navigate to results: %w", err)
	}
	result.Navigated = ok
	return result, nil
}

// Clear resets the session to defaults. When there is work to lose it asks
// the confirmer first; a decline returns false and changes nothing.
func (o *Orchestrator) Clear(ctx context.Context) (bool, error) {
	if o.closed {
		return false, ErrClosed
	}
	if o.Dirty() || len(o.rows) > 0 {
		if o.confirmer == nil {
			return false, nil
		}
		ok, err := o.confirmer.Confirm(ctx, o.clearMessage)
		if err != nil {
			return false, fmt.Errorf("form: confirm clear: %w", err)
		}
		if !ok {
			o.logger.Debug("clear declined")
			return false, nil
		}
	}

	o.tracker.Reset()
	o.generation++
	o.reset()
	for _, id := range sortedHandles(o.fileInputs) {
		o.fileInputs[id].ClearSelection()
	}
	o.logger.Debug("form cleared")
	o.notify()
	return true, nil
}

// CanLeave applies the guard policy to the session.
func (o *Orchestrator) CanLeave(ctx context.Context) (bool, error) {
	if o.closed {
		return true, nil
	}
	return o.guard.CanLeave(ctx, navigation.SessionView{
		Submitted:  o.submitted,
		Dirty:      o.Dirty(),
		HasCsvRows: len(o.rows) > 0,
	}, o.confirmer)
}

// CanDeactivate lets the router consult the guard.
func (o *Orchestrator) CanDeactivate(ctx context.Context) (bool, error) {
	return o.CanLeave(ctx)
}

// Close cancels timers and in-flight ingestion and releases every listener
// and attached file input. Listeners waiting on a pending read get one last
// view with IngestionPending false first. It is safe to call more than once.
func (o *Orchestrator) Close() {
	if o.closed {
		return
	}
	o.closed = true
	o.cancel()
	o.tracker.Close()
	o.generation++
	if o.pending {
		o.pending = false
		o.notify()
	}
	o.listeners = make(map[int]func(View))
	o.fileInputs = make(map[int]FileInput)
	o.logger.Debug("form closed")
}

// Closed reports whether Close ran.
func (o *Orchestrator) Closed() bool {
	return o.closed
}

// Subscribe registers fn to receive the view after every state change. The
// returned func unregisters it; Close releases all listeners.
func (o *Orchestrator) Subscribe(fn func(View)) (unsubscribe func()) {
	if fn == nil || o.closed {
		return func() {}
	}
	id := o.nextHandle
	o.nextHandle++
	o.listeners[id] = fn
	return func() { delete(o.listeners, id) }
}

// AttachFileInput registers a widget whose selection Clear resets.
func (o *Orchestrator) AttachFileInput(input FileInput) (detach func()) {
	if input == nil || o.closed {
		return func() {}
	}
	id := o.nextHandle
	o.nextHandle++
	o.fileInputs[id] = input
	return func() { delete(o.fileInputs, id) }
}

func (o *Orchestrator) settle(field model.FieldName) {
	if o.closed {
		return
	}
	o.recompute(field)
	o.notify()
}

// recompute reads field's current value, so a settle never sees a stale one.
func (o *Orchestrator) recompute(field model.FieldName) {
	o.fields[field].violations = o.rules.Validate(field, o.values.Value(field))
}

func (o *Orchestrator) reset() {
	o.values = model.DefaultFormValues()
	o.fields = make(map[model.FieldName]*fieldState, len(model.Fields()))
	for _, field := range model.Fields() {
		o.fields[field] = &fieldState{}
	}
	o.submitted = false
	o.showAllErrors = false
	o.rows = nil
	o.fileName = ""
	o.fileError = ""
	o.pending = false
}

func (o *Orchestrator) notify() {
	if len(o.listeners) == 0 {
		return
	}
	view := o.View()
	for _, id := range sortedHandles(o.listeners) {
		if fn, ok := o.listeners[id]; ok {
			fn(view)
		}
	}
}

func sortedHandles[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}
