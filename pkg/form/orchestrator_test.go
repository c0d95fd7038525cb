package form_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/csvingest"
	"github.com/goliatone/go-formflow/pkg/eventloop"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

const usersCSV = "id,name,email\n1,Test,test@example.com\n2,Jane,jane@example.com"

type recordingPublisher struct {
	snapshots []model.FormSnapshot
}

func (p *recordingPublisher) Publish(s model.FormSnapshot) {
	p.snapshots = append(p.snapshots, s)
}

type recordingNavigator struct {
	routes []navigation.Route
	err    error
}

func (n *recordingNavigator) Navigate(_ context.Context, route navigation.Route) (bool, error) {
	n.routes = append(n.routes, route)
	return n.err == nil, n.err
}

type recordingConfirmer struct {
	answer   bool
	messages []string
}

func (c *recordingConfirmer) Confirm(_ context.Context, message string) (bool, error) {
	c.messages = append(c.messages, message)
	return c.answer, nil
}

type fileInput struct{ cleared int }

func (f *fileInput) ClearSelection() { f.cleared++ }

// gatedIngester blocks until release is closed.
type gatedIngester struct {
	release chan struct{}
	inner   form.Ingester
}

func (g *gatedIngester) Ingest(ctx context.Context, file model.FileHandle) ([]model.CsvRow, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.Ingest(ctx, file)
}

type harness struct {
	clock     *eventloop.Manual
	orch      *form.Orchestrator
	publisher *recordingPublisher
	navigator *recordingNavigator
	confirmer *recordingConfirmer
}

func newHarness(t *testing.T, options ...form.Option) *harness {
	t.Helper()
	h := &harness{
		clock:     eventloop.NewManual(),
		publisher: &recordingPublisher{},
		navigator: &recordingNavigator{},
		confirmer: &recordingConfirmer{},
	}
	base := []form.Option{
		form.WithPublisher(h.publisher),
		form.WithNavigator(h.navigator),
		form.WithConfirmer(h.confirmer),
	}
	h.orch = form.New(h.clock, append(base, options...)...)
	t.Cleanup(h.orch.Close)
	return h
}

func (h *harness) set(t *testing.T, field model.FieldName, value any) {
	t.Helper()
	if err := h.orch.OnFieldChange(field, value); err != nil {
		t.Fatalf("set %s: %v", field, err)
	}
}

func (h *harness) selectFile(t *testing.T, name, content string) {
	t.Helper()
	h.pick(t, name, content)
	h.awaitIngestion(t)
}

func (h *harness) pick(t *testing.T, name, content string) {
	t.Helper()
	if err := h.orch.OnFileSelected(csvingest.FileFromBytes(name, []byte(content))); err != nil {
		t.Fatalf("select %s: %v", name, err)
	}
}

func (h *harness) awaitIngestion(t *testing.T) {
	t.Helper()
	if !h.clock.WaitPosted(2 * time.Second) {
		t.Fatalf("ingestion result was never posted")
	}
	h.clock.RunPending()
}

func (h *harness) fillValid(t *testing.T) {
	t.Helper()
	h.set(t, model.FieldFirstName, "Ada")
	h.set(t, model.FieldLastName, "Lovelace")
	h.set(t, model.FieldEmail, "ada@example.com")
	h.set(t, model.FieldSubscription, "Pro")
	h.set(t, model.FieldPassword, "Password@123")
	h.selectFile(t, "users.csv", usersCSV)
	h.clock.Advance(time.Second)
}

func (h *harness) submit(t *testing.T) form.SubmitResult {
	t.Helper()
	result, err := h.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return result
}

func (h *harness) clear(t *testing.T) bool {
	t.Helper()
	cleared, err := h.orch.Clear(context.Background())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	return cleared
}

func sameFile(a, b model.FileHandle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

func assertPristineFields(t *testing.T, orch *form.Orchestrator) {
	t.Helper()
	for _, field := range model.Fields() {
		if diff := cmp.Diff(form.FieldState{}, orch.FieldState(field)); diff != "" {
			t.Fatalf("field %s state mismatch (-want +got):\n%s", field, diff)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	h := newHarness(t)

	if h.orch.ID() == "" {
		t.Fatalf("expected a session id")
	}
	if diff := cmp.Diff(model.DefaultFormValues(), h.orch.Values(), cmp.Comparer(sameFile)); diff != "" {
		t.Fatalf("default values mismatch (-want +got):\n%s", diff)
	}
	if h.orch.Values().Subscription != model.TierAdvanced {
		t.Fatalf("expected default tier %q, got %q", model.TierAdvanced, h.orch.Values().Subscription)
	}
	if h.orch.Dirty() || h.orch.Submitted() || h.orch.HasCsvRows() {
		t.Fatalf("expected a pristine session")
	}
	if !h.orch.CanSubmit() {
		t.Fatalf("expected submit to be enabled")
	}
	assertPristineFields(t, h.orch)
}

func TestSubmit_ValidPublishesOnceAndNavigates(t *testing.T) {
	h := newHarness(t)
	h.fillValid(t)
	if len(h.orch.Rows()) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(h.orch.Rows()))
	}

	result := h.submit(t)
	if result.Outcome != form.SubmitAccepted || !result.Navigated {
		t.Fatalf("expected accepted and navigated, got %+v", result)
	}

	if len(h.publisher.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(h.publisher.snapshots))
	}
	got := h.publisher.snapshots[0]
	want := h.orch.Values().Snapshot(h.orch.Rows())
	if diff := cmp.Diff(want, got, cmp.Comparer(sameFile)); diff != "" {
		t.Fatalf("published snapshot mismatch (-want +got):\n%s", diff)
	}
	if got.Subscription != model.TierPro || got.FileName() != "users.csv" {
		t.Fatalf("unexpected snapshot tier %q file %q", got.Subscription, got.FileName())
	}
	if diff := cmp.Diff([]navigation.Route{navigation.RouteResults}, h.navigator.routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_InvalidEmailDoesNothing(t *testing.T) {
	h := newHarness(t)
	h.fillValid(t)
	h.set(t, model.FieldEmail, "invalid-email")

	result := h.submit(t)
	if result.Outcome != form.SubmitInvalid {
		t.Fatalf("expected invalid, got %s", result.Outcome)
	}
	if len(h.publisher.snapshots) != 0 || len(h.navigator.routes) != 0 {
		t.Fatalf("invalid submit must not publish or navigate")
	}
	if diff := cmp.Diff([]string{"Email is not valid"}, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if got := h.orch.VisibleError(model.FieldEmail); got != "Email is not valid" {
		t.Fatalf("unexpected visible error %q", got)
	}
	if h.orch.IsTyping(model.FieldEmail) {
		t.Fatalf("submit should end the typing window")
	}
}

func TestSubmit_EmptyFormShowsEveryError(t *testing.T) {
	h := newHarness(t)

	result := h.submit(t)
	if result.Outcome != form.SubmitInvalid {
		t.Fatalf("expected invalid, got %s", result.Outcome)
	}
	want := []string{
		"First name is required",
		"Last name is required",
		"Email is required",
		"Password is required",
		"CSV file is required",
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if !h.orch.Submitted() || !h.orch.Dirty() {
		t.Fatalf("expected submitted and dirty after submit")
	}
	if got := h.orch.VisibleError(model.FieldCsvFile); got != "CSV file is required" {
		t.Fatalf("unexpected csv error %q", got)
	}
	if got := h.orch.VisibleError(model.FieldSubscription); got != "" {
		t.Fatalf("subscription should have no error, got %q", got)
	}
}

func TestSubmit_RepeatedValidSubmitRepublishes(t *testing.T) {
	h := newHarness(t)
	h.fillValid(t)

	h.submit(t)
	h.set(t, model.FieldFirstName, "Grace")
	h.submit(t)

	if len(h.publisher.snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(h.publisher.snapshots))
	}
	if got := h.publisher.snapshots[1].FirstName; got != "Grace" {
		t.Fatalf("expected second snapshot for Grace, got %q", got)
	}
}

func TestSubmit_NavigationErrorIsReturned(t *testing.T) {
	h := newHarness(t)
	h.navigator.err = errors.New("router gone")
	h.fillValid(t)

	result, err := h.orch.Submit(context.Background())
	if err == nil {
		t.Fatalf("expected navigation error")
	}
	if result.Outcome != form.SubmitAccepted || result.Navigated {
		t.Fatalf("expected accepted without navigation, got %+v", result)
	}
	if len(h.publisher.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(h.publisher.snapshots))
	}
}

func TestVisibleError_WaitsForSettle(t *testing.T) {
	h := newHarness(t, form.WithDebounce(500*time.Millisecond))
	h.submit(t)

	h.set(t, model.FieldEmail, "a")
	if !h.orch.IsTyping(model.FieldEmail) || h.orch.VisibleError(model.FieldEmail) != "" {
		t.Fatalf("expected typing with no visible error")
	}

	h.clock.Advance(300 * time.Millisecond)
	h.set(t, model.FieldEmail, "ab")
	h.clock.Advance(300 * time.Millisecond)
	if !h.orch.IsTyping(model.FieldEmail) {
		t.Fatalf("second edit should restart the window")
	}
	if got := h.orch.VisibleError(model.FieldEmail); got != "" {
		t.Fatalf("error shown while typing: %q", got)
	}

	h.clock.Advance(200 * time.Millisecond)
	if h.orch.IsTyping(model.FieldEmail) {
		t.Fatalf("expected the window to settle")
	}
	if got := h.orch.VisibleError(model.FieldEmail); got != "Email is not valid" {
		t.Fatalf("unexpected visible error %q", got)
	}
}

func TestVisibleError_HiddenBeforeFirstSubmit(t *testing.T) {
	h := newHarness(t)
	h.set(t, model.FieldEmail, "nope")
	h.clock.Advance(time.Second)

	state := h.orch.FieldState(model.FieldEmail)
	if !state.Dirty || state.Typing {
		t.Fatalf("expected dirty and settled, got %+v", state)
	}
	if len(state.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(state.Violations))
	}
	if state.Message != "" {
		t.Fatalf("message shown before submit: %q", state.Message)
	}
}

func TestSettle_RecomputesOnlyThatField(t *testing.T) {
	h := newHarness(t)
	h.submit(t)

	h.set(t, model.FieldFirstName, "Ada")
	h.clock.Advance(400 * time.Millisecond)
	h.set(t, model.FieldLastName, "")
	h.clock.Advance(100 * time.Millisecond)

	if got := h.orch.VisibleError(model.FieldFirstName); got != "" {
		t.Fatalf("first name should be clean, got %q", got)
	}
	if n := len(h.orch.FieldState(model.FieldFirstName).Violations); n != 0 {
		t.Fatalf("first name has %d violations", n)
	}
	if !h.orch.IsTyping(model.FieldLastName) || h.orch.VisibleError(model.FieldLastName) != "" {
		t.Fatalf("last name should still be typing with no error")
	}

	h.clock.Advance(400 * time.Millisecond)
	if got := h.orch.VisibleError(model.FieldLastName); got != "Last name is required" {
		t.Fatalf("unexpected last name error %q", got)
	}
}

func TestOnFieldChange_Rejections(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		field model.FieldName
		value any
		want  error
	}{
		{"nickname", "x", form.ErrUnknownField},
		{model.FieldFirstName, 42, form.ErrInvalidValue},
		{model.FieldSubscription, "Enterprise", model.ErrInvalidSubscription},
		{model.FieldCsvFile, "data.csv", form.ErrInvalidValue},
	}
	for _, tc := range cases {
		if err := h.orch.OnFieldChange(tc.field, tc.value); !errors.Is(err, tc.want) {
			t.Fatalf("OnFieldChange(%s, %v): expected %v, got %v", tc.field, tc.value, tc.want, err)
		}
	}
	if h.orch.Values().Subscription != model.TierAdvanced {
		t.Fatalf("rejected tier must not change the value")
	}
	if h.orch.Dirty() {
		t.Fatalf("rejected edits must not dirty the form")
	}

	h.set(t, model.FieldSubscription, model.TierBasic)
	if h.orch.Values().Subscription != model.TierBasic {
		t.Fatalf("expected tier %q, got %q", model.TierBasic, h.orch.Values().Subscription)
	}
}

func TestOnFileSelected_Success(t *testing.T) {
	h := newHarness(t)
	h.pick(t, "users.csv", usersCSV)

	if got := h.orch.FileName(); got != "users.csv" {
		t.Fatalf("name should show before ingestion completes, got %q", got)
	}
	if !h.orch.IngestionPending() || h.orch.CanSubmit() {
		t.Fatalf("expected pending ingestion to block submit")
	}

	h.awaitIngestion(t)
	if h.orch.IngestionPending() || !h.orch.HasCsvRows() {
		t.Fatalf("expected rows after ingestion")
	}
	if got := h.orch.Values().CsvFile.Name(); got != "users.csv" {
		t.Fatalf("unexpected csv file %q", got)
	}
	if got := h.orch.FileError(); got != "" {
		t.Fatalf("unexpected file error %q", got)
	}
}

func TestOptions_SessionIDAndFileErrorMessage(t *testing.T) {
	h := newHarness(t, form.WithSessionID("session-1"), form.WithFileErrorMessage("Unreadable file"))
	if got := h.orch.ID(); got != "session-1" {
		t.Fatalf("unexpected id %q", got)
	}

	h.selectFile(t, "bad.csv", "")
	if got := h.orch.FileError(); got != "Unreadable file" {
		t.Fatalf("unexpected file error %q", got)
	}
	if got := h.orch.View().Session; got != "session-1" {
		t.Fatalf("unexpected view session %q", got)
	}
}

func TestOnFileSelected_FailureClearsName(t *testing.T) {
	h := newHarness(t)
	h.selectFile(t, "users.csv", usersCSV)
	if !h.orch.HasCsvRows() {
		t.Fatalf("expected rows from the first file")
	}

	h.selectFile(t, "empty.csv", "id,name\n")

	if got := h.orch.FileName(); got != "" {
		t.Fatalf("failed file name should be cleared, got %q", got)
	}
	if got := h.orch.FileError(); got != form.DefaultFileErrorMessage {
		t.Fatalf("unexpected file error %q", got)
	}
	if h.orch.HasCsvRows() || h.orch.Values().CsvFile != nil {
		t.Fatalf("failed ingestion should drop rows and file")
	}

	result := h.submit(t)
	if !slices.Contains(result.Errors, form.DefaultFileErrorMessage) {
		t.Fatalf("expected %q in %v", form.DefaultFileErrorMessage, result.Errors)
	}
	if got := h.orch.VisibleError(model.FieldCsvFile); got != "CSV file is required" {
		t.Fatalf("unexpected csv error %q", got)
	}
}

func TestOnFileSelected_WrongExtensionBlocksSubmit(t *testing.T) {
	h := newHarness(t)
	h.fillValid(t)
	h.selectFile(t, "users.txt", usersCSV)

	result := h.submit(t)
	if result.Outcome != form.SubmitInvalid {
		t.Fatalf("expected invalid, got %s", result.Outcome)
	}
	if got := h.orch.VisibleError(model.FieldCsvFile); got != "Please upload a CSV file" {
		t.Fatalf("unexpected csv error %q", got)
	}
}

func TestSubmit_RefusedWhileIngestionPending(t *testing.T) {
	gate := &gatedIngester{release: make(chan struct{}), inner: csvingest.New()}
	h := newHarness(t, form.WithIngester(gate))

	h.pick(t, "users.csv", usersCSV)
	result := h.submit(t)
	if result.Outcome != form.SubmitPending {
		t.Fatalf("expected pending, got %s", result.Outcome)
	}
	if h.orch.Submitted() {
		t.Fatalf("pending submit must not mark the form submitted")
	}

	close(gate.release)
	h.awaitIngestion(t)
	if !h.orch.CanSubmit() || !h.orch.HasCsvRows() {
		t.Fatalf("expected submit enabled with rows after ingestion")
	}
}

func TestOnFileSelected_NewerSelectionWins(t *testing.T) {
	gate := &gatedIngester{release: make(chan struct{}), inner: csvingest.New()}
	h := newHarness(t, form.WithIngester(gate))

	h.pick(t, "first.csv", "id\n1\n")
	h.pick(t, "second.csv", usersCSV)
	close(gate.release)

	deadline := time.Now().Add(2 * time.Second)
	for h.orch.IngestionPending() && time.Now().Before(deadline) {
		h.clock.WaitPosted(100 * time.Millisecond)
		h.clock.RunPending()
	}
	if h.orch.IngestionPending() {
		t.Fatalf("ingestion never settled")
	}
	if got := h.orch.FileName(); got != "second.csv" {
		t.Fatalf("expected second.csv, got %q", got)
	}
	if n := len(h.orch.Rows()); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestClose_DropsLateIngestion(t *testing.T) {
	gate := &gatedIngester{release: make(chan struct{}), inner: csvingest.New()}
	h := newHarness(t, form.WithIngester(gate))

	var views []form.View
	h.orch.Subscribe(func(v form.View) { views = append(views, v) })
	h.pick(t, "users.csv", usersCSV)
	if len(views) != 1 || !views[0].IngestionPending {
		t.Fatalf("expected one pending view, got %d", len(views))
	}

	h.orch.Close()
	if len(views) != 2 || views[1].IngestionPending {
		t.Fatalf("close should publish a final settled view, got %d views", len(views))
	}

	h.awaitIngestion(t)
	if h.orch.HasCsvRows() {
		t.Fatalf("late ingestion must be dropped")
	}
	if len(views) != 2 {
		t.Fatalf("listeners must be released on close, got %d views", len(views))
	}
	if n := h.clock.ActiveTimers(); n != 0 {
		t.Fatalf("expected no timers, got %d", n)
	}
	if err := h.orch.OnFieldChange(model.FieldEmail, "x"); !errors.Is(err, form.ErrClosed) {
		t.Fatalf("expected ErrClosed on edit, got %v", err)
	}
	if _, err := h.orch.Submit(context.Background()); !errors.Is(err, form.ErrClosed) {
		t.Fatalf("expected ErrClosed on submit, got %v", err)
	}
	if _, err := h.orch.Clear(context.Background()); !errors.Is(err, form.ErrClosed) {
		t.Fatalf("expected ErrClosed on clear, got %v", err)
	}
}

func TestClose_WithoutPendingIngestionIsSilent(t *testing.T) {
	h := newHarness(t)
	views := 0
	h.orch.Subscribe(func(form.View) { views++ })

	h.orch.Close()
	if views != 0 {
		t.Fatalf("expected no view on idle close, got %d", views)
	}
}

func TestClose_CancelsTypingTimers(t *testing.T) {
	h := newHarness(t)
	h.set(t, model.FieldFirstName, "Ada")
	h.set(t, model.FieldEmail, "a@b")
	if n := h.clock.ActiveTimers(); n != 2 {
		t.Fatalf("expected 2 timers, got %d", n)
	}

	h.orch.Close()
	if n := h.clock.ActiveTimers(); n != 0 {
		t.Fatalf("expected no timers after close, got %d", n)
	}
	h.orch.Close()
}

func TestCanLeave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok, err := h.orch.CanLeave(ctx)
	if err != nil {
		t.Fatalf("can leave: %v", err)
	}
	if !ok || len(h.confirmer.messages) != 0 {
		t.Fatalf("pristine form should leave without asking")
	}

	h.set(t, model.FieldFirstName, "Ada")
	ok, err = h.orch.CanLeave(ctx)
	if err != nil {
		t.Fatalf("can leave: %v", err)
	}
	if ok {
		t.Fatalf("declined confirmation should block leaving")
	}
	if diff := cmp.Diff([]string{navigation.DefaultLeaveMessage}, h.confirmer.messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	h.submit(t)
	ok, err = h.orch.CanDeactivate(ctx)
	if err != nil {
		t.Fatalf("can deactivate: %v", err)
	}
	if !ok {
		t.Fatalf("submitted form always may leave")
	}
	if n := len(h.confirmer.messages); n != 1 {
		t.Fatalf("submitted form should not ask, got %d questions", n)
	}
}

func TestClear_DeclinedLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.fillValid(t)
	h.set(t, model.FieldEmail, "bad")
	h.submit(t)

	before := h.orch.View()
	rowsBefore := h.orch.Rows()

	if h.clear(t) {
		t.Fatalf("declined clear reported success")
	}
	if diff := cmp.Diff([]string{form.DefaultClearMessage}, h.confirmer.messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	after := h.orch.View()
	if diff := cmp.Diff(before, after, cmp.Comparer(sameFile)); diff != "" {
		t.Fatalf("view changed on declined clear (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rowsBefore, h.orch.Rows()); diff != "" {
		t.Fatalf("rows changed on declined clear (-want +got):\n%s", diff)
	}
}

func TestClear_ConfirmedResetsEverything(t *testing.T) {
	h := newHarness(t)
	input := &fileInput{}
	h.orch.AttachFileInput(input)
	h.fillValid(t)
	h.set(t, model.FieldEmail, "bad")
	h.submit(t)

	h.confirmer.answer = true
	if !h.clear(t) {
		t.Fatalf("confirmed clear reported failure")
	}

	if diff := cmp.Diff(model.DefaultFormValues(), h.orch.Values(), cmp.Comparer(sameFile)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if h.orch.Dirty() || h.orch.Submitted() || h.orch.ShowAllErrors() || h.orch.HasCsvRows() {
		t.Fatalf("expected a pristine session after clear")
	}
	if got := h.orch.FileName(); got != "" {
		t.Fatalf("file name should be cleared, got %q", got)
	}
	if input.cleared != 1 {
		t.Fatalf("expected the file input to be cleared once, got %d", input.cleared)
	}
	assertPristineFields(t, h.orch)
}

func TestClear_PristineSkipsConfirmation(t *testing.T) {
	h := newHarness(t)
	input := &fileInput{}
	detach := h.orch.AttachFileInput(input)

	if !h.clear(t) {
		t.Fatalf("pristine clear reported failure")
	}
	if len(h.confirmer.messages) != 0 {
		t.Fatalf("pristine clear should not ask")
	}
	if input.cleared != 1 {
		t.Fatalf("expected 1 clear, got %d", input.cleared)
	}

	detach()
	h.clear(t)
	if input.cleared != 1 {
		t.Fatalf("detached input was cleared again")
	}
}

func TestClear_DropsPendingIngestion(t *testing.T) {
	gate := &gatedIngester{release: make(chan struct{}), inner: csvingest.New()}
	h := newHarness(t, form.WithIngester(gate))
	h.confirmer.answer = true

	h.pick(t, "users.csv", usersCSV)
	if !h.clear(t) {
		t.Fatalf("confirmed clear reported failure")
	}

	close(gate.release)
	h.awaitIngestion(t)
	if h.orch.HasCsvRows() || h.orch.FileName() != "" {
		t.Fatalf("cleared session picked up a stale ingestion")
	}
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t)

	var views []form.View
	unsubscribe := h.orch.Subscribe(func(v form.View) { views = append(views, v) })

	h.set(t, model.FieldEmail, "x")
	h.clock.Advance(time.Second)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	field, ok := views[0].Field(model.FieldEmail)
	if !ok {
		t.Fatalf("email missing from view")
	}
	if !field.Typing || field.Label != "Email" {
		t.Fatalf("unexpected first email view %+v", field)
	}
	field, _ = views[1].Field(model.FieldEmail)
	if field.Typing {
		t.Fatalf("second view should be settled")
	}

	unsubscribe()
	h.set(t, model.FieldEmail, "y")
	if len(views) != 2 {
		t.Fatalf("unsubscribed listener still called")
	}
}

func TestView_ErrorsOnlyAfterSubmit(t *testing.T) {
	h := newHarness(t)
	if h.orch.View().Errors != nil {
		t.Fatalf("errors shown before submit")
	}
	if len(h.orch.ErrorSummary()) == 0 {
		t.Fatalf("expected a non-empty error summary")
	}

	h.submit(t)
	view := h.orch.View()
	if !view.ShowAllErrors {
		t.Fatalf("expected errors shown after submit")
	}
	if diff := cmp.Diff(h.orch.ErrorSummary(), view.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitOutcome_String(t *testing.T) {
	cases := map[form.SubmitOutcome]string{
		form.SubmitAccepted: "accepted",
		form.SubmitInvalid:  "invalid",
		form.SubmitPending:  "pending",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
