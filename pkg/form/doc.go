// Package form implements the orchestrator behind the registration form.
//
// An Orchestrator owns the in-progress field values, per-field dirty and
// typing state, the rows of the selected CSV file, and the submitted and
// show-all-errors flags. It composes the validation rules, the typing tracker
// and the CSV pipeline, decides which error message each field shows, and on
// a valid submit publishes a frozen snapshot and asks to navigate to the
// results route.
//
// Every method must be called from the scheduler's context. The only work
// that leaves that context is the CSV read, whose result is posted back and
// dropped if the orchestrator was cleared or closed in the meantime.
package form
