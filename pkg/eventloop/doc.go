// Package eventloop provides the single event-handling context the form engine
// runs on. Every mutation of form state happens inside a task executed by a
// Scheduler: user events are posted to it, debounce timers fire on it, and
// asynchronous work such as CSV ingestion posts its continuation back to it.
//
// Loop is the production implementation backed by one goroutine. Manual is a
// deterministic virtual clock used by tests.
package eventloop
