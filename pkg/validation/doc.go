// Package validation holds the pure, stateless rules applied to form fields
// and the message catalog that turns violation codes into display strings.
//
// Rules never look at UI state. Format rules (email, password, file type)
// ignore empty values so they compose with Required independently: only
// Required reports emptiness.
package validation
