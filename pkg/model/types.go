package model

import (
	"errors"
	"fmt"
	"io"
	"strings"

	internalmodel "github.com/goliatone/go-formflow/internal/model"
)

// FieldName identifies a form control.
type FieldName string

const (
	FieldFirstName    FieldName = "firstName"
	FieldLastName     FieldName = "lastName"
	FieldEmail        FieldName = "email"
	FieldSubscription FieldName = "subscription"
	FieldPassword     FieldName = "password"
	FieldCsvFile      FieldName = "csvFile"
)

var fieldOrder = []FieldName{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldSubscription,
	FieldPassword,
	FieldCsvFile,
}

// Fields returns every form field in display order.
func Fields() []FieldName {
	return append([]FieldName(nil), fieldOrder...)
}

// Valid reports whether the name belongs to the form.
func (f FieldName) Valid() bool {
	for _, candidate := range fieldOrder {
		if candidate == f {
			return true
		}
	}
	return false
}

// Label returns a human-friendly label ("First Name").
func (f FieldName) Label() string {
	return internalmodel.DefaultLabeler(string(f))
}

// ErrInvalidSubscription is returned when a tier outside the enumeration is
// supplied.
var ErrInvalidSubscription = errors.New("model: invalid subscription tier")

// SubscriptionTier enumerates the available plans.
type SubscriptionTier string

const (
	TierBasic    SubscriptionTier = "Basic"
	TierAdvanced SubscriptionTier = "Advanced"
	TierPro      SubscriptionTier = "Pro"
)

// DefaultSubscriptionTier is preselected on a fresh form.
const DefaultSubscriptionTier = TierAdvanced

// SubscriptionTiers lists the tiers in display order.
func SubscriptionTiers() []SubscriptionTier {
	return []SubscriptionTier{TierBasic, TierAdvanced, TierPro}
}

// ParseSubscriptionTier matches raw input against the enumeration. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseSubscriptionTier(raw string) (SubscriptionTier, error) {
	trimmed := strings.TrimSpace(raw)
	for _, tier := range SubscriptionTiers() {
		if strings.EqualFold(string(tier), trimmed) {
			return tier, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSubscription, raw)
}

// FileHandle is the opaque reference produced by a file-selection event.
// Only CSV ingestion opens it; everything else reads the name.
type FileHandle interface {
	Name() string
	Open() (io.ReadCloser, error)
}
