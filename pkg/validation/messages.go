package validation

import "github.com/goliatone/go-formflow/pkg/model"

// Catalog maps field → code → display message.
type Catalog map[model.FieldName]map[Code]string

// DefaultCatalog returns the built-in English messages.
func DefaultCatalog() Catalog {
	return Catalog{
		model.FieldFirstName: {
			CodeRequired: "First name is required",
		},
		model.FieldLastName: {
			CodeRequired: "Last name is required",
		},
		model.FieldEmail: {
			CodeRequired: "Email is required",
			CodeEmail:    "Email is not valid",
		},
		model.FieldSubscription: {
			CodeRequired: "Subscription is required",
		},
		model.FieldPassword: {
			CodeRequired:      "Password is required",
			CodeMinLength:     "Password must be at least 8 characters",
			CodeNoLetter:      "Password must contain at least one letter",
			CodeNoSpecialChar: "Password must contain at least one special character",
		},
		model.FieldCsvFile: {
			CodeRequired:         "CSV file is required",
			CodeRequiredFileType: "Please upload a CSV file",
		},
	}
}

// Message returns the text for a field/code pair, or "" when the pair is not
// in the catalog.
func (c Catalog) Message(field model.FieldName, code Code) string {
	if c == nil {
		return ""
	}
	return c[field][code]
}

// FirstMessage returns the message of the first violation, or "".
func (c Catalog) FirstMessage(field model.FieldName, violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	return c.Message(field, violations[0].Code)
}

// With returns a copy of c with overrides applied. Empty override strings are
// ignored so a partial config file cannot blank out a message.
func (c Catalog) With(overrides map[string]map[string]string) Catalog {
	out := make(Catalog, len(c))
	for field, messages := range c {
		copied := make(map[Code]string, len(messages))
		for code, msg := range messages {
			copied[code] = msg
		}
		out[field] = copied
	}
	for field, messages := range overrides {
		name := model.FieldName(field)
		for code, msg := range messages {
			if msg == "" {
				continue
			}
			if out[name] == nil {
				out[name] = make(map[Code]string)
			}
			out[name][Code(code)] = msg
		}
	}
	return out
}
