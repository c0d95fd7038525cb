package validation

import "github.com/goliatone/go-formflow/pkg/model"

// RuleSet maps each field to the rules applied to it, in evaluation order.
type RuleSet struct {
	rules map[model.FieldName][]Rule
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: make(map[model.FieldName][]Rule)}
}

// DefaultRuleSet wires the registration form: names are required, email and
// password add their format rules, and the CSV file must carry one of the
// allowed extensions.
func DefaultRuleSet(allowedExtensions ...string) *RuleSet {
	if len(allowedExtensions) == 0 {
		allowedExtensions = []string{"csv"}
	}
	return NewRuleSet().
		Add(model.FieldFirstName, Required()).
		Add(model.FieldLastName, Required()).
		Add(model.FieldEmail, Required(), EmailFormat()).
		Add(model.FieldSubscription, Required()).
		Add(model.FieldPassword, Required(), PasswordPolicy()).
		Add(model.FieldCsvFile, Required(), RequiredFileType(allowedExtensions...))
}

// Add appends rules for field and returns the set for chaining.
func (s *RuleSet) Add(field model.FieldName, rules ...Rule) *RuleSet {
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		s.rules[field] = append(s.rules[field], rule)
	}
	return s
}

// Validate runs every rule for field against value and concatenates the
// violations in rule order. Fields without rules are always valid.
func (s *RuleSet) Validate(field model.FieldName, value any) []Violation {
	if s == nil {
		return nil
	}
	var out []Violation
	for _, rule := range s.rules[field] {
		out = append(out, rule(value)...)
	}
	return out
}

// ValidateAll checks every field of values and returns the failing ones.
func (s *RuleSet) ValidateAll(values model.FormValues) map[model.FieldName][]Violation {
	out := make(map[model.FieldName][]Violation)
	for _, field := range model.Fields() {
		if violations := s.Validate(field, values.Value(field)); len(violations) > 0 {
			out[field] = violations
		}
	}
	return out
}
