package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Code is a violation identifier from the fixed vocabulary.
type Code string

const (
	CodeRequired         Code = "required"
	CodeEmail            Code = "email"
	CodeMinLength        Code = "minLength"
	CodeNoLetter         Code = "noLetter"
	CodeNoSpecialChar    Code = "noSpecialChar"
	CodeRequiredFileType Code = "requiredFileType"
)

// Param keys carried by a requiredFileType violation.
const (
	ParamActualType    = "actualType"
	ParamRequiredTypes = "requiredTypes"
)

// PasswordMinLength is the minimum number of characters a password needs.
const PasswordMinLength = 8

// PasswordSpecialChars lists the characters that satisfy the special
// character requirement.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
)

// Violation is a single failed rule. Params is nil unless the rule carries
// extra detail.
type Violation struct {
	Code   Code
	Params map[string]any
}

// Rule inspects a value and returns its violations. A nil result means valid.
type Rule func(value any) []Violation

// Codes returns the codes of violations in order.
func Codes(violations []Violation) []Code {
	if len(violations) == 0 {
		return nil
	}
	out := make([]Code, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Code)
	}
	return out
}

// Required flags empty strings, nil values and absent files.
func Required() Rule {
	return func(value any) []Violation {
		if isEmpty(value) {
			return []Violation{{Code: CodeRequired}}
		}
		return nil
	}
}

// EmailFormat requires local@domain.tld with no whitespace or extra '@'.
func EmailFormat() Rule {
	return func(value any) []Violation {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}
		if emailPattern.MatchString(s) {
			return nil
		}
		return []Violation{{Code: CodeEmail}}
	}
}

// PasswordPolicy evaluates length, letter and special character requirements
// independently and reports every failure.
func PasswordPolicy() Rule {
	return func(value any) []Violation {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}

		var out []Violation
		if utf8.RuneCountInString(s) < PasswordMinLength {
			out = append(out, Violation{Code: CodeMinLength})
		}
		if !letterPattern.MatchString(s) {
			out = append(out, Violation{Code: CodeNoLetter})
		}
		if !strings.ContainsAny(s, PasswordSpecialChars) {
			out = append(out, Violation{Code: CodeNoSpecialChar})
		}
		return out
	}
}

// RequiredFileType checks the bound file's extension, taken as the text after
// the last '.', lower-cased. Allowed extensions are compared lower-cased too.
func RequiredFileType(allowed ...string) Rule {
	normalized := make([]string, 0, len(allowed))
	for _, ext := range allowed {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			normalized = append(normalized, ext)
		}
	}

	return func(value any) []Violation {
		file, ok := value.(model.FileHandle)
		if !ok || file == nil {
			return nil
		}
		ext := Extension(file.Name())
		for _, candidate := range normalized {
			if candidate == ext {
				return nil
			}
		}
		return []Violation{{
			Code: CodeRequiredFileType,
			Params: map[string]any{
				ParamActualType:    ext,
				ParamRequiredTypes: append([]string(nil), normalized...),
			},
		}}
	}
}

// Extension returns the lower-cased text after the last '.' in name. A name
// without a dot is returned whole, lower-cased.
func Extension(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.ToLower(name)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case model.FileHandle:
		return v == nil
	default:
		return false
	}
}
