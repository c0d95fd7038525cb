package csvparse

import (
	"math"
	"regexp"
	"strconv"
)

var floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

const maxSafeInteger = 1<<53 - 1

// Coerce converts a raw cell into a bool, float64, nil (empty cell) or the
// original string. Only the literals true/TRUE and false/FALSE count as
// booleans; numbers outside float64's exact integer range stay
// strings so long identifiers keep their digits.
func Coerce(raw string) any {
	switch raw {
	case "":
		return nil
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}

	if !floatPattern.MatchString(raw) {
		return raw
	}
	value, err := strconv.ParseFloat(trimSpaceASCII(raw), 64)
	if err != nil || math.IsInf(value, 0) {
		return raw
	}
	if math.Abs(value) > maxSafeInteger {
		return raw
	}
	return value
}

func trimSpaceASCII(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}
