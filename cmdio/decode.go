package cmdio

import (
	"errors"
	"strconv"
	"strings"
)

// DecodeRule selects how a reply line is converted to a value after the
// terminator and surrounding whitespace have been stripped.
type DecodeRule int

const (
	// DecodeInt parses the reply as a base-10 integer.
	DecodeInt DecodeRule = iota

	// DecodeFloat parses the reply as a decimal number. Integer-looking
	// replies are accepted: some firmware quantizes float readbacks to
	// integer degrees (a documented quirk, not a parse failure).
	DecodeFloat

	// DecodeToken returns the trimmed reply unchanged. Used for status and
	// identification strings.
	DecodeToken

	// DecodeUnitFloat parses the leading number of a reply that carries a
	// trailing unit text, e.g. "1000 ms".
	DecodeUnitFloat
)

func (r DecodeRule) String() string {
	switch r {
	case DecodeInt:
		return "integer"
	case DecodeFloat:
		return "float"
	case DecodeToken:
		return "token"
	case DecodeUnitFloat:
		return "float with unit suffix"
	default:
		return "unknown"
	}
}

// decodeReply strips the terminator and surrounding whitespace from a raw
// reply line and converts it according to rule. The returned value is an int
// for DecodeInt, a float64 for DecodeFloat and DecodeUnitFloat, and a string
// for DecodeToken.
//
// An empty line is not a parse failure; it is reported as ErrEmptyReply so
// the session can apply the per-attribute retry policy.
func decodeReply(raw []byte, rule DecodeRule) (any, error) {
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return nil, ErrEmptyReply
	}

	switch rule {
	case DecodeInt:
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, &ParseError{Raw: line, Rule: rule, Err: err}
		}

		return v, nil

	case DecodeFloat:
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, &ParseError{Raw: line, Rule: rule, Err: err}
		}

		return v, nil

	case DecodeToken:
		return line, nil

	case DecodeUnitFloat:
		num := numericPrefix(line)
		if num == "" {
			return nil, &ParseError{Raw: line, Rule: rule, Err: errors.New("no leading number")}
		}

		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, &ParseError{Raw: line, Rule: rule, Err: err}
		}

		return v, nil

	default:
		return nil, &ParseError{Raw: line, Rule: rule, Err: errors.New("unknown decode rule")}
	}
}

// numericPrefix returns the longest prefix of s that looks like a decimal
// number: an optional sign, digits, and at most one decimal point.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	sawDigit := false
	sawDot := false
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot:
			sawDot = true
		default:
			goto done
		}
		i++
	}

done:
	if !sawDigit {
		return ""
	}

	return s[:i]
}
