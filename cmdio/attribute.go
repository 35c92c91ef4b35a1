package cmdio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Domain describes the set of values an attribute accepts.
type Domain interface {
	// Contains reports whether v lies in the domain.
	Contains(v float64) bool

	// String returns a human-readable description, used in ValidationError.
	String() string
}

// Range is a closed numeric interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%v, %v]", r.Min, r.Max)
}

// Enum is an explicit set of accepted values.
type Enum []float64

// Contains reports whether v equals one of the enumerated values.
func (e Enum) Contains(v float64) bool {
	for _, ev := range e {
		if v == ev {
			return true
		}
	}

	return false
}

func (e Enum) String() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// Attribute is the declarative descriptor of one controllable instrument
// quantity: its query and set verbs, value domain and decode rule. The
// instrument packages define their command tables as Attribute values; all
// protocol behavior is driven from these descriptors by the Session.
//
// Verbs are wire-literal, including any leading ':' a set verb carries.
// Query and set verbs of one attribute may differ entirely (some firmware
// uses asymmetric command pairs); an empty verb marks the attribute as
// read-only or write-only.
type Attribute struct {
	// Name identifies the attribute in errors, logs and the cache.
	Name string

	// QueryVerb is the full query command, e.g. "TEMP?". Empty if the
	// attribute is write-only.
	QueryVerb string

	// SetVerb is the set command verb, e.g. ":SETT". The argument is
	// appended after a single space. Empty if the attribute is read-only.
	SetVerb string

	// Decode selects how query replies are converted.
	Decode DecodeRule

	// Domain bounds the values a setter accepts. A nil Domain disables
	// validation.
	Domain Domain

	// Scale is applied to decoded numeric replies (e.g. 1e-3 for a reply in
	// milliseconds exposed in seconds). Zero means no scaling.
	Scale float64

	// Integer marks attributes whose values are integral. Setters reject
	// non-integral values and format the argument without a decimal point.
	Integer bool

	// RetryEmpty enables the retry-once policy for empty query replies.
	// Attributes without it surface an empty reply as a CommunicationError.
	RetryEmpty bool
}

// Validate checks v against the attribute's domain. It is local and
// synchronous and never issues hardware I/O. Setters call it before any
// bytes are sent; non-session drivers (the liquid-crystal controller) share
// it so every instrument rejects values the same way.
func (a *Attribute) Validate(v float64) error {
	if a.Integer && v != math.Trunc(v) {
		return &ValidationError{Attribute: a.Name, Value: v, Domain: "integer " + a.domainString()}
	}

	if a.Domain != nil && !a.Domain.Contains(v) {
		return &ValidationError{Attribute: a.Name, Value: v, Domain: a.domainString()}
	}

	return nil
}

func (a *Attribute) domainString() string {
	if a.Domain == nil {
		return "(unbounded)"
	}

	return a.Domain.String()
}

// formatArg renders v as the command argument. Float arguments always carry
// a decimal point ("2.0", not "2"), matching what the firmware is exercised
// against.
func (a *Attribute) formatArg(v float64) string {
	if a.Integer {
		return strconv.FormatInt(int64(v), 10)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// scale applies the attribute's scale factor to a decoded numeric value.
func (a *Attribute) scale(v float64) float64 {
	if a.Scale == 0 {
		return v
	}

	return v * a.Scale
}
