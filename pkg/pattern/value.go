package pattern

import (
	"strconv"

	"github.com/vango-dev/deeplink/pkg/schema"
)

// Value is a typed route argument. Its kind is always one of the primitive
// schema kinds.
type Value struct {
	kind schema.Kind
	str  string
	num  int64
	flag bool
}

// StringValue returns a String value.
func StringValue(s string) Value { return Value{kind: schema.String, str: s} }

// IntValue returns an Int value.
func IntValue(n int32) Value { return Value{kind: schema.Int, num: int64(n)} }

// LongValue returns a Long value.
func LongValue(n int64) Value { return Value{kind: schema.Long, num: n} }

// BoolValue returns a Bool value.
func BoolValue(b bool) Value { return Value{kind: schema.Bool, flag: b} }

// Kind returns the value's kind.
func (v Value) Kind() schema.Kind { return v.kind }

// Int returns the value of an Int.
func (v Value) Int() int32 { return int32(v.num) }

// Long returns the value of a Long.
func (v Value) Long() int64 { return v.num }

// Bool returns the value of a Bool.
func (v Value) Bool() bool { return v.flag }

// String returns the canonical text form of the value, which is also what
// the value's parser accepts.
func (v Value) String() string {
	switch v.kind {
	case schema.String:
		return v.str
	case schema.Int, schema.Long:
		return strconv.FormatInt(v.num, 10)
	case schema.Bool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Parser converts raw URL text into a typed value. It reports false when
// the text is not a valid encoding of the kind.
type Parser func(raw string) (Value, bool)

var parsers = map[schema.Kind]Parser{
	schema.String: parseString,
	schema.Int:    parseInt,
	schema.Long:   parseLong,
	schema.Bool:   parseBool,
}

// ParserFor returns the parser bound to a field kind.
func ParserFor(kind schema.Kind) (Parser, bool) {
	p, ok := parsers[kind]
	return p, ok
}

func parseString(raw string) (Value, bool) {
	return StringValue(raw), true
}

func parseInt(raw string) (Value, bool) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return Value{}, false
	}
	return IntValue(int32(n)), true
}

func parseLong(raw string) (Value, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return LongValue(n), true
}

// parseBool is stricter than strconv.ParseBool: only the literal tokens
// "true" and "false" are accepted.
func parseBool(raw string) (Value, bool) {
	switch raw {
	case "true":
		return BoolValue(true), true
	case "false":
		return BoolValue(false), true
	default:
		return Value{}, false
	}
}
