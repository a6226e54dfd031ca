package vdom

import "strconv"

// ValueKind discriminates the scalar payload carried by a Value.
type ValueKind uint8

const (
	ValueString ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
)

// Value is a typed scalar attribute payload. Anything that isn't a
// string, bool, int or float coerces to its string form on render; the
// coercion never fails (see AttributeValueCoercion in package runtime
// for the one case, numeric parsing, where it can).
type Value struct {
	Kind ValueKind
	Str  string
	B    bool
	I    int64
	F    float64
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, B: b} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: ValueInt, I: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, F: f} }

// String renders the value the way it would appear as an HTML attribute
// or text fragment.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueBool:
		if v.B {
			return "true"
		}
		return "false"
	case ValueInt:
		return strconv.FormatInt(v.I, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.F, 'f', -1, 64)
	default:
		return ""
	}
}

// Bool reports the value coerced to bool. A non-empty, non-"false",
// non-"0" string is true; this mirrors how boolean attributes like
// checked/open/disabled are read back off Props-shaped user input.
func (v Value) Bool() bool {
	switch v.Kind {
	case ValueBool:
		return v.B
	case ValueString:
		return v.Str != "" && v.Str != "false" && v.Str != "0"
	case ValueInt:
		return v.I != 0
	case ValueFloat:
		return v.F != 0
	default:
		return false
	}
}

// Equal compares two values for the listener/attribute diff. Values of
// differing Kind are never equal even if their string forms coincide;
// the differ only cares whether the declared value changed, not its
// eventual rendering.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueString:
		return v.Str == o.Str
	case ValueBool:
		return v.B == o.B
	case ValueInt:
		return v.I == o.I
	case ValueFloat:
		return v.F == o.F
	default:
		return true
	}
}
