package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrUnsupportedRawValue is returned when a value cannot be represented as a RawValue.
var ErrUnsupportedRawValue = errors.New("unsupported raw value")

// RawKind is the variant held by a RawValue.
type RawKind uint8

const (
	// KindNull is the absent value.
	KindNull RawKind = iota
	// KindString is a text value.
	KindString
	// KindNumber is a numeric value.
	KindNumber
	// KindBool is a boolean value.
	KindBool
	// KindList is an ordered list of values.
	KindList
	// KindMap is a string-keyed map of values.
	KindMap
)

// String returns the name of the kind.
func (k RawKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// RawValue is one field of an upstream issue kept verbatim.
// Exactly one variant is set, selected by Kind.
type RawValue struct {
	kind RawKind
	str  string
	num  float64
	b    bool
	list []RawValue
	m    map[string]RawValue
}

// Null returns the absent value.
func Null() RawValue { return RawValue{} }

// StringValue wraps a text value.
func StringValue(s string) RawValue { return RawValue{kind: KindString, str: s} }

// NumberValue wraps a numeric value.
func NumberValue(f float64) RawValue { return RawValue{kind: KindNumber, num: f} }

// BoolValue wraps a boolean value.
func BoolValue(b bool) RawValue { return RawValue{kind: KindBool, b: b} }

// ListValue wraps an ordered list.
func ListValue(values ...RawValue) RawValue {
	return RawValue{kind: KindList, list: slices.Clone(values)}
}

// MapValue wraps a string-keyed map.
func MapValue(m map[string]RawValue) RawValue {
	cp := make(map[string]RawValue, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return RawValue{kind: KindMap, m: cp}
}

// Kind returns the variant held by v.
func (v RawValue) Kind() RawKind { return v.kind }

// Str returns the text variant.
func (v RawValue) Str() (string, bool) { return v.str, v.kind == KindString }

// Number returns the numeric variant.
func (v RawValue) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean variant.
func (v RawValue) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// List returns a copy of the list variant.
func (v RawValue) List() ([]RawValue, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// Map returns a copy of the map variant.
func (v RawValue) Map() (map[string]RawValue, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	cp := make(map[string]RawValue, len(v.m))
	for k, e := range v.m {
		cp[k] = e
	}
	return cp, true
}

// String renders the value for display in a spreadsheet cell or a table.
// Lists are comma separated and maps are rendered as sorted key=value pairs.
func (v RawValue) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return strings.Join(parts, ", ")
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.m[k].String()
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content.
func (v RawValue) Equal(o RawValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		return slices.EqualFunc(v.list, o.list, RawValue.Equal)
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, e := range v.m {
			oe, ok := o.m[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Interface converts the value back to the generic Go representation used
// by encoding/json.
func (v RawValue) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts a decoded JSON value into a RawValue.
func FromAny(x any) (RawValue, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case RawValue:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: number %q", ErrUnsupportedRawValue, t.String())
		}
		return NumberValue(f), nil
	case []string:
		out := make([]RawValue, len(t))
		for i, s := range t {
			out[i] = StringValue(s)
		}
		return RawValue{kind: KindList, list: out}, nil
	case []any:
		out := make([]RawValue, len(t))
		for i, e := range t {
			rv, err := FromAny(e)
			if err != nil {
				return Null(), err
			}
			out[i] = rv
		}
		return RawValue{kind: KindList, list: out}, nil
	case map[string]any:
		out := make(map[string]RawValue, len(t))
		for k, e := range t {
			rv, err := FromAny(e)
			if err != nil {
				return Null(), err
			}
			out[k] = rv
		}
		return RawValue{kind: KindMap, m: out}, nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedRawValue, x)
	}
}

// MarshalJSON implements json.Marshaler.
func (v RawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	rv, err := FromAny(x)
	if err != nil {
		return err
	}
	*v = rv
	return nil
}

// RawIssue is an upstream issue kept field by field, without interpretation.
type RawIssue map[string]RawValue

// Keys returns the field names of the issue in lexicographic order.
func (r RawIssue) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the display text of a field, or an empty string when absent.
func (r RawIssue) Get(field string) string {
	return r[field].String()
}

// RawIssueFromMap converts a decoded JSON object into a RawIssue.
func RawIssueFromMap(m map[string]any) (RawIssue, error) {
	out := make(RawIssue, len(m))
	for k, x := range m {
		rv, err := FromAny(x)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

// RawFieldNames returns the union of field names across issues, sorted.
func RawFieldNames(issues []RawIssue) []string {
	seen := make(map[string]struct{})
	for _, r := range issues {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

