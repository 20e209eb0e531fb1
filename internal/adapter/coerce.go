package adapter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// stringField reads a textual field. Numbers and booleans are accepted and
// formatted, since the server is not consistent about quoting.
func stringField(m map[string]any, name string) (string, error) {
	switch v := m[name].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("expected text, got %T", v)
	}
}

func requiredString(m map[string]any, name string) (string, error) {
	s, err := stringField(m, name)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errMissing
	}
	return s, nil
}

// firstString returns the first non-empty field among names.
func firstString(m map[string]any, names ...string) (string, string, error) {
	for _, name := range names {
		s, err := stringField(m, name)
		if err != nil {
			return "", name, err
		}
		if s != "" {
			return s, name, nil
		}
	}
	return "", "", nil
}

// intField reads an integral field; absent values read as zero.
func intField(m map[string]any, name string) (int, error) {
	switch v := m[name].(type) {
	case nil:
		return 0, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", v.String())
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func boolField(m map[string]any, name string) (bool, error) {
	switch v := m[name].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("expected a boolean, got %q", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

// numberField reads a numeric field. ok is false when the field is absent.
func numberField(m map[string]any, name string) (value float64, ok bool, err error) {
	switch v := m[name].(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("expected a number, got %q", v.String())
		}
		return f, true, nil
	case string:
		if v == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false, fmt.Errorf("expected a number, got %q", v)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("expected a number, got %T", v)
	}
}

// objectList reads a field holding an array of JSON objects.
func objectList(m map[string]any, name string) ([]map[string]any, error) {
	switch v := m[name].(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, e := range v {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d: expected an object, got %T", i, e)
			}
			out = append(out, obj)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}
