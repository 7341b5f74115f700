// ABOUTME: Validation and coercion of raw JSON argument maps against a Schema.
// ABOUTME: Produces the Args record handed to tool handlers.

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// ErrValidation wraps every argument validation failure.
var ErrValidation = errors.New("invalid arguments")

// Args is a validated, type-coerced argument record.
type Args map[string]any

// Validate checks raw arguments against the schema and returns the coerced
// record. Unknown fields are dropped. A null value counts as absent.
func (s *Schema) Validate(raw map[string]any) (Args, error) {
	args := make(Args, len(s.Fields()))
	for _, f := range s.Fields() {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			if f.Required {
				return nil, fmt.Errorf("%w: missing required field %q", ErrValidation, f.Name)
			}
			if f.Default != nil {
				args[f.Name] = f.Default
			}
			continue
		}

		coerced, err := coerce(f.Type, f.Items, v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrValidation, f.Name, err)
		}
		if len(f.Enum) > 0 {
			str, _ := coerced.(string)
			if !slices.Contains(f.Enum, str) {
				return nil, fmt.Errorf("%w: field %q: must be one of %v, got %q", ErrValidation, f.Name, f.Enum, str)
			}
		}
		args[f.Name] = coerced
	}
	return args, nil
}

// coerce converts a decoded JSON value to the Go representation of t.
func coerce(t Type, items Type, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInteger:
		if n, ok := toInt(v); ok {
			return n, nil
		}
	case TypeNumber:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeArray:
		list, ok := v.([]any)
		if !ok {
			break
		}
		if items == "" {
			return list, nil
		}
		out := make([]any, len(list))
		for i, item := range list {
			c, err := coerce(items, "", item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case TypeObject:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
	default:
		return nil, fmt.Errorf("unsupported schema type %q", t)
	}
	return nil, fmt.Errorf("expected %s, got %s", t, typeOf(v))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if !isWholeInt(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// isWholeInt reports whether f is integral and fits in an int without
// wrapping. float64(math.MaxInt) rounds up to 2^63, so the upper bound is
// exclusive.
func isWholeInt(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt && f < math.MaxInt
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// typeOf names the JSON type of a decoded value for error messages.
func typeOf(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if isWholeInt(n) {
			return "integer"
		}
		return "number"
	case int, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Decode copies the validated arguments into dst, a pointer to a struct
// whose fields carry json tags.
func (a Args) Decode(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  dst,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(a)); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}
