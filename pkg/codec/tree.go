package codec

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/haivivi/songbook/pkg/score"
)

// object is a document map together with its path, for error reporting.
type object struct {
	m    map[string]any
	path string
}

func asObject(v any, path string) (object, error) {
	switch m := v.(type) {
	case map[string]any:
		return object{m: m, path: path}, nil
	case map[any]any:
		conv := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return object{}, score.Errorf(score.ErrTypeMismatch, path, "object key %v is not a string", k)
			}
			conv[ks] = val
		}
		return object{m: conv, path: path}, nil
	case nil:
		return object{}, score.Errorf(score.ErrMissingField, path, "null object")
	default:
		return object{}, score.Errorf(score.ErrTypeMismatch, path, "want object, got %s", kindOf(v))
	}
}

func (o object) at(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// get returns the value for key; null counts as absent.
func (o object) get(key string) (any, bool) {
	v, ok := o.m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (o object) has(key string) bool {
	_, ok := o.get(key)
	return ok
}

func (o object) require(key string) (any, error) {
	v, ok := o.get(key)
	if !ok {
		return nil, score.Errorf(score.ErrMissingField, o.at(key), "required key %q is absent", key)
	}
	return v, nil
}

func (o object) str(key string) (string, error) {
	v, err := o.require(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(o.at(key), "string", v)
	}
	return s, nil
}

func (o object) optStr(key, def string) (string, error) {
	if !o.has(key) {
		return def, nil
	}
	return o.str(key)
}

func (o object) number(key string) (float64, error) {
	v, err := o.require(key)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, mismatch(o.at(key), "number", v)
	}
	return f, nil
}

func (o object) integer(key string) (int, error) {
	f, err := o.number(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, score.Errorf(score.ErrTypeMismatch, o.at(key), "want integer, got %v", f)
	}
	return int(f), nil
}

func (o object) optInteger(key string, def int) (int, error) {
	if !o.has(key) {
		return def, nil
	}
	return o.integer(key)
}

func (o object) optBool(key string, def bool) (bool, error) {
	v, ok := o.get(key)
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(o.at(key), "boolean", v)
	}
	return b, nil
}

func (o object) array(key string) ([]any, error) {
	v, err := o.require(key)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, mismatch(o.at(key), "array", v)
	}
	return a, nil
}

func (o object) child(key string) (object, error) {
	v, err := o.require(key)
	if err != nil {
		return object{}, err
	}
	return asObject(v, o.at(key))
}

func mismatch(path, want string, got any) error {
	return score.Errorf(score.ErrTypeMismatch, path, "want %s, got %s", want, kindOf(got))
}

// toFloat accepts every numeric representation the supported decoders
// produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
