package ir

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

// Normalize canonicalizes a filter or field value before it reaches SQL or
// in-memory comparison. Booleans become 1/0 and typed slices become []any.
// Normalize is idempotent.
func Normalize(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return 1
		}
		return 0
	case []any:
		return val
	case nil, string, json.Number, map[string]any:
		return val
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return v
}

// IsArray reports whether a normalized value is an array filter.
func IsArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

// Equal compares two decoded or normalized values structurally.
//
// Numbers compare by value regardless of Go type (json.Number, int, float64).
// Objects ignore key order; arrays are order sensitive.
func Equal(a, b any) bool {
	a, b = Normalize(a), Normalize(b)

	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return false
		}
		if ai, aInt := toInt(a); aInt {
			if bi, bInt := toInt(b); bInt {
				return ai == bi
			}
		}
		return af == bf
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := asObject(b)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, ae := range av {
			be, present := bv[k]
			if !present || !Equal(ae, be) {
				return false
			}
		}
		return true
	case Resource:
		return Equal(map[string]any(av), b)
	}
	return reflect.DeepEqual(a, b)
}

func asObject(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Resource:
		return map[string]any(val), true
	}
	return nil, false
}

// toFloat converts any numeric representation to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// toInt reports the exact integer value of v when it has one.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), true
		}
		return 0, false
	case float32:
		return toInt(float64(n))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}
