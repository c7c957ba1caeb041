package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/docstore/internal/ir"
)

// bindArgs converts statement params into values the dialect's driver
// accepts.
//
// Decoded JSON numbers become int64 or float64 so they compare numerically
// against SQLite's untyped indexed columns. Booleans become 1/0. Arrays and
// objects bound to an indexed column are stored as canonical JSON text.
//
// DuckDB columns are all VARCHAR, and a numeric param would make DuckDB cast
// the column instead. Scalars are bound as text there, with numbers in one
// canonical spelling so 1.50 and 1.5 bind alike.
func bindArgs(dialect Dialect, params []any) ([]any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	args := make([]any, len(params))
	for i, p := range params {
		v, err := bindArg(p)
		if err != nil {
			return nil, fmt.Errorf("bind param %d: %w", i, err)
		}
		if dialect == DialectDuckDB {
			v = textArg(v)
		}
		args[i] = v
	}
	return args, nil
}

func bindArg(p any) (any, error) {
	switch v := ir.Normalize(p).(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v, err)
		}
		return f, nil
	case []any, map[string]any, ir.Resource:
		data, err := ir.MarshalCanonical(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v, nil
	}
}

// textArg renders a bound scalar as text. Strings and nil pass through.
func textArg(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10)
	case int8:
		return strconv.FormatInt(int64(n), 10)
	case int16:
		return strconv.FormatInt(int64(n), 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint:
		return strconv.FormatUint(uint64(n), 10)
	case uint8:
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		return strconv.FormatUint(uint64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float32:
		return formatFloat(float64(n))
	case float64:
		return formatFloat(n)
	default:
		return v
	}
}

// formatFloat spells integral floats like integers, so 1e3 and 1000 bind
// to the same text.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
