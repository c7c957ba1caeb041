package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// FilterFlags are the filter flags shared by query and rm.
type FilterFlags struct {
	Where      []string // k=v, v parsed as JSON with a string fallback
	Like       []string // k=pattern
	FilterJSON string   // JSON object, applied first
}

func (f *FilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.Where, "where", nil, "filter key=value (value parsed as JSON, else string); repeatable")
	cmd.Flags().StringArrayVar(&f.Like, "like", nil, "substring filter key=pattern; repeatable")
	cmd.Flags().StringVar(&f.FilterJSON, "filter-json", "", "filter as a JSON object")
}

// Build assembles the filter: --filter-json keys in sorted order, then
// --where, then --like, each in flag order.
func (f *FilterFlags) Build() (*queryir.Filter, error) {
	filter := queryir.NewFilter()

	if f.FilterJSON != "" {
		v, err := ir.DecodeValue([]byte(f.FilterJSON))
		if err != nil {
			return nil, fmt.Errorf("--filter-json: %w", err)
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("--filter-json: must be a JSON object")
		}
		for _, k := range ir.SortedKeys(obj) {
			filter.And(k, obj[k])
		}
	}

	for _, w := range f.Where {
		key, raw, err := splitAssignment("--where", w)
		if err != nil {
			return nil, err
		}
		filter.And(key, parseValue(raw))
	}

	for _, l := range f.Like {
		key, pattern, err := splitAssignment("--like", l)
		if err != nil {
			return nil, err
		}
		filter.And(key, queryir.Like(pattern))
	}

	return filter, nil
}

func splitAssignment(flag, s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("%s %q: expected key=value", flag, s)
	}
	return key, value, nil
}

// parseValue reads raw as JSON so numbers, booleans, and arrays keep their
// type. Anything that is not valid JSON is taken as a plain string.
func parseValue(raw string) any {
	v, err := ir.DecodeValue([]byte(raw))
	if err != nil {
		return raw
	}
	return v
}

// parseSort reads key or key:desc (also key:asc) specs.
func parseSort(specs []string) ([]queryir.SortKey, error) {
	keys := make([]queryir.SortKey, 0, len(specs))
	for _, spec := range specs {
		key, dir, _ := strings.Cut(spec, ":")
		sk := queryir.SortKey{Key: key}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			sk.Desc = true
		default:
			return nil, fmt.Errorf("--sort %q: direction must be asc or desc", spec)
		}
		keys = append(keys, sk)
	}
	return keys, nil
}

// readResource reads one JSON object from the named file, or from stdin
// when the name is "-" or absent.
func readResource(cmd *cobra.Command, args []string) (ir.Resource, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "failed to read record", Err: err}
	}

	r, err := ir.DecodePayload(string(data))
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInput, Message: "invalid record", Err: err}
	}
	return r, nil
}

// decodeRecords parses a file holding a JSON array of objects, a single
// object, or newline-delimited objects.
func decodeRecords(data []byte) ([]ir.Resource, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		v, err := ir.DecodeValue([]byte(trimmed))
		if err != nil {
			return nil, err
		}
		arr, _ := v.([]any)
		out := make([]ir.Resource, 0, len(arr))
		for i, elem := range arr {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d: not a JSON object", i)
			}
			out = append(out, ir.Resource(obj))
		}
		return out, nil
	}

	if r, err := ir.DecodePayload(trimmed); err == nil {
		return []ir.Resource{r}, nil
	}

	var out []ir.Resource
	for i, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r, err := ir.DecodePayload(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}
