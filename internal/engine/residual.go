package engine

import (
	"regexp"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// matchesResidual reports whether r satisfies every non-indexed filter key.
// The filter must already be normalized.
func matchesResidual(r ir.Resource, residual *queryir.Filter) bool {
	for _, key := range residual.Keys() {
		got, ok := r[key]
		if !ok {
			return false
		}
		want, _ := residual.Get(key)
		if !matchValue(ir.Normalize(got), want) {
			return false
		}
	}
	return true
}

// matchValue applies one filter value to one decoded field:
// patterns as SQL LIKE '%p%' or by regexp, arrays by membership, the rest
// by deep equality.
func matchValue(got, want any) bool {
	switch w := want.(type) {
	case queryir.Pattern:
		s, ok := got.(string)
		return ok && likeContains(s, string(w))
	case *regexp.Regexp:
		s, ok := got.(string)
		return ok && w.MatchString(s)
	case []any:
		for _, elem := range w {
			if ir.Equal(got, elem) {
				return true
			}
		}
		return false
	default:
		return ir.Equal(got, want)
	}
}

// filterResidual keeps the rows that satisfy residual, preserving order.
func filterResidual(rows []ir.Resource, residual *queryir.Filter) []ir.Resource {
	if residual.Empty() {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if matchesResidual(r, residual) {
			out = append(out, r)
		}
	}
	return out
}

// likeContains matches s against '%p%' the way SQLite's LIKE does: % is any
// run of characters, _ is exactly one, ASCII letters ignore case.
func likeContains(s, p string) bool {
	return likeMatch([]rune(s), []rune("%"+p+"%"))
}

func likeMatch(s, p []rune) bool {
	si, pi := 0, 0
	star, mark := -1, 0
	for si < len(s) {
		switch {
		case pi < len(p) && p[pi] == '%':
			star, mark = pi, si
			pi++
		case pi < len(p) && (p[pi] == '_' || foldASCII(p[pi]) == foldASCII(s[si])):
			si++
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}

func foldASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
