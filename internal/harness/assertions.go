package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/docstore/internal/engine"
	"github.com/roach88/docstore/internal/ir"
)

// checkStep compares a step's outcome with its expectations and returns
// one message per mismatch.
func checkStep(step Step, ids []any, err error) []string {
	var msgs []string

	if step.ExpectError != "" {
		want := errorCodes[step.ExpectError]
		var e *engine.Error
		switch {
		case err == nil:
			msgs = append(msgs, fmt.Sprintf("expected %s error, got success", want))
		case !errors.As(err, &e) || e.Code != want:
			msgs = append(msgs, fmt.Sprintf("expected %s error, got %v", want, err))
		}
		return msgs
	}

	if err != nil {
		return append(msgs, fmt.Sprintf("unexpected error: %v", err))
	}

	if step.ExpectIDs != nil && !equalIDs(step.ExpectIDs, ids) {
		msgs = append(msgs, fmt.Sprintf("expected ids %v, got %v", step.ExpectIDs, ids))
	}
	if step.ExpectCount != nil && *step.ExpectCount != len(ids) {
		msgs = append(msgs, fmt.Sprintf("expected %d records, got %d", *step.ExpectCount, len(ids)))
	}
	return msgs
}

// equalIDs compares id lists in order. Numeric ids compare by value, so a
// YAML 1 matches a decoded json.Number 1 but not the string "1".
func equalIDs(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if !ir.Equal(want[i], got[i]) {
			return false
		}
	}
	return true
}
