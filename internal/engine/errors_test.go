package engine

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("no such table: users")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", invalidArgument("query", "users", "bad sort key %q", "a b"), `INVALID_ARGUMENT: query users: bad sort key "a b"`},
		{"cause only", executionError("get", "users", "", cause), "ENGINE_EXECUTION: get users: no such table: users"},
		{"message and cause", executionError("query", "users", "batch", cause), "ENGINE_EXECUTION: query users: batch: no such table: users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fmt.Errorf("outer: %w", executionError("save", "users", "", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsExecutionError(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsInvalidArgument(err))
}

func TestError_Status(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, notFound("get", "users", "u1").Status())
	assert.Equal(t, http.StatusBadRequest, invalidArgument("query", "users", "x").Status())
	assert.Equal(t, http.StatusInternalServerError, executionError("query", "users", "", errors.New("x")).Status())
}
