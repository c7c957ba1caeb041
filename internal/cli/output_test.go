package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/engine"
	"github.com/roach88/docstore/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "query failed", map[string]string{"table": "users"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "query failed", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E001", "query failed", map[string]string{"file": "docstore.yaml"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]: query failed")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_RecordsText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	rows := []ir.Resource{
		{"id": "u1", "city": "NYC", "age": json.Number("30")},
		{"id": "u2"},
	}
	require.NoError(t, formatter.Records(rows))
	assert.Equal(t, "{\"age\":30,\"city\":\"NYC\",\"id\":\"u1\"}\n{\"id\":\"u2\"}\n", buf.String())
}

func TestOutputFormatter_RecordsJSONEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Records(nil))
	assert.JSONEq(t, `{"status":"ok","data":[]}`, buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "users")

			assert.Empty(t, out.String(), "diagnostics never reach stdout")
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Processing users")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOperationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		exitCode int
		errCode  string
	}{
		{"not found", &engine.Error{Code: engine.ErrCodeNotFound}, ExitFailure, ErrCodeNotFound},
		{"invalid argument", fmt.Errorf("wrapped: %w", &engine.Error{Code: engine.ErrCodeInvalidArgument}), ExitCommandError, ErrCodeInvalidArg},
		{"engine", &engine.Error{Code: engine.ErrCodeEngineExecution}, ExitFailure, ErrCodeEngine},
		{"other", errors.New("boom"), ExitFailure, ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := operationError("op failed", tt.err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Equal(t, tt.errCode, GetErrCode(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGetExitCode_PlainError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("x")))
	assert.Equal(t, ErrCodeGeneric, GetErrCode(errors.New("x")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
}
