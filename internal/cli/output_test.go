package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarkusFox/coco-object-detection/internal/dataset"
)

func TestExitErrorCodes(t *testing.T) {
	err := NewExitError(ExitCommandError, "bad input")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "bad input", err.Error())

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ExitError{Code: ExitFailure, Message: "outer", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "outer: inner", err.Error())
}

func TestFormatterSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]any{"images": 3}, "run-1"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.TraceID)
	assert.Nil(t, resp.Error)
}

func TestFormatterErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("BAD_SPLIT", "fractions must sum to 1", "run-2"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_SPLIT", resp.Error.Code)
}

func TestHandleOpErrorOutputExistsIsClean(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	err := handleOpError(f, "run-3", &dataset.PrepError{
		Code:    dataset.ErrCodeOutputExists,
		Message: "output directory already exists",
		Path:    "/tmp/out",
	})

	assert.NoError(t, err, "collision is a no-op, not a failure")
	assert.Contains(t, buf.String(), "already exists")
}

func TestHandleOpErrorPreconditionExitsTwo(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	err := handleOpError(f, "run-4", &dataset.PrepError{
		Code:    dataset.ErrCodeBadSplit,
		Message: "fractions must sum to 1",
	})

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "BAD_SPLIT")
}

func TestHandleOpErrorCopyFailureExitsOne(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	err := handleOpError(f, "run-5", &dataset.PrepError{
		Code:    dataset.ErrCodeCopyFailed,
		Message: "copy image",
		Path:    "ds/a.png",
	})

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
