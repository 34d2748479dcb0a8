package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError,
		GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "inner"))))
}

func TestExit_PrintsUnprintedErrorsOnce(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, ExitSuccess, Exit(nil, &buf))
	assert.Empty(t, buf.String())

	code := Exit(NewExitError(ExitCommandError, "no endpoint configured"), &buf)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, buf.String(), "no endpoint configured")

	// Already rendered by a formatter: stays silent.
	buf.Reset()
	code = Exit(&ExitError{Code: ExitFailure, Message: "refused", Printed: true}, &buf)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"queued": 2}, "ignored in json mode"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	buf.Reset()
	require.NoError(t, f.Error("offline", "endpoint unreachable"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "offline", resp.Error.Code)
}

func TestOutputFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success(nil, "Synced. Pushed 2, 0 pending."))
	assert.Equal(t, "Synced. Pushed 2, 0 pending.\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error("forbidden", "not permitted for this role"))
	assert.Equal(t, "Error [forbidden]: not permitted for this role\n", buf.String())
}

func TestMoney_IndianGrouping(t *testing.T) {
	assert.Equal(t, "₹500", Money(500))
	assert.Equal(t, "₹1,500", Money(1500))
	assert.Equal(t, "₹12,34,567", Money(1234567))
}
