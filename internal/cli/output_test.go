package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Success(t *testing.T) {
	summary := ExportSummary{File: "acme-1.2.3.json", Roles: 3, Forms: 2, Resources: 1}

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, (&OutputFormatter{Format: "json", Writer: buf}).Success(summary))

		var resp struct {
			Status string        `json:"status"`
			Data   ExportSummary `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, summary, resp.Data)
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, (&OutputFormatter{Format: "text", Writer: buf}).Success(summary))
		assert.Equal(t, "✓ Exported acme-1.2.3.json (3 roles, 2 forms, 1 resources, 0 actions, 0 revisions, 0 reports)\n", buf.String())
	})
}

func TestOutputFormatter_Error(t *testing.T) {
	details := map[string]string{"stage": "forms"}

	tests := []struct {
		name    string
		format  string
		verbose bool
		want    []string
		notWant []string
	}{
		{"text", "text", false, []string{"Error [E004]: query forms: disk I/O error"}, []string{"Details:"}},
		{"text_verbose", "text", true, []string{"Error [E004]", "Details: map[stage:forms]"}, nil},
		{"json", "json", false, []string{`"status":"error"`, `"code":"E004"`, `"details":{"stage":"forms"}`}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}
			require.NoError(t, f.Error(ErrCodeExport, "query forms: disk I/O error", details))

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: stdout, ErrWriter: stderr, Verbose: true}

	f.VerboseLog("Hooks: %v", []string{"reports-enabled"})
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Hooks: [reports-enabled]\n", stderr.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.NotContains(t, stderr.String(), "hidden")
}

func TestNewFormatter(t *testing.T) {
	cmd := &cobra.Command{}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := newFormatter(&RootOptions{Format: "json", Verbose: true}, cmd)
	assert.Equal(t, "json", f.Format)
	assert.True(t, f.Verbose)
	assert.Same(t, stdout, f.Writer)
	assert.Same(t, stderr, f.ErrWriter)
}

func TestExitCodes(t *testing.T) {
	cause := errors.New("no such table: roles")

	tests := []struct {
		name string
		err  func(f *OutputFormatter) error
		want int
	}{
		{"command error", func(f *OutputFormatter) error {
			return outputCommandError(f, ErrCodeSource, "failed to open source", cause)
		}, ExitCommandError},
		{"run failure", func(f *OutputFormatter) error {
			return outputFailure(f, ErrCodeExport, "export failed", cause, nil)
		}, ExitFailure},
		{"plain error", func(*OutputFormatter) error { return cause }, ExitFailure},
		{"wrapped exit error", func(*OutputFormatter) error {
			return fmt.Errorf("serve: %w", NewExitError(ExitCommandError, "bad addr"))
		}, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.err(&OutputFormatter{Format: "text", Writer: &bytes.Buffer{}})
			assert.Equal(t, tt.want, GetExitCode(err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	cause := errors.New("no such table: roles")
	err := WrapExitError(ExitFailure, "export failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "export failed: no such table: roles", err.Error())
	assert.Equal(t, "bad addr", NewExitError(ExitCommandError, "bad addr").Error())
}
