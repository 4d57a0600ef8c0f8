package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// fixturePath is the export package's test fixture, shared here so the CLI
// exercises the same data as the pipeline tests.
var fixturePath = filepath.Join("..", "export", "testdata", "fixture.json")

// seedTestDB seeds a temp SQLite database from the shared fixture.
func seedTestDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "formio.db")

	_, _, err := execute(t, NewRootCommand(), "seed", "--db", db, fixturePath)
	require.NoError(t, err)
	return db
}

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
