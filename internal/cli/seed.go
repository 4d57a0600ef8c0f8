package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/formexport/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedResult reports the collection sizes after seeding.
type SeedResult struct {
	Database    string         `json:"database"`
	Collections map[string]int `json:"collections"`
}

func (r SeedResult) String() string {
	parts := make([]string, 0, len(store.Collections))
	for _, c := range store.Collections {
		parts = append(parts, fmt.Sprintf("%s=%d", c, r.Collections[c]))
	}
	return fmt.Sprintf("✓ Seeded %s (%s)", r.Database, strings.Join(parts, ", "))
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <fixture>",
		Short: "Load a JSON or YAML fixture into a SQLite database",
		Long: `Load roles, forms, actions, form revisions and submissions from a
fixture file into a SQLite database, creating it if needed. Documents that
already exist (same _id) are left untouched.

Example:
  formexport seed --db ./formio.db ./fixtures/project.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(opts *SeedOptions, fixturePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	fixture, err := store.LoadFixture(fixturePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return outputCommandError(formatter, ErrCodeNotFound, "fixture not found", err)
		}
		return outputCommandError(formatter, ErrCodeGeneric, "failed to load fixture", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSource, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if err := st.Seed(ctx, fixture); err != nil {
		return outputFailure(formatter, ErrCodeGeneric, "seed failed", err, nil)
	}

	result := SeedResult{Database: opts.Database, Collections: make(map[string]int)}
	for _, c := range store.Collections {
		n, err := st.Count(ctx, c)
		if err != nil {
			return outputCommandError(formatter, ErrCodeSource, "failed to count documents", err)
		}
		result.Collections[c] = n
		formatter.VerboseLog("%s: %d documents", c, n)
	}

	return formatter.Success(result)
}
