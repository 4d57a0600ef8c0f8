package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/formexport/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <export.json>",
		Short: "Validate an export document against the export schema",
		Long: `Check that an export document has every section, that resources are
typed as resources, that revision keys are name:token pairs and that report
entries carry their form map.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(data), path)

	v, err := schema.New()
	if err != nil {
		return outputValidateError(formatter, ErrCodeValidation, err.Error(), nil)
	}
	if errs := v.ValidateJSON(data); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}

	fmt.Fprintln(formatter.Writer, "✓ Export document valid")
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Unreadable input is a command-level error (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every schema violation.
func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    ErrCodeValidation,
				Message: errs[0].Error(),
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %d schema violation(s):\n", len(errs))
		for _, e := range errs {
			if e.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  line %d: %s\n", e.Line, e)
				continue
			}
			fmt.Fprintf(formatter.Writer, "  %s\n", e)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %d schema violation(s)", ErrCodeValidation, len(errs)))
}
