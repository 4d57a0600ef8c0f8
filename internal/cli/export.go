package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/canonical"
	"github.com/roach88/formexport/internal/export"
	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/schema"
	"github.com/roach88/formexport/internal/server"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	source sourceFlags
	hooks  hookFlags

	Out         string
	Include     string
	Title       string
	Version     string
	Description string
	Name        string
	Validate    bool

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs export.RunIDGenerator
}

// ExportSummary describes a written export.
type ExportSummary struct {
	File      string `json:"file"`
	Digest    string `json:"digest"`
	Roles     int    `json:"roles"`
	Forms     int    `json:"forms"`
	Resources int    `json:"resources"`
	Actions   int    `json:"actions"`
	Revisions int    `json:"revisions"`
	Reports   int    `json:"reports"`
}

func (s ExportSummary) String() string {
	return fmt.Sprintf("✓ Exported %s (%d roles, %d forms, %d resources, %d actions, %d revisions, %d reports)",
		s.File, s.Roles, s.Forms, s.Resources, s.Actions, s.Revisions, s.Reports)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return newExportCommand(&ExportOptions{RootOptions: rootOpts})
}

func newExportCommand(opts *ExportOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the project template",
		Long: `Export roles, forms, resources, actions, pinned form revisions and
(optionally) reports as a portable template document.

The document is written as indented canonical JSON. Without --out it goes to
stdout; when --out names a directory the file is called {name}-{version}.json.

Example:
  formexport export --db ./formio.db --out ./templates --reports
  formexport export --mongo-uri mongodb://localhost:27017 --mongo-db formio --include owner,created`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	opts.source.register(cmd)
	opts.hooks.register(cmd)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file or directory (default stdout)")
	cmd.Flags().StringVar(&opts.Include, "include", "", "extra form fields to export, comma separated")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().StringVar(&opts.Version, "version", "", "document version")
	cmd.Flags().StringVar(&opts.Description, "description", "", "document description")
	cmd.Flags().StringVar(&opts.Name, "name", "", "document name")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "validate the document against the export schema")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, "failed to load config", err)
	}
	opts.source.apply(&cfg.Source)
	opts.hooks.apply(&cfg.Hooks)
	applyExportFlags(opts, cmd, &cfg.Export)

	logger, err := newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, "failed to build logger", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := commandContext(cmd)
	src, closeSource, err := openSource(ctx, cfg.Source, logger)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSource, "failed to open source", err)
	}
	defer func() {
		if closeErr := closeSource(); closeErr != nil {
			logger.Error("error closing source", zap.Error(closeErr))
		}
	}()

	exp := export.New(src,
		export.WithLogger(logger),
		export.WithHooks(cfg.Hooks.Build()...),
		export.WithRunIDGenerator(opts.RunIDs),
	)
	formatter.VerboseLog("Hooks: %v", exp.HookNames())

	doc, err := exp.Export(ctx, cfg.Export)
	if err != nil {
		var details map[string]string
		if stage, ok := export.FailedStage(err); ok {
			details = map[string]string{"stage": stage}
		}
		return outputFailure(formatter, ErrCodeExport, "export failed", err, details)
	}

	if opts.Validate {
		if err := validateDocument(formatter, doc); err != nil {
			return err
		}
	}

	data, err := canonical.MarshalIndent(doc, "  ")
	if err != nil {
		return outputCommandError(formatter, ErrCodeExport, "failed to encode document", err)
	}

	if opts.Out == "" || opts.Out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path := opts.Out
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, server.AttachmentName(doc.Name, doc.Version))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return outputCommandError(formatter, ErrCodeExport, "failed to write document", err)
	}

	digest, err := canonical.DigestOf(doc)
	if err != nil {
		return outputCommandError(formatter, ErrCodeExport, "failed to digest document", err)
	}
	logger.Info("export written", zap.String("file", path), zap.String("digest", digest))

	return formatter.Success(summarize(path, digest, doc))
}

// applyExportFlags overrides config export options with the flags the user
// set explicitly.
func applyExportFlags(opts *ExportOptions, cmd *cobra.Command, target *export.Options) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		target.Title = opts.Title
	}
	if flags.Changed("version") {
		target.Version = opts.Version
	}
	if flags.Changed("description") {
		target.Description = opts.Description
	}
	if flags.Changed("name") {
		target.Name = opts.Name
	}
	if flags.Changed("include") {
		target.IncludeFormFields = export.ParseInclude(opts.Include)
	}
}

func validateDocument(formatter *OutputFormatter, doc *model.Document) error {
	v, err := schema.New()
	if err != nil {
		return outputCommandError(formatter, ErrCodeValidation, "failed to load schema", err)
	}
	errs, err := v.Validate(doc)
	if err != nil {
		return outputCommandError(formatter, ErrCodeValidation, "failed to encode document", err)
	}
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return nil
}

func summarize(path, digest string, doc *model.Document) ExportSummary {
	return ExportSummary{
		File:      path,
		Digest:    digest,
		Roles:     len(doc.Roles),
		Forms:     len(doc.Forms),
		Resources: len(doc.Resources),
		Actions:   len(doc.Actions),
		Revisions: len(doc.Revisions),
		Reports:   len(doc.Reports),
	}
}
