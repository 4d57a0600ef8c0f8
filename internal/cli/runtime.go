package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/formexport/internal/config"
	"github.com/roach88/formexport/internal/export"
	"github.com/roach88/formexport/internal/mongostore"
	"github.com/roach88/formexport/internal/store"
)

// loadConfig reads the --config file, or returns the defaults.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.Config == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(opts.Config)
}

// newLogger builds the zap logger commands log to. --verbose forces debug.
func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}

// sourceFlags are the storage flags shared by export and serve. Set flags
// override the config file.
type sourceFlags struct {
	db       string
	mongoURI string
	mongoDB  string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.db, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection URI (selects the mongo driver)")
	cmd.Flags().StringVar(&f.mongoDB, "mongo-db", "", "MongoDB database name")
}

func (f *sourceFlags) apply(cfg *config.SourceConfig) {
	if f.db != "" {
		cfg.Driver = config.DriverSQLite
		cfg.Path = f.db
	}
	if f.mongoURI != "" {
		cfg.Driver = config.DriverMongo
		cfg.URI = f.mongoURI
	}
	if f.mongoDB != "" {
		cfg.Database = f.mongoDB
	}
}

// hookFlags toggle the built-in hooks on top of the config file.
type hookFlags struct {
	reports  bool
	sanitize bool
}

func (f *hookFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.reports, "reports", false, "export report configurations")
	cmd.Flags().BoolVar(&f.sanitize, "sanitize-names", false, "normalize machine names to lower camel case")
}

func (f *hookFlags) apply(cfg *config.HooksConfig) {
	if f.reports {
		cfg.Reports = true
	}
	if f.sanitize {
		cfg.SanitizeNames = true
	}
}

// openSource opens the configured backend. The returned close function
// releases it.
func openSource(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (export.Source, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		logger.Info("opening database", zap.String("path", cfg.Path))
		st, err := store.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case config.DriverMongo:
		logger.Info("connecting to mongodb", zap.String("database", cfg.Database))
		ms, err := mongostore.Connect(ctx, cfg.URI, cfg.Database, mongostore.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return ms, func() error { return ms.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Driver)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
