// Package config loads the formexport configuration file.
//
// The file is YAML, decoded strictly (unknown keys are errors) over the
// defaults returned by Default, then checked with struct tag validation.
// Command-line flags override file values after loading.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/formexport/internal/export"
	"github.com/roach88/formexport/internal/naming"
	"github.com/roach88/formexport/internal/queryir"
)

// Source drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Source SourceConfig   `yaml:"source"`
	Export export.Options `yaml:"export"`
	Hooks  HooksConfig    `yaml:"hooks"`
	Server ServerConfig   `yaml:"server"`
	Log    LogConfig      `yaml:"log"`
}

// SourceConfig selects the storage backend.
type SourceConfig struct {
	Driver   string `yaml:"driver" validate:"required,oneof=sqlite mongo"`
	Path     string `yaml:"path" validate:"required_if=Driver sqlite"`
	URI      string `yaml:"uri" validate:"required_if=Driver mongo"`
	Database string `yaml:"database" validate:"required_if=Driver mongo"`
}

// HooksConfig enables the built-in export hooks.
type HooksConfig struct {
	Reports       bool           `yaml:"reports"`
	SanitizeNames bool           `yaml:"sanitize_names"`
	Filters       []FilterConfig `yaml:"filters" validate:"dive"`
}

// FilterConfig adds an equality filter to every query of one kind.
type FilterConfig struct {
	Kind   string `yaml:"kind" validate:"required,oneof=roles forms actions submissions"`
	Field  string `yaml:"field" validate:"required"`
	Equals string `yaml:"equals"`
}

// ServerConfig configures `formexport serve`.
type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Source: SourceConfig{Driver: DriverSQLite, Path: "formexport.db"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
// An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their YAML keys.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tag constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Build returns the hooks the configuration enables, in a fixed order.
func (h HooksConfig) Build() []export.Hook {
	var hooks []export.Hook
	if h.SanitizeNames {
		hooks = append(hooks, naming.Sanitizer{})
	}
	if h.Reports {
		hooks = append(hooks, export.ReportsEnabled{})
	}
	for _, f := range h.Filters {
		hooks = append(hooks, export.ExtraFilter{
			Kind:   export.QueryKind(f.Kind),
			Filter: queryir.Equals{Field: f.Field, Value: queryir.String(f.Equals)},
		})
	}
	return hooks
}
