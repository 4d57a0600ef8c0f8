package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/config"
	"github.com/roach88/formexport/internal/store"
)

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, false, buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("run_id", "r1"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"run_id":"r1"`)

	buf.Reset()
	logger, err = newLogger(config.LogConfig{Level: "warn", Format: "console"}, true, buf)
	require.NoError(t, err)
	logger.Debug("debug shown")
	assert.Contains(t, buf.String(), "debug shown")

	_, err = newLogger(config.LogConfig{Level: "loud"}, false, buf)
	assert.Error(t, err)
}

func TestSourceFlags_Apply(t *testing.T) {
	cfg := config.Default().Source

	(&sourceFlags{mongoURI: "mongodb://db:27017", mongoDB: "formio"}).apply(&cfg)
	assert.Equal(t, config.SourceConfig{
		Driver:   config.DriverMongo,
		Path:     "formexport.db",
		URI:      "mongodb://db:27017",
		Database: "formio",
	}, cfg)

	(&sourceFlags{db: "other.db"}).apply(&cfg)
	assert.Equal(t, config.DriverSQLite, cfg.Driver)
	assert.Equal(t, "other.db", cfg.Path)
}

func TestHookFlags_Apply(t *testing.T) {
	var cfg config.HooksConfig
	(&hookFlags{}).apply(&cfg)
	assert.Equal(t, config.HooksConfig{}, cfg)

	(&hookFlags{reports: true, sanitize: true}).apply(&cfg)
	assert.True(t, cfg.Reports)
	assert.True(t, cfg.SanitizeNames)
}

func TestOpenSource_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formio.db")
	src, closeFn, err := openSource(context.Background(), config.SourceConfig{Driver: config.DriverSQLite, Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	_, ok := src.(*store.Store)
	assert.True(t, ok)
}

func TestOpenSource_UnknownDriver(t *testing.T) {
	_, _, err := openSource(context.Background(), config.SourceConfig{Driver: "redis"}, zap.NewNop())
	assert.ErrorContains(t, err, `unknown source driver "redis"`)
}
