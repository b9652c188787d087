package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiltd/internal/structures"
)

func loggerConfig(dir, level string) *structures.Config {
	return &structures.Config{
		Logger: structures.LoggerConfig{
			Level: level,
			Mode:  0644,
			Dir:   dir,
		},
	}
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir, "info"))
	require.NoError(t, err)
	defer logger.Close()

	// Should be able to log without error
	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeHttp, "http message")
	logger.Warnf(TypeSync, "sync message")

	for _, name := range []string{"app.log", "http.log", "sync.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	_, err := NewLogProvider(loggerConfig(t.TempDir(), "verbose"))
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	// a regular file cannot be used as a log directory
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewLogProvider(loggerConfig(filepath.Join(blocker, "logs"), "info"))
	assert.Error(t, err)
}

func TestLogProvider_WritesEachLevelToItsFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir, "debug"))
	require.NoError(t, err)
	defer logger.Close()

	logger.Errorf(TypeApp, "boom %d", 1)
	logger.Warnf(TypeHttp, "slow request")
	logger.Infof(TypeSync, "sweep done")
	logger.Debugf(TypeHttp, "decoded %s", "body")

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "boom 1")
	assert.Contains(t, string(app), `"level":"error"`)

	httpLog, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)
	assert.Contains(t, string(httpLog), "slow request")
	assert.Contains(t, string(httpLog), "decoded body")

	syncLog, err := os.ReadFile(filepath.Join(dir, "sync.log"))
	require.NoError(t, err)
	assert.Contains(t, string(syncLog), "sweep done")
}

func TestLogProvider_UnknownTypeFallsBackToApp(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir, "info"))
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeEnum(99), "falls back to app log")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "falls back to app log")
}
