package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogFile(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "my_log_file")
	logger, closeLogger, err := New(Options{LogFile: path})
	require.NoError(t, err)

	//** Act
	logger.Debug("building model", zap.Int("variables", 12))
	logger.Info("model solved", zap.Float64("objective", 4))
	closeLogger()

	//** Assert
	bytes, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(bytes)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "model solved", entry["msg"])
	assert.Equal(t, float64(4), entry["objective"])
}

func TestLogFileCannotBeCreated(t *testing.T) {
	_, _, err := New(Options{LogFile: filepath.Join(t.TempDir(), "missing", "log")})

	assert.Error(t, err)
}
