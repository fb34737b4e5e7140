package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/assignment/pkg/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	topic := int64(3)
	input := model.ModelInput{Students: []model.Student{{Id: 1, AssignedTopic: &topic}}}

	t.Run("Results file", func(t *testing.T) {
		//** Arrange
		outFile := filepath.Join(t.TempDir(), "assignment_results.txt")

		//** Act
		err := writeOutput(outFile, input)

		//** Assert
		require.NoError(t, err)
		content, err := os.ReadFile(outFile)
		require.NoError(t, err)
		assert.Equal(t, "### Student Assignment ###\nStudent 1 assigned to topic 3\n### Group Assignment ###\n", string(content))
	})

	t.Run("Results file cannot be created", func(t *testing.T) {
		err := writeOutput(filepath.Join(t.TempDir(), "missing", "assignment_results.txt"), input)

		assert.ErrorContains(t, err, "cannot create results file")
	})
}

type failingCloser struct {
	bytes.Buffer
}

func (*failingCloser) Close() error {
	return errors.New("disk full")
}

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	topic := int64(3)
	input := model.ModelInput{Students: []model.Student{{Id: 1, AssignedTopic: &topic}}}
	w := &failingCloser{}

	err := writeAndClose(w, input)

	assert.ErrorContains(t, err, "cannot close results file: disk full")
	assert.Contains(t, w.String(), "Student 1 assigned to topic 3")
}

func TestLoadConfigFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"solver": "gophersat", "modelFile": ""}`), 0666))

	config := loadConfig(path)

	assert.Equal(t, "gophersat", config.Solver)
	assert.Empty(t, config.ModelFile)
	assert.Equal(t, "my_log_file", config.LogFile)
}
