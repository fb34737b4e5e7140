package mip

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLP(t *testing.T) {
	//** Arrange
	model := Model{
		Variables: 3,
		Names:     []string{"x_1", "x_2", "y_1"},
		Objective: []Term{{1, 1}, {2, 4}},
		Constraints: []Constraint{
			{Name: "one", Terms: []Term{{1, 1}, {2, 1}}, Sense: Equal, RHS: 1},
			{Name: "balance", Terms: []Term{{1, 1}, {2, 1}, {3, -2}}, Sense: LessEqual, RHS: 0},
		},
	}

	//** Act
	lp := model.ToLP("run test")

	//** Assert
	expected := strings.Join([]string{
		`\ run test`,
		"Minimize",
		" obj: x_1 + 4 x_2",
		"Subject To",
		" one_0: x_1 + x_2 = 1",
		" balance_1: x_1 + x_2 - 2 y_1 <= 0",
		"Binaries",
		" x_1",
		" x_2",
		" y_1",
		"End",
		"",
	}, "\n")
	assert.Equal(t, expected, lp)
}

func TestToLPWithoutNames(t *testing.T) {
	model := Model{
		Variables:   2,
		Constraints: []Constraint{{Terms: []Term{{2, 1}}, Sense: GreaterEqual, RHS: 1}},
	}

	lp := model.ToLP()

	assert.Contains(t, lp, " obj: 0\n")
	assert.Contains(t, lp, " c_0: v2 >= 1\n")
	assert.Contains(t, lp, " v1\n v2\n")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Model{Variables: 1, Objective: []Term{{1, 1}}}.Validate())
	assert.Error(t, Model{Variables: 1, Objective: []Term{{0, 1}}}.Validate())
	assert.Error(t, Model{Variables: 1, Names: []string{"a", "b"}}.Validate())
	assert.Error(t, Model{
		Variables:   2,
		Constraints: []Constraint{{Name: "c", Terms: []Term{{3, 1}}}},
	}.Validate())
}

func TestSolutionValue(t *testing.T) {
	solution := MIPSolution{Values: []float64{0, 0.9999, 1}}

	assert.Equal(t, 0.9999, solution.Value(2))
	assert.Equal(t, float64(0), solution.Value(0))
	assert.Equal(t, float64(0), solution.Value(4))
}

func TestEvaluate(t *testing.T) {
	model := Model{
		Variables: 3,
		Objective: []Term{{1, 4}, {0, 7}, {3, -2}, {5, 9}},
	}

	assert.Equal(t, float64(2), model.Evaluate([]float64{1, 1, 1}))
	assert.Equal(t, float64(0), model.Evaluate(nil))
}

func TestLoadConfig(t *testing.T) {
	directory := t.TempDir()

	t.Run("Overrides defaults", func(t *testing.T) {
		path := filepath.Join(directory, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"solver": "highs", "timeLimit": "90s", "verbose": true}`), 0666))

		config, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "highs", config.Solver)
		assert.Equal(t, 90*time.Second, config.TimeLimit)
		assert.True(t, config.Verbose)
		assert.Equal(t, "assignment.lp", config.ModelFile)
		assert.Equal(t, "my_log_file", config.LogFile)
	})

	t.Run("Unknown keys", func(t *testing.T) {
		path := filepath.Join(directory, "unknown.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"kissatPath": "/usr/bin/kissat"}`), 0666))

		_, err := LoadConfig(path)

		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(directory, "missing.json"))

		assert.Error(t, err)
	})
}
