package mip

import (
	"context"
	"testing"

	"github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGophersat(t *testing.T) {
	solver, err := NewSolver("gophersat", Options{})
	require.NoError(t, err)

	t.Run("Feasible instances", func(t *testing.T) {
		feasibleExecution(t, solver)
	})
	t.Run("Infeasible instances", func(t *testing.T) {
		infeasibleExecution(t, solver)
	})
}

func feasibleExecution(t *testing.T, solver MIPSolver) {
	g := gomega.NewWithT(t)

	scenarios := []struct {
		name      string
		model     Model
		values    []float64
		objective float64
	}{
		{
			name: "Exactly one",
			model: Model{
				Variables: 3,
				Objective: []Term{{1, 5}, {2, 1}, {3, 3}},
				Constraints: []Constraint{
					{Name: "one", Terms: []Term{{1, 1}, {2, 1}, {3, 1}}, Sense: Equal, RHS: 1},
				},
			},
			values:    []float64{0, 1, 0},
			objective: 1,
		},
		{
			name: "Negative coefficients",
			model: Model{
				Variables: 3,
				Objective: []Term{{1, 1}, {2, 1}, {3, -5}},
				Constraints: []Constraint{
					{Name: "balance", Terms: []Term{{1, 1}, {2, 1}, {3, -2}}, Sense: Equal, RHS: 0},
				},
			},
			values:    []float64{1, 1, 1},
			objective: -3,
		},
		{
			name: "Bounds",
			model: Model{
				Variables: 4,
				Objective: []Term{{1, 4}, {2, 3}, {3, 2}, {4, 1}},
				Constraints: []Constraint{
					{Name: "min", Terms: []Term{{1, 1}, {2, 1}, {3, 1}, {4, 1}}, Sense: GreaterEqual, RHS: 2},
					{Name: "max", Terms: []Term{{3, 1}, {4, 1}}, Sense: LessEqual, RHS: 1},
				},
			},
			values:    []float64{0, 1, 0, 1},
			objective: 4,
		},
		{
			name: "Unconstrained variable",
			model: Model{
				Variables: 3,
				Objective: []Term{{1, 2}, {2, 1}, {3, -7}},
				Constraints: []Constraint{
					{Name: "one", Terms: []Term{{1, 1}, {2, 1}}, Sense: Equal, RHS: 1},
				},
			},
			values:    []float64{0, 1, 1},
			objective: -6,
		},
	}

	for _, scenario := range scenarios {
		//** Act
		solution, err := solver.Solve(context.Background(), scenario.model)

		//** Assert
		g.Expect(err).NotTo(gomega.HaveOccurred(), scenario.name)
		g.Expect(solution).NotTo(gomega.BeNil(), scenario.name)
		g.Expect(solution.Values).To(gomega.Equal(scenario.values), scenario.name)
		g.Expect(solution.Objective).To(gomega.BeNumerically("~", scenario.objective, 1e-9), scenario.name)
	}
}

func infeasibleExecution(t *testing.T, solver MIPSolver) {
	models := []Model{
		{ // Unreachable right hand side
			Variables: 2,
			Constraints: []Constraint{
				{Terms: []Term{{1, 1}, {2, 1}}, Sense: Equal, RHS: 3},
			},
		},
		{ // Contradicting constraints
			Variables: 2,
			Objective: []Term{{1, 1}, {2, 1}},
			Constraints: []Constraint{
				{Terms: []Term{{1, 1}, {2, 1}}, Sense: GreaterEqual, RHS: 2},
				{Terms: []Term{{1, 1}, {2, 1}}, Sense: LessEqual, RHS: 1},
			},
		},
		{ // Odd occupancy cannot match even capacity
			Variables: 4,
			Objective: []Term{{1, 1}},
			Constraints: []Constraint{
				{Terms: []Term{{1, 1}}, Sense: Equal, RHS: 1},
				{Terms: []Term{{1, 1}, {2, -2}, {3, -2}}, Sense: Equal, RHS: 0},
				{Terms: []Term{{2, 1}, {3, 1}, {4, 1}}, Sense: LessEqual, RHS: 1},
			},
		},
	}

	for i, model := range models {
		//** Act
		solution, err := solver.Solve(context.Background(), model)

		//** Assert
		assert.NoError(t, err, "model %d", i)
		assert.Nil(t, solution, "model %d", i)
	}
}

func TestSolveRejectsUndeclaredVariables(t *testing.T) {
	solver := NewGophersatSolver(Options{})
	model := Model{
		Variables:   1,
		Constraints: []Constraint{{Terms: []Term{{2, 1}}, Sense: Equal, RHS: 1}},
	}

	solution, err := solver.Solve(context.Background(), model)

	assert.Error(t, err)
	assert.Nil(t, solution)
}

func TestAtLeastForm(t *testing.T) {
	// x1 + x2 - 2 x3 >= 0  <=>  x1 + x2 + 2 (not x3) >= 2
	literals, weights, atLeast := atLeastForm([]Term{{1, 1}, {2, 1}, {3, -2}}, 0)

	assert.Equal(t, []int{1, 2, -3}, literals)
	assert.Equal(t, []int64{1, 1, 2}, weights)
	assert.Equal(t, int64(2), atLeast)
}

func TestMergeTerms(t *testing.T) {
	merged := mergeTerms([]Term{{2, 1}, {1, 3}, {2, 2}, {3, 1}, {3, -1}})

	assert.Equal(t, []Term{{2, 3}, {1, 3}}, merged)
}

func TestNewSolver(t *testing.T) {
	assert.Contains(t, AvailableSolvers(), "gophersat")

	_, err := NewSolver("gurobi", Options{})
	assert.Error(t, err)
}

func TestWithTimeLimit(t *testing.T) {
	ctx, cancel := withTimeLimit(context.Background(), Options{})
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	limited, cancelLimited := withTimeLimit(context.Background(), Options{TimeLimit: 1e9})
	defer cancelLimited()
	_, ok = limited.Deadline()
	assert.True(t, ok)
}
