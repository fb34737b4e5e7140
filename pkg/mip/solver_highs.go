//go:build highs

package mip

import (
	"context"
	"math"
	"time"

	"github.com/lanl/highs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func init() {
	solvers["highs"] = NewHighsSolver
}

// highsSolver hands the model to the HiGHS MIP engine (requires libhighs at link time)
type highsSolver struct {
	options Options
}

func NewHighsSolver(options Options) MIPSolver {
	return &highsSolver{options: options}
}

func (solver *highsSolver) Solve(ctx context.Context, model Model) (*MIPSolution, error) {
	logger := solver.options.logger().With(zap.String("solver", "highs"))
	if err := model.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	lp := toHighsModel(model)

	ctx, cancel := withTimeLimit(ctx, solver.options)
	defer cancel()

	type highsResult struct {
		status    highs.ModelStatus
		values    []float64
		objective float64
		err       error
	}

	start := time.Now()
	results := make(chan highsResult, 1)
	go func() {
		solution, err := lp.Solve()
		if err != nil {
			results <- highsResult{err: err}
			return
		}
		results <- highsResult{status: solution.Status, values: solution.ColumnPrimal, objective: solution.Objective}
	}()

	var result highsResult
	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "highs search interrupted after %v", time.Since(start))
	case result = <-results:
	}

	if result.err != nil {
		return nil, errors.Wrap(result.err, "an error occurred during highs execution")
	}

	switch result.status {
	case highs.Optimal:
	case highs.Infeasible:
		logger.Info("model is infeasible", zap.Duration("duration", time.Since(start)))
		return nil, nil
	default:
		return nil, errors.Errorf("highs finished with status %v", result.status.String())
	}

	values := make([]float64, model.Variables)
	copy(values, result.values)

	solution := &MIPSolution{Values: values, Objective: result.objective}
	logger.Info("model solved",
		zap.Float64("objective", solution.Objective),
		zap.Duration("duration", time.Since(start)),
	)
	return solution, nil
}

func toHighsModel(model Model) *highs.Model {
	lp := new(highs.Model)
	columns := int(model.Variables)

	lp.VarTypes = make([]highs.VariableType, columns)
	lp.ColLower = make([]float64, columns)
	lp.ColUpper = make([]float64, columns)
	lp.ColCosts = make([]float64, columns)
	for j := range columns {
		lp.VarTypes[j] = highs.IntegerType
		lp.ColUpper[j] = 1
	}
	for _, term := range model.Objective {
		lp.ColCosts[term.Variable-1] += float64(term.Coefficient)
	}

	infinity := math.Inf(1)
	for row, constraint := range model.Constraints {
		for _, term := range constraint.Terms {
			lp.ConstMatrix = append(lp.ConstMatrix, highs.Nonzero{
				Row: row,
				Col: int(term.Variable - 1),
				Val: float64(term.Coefficient),
			})
		}

		rhs := float64(constraint.RHS)
		switch constraint.Sense {
		case LessEqual:
			lp.RowLower = append(lp.RowLower, -infinity)
			lp.RowUpper = append(lp.RowUpper, rhs)
		case GreaterEqual:
			lp.RowLower = append(lp.RowLower, rhs)
			lp.RowUpper = append(lp.RowUpper, infinity)
		case Equal:
			lp.RowLower = append(lp.RowLower, rhs)
			lp.RowUpper = append(lp.RowUpper, rhs)
		}
	}

	return lp
}
