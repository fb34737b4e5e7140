package mip

import (
	"context"
	"time"

	gophersat "github.com/crillab/gophersat/solver"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// gophersatSolver solves 0-1 models as pseudo-boolean optimization problems
type gophersatSolver struct {
	options Options
}

func NewGophersatSolver(options Options) MIPSolver {
	return &gophersatSolver{options: options}
}

type gophersatResult struct {
	cost     int
	bindings []bool
}

func (solver *gophersatSolver) Solve(ctx context.Context, model Model) (*MIPSolution, error) {
	logger := solver.options.logger().With(zap.String("solver", "gophersat"))
	if err := model.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	constraints, referenced, feasible := toPBConstraints(model)
	if !feasible {
		logger.Info("model is trivially infeasible")
		return nil, nil
	}

	// Variables outside every constraint take the value that minimizes their objective term
	values := make([]float64, model.Variables)
	for _, term := range model.Objective {
		if !referenced[term.Variable] && term.Coefficient < 0 {
			values[term.Variable-1] = 1
		}
	}

	if len(constraints) == 0 {
		return &MIPSolution{Values: values, Objective: model.Evaluate(values)}, nil
	}

	problem := gophersat.ParsePBConstrs(constraints)
	costLiterals, costWeights := toCostFunction(model, referenced)
	if len(costLiterals) > 0 {
		problem.SetCostFunc(costLiterals, costWeights)
	}
	engine := gophersat.New(problem)
	engine.Verbose = solver.options.Verbose

	ctx, cancel := withTimeLimit(ctx, solver.options)
	defer cancel()

	logger.Debug("solving pseudo-boolean problem",
		zap.Uint64("variables", model.Variables),
		zap.Int("constraints", len(constraints)),
		zap.Int("costTerms", len(costLiterals)),
	)

	start := time.Now()
	results := make(chan gophersatResult, 1)
	go func() {
		if len(costLiterals) > 0 {
			cost := engine.Minimize()
			if cost == -1 {
				results <- gophersatResult{cost: -1}
				return
			}
			results <- gophersatResult{cost: cost, bindings: engine.Model()}
			return
		}

		if engine.Solve() != gophersat.Sat {
			results <- gophersatResult{cost: -1}
			return
		}
		results <- gophersatResult{bindings: engine.Model()}
	}()

	// The search goroutine cannot be interrupted; it is abandoned when the context ends first
	var result gophersatResult
	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "gophersat search interrupted after %v", time.Since(start))
	case result = <-results:
	}

	if result.cost == -1 {
		logger.Info("model is infeasible", zap.Duration("duration", time.Since(start)))
		return nil, nil
	}

	for i, binding := range result.bindings {
		if uint64(i) < model.Variables && referenced[uint64(i+1)] {
			values[i] = lo.Ternary(binding, 1.0, 0.0)
		}
	}

	solution := &MIPSolution{Values: values, Objective: model.Evaluate(values)}
	logger.Info("model solved",
		zap.Float64("objective", solution.Objective),
		zap.Duration("duration", time.Since(start)),
	)
	return solution, nil
}

// toPBConstraints rewrites every linear constraint as "at least" constraints with positive weights.
// feasible is false whenever a constraint cannot be satisfied by any assignment
func toPBConstraints(model Model) (constraints []gophersat.PBConstr, referenced map[uint64]bool, feasible bool) {
	constraints = make([]gophersat.PBConstr, 0, len(model.Constraints))
	referenced = make(map[uint64]bool)

	for _, constraint := range model.Constraints {
		terms := mergeTerms(constraint.Terms)
		negated := lo.Map(terms, func(term Term, _ int) Term {
			return Term{Variable: term.Variable, Coefficient: -term.Coefficient}
		})

		var sides [][]Term
		var bounds []int64
		switch constraint.Sense {
		case GreaterEqual:
			sides, bounds = [][]Term{terms}, []int64{constraint.RHS}
		case LessEqual:
			sides, bounds = [][]Term{negated}, []int64{-constraint.RHS}
		case Equal:
			sides, bounds = [][]Term{terms, negated}, []int64{constraint.RHS, -constraint.RHS}
		}

		for i, side := range sides {
			literals, weights, atLeast := atLeastForm(side, bounds[i])
			if atLeast <= 0 { // Satisfied by every assignment
				continue
			}
			if lo.Sum(weights) < atLeast {
				return nil, nil, false
			}

			for _, literal := range literals {
				if literal < 0 {
					literal = -literal
				}
				referenced[uint64(literal)] = true
			}
			constraints = append(constraints, gophersat.GtEq(literals, lo.Map(weights, func(weight int64, _ int) int { return int(weight) }), int(atLeast)))
		}
	}

	return constraints, referenced, true
}

// atLeastForm turns sum(terms) >= bound into sum(weights * literals) >= atLeast with positive weights,
// using c*x = c + |c|*(not x) for negative coefficients
func atLeastForm(terms []Term, bound int64) (literals []int, weights []int64, atLeast int64) {
	literals = make([]int, 0, len(terms))
	weights = make([]int64, 0, len(terms))
	atLeast = bound

	for _, term := range terms {
		if term.Coefficient > 0 {
			literals = append(literals, int(term.Variable))
			weights = append(weights, term.Coefficient)
		} else if term.Coefficient < 0 {
			literals = append(literals, -int(term.Variable))
			weights = append(weights, -term.Coefficient)
			atLeast -= term.Coefficient
		}
	}
	return literals, weights, atLeast
}

func toCostFunction(model Model, referenced map[uint64]bool) ([]gophersat.Lit, []int) {
	literals := make([]gophersat.Lit, 0, len(model.Objective))
	weights := make([]int, 0, len(model.Objective))

	for _, term := range mergeTerms(model.Objective) {
		if !referenced[term.Variable] || term.Coefficient == 0 {
			continue
		}
		// A negative cost on x is a constant plus a positive cost on (not x)
		if term.Coefficient > 0 {
			literals = append(literals, gophersat.IntToLit(int32(term.Variable)))
			weights = append(weights, int(term.Coefficient))
		} else {
			literals = append(literals, gophersat.IntToLit(-int32(term.Variable)))
			weights = append(weights, int(-term.Coefficient))
		}
	}
	return literals, weights
}

// mergeTerms sums the coefficients of repeated variables, keeping first-appearance order
func mergeTerms(terms []Term) []Term {
	coefficients := make(map[uint64]int64, len(terms))
	order := make([]uint64, 0, len(terms))
	for _, term := range terms {
		if _, ok := coefficients[term.Variable]; !ok {
			order = append(order, term.Variable)
		}
		coefficients[term.Variable] += term.Coefficient
	}

	return lo.FilterMap(order, func(variable uint64, _ int) (Term, bool) {
		return Term{Variable: variable, Coefficient: coefficients[variable]}, coefficients[variable] != 0
	})
}
