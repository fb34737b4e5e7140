package mip

import (
	"context"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type MIPSolver interface {
	// Returns an optimal solution of the model if feasible, else returns nil (these are valid outputs where error shall be nil)
	Solve(ctx context.Context, model Model) (*MIPSolution, error)
}

type Options struct {
	TimeLimit time.Duration // Zero means no limit
	Verbose   bool
	Logger    *zap.Logger
}

func (options Options) logger() *zap.Logger {
	if options.Logger == nil {
		return zap.NewNop()
	}
	return options.Logger
}

// Backends register themselves here, the highs backend only when built with the "highs" tag
var solvers = map[string]func(Options) MIPSolver{
	"gophersat": NewGophersatSolver,
}

func NewSolver(name string, options Options) (MIPSolver, error) {
	constructor, ok := solvers[name]
	if !ok {
		return nil, errors.Errorf("solver %q is not available: %v", name, AvailableSolvers())
	}
	return constructor(options), nil
}

func AvailableSolvers() []string {
	names := lo.Keys(solvers)
	slices.Sort(names)
	return names
}

// withTimeLimit derives the solving context from the configured time limit
func withTimeLimit(ctx context.Context, options Options) (context.Context, context.CancelFunc) {
	if options.TimeLimit > 0 {
		return context.WithTimeout(ctx, options.TimeLimit)
	}
	return context.WithCancel(ctx)
}
