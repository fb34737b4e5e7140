package model

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/assignment/pkg/mip"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ilpAssigner struct {
	solver    mip.MIPSolver
	logger    *zap.Logger
	modelFile string
}

type Option func(*ilpAssigner)

func WithLogger(logger *zap.Logger) Option {
	return func(assigner *ilpAssigner) {
		if logger != nil {
			assigner.logger = logger
		}
	}
}

// WithModelFile writes the model in LP format to path before solving it
func WithModelFile(path string) Option {
	return func(assigner *ilpAssigner) {
		assigner.modelFile = path
	}
}

func NewILPAssigner(solver mip.MIPSolver, options ...Option) Assigner {
	assigner := &ilpAssigner{
		solver: solver,
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(assigner)
	}
	return assigner
}

func (assigner *ilpAssigner) Build(ctx context.Context, modelInput ModelInput) (assignment *Assignment, variables uint64, constraints uint64, err error) {
	runId := uuid.NewString()
	logger := assigner.logger.With(zap.String("run", runId))

	//** Extract domains
	totalStudents, totalGroups, totalTopics := uint64(len(modelInput.Students)), uint64(len(modelInput.Groups)), uint64(len(modelInput.Topics))

	//** Initialize dependencies
	indexer := newIndexer(totalStudents, totalGroups, totalTopics)
	state := constraintState{
		input:    modelInput,
		indexer:  indexer,
		students: totalStudents,
		groups:   totalGroups,
		topics:   totalTopics,
	}

	//** Build MIP model
	model := buildModel(state)
	variables, constraints = model.Variables, uint64(len(model.Constraints))
	logger.Info("model built",
		zap.Uint64("students", totalStudents),
		zap.Uint64("groups", totalGroups),
		zap.Uint64("topics", totalTopics),
		zap.Uint64("variables", variables),
		zap.Uint64("constraints", constraints),
	)
	logger.Debug("first choice bound", zap.Int("students", FirstChoiceBound(modelInput)))

	if assigner.modelFile != "" {
		header := []string{fmt.Sprintf("run %v %v", runId, time.Now().UTC().Format(time.RFC3339))}
		if err := os.WriteFile(assigner.modelFile, []byte(model.ToLP(header...)), 0666); err != nil {
			return nil, variables, constraints, errors.Wrap(err, "cannot write model file")
		}
		logger.Debug("model written", zap.String("file", assigner.modelFile))
	}

	//** Solve MIP model
	solution, err := assigner.solver.Solve(ctx, model)
	if err != nil {
		return nil, variables, constraints, err
	} else if solution == nil { // Return nil if the model is not feasible
		logger.Warn("no feasible assignment")
		return nil, variables, constraints, nil
	}

	assignment, err = extractAssignment(solution, state)
	if err != nil {
		return nil, variables, constraints, err
	}

	// Record the assigned topics in the input records
	for i, placement := range assignment.Students {
		topic := placement.Topic
		modelInput.Students[i].AssignedTopic = &topic
	}
	for i, placement := range assignment.Groups {
		topic := placement.Topic
		modelInput.Groups[i].AssignedTopic = &topic
	}

	logger.Info("assignment found", zap.Int64("cost", assignment.Cost), zap.Float64("objective", solution.Objective))
	return assignment, variables, constraints, nil
}

func (assigner *ilpAssigner) Verify(assignment *Assignment, modelInput ModelInput) bool {
	return verify(assignment, modelInput)
}
