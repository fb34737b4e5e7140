package model

import "context"

// Values within Epsilon of 1 are read as a selected binary variable
const Epsilon = 1e-4

type Placement struct {
	Id    uint64
	Topic int64
	Rank  uint64
}

type TopicUsage struct {
	Topic      int64
	Supervisor uint64
	Mode       uint64 // 0 when the topic is not used
	Occupancy  uint64
}

type Assignment struct {
	Students []Placement
	Groups   []Placement
	Topics   []TopicUsage
	Cost     int64 // Σ rank² over students plus Σ rank² * size over groups
}

type Assigner interface {
	// Returns a nil assignment (and nil error) when no assignment satisfies every constraint
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (assignment *Assignment, variables uint64, constraints uint64, err error)

	Verify(
		assignment *Assignment,
		modelInput ModelInput,
	) bool
}
