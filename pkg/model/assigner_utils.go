package model

import (
	"slices"
	"sync"

	"github.com/limaJavier/assignment/pkg/mip"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Constraint families in the order they appear in the model
var constraintFamilies = []func(state constraintState) []mip.Constraint{
	studentConstraints,
	groupConstraints,
	supervisorConstraints,
	modeConstraints,
	threePeopleConstraints,
	occupancyConstraints,
}

func buildModel(state constraintState) mip.Model {
	model := mip.Model{
		Variables: state.indexer.Variables(),
		Names:     variableNames(state),
		Objective: objective(state),
	}

	// Execute constraint families on different goroutines, each one owns its slot so the model stays deterministic
	generated := make([][]mip.Constraint, len(constraintFamilies))
	var wg sync.WaitGroup
	for i, family := range constraintFamilies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			generated[i] = family(state)
		}()
	}
	wg.Wait()

	model.Constraints = slices.Concat(generated...)
	return model
}

func extractAssignment(solution *mip.MIPSolution, state constraintState) (*Assignment, error) {
	selected := func(variable uint64) bool {
		return solution.Value(variable) >= 1-Epsilon
	}

	assignment := &Assignment{
		Students: make([]Placement, 0, state.students),
		Groups:   make([]Placement, 0, state.groups),
		Topics:   make([]TopicUsage, 0, state.topics),
	}
	occupancy := make([]uint64, state.topics)

	for student := range state.students {
		topics := lo.Filter(lo.Range(int(state.topics)), func(topic int, _ int) bool {
			return selected(state.indexer.StudentIndex(student, uint64(topic)))
		})
		if len(topics) != 1 {
			return nil, errors.Errorf("student %d is assigned %d topics", state.input.Students[student].Id, len(topics))
		}

		topic := uint64(topics[0])
		rank := state.input.Students[student].Preferences[topic]
		assignment.Students = append(assignment.Students, Placement{
			Id:    state.input.Students[student].Id,
			Topic: state.input.Topic(topic),
			Rank:  rank,
		})
		assignment.Cost += int64(rank * rank)
		occupancy[topic]++
	}

	for group := range state.groups {
		topics := lo.Filter(lo.Range(int(state.topics)), func(topic int, _ int) bool {
			return selected(state.indexer.GroupIndex(group, uint64(topic)))
		})
		if len(topics) != 1 {
			return nil, errors.Errorf("group %d is assigned %d topics", state.input.Groups[group].Id, len(topics))
		}

		topic := uint64(topics[0])
		rank, size := state.input.Groups[group].Preferences[topic], state.input.Groups[group].Size
		assignment.Groups = append(assignment.Groups, Placement{
			Id:    state.input.Groups[group].Id,
			Topic: state.input.Topic(topic),
			Rank:  rank,
		})
		assignment.Cost += int64(rank * rank * size)
		occupancy[topic] += size
	}

	owners := topicOwners(state.input)
	for topic := range state.topics {
		usage := TopicUsage{
			Topic:      state.input.Topic(topic),
			Supervisor: owners[state.input.Topic(topic)],
			Occupancy:  occupancy[topic],
		}
		activeModes := lo.Filter(modes, func(mode uint64, _ int) bool { return selected(state.indexer.ModeIndex(topic, mode)) })
		if len(activeModes) > 1 {
			return nil, errors.Errorf("topic %d is active in %d modes", usage.Topic, len(activeModes))
		} else if len(activeModes) == 1 {
			usage.Mode = activeModes[0]
		}
		assignment.Topics = append(assignment.Topics, usage)
	}

	return assignment, nil
}

func topicOwners(modelInput ModelInput) map[int64]uint64 {
	owners := make(map[int64]uint64, len(modelInput.Topics))
	for _, supervisor := range modelInput.Supervisors {
		for _, topic := range supervisor.TopicIds {
			owners[topic] = supervisor.Id
		}
	}
	return owners
}

func verify(assignment *Assignment, modelInput ModelInput) bool {
	if assignment == nil || len(modelInput.Topics) == 0 ||
		len(assignment.Students) != len(modelInput.Students) ||
		len(assignment.Groups) != len(modelInput.Groups) {
		return false
	}

	first, last := modelInput.Topics[0], modelInput.Topics[len(modelInput.Topics)-1]
	occupancy := make(map[int64]uint64)
	var cost int64

	// Check that every student and group holds exactly one topic of the range with its own rank
	for i, placement := range assignment.Students {
		student := modelInput.Students[i]
		if placement.Id != student.Id || placement.Topic < first || placement.Topic > last || student.Ranks[placement.Topic] != placement.Rank {
			return false
		}
		occupancy[placement.Topic]++
		cost += int64(placement.Rank * placement.Rank)
	}
	for i, placement := range assignment.Groups {
		group := modelInput.Groups[i]
		if placement.Id != group.Id || placement.Topic < first || placement.Topic > last || group.Ranks[placement.Topic] != placement.Rank {
			return false
		}
		occupancy[placement.Topic] += group.Size
		cost += int64(placement.Rank * placement.Rank * group.Size)
	}
	if cost != assignment.Cost {
		return false
	}

	// Check that:
	// - Occupancy matches the capacity of the active mode (2 or 3), or is zero without mode
	// - At most one topic runs in three-people mode
	// - Every supervisor activates between min and max of its topics
	if len(assignment.Topics) != len(modelInput.Topics) {
		return false
	}
	activeModes := make(map[int64]uint64)
	threePeopleTopics := 0
	for _, usage := range assignment.Topics {
		if usage.Mode > uint64(len(modes)) || usage.Occupancy != occupancy[usage.Topic] {
			return false
		}
		if usage.Mode == 0 && usage.Occupancy != 0 || usage.Mode != 0 && usage.Occupancy != 1+usage.Mode {
			return false
		}
		if usage.Mode == 2 {
			threePeopleTopics++
		}
		activeModes[usage.Topic] = usage.Mode
	}
	if threePeopleTopics > 1 {
		return false
	}

	for _, supervisor := range modelInput.Supervisors {
		active := uint64(lo.CountBy(supervisor.TopicIds, func(topic int64) bool { return activeModes[topic] != 0 }))
		if active < supervisor.MinTopics || active > supervisor.MaxTopics {
			return false
		}
	}

	return true
}
