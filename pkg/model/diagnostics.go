package model

import (
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type seat struct {
	topic    int64
	wildcard bool // Third seat of the only topic allowed to run with three people
}

// FirstChoiceBound returns how many students, at most, can be assigned a topic they ranked 1.
// It is the size of a largest matching between students and seats, where every topic offers two seats plus
// a single extra seat shared by all topics. Groups are ignored, since they can only take seats away
func FirstChoiceBound(modelInput ModelInput) int {
	if len(modelInput.Students) == 0 {
		return 0
	}

	seats := make([]seat, 0, 2*len(modelInput.Topics)+1)
	for _, topic := range modelInput.Topics {
		seats = append(seats, seat{topic: topic}, seat{topic: topic})
	}
	seats = append(seats, seat{wildcard: true})

	firstChoices := lo.Map(modelInput.Students, func(student Student, _ int) []int64 {
		return lo.Filter(modelInput.Topics, func(topic int64, _ int) bool { return student.Ranks[topic] == 1 })
	})

	// Build neighbors predicate based on first choices
	neighbors := func(studentAny any, seatAny any) (bool, error) {
		student, candidate := studentAny.(int), seatAny.(seat)
		if candidate.wildcard {
			return len(firstChoices[student]) > 0, nil
		}
		return slices.Contains(firstChoices[student], candidate.topic), nil
	}

	// Transform students and seats to slices of any
	studentsAny, seatsAny := lo.Map(lo.Range(len(modelInput.Students)), func(student int, _ int) any { return student }), lo.Map(seats, func(candidate seat, _ int) any { return candidate })

	graph, err := bipartitegraph.NewBipartiteGraph(studentsAny, seatsAny, neighbors)
	if err != nil {
		return 0
	}
	return len(graph.LargestMatching())
}
