package model

import (
	"fmt"

	"github.com/limaJavier/assignment/pkg/mip"
	"github.com/samber/lo"
)

type constraintState struct {
	input   ModelInput
	indexer indexer

	students,
	groups,
	topics uint64
}

// Σ_t x[s,t] = 1 for every student s
func studentConstraints(state constraintState) []mip.Constraint {
	constraints := make([]mip.Constraint, 0, state.students)
	for student := range state.students {
		constraints = append(constraints, mip.Constraint{
			Name: "exactly_one_topic_per_student",
			Terms: lo.Times(int(state.topics), func(topic int) mip.Term {
				return mip.Term{Variable: state.indexer.StudentIndex(student, uint64(topic)), Coefficient: 1}
			}),
			Sense: mip.Equal,
			RHS:   1,
		})
	}
	return constraints
}

// Σ_t x[g,t] = 1 for every group g
func groupConstraints(state constraintState) []mip.Constraint {
	constraints := make([]mip.Constraint, 0, state.groups)
	for group := range state.groups {
		constraints = append(constraints, mip.Constraint{
			Name: "exactly_one_topic_per_group",
			Terms: lo.Times(int(state.topics), func(topic int) mip.Term {
				return mip.Term{Variable: state.indexer.GroupIndex(group, uint64(topic)), Coefficient: 1}
			}),
			Sense: mip.Equal,
			RHS:   1,
		})
	}
	return constraints
}

// min(v) <= Σ_{t in topics(v)} Σ_m y[t,m] <= max(v) for every supervisor v
func supervisorConstraints(state constraintState) []mip.Constraint {
	constraints := make([]mip.Constraint, 0, 2*len(state.input.Supervisors))
	for _, supervisor := range state.input.Supervisors {
		terms := make([]mip.Term, 0, len(supervisor.TopicIds)*len(modes))
		for _, topicId := range supervisor.TopicIds {
			topic := state.input.TopicIndex(topicId)
			for _, mode := range modes {
				terms = append(terms, mip.Term{Variable: state.indexer.ModeIndex(topic, mode), Coefficient: 1})
			}
		}

		constraints = append(constraints,
			mip.Constraint{
				Name:  "min_topics_supervisor",
				Terms: terms,
				Sense: mip.GreaterEqual,
				RHS:   int64(supervisor.MinTopics),
			},
			mip.Constraint{
				Name:  "max_topics_supervisor",
				Terms: terms,
				Sense: mip.LessEqual,
				RHS:   int64(supervisor.MaxTopics),
			},
		)
	}
	return constraints
}

// Σ_m y[t,m] <= 1 for every topic t
func modeConstraints(state constraintState) []mip.Constraint {
	constraints := make([]mip.Constraint, 0, state.topics)
	for topic := range state.topics {
		constraints = append(constraints, mip.Constraint{
			Name: "max_one_mode_per_topic",
			Terms: lo.Map(modes, func(mode uint64, _ int) mip.Term {
				return mip.Term{Variable: state.indexer.ModeIndex(topic, mode), Coefficient: 1}
			}),
			Sense: mip.LessEqual,
			RHS:   1,
		})
	}
	return constraints
}

// Σ_t y[t,2] <= 1, at most one topic runs with three people
func threePeopleConstraints(state constraintState) []mip.Constraint {
	return []mip.Constraint{{
		Name: "limit_three_people_topics",
		Terms: lo.Times(int(state.topics), func(topic int) mip.Term {
			return mip.Term{Variable: state.indexer.ModeIndex(uint64(topic), 2), Coefficient: 1}
		}),
		Sense: mip.LessEqual,
		RHS:   1,
	}}
}

// Σ_s x[s,t] + Σ_g size(g) x[g,t] - Σ_m (1+m) y[t,m] = 0 for every topic t
func occupancyConstraints(state constraintState) []mip.Constraint {
	constraints := make([]mip.Constraint, 0, state.topics)
	for topic := range state.topics {
		terms := make([]mip.Term, 0, state.students+state.groups+uint64(len(modes)))
		for student := range state.students {
			terms = append(terms, mip.Term{Variable: state.indexer.StudentIndex(student, topic), Coefficient: 1})
		}
		for group := range state.groups {
			terms = append(terms, mip.Term{Variable: state.indexer.GroupIndex(group, topic), Coefficient: int64(state.input.Groups[group].Size)})
		}
		for _, mode := range modes {
			terms = append(terms, mip.Term{Variable: state.indexer.ModeIndex(topic, mode), Coefficient: -int64(1 + mode)})
		}

		constraints = append(constraints, mip.Constraint{
			Name:  "occupancy_balance",
			Terms: terms,
			Sense: mip.Equal,
			RHS:   0,
		})
	}
	return constraints
}

// Σ_s Σ_t rank(s,t)² x[s,t] + Σ_g Σ_t rank(g,t)² size(g) x[g,t]
func objective(state constraintState) []mip.Term {
	terms := make([]mip.Term, 0, (state.students+state.groups)*state.topics)
	for student := range state.students {
		preferences := state.input.Students[student].Preferences
		for topic := range state.topics {
			rank := int64(preferences[topic])
			terms = append(terms, mip.Term{Variable: state.indexer.StudentIndex(student, topic), Coefficient: rank * rank})
		}
	}
	for group := range state.groups {
		preferences, size := state.input.Groups[group].Preferences, int64(state.input.Groups[group].Size)
		for topic := range state.topics {
			rank := int64(preferences[topic])
			terms = append(terms, mip.Term{Variable: state.indexer.GroupIndex(group, topic), Coefficient: rank * rank * size})
		}
	}
	return terms
}

// Human readable variable names for the LP file
func variableNames(state constraintState) []string {
	names := make([]string, state.indexer.Variables())
	for index := range state.indexer.Variables() {
		kind, entity, topic := state.indexer.Attributes(index + 1)
		topicName := lpNumber(state.input.Topic(topic))

		switch kind {
		case studentVariable:
			names[index] = fmt.Sprintf("x_st_students_%d_%v", state.input.Students[entity].Id, topicName)
		case groupVariable:
			names[index] = fmt.Sprintf("x_gt_groups_%d_%v", state.input.Groups[entity].Id, topicName)
		case modeVariable:
			names[index] = fmt.Sprintf("topic_mode_%v_%d", topicName, entity)
		}
	}
	return names
}

// LP names cannot contain '-'
func lpNumber(number int64) string {
	if number < 0 {
		return fmt.Sprintf("m%d", -number)
	}
	return fmt.Sprint(number)
}
