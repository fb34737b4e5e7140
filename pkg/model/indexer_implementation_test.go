package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexRoundTrip(t *testing.T, students, groups, topics uint64) {
	indexer := newIndexer(students, groups, topics)

	indices := make([]uint64, 0, indexer.Variables())
	for student := range students {
		for topic := range topics {
			index := indexer.StudentIndex(student, topic)
			kind, entity, attributeTopic := indexer.Attributes(index)
			assert.Equal(t, studentVariable, kind)
			assert.Equal(t, []uint64{student, topic}, []uint64{entity, attributeTopic})
			indices = append(indices, index)
		}
	}
	for group := range groups {
		for topic := range topics {
			index := indexer.GroupIndex(group, topic)
			kind, entity, attributeTopic := indexer.Attributes(index)
			assert.Equal(t, groupVariable, kind)
			assert.Equal(t, []uint64{group, topic}, []uint64{entity, attributeTopic})
			indices = append(indices, index)
		}
	}
	for topic := range topics {
		for _, mode := range modes {
			index := indexer.ModeIndex(topic, mode)
			kind, entity, attributeTopic := indexer.Attributes(index)
			assert.Equal(t, modeVariable, kind)
			assert.Equal(t, []uint64{mode, topic}, []uint64{entity, attributeTopic})
			indices = append(indices, index)
		}
	}

	// Indices must cover 1..Variables() exactly once
	assert.Len(t, indices, int(indexer.Variables()))
	for position, index := range indices {
		assert.Equal(t, uint64(position+1), index)
	}
}

func TestIndexAndAttributesDeterministic(t *testing.T) {
	scenarios := [][]uint64{
		{1, 0, 1},
		{4, 0, 2},
		{5, 1, 4},
		{20, 5, 10},
		{0, 3, 3},
	}

	for _, scenario := range scenarios {
		indexRoundTrip(t, scenario[0], scenario[1], scenario[2])
	}
}

func TestIndexAndAttributesNonDeterministic(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for range 10 {
		students := uint64(random.Intn(40))
		groups := uint64(random.Intn(10))
		topics := uint64(random.Intn(20) + 1)

		indexRoundTrip(t, students, groups, topics)
	}
}
