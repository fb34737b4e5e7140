package model

type variableKind int

const (
	studentVariable variableKind = iota
	groupVariable
	modeVariable
)

// Modes a topic can be activated in; mode m holds exactly 1+m occupants
var modes = []uint64{1, 2}

// indexer interface is designed to give a unique index to every decision variable and vice versa.
// Students, groups and topics are addressed by their position in the model input, indices start at 1
type indexer interface {
	// Index of x[student, topic]
	StudentIndex(student, topic uint64) uint64
	// Index of x[group, topic]
	GroupIndex(group, topic uint64) uint64
	// Index of y[topic, mode]
	ModeIndex(topic, mode uint64) uint64
	// Returns the kind of the variable and its attributes. For mode variables entity is the mode
	Attributes(index uint64) (kind variableKind, entity uint64, topic uint64)
	// Total number of variables
	Variables() uint64
}

func newIndexer(students, groups, topics uint64) indexer {
	return &indexerImplementation{
		students: students,
		groups:   groups,
		topics:   topics,
	}
}
