package model

type indexerImplementation struct {
	students uint64
	groups   uint64
	topics   uint64
}

func (indexer *indexerImplementation) StudentIndex(student, topic uint64) uint64 {
	return student*indexer.topics + topic + 1
}

func (indexer *indexerImplementation) GroupIndex(group, topic uint64) uint64 {
	return indexer.students*indexer.topics + group*indexer.topics + topic + 1
}

func (indexer *indexerImplementation) ModeIndex(topic, mode uint64) uint64 {
	return (indexer.students+indexer.groups)*indexer.topics + topic*uint64(len(modes)) + mode
}

func (indexer *indexerImplementation) Attributes(index uint64) (kind variableKind, entity uint64, topic uint64) {
	index = index - 1

	if studentVariables := indexer.students * indexer.topics; index < studentVariables {
		return studentVariable, index / indexer.topics, index % indexer.topics
	} else {
		index -= studentVariables
	}

	if groupVariables := indexer.groups * indexer.topics; index < groupVariables {
		return groupVariable, index / indexer.topics, index % indexer.topics
	} else {
		index -= groupVariables
	}

	return modeVariable, index%uint64(len(modes)) + 1, index / uint64(len(modes))
}

func (indexer *indexerImplementation) Variables() uint64 {
	return (indexer.students+indexer.groups)*indexer.topics + indexer.topics*uint64(len(modes))
}
