package model

// Indexer translates between (step, user) pairs and the propositional
// variables describing them.
type Indexer interface {
	// Variable returns the variable asserting that the step is
	// performed by the user. Variables are numbered from 1.
	Variable(step, user uint64) uint64
	// Pair recovers the (step, user) pair behind a variable.
	Pair(variable uint64) (step, user uint64)
	// Variables reports how many assignment variables exist.
	Variables() uint64
}

// NewIndexer lays the assignment variables out row-major by step.
func NewIndexer(steps, users uint64) Indexer {
	return rowMajorIndexer{steps: steps, users: users}
}

type rowMajorIndexer struct {
	steps uint64
	users uint64
}

func (indexer rowMajorIndexer) Variable(step, user uint64) uint64 {
	return step*indexer.users + user + 1
}

func (indexer rowMajorIndexer) Pair(variable uint64) (uint64, uint64) {
	offset := variable - 1
	return offset / indexer.users, offset % indexer.users
}

func (indexer rowMajorIndexer) Variables() uint64 {
	return indexer.steps * indexer.users
}
