package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexerRoundTrip(t *testing.T) {
	//** Arrange
	indexer := NewIndexer(4, 3)

	//** Act / Assert
	seen := make(map[uint64]bool)
	for step := uint64(0); step < 4; step++ {
		for user := uint64(0); user < 3; user++ {
			variable := indexer.Variable(step, user)
			assert.False(t, seen[variable], "variable %d handed out twice", variable)
			seen[variable] = true

			backStep, backUser := indexer.Pair(variable)
			assert.Equal(t, step, backStep)
			assert.Equal(t, user, backUser)
		}
	}
}

func TestIndexerIsContiguousFromOne(t *testing.T) {
	//** Arrange
	indexer := NewIndexer(5, 2)

	//** Act
	variables := make(map[uint64]bool)
	for step := uint64(0); step < 5; step++ {
		for user := uint64(0); user < 2; user++ {
			variables[indexer.Variable(step, user)] = true
		}
	}

	//** Assert
	assert.Equal(t, uint64(10), indexer.Variables())
	for variable := uint64(1); variable <= indexer.Variables(); variable++ {
		assert.True(t, variables[variable], "variable %d is missing", variable)
	}
}
