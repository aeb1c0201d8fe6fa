package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	//** Arrange
	instances := []BatchInstance{
		{
			Name: "separated",
			Problem: mustProblem(t, 2, 2,
				Authorization(0, 0, 1),
				Authorization(1, 0, 1),
				SeparationOfDuty(0, 1)),
		},
		{
			Name: "contradictory",
			Problem: mustProblem(t, 2, 2,
				SeparationOfDuty(0, 1),
				BindingOfDuty(0, 1)),
		},
	}

	//** Act
	results, err := RunBatch(instances, "direct", "gini", Options{})

	//** Assert
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "separated", results[0].Instance)
	assert.Equal(t, "direct", results[0].Encoder)
	assert.Equal(t, "gini", results[0].Solver)
	assert.Equal(t, Exhausted, results[0].Status)
	assert.Equal(t, uint64(2), results[0].Solutions)
	assert.Equal(t, uint64(3), results[0].Calls)
	assert.NoError(t, results[0].Err)

	assert.Equal(t, "contradictory", results[1].Instance)
	assert.Equal(t, Infeasible, results[1].Status)
	assert.Equal(t, uint64(0), results[1].Solutions)
	assert.Equal(t, uint64(1), results[1].Calls)
}

func TestRunBatchUnknownEncoder(t *testing.T) {
	//** Act
	_, err := RunBatch(nil, "quantum", "gini", Options{})

	//** Assert
	var encodingError *EncodingError
	require.ErrorAs(t, err, &encodingError)
	assert.Equal(t, "quantum", encodingError.Encoder)
}

func TestRunBatchUnknownSolver(t *testing.T) {
	//** Act
	_, err := RunBatch(nil, "direct", "chaff", Options{})

	//** Assert
	var backendError *BackendError
	require.ErrorAs(t, err, &backendError)
	assert.Equal(t, "chaff", backendError.Solver)
}
