package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeAcceptsFeasibleProblems(t *testing.T) {
	for name, problem := range testProblems(t) {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			require.NotEmpty(t, bruteForce(problem), "the catalog problem must be feasible")

			//** Act
			analysis := Analyze(problem)

			//** Assert
			assert.False(t, analysis.Infeasible)
			assert.Empty(t, analysis.Reasons)
		})
	}
}

func TestAnalyzeFlagsStepsWithoutCandidates(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 2, 2,
		Authorization(0, 0),
		Authorization(1, 0),
	)

	//** Act
	analysis := Analyze(problem)

	//** Assert
	assert.True(t, analysis.Infeasible)
	require.Len(t, analysis.Reasons, 1)
	assert.Contains(t, analysis.Reasons[0], "step 1")
}

func TestAnalyzeDropsZeroCapacityUsers(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 2, 2,
		Authorization(1, 0),
		UserCapacity(0, 0),
	)

	//** Act
	analysis := Analyze(problem)

	//** Assert
	assert.True(t, analysis.Infeasible)
	require.NotEmpty(t, analysis.Reasons)
	assert.Contains(t, analysis.Reasons[0], "step 1")
	assert.Equal(t, []uint64{1}, analysis.Candidates[0])
	assert.Empty(t, analysis.Candidates[1])
}

func TestAnalyzeFlagsSeparationInsideBindingBlock(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 3, 3,
		BindingOfDuty(0, 1),
		BindingOfDuty(1, 2),
		SeparationOfDuty(0, 2),
	)

	//** Act
	analysis := Analyze(problem)

	//** Assert
	assert.True(t, analysis.Infeasible)
	require.NotEmpty(t, analysis.Reasons)
	assert.Contains(t, analysis.Reasons[0], "binding block")
}

func TestAnalyzeFlagsBlocksWithoutSharedCandidate(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 2, 2,
		BindingOfDuty(0, 1),
		Authorization(0, 0),
		Authorization(1, 1),
	)

	//** Act
	analysis := Analyze(problem)

	//** Assert
	assert.True(t, analysis.Infeasible)
	found := false
	for _, reason := range analysis.Reasons {
		if strings.Contains(reason, "shared candidate") {
			found = true
		}
	}
	assert.True(t, found, "reasons: %v", analysis.Reasons)
}

func TestAnalyzeFlagsUncoverableSeparationCliques(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 3, 2,
		SeparationOfDuty(0, 1),
		SeparationOfDuty(1, 2),
		SeparationOfDuty(0, 2),
	)

	//** Act
	analysis := Analyze(problem)

	//** Assert
	assert.True(t, analysis.Infeasible)
	require.NotEmpty(t, analysis.Reasons)
	assert.Contains(t, analysis.Reasons[0], "distinct users")
}

func TestBindingBlocksGroupTransitively(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 5, 2,
		BindingOfDuty(0, 1),
		BindingOfDuty(3, 2),
	)

	//** Act
	blocks := bindingBlocks(problem)

	//** Assert
	assert.Equal(t, [][]uint64{{0, 1}, {2, 3}, {4}}, blocks)
}

func TestAnalyzeNeverFlagsSolvableProblems(t *testing.T) {
	// A quick proof of infeasibility must never appear when brute
	// force can still find a solution.
	problems := []Problem{
		mustProblem(t, 3, 3, SeparationOfDuty(0, 1), BindingOfDuty(1, 2)),
		mustProblem(t, 4, 2,
			BindingOfDuty(0, 2),
			BindingOfDuty(1, 3),
			SeparationOfDuty(0, 1)),
		mustProblem(t, 3, 3,
			Authorization(0, 0, 1, 2),
			Authorization(1, 1, 2),
			Authorization(2, 2),
			SeparationOfDuty(0, 1)),
	}

	for _, problem := range problems {
		require.NotEmpty(t, bruteForce(problem))
		analysis := Analyze(problem)
		assert.False(t, analysis.Infeasible, "reasons: %v", analysis.Reasons)
	}
}
