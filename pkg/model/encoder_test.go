package model

import (
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wspsolver/pkg/sat"
)

func giniBackend() sat.Solver {
	solver, _ := sat.SolverByName("gini")
	return solver
}

func allEncoders() []Encoder {
	return []Encoder{DirectEncoder{}, SymmetryEncoder{}, HybridEncoder{}}
}

func enumerate(t *testing.T, encoder Encoder, problem Problem) Result {
	t.Helper()
	result := NewEnumerator(encoder, giniBackend()).Solve(problem, Options{})
	require.NoError(t, result.Err)
	return result
}

func assignmentKeys(assignments []Assignment) []string {
	keys := lo.Map(assignments, func(assignment Assignment, _ int) string {
		return assignmentKey(assignment)
	})
	slices.Sort(keys)
	return keys
}

// fullSolutionSet enumerates and expands symmetry representatives back
// into their orbits, so all encoders report the same set shape.
func fullSolutionSet(t *testing.T, encoder Encoder, problem Problem) []string {
	t.Helper()
	result := enumerate(t, encoder, problem)
	solutions := result.Solutions
	if encoder.Name() == "symmetry" {
		solutions = lo.FlatMap(solutions, func(solution Assignment, _ int) []Assignment {
			return Orbit(problem, solution)
		})
	}
	return assignmentKeys(solutions)
}

// bruteForce walks every possible assignment and keeps the ones the
// validator accepts, the ground truth every encoder must reproduce.
func bruteForce(problem Problem) []Assignment {
	solutions := make([]Assignment, 0)
	assignment := make(Assignment, problem.Steps)
	var walk func(step uint64)
	walk = func(step uint64) {
		if step == problem.Steps {
			if valid, _ := Validate(problem, assignment); valid {
				solutions = append(solutions, slices.Clone(assignment))
			}
			return
		}
		for user := uint64(0); user < problem.Users; user++ {
			assignment[step] = user
			walk(step + 1)
		}
	}
	walk(0)
	return solutions
}

func testProblems(t *testing.T) map[string]Problem {
	t.Helper()
	return map[string]Problem{
		"unconstrained": mustProblem(t, 2, 2),
		"separation":    mustProblem(t, 3, 3, SeparationOfDuty(0, 1), SeparationOfDuty(1, 2)),
		"binding":       mustProblem(t, 3, 2, BindingOfDuty(0, 2)),
		"at-most-k":     mustProblem(t, 3, 3, AtMostK(2, 0, 1, 2)),
		"capacity": mustProblem(t, 3, 3,
			UserCapacity(0, 1), UserCapacity(1, 1), UserCapacity(2, 1)),
		"one-team": mustProblem(t, 3, 4,
			OneTeam([]uint64{0, 1}, []uint64{0, 1}, []uint64{2, 3})),
		"authorised": mustProblem(t, 3, 3,
			Authorization(0, 0, 1),
			Authorization(1, 1, 2),
			Authorization(2, 0, 2),
			SeparationOfDuty(0, 2)),
		"mixed": mustProblem(t, 4, 4,
			Authorization(3, 0, 1, 2, 3),
			SeparationOfDuty(0, 1),
			BindingOfDuty(1, 3),
			AtMostK(2, 0, 1, 2),
			UserCapacity(0, 2)),
	}
}

func TestTwoSeparatedSteps(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 2, 2,
		Authorization(0, 0, 1),
		Authorization(1, 0, 1),
		SeparationOfDuty(0, 1),
	)
	expected := []Assignment{{0, 1}, {1, 0}}

	for _, encoder := range []Encoder{DirectEncoder{}, HybridEncoder{}} {
		t.Run(encoder.Name(), func(t *testing.T) {
			//** Act
			result := enumerate(t, encoder, problem)

			//** Assert
			assert.Equal(t, Exhausted, result.Status)
			assert.ElementsMatch(t, expected, result.Solutions)
		})
	}

	t.Run("symmetry", func(t *testing.T) {
		//** Act
		result := enumerate(t, SymmetryEncoder{}, problem)

		//** Assert
		assert.Equal(t, Exhausted, result.Status)
		require.Len(t, result.Solutions, 1)
		assert.ElementsMatch(t, expected, Orbit(problem, result.Solutions[0]))
	})
}

func TestContradictorySeparationAndBinding(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 2, 2,
		Authorization(0, 0, 1),
		Authorization(1, 0, 1),
		SeparationOfDuty(0, 1),
		BindingOfDuty(0, 1),
	)

	for _, encoder := range allEncoders() {
		t.Run(encoder.Name(), func(t *testing.T) {
			//** Act
			result := enumerate(t, encoder, problem)

			//** Assert
			assert.Equal(t, Infeasible, result.Status)
			assert.Empty(t, result.Solutions)
			assert.Equal(t, uint64(1), result.Calls)
		})
	}
}

func TestOverloadedSingleUser(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 3, 2,
		Authorization(0, 0, 1, 2),
		Authorization(1),
		UserCapacity(0, 2),
	)

	for _, encoder := range allEncoders() {
		t.Run(encoder.Name(), func(t *testing.T) {
			//** Act
			result := enumerate(t, encoder, problem)

			//** Assert
			assert.Equal(t, Infeasible, result.Status)
		})
	}
}

func TestSingleUserScope(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 3, 3, AtMostK(1, 0, 1, 2))
	expected := []Assignment{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}

	for _, encoder := range []Encoder{DirectEncoder{}, HybridEncoder{}} {
		t.Run(encoder.Name(), func(t *testing.T) {
			//** Act
			result := enumerate(t, encoder, problem)

			//** Assert
			assert.Equal(t, Exhausted, result.Status)
			assert.ElementsMatch(t, expected, result.Solutions)
		})
	}

	t.Run("symmetry", func(t *testing.T) {
		//** Act
		result := enumerate(t, SymmetryEncoder{}, problem)

		//** Assert
		require.Len(t, result.Solutions, 1)
		assert.ElementsMatch(t, expected, Orbit(problem, result.Solutions[0]))
	})
}

func TestEncodersAgreeWithBruteForce(t *testing.T) {
	for name, problem := range testProblems(t) {
		expected := assignmentKeys(bruteForce(problem))
		for _, encoder := range allEncoders() {
			t.Run(name+"/"+encoder.Name(), func(t *testing.T) {
				assert.Equal(t, expected, fullSolutionSet(t, encoder, problem))
			})
		}
	}
}

func TestSymmetryEnumeratesTheCanonicalQuotient(t *testing.T) {
	for name, problem := range testProblems(t) {
		t.Run(name, func(t *testing.T) {
			//** Act
			result := enumerate(t, SymmetryEncoder{}, problem)

			//** Assert
			for _, solution := range result.Solutions {
				assert.Equal(t, Canonicalize(problem, solution), solution)
			}
			canonical := lo.UniqBy(lo.Map(bruteForce(problem), func(assignment Assignment, _ int) Assignment {
				return Canonicalize(problem, assignment)
			}), assignmentKey)
			assert.ElementsMatch(t, canonical, result.Solutions)
		})
	}
}

func TestEverySolutionValidates(t *testing.T) {
	for name, problem := range testProblems(t) {
		for _, encoder := range allEncoders() {
			t.Run(name+"/"+encoder.Name(), func(t *testing.T) {
				result := enumerate(t, encoder, problem)
				for _, report := range ValidateSolutions(problem, result.Solutions) {
					assert.True(t, report.Valid, "assignment %v: %v", report.Assignment, report.Violations)
				}
			})
		}
	}
}

func TestEnumerationNeverRepeats(t *testing.T) {
	for name, problem := range testProblems(t) {
		for _, encoder := range allEncoders() {
			t.Run(name+"/"+encoder.Name(), func(t *testing.T) {
				result := enumerate(t, encoder, problem)
				keys := assignmentKeys(result.Solutions)
				assert.Len(t, lo.Uniq(keys), len(keys))
			})
		}
	}
}

func TestCallsAreOneAboveSolutions(t *testing.T) {
	for name, problem := range testProblems(t) {
		for _, encoder := range allEncoders() {
			t.Run(name+"/"+encoder.Name(), func(t *testing.T) {
				result := enumerate(t, encoder, problem)
				require.Contains(t, []Status{Exhausted, Infeasible}, result.Status)
				assert.Equal(t, uint64(len(result.Solutions))+1, result.Calls)
			})
		}
	}
}

func TestRelaxingBoundsNeverLosesSolutions(t *testing.T) {
	//** Arrange
	tight := mustProblem(t, 3, 3, AtMostK(1, 0, 1, 2), UserCapacity(0, 1))
	relaxedBound := mustProblem(t, 3, 3, AtMostK(2, 0, 1, 2), UserCapacity(0, 1))
	relaxedCapacity := mustProblem(t, 3, 3, AtMostK(1, 0, 1, 2), UserCapacity(0, 3))

	for _, encoder := range allEncoders() {
		t.Run(encoder.Name(), func(t *testing.T) {
			//** Act
			before := fullSolutionSet(t, encoder, tight)

			//** Assert
			require.NotEmpty(t, before)
			assert.Subset(t, fullSolutionSet(t, encoder, relaxedBound), before)
			assert.Subset(t, fullSolutionSet(t, encoder, relaxedCapacity), before)
		})
	}
}

func TestBlockingClauseTargetsOneAssignment(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 2, 2)
	encoding, err := DirectEncoder{}.Encode(problem)
	require.NoError(t, err)

	//** Act
	clause := encoding.BlockingClause(Assignment{0, 1})

	//** Assert
	assert.ElementsMatch(t, []int64{
		-int64(encoding.variables[0][0]),
		-int64(encoding.variables[1][1]),
	}, clause)
}

func TestDecodeRejectsAmbiguousModels(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 1, 2)
	encoding, err := DirectEncoder{}.Encode(problem)
	require.NoError(t, err)

	valuation := make(sat.Valuation, encoding.Formula.Variables+1)
	valuation[encoding.variables[0][0]] = true
	valuation[encoding.variables[0][1]] = true

	//** Act
	_, err = encoding.Decode(valuation)

	//** Assert
	require.Error(t, err)
	assert.IsType(t, &EncodingError{}, err)
}

func TestCandidateMatrixIntersectsAuthorisations(t *testing.T) {
	//** Arrange
	problem := mustProblem(t, 3, 3,
		Authorization(0, 0, 1),
		Authorization(0, 1, 2),
		Authorization(1, 2),
	)

	//** Act
	candidates := candidateMatrix(problem)

	//** Assert
	assert.Equal(t, []uint64{2}, candidates[0])
	assert.Equal(t, []uint64{0, 2}, candidates[1])
	assert.Equal(t, []uint64{1, 2}, candidates[2])
}

func TestEncoderRegistry(t *testing.T) {
	assert.Equal(t, []string{"direct", "hybrid", "symmetry"}, EncoderNames())
	for _, name := range EncoderNames() {
		encoder, ok := EncoderByName(name)
		require.True(t, ok)
		assert.Equal(t, name, encoder.Name())
	}
	_, ok := EncoderByName("quantum")
	assert.False(t, ok)
}
