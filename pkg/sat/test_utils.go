package sat

import (
	"math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

// GenerateFormula builds a random formula with three literals per
// clause, used to exercise backends beyond the hand-written fixtures.
func GenerateFormula(variables uint64, clauses uint64) Formula {
	formula := Formula{Variables: variables}
	for range clauses {
		clause := make([]int64, 0, 3)
		for range 3 {
			literal := int64(rand.Uint64()%variables + 1)
			if rand.IntN(2) == 0 {
				literal = -literal
			}
			clause = append(clause, literal)
		}
		formula.AddClause(clause...)
	}
	return formula
}

// AssertSolution checks that the valuation satisfies every clause of
// the formula.
func AssertSolution(t *testing.T, formula Formula, valuation Valuation) {
	for _, clause := range formula.Clauses {
		satisfied := lo.SomeBy(clause, func(literal int64) bool {
			if literal > 0 {
				return valuation[literal]
			}
			return !valuation[-literal]
		})
		assert.True(t, satisfied, "clause %v is not satisfied", clause)
	}
}
