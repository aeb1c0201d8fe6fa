package sat

import (
	"fmt"
	"strings"
)

// Formula is a propositional formula in conjunctive normal form.
// Variables are numbered from 1 and literals follow the DIMACS
// convention: the variable number asserts it, its negation denies it.
type Formula struct {
	Variables uint64
	Clauses   [][]int64
}

// NewVariable reserves a fresh variable and returns its number.
func (formula *Formula) NewVariable() uint64 {
	formula.Variables++
	return formula.Variables
}

// AddClause appends one clause given as literals.
func (formula *Formula) AddClause(literals ...int64) {
	formula.Clauses = append(formula.Clauses, literals)
}

// ToDIMACS transforms the formula into the DIMACS-CNF string format
// understood by every external solver.
func (formula Formula) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", formula.Variables, len(formula.Clauses))
	for _, clause := range formula.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}
