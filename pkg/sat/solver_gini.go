package sat

import (
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// NewGiniSolver builds the in-process gini backend, the only one that
// needs no external binary.
func NewGiniSolver() Solver {
	return giniSolver{}
}

// giniSolver runs gini in-process, which keeps learned clauses alive
// across the incremental solve/block iterations.
type giniSolver struct{}

func (giniSolver) Name() string {
	return "gini"
}

func (giniSolver) Open(formula Formula) (Session, error) {
	session := &giniSession{
		g:         gini.New(),
		variables: formula.Variables,
	}
	session.load(formula.Clauses)
	return session, nil
}

type giniSession struct {
	g         *gini.Gini
	variables uint64
}

func (session *giniSession) load(clauses [][]int64) {
	for _, clause := range clauses {
		for _, literal := range clause {
			variable := literal
			if variable < 0 {
				variable = -variable
			}
			if uint64(variable) > session.variables {
				session.variables = uint64(variable)
			}
			session.g.Add(z.Dimacs2Lit(int(literal)))
		}
		session.g.Add(z.LitNull)
	}
}

func (session *giniSession) Extend(clauses [][]int64) {
	session.load(clauses)
}

func (session *giniSession) Solve(budget time.Duration) (Outcome, error) {
	if budget <= 0 {
		return outcomeFromGini(session.g.Solve()), nil
	}
	return outcomeFromGini(session.g.Try(budget)), nil
}

func (session *giniSession) Value(variable uint64) bool {
	return session.g.Value(z.Dimacs2Lit(int(variable)))
}

func (session *giniSession) Valuation() Valuation {
	valuation := make(Valuation, session.variables+1)
	for variable := uint64(1); variable <= session.variables; variable++ {
		valuation[variable] = session.g.Value(z.Dimacs2Lit(int(variable)))
	}
	return valuation
}

func (session *giniSession) Release() {}

func outcomeFromGini(result int) Outcome {
	switch result {
	case 1:
		return Sat
	case -1:
		return Unsat
	default:
		return Timeout
	}
}
