package sat

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

// Outcome reports how a single solver call ended.
type Outcome uint8

const (
	// Unknown means the call failed before the solver could decide.
	Unknown Outcome = iota
	Sat
	Unsat
	// Timeout means the solving budget ran out before a decision.
	Timeout
)

var outcomeNames = map[Outcome]string{
	Unknown: "unknown",
	Sat:     "sat",
	Unsat:   "unsat",
	Timeout: "timeout",
}

func (outcome Outcome) String() string {
	name, ok := outcomeNames[outcome]
	if !ok {
		return fmt.Sprintf("outcome-%d", uint8(outcome))
	}
	return name
}

// Valuation holds a satisfying assignment indexed by variable number,
// so index 0 is unused.
type Valuation []bool

// Solver builds sessions for one SAT backend.
type Solver interface {
	// Name identifies the backend in reports and CLI flags.
	Name() string
	// Open loads the formula into a fresh incremental session.
	Open(formula Formula) (Session, error)
}

// Session is one incremental solving run over a loaded formula. A
// session belongs to the goroutine that opened it.
type Session interface {
	// Extend adds clauses on top of everything loaded so far.
	Extend(clauses [][]int64)
	// Solve decides the current formula. A non-positive budget means
	// no deadline.
	Solve(budget time.Duration) (Outcome, error)
	// Value reports the polarity of a variable in the last Sat outcome.
	Value(variable uint64) bool
	// Valuation snapshots the full model of the last Sat outcome.
	Valuation() Valuation
	// Release frees backend resources. The session is unusable after.
	Release()
}

var solvers = map[string]Solver{
	"gini":          NewGiniSolver(),
	"kissat":        NewKissatSolver(),
	"cadical":       NewCadicalSolver(),
	"cryptominisat": NewCryptominisatSolver(),
	"minisat":       NewMinisatSolver(),
}

// SolverByName resolves a backend by its CLI name.
func SolverByName(name string) (Solver, bool) {
	solver, ok := solvers[name]
	return solver, ok
}

// SolverNames lists the available backends in sorted order.
func SolverNames() []string {
	names := lo.Keys(solvers)
	slices.Sort(names)
	return names
}
