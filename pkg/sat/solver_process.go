package sat

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// pipeSolver wraps an external solver binary that reads DIMACS on
// stdin and reports its model on stdout. Satisfiable runs exit with
// code 10 and unsatisfiable runs with code 20, following the SAT
// competition convention.
type pipeSolver struct {
	name string
	args []string
}

func (solver pipeSolver) Name() string {
	return solver.name
}

func (solver pipeSolver) Open(formula Formula) (Session, error) {
	path, err := executablePath(solver.name)
	if err != nil {
		return nil, err
	}
	return &pipeSession{
		solver: solver,
		path:   path,
		formula: Formula{
			Variables: formula.Variables,
			Clauses:   slices.Clone(formula.Clauses),
		},
	}, nil
}

// pipeSession re-runs the solver binary from scratch on every Solve
// call, since an external process cannot keep incremental state alive
// between invocations.
type pipeSession struct {
	solver    pipeSolver
	path      string
	formula   Formula
	valuation Valuation
}

func (session *pipeSession) Extend(clauses [][]int64) {
	session.formula.Clauses = append(session.formula.Clauses, clauses...)
}

func (session *pipeSession) Solve(budget time.Duration) (Outcome, error) {
	ctx, cancel := solvingContext(budget)
	defer cancel()

	cmd := exec.CommandContext(ctx, session.path, session.solver.args...)
	cmd.Stdin = strings.NewReader(session.formula.ToDIMACS())
	output, err := cmd.Output()

	outcome, err := interpretExit(ctx, cmd, err)
	if outcome == Sat {
		session.valuation, err = parseModel(string(output), session.formula.Variables)
		if err != nil {
			return Unknown, err
		}
	}
	return outcome, err
}

func (session *pipeSession) Value(variable uint64) bool {
	return session.valuation[variable]
}

func (session *pipeSession) Valuation() Valuation {
	return session.valuation
}

func (session *pipeSession) Release() {}

func solvingContext(budget time.Duration) (context.Context, context.CancelFunc) {
	if budget > 0 {
		return context.WithTimeout(context.Background(), budget)
	}
	return context.Background(), func() {}
}

// interpretExit maps a finished solver process to an outcome.
func interpretExit(ctx context.Context, cmd *exec.Cmd, err error) (Outcome, error) {
	if ctx.Err() == context.DeadlineExceeded {
		return Timeout, nil
	}
	if err != nil && cmd.ProcessState == nil {
		return Unknown, fmt.Errorf("failed to run %v: %v", cmd.Path, err)
	}
	switch code := cmd.ProcessState.ExitCode(); code {
	case 10:
		return Sat, nil
	case 20:
		return Unsat, nil
	default:
		return Unknown, fmt.Errorf("%v exited with unexpected code %v", cmd.Path, code)
	}
}

// parseModel extracts the satisfying assignment from the "v" lines of
// a solver's output.
func parseModel(output string, variables uint64) (Valuation, error) {
	valueLines := lo.Filter(strings.Split(output, "\n"), func(line string, _ int) bool {
		return strings.HasPrefix(line, "v")
	})

	valuation := make(Valuation, variables+1)
	for _, line := range valueLines {
		for _, token := range strings.Fields(line)[1:] {
			literal, err := strconv.ParseInt(token, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed literal %q in solver output", token)
			}
			if literal > 0 && uint64(literal) <= variables {
				valuation[literal] = true
			}
		}
	}
	return valuation, nil
}
