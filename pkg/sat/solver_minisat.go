package sat

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"
)

// NewMinisatSolver adapts the minisat binary, which only talks through
// files: the formula goes into a temporary input file and the model
// comes back in a result file.
func NewMinisatSolver() Solver {
	return minisatSolver{}
}

type minisatSolver struct{}

func (minisatSolver) Name() string {
	return "minisat"
}

func (minisatSolver) Open(formula Formula) (Session, error) {
	path, err := executablePath("minisat")
	if err != nil {
		return nil, err
	}
	return &minisatSession{
		path: path,
		formula: Formula{
			Variables: formula.Variables,
			Clauses:   slices.Clone(formula.Clauses),
		},
	}, nil
}

type minisatSession struct {
	path      string
	formula   Formula
	valuation Valuation
}

func (session *minisatSession) Extend(clauses [][]int64) {
	session.formula.Clauses = append(session.formula.Clauses, clauses...)
}

func (session *minisatSession) Solve(budget time.Duration) (Outcome, error) {
	input, err := os.CreateTemp("", "wsp-*.cnf")
	if err != nil {
		return Unknown, err
	}
	defer os.Remove(input.Name())
	if _, err := input.WriteString(session.formula.ToDIMACS()); err != nil {
		input.Close()
		return Unknown, err
	}
	if err := input.Close(); err != nil {
		return Unknown, err
	}

	result, err := os.CreateTemp("", "wsp-*.out")
	if err != nil {
		return Unknown, err
	}
	result.Close()
	defer os.Remove(result.Name())

	ctx, cancel := solvingContext(budget)
	defer cancel()

	cmd := exec.CommandContext(ctx, session.path, "-verb=0", input.Name(), result.Name())
	_, err = cmd.Output()

	outcome, err := interpretExit(ctx, cmd, err)
	if outcome == Sat {
		session.valuation, err = parseMinisatResult(result.Name(), session.formula.Variables)
		if err != nil {
			return Unknown, err
		}
	}
	return outcome, err
}

func (session *minisatSession) Value(variable uint64) bool {
	return session.valuation[variable]
}

func (session *minisatSession) Valuation() Valuation {
	return session.valuation
}

func (session *minisatSession) Release() {}

// parseMinisatResult reads minisat's result file, whose first line
// states SAT and whose second line lists the model's literals.
func parseMinisatResult(name string, variables uint64) (Valuation, error) {
	content, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	lines := strings.SplitN(string(content), "\n", 2)
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "SAT" {
		return nil, fmt.Errorf("unexpected minisat result %q", strings.TrimSpace(lines[0]))
	}

	valuation := make(Valuation, variables+1)
	for _, token := range strings.Fields(lines[1]) {
		literal, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed literal %q in minisat result", token)
		}
		if literal > 0 && uint64(literal) <= variables {
			valuation[literal] = true
		}
	}
	return valuation, nil
}
