package sat

// NewKissatSolver adapts the kissat binary. The relaxed flag keeps
// kissat from rejecting headers whose declared variable count exceeds
// the variables actually mentioned in clauses.
func NewKissatSolver() Solver {
	return pipeSolver{
		name: "kissat",
		args: []string{"-q", "--relaxed"},
	}
}
