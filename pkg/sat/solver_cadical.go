package sat

// NewCadicalSolver adapts the cadical binary in quiet mode.
func NewCadicalSolver() Solver {
	return pipeSolver{
		name: "cadical",
		args: []string{"-q"},
	}
}
