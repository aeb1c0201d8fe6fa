package sat

// NewCryptominisatSolver adapts the cryptominisat binary.
func NewCryptominisatSolver() Solver {
	return pipeSolver{
		name: "cryptominisat",
		args: []string{"--verb", "0"},
	}
}
