package sat

// AtMostOnePairwise forbids every pair among the given literals. The
// quadratic clause count is fine for the short literal lists produced
// per step, where n rarely exceeds a few dozen.
func AtMostOnePairwise(formula *Formula, literals []int64) {
	for i := 0; i < len(literals); i++ {
		for j := i + 1; j < len(literals); j++ {
			formula.AddClause(-literals[i], -literals[j])
		}
	}
}

// AtMostSeq constrains at most k of the given literals to hold, using
// the sequential-counter encoding. It introduces (n-1)*k auxiliary
// register variables, where register[i][j] means "at least j+1 of the
// first i+1 literals hold".
func AtMostSeq(formula *Formula, literals []int64, k uint64) {
	n := uint64(len(literals))
	if k >= n {
		return
	}
	if k == 0 {
		for _, literal := range literals {
			formula.AddClause(-literal)
		}
		return
	}

	registers := make([][]int64, n-1)
	for i := range registers {
		registers[i] = make([]int64, k)
		for j := range registers[i] {
			registers[i][j] = int64(formula.NewVariable())
		}
	}

	formula.AddClause(-literals[0], registers[0][0])
	for j := uint64(1); j < k; j++ {
		formula.AddClause(-registers[0][j])
	}

	for i := uint64(1); i < n-1; i++ {
		formula.AddClause(-literals[i], registers[i][0])
		formula.AddClause(-registers[i-1][0], registers[i][0])
		for j := uint64(1); j < k; j++ {
			formula.AddClause(-literals[i], -registers[i-1][j-1], registers[i][j])
			formula.AddClause(-registers[i-1][j], registers[i][j])
		}
		formula.AddClause(-literals[i], -registers[i-1][k-1])
	}

	formula.AddClause(-literals[n-1], -registers[n-2][k-1])
}
