package model

// DirectEncoder builds the plain combinatorial encoding: pairwise
// exactly-one clauses per step and explicit subset expansion for every
// cardinality bound. Clause counts grow quickly, but every clause can
// be read off against the constraint it came from.
type DirectEncoder struct{}

func (DirectEncoder) Name() string {
	return "direct"
}

func (DirectEncoder) Encode(problem Problem) (*Encoding, error) {
	state := newEncodingState("direct", problem, false)
	state.eligibilityClauses()
	state.totalityClauses()
	state.constraintClauses()
	return state.encoding, nil
}
