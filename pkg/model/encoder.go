package model

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"wspsolver/pkg/sat"
)

// Encoder turns a problem into a propositional formula whose models
// are exactly the problem's valid assignments.
type Encoder interface {
	// Name identifies the encoder in reports and CLI flags.
	Name() string
	// Encode builds the formula together with its decoding metadata.
	Encode(problem Problem) (*Encoding, error)
}

// Encoding couples a formula with the variable layout needed to read
// assignments back out of a model.
type Encoding struct {
	Formula sat.Formula

	encoder   string
	steps     uint64
	users     uint64
	variables [][]uint64
}

// Decode reads the assignment out of a satisfying valuation. Every
// step must decode to exactly one user, anything else means the
// encoding is unsound.
func (encoding *Encoding) Decode(valuation sat.Valuation) (Assignment, error) {
	assignment := make(Assignment, encoding.steps)
	for step := uint64(0); step < encoding.steps; step++ {
		assigned := make([]uint64, 0, 1)
		for user := uint64(0); user < encoding.users; user++ {
			if valuation[encoding.variables[step][user]] {
				assigned = append(assigned, user)
			}
		}
		if len(assigned) != 1 {
			return nil, &EncodingError{
				Encoder: encoding.encoder,
				Reason:  fmt.Sprintf("step %d decodes to %d users", step, len(assigned)),
			}
		}
		assignment[step] = assigned[0]
	}
	return assignment, nil
}

// BlockingClause builds the clause forbidding exactly the given
// assignment in any later model.
func (encoding *Encoding) BlockingClause(assignment Assignment) []int64 {
	return lo.Map(assignment, func(user uint64, step int) int64 {
		return -int64(encoding.variables[step][user])
	})
}

var encoders = map[string]Encoder{
	"direct":   DirectEncoder{},
	"symmetry": SymmetryEncoder{},
	"hybrid":   HybridEncoder{},
}

// EncoderByName resolves an encoder by its CLI name.
func EncoderByName(name string) (Encoder, bool) {
	encoder, ok := encoders[name]
	return encoder, ok
}

// EncoderNames lists the available encoders in sorted order.
func EncoderNames() []string {
	names := lo.Keys(encoders)
	slices.Sort(names)
	return names
}

// candidateMatrix computes the users each step may take, intersecting
// the authorisation lists as they apply per user. A user without any
// authorisation constraint is a candidate everywhere.
func candidateMatrix(problem Problem) [][]uint64 {
	allowed := make([][]bool, problem.Steps)
	for step := range allowed {
		allowed[step] = make([]bool, problem.Users)
		for user := range allowed[step] {
			allowed[step][user] = true
		}
	}
	for _, constraint := range problem.Constraints {
		if constraint.Kind != KindAuthorization {
			continue
		}
		for step := uint64(0); step < problem.Steps; step++ {
			if !slices.Contains(constraint.Steps, step) {
				allowed[step][constraint.User] = false
			}
		}
	}

	candidates := make([][]uint64, problem.Steps)
	for step := range candidates {
		for user := uint64(0); user < problem.Users; user++ {
			if allowed[step][user] {
				candidates[step] = append(candidates[step], user)
			}
		}
	}
	return candidates
}

// scopeUsers collects the candidates occurring anywhere in the given
// steps, deduplicated and sorted.
func scopeUsers(candidates [][]uint64, steps []uint64) []uint64 {
	users := make([]uint64, 0)
	for _, step := range steps {
		users = append(users, candidates[step]...)
	}
	users = lo.Uniq(users)
	slices.Sort(users)
	return users
}

// encodingState carries the pieces shared by the clause builders while
// one encoder run assembles its formula.
type encodingState struct {
	problem    Problem
	candidates [][]uint64
	indexer    Indexer
	encoding   *Encoding
	counters   bool
}

func newEncodingState(name string, problem Problem, counters bool) *encodingState {
	indexer := NewIndexer(problem.Steps, problem.Users)
	encoding := &Encoding{
		Formula: sat.Formula{Variables: indexer.Variables()},
		encoder: name,
		steps:   problem.Steps,
		users:   problem.Users,
	}
	encoding.variables = make([][]uint64, problem.Steps)
	for step := uint64(0); step < problem.Steps; step++ {
		encoding.variables[step] = make([]uint64, problem.Users)
		for user := uint64(0); user < problem.Users; user++ {
			encoding.variables[step][user] = indexer.Variable(step, user)
		}
	}
	return &encodingState{
		problem:    problem,
		candidates: candidateMatrix(problem),
		indexer:    indexer,
		encoding:   encoding,
		counters:   counters,
	}
}

func (state *encodingState) formula() *sat.Formula {
	return &state.encoding.Formula
}

func (state *encodingState) literal(step, user uint64) int64 {
	return int64(state.encoding.variables[step][user])
}

// eligibilityClauses rule out every (step, user) pair outside the
// candidate matrix.
func (state *encodingState) eligibilityClauses() {
	for step := uint64(0); step < state.problem.Steps; step++ {
		for user := uint64(0); user < state.problem.Users; user++ {
			if !slices.Contains(state.candidates[step], user) {
				state.formula().AddClause(-state.literal(step, user))
			}
		}
	}
}

// totalityClauses make every step pick exactly one candidate. A step
// without candidates yields the empty clause, making the whole
// formula unsatisfiable.
func (state *encodingState) totalityClauses() {
	for step := uint64(0); step < state.problem.Steps; step++ {
		literals := lo.Map(state.candidates[step], func(user uint64, _ int) int64 {
			return state.literal(step, user)
		})
		state.formula().AddClause(literals...)
		sat.AtMostOnePairwise(state.formula(), literals)
	}
}

func (state *encodingState) separationClauses(constraint Constraint) {
	for _, user := range state.candidates[constraint.StepA] {
		if slices.Contains(state.candidates[constraint.StepB], user) {
			state.formula().AddClause(
				-state.literal(constraint.StepA, user),
				-state.literal(constraint.StepB, user),
			)
		}
	}
}

func (state *encodingState) bindingClauses(constraint Constraint) {
	for user := uint64(0); user < state.problem.Users; user++ {
		state.formula().AddClause(-state.literal(constraint.StepA, user), state.literal(constraint.StepB, user))
		state.formula().AddClause(-state.literal(constraint.StepB, user), state.literal(constraint.StepA, user))
	}
}

// atMostClauses introduce one used-flag per candidate in the scope and
// bound how many flags may hold. The flags only need the forward
// implication: a flag that nothing forces can always stay false, so a
// bound on the flags carries over to the users.
func (state *encodingState) atMostClauses(constraint Constraint) {
	steps := lo.Uniq(constraint.Steps)
	users := scopeUsers(state.candidates, steps)

	flags := make([]int64, 0, len(users))
	for _, user := range users {
		flag := int64(state.formula().NewVariable())
		for _, step := range steps {
			if slices.Contains(state.candidates[step], user) {
				state.formula().AddClause(-state.literal(step, user), flag)
			}
		}
		flags = append(flags, flag)
	}
	state.atMost(flags, constraint.K)
}

func (state *encodingState) capacityClauses(constraint Constraint) {
	literals := make([]int64, 0)
	for step := uint64(0); step < state.problem.Steps; step++ {
		if slices.Contains(state.candidates[step], constraint.User) {
			literals = append(literals, state.literal(step, constraint.User))
		}
	}
	state.atMost(literals, constraint.Max)
}

// teamClauses introduce a selector per team, force every scoped step
// inside the selected team, and require at least one selector. The
// exactly-one structure of the steps then pins the assignment to the
// selected team's members.
func (state *encodingState) teamClauses(constraint Constraint) {
	steps := lo.Uniq(constraint.Steps)

	selectors := make([]int64, 0, len(constraint.Teams))
	for _, team := range constraint.Teams {
		selector := int64(state.formula().NewVariable())
		selectors = append(selectors, selector)
		for _, step := range steps {
			clause := []int64{-selector}
			for _, user := range team {
				if slices.Contains(state.candidates[step], user) {
					clause = append(clause, state.literal(step, user))
				}
			}
			state.formula().AddClause(clause...)
		}
	}
	state.formula().AddClause(selectors...)
}

// atMost bounds the literals either through sequential counters or
// through explicit subset expansion, depending on the encoder.
func (state *encodingState) atMost(literals []int64, bound uint64) {
	if state.counters {
		sat.AtMostSeq(state.formula(), literals, bound)
		return
	}
	if bound >= uint64(len(literals)) {
		return
	}
	combinations(uint64(len(literals)), bound+1, func(subset []uint64) {
		clause := lo.Map(subset, func(index uint64, _ int) int64 {
			return -literals[index]
		})
		state.formula().AddClause(clause...)
	})
}

func (state *encodingState) constraintClauses() {
	for _, constraint := range state.problem.Constraints {
		switch constraint.Kind {
		case KindSeparationOfDuty:
			state.separationClauses(constraint)
		case KindBindingOfDuty:
			state.bindingClauses(constraint)
		case KindAtMostK:
			state.atMostClauses(constraint)
		case KindOneTeam:
			state.teamClauses(constraint)
		case KindUserCapacity:
			state.capacityClauses(constraint)
		}
	}
}
