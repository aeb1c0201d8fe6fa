package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// SymmetryEncoder builds the counter-based encoding and chains
// lexicographic ordering constraints between interchangeable users.
// Each orbit of equivalent assignments then has exactly one model, the
// canonical representative, so enumeration never revisits relabelings
// of an assignment it already produced.
type SymmetryEncoder struct{}

func (SymmetryEncoder) Name() string {
	return "symmetry"
}

func (SymmetryEncoder) Encode(problem Problem) (*Encoding, error) {
	state := newEncodingState("symmetry", problem, true)
	state.eligibilityClauses()
	state.totalityClauses()
	state.constraintClauses()
	for _, class := range interchangeabilityClasses(problem) {
		for i := 0; i+1 < len(class); i++ {
			state.lexOrderClauses(class[i], class[i+1])
		}
	}
	return state.encoding, nil
}

// interchangeabilityClasses groups users that can be swapped in any
// valid assignment without affecting validity: identical candidate
// steps, identical effective capacity, and no membership in any team
// list, which would make a swap observable. Only classes with at
// least two members are returned, each sorted ascending.
func interchangeabilityClasses(problem Problem) [][]uint64 {
	candidates := candidateMatrix(problem)

	capacity := make(map[uint64]uint64)
	inTeam := make(map[uint64]bool)
	for _, constraint := range problem.Constraints {
		switch constraint.Kind {
		case KindUserCapacity:
			bound, limited := capacity[constraint.User]
			if !limited || constraint.Max < bound {
				capacity[constraint.User] = constraint.Max
			}
		case KindOneTeam:
			for _, team := range constraint.Teams {
				for _, user := range team {
					inTeam[user] = true
				}
			}
		}
	}

	classes := make(map[string][]uint64)
	for user := uint64(0); user < problem.Users; user++ {
		if inTeam[user] {
			continue
		}
		signature := make([]byte, problem.Steps)
		for step := uint64(0); step < problem.Steps; step++ {
			if slices.Contains(candidates[step], user) {
				signature[step] = '1'
			} else {
				signature[step] = '0'
			}
		}
		bound, limited := capacity[user]
		key := fmt.Sprintf("%s/%v/%d", signature, limited, bound)
		classes[key] = append(classes[key], user)
	}

	result := lo.Filter(lo.Values(classes), func(class []uint64, _ int) bool {
		return len(class) > 1
	})
	slices.SortFunc(result, func(a, b []uint64) int {
		return cmp.Compare(a[0], b[0])
	})
	return result
}

// lexOrderClauses force user a's assignment column to be
// lexicographically no smaller than user b's, scanning steps in
// order. The prefix variables track column equality so far in both
// directions, which pins each orbit to exactly one model instead of
// merely thinning it.
func (state *encodingState) lexOrderClauses(a, b uint64) {
	prefix := int64(state.formula().NewVariable())
	state.formula().AddClause(prefix)

	for step := uint64(0); step < state.problem.Steps; step++ {
		higher := state.literal(step, a)
		lower := state.literal(step, b)
		state.formula().AddClause(-prefix, higher, -lower)

		if step+1 == state.problem.Steps {
			break
		}
		next := int64(state.formula().NewVariable())
		state.formula().AddClause(-next, prefix)
		state.formula().AddClause(-next, -higher, lower)
		state.formula().AddClause(-next, higher, -lower)
		state.formula().AddClause(next, -prefix, -higher, -lower)
		state.formula().AddClause(next, -prefix, higher, lower)
		prefix = next
	}
}

// Canonicalize relabels interchangeable users so that, inside every
// class, the members appearing in the assignment are the smallest ones
// in order of first use. Assignments in the same orbit map to the same
// canonical form, which is also the form the symmetry encoder's models
// take.
func Canonicalize(problem Problem, assignment Assignment) Assignment {
	canonical := slices.Clone(assignment)
	for _, class := range interchangeabilityClasses(problem) {
		relabel := make(map[uint64]uint64)
		next := 0
		for _, user := range assignment {
			if !slices.Contains(class, user) {
				continue
			}
			if _, seen := relabel[user]; !seen {
				relabel[user] = class[next]
				next++
			}
		}
		for step, user := range canonical {
			if replacement, ok := relabel[user]; ok {
				canonical[step] = replacement
			}
		}
	}
	return canonical
}

// Orbit expands an assignment into every equivalent relabeling across
// its interchangeability classes. The orbit always contains the
// assignment itself.
func Orbit(problem Problem, assignment Assignment) []Assignment {
	orbit := []Assignment{slices.Clone(assignment)}
	for _, class := range interchangeabilityClasses(problem) {
		used := lo.Uniq(lo.Filter(assignment, func(user uint64, _ int) bool {
			return slices.Contains(class, user)
		}))
		if len(used) == 0 {
			continue
		}

		expanded := make([]Assignment, 0)
		combinations(uint64(len(class)), uint64(len(used)), func(subset []uint64) {
			targets := lo.Map(subset, func(index uint64, _ int) uint64 {
				return class[index]
			})
			permutations(targets, func(ordered []uint64) {
				relabel := make(map[uint64]uint64, len(used))
				for i, user := range used {
					relabel[user] = ordered[i]
				}
				for _, member := range orbit {
					relabeled := lo.Map(member, func(user uint64, _ int) uint64 {
						if replacement, ok := relabel[user]; ok {
							return replacement
						}
						return user
					})
					expanded = append(expanded, relabeled)
				}
			})
		})
		orbit = expanded
	}
	return lo.UniqBy(orbit, assignmentKey)
}

func assignmentKey(assignment Assignment) string {
	return fmt.Sprint(assignment)
}
