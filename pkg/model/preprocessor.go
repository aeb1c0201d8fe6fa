package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// Analysis is a cheap feasibility report computed without any solver
// call. An infeasible finding is definite, a clean report proves
// nothing.
type Analysis struct {
	// Candidates lists the users each step may take after intersecting
	// authorisations and dropping users capped at zero.
	Candidates [][]uint64
	// Blocks groups steps welded together by binding-of-duty chains.
	Blocks     [][]uint64
	Infeasible bool
	Reasons    []string
}

// Analyze runs the static checks: steps without candidates, separation
// inside a binding block, binding blocks without a shared candidate,
// and separation cliques that cannot get pairwise distinct users.
func Analyze(problem Problem) Analysis {
	analysis := Analysis{
		Candidates: usableCandidates(problem),
		Blocks:     bindingBlocks(problem),
	}
	flag := func(format string, args ...any) {
		analysis.Infeasible = true
		analysis.Reasons = append(analysis.Reasons, fmt.Sprintf(format, args...))
	}

	for step, candidates := range analysis.Candidates {
		if len(candidates) == 0 {
			flag("step %d has no candidate users", step)
		}
	}

	blockOf := make([]uint64, problem.Steps)
	for index, block := range analysis.Blocks {
		for _, step := range block {
			blockOf[step] = uint64(index)
		}
	}
	for index, constraint := range problem.Constraints {
		if constraint.Kind == KindSeparationOfDuty && blockOf[constraint.StepA] == blockOf[constraint.StepB] {
			flag("constraint %d separates steps %d and %d inside one binding block", index, constraint.StepA, constraint.StepB)
		}
	}

	for _, block := range analysis.Blocks {
		if len(block) < 2 {
			continue
		}
		shared := lo.Reduce(block[1:], func(agg []uint64, step uint64, _ int) []uint64 {
			return lo.Filter(agg, func(user uint64, _ int) bool {
				return slices.Contains(analysis.Candidates[step], user)
			})
		}, analysis.Candidates[block[0]])
		if len(shared) == 0 {
			flag("binding block %v has no shared candidate", block)
		}
	}

	for _, clique := range separationCliques(problem) {
		if !injectivelyAssignable(analysis.Candidates, clique) {
			flag("steps %v need pairwise distinct users but cannot get them", clique)
		}
	}
	return analysis
}

// usableCandidates removes users whose capacity is capped at zero from
// the candidate matrix. The authorisation intersection alone cannot
// see them, yet they can never take a step.
func usableCandidates(problem Problem) [][]uint64 {
	barred := make(map[uint64]bool)
	for _, constraint := range problem.Constraints {
		if constraint.Kind == KindUserCapacity && constraint.Max == 0 {
			barred[constraint.User] = true
		}
	}
	candidates := candidateMatrix(problem)
	if len(barred) == 0 {
		return candidates
	}
	return lo.Map(candidates, func(users []uint64, _ int) []uint64 {
		return lo.Filter(users, func(user uint64, _ int) bool {
			return !barred[user]
		})
	})
}

// bindingBlocks unions steps connected by binding-of-duty constraints.
// Every step appears in exactly one block, singletons included. Blocks
// and their members are sorted ascending.
func bindingBlocks(problem Problem) [][]uint64 {
	parent := make([]uint64, problem.Steps)
	for step := range parent {
		parent[step] = uint64(step)
	}
	var find func(step uint64) uint64
	find = func(step uint64) uint64 {
		if parent[step] != step {
			parent[step] = find(parent[step])
		}
		return parent[step]
	}
	for _, constraint := range problem.Constraints {
		if constraint.Kind == KindBindingOfDuty {
			parent[find(constraint.StepA)] = find(constraint.StepB)
		}
	}

	grouped := make(map[uint64][]uint64)
	for step := uint64(0); step < problem.Steps; step++ {
		root := find(step)
		grouped[root] = append(grouped[root], step)
	}

	blocks := lo.Values(grouped)
	slices.SortFunc(blocks, func(a, b []uint64) int {
		return cmp.Compare(a[0], b[0])
	})
	return blocks
}

// separationCliques grows greedy cliques in the separation graph. They
// are not maximal in general, but any clique that cannot be assigned
// injectively already proves infeasibility.
func separationCliques(problem Problem) [][]uint64 {
	adjacent := make(map[uint64]map[uint64]bool)
	link := func(a, b uint64) {
		if adjacent[a] == nil {
			adjacent[a] = make(map[uint64]bool)
		}
		adjacent[a][b] = true
	}
	for _, constraint := range problem.Constraints {
		if constraint.Kind == KindSeparationOfDuty {
			link(constraint.StepA, constraint.StepB)
			link(constraint.StepB, constraint.StepA)
		}
	}

	steps := lo.Keys(adjacent)
	slices.Sort(steps)

	cliques := make([][]uint64, 0)
	for _, seed := range steps {
		clique := []uint64{seed}
		for _, candidate := range steps {
			if candidate == seed {
				continue
			}
			connected := lo.EveryBy(clique, func(member uint64) bool {
				return adjacent[candidate][member]
			})
			if connected {
				clique = append(clique, candidate)
			}
		}
		if len(clique) > 1 {
			slices.Sort(clique)
			cliques = append(cliques, clique)
		}
	}
	return lo.UniqBy(cliques, func(clique []uint64) string {
		return fmt.Sprint(clique)
	})
}

// injectivelyAssignable checks whether the steps can take pairwise
// distinct users, through a maximum matching between the steps and
// their candidates.
func injectivelyAssignable(candidates [][]uint64, steps []uint64) bool {
	left := lo.Map(steps, func(step uint64, _ int) any {
		return step
	})
	right := lo.Map(scopeUsers(candidates, steps), func(user uint64, _ int) any {
		return user
	})

	graph, err := bipartitegraph.NewBipartiteGraph(left, right, func(l, r any) (bool, error) {
		return slices.Contains(candidates[l.(uint64)], r.(uint64)), nil
	})
	if err != nil {
		return true
	}
	return len(graph.LargestMatching()) == len(steps)
}
