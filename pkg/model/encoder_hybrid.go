package model

import (
	"slices"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/samber/lo"

	"wspsolver/pkg/sat"
)

// HybridEncoder assembles the constraints as a logic circuit and
// lowers it to CNF through Tseitin translation. The circuit's sorting
// networks replace the hand-written cardinality clauses of the other
// encoders and fold shared subterms on the way down.
type HybridEncoder struct{}

func (HybridEncoder) Name() string {
	return "hybrid"
}

func (HybridEncoder) Encode(problem Problem) (*Encoding, error) {
	circuit := logic.NewC()
	candidates := candidateMatrix(problem)

	indicators := make([][]z.Lit, problem.Steps)
	for step := range indicators {
		indicators[step] = make([]z.Lit, problem.Users)
		for user := range indicators[step] {
			indicators[step][user] = circuit.Lit()
		}
	}

	roots := make([]z.Lit, 0)

	// Candidate structure: non-candidates stay false, every step picks
	// exactly one candidate.
	for step := uint64(0); step < problem.Steps; step++ {
		row := make([]z.Lit, 0, len(candidates[step]))
		for user := uint64(0); user < problem.Users; user++ {
			if slices.Contains(candidates[step], user) {
				row = append(row, indicators[step][user])
			} else {
				roots = append(roots, indicators[step][user].Not())
			}
		}
		roots = append(roots, circuit.Ors(row...))
		if len(row) > 1 {
			roots = append(roots, circuit.CardSort(row).Leq(1))
		}
	}

	for _, constraint := range problem.Constraints {
		switch constraint.Kind {
		case KindSeparationOfDuty:
			for user := uint64(0); user < problem.Users; user++ {
				roots = append(roots, circuit.Or(
					indicators[constraint.StepA][user].Not(),
					indicators[constraint.StepB][user].Not(),
				))
			}
		case KindBindingOfDuty:
			for user := uint64(0); user < problem.Users; user++ {
				roots = append(roots,
					circuit.Or(indicators[constraint.StepA][user].Not(), indicators[constraint.StepB][user]),
					circuit.Or(indicators[constraint.StepB][user].Not(), indicators[constraint.StepA][user]),
				)
			}
		case KindAtMostK:
			steps := lo.Uniq(constraint.Steps)
			users := scopeUsers(candidates, steps)
			flags := make([]z.Lit, 0, len(users))
			for _, user := range users {
				occurrences := make([]z.Lit, 0, len(steps))
				for _, step := range steps {
					if slices.Contains(candidates[step], user) {
						occurrences = append(occurrences, indicators[step][user])
					}
				}
				flags = append(flags, circuit.Ors(occurrences...))
			}
			if constraint.K < uint64(len(flags)) {
				roots = append(roots, circuit.CardSort(flags).Leq(int(constraint.K)))
			}
		case KindOneTeam:
			steps := lo.Uniq(constraint.Steps)
			choices := make([]z.Lit, 0, len(constraint.Teams))
			for _, team := range constraint.Teams {
				covered := make([]z.Lit, 0, len(steps))
				for _, step := range steps {
					members := make([]z.Lit, 0, len(team))
					for _, user := range team {
						if slices.Contains(candidates[step], user) {
							members = append(members, indicators[step][user])
						}
					}
					covered = append(covered, circuit.Ors(members...))
				}
				choices = append(choices, circuit.Ands(covered...))
			}
			roots = append(roots, circuit.Ors(choices...))
		case KindUserCapacity:
			occurrences := make([]z.Lit, 0)
			for step := uint64(0); step < problem.Steps; step++ {
				if slices.Contains(candidates[step], constraint.User) {
					occurrences = append(occurrences, indicators[step][constraint.User])
				}
			}
			if constraint.Max == 0 {
				for _, occurrence := range occurrences {
					roots = append(roots, occurrence.Not())
				}
			} else if constraint.Max < uint64(len(occurrences)) {
				roots = append(roots, circuit.CardSort(occurrences).Leq(int(constraint.Max)))
			}
		}
	}

	root := circuit.Ands(roots...)

	encoding := &Encoding{
		encoder: "hybrid",
		steps:   problem.Steps,
		users:   problem.Users,
	}
	collector := &clauseCollector{formula: &encoding.Formula}
	circuit.ToCnfFrom(collector, root)
	collector.Add(circuit.T)
	collector.Add(z.LitNull)
	collector.Add(root)
	collector.Add(z.LitNull)

	encoding.variables = make([][]uint64, problem.Steps)
	for step := range encoding.variables {
		encoding.variables[step] = make([]uint64, problem.Users)
		for user := range encoding.variables[step] {
			variable := uint64(indicators[step][user].Dimacs())
			encoding.variables[step][user] = variable
			if variable > encoding.Formula.Variables {
				encoding.Formula.Variables = variable
			}
		}
	}
	return encoding, nil
}

// clauseCollector receives the lowered clauses literal by literal,
// following the adder protocol where the null literal closes a clause.
type clauseCollector struct {
	formula *sat.Formula
	clause  []int64
}

func (collector *clauseCollector) Add(m z.Lit) {
	if m == z.LitNull {
		collector.formula.AddClause(slices.Clone(collector.clause)...)
		collector.clause = collector.clause[:0]
		return
	}
	literal := int64(m.Dimacs())
	variable := literal
	if variable < 0 {
		variable = -variable
	}
	if uint64(variable) > collector.formula.Variables {
		collector.formula.Variables = uint64(variable)
	}
	collector.clause = append(collector.clause, literal)
}
