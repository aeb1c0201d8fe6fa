package model

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Violation names one constraint broken by an assignment. Constraint
// is the position inside Problem.Constraints, or -1 for structural
// faults of the assignment itself.
type Violation struct {
	Constraint int
	Kind       ConstraintKind
	Reason     string
}

// Validate checks an assignment against every constraint of the
// problem and reports all violations, never stopping at the first. It
// shares nothing with the encoders, so a disagreement between the two
// exposes an unsound encoding.
func Validate(problem Problem, assignment Assignment) (bool, []Violation) {
	violations := make([]Violation, 0)

	if uint64(len(assignment)) != problem.Steps {
		violations = append(violations, Violation{
			Constraint: -1,
			Reason:     fmt.Sprintf("assignment covers %d steps, the problem has %d", len(assignment), problem.Steps),
		})
		return false, violations
	}
	for step, user := range assignment {
		if user >= problem.Users {
			violations = append(violations, Violation{
				Constraint: -1,
				Reason:     fmt.Sprintf("step %d is assigned to unknown user %d", step, user),
			})
		}
	}
	if len(violations) > 0 {
		return false, violations
	}

	for index, constraint := range problem.Constraints {
		if reason := checkViolation(constraint, assignment); reason != "" {
			violations = append(violations, Violation{
				Constraint: index,
				Kind:       constraint.Kind,
				Reason:     reason,
			})
		}
	}
	return len(violations) == 0, violations
}

func checkViolation(constraint Constraint, assignment Assignment) string {
	switch constraint.Kind {
	case KindAuthorization:
		for step, user := range assignment {
			if user == constraint.User && !slices.Contains(constraint.Steps, uint64(step)) {
				return fmt.Sprintf("user %d performs step %d outside their authorisation", user, step)
			}
		}
	case KindSeparationOfDuty:
		if assignment[constraint.StepA] == assignment[constraint.StepB] {
			return fmt.Sprintf("steps %d and %d share user %d", constraint.StepA, constraint.StepB, assignment[constraint.StepA])
		}
	case KindBindingOfDuty:
		if assignment[constraint.StepA] != assignment[constraint.StepB] {
			return fmt.Sprintf("steps %d and %d are performed by different users", constraint.StepA, constraint.StepB)
		}
	case KindAtMostK:
		users := lo.Uniq(lo.Map(constraint.Steps, func(step uint64, _ int) uint64 {
			return assignment[step]
		}))
		if uint64(len(users)) > constraint.K {
			return fmt.Sprintf("%d distinct users over a bound of %d", len(users), constraint.K)
		}
	case KindOneTeam:
		covered := lo.SomeBy(constraint.Teams, func(team []uint64) bool {
			return lo.EveryBy(constraint.Steps, func(step uint64) bool {
				return slices.Contains(team, assignment[step])
			})
		})
		if !covered {
			return "no single team performs every step"
		}
	case KindUserCapacity:
		load := lo.CountBy(assignment, func(user uint64) bool {
			return user == constraint.User
		})
		if uint64(load) > constraint.Max {
			return fmt.Sprintf("user %d performs %d steps over a capacity of %d", constraint.User, load, constraint.Max)
		}
	}
	return ""
}

// SolutionReport pairs a candidate assignment with its validation
// outcome.
type SolutionReport struct {
	Assignment Assignment
	Valid      bool
	Violations []Violation
}

// ValidateSolutions validates a batch of assignments independently.
func ValidateSolutions(problem Problem, assignments []Assignment) []SolutionReport {
	return lo.Map(assignments, func(assignment Assignment, _ int) SolutionReport {
		valid, violations := Validate(problem, assignment)
		return SolutionReport{Assignment: assignment, Valid: valid, Violations: violations}
	})
}
