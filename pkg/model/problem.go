package model

import (
	"fmt"

	"github.com/samber/lo"
)

// ConstraintKind discriminates the constraint families of a workflow
// satisfiability problem.
type ConstraintKind uint8

const (
	KindAuthorization ConstraintKind = iota
	KindSeparationOfDuty
	KindBindingOfDuty
	KindAtMostK
	KindOneTeam
	KindUserCapacity
)

var kindNames = map[ConstraintKind]string{
	KindAuthorization:    "authorisations",
	KindSeparationOfDuty: "separation-of-duty",
	KindBindingOfDuty:    "binding-of-duty",
	KindAtMostK:          "at-most-k",
	KindOneTeam:          "one-team",
	KindUserCapacity:     "user-capacity",
}

func (kind ConstraintKind) String() string {
	name, ok := kindNames[kind]
	if !ok {
		return fmt.Sprintf("constraint-kind-%d", uint8(kind))
	}
	return name
}

// Constraint is one requirement over an assignment. Kind selects the
// family and decides which of the remaining fields are meaningful.
type Constraint struct {
	Kind  ConstraintKind
	User  uint64
	Steps []uint64
	StepA uint64
	StepB uint64
	K     uint64
	Max   uint64
	Teams [][]uint64
}

// Authorization restricts a user to the given steps: the user may only
// ever perform steps on the list. A user under several authorisation
// constraints keeps only the steps common to all of them.
func Authorization(user uint64, steps ...uint64) Constraint {
	return Constraint{Kind: KindAuthorization, User: user, Steps: steps}
}

// SeparationOfDuty requires two steps to be performed by different
// users.
func SeparationOfDuty(stepA, stepB uint64) Constraint {
	return Constraint{Kind: KindSeparationOfDuty, StepA: stepA, StepB: stepB}
}

// BindingOfDuty requires two steps to be performed by the same user.
func BindingOfDuty(stepA, stepB uint64) Constraint {
	return Constraint{Kind: KindBindingOfDuty, StepA: stepA, StepB: stepB}
}

// AtMostK caps the number of distinct users across the given steps.
func AtMostK(k uint64, steps ...uint64) Constraint {
	return Constraint{Kind: KindAtMostK, K: k, Steps: steps}
}

// OneTeam requires the users performing the given steps to all come
// from a single one of the given teams.
func OneTeam(steps []uint64, teams ...[]uint64) Constraint {
	return Constraint{Kind: KindOneTeam, Steps: steps, Teams: teams}
}

// UserCapacity caps how many steps the user may perform in total.
func UserCapacity(user uint64, max uint64) Constraint {
	return Constraint{Kind: KindUserCapacity, User: user, Max: max}
}

// Problem is a workflow satisfiability instance over dense, zero-based
// step and user indices.
type Problem struct {
	Steps       uint64
	Users       uint64
	Constraints []Constraint
}

// Assignment maps each step, by position, to the user performing it.
type Assignment []uint64

// NewProblem validates the instance and returns it. Every constraint
// must stay inside the declared step and user ranges; a violation is
// reported as a *ValidationError carrying the constraint's position.
func NewProblem(steps, users uint64, constraints []Constraint) (Problem, error) {
	if steps == 0 {
		return Problem{}, &ValidationError{Index: -1, Reason: "a problem needs at least one step"}
	}
	if users == 0 {
		return Problem{}, &ValidationError{Index: -1, Reason: "a problem needs at least one user"}
	}

	problem := Problem{Steps: steps, Users: users, Constraints: constraints}
	for index, constraint := range constraints {
		if reason := checkConstraint(problem, constraint); reason != "" {
			return Problem{}, &ValidationError{Index: index, Kind: constraint.Kind, Reason: reason}
		}
	}
	return problem, nil
}

func checkConstraint(problem Problem, constraint Constraint) string {
	switch constraint.Kind {
	case KindAuthorization:
		if constraint.User >= problem.Users {
			return fmt.Sprintf("user %d is out of range", constraint.User)
		}
		return checkSteps(problem, constraint.Steps)
	case KindSeparationOfDuty, KindBindingOfDuty:
		if constraint.StepA >= problem.Steps {
			return fmt.Sprintf("step %d is out of range", constraint.StepA)
		}
		if constraint.StepB >= problem.Steps {
			return fmt.Sprintf("step %d is out of range", constraint.StepB)
		}
		if constraint.StepA == constraint.StepB {
			return "the two steps must differ"
		}
	case KindAtMostK:
		if len(constraint.Steps) == 0 {
			return "a scope of steps is required"
		}
		if constraint.K == 0 || constraint.K > uint64(len(constraint.Steps)) {
			return fmt.Sprintf("bound %d is outside 1..%d", constraint.K, len(constraint.Steps))
		}
		return checkSteps(problem, constraint.Steps)
	case KindOneTeam:
		if len(constraint.Steps) == 0 {
			return "a scope of steps is required"
		}
		if reason := checkSteps(problem, constraint.Steps); reason != "" {
			return reason
		}
		if len(constraint.Teams) == 0 {
			return "at least one team is required"
		}
		for _, team := range constraint.Teams {
			if len(team) == 0 {
				return "teams cannot be empty"
			}
			if reason := checkUsers(problem, team); reason != "" {
				return reason
			}
		}
	case KindUserCapacity:
		if constraint.User >= problem.Users {
			return fmt.Sprintf("user %d is out of range", constraint.User)
		}
	default:
		return fmt.Sprintf("unknown constraint kind %d", constraint.Kind)
	}
	return ""
}

func checkSteps(problem Problem, steps []uint64) string {
	step, found := lo.Find(steps, func(step uint64) bool {
		return step >= problem.Steps
	})
	if found {
		return fmt.Sprintf("step %d is out of range", step)
	}
	return ""
}

func checkUsers(problem Problem, users []uint64) string {
	user, found := lo.Find(users, func(user uint64) bool {
		return user >= problem.Users
	})
	if found {
		return fmt.Sprintf("user %d is out of range", user)
	}
	return ""
}
