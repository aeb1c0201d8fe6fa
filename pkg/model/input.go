package model

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

//** Manage the classic text format

// ParseProblem reads the classic text description: three header lines
// announcing the step, user and constraint counts, then one constraint
// per line. Steps and users are written one-based as s<i> and u<j>.
func ParseProblem(content string) (Problem, error) {
	lines := lo.Filter(strings.Split(content, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	if len(lines) < 3 {
		return Problem{}, &ValidationError{Index: -1, Reason: "expected three header lines"}
	}

	steps, err := parseHeader(lines[0], "#Steps")
	if err != nil {
		return Problem{}, err
	}
	users, err := parseHeader(lines[1], "#Users")
	if err != nil {
		return Problem{}, err
	}
	declared, err := parseHeader(lines[2], "#Constraints")
	if err != nil {
		return Problem{}, err
	}

	constraintLines := lines[3:]
	if uint64(len(constraintLines)) != declared {
		return Problem{}, &ValidationError{
			Index:  -1,
			Reason: fmt.Sprintf("declared %d constraints, found %d", declared, len(constraintLines)),
		}
	}

	constraints := make([]Constraint, 0, len(constraintLines))
	for index, line := range constraintLines {
		constraint, err := parseConstraintLine(line)
		if err != nil {
			return Problem{}, &ValidationError{Index: index, Reason: err.Error()}
		}
		constraints = append(constraints, constraint)
	}
	return NewProblem(steps, users, constraints)
}

func parseHeader(line, name string) (uint64, error) {
	prefix := name + ": "
	if !strings.HasPrefix(line, prefix) {
		return 0, &ValidationError{Index: -1, Reason: fmt.Sprintf("expected a %q header, got %q", name, line)}
	}
	value, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, prefix)), 10, 64)
	if err != nil {
		return 0, &ValidationError{Index: -1, Reason: fmt.Sprintf("malformed %v count: %v", name, err)}
	}
	return value, nil
}

func parseConstraintLine(line string) (Constraint, error) {
	keyword, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	fields := strings.Fields(rest)

	switch keyword {
	case "Authorisations":
		if len(fields) < 1 {
			return Constraint{}, fmt.Errorf("a user token is required")
		}
		user, err := parseUserToken(fields[0])
		if err != nil {
			return Constraint{}, err
		}
		steps, err := parseStepTokens(fields[1:])
		if err != nil {
			return Constraint{}, err
		}
		return Authorization(user, steps...), nil
	case "Separation-of-duty", "Binding-of-duty":
		if len(fields) != 2 {
			return Constraint{}, fmt.Errorf("exactly two step tokens are required")
		}
		stepA, err := parseStepToken(fields[0])
		if err != nil {
			return Constraint{}, err
		}
		stepB, err := parseStepToken(fields[1])
		if err != nil {
			return Constraint{}, err
		}
		if keyword == "Separation-of-duty" {
			return SeparationOfDuty(stepA, stepB), nil
		}
		return BindingOfDuty(stepA, stepB), nil
	case "At-most-k":
		if len(fields) < 2 {
			return Constraint{}, fmt.Errorf("a bound and a scope of steps are required")
		}
		k, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return Constraint{}, fmt.Errorf("malformed bound %q", fields[0])
		}
		steps, err := parseStepTokens(fields[1:])
		if err != nil {
			return Constraint{}, err
		}
		return AtMostK(k, steps...), nil
	case "One-team":
		return parseOneTeam(rest)
	case "User-capacity":
		if len(fields) != 2 {
			return Constraint{}, fmt.Errorf("a user token and a capacity are required")
		}
		user, err := parseUserToken(fields[0])
		if err != nil {
			return Constraint{}, err
		}
		max, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return Constraint{}, fmt.Errorf("malformed capacity %q", fields[1])
		}
		return UserCapacity(user, max), nil
	}
	return Constraint{}, fmt.Errorf("unknown constraint %q", keyword)
}

// parseOneTeam splits "s1 s2 (u1 u2) (u3 u4)" into the scoped steps
// and the parenthesized team lists.
func parseOneTeam(rest string) (Constraint, error) {
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return Constraint{}, fmt.Errorf("at least one team list is required")
	}
	steps, err := parseStepTokens(strings.Fields(rest[:open]))
	if err != nil {
		return Constraint{}, err
	}

	teams := make([][]uint64, 0)
	remainder := rest[open:]
	for {
		remainder = strings.TrimSpace(remainder)
		if remainder == "" {
			break
		}
		if remainder[0] != '(' {
			return Constraint{}, fmt.Errorf("unexpected token %q between team lists", remainder)
		}
		closing := strings.IndexByte(remainder, ')')
		if closing < 0 {
			return Constraint{}, fmt.Errorf("unclosed team list")
		}
		team, err := parseUserTokens(strings.Fields(remainder[1:closing]))
		if err != nil {
			return Constraint{}, err
		}
		teams = append(teams, team)
		remainder = remainder[closing+1:]
	}
	return OneTeam(steps, teams...), nil
}

func parseStepToken(token string) (uint64, error) {
	return parseIndexToken(token, 's', "step")
}

func parseUserToken(token string) (uint64, error) {
	return parseIndexToken(token, 'u', "user")
}

func parseIndexToken(token string, prefix byte, noun string) (uint64, error) {
	if len(token) < 2 || token[0] != prefix {
		return 0, fmt.Errorf("malformed %v token %q", noun, token)
	}
	value, err := strconv.ParseUint(token[1:], 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("malformed %v token %q", noun, token)
	}
	return value - 1, nil
}

func parseStepTokens(tokens []string) ([]uint64, error) {
	steps := make([]uint64, 0, len(tokens))
	for _, token := range tokens {
		step, err := parseStepToken(token)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseUserTokens(tokens []string) ([]uint64, error) {
	users := make([]uint64, 0, len(tokens))
	for _, token := range tokens {
		user, err := parseUserToken(token)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// FormatProblem renders the problem back into the classic text
// description, the inverse of ParseProblem.
func FormatProblem(problem Problem) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "#Steps: %d\n", problem.Steps)
	fmt.Fprintf(&builder, "#Users: %d\n", problem.Users)
	fmt.Fprintf(&builder, "#Constraints: %d\n", len(problem.Constraints))
	for _, constraint := range problem.Constraints {
		builder.WriteString(formatConstraintLine(constraint))
		builder.WriteByte('\n')
	}
	return builder.String()
}

func formatConstraintLine(constraint Constraint) string {
	switch constraint.Kind {
	case KindAuthorization:
		line := fmt.Sprintf("Authorisations %v %v", userToken(constraint.User), stepTokens(constraint.Steps))
		return strings.TrimRight(line, " ")
	case KindSeparationOfDuty:
		return fmt.Sprintf("Separation-of-duty %v %v", stepToken(constraint.StepA), stepToken(constraint.StepB))
	case KindBindingOfDuty:
		return fmt.Sprintf("Binding-of-duty %v %v", stepToken(constraint.StepA), stepToken(constraint.StepB))
	case KindAtMostK:
		return fmt.Sprintf("At-most-k %d %v", constraint.K, stepTokens(constraint.Steps))
	case KindOneTeam:
		teams := lo.Map(constraint.Teams, func(team []uint64, _ int) string {
			return "(" + userTokens(team) + ")"
		})
		return fmt.Sprintf("One-team %v %v", stepTokens(constraint.Steps), strings.Join(teams, " "))
	case KindUserCapacity:
		return fmt.Sprintf("User-capacity %v %d", userToken(constraint.User), constraint.Max)
	}
	log.Panicf("cannot format a constraint of kind %v", uint8(constraint.Kind))
	return ""
}

func stepToken(step uint64) string {
	return fmt.Sprintf("s%d", step+1)
}

func userToken(user uint64) string {
	return fmt.Sprintf("u%d", user+1)
}

func stepTokens(steps []uint64) string {
	return strings.Join(lo.Map(steps, func(step uint64, _ int) string {
		return stepToken(step)
	}), " ")
}

func userTokens(users []uint64) string {
	return strings.Join(lo.Map(users, func(user uint64, _ int) string {
		return userToken(user)
	}), " ")
}

//** Manage the structured formats

// RawProblem mirrors Problem in the structured file formats, keeping
// the one-based numbering of the text format.
type RawProblem struct {
	Steps       uint64          `json:"steps" yaml:"steps"`
	Users       uint64          `json:"users" yaml:"users"`
	Constraints []RawConstraint `json:"constraints" yaml:"constraints"`
}

// RawConstraint is the structured rendering of one constraint. Kind
// carries the text format keyword, lowercased. Separation and binding
// constraints put their two steps on the Steps list.
type RawConstraint struct {
	Kind  string     `json:"kind" yaml:"kind"`
	User  uint64     `json:"user,omitempty" yaml:"user,omitempty"`
	Steps []uint64   `json:"steps,omitempty" yaml:"steps,omitempty"`
	K     uint64     `json:"k,omitempty" yaml:"k,omitempty"`
	Max   *uint64    `json:"max,omitempty" yaml:"max,omitempty"`
	Teams [][]uint64 `json:"teams,omitempty" yaml:"teams,omitempty"`
}

// RawFromProblem converts to the structured form.
func RawFromProblem(problem Problem) RawProblem {
	return RawProblem{
		Steps: problem.Steps,
		Users: problem.Users,
		Constraints: lo.Map(problem.Constraints, func(constraint Constraint, _ int) RawConstraint {
			return rawFromConstraint(constraint)
		}),
	}
}

func rawFromConstraint(constraint Constraint) RawConstraint {
	switch constraint.Kind {
	case KindAuthorization:
		return RawConstraint{Kind: "authorisations", User: constraint.User + 1, Steps: oneUp(constraint.Steps)}
	case KindSeparationOfDuty:
		return RawConstraint{Kind: "separation-of-duty", Steps: oneUp([]uint64{constraint.StepA, constraint.StepB})}
	case KindBindingOfDuty:
		return RawConstraint{Kind: "binding-of-duty", Steps: oneUp([]uint64{constraint.StepA, constraint.StepB})}
	case KindAtMostK:
		return RawConstraint{Kind: "at-most-k", K: constraint.K, Steps: oneUp(constraint.Steps)}
	case KindOneTeam:
		return RawConstraint{
			Kind:  "one-team",
			Steps: oneUp(constraint.Steps),
			Teams: lo.Map(constraint.Teams, func(team []uint64, _ int) []uint64 {
				return oneUp(team)
			}),
		}
	case KindUserCapacity:
		max := constraint.Max
		return RawConstraint{Kind: "user-capacity", User: constraint.User + 1, Max: &max}
	}
	log.Panicf("cannot convert a constraint of kind %v", uint8(constraint.Kind))
	return RawConstraint{}
}

// ProblemFromRaw validates a structured description and converts it
// back to the zero-based internal form.
func ProblemFromRaw(raw RawProblem) (Problem, error) {
	constraints := make([]Constraint, 0, len(raw.Constraints))
	for index, rawConstraint := range raw.Constraints {
		constraint, err := constraintFromRaw(rawConstraint)
		if err != nil {
			return Problem{}, &ValidationError{Index: index, Reason: err.Error()}
		}
		constraints = append(constraints, constraint)
	}
	return NewProblem(raw.Steps, raw.Users, constraints)
}

func constraintFromRaw(raw RawConstraint) (Constraint, error) {
	switch raw.Kind {
	case "authorisations":
		if raw.User == 0 {
			return Constraint{}, fmt.Errorf("a user number is required")
		}
		steps, err := oneDown(raw.Steps)
		if err != nil {
			return Constraint{}, err
		}
		return Authorization(raw.User-1, steps...), nil
	case "separation-of-duty", "binding-of-duty":
		steps, err := oneDown(raw.Steps)
		if err != nil {
			return Constraint{}, err
		}
		if len(steps) != 2 {
			return Constraint{}, fmt.Errorf("exactly two steps are required")
		}
		if raw.Kind == "separation-of-duty" {
			return SeparationOfDuty(steps[0], steps[1]), nil
		}
		return BindingOfDuty(steps[0], steps[1]), nil
	case "at-most-k":
		steps, err := oneDown(raw.Steps)
		if err != nil {
			return Constraint{}, err
		}
		return AtMostK(raw.K, steps...), nil
	case "one-team":
		steps, err := oneDown(raw.Steps)
		if err != nil {
			return Constraint{}, err
		}
		teams := make([][]uint64, 0, len(raw.Teams))
		for _, rawTeam := range raw.Teams {
			team, err := oneDown(rawTeam)
			if err != nil {
				return Constraint{}, err
			}
			teams = append(teams, team)
		}
		return OneTeam(steps, teams...), nil
	case "user-capacity":
		if raw.User == 0 {
			return Constraint{}, fmt.Errorf("a user number is required")
		}
		if raw.Max == nil {
			return Constraint{}, fmt.Errorf("a capacity is required")
		}
		return UserCapacity(raw.User-1, *raw.Max), nil
	}
	return Constraint{}, fmt.Errorf("unknown constraint kind %q", raw.Kind)
}

func oneUp(values []uint64) []uint64 {
	return lo.Map(values, func(value uint64, _ int) uint64 {
		return value + 1
	})
}

func oneDown(values []uint64) ([]uint64, error) {
	result := make([]uint64, 0, len(values))
	for _, value := range values {
		if value == 0 {
			return nil, fmt.Errorf("numbers are one-based, got 0")
		}
		result = append(result, value-1)
	}
	return result, nil
}

// ProblemFromJson loads a problem from a JSON description.
func ProblemFromJson(content []byte) (Problem, error) {
	var rawMap map[string]any
	if err := json.Unmarshal(content, &rawMap); err != nil {
		return Problem{}, &ValidationError{Index: -1, Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	var raw RawProblem
	if err := mapstructure.Decode(rawMap, &raw); err != nil {
		return Problem{}, &ValidationError{Index: -1, Reason: fmt.Sprintf("unexpected JSON shape: %v", err)}
	}
	return ProblemFromRaw(raw)
}

// ProblemFromYaml loads a problem from a YAML description.
func ProblemFromYaml(content []byte) (Problem, error) {
	var raw RawProblem
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return Problem{}, &ValidationError{Index: -1, Reason: fmt.Sprintf("malformed YAML: %v", err)}
	}
	return ProblemFromRaw(raw)
}

//** Manage problem files

// ReadProblemFile loads a problem, dispatching on the file extension:
// .json and .yaml/.yml use the structured formats, everything else the
// classic text format.
func ReadProblemFile(path string) (Problem, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, err
	}
	switch filepath.Ext(path) {
	case ".json":
		return ProblemFromJson(content)
	case ".yaml", ".yml":
		return ProblemFromYaml(content)
	}
	return ParseProblem(string(content))
}

// WriteProblemFile renders a problem, dispatching on the extension
// like ReadProblemFile does.
func WriteProblemFile(path string, problem Problem) error {
	var content []byte
	switch filepath.Ext(path) {
	case ".json":
		marshalled, err := json.MarshalIndent(RawFromProblem(problem), "", "  ")
		if err != nil {
			return err
		}
		content = append(marshalled, '\n')
	case ".yaml", ".yml":
		marshalled, err := yaml.Marshal(RawFromProblem(problem))
		if err != nil {
			return err
		}
		content = marshalled
	default:
		content = []byte(FormatProblem(problem))
	}
	return os.WriteFile(path, content, 0644)
}
