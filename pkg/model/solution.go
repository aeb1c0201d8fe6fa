package model

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// ParseSolutions reads assignments in the text format: one
// "s<i>: u<j>" line per step, a blank line between assignments. Every
// assignment must cover each step of the problem exactly once.
func ParseSolutions(problem Problem, content string) ([]Assignment, error) {
	assignments := make([]Assignment, 0)
	entries := make(map[uint64]uint64)

	flush := func() error {
		if len(entries) == 0 {
			return nil
		}
		assignment := make(Assignment, problem.Steps)
		for step := uint64(0); step < problem.Steps; step++ {
			user, assigned := entries[step]
			if !assigned {
				return fmt.Errorf("assignment %d leaves step %v unassigned", len(assignments), stepToken(step))
			}
			assignment[step] = user
		}
		assignments = append(assignments, assignment)
		entries = make(map[uint64]uint64)
		return nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		stepPart, userPart, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("malformed assignment line %q", line)
		}
		step, err := parseStepToken(strings.TrimSpace(stepPart))
		if err != nil {
			return nil, err
		}
		user, err := parseUserToken(strings.TrimSpace(userPart))
		if err != nil {
			return nil, err
		}
		if step >= problem.Steps {
			return nil, fmt.Errorf("step %v is out of range", stepToken(step))
		}
		if user >= problem.Users {
			return nil, fmt.Errorf("user %v is out of range", userToken(user))
		}
		if _, duplicate := entries[step]; duplicate {
			return nil, fmt.Errorf("step %v is assigned twice", stepToken(step))
		}
		entries[step] = user
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// FormatSolutions renders assignments in the text format, the inverse
// of ParseSolutions.
func FormatSolutions(assignments []Assignment) string {
	blocks := lo.Map(assignments, func(assignment Assignment, _ int) string {
		var builder strings.Builder
		for step, user := range assignment {
			fmt.Fprintf(&builder, "%v: %v\n", stepToken(uint64(step)), userToken(user))
		}
		return builder.String()
	})
	return strings.Join(blocks, "\n")
}

// ReadSolutionsFile loads assignments from a text file.
func ReadSolutionsFile(problem Problem, path string) ([]Assignment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSolutions(problem, string(content))
}

// WriteSolutionsFile renders assignments into a text file.
func WriteSolutionsFile(path string, assignments []Assignment) error {
	return os.WriteFile(path, []byte(FormatSolutions(assignments)), 0644)
}
