package sat

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDirectory = "../../test/cnfs/"

func TestBackends(t *testing.T) {
	for _, name := range SolverNames() {
		t.Run(name, func(t *testing.T) {
			solver, ok := SolverByName(name)
			require.True(t, ok)
			if name != "gini" {
				if _, err := exec.LookPath(name); err != nil {
					t.Skipf("%v is not installed", name)
				}
			}
			assertSolvesFixtures(t, solver)
		})
	}
}

func TestSolverByNameUnknown(t *testing.T) {
	_, ok := SolverByName("chaff")
	assert.False(t, ok)
}

func TestOutcomeNames(t *testing.T) {
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "sat", Sat.String())
	assert.Equal(t, "unsat", Unsat.String())
	assert.Equal(t, "timeout", Timeout.String())
}

func assertSolvesFixtures(t *testing.T, solver Solver) {
	entries, err := os.ReadDir(testDirectory)
	require.NoError(t, err)

	for _, entry := range entries {
		//** Arrange
		formula := parseDIMACSFile(t, filepath.Join(testDirectory, entry.Name()))

		//** Act
		session, err := solver.Open(formula)
		require.NoError(t, err)
		outcome, err := session.Solve(0)
		require.NoError(t, err)

		//** Assert
		if strings.HasPrefix(entry.Name(), "unsat") {
			assert.Equal(t, Unsat, outcome, entry.Name())
		} else {
			require.Equal(t, Sat, outcome, entry.Name())
			AssertSolution(t, formula, session.Valuation())
		}
		session.Release()
	}
}

func parseDIMACSFile(t *testing.T, path string) Formula {
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	formula := Formula{}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			require.Len(t, fields, 4)
			variables, err := strconv.ParseUint(fields[2], 10, 64)
			require.NoError(t, err)
			formula.Variables = variables
			continue
		}

		clause := make([]int64, 0)
		for _, token := range strings.Fields(line) {
			literal, err := strconv.ParseInt(token, 10, 64)
			require.NoError(t, err)
			if literal == 0 {
				break
			}
			clause = append(clause, literal)
		}
		formula.AddClause(clause...)
	}
	return formula
}
