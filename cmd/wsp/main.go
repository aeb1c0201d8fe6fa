package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"wspsolver/pkg/model"
	"wspsolver/pkg/sat"
)

func main() {
	setConfigPath()
	// Define arguments
	inputPtr := flag.String("input", "", "Path to the instance file; .json and .yaml/.yml use the structured formats, everything else the classic text format")
	encoderPtr := flag.String("encoder", "direct", `Encoding to feed the SAT backend. Allowed values are:
- "direct" (plain combinatorial encoding, enumerates every solution),
- "symmetry" (adds lexicographic ordering over interchangeable users, enumerates one representative per orbit) and
- "hybrid" (circuit-level encoding lowered through gini's logic package), where "direct" is the default`)
	solverPtr := flag.String("solver", "gini", "SAT backend to use. Allowed values are: \"gini\", \"kissat\", \"cadical\", \"cryptominisat\", \"minisat\", where \"gini\" is the default")
	solutionsPtr := flag.Uint64("solutions", 0, "Maximum number of solutions to enumerate, where 0 means all of them")
	timeoutPtr := flag.Duration("timeout", 0, "Overall enumeration deadline, where 0 means none")
	outputPtr := flag.String("output", "", "Path to the file where the solutions will be written; if empty, they'll be written into the Standard Output")
	expandPtr := flag.Bool("expand", false, "Expand interchangeable-user orbits of the reported solutions, undoing the symmetry encoder's quotient")
	validatePtr := flag.String("validate", "", "Path to a solutions file to audit against the instance; no solving happens in this mode")
	analyzePtr := flag.Bool("analyze", false, "Run the static feasibility analysis instead of solving")
	flag.Parse()
	encoderName := strings.ToLower(*encoderPtr)
	solverName := strings.ToLower(*solverPtr)

	// Validate arguments
	if *inputPtr == "" {
		log.Fatal("an instance file must be specified")
	} else if !slices.Contains(model.EncoderNames(), encoderName) {
		log.Fatalf("%v is not a valid encoder", encoderName)
	} else if !slices.Contains(sat.SolverNames(), solverName) {
		log.Fatalf("%v is not a valid solver", solverName)
	}

	// Extract instance
	problem, err := model.ReadProblemFile(*inputPtr)
	if err != nil {
		log.Fatalf("cannot parse instance file: %v", err)
	}

	if *validatePtr != "" {
		os.Exit(audit(problem, *validatePtr))
	} else if *analyzePtr {
		os.Exit(analyze(problem))
	}

	// Initialize engines
	encoder, _ := model.EncoderByName(encoderName)
	solver, _ := sat.SolverByName(solverName)
	enumerator := model.NewEnumerator(encoder, solver)

	// Enumerate solutions
	result := enumerator.Solve(problem, model.Options{
		MaxSolutions: *solutionsPtr,
		Deadline:     *timeoutPtr,
	})
	if result.Err != nil {
		log.Fatalf("an error occurred during enumeration: %v", result.Err)
	}

	solutions := result.Solutions
	if *expandPtr {
		solutions = expandOrbits(problem, solutions)
	}

	// Write solutions
	if *outputPtr == "" {
		fmt.Print(model.FormatSolutions(solutions))
	} else if err := model.WriteSolutionsFile(*outputPtr, solutions); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}

	fmt.Printf("Status: %v\n", result.Status)
	fmt.Printf("Solutions: %v\n", len(solutions))
	fmt.Printf("Calls: %v\n", result.Calls)
	fmt.Printf("Elapsed: %v\n", result.Elapsed)

	if len(solutions) > 0 {
		os.Exit(10)
	} else if result.Status == model.Infeasible {
		os.Exit(20)
	}
}

// audit validates a solutions file against the instance and renders a
// per-solution report. Exit code 10 means every solution is valid, 20
// that at least one is not.
func audit(problem model.Problem, solutionsPath string) int {
	assignments, err := model.ReadSolutionsFile(problem, solutionsPath)
	if err != nil {
		log.Fatalf("cannot parse solutions file: %v", err)
	}

	code := 10
	for index, report := range model.ValidateSolutions(problem, assignments) {
		if report.Valid {
			fmt.Printf("solution %v: %v\n", index+1, color.GreenString("valid"))
			continue
		}
		code = 20
		fmt.Printf("solution %v: %v\n", index+1, color.RedString("invalid"))
		for _, violation := range report.Violations {
			if violation.Constraint < 0 {
				fmt.Printf("  %v\n", violation.Reason)
				continue
			}
			fmt.Printf("  constraint %v (%v): %v\n", violation.Constraint, violation.Kind, violation.Reason)
		}
	}
	return code
}

// analyze prints the static feasibility report. Exit code 20 means the
// instance is provably infeasible, 0 that the analysis is inconclusive.
func analyze(problem model.Problem) int {
	analysis := model.Analyze(problem)

	for step, candidates := range analysis.Candidates {
		fmt.Printf("step s%v candidates: %v\n", step+1, strings.Join(lo.Map(candidates, func(user uint64, _ int) string {
			return fmt.Sprintf("u%v", user+1)
		}), " "))
	}
	for _, block := range analysis.Blocks {
		if len(block) > 1 {
			fmt.Printf("binding block: %v\n", strings.Join(lo.Map(block, func(step uint64, _ int) string {
				return fmt.Sprintf("s%v", step+1)
			}), " "))
		}
	}

	if !analysis.Infeasible {
		fmt.Println(color.GreenString("no infeasibility proven"))
		return 0
	}
	fmt.Println(color.RedString("infeasible"))
	for _, reason := range analysis.Reasons {
		fmt.Printf("  %v\n", reason)
	}
	return 20
}

// expandOrbits rebuilds the full solution set from orbit
// representatives. Solutions already outside any orbit pass through
// untouched and duplicates collapse.
func expandOrbits(problem model.Problem, solutions []model.Assignment) []model.Assignment {
	expanded := lo.FlatMap(solutions, func(solution model.Assignment, _ int) []model.Assignment {
		return model.Orbit(problem, solution)
	})
	return lo.UniqBy(expanded, func(assignment model.Assignment) string {
		return fmt.Sprint(assignment)
	})
}

// setConfigPath points the solver layer at a config.json sitting next
// to the executable, when there is one. Without it the external
// backends resolve through PATH.
func setConfigPath() {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("cannot determine executable path: %v", err)
	}
	execPath = path.Dir(execPath)

	files, err := os.ReadDir(execPath)
	if err != nil {
		return
	}
	fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })

	if slices.Contains(fileNames, "config.json") {
		sat.ConfigPath = execPath + "/config.json"
	}
}
