package main

import (
	"fmt"
	"log"

	"wspsolver/pkg/model"
	"wspsolver/pkg/sat"
)

func main() {
	const File string = "test/instances/paper.txt"

	problem, err := model.ReadProblemFile(File)
	if err != nil {
		log.Fatalf("cannot parse instance file: %v", err)
	}

	solver := sat.NewGiniSolver()
	// solver := sat.NewKissatSolver()
	// solver := sat.NewCadicalSolver()
	// solver := sat.NewCryptominisatSolver()
	// solver := sat.NewMinisatSolver()
	encoder := model.DirectEncoder{}
	// encoder := model.SymmetryEncoder{}
	// encoder := model.HybridEncoder{}
	enumerator := model.NewEnumerator(encoder, solver)

	result := enumerator.Solve(problem, model.Options{})
	if result.Err != nil {
		log.Fatal(result.Err)
	} else if result.Status == model.Infeasible {
		fmt.Println("Not satisfiable")
		return
	}

	fmt.Print(model.FormatSolutions(result.Solutions))

	for _, report := range model.ValidateSolutions(problem, result.Solutions) {
		if !report.Valid {
			log.Fatalf("verification failed for %v: %v", report.Assignment, report.Violations)
		}
	}

	fmt.Printf("Status: %v, Solutions: %v, Calls: %v, Elapsed: %v\n",
		result.Status, len(result.Solutions), result.Calls, result.Elapsed)
}
