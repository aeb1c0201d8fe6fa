package model

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"wspsolver/pkg/sat"
)

// BatchInstance names one problem to run inside a batch.
type BatchInstance struct {
	Name    string
	Problem Problem
}

// BatchResult carries the outcome of one instance under one encoder
// and solver pairing.
type BatchResult struct {
	Instance  string
	Encoder   string
	Solver    string
	Status    Status
	Solutions uint64
	Calls     uint64
	Elapsed   time.Duration
	Err       error
}

// RunBatch enumerates every instance with the given encoder and solver
// under shared options, collecting per-instance measurements. Failed
// runs are folded into their result rows instead of stopping the
// batch.
func RunBatch(instances []BatchInstance, encoderName, solverName string, options Options) ([]BatchResult, error) {
	encoder, ok := EncoderByName(encoderName)
	if !ok {
		return nil, &EncodingError{Encoder: encoderName, Reason: "unknown encoder"}
	}
	solver, ok := sat.SolverByName(solverName)
	if !ok {
		return nil, &BackendError{Solver: solverName, Err: fmt.Errorf("unknown solver")}
	}

	enumerator := NewEnumerator(encoder, solver)
	return lo.Map(instances, func(instance BatchInstance, _ int) BatchResult {
		result := enumerator.Solve(instance.Problem, options)
		return BatchResult{
			Instance:  instance.Name,
			Encoder:   encoderName,
			Solver:    solverName,
			Status:    result.Status,
			Solutions: uint64(len(result.Solutions)),
			Calls:     result.Calls,
			Elapsed:   result.Elapsed,
			Err:       result.Err,
		}
	}), nil
}
