package model

import (
	"fmt"
	"time"

	"wspsolver/pkg/sat"
)

// Status summarizes how an enumeration run ended.
type Status uint8

const (
	// Infeasible means the first solver call already proved there is
	// no valid assignment.
	Infeasible Status = iota
	// Exhausted means every valid assignment was found and blocked.
	Exhausted
	// Capped means the run stopped at the requested solution count.
	Capped
	// Timeout means the deadline expired before the search finished.
	Timeout
	// Aborted means the run stopped on a stop signal or an error.
	Aborted
)

var statusNames = map[Status]string{
	Infeasible: "infeasible",
	Exhausted:  "exhausted",
	Capped:     "capped",
	Timeout:    "timeout",
	Aborted:    "aborted",
}

func (status Status) String() string {
	name, ok := statusNames[status]
	if !ok {
		return fmt.Sprintf("status-%d", uint8(status))
	}
	return name
}

// Options tune one enumeration run.
type Options struct {
	// MaxSolutions caps how many assignments to collect, zero meaning
	// no cap.
	MaxSolutions uint64
	// Deadline bounds the whole run, zero meaning no deadline. The
	// remaining budget is re-checked between solver calls and passed
	// into each call.
	Deadline time.Duration
	// Stop aborts the run between solver calls when closed.
	Stop <-chan struct{}
}

// Result carries everything a finished enumeration run produced. For
// an exhausted run Calls is one above the solution count, the extra
// call being the one that proved there is nothing left.
type Result struct {
	Status    Status
	Solutions []Assignment
	Calls     uint64
	Elapsed   time.Duration
	Err       error
}

// Enumerator drives the solve-and-block loop behind solution
// enumeration. Every decoded assignment is revalidated against the
// problem before it is reported, so an unsound encoding surfaces as an
// error instead of a wrong answer.
type Enumerator struct {
	encoder Encoder
	solver  sat.Solver
}

func NewEnumerator(encoder Encoder, solver sat.Solver) *Enumerator {
	return &Enumerator{encoder: encoder, solver: solver}
}

// Solve collects solutions until the options' limits cut the run off
// or the problem is exhausted.
func (enumerator *Enumerator) Solve(problem Problem, options Options) Result {
	return <-enumerator.Watch(problem, options, nil)
}

// Watch runs the enumeration in a worker goroutine, streaming each
// solution into found as it appears and delivering the final result on
// the returned channel. A nil found skips the streaming; otherwise the
// caller must drain found until it closes, or close a Stop channel in
// the options to release the worker.
func (enumerator *Enumerator) Watch(problem Problem, options Options, found chan<- Assignment) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		result := enumerator.run(problem, options, found)
		if found != nil {
			close(found)
		}
		done <- result
	}()
	return done
}

// run owns the solver session for the whole loop. Sessions are not
// safe to share across goroutines, so everything from Open to Release
// happens right here.
func (enumerator *Enumerator) run(problem Problem, options Options, found chan<- Assignment) Result {
	started := time.Now()
	result := Result{}
	finish := func(status Status, err error) Result {
		result.Status = status
		result.Err = err
		result.Elapsed = time.Since(started)
		return result
	}

	encoding, err := enumerator.encoder.Encode(problem)
	if err != nil {
		return finish(Aborted, err)
	}
	session, err := enumerator.solver.Open(encoding.Formula)
	if err != nil {
		return finish(Aborted, &BackendError{Solver: enumerator.solver.Name(), Err: err})
	}
	defer session.Release()

	for {
		select {
		case <-options.Stop:
			return finish(Aborted, nil)
		default:
		}

		budget := time.Duration(0)
		if options.Deadline > 0 {
			budget = options.Deadline - time.Since(started)
			if budget <= 0 {
				return finish(Timeout, nil)
			}
		}

		outcome, err := session.Solve(budget)
		result.Calls++
		if err != nil {
			return finish(Aborted, &BackendError{Solver: enumerator.solver.Name(), Err: err})
		}
		switch outcome {
		case sat.Unsat:
			if len(result.Solutions) == 0 {
				return finish(Infeasible, nil)
			}
			return finish(Exhausted, nil)
		case sat.Timeout:
			return finish(Timeout, nil)
		case sat.Sat:
		default:
			return finish(Aborted, &BackendError{
				Solver: enumerator.solver.Name(),
				Err:    fmt.Errorf("unexpected outcome %v", outcome),
			})
		}

		assignment, err := encoding.Decode(session.Valuation())
		if err != nil {
			return finish(Aborted, err)
		}
		if valid, violations := Validate(problem, assignment); !valid {
			return finish(Aborted, &MismatchError{
				Encoder:    enumerator.encoder.Name(),
				Assignment: assignment,
				Violations: violations,
			})
		}

		result.Solutions = append(result.Solutions, assignment)
		if found != nil {
			select {
			case found <- assignment:
			case <-options.Stop:
				return finish(Aborted, nil)
			}
		}
		if options.MaxSolutions > 0 && uint64(len(result.Solutions)) >= options.MaxSolutions {
			return finish(Capped, nil)
		}
		session.Extend([][]int64{encoding.BlockingClause(assignment)})
	}
}
