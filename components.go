package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrInvalidTimeout = errors.New("timeout must be positive")
	ErrTimeout        = errors.New("job exceeded its timeout")
)

// LaunchError means the external command or endpoint could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("launch %v: %v", e.Command, e.Err) }
func (e *LaunchError) Unwrap() error { return e.Err }

// HarnessError is a failure of the benchmark driver itself. It aborts the batch.
type HarnessError struct {
	Op  string
	Err error
}

func (e *HarnessError) Error() string { return fmt.Sprintf("%v: %v", e.Op, e.Err) }
func (e *HarnessError) Unwrap() error { return e.Err }

// JobSpec describes exactly one invocation of the system under test.
// Command is a binary path in exec mode and an endpoint URL in http mode.
type JobSpec struct {
	Command   string
	Args      []string
	QueryPath string
	Timeout   time.Duration
}

func NewJobSpec(command string, args []string, queryPath string, timeout time.Duration) JobSpec {
	return JobSpec{
		Command:   command,
		Args:      slices.Clone(args),
		QueryPath: queryPath,
		Timeout:   timeout,
	}
}

type Outcome int

const (
	OutcomeCompleted Outcome = iota + 1
	OutcomeTimedOut
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeTimedOut:
		return "timeout"
	case OutcomeFailed:
		return "error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// JobResult is the single record produced for every dispatched job.
// Elapsed is meaningful only when Started is set.
type JobResult struct {
	QueryPath string
	Outcome   Outcome
	Started   bool
	Elapsed   time.Duration
	// Status is the exit code of the process or the HTTP status of the endpoint.
	Status  int
	Results int
	PID     int
	Err     error
}

func Completed(queryPath string, elapsed time.Duration, status int, results int) JobResult {
	return JobResult{
		QueryPath: queryPath,
		Outcome:   OutcomeCompleted,
		Started:   true,
		Elapsed:   elapsed,
		Status:    status,
		Results:   results,
	}
}

func TimedOut(queryPath string) JobResult {
	return JobResult{QueryPath: queryPath, Outcome: OutcomeTimedOut, Status: -1, Results: -1, Err: ErrTimeout}
}

func Failed(queryPath string, err error) JobResult {
	return JobResult{QueryPath: queryPath, Outcome: OutcomeFailed, Status: -1, Results: -1, Err: err}
}

// FailedAfterStart keeps the elapsed time of a job that started but did not complete.
func FailedAfterStart(queryPath string, elapsed time.Duration, status int, err error) JobResult {
	result := Failed(queryPath, err)
	result.Started = true
	result.Elapsed = elapsed
	result.Status = status
	return result
}

// ElapsedSeconds returns -1 when no elapsed time was observed.
func (r JobResult) ElapsedSeconds() float64 {
	if !r.Started {
		return -1
	}
	return r.Elapsed.Seconds()
}

type Runner interface {
	Name() string
	Run(ctx context.Context, spec JobSpec) JobResult
}

type Sink interface {
	Record(result JobResult) error
}

// SpecFunc builds the job for one discovered query file.
type SpecFunc func(queryPath string) (JobSpec, error)
