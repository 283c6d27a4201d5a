// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package pipeline

import (
	"time"

	"forgecrew/internal/agent"
)

// Task is one unit of pipeline work bound to an agent. Constructed once at
// process start and never mutated.
type Task struct {
	// Name uniquely identifies the task within a run.
	Name string

	// Instruction is the free-text description of the work, including the
	// exact output file paths expected.
	Instruction string

	// ExpectedOutput describes what a correct result looks like. Guidance
	// for the agent only; never checked programmatically.
	ExpectedOutput string

	// Agent executes this task.
	Agent *agent.Descriptor

	// Deps lists the names of tasks whose outputs are injected as context,
	// in injection order. Must form a DAG with the other tasks.
	Deps []string
}

// TaskResult records the outcome of one executed task.
type TaskResult struct {
	Name     string
	Output   string
	Success  bool
	Err      string
	Attempts int
	Duration time.Duration
}

// RunStatus is the overall outcome of a pipeline run.
type RunStatus string

const (
	// StatusCompleteSuccess means every task succeeded and every critical
	// artifact exists on disk.
	StatusCompleteSuccess RunStatus = "complete_success"

	// StatusPartial means the run produced a degraded result. Callers must
	// not treat this as a hard error; it is a prompt to re-run or repair.
	StatusPartial RunStatus = "partial"
)

// RunResult accumulates one entry per task as the pipeline advances. Owned by
// the Runner during execution; read-only afterwards.
type RunResult struct {
	Order   []string
	Results map[string]*TaskResult
	Elapsed time.Duration
}

// AllSucceeded reports whether every task in the run succeeded.
func (r *RunResult) AllSucceeded() bool {
	for _, tr := range r.Results {
		if !tr.Success {
			return false
		}
	}
	return true
}

// FailedTasks returns the names of failed tasks in execution order.
func (r *RunResult) FailedTasks() []string {
	var failed []string
	for _, name := range r.Order {
		if tr, ok := r.Results[name]; ok && !tr.Success {
			failed = append(failed, name)
		}
	}
	return failed
}

// Status combines the per-task outcomes with the artifact validator's
// verdict: complete_success requires both every task to have succeeded and
// every critical artifact to exist on disk.
func (r *RunResult) Status(artifactsOK bool) RunStatus {
	if r.AllSucceeded() && artifactsOK {
		return StatusCompleteSuccess
	}
	return StatusPartial
}
