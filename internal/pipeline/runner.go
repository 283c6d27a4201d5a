// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package pipeline executes an ordered list of agent tasks sequentially,
// propagating each completed task's output into the context of every later
// task that declares it as a dependency.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forgecrew/internal/agent"
)

// Runner executes tasks one at a time, never concurrently. Each task's
// context depends on prior tasks' textual output, so there is nothing to
// parallelize at this task count.
type Runner struct {
	invoker     agent.Invoker
	runDeadline time.Duration
	logger      *slog.Logger
}

// NewRunner creates a sequential pipeline runner. runDeadline bounds the
// whole run; zero means no ceiling.
func NewRunner(invoker agent.Invoker, runDeadline time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		invoker:     invoker,
		runDeadline: runDeadline,
		logger:      logger,
	}
}

// Run executes every task in topological order. Single-task failure is common
// and expected: the failed task is recorded and the run continues, because
// downstream tasks may still produce usable output for a degraded result.
// The returned RunResult always holds one entry per task.
func (r *Runner) Run(ctx context.Context, tasks []Task) (*RunResult, error) {
	scheduler := &Scheduler{}
	order, err := scheduler.BuildExecutionOrder(tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to build execution order: %w", err)
	}

	taskMap := make(map[string]*Task, len(tasks))
	for i := range tasks {
		taskMap[tasks[i].Name] = &tasks[i]
	}

	result := &RunResult{
		Order:   order,
		Results: make(map[string]*TaskResult, len(tasks)),
	}

	start := time.Now()
	for _, name := range order {
		task := taskMap[name]

		if r.runDeadline > 0 && time.Since(start) > r.runDeadline {
			r.logger.Warn("run deadline exceeded, skipping remaining task",
				"task", name, "elapsed", time.Since(start))
			result.Results[name] = &TaskResult{
				Name: name,
				Err:  "skipped: run deadline exceeded",
			}
			continue
		}

		r.logger.Info("executing task", "task", name, "agent", task.Agent.Role, "deps", task.Deps)
		result.Results[name] = r.runTask(ctx, task, result)
	}
	result.Elapsed = time.Since(start)

	return result, nil
}

// runTask builds the task's context, invokes its agent with the configured
// retry budget, and records the outcome.
func (r *Runner) runTask(ctx context.Context, task *Task, sofar *RunResult) *TaskResult {
	contextText := r.buildContext(task, sofar)

	maxAttempts := 1 + task.Agent.Params.MaxRetries
	taskStart := time.Now()

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		res, err := r.invoker.Invoke(ctx, task.Agent, contextText)
		if err == nil && res.Success {
			r.logger.Info("task completed", "task", task.Name,
				"attempts", attempt, "duration", time.Since(taskStart))
			return &TaskResult{
				Name:     task.Name,
				Output:   res.Output,
				Success:  true,
				Attempts: attempt,
				Duration: time.Since(taskStart),
			}
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("generation reported failure")
		}
		r.logger.Warn("task attempt failed", "task", task.Name,
			"attempt", attempt, "error", lastErr)

		// The run's outer context going away is not retryable
		if ctx.Err() != nil {
			break
		}
	}

	r.logger.Error("task failed, continuing with remaining tasks",
		"task", task.Name, "error", lastErr)
	return &TaskResult{
		Name:     task.Name,
		Err:      lastErr.Error(),
		Attempts: attempts,
		Duration: time.Since(taskStart),
	}
}

// buildContext concatenates the instruction with the recorded outputs of each
// dependency in declared order. A failed dependency contributes whatever
// output it produced, possibly none: best-effort propagation, not an error.
func (r *Runner) buildContext(task *Task, sofar *RunResult) string {
	var b strings.Builder
	b.WriteString(task.Instruction)

	if task.ExpectedOutput != "" {
		fmt.Fprintf(&b, "\n\nExpected output: %s", task.ExpectedOutput)
	}

	for _, dep := range task.Deps {
		tr, ok := sofar.Results[dep]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n\n--- Context from %s ---\n%s", dep, tr.Output)
	}

	return b.String()
}
