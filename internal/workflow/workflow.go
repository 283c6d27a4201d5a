// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package workflow

import (
	"fmt"
	"time"

	"github.com/gammazero/toposort"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"forgecrew/internal/repair"
)

// Activity execution options
const (
	// TaskStartToCloseTimeout is the maximum time for one generation call
	TaskStartToCloseTimeout = 10 * time.Minute

	// TaskHeartbeatTimeout is the heartbeat timeout for generation activities
	TaskHeartbeatTimeout = 30 * time.Second

	// TaskRetryBackoffCoefficient is the exponential backoff coefficient
	TaskRetryBackoffCoefficient = 2.0
)

// TaskSpec is the serializable form of one pipeline task.
type TaskSpec struct {
	Name           string
	Instruction    string
	ExpectedOutput string
	Role           string
	Deps           []string
	MaxRetries     int
}

// GenerateAppInput contains the task plan and the output tree root.
type GenerateAppInput struct {
	Root  string
	Tasks []TaskSpec
}

// GenerateAppResult summarizes the run for the workflow caller.
type GenerateAppResult struct {
	Status          string
	FailedTasks     []string
	MissingCritical []string
	RepairsApplied  int
}

// GenerateAppWorkflow runs the generation plan sequentially in topological
// order, then validates the output tree and applies repairs. Single-task
// failure does not abort the workflow: later tasks still run with whatever
// context their dependencies produced.
func GenerateAppWorkflow(ctx workflow.Context, input GenerateAppInput) (GenerateAppResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting app generation workflow", "tasks", len(input.Tasks), "root", input.Root)

	order, err := executionOrder(input.Tasks)
	if err != nil {
		return GenerateAppResult{}, err
	}

	taskMap := make(map[string]TaskSpec, len(input.Tasks))
	for _, t := range input.Tasks {
		taskMap[t.Name] = t
	}

	var activities *GenerateActivities

	outputs := make(map[string]string, len(input.Tasks))
	var failed []string

	for _, name := range order {
		task := taskMap[name]

		ao := workflow.ActivityOptions{
			StartToCloseTimeout: TaskStartToCloseTimeout,
			HeartbeatTimeout:    TaskHeartbeatTimeout,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval:    time.Second,
				BackoffCoefficient: TaskRetryBackoffCoefficient,
				MaximumAttempts:    int32(1 + task.MaxRetries),
			},
		}
		taskCtx := workflow.WithActivityOptions(ctx, ao)

		contextText := buildContext(task, outputs)

		var out RunTaskOutput
		err := workflow.ExecuteActivity(taskCtx, activities.RunTask, RunTaskInput{
			TaskName:    task.Name,
			Role:        task.Role,
			ContextText: contextText,
		}).Get(taskCtx, &out)

		if err != nil {
			logger.Error("Task failed, continuing", "task", task.Name, "error", err)
			failed = append(failed, task.Name)
			outputs[task.Name] = ""
			continue
		}

		logger.Info("Task completed", "task", task.Name)
		outputs[task.Name] = out.Output
	}

	checkOpts := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	checkCtx := workflow.WithActivityOptions(ctx, checkOpts)

	var validation ValidateArtifactsOutput
	if err := workflow.ExecuteActivity(checkCtx, activities.ValidateArtifacts, input.Root).Get(checkCtx, &validation); err != nil {
		return GenerateAppResult{}, fmt.Errorf("artifact validation failed to run: %w", err)
	}

	result := GenerateAppResult{
		FailedTasks:     failed,
		MissingCritical: validation.MissingCritical,
	}

	if len(failed) == 0 && validation.OK {
		result.Status = "complete_success"
		return result, nil
	}

	// Degraded result: run the repair chain before reporting partial
	var outcomes []repair.Outcome
	if err := workflow.ExecuteActivity(checkCtx, activities.ApplyRepairs, input.Root).Get(checkCtx, &outcomes); err != nil {
		logger.Error("Repair pass failed", "error", err)
	} else {
		for _, o := range outcomes {
			if o.Changed {
				result.RepairsApplied++
			}
		}
	}

	result.Status = "partial"
	return result, nil
}

// executionOrder topologically sorts the task specs by their dependencies.
func executionOrder(tasks []TaskSpec) ([]string, error) {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.Name] = true
	}

	edges := make([]toposort.Edge, 0)
	for _, t := range tasks {
		for _, dep := range t.Deps {
			if !known[dep] {
				return nil, fmt.Errorf("task %s depends on unknown task %s", t.Name, dep)
			}
			edges = append(edges, toposort.Edge{dep, t.Name})
		}
	}

	if len(edges) == 0 {
		order := make([]string, 0, len(tasks))
		for _, t := range tasks {
			order = append(order, t.Name)
		}
		return order, nil
	}

	sortedNodes, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("cycle detected in task graph: %w", err)
	}

	inSorted := make(map[string]bool, len(sortedNodes))
	order := make([]string, 0, len(tasks))
	for _, node := range sortedNodes {
		name := node.(string)
		inSorted[name] = true
		order = append(order, name)
	}
	var roots []string
	for _, t := range tasks {
		if !inSorted[t.Name] {
			roots = append(roots, t.Name)
		}
	}

	return append(roots, order...), nil
}

// buildContext mirrors the direct runner: instruction, expected output, then
// each dependency's recorded output in declared order.
func buildContext(task TaskSpec, outputs map[string]string) string {
	contextText := task.Instruction
	if task.ExpectedOutput != "" {
		contextText += fmt.Sprintf("\n\nExpected output: %s", task.ExpectedOutput)
	}
	for _, dep := range task.Deps {
		out, ok := outputs[dep]
		if !ok {
			continue
		}
		contextText += fmt.Sprintf("\n\n--- Context from %s ---\n%s", dep, out)
	}
	return contextText
}
