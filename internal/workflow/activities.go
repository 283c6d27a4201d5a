// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package workflow expresses the generation pipeline as a Temporal workflow
// for operators who run generation under a Temporal server. Semantics match
// internal/pipeline: sequential execution, best-effort continuation, post-run
// validation and repair.
package workflow

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"forgecrew/internal/agent"
	"forgecrew/internal/artifact"
	"forgecrew/internal/repair"
)

// GenerateActivities hosts the pipeline's side-effecting steps.
type GenerateActivities struct {
	invoker agent.Invoker
	agents  map[string]*agent.Descriptor
}

// NewGenerateActivities creates the activity set backed by the given
// generation client and agent roster.
func NewGenerateActivities(invoker agent.Invoker, agents map[string]*agent.Descriptor) *GenerateActivities {
	return &GenerateActivities{invoker: invoker, agents: agents}
}

// RunTaskInput carries one task invocation across the activity boundary.
type RunTaskInput struct {
	TaskName    string
	Role        string
	ContextText string
}

// RunTaskOutput is the produced generation output.
type RunTaskOutput struct {
	Output string
}

// RunTask executes one generation call on behalf of the named agent.
func (a *GenerateActivities) RunTask(ctx context.Context, input RunTaskInput) (RunTaskOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Running generation task", "task", input.TaskName, "role", input.Role)

	desc, ok := a.agents[input.Role]
	if !ok {
		return RunTaskOutput{}, fmt.Errorf("unknown agent role: %s", input.Role)
	}

	activity.RecordHeartbeat(ctx, "generating")

	res, err := a.invoker.Invoke(ctx, desc, input.ContextText)
	if err != nil {
		return RunTaskOutput{}, fmt.Errorf("generation failed for %s: %w", input.TaskName, err)
	}
	if !res.Success {
		return RunTaskOutput{}, fmt.Errorf("generation reported failure for %s", input.TaskName)
	}

	return RunTaskOutput{Output: res.Output}, nil
}

// ValidateArtifactsOutput is the serializable shape of an artifact report.
type ValidateArtifactsOutput struct {
	OK              bool
	MissingCritical []string
	MissingOptional []string
}

// ValidateArtifacts checks the generated tree against the expected manifest.
func (a *GenerateActivities) ValidateArtifacts(ctx context.Context, root string) (ValidateArtifactsOutput, error) {
	report := artifact.Validate(root, artifact.Manifest())

	out := ValidateArtifactsOutput{OK: report.OK()}
	for _, s := range report.MissingCritical {
		out.MissingCritical = append(out.MissingCritical, s.Path)
	}
	for _, s := range report.MissingOptional {
		out.MissingOptional = append(out.MissingOptional, s.Path)
	}
	return out, nil
}

// ApplyRepairs runs the post-generation fixer chain.
func (a *GenerateActivities) ApplyRepairs(ctx context.Context, root string) ([]repair.Outcome, error) {
	return repair.NewEngine().Run(root)
}
