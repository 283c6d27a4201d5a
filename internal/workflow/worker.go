// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package workflow

import (
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// TaskQueue is the Temporal task queue the generation worker listens on.
const TaskQueue = "forgecrew-task-queue"

// Worker wraps the Temporal client and worker lifecycle.
type Worker struct {
	client client.Client
	worker worker.Worker
}

// NewWorker dials the Temporal server and registers the generation workflow
// and its activities.
func NewWorker(hostPort string, activities *GenerateActivities) (*Worker, error) {
	opts := client.Options{}
	if hostPort != "" {
		opts.HostPort = hostPort
	}

	c, err := client.Dial(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}

	w := worker.New(c, TaskQueue, worker.Options{})

	w.RegisterWorkflow(GenerateAppWorkflow)
	w.RegisterActivity(activities.RunTask)
	w.RegisterActivity(activities.ValidateArtifacts)
	w.RegisterActivity(activities.ApplyRepairs)

	return &Worker{client: c, worker: w}, nil
}

// Run blocks until interrupted.
func (w *Worker) Run() error {
	defer w.client.Close()
	return w.worker.Run(worker.InterruptCh())
}
