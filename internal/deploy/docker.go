// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package deploy verifies the deployment surface of the generated
// application: the docker daemon the compose file targets, and any stale
// containers a previous smoke run may have left behind.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// dockerStopTimeout is the timeout for gracefully stopping a container.
const dockerStopTimeout = 10 * time.Second

// DockerManager handles Docker daemon and container lifecycle operations.
type DockerManager struct {
	client *client.Client
}

// NewDockerManager creates a Docker manager with the default client.
func NewDockerManager() (*DockerManager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &DockerManager{client: cli}, nil
}

// Close closes the Docker client connection.
func (dm *DockerManager) Close() error {
	if dm.client != nil {
		return dm.client.Close()
	}
	return nil
}

// Ping checks that the Docker daemon is reachable. The generated
// docker-compose.yml is only deployable when this succeeds, but an
// unreachable daemon degrades the deployment check rather than failing a run.
func (dm *DockerManager) Ping(ctx context.Context) error {
	if _, err := dm.client.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon unreachable: %w", err)
	}
	return nil
}

// IsContainerRunning checks if a container is currently running.
func (dm *DockerManager) IsContainerRunning(ctx context.Context, containerID string) (bool, error) {
	if containerID == "" {
		return false, nil
	}

	inspect, err := dm.client.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}

	return inspect.State.Running, nil
}

// StopAndRemoveContainer stops and removes a container by ID. Idempotent: a
// container that no longer exists is not an error.
func (dm *DockerManager) StopAndRemoveContainer(ctx context.Context, containerID string) error {
	if containerID == "" {
		return nil
	}

	timeout := int(dockerStopTimeout.Seconds())
	stopOptions := container.StopOptions{
		Timeout: &timeout,
	}
	// Container might already be stopped; removal below handles not-found
	_ = dm.client.ContainerStop(ctx, containerID, stopOptions)

	removeOptions := container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	}
	if err := dm.client.ContainerRemove(ctx, containerID, removeOptions); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}

	return nil
}
