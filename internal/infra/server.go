// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package infra

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"syscall"
	"time"
)

// BackendHandle represents a running instance of the generated backend.
type BackendHandle struct {
	Port    int
	WorkDir string
	Cmd     *exec.Cmd
	BaseURL string
	PID     int
}

// BackendServer boots and tears down the generated FastAPI backend as a child
// process. The process runs in its own process group so teardown can kill the
// whole tree, never leaking a listening server.
type BackendServer struct {
	python         string
	startupTimeout time.Duration
	probeInterval  time.Duration
}

// NewBackendServer creates a server manager that launches the backend with
// the given python interpreter.
func NewBackendServer(python string, startupTimeout time.Duration) *BackendServer {
	if python == "" {
		python = "python3"
	}
	if startupTimeout <= 0 {
		startupTimeout = 15 * time.Second
	}
	return &BackendServer{
		python:         python,
		startupTimeout: startupTimeout,
		probeInterval:  200 * time.Millisecond,
	}
}

// Boot starts `uvicorn main:app` in backendDir on the given port and waits
// for the docs endpoint to answer 200 before returning. On startup timeout
// the child process is killed before the error is returned.
func (bs *BackendServer) Boot(ctx context.Context, backendDir string, port int) (*BackendHandle, error) {
	cmd := exec.CommandContext(ctx, bs.python, "-m", "uvicorn", "main:app",
		"--host", "127.0.0.1",
		"--port", fmt.Sprintf("%d", port),
	)
	cmd.Dir = backendDir

	// Own process group so the whole tree can be killed
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start backend: %w", err)
	}

	pid := cmd.Process.Pid
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	bootCtx, cancel := context.WithTimeout(ctx, bs.startupTimeout)
	defer cancel()

	client := &http.Client{Timeout: 1 * time.Second}
	ticker := time.NewTicker(bs.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-bootCtx.Done():
			_ = killProcessGroup(cmd)
			return nil, fmt.Errorf("backend on port %d failed to become ready within %v", port, bs.startupTimeout)

		case <-ticker.C:
			resp, err := client.Get(baseURL + "/docs")
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				continue
			}

			return &BackendHandle{
				Port:    port,
				WorkDir: backendDir,
				Cmd:     cmd,
				BaseURL: baseURL,
				PID:     pid,
			}, nil
		}
	}
}

// Shutdown stops the backend unconditionally.
func (bs *BackendServer) Shutdown(handle *BackendHandle) error {
	if handle == nil || handle.Cmd == nil || handle.Cmd.Process == nil {
		return fmt.Errorf("invalid backend handle")
	}
	return killProcessGroup(handle.Cmd)
}

// killProcessGroup terminates the process and its entire process group.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}

	// SIGTERM first for a graceful stop, SIGKILL if that fails
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		return syscall.Kill(-pgid, syscall.SIGKILL)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-time.After(5 * time.Second):
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return fmt.Errorf("backend shutdown timed out, force killed")
	case err := <-done:
		if err != nil && err.Error() != "signal: terminated" && err.Error() != "signal: killed" {
			return err
		}
		return nil
	}
}
