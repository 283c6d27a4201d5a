// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package infra manages the process-level plumbing around the generated
// backend: private port allocation and child-process lifecycle.
package infra

import (
	"fmt"
	"sync"
)

// PortManager hands out ports from a fixed range so smoke test runs never
// collide with the generated app's own port or with each other.
type PortManager struct {
	mu        sync.Mutex
	minPort   int
	maxPort   int
	allocated map[int]bool
	nextPort  int
}

// NewPortManager creates a port manager for the given inclusive range.
func NewPortManager(minPort, maxPort int) *PortManager {
	return &PortManager{
		minPort:   minPort,
		maxPort:   maxPort,
		allocated: make(map[int]bool),
		nextPort:  minPort,
	}
}

// Allocate reserves the next available port.
func (pm *PortManager) Allocate() (int, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for i := 0; i < (pm.maxPort - pm.minPort + 1); i++ {
		candidate := pm.minPort + ((pm.nextPort - pm.minPort + i) % (pm.maxPort - pm.minPort + 1))

		if !pm.allocated[candidate] {
			pm.allocated[candidate] = true
			pm.nextPort = candidate + 1
			if pm.nextPort > pm.maxPort {
				pm.nextPort = pm.minPort
			}
			return candidate, nil
		}
	}

	return 0, fmt.Errorf("no available ports in range %d-%d", pm.minPort, pm.maxPort)
}

// Release frees a previously allocated port.
func (pm *PortManager) Release(port int) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if port < pm.minPort || port > pm.maxPort {
		return fmt.Errorf("port %d is outside valid range %d-%d", port, pm.minPort, pm.maxPort)
	}

	if !pm.allocated[port] {
		return fmt.Errorf("port %d was not allocated", port)
	}

	delete(pm.allocated, port)
	return nil
}

// AllocatedCount returns the number of currently allocated ports.
func (pm *PortManager) AllocatedCount() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.allocated)
}
