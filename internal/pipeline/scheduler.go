// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package pipeline

import (
	"fmt"

	"github.com/gammazero/toposort"
)

// Scheduler resolves task dependencies into an execution order.
type Scheduler struct{}

// BuildExecutionOrder performs a topological sort over the task dependency
// edges and returns task names in safe execution order. A cycle is a
// programmer error in the task plan and fails fast.
func (s *Scheduler) BuildExecutionOrder(tasks []Task) ([]string, error) {
	if len(tasks) == 0 {
		return []string{}, nil
	}

	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if known[t.Name] {
			return nil, fmt.Errorf("duplicate task name: %s", t.Name)
		}
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

	// No edges means declared order is already valid
	if len(edges) == 0 {
		flatOrder := make([]string, 0, len(tasks))
		for _, t := range tasks {
			flatOrder = append(flatOrder, t.Name)
		}
		return flatOrder, nil
	}

	sortedNodes, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("cycle detected in task graph: %w", err)
	}

	inSorted := make(map[string]bool, len(sortedNodes))
	flatOrder := make([]string, 0, len(tasks))

	for _, node := range sortedNodes {
		name := node.(string)
		inSorted[name] = true
		flatOrder = append(flatOrder, name)
	}

	// Prepend tasks that were not part of the dependency graph (roots),
	// keeping their declared order
	var roots []string
	for _, t := range tasks {
		if !inSorted[t.Name] {
			roots = append(roots, t.Name)
		}
	}

	return append(roots, flatOrder...), nil
}
