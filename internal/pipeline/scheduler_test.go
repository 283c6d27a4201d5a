// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecrew/internal/agent"
)

func namedTasks(specs map[string][]string, names ...string) []Task {
	desc := &agent.Descriptor{Role: "test"}
	tasks := make([]Task, 0, len(names))
	for _, n := range names {
		tasks = append(tasks, Task{Name: n, Agent: desc, Deps: specs[n]})
	}
	return tasks
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestBuildExecutionOrder(t *testing.T) {
	s := &Scheduler{}

	t.Run("empty task list", func(t *testing.T) {
		order, err := s.BuildExecutionOrder(nil)
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("no dependencies keeps declared order", func(t *testing.T) {
		tasks := namedTasks(nil, "a", "b", "c")
		order, err := s.BuildExecutionOrder(tasks)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("every dependency precedes its dependents", func(t *testing.T) {
		deps := map[string][]string{
			"architecture": {"requirements"},
			"backend":      {"requirements", "architecture"},
			"frontend":     {"requirements", "architecture", "backend"},
			"testing":      {"requirements", "architecture", "backend"},
			"deployment":   {"requirements", "architecture", "backend", "frontend"},
		}
		tasks := namedTasks(deps, "requirements", "architecture", "backend", "frontend", "testing", "deployment")

		order, err := s.BuildExecutionOrder(tasks)
		require.NoError(t, err)
		require.Len(t, order, 6)

		for _, task := range tasks {
			for _, dep := range task.Deps {
				assert.Less(t, indexOf(order, dep), indexOf(order, task.Name),
					"%s must run before %s", dep, task.Name)
			}
		}
	})

	t.Run("disconnected tasks included in declared order", func(t *testing.T) {
		deps := map[string][]string{"b": {"a"}}
		tasks := namedTasks(deps, "standalone1", "standalone2", "a", "b")

		order, err := s.BuildExecutionOrder(tasks)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "standalone1", "standalone2"}, order)
		assert.Less(t, indexOf(order, "a"), indexOf(order, "b"))
		assert.Less(t, indexOf(order, "standalone1"), indexOf(order, "standalone2"))
	})

	t.Run("cycle fails fast", func(t *testing.T) {
		deps := map[string][]string{
			"a": {"c"},
			"b": {"a"},
			"c": {"b"},
		}
		_, err := s.BuildExecutionOrder(namedTasks(deps, "a", "b", "c"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle detected")
	})

	t.Run("unknown dependency rejected", func(t *testing.T) {
		deps := map[string][]string{"a": {"ghost"}}
		_, err := s.BuildExecutionOrder(namedTasks(deps, "a"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown task")
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		_, err := s.BuildExecutionOrder(namedTasks(nil, "a", "a"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate task name")
	})
}
