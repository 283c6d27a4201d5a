// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecrew/internal/agent"
	"forgecrew/internal/config"
	"forgecrew/internal/pipeline"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Project: config.ProjectConfig{Name: "test", OutputDir: "/tmp/out"},
		Model: config.ModelConfig{
			Default: "anthropic/claude-3-5-haiku",
			BaseURL: "http://localhost:4096",
			Agents: map[string]string{
				RoleFrontendDeveloper: "anthropic/claude-sonnet-4-5",
			},
		},
	}
	return cfg
}

func TestAgents(t *testing.T) {
	agents := Agents(testConfig())

	require.Len(t, agents, 6)
	for role, desc := range agents {
		assert.Equal(t, role, desc.Role)
		assert.NotEmpty(t, desc.Goal)
		assert.NotEmpty(t, desc.Backstory)
		assert.True(t, desc.Can(agent.CapWriteFile), "%s must be able to write files", role)
	}

	// Only the frontend developer reads backend files
	assert.True(t, agents[RoleFrontendDeveloper].Can(agent.CapReadFile))
	assert.False(t, agents[RoleBackendDeveloper].Can(agent.CapReadFile))

	// Frontend gets the higher iteration cap and its model override
	assert.Equal(t, 5, agents[RoleFrontendDeveloper].Params.MaxIterations)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", agents[RoleFrontendDeveloper].Params.Model)
	assert.Equal(t, "anthropic/claude-3-5-haiku", agents[RoleQAEngineer].Params.Model)
}

func TestPlanFormsValidDAG(t *testing.T) {
	agents := Agents(testConfig())
	plan := Plan(agents)

	require.Len(t, plan, 6)
	for _, task := range plan {
		require.NotNil(t, task.Agent, "task %s must have an agent", task.Name)
		assert.NotEmpty(t, task.Instruction)
		assert.NotEmpty(t, task.ExpectedOutput)
	}

	s := &pipeline.Scheduler{}
	order, err := s.BuildExecutionOrder(plan)
	require.NoError(t, err)
	assert.Len(t, order, 6)
	assert.Equal(t, TaskRequirements, order[0])
}

func TestPlanDependencyTexture(t *testing.T) {
	plan := Plan(Agents(testConfig()))

	byName := make(map[string]pipeline.Task)
	for _, task := range plan {
		byName[task.Name] = task
	}

	assert.Empty(t, byName[TaskRequirements].Deps)
	assert.Equal(t, []string{TaskRequirements}, byName[TaskArchitecture].Deps)
	assert.Contains(t, byName[TaskDeployment].Deps, TaskFrontend)
	assert.NotContains(t, byName[TaskTesting].Deps, TaskFrontend)
}
