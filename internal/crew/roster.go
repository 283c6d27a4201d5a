// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package crew defines the fixed software engineering crew: six agent roles
// and the six-task plan that generates the task management application.
package crew

import (
	"forgecrew/internal/agent"
	"forgecrew/internal/config"
)

// Role names, unique within a run.
const (
	RoleProductManager    = "Product Manager"
	RoleSystemArchitect   = "System Architect"
	RoleBackendDeveloper  = "Backend Developer"
	RoleFrontendDeveloper = "Frontend Developer"
	RoleQAEngineer        = "QA Engineer"
	RoleDevOpsEngineer    = "DevOps Engineer"
)

// The frontend agent gets extra refinement passes: a complete single-page
// application rarely lands in one shot.
const frontendIterations = 5

// Agents builds the six agent descriptors from configuration. Descriptors are
// immutable once built and shared read-only across the run.
func Agents(cfg *config.Config) map[string]*agent.Descriptor {
	params := func(role string, maxIter int) agent.Params {
		return agent.Params{
			Model:          cfg.ModelFor(role),
			Temperature:    cfg.Generation.Temperature,
			MaxOutputChars: cfg.Generation.MaxOutputChars,
			Timeout:        cfg.Generation.TaskTimeout(),
			MaxRetries:     cfg.Generation.MaxRetries,
			MaxIterations:  maxIter,
		}
	}

	return map[string]*agent.Descriptor{
		RoleProductManager: {
			Role: RoleProductManager,
			Goal: "Define clear requirements, user stories, and project scope for the task management application",
			Backstory: "You are a Product Manager who creates clear requirements. " +
				"Create docs/requirements.md with user stories and technical specs for a task management app.",
			Capabilities: []agent.Capability{agent.CapWriteFile},
			Params:       params(RoleProductManager, cfg.Generation.MaxIterations),
		},
		RoleSystemArchitect: {
			Role: RoleSystemArchitect,
			Goal: "Design scalable system architecture, database schema, and API specifications",
			Backstory: "You are a System Architect who designs app structure. " +
				"Create docs/architecture.md with database schema, API endpoints, and tech stack details.",
			Capabilities: []agent.Capability{agent.CapWriteFile},
			Params:       params(RoleSystemArchitect, cfg.Generation.MaxIterations),
		},
		RoleBackendDeveloper: {
			Role: RoleBackendDeveloper,
			Goal: "Implement robust server-side logic, APIs, and database integration using Python FastAPI",
			Backstory: "You are a Backend Developer who builds APIs with FastAPI. " +
				"Create backend/main.py, backend/models.py, backend/database.py, backend/security.py, and backend/requirements.txt.",
			Capabilities: []agent.Capability{agent.CapWriteFile},
			Params:       params(RoleBackendDeveloper, cfg.Generation.MaxIterations),
		},
		RoleFrontendDeveloper: {
			Role: RoleFrontendDeveloper,
			Goal: "Build a complete, functional frontend application",
			Backstory: "You are a Frontend Developer who creates complete, functional web applications. " +
				"Create frontend/index.html with embedded CSS and JavaScript - a full single-page application. " +
				"You can read backend files to understand the API endpoints and integrate properly.",
			Capabilities: []agent.Capability{agent.CapWriteFile, agent.CapReadFile},
			Params:       params(RoleFrontendDeveloper, frontendIterations),
		},
		RoleQAEngineer: {
			Role: RoleQAEngineer,
			Goal: "Create comprehensive test suites and ensure code quality and reliability",
			Backstory: "You are a QA Engineer who writes tests. " +
				"Create tests/test_backend.py with pytest tests for the backend API.",
			Capabilities: []agent.Capability{agent.CapWriteFile},
			Params:       params(RoleQAEngineer, cfg.Generation.MaxIterations),
		},
		RoleDevOpsEngineer: {
			Role: RoleDevOpsEngineer,
			Goal: "Set up deployment pipelines, containerization, and production infrastructure",
			Backstory: "You are a DevOps Engineer who handles deployment. " +
				"Create docker-compose.yml in root directory and deploy/README.md with setup instructions.",
			Capabilities: []agent.Capability{agent.CapWriteFile},
			Params:       params(RoleDevOpsEngineer, cfg.Generation.MaxIterations),
		},
	}
}
