// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package crew

import (
	"forgecrew/internal/agent"
	"forgecrew/internal/pipeline"
)

// Task names.
const (
	TaskRequirements = "requirements-analysis"
	TaskArchitecture = "architecture-design"
	TaskBackend      = "backend-development"
	TaskFrontend     = "frontend-development"
	TaskTesting      = "testing"
	TaskDeployment   = "deployment"
)

// Plan builds the six-task development plan. Dependencies are declared per
// task and the pipeline scheduler derives the execution order from them.
func Plan(agents map[string]*agent.Descriptor) []pipeline.Task {
	return []pipeline.Task{
		{
			Name: TaskRequirements,
			Instruction: `Create docs/requirements.md with:
- User can register/login with email/password
- User can create tasks with title, description, priority (LOW/MEDIUM/HIGH), due date
- User can view, edit, delete, mark tasks complete
- Tasks have status: TODO, IN_PROGRESS, DONE
- Responsive web interface
- Tech stack: FastAPI backend, SQLite database, vanilla JavaScript frontend

NOTE: This will guide the System Architect, Backend Developer, and Frontend Developer.`,
			ExpectedOutput: "Comprehensive requirements documentation with user stories and technical specifications",
			Agent:          agents[RoleProductManager],
		},
		{
			Name: TaskArchitecture,
			Instruction: `Based on the requirements, create docs/architecture.md with:
- Database: User table (id, username, email, password_hash), Task table (id, user_id, title, description, status, priority, due_date)
- API endpoints: POST /auth/register, POST /auth/login, GET/POST/PUT/DELETE /tasks
- Frontend: Single-page app with login form, task list, create/edit modals
- Authentication: JWT tokens, password hashing
- Tech: FastAPI + SQLAlchemy + SQLite + HTML/CSS/JS

NOTE: Backend and Frontend developers will implement this exact architecture.`,
			ExpectedOutput: "Architecture document created at docs/architecture.md with complete system design",
			Agent:          agents[RoleSystemArchitect],
			Deps:           []string{TaskRequirements},
		},
		{
			Name: TaskBackend,
			Instruction: `Following the architecture design, create backend files:
- main.py: FastAPI app with CORS, endpoints for /auth/register, /auth/login, /tasks CRUD
- models.py: SQLAlchemy User model (id, username, email, password_hash) and Task model (id, user_id, title, description, status enum, priority enum, due_date)
- database.py: SQLite database setup, session management
- security.py: JWT token creation/validation, password hashing with bcrypt
- requirements.txt: fastapi, uvicorn, sqlalchemy, python-jose, passlib, python-multipart

NOTE: Frontend will connect to these exact API endpoints. QA will test these endpoints.`,
			ExpectedOutput: "Complete FastAPI backend with authentication, database models, and API endpoints",
			Agent:          agents[RoleBackendDeveloper],
			Deps:           []string{TaskRequirements, TaskArchitecture},
		},
		{
			Name: TaskFrontend,
			Instruction: `Create a COMPLETE frontend/index.html file that starts with <!DOCTYPE html> and ends with </html>.

The file MUST be a complete, valid HTML document with:
- Full HTML structure: <!DOCTYPE html>, <html>, <head>, <body>
- Embedded CSS in <style> tags with responsive design and modern UI
- Complete JavaScript in <script> tags covering registration, login, JWT token management, task CRUD, status and priority handling
- Login/register forms and complete task management interface
- API integration with backend endpoints (/auth/register, /auth/login, /tasks)
- Error handling and user feedback

CRITICAL: The file must be complete and valid HTML that can run in a browser immediately.`,
			ExpectedOutput: "Complete, functional single-page application at frontend/index.html with embedded CSS and JavaScript",
			Agent:          agents[RoleFrontendDeveloper],
			Deps:           []string{TaskRequirements, TaskArchitecture, TaskBackend},
		},
		{
			Name:           TaskTesting,
			Instruction:    "Create tests/test_backend.py with basic pytest tests for user registration, login, and task operations. Keep it simple and focused.",
			ExpectedOutput: "Complete test file created at tests/test_backend.py with comprehensive API tests",
			Agent:          agents[RoleQAEngineer],
			Deps:           []string{TaskRequirements, TaskArchitecture, TaskBackend},
		},
		{
			Name: TaskDeployment,
			Instruction: `Package the complete application for deployment:
- docker-compose.yml: Backend service (FastAPI on port 8000), frontend service (nginx on port 80), volume mounts for development
- deploy/README.md: Setup instructions - how to install dependencies, run backend, open frontend, test the app

NOTE: Must containerize both backend and frontend components built by other agents.`,
			ExpectedOutput: "Docker-compose.yml file created in root directory and deploy/README.md with deployment instructions",
			Agent:          agents[RoleDevOpsEngineer],
			Deps:           []string{TaskRequirements, TaskArchitecture, TaskBackend, TaskFrontend},
		},
	}
}
