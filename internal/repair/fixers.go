// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package repair

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Outcome reports what one fixer did, purely for operator visibility.
type Outcome struct {
	Fixer   string
	Changed bool
	Skipped bool
	Detail  string
}

// Fixer applies its rules to its target file(s) under root. A missing target
// is a skip, never an error.
type Fixer interface {
	Name() string
	Fix(root string) (Outcome, error)
}

// Engine runs every fixer in order.
type Engine struct {
	fixers []Fixer
}

// NewEngine builds the default fixer chain.
func NewEngine() *Engine {
	return &Engine{
		fixers: []Fixer{
			&requirementsFixer{},
			&importsFixer{},
			&pydanticFixer{},
			&corsFixer{},
			&runScriptFixer{},
		},
	}
}

// Run applies all fixers and returns one outcome per fixer. I/O failures on
// present files are real errors; absent files are skips.
func (e *Engine) Run(root string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(e.fixers))
	for _, f := range e.fixers {
		outcome, err := f.Fix(root)
		if err != nil {
			return outcomes, fmt.Errorf("fixer %s: %w", f.Name(), err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// rewriteFile applies fn to the file's content and writes it back only when
// something changed.
func rewriteFile(path string, fn func(string) (string, bool)) (changed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	out, changed := fn(string(data))
	if !changed {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// essentialPackages is the canonical backend dependency list with compatible
// version floors.
var essentialPackages = []string{
	"fastapi>=0.100.0",
	"uvicorn>=0.23.0",
	"sqlalchemy>=2.0.0",
	"pydantic>=2.0.0",
	"python-jose>=3.3.0",
	"passlib>=1.7.4",
	"bcrypt>=4.0.0",
	"python-multipart>=0.0.6",
	"email-validator>=2.0.0",
}

// requirementsFixer rewrites backend/requirements.txt to the canonical pinned
// list, dropping anything pip cannot install (notably sqlite3).
type requirementsFixer struct{}

func (f *requirementsFixer) Name() string { return "backend-requirements" }

func (f *requirementsFixer) Fix(root string) (Outcome, error) {
	path := filepath.Join(root, "backend", "requirements.txt")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Outcome{Fixer: f.Name(), Skipped: true, Detail: "backend/requirements.txt not found"}, nil
	}

	var b strings.Builder
	b.WriteString("# Backend dependencies for Task Management App\n")
	for _, pkg := range essentialPackages {
		b.WriteString(pkg)
		b.WriteString("\n")
	}
	canonical := b.String()

	changed, err := rewriteFile(path, func(content string) (string, bool) {
		return canonical, content != canonical
	})
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Fixer: f.Name(), Changed: changed, Detail: "rewrote canonical dependency list"}, nil
}

// backendSources is the file family the import fixer is scoped to.
var backendSources = []string{
	"backend/main.py",
	"backend/security.py",
	"backend/models.py",
	"backend/database.py",
}

// importsFixer converts relative imports to absolute ones across the backend
// sources.
type importsFixer struct{}

func (f *importsFixer) Name() string { return "backend-imports" }

func (f *importsFixer) Fix(root string) (Outcome, error) {
	anyChanged := false
	anyPresent := false

	for _, rel := range backendSources {
		path := filepath.Join(root, rel)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		anyPresent = true

		changed, err := rewriteFile(path, func(content string) (string, bool) {
			out := content
			fileChanged := false
			for _, rule := range relativeImportRules {
				var c bool
				out, c = rule.Apply(out)
				fileChanged = fileChanged || c
			}
			return out, fileChanged
		})
		if err != nil {
			return Outcome{}, err
		}
		anyChanged = anyChanged || changed
	}

	if !anyPresent {
		return Outcome{Fixer: f.Name(), Skipped: true, Detail: "no backend sources found"}, nil
	}
	return Outcome{Fixer: f.Name(), Changed: anyChanged, Detail: "relative imports normalized"}, nil
}

// pydanticFixer upgrades Pydantic v1 syntax in backend/models.py.
type pydanticFixer struct{}

func (f *pydanticFixer) Name() string { return "pydantic-v2-syntax" }

func (f *pydanticFixer) Fix(root string) (Outcome, error) {
	path := filepath.Join(root, "backend", "models.py")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Outcome{Fixer: f.Name(), Skipped: true, Detail: "backend/models.py not found"}, nil
	}

	changed, err := rewriteFile(path, func(content string) (string, bool) {
		out := content
		fileChanged := false
		for _, rule := range pydanticRules {
			var c bool
			out, c = rule.Apply(out)
			fileChanged = fileChanged || c
		}
		return out, fileChanged
	})
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Fixer: f.Name(), Changed: changed, Detail: "pydantic v2 syntax"}, nil
}

var (
	fastapiImportPattern = regexp.MustCompile(`(?m)^from fastapi import .+$`)
	appCreationPattern   = regexp.MustCompile(`(?m)^app = FastAPI\([^)]*\)`)
)

const corsBlock = `

app.add_middleware(
    CORSMiddleware,
    allow_origins=["*"],
    allow_credentials=True,
    allow_methods=["*"],
    allow_headers=["*"],
)`

// corsFixer injects the CORS middleware into backend/main.py when absent.
// The presence check is what makes it idempotent.
type corsFixer struct{}

func (f *corsFixer) Name() string { return "cors-middleware" }

func (f *corsFixer) Fix(root string) (Outcome, error) {
	path := filepath.Join(root, "backend", "main.py")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Outcome{Fixer: f.Name(), Skipped: true, Detail: "backend/main.py not found"}, nil
	}

	changed, err := rewriteFile(path, func(content string) (string, bool) {
		if strings.Contains(content, "CORSMiddleware") {
			return content, false
		}

		importLoc := fastapiImportPattern.FindStringIndex(content)
		appLoc := appCreationPattern.FindStringIndex(content)
		if importLoc == nil || appLoc == nil {
			// Cannot place the middleware safely; leave the file alone
			return content, false
		}

		out := content[:importLoc[1]] +
			"\nfrom fastapi.middleware.cors import CORSMiddleware" +
			content[importLoc[1]:]

		appLoc = appCreationPattern.FindStringIndex(out)
		out = out[:appLoc[1]] + corsBlock + out[appLoc[1]:]

		return out, true
	})
	if err != nil {
		return Outcome{}, err
	}

	detail := "CORS middleware added"
	if !changed {
		detail = "CORS middleware already present or no insertion point"
	}
	return Outcome{Fixer: f.Name(), Changed: changed, Detail: detail}, nil
}

const runScript = `#!/usr/bin/env python3
"""Run the Task Management backend."""

import os

import uvicorn

if __name__ == "__main__":
    os.chdir(os.path.dirname(os.path.abspath(__file__)))
    uvicorn.run("main:app", host="0.0.0.0", port=8000, reload=True)
`

// runScriptFixer writes a launcher script next to the backend sources when
// one is missing.
type runScriptFixer struct{}

func (f *runScriptFixer) Name() string { return "backend-run-script" }

func (f *runScriptFixer) Fix(root string) (Outcome, error) {
	backendDir := filepath.Join(root, "backend")
	if _, err := os.Stat(backendDir); os.IsNotExist(err) {
		return Outcome{Fixer: f.Name(), Skipped: true, Detail: "backend/ not found"}, nil
	}

	path := filepath.Join(backendDir, "run.py")
	if _, err := os.Stat(path); err == nil {
		return Outcome{Fixer: f.Name(), Changed: false, Detail: "backend/run.py already present"}, nil
	}

	if err := os.WriteFile(path, []byte(runScript), 0755); err != nil {
		return Outcome{}, err
	}
	return Outcome{Fixer: f.Name(), Changed: true, Detail: "created backend/run.py"}, nil
}
