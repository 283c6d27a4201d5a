// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package artifact classifies the generated output tree against the expected
// file manifest. One Inspect function serves every caller so the validator
// and the smoke test harness can never drift apart on what "present" means.
package artifact

import (
	"bytes"
	"os"
	"path/filepath"
)

// Artifact is an expected output file at a known path relative to the output
// root. Critical artifacts fail the whole run when absent; optional ones are
// reported but never cause failure.
type Artifact struct {
	Path        string
	Description string
	Critical    bool
}

// State is the observed condition of one artifact on disk.
type State struct {
	Artifact
	Exists     bool
	NonTrivial bool
}

// A file is non-trivial when it holds more than minContentChars characters
// and more than minLineBreaks line breaks. Obviously truncated generation
// output fails this even when the file exists.
const (
	minContentChars = 100
	minLineBreaks   = 5
)

// Inspect checks one artifact under root.
func Inspect(root string, a Artifact) State {
	state := State{Artifact: a}

	data, err := os.ReadFile(filepath.Join(root, a.Path))
	if err != nil {
		return state
	}

	state.Exists = true
	content := bytes.TrimSpace(data)
	state.NonTrivial = len(content) > minContentChars && bytes.Count(content, []byte("\n")) > minLineBreaks

	return state
}

// Manifest returns the expected file table for the generated application.
// Core files the app cannot function without are critical; the rest enhance
// it but their absence only degrades the result.
func Manifest() []Artifact {
	return []Artifact{
		{Path: "docs/requirements.md", Description: "Requirements documentation", Critical: true},
		{Path: "docs/architecture.md", Description: "Architecture documentation", Critical: true},
		{Path: "backend/main.py", Description: "FastAPI main application", Critical: true},
		{Path: "backend/models.py", Description: "Database models", Critical: true},
		{Path: "backend/database.py", Description: "Database configuration", Critical: true},
		{Path: "backend/security.py", Description: "Authentication logic", Critical: true},
		{Path: "backend/requirements.txt", Description: "Backend dependencies", Critical: true},
		{Path: "frontend/index.html", Description: "Frontend main page", Critical: true},
		{Path: "frontend/styles/main.css", Description: "Frontend styles", Critical: false},
		{Path: "frontend/js/app.js", Description: "Frontend JavaScript", Critical: false},
		{Path: "tests/test_backend.py", Description: "Backend tests", Critical: false},
		{Path: "docker-compose.yml", Description: "Docker deployment", Critical: false},
		{Path: "deploy/README.md", Description: "Deployment instructions", Critical: false},
	}
}

// Report partitions a manifest into present, missing-critical, and
// missing-optional artifacts.
type Report struct {
	Present         []State
	MissingCritical []State
	MissingOptional []State
}

// OK reports overall validation success: false if and only if at least one
// critical artifact is missing.
func (r Report) OK() bool {
	return len(r.MissingCritical) == 0
}

// Validate inspects every artifact in the manifest under root.
func Validate(root string, manifest []Artifact) Report {
	var report Report

	for _, a := range manifest {
		state := Inspect(root, a)
		switch {
		case state.Exists:
			report.Present = append(report.Present, state)
		case a.Critical:
			report.MissingCritical = append(report.MissingCritical, state)
		default:
			report.MissingOptional = append(report.MissingOptional, state)
		}
	}

	return report
}
