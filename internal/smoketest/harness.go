// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package smoketest verifies the generated application end to end: expected
// files, Python syntax, import resolution, frontend completeness, and a live
// boot of the backend. Every layer runs even when earlier ones fail, so a
// single broken file never hides problems elsewhere.
package smoketest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitfield/script"

	"forgecrew/internal/artifact"
	"forgecrew/internal/infra"
)

// CheckResult is the outcome of one harness layer.
type CheckResult struct {
	Layer   string
	Passed  bool
	Details []string
}

// booter abstracts backend process lifecycle so the liveness layer is
// testable without spawning a real server.
type booter interface {
	Boot(ctx context.Context, backendDir string, port int) (*infra.BackendHandle, error)
	Shutdown(handle *infra.BackendHandle) error
}

// Options configures a Harness.
type Options struct {
	Root         string
	Python       string
	BackendPort  int
	ProbeRetries int
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

// Harness runs the post-generation smoke checks.
type Harness struct {
	root         string
	python       string
	ports        *infra.PortManager
	booter       booter
	probeRetries int
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewHarness creates a harness over the generated output tree.
func NewHarness(opts Options) *Harness {
	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.BackendPort <= 0 {
		opts.BackendPort = 8001
	}
	if opts.ProbeRetries <= 0 {
		opts.ProbeRetries = 10
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 1 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	startupBudget := time.Duration(opts.ProbeRetries) * (opts.ProbeTimeout + 500*time.Millisecond)

	return &Harness{
		root: opts.Root,
		// port range keeps repeated smoke runs off the app's own port
		ports:        infra.NewPortManager(opts.BackendPort, opts.BackendPort+99),
		python:       opts.Python,
		booter:       infra.NewBackendServer(opts.Python, startupBudget),
		probeRetries: opts.ProbeRetries,
		probeTimeout: opts.ProbeTimeout,
		logger:       opts.Logger,
	}
}

// Run executes every layer and returns the per-layer results plus the overall
// conjunction.
func (h *Harness) Run(ctx context.Context) ([]CheckResult, bool) {
	results := []CheckResult{
		h.CheckFiles(),
		h.CheckSyntax(),
		h.CheckImports(),
		h.CheckFrontend(),
		h.CheckLiveness(ctx),
	}

	overall := true
	for _, r := range results {
		if !r.Passed {
			overall = false
		}
	}
	return results, overall
}

// CheckFiles verifies the expected file set, sharing the artifact manifest
// with the post-run validator.
func (h *Harness) CheckFiles() CheckResult {
	report := artifact.Validate(h.root, artifact.Manifest())

	result := CheckResult{Layer: "file-structure", Passed: report.OK()}
	for _, s := range report.Present {
		result.Details = append(result.Details, fmt.Sprintf("present: %s", s.Path))
	}
	for _, s := range report.MissingCritical {
		result.Details = append(result.Details, fmt.Sprintf("missing critical: %s", s.Path))
	}
	for _, s := range report.MissingOptional {
		result.Details = append(result.Details, fmt.Sprintf("missing optional: %s", s.Path))
	}
	return result
}

// backendModules are the generated Python sources, by module name.
var backendModules = []string{"main", "models", "database", "security"}

// CheckSyntax compiles each generated source file standalone and reports
// syntax validity per file.
func (h *Harness) CheckSyntax() CheckResult {
	result := CheckResult{Layer: "python-syntax", Passed: true}

	for _, mod := range backendModules {
		path := filepath.Join(h.root, "backend", mod+".py")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			result.Details = append(result.Details, fmt.Sprintf("skipped: backend/%s.py not found", mod))
			continue
		}

		out, err := script.Exec(fmt.Sprintf("%s -m py_compile %q", h.python, path)).String()
		if err != nil {
			result.Passed = false
			result.Details = append(result.Details,
				fmt.Sprintf("syntax error in backend/%s.py: %s", mod, strings.TrimSpace(out)))
			continue
		}
		result.Details = append(result.Details, fmt.Sprintf("syntax OK: backend/%s.py", mod))
	}

	return result
}

// CheckImports dynamically loads each generated module and reports
// import-resolution failures per module.
func (h *Harness) CheckImports() CheckResult {
	result := CheckResult{Layer: "python-imports", Passed: true}
	backendDir := filepath.Join(h.root, "backend")

	if _, err := os.Stat(backendDir); os.IsNotExist(err) {
		result.Passed = false
		result.Details = append(result.Details, "backend/ not found")
		return result
	}

	for _, mod := range []string{"models", "database", "security"} {
		cmd := fmt.Sprintf("%s -c \"import sys; sys.path.insert(0, '%s'); import %s\"",
			h.python, backendDir, mod)
		out, err := script.Exec(cmd).String()
		if err != nil {
			result.Passed = false
			result.Details = append(result.Details,
				fmt.Sprintf("import failed: %s: %s", mod, strings.TrimSpace(out)))
			continue
		}
		result.Details = append(result.Details, fmt.Sprintf("import OK: %s", mod))
	}

	return result
}

// frontendMarkers are the substrings a complete frontend file must contain.
var frontendMarkers = map[string][]string{
	"frontend/index.html": {"<html", "<body", "<script"},
}

// CheckFrontend verifies the frontend entry point looks complete.
func (h *Harness) CheckFrontend() CheckResult {
	result := CheckResult{Layer: "frontend-markers", Passed: true}

	for rel, markers := range frontendMarkers {
		data, err := os.ReadFile(filepath.Join(h.root, rel))
		if err != nil {
			result.Passed = false
			result.Details = append(result.Details, fmt.Sprintf("%s not found", rel))
			continue
		}

		content := string(data)
		var missing []string
		for _, m := range markers {
			if !strings.Contains(content, m) {
				missing = append(missing, m)
			}
		}

		if len(missing) > 0 {
			result.Passed = false
			result.Details = append(result.Details,
				fmt.Sprintf("%s missing: %s", rel, strings.Join(missing, ", ")))
		} else {
			result.Details = append(result.Details, fmt.Sprintf("%s complete", rel))
		}
	}

	return result
}

// CheckLiveness spawns the backend on a private port, polls the docs endpoint
// with bounded retries, and terminates the child process unconditionally
// before returning, even on success.
func (h *Harness) CheckLiveness(ctx context.Context) CheckResult {
	result := CheckResult{Layer: "backend-liveness"}
	backendDir := filepath.Join(h.root, "backend")

	if _, err := os.Stat(filepath.Join(backendDir, "main.py")); os.IsNotExist(err) {
		result.Details = append(result.Details, "backend/main.py not found")
		return result
	}

	port, err := h.ports.Allocate()
	if err != nil {
		result.Details = append(result.Details, fmt.Sprintf("no port available: %v", err))
		return result
	}
	defer func() {
		if err := h.ports.Release(port); err != nil {
			h.logger.Warn("failed to release smoke test port", "port", port, "error", err)
		}
	}()

	handle, err := h.booter.Boot(ctx, backendDir, port)
	if err != nil {
		result.Details = append(result.Details, fmt.Sprintf("backend failed to start: %v", err))
		return result
	}
	defer func() {
		if err := h.booter.Shutdown(handle); err != nil {
			h.logger.Warn("backend shutdown reported error", "error", err)
		}
	}()

	result.Passed = h.probe(ctx, handle.BaseURL+"/docs", &result)
	return result
}

// probe polls the liveness URL with the configured retry budget.
func (h *Harness) probe(ctx context.Context, url string, result *CheckResult) bool {
	client := &http.Client{Timeout: h.probeTimeout}

	for attempt := 1; attempt <= h.probeRetries; attempt++ {
		if ctx.Err() != nil {
			result.Details = append(result.Details, "liveness probe cancelled")
			return false
		}

		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				result.Details = append(result.Details,
					fmt.Sprintf("alive after %d attempt(s)", attempt))
				return true
			}
		}
		time.Sleep(200 * time.Millisecond)
	}

	result.Details = append(result.Details,
		fmt.Sprintf("liveness probe failed after %d attempts", h.probeRetries))
	return false
}
