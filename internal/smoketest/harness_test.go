// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package smoketest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecrew/internal/infra"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func filler() string {
	return strings.Repeat("# generated content line\n", 10)
}

func TestCheckFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/requirements.md":     filler(),
		"docs/architecture.md":     filler(),
		"backend/main.py":          filler(),
		"backend/models.py":        filler(),
		"backend/database.py":      filler(),
		"backend/security.py":      filler(),
		"backend/requirements.txt": filler(),
		"frontend/index.html":      filler(),
	})

	h := NewHarness(Options{Root: root})
	result := h.CheckFiles()

	assert.True(t, result.Passed, "all critical files present must pass: %v", result.Details)

	// Remove one critical file
	require.NoError(t, os.Remove(filepath.Join(root, "backend", "security.py")))
	result = h.CheckFiles()
	assert.False(t, result.Passed)
	assert.Contains(t, strings.Join(result.Details, "\n"), "missing critical: backend/security.py")
}

func TestCheckSyntaxSkipsMissingFiles(t *testing.T) {
	h := NewHarness(Options{Root: t.TempDir()})
	result := h.CheckSyntax()

	// Nothing to compile is not a failure; every file reports skipped
	assert.True(t, result.Passed)
	require.Len(t, result.Details, 4)
	for _, d := range result.Details {
		assert.Contains(t, d, "skipped")
	}
}

func TestCheckFrontend(t *testing.T) {
	t.Run("complete frontend", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"frontend/index.html": "<!DOCTYPE html><html><body><script>init()</script></body></html>",
		})
		result := NewHarness(Options{Root: root}).CheckFrontend()
		assert.True(t, result.Passed)
	})

	t.Run("truncated frontend", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"frontend/index.html": "<!DOCTYPE html><html><head></head>",
		})
		result := NewHarness(Options{Root: root}).CheckFrontend()
		assert.False(t, result.Passed)
		assert.Contains(t, strings.Join(result.Details, "\n"), "<body")
	})

	t.Run("missing frontend", func(t *testing.T) {
		result := NewHarness(Options{Root: t.TempDir()}).CheckFrontend()
		assert.False(t, result.Passed)
	})
}

// fakeBooter satisfies the booter seam without spawning processes.
type fakeBooter struct {
	baseURL       string
	bootErr       error
	shutdownCalls int
}

func (f *fakeBooter) Boot(ctx context.Context, backendDir string, port int) (*infra.BackendHandle, error) {
	if f.bootErr != nil {
		return nil, f.bootErr
	}
	return &infra.BackendHandle{Port: port, BaseURL: f.baseURL}, nil
}

func (f *fakeBooter) Shutdown(handle *infra.BackendHandle) error {
	f.shutdownCalls++
	return nil
}

func livenessHarness(t *testing.T, fb *fakeBooter, retries int) *Harness {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"backend/main.py": filler()})

	h := NewHarness(Options{
		Root:         root,
		ProbeRetries: retries,
		ProbeTimeout: 100 * time.Millisecond,
	})
	h.booter = fb
	return h
}

func TestCheckLivenessSuccessStillTerminatesBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fb := &fakeBooter{baseURL: srv.URL}
	h := livenessHarness(t, fb, 3)

	result := h.CheckLiveness(context.Background())

	assert.True(t, result.Passed)
	assert.Equal(t, 1, fb.shutdownCalls, "backend must be terminated even on success")
}

func TestCheckLivenessProbeTimeoutStillTerminatesBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fb := &fakeBooter{baseURL: srv.URL}
	h := livenessHarness(t, fb, 2)

	result := h.CheckLiveness(context.Background())

	assert.False(t, result.Passed)
	assert.Contains(t, strings.Join(result.Details, "\n"), "liveness probe failed after 2 attempts")
	assert.Equal(t, 1, fb.shutdownCalls, "backend must be terminated on probe failure")
}

func TestCheckLivenessBootFailure(t *testing.T) {
	fb := &fakeBooter{bootErr: fmt.Errorf("uvicorn exited immediately")}
	h := livenessHarness(t, fb, 2)

	result := h.CheckLiveness(context.Background())

	assert.False(t, result.Passed)
	assert.Contains(t, strings.Join(result.Details, "\n"), "backend failed to start")
	assert.Equal(t, 0, fb.shutdownCalls)
}

func TestCheckLivenessMissingBackend(t *testing.T) {
	h := NewHarness(Options{Root: t.TempDir()})
	result := h.CheckLiveness(context.Background())

	assert.False(t, result.Passed)
	assert.Contains(t, strings.Join(result.Details, "\n"), "backend/main.py not found")
}

func TestRunReportsEveryLayerIndependently(t *testing.T) {
	// Empty tree: every layer that can fail fails, but all five run.
	fb := &fakeBooter{bootErr: fmt.Errorf("nothing to boot")}
	h := NewHarness(Options{Root: t.TempDir(), ProbeRetries: 1, ProbeTimeout: 50 * time.Millisecond})
	h.booter = fb

	results, overall := h.Run(context.Background())

	require.Len(t, results, 5)
	assert.False(t, overall)

	layers := make([]string, len(results))
	for i, r := range results {
		layers[i] = r.Layer
	}
	assert.Equal(t, []string{"file-structure", "python-syntax", "python-imports", "frontend-markers", "backend-liveness"}, layers)
}
