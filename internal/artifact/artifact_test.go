// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// nonTrivialContent comfortably clears both thresholds.
func nonTrivialContent() string {
	return strings.Repeat("a reasonably long line of generated content\n", 10)
}

func TestInspect(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name           string
		setup          func()
		path           string
		wantExists     bool
		wantNonTrivial bool
	}{
		{
			name:       "missing file",
			setup:      func() {},
			path:       "docs/requirements.md",
			wantExists: false,
		},
		{
			name:           "trivial file exists but too short",
			setup:          func() { writeArtifact(t, root, "backend/main.py", "# stub\n") },
			path:           "backend/main.py",
			wantExists:     true,
			wantNonTrivial: false,
		},
		{
			name: "long single line still trivial",
			setup: func() {
				writeArtifact(t, root, "frontend/index.html", strings.Repeat("x", 500))
			},
			path:           "frontend/index.html",
			wantExists:     true,
			wantNonTrivial: false,
		},
		{
			name:           "non-trivial file",
			setup:          func() { writeArtifact(t, root, "backend/models.py", nonTrivialContent()) },
			path:           "backend/models.py",
			wantExists:     true,
			wantNonTrivial: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			state := Inspect(root, Artifact{Path: tt.path})
			assert.Equal(t, tt.wantExists, state.Exists)
			assert.Equal(t, tt.wantNonTrivial, state.NonTrivial)
		})
	}
}

func TestValidateFailsIffCriticalMissing(t *testing.T) {
	manifest := []Artifact{
		{Path: "backend/main.py", Critical: true},
		{Path: "frontend/index.html", Critical: true},
		{Path: "tests/test_backend.py", Critical: false},
	}

	t.Run("all critical present, optional missing", func(t *testing.T) {
		root := t.TempDir()
		writeArtifact(t, root, "backend/main.py", nonTrivialContent())
		writeArtifact(t, root, "frontend/index.html", nonTrivialContent())

		report := Validate(root, manifest)
		assert.True(t, report.OK())
		assert.Len(t, report.Present, 2)
		assert.Empty(t, report.MissingCritical)
		assert.Len(t, report.MissingOptional, 1)
	})

	t.Run("one critical missing", func(t *testing.T) {
		root := t.TempDir()
		writeArtifact(t, root, "backend/main.py", nonTrivialContent())
		writeArtifact(t, root, "tests/test_backend.py", nonTrivialContent())

		report := Validate(root, manifest)
		assert.False(t, report.OK())
		require.Len(t, report.MissingCritical, 1)
		assert.Equal(t, "frontend/index.html", report.MissingCritical[0].Path)
		assert.Empty(t, report.MissingOptional)
	})

	t.Run("empty directory", func(t *testing.T) {
		report := Validate(t.TempDir(), manifest)
		assert.False(t, report.OK())
		assert.Len(t, report.MissingCritical, 2)
		assert.Len(t, report.MissingOptional, 1)
	})
}

func TestManifest(t *testing.T) {
	manifest := Manifest()

	critical := 0
	paths := make(map[string]bool)
	for _, a := range manifest {
		assert.False(t, paths[a.Path], "duplicate path %s", a.Path)
		paths[a.Path] = true
		assert.NotEmpty(t, a.Description)
		if a.Critical {
			critical++
		}
	}

	assert.Equal(t, 8, critical)
	assert.True(t, paths["backend/security.py"])
	assert.True(t, paths["docker-compose.yml"])
}
