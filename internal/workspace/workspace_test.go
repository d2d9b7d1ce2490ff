package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		expectError error
	}{
		{
			name: "creates missing root",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b")
			},
		},
		{
			name: "accepts existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "rejects file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
				return path
			},
			expectError: ErrRootPathCollision,
		},
		{
			name:        "rejects empty root",
			setup:       func(t *testing.T) string { return "" },
			expectError: ErrInvalidRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tt.setup(t)

			ws, err := New(root, false)
			if tt.expectError != nil {
				assert.True(t, errors.Is(err, tt.expectError), "got %v", err)
				return
			}

			require.NoError(t, err)
			info, err := os.Stat(ws.Root)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
			assert.True(t, filepath.IsAbs(ws.Root))
		})
	}
}

func TestAllocateUnique(t *testing.T) {
	ws, err := New(t.TempDir(), false)
	require.NoError(t, err)

	seen := make(map[string]bool)

	for range 20 {
		run, err := ws.Allocate()
		require.NoError(t, err)
		assert.False(t, seen[run.Dir], "duplicate run dir %s", run.Dir)
		seen[run.Dir] = true

		assert.Equal(t, filepath.Join(run.Dir, "drawing.svg"), run.Path("drawing.svg"))
	}
}

func TestRunClose(t *testing.T) {
	tests := []struct {
		name         string
		keep         bool
		expectExists bool
	}{
		{name: "removes run dir", keep: false, expectExists: false},
		{name: "keeps run dir", keep: true, expectExists: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := New(t.TempDir(), tt.keep)
			require.NoError(t, err)

			run, err := ws.Allocate()
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(run.Path("model.3mf"), []byte("solid"), 0o644))

			require.NoError(t, run.Close())

			_, err = os.Stat(run.Dir)
			assert.Equal(t, tt.expectExists, err == nil)
		})
	}
}

func TestRunStage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "convert.scad")
	require.NoError(t, os.WriteFile(src, []byte(`linear_extrude(2) import("drawing.svg");`), 0o644))

	ws, err := New(t.TempDir(), false)
	require.NoError(t, err)

	run, err := ws.Allocate()
	require.NoError(t, err)

	dst, err := run.Stage(src)
	require.NoError(t, err)
	assert.Equal(t, run.Path("convert.scad"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "linear_extrude")

	_, err = run.Stage(filepath.Join(t.TempDir(), "missing.scad"))
	assert.Error(t, err)
}
