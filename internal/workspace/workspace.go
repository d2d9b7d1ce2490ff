// Package workspace allocates a private directory for each slicing run.
//
// The drawing, model and G-code files of a run live only inside its directory,
// so concurrent runs never share intermediate files.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrInvalidRoot       = errors.New("invalid workspace root")
	ErrRootPathCollision = errors.New("workspace root exists but is not a directory")
)

// Workspace is the parent directory of all run directories
type Workspace struct {
	Root string
	// Keep leaves run directories in place after Close, for debugging tool output
	Keep bool
}

// New validates root and creates it when missing
func New(root string, keep bool) (*Workspace, error) {
	if root == "" {
		return nil, ErrInvalidRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %s: %w", root, err)
	}

	info, err := os.Stat(abs)

	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrRootPathCollision, abs)
	case err != nil && !os.IsNotExist(err):
		return nil, fmt.Errorf("stat workspace root: %w", err)
	case err != nil:
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace root: %w", err)
		}
	}

	return &Workspace{Root: abs, Keep: keep}, nil
}

// Run is the directory owned by one pipeline run
type Run struct {
	ID   string
	Dir  string
	keep bool
}

// Allocate creates a fresh, uniquely named run directory
func (w *Workspace) Allocate() (*Run, error) {
	id := uuid.NewString()
	dir := filepath.Join(w.Root, id)

	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	return &Run{ID: id, Dir: dir, keep: w.Keep}, nil
}

// Path returns the absolute path of name inside the run directory
func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Stage copies src into the run directory under its base name and returns the new path
func (r *Run) Stage(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	dst := r.Path(filepath.Base(src))

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}

	return dst, nil
}

// Close removes the run directory unless the workspace keeps runs
func (r *Run) Close() error {
	if r.keep {
		return nil
	}

	return os.RemoveAll(r.Dir)
}
