// Package runner starts external tools and captures their output.
//
// A Runner only reports failures to start a process as errors. A process that
// starts and exits non-zero is a successful Run whose Result carries the exit
// code, so callers decide whether that is fatal.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const waitDelay = 2 * time.Second

// Command describes one external process invocation
type Command struct {
	Path string
	Args []string
	Env  []string // KEY=VALUE pairs added to the parent environment
	Dir  string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}

	return c.Path + " " + strings.Join(c.Args, " ")
}

// Result holds the exit status and captured streams of a finished process
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the process exited with status 0
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs a command to completion
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Func adapts a function to the Runner interface
type Func func(ctx context.Context, cmd Command) (Result, error)

func (f Func) Run(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// Exec runs commands with os/exec
type Exec struct {
	// Timeout bounds a single process. Zero waits indefinitely.
	Timeout time.Duration
}

func (e Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	// children of a killed wrapper script may hold the output pipes open
	c.WaitDelay = waitDelay

	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer

	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("run %s: %w", cmd.Path, ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}

		return res, fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	return res, nil
}
