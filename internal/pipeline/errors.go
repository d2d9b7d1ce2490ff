package pipeline

import (
	"errors"
	"fmt"
)

// ErrIO is the kind shared by every file write, process spawn and file read failure
var ErrIO = errors.New("i/o failure")

var (
	ErrToolNotFound  = fmt.Errorf("%w: external tool could not be started", ErrIO)
	ErrOutputMissing = fmt.Errorf("%w: gcode output missing", ErrIO)
	ErrInvalidOutput = fmt.Errorf("%w: gcode output is not valid UTF-8 text", ErrIO)
	// ErrToolFailed marks a tool that ran but exited non-zero
	ErrToolFailed = errors.New("external tool failed")
)

// Stage names the pipeline step an error came from
type Stage string

const (
	StageDrawing Stage = "drawing"
	StageModel   Stage = "model"
	StageSlice   Stage = "slice"
	StageRead    Stage = "read"
)

// StageError wraps the first failure of a run with the stage that produced it
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ToolError describes a non-zero exit of an external tool
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	}

	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

func (e *ToolError) Unwrap() error {
	return ErrToolFailed
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
