// Package pipeline turns an SVG drawing into G-code by running the CAD tool
// and then the slicer, handing files between them inside a private run directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"svgslice/internal/config"
	"svgslice/internal/gcode"
	"svgslice/internal/runner"
	"svgslice/internal/slicer"
	"svgslice/internal/workspace"
	"unicode/utf8"
)

// EnvSliceArgs carries the slicer argument string into the slice script
const EnvSliceArgs = "SARGS"

// Options locates the external tools and names the files exchanged between them
type Options struct {
	OpenSCAD      string
	ConvertScript string // copied into each run dir; empty skips staging
	SliceScript   string
	SlicerConfig  string // copied into each run dir and passed by base name

	DrawingName string
	ModelName   string
	GCodeName   string

	AllowNonZeroExit bool
	MaxConcurrent    int
}

// Result is the outcome of a successful run
type Result struct {
	RunID   string
	WorkDir string // removed after the run unless the workspace keeps runs
	GCode   string
	Summary gcode.Summary
	Model   runner.Result
	Slice   runner.Result
}

type Pipeline struct {
	opts   Options
	ws     *workspace.Workspace
	runner runner.Runner
	logger *slog.Logger
	slots  chan struct{}
}

// New builds a pipeline. A nil logger discards output.
func New(opts Options, ws *workspace.Workspace, r runner.Runner, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}

	return &Pipeline{
		opts:   opts,
		ws:     ws,
		runner: r,
		logger: logger,
		slots:  make(chan struct{}, opts.MaxConcurrent),
	}
}

// FromConfig wires a pipeline to the real tools described by cfg
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	ws, err := workspace.New(cfg.Workspace.Root, cfg.Workspace.Keep)
	if err != nil {
		return nil, err
	}

	opts := Options{
		OpenSCAD:         resolveExecutable(cfg.Tools.OpenSCAD),
		SliceScript:      resolveExecutable(cfg.Tools.SliceScript),
		DrawingName:      cfg.Workspace.DrawingName,
		ModelName:        cfg.Workspace.ModelName,
		GCodeName:        cfg.Workspace.GCodeName,
		AllowNonZeroExit: cfg.Pipeline.AllowNonZeroExit,
		MaxConcurrent:    cfg.Pipeline.MaxConcurrent,
	}

	// tools run inside the run dir, so relative files must be made absolute here
	if cfg.Tools.ConvertScript != "" {
		opts.ConvertScript, err = filepath.Abs(cfg.Tools.ConvertScript)
		if err != nil {
			return nil, fmt.Errorf("resolve convert script: %w", err)
		}
	}

	opts.SlicerConfig, err = filepath.Abs(cfg.Tools.SlicerConfig)
	if err != nil {
		return nil, fmt.Errorf("resolve slicer config: %w", err)
	}

	return New(opts, ws, runner.Exec{Timeout: cfg.Tools.Timeout}, logger), nil
}

// resolveExecutable makes path-like tool locations absolute and leaves bare names to $PATH
func resolveExecutable(tool string) string {
	if !strings.ContainsRune(tool, filepath.Separator) && !strings.ContainsRune(tool, '/') {
		return tool
	}

	abs, err := filepath.Abs(tool)
	if err != nil {
		return tool
	}

	return abs
}

// Slice converts settings.SVG to G-code.
// The stages run strictly in order and the first failure is returned as a *StageError.
func (p *Pipeline) Slice(ctx context.Context, settings slicer.Settings) (Result, error) {
	select {
	case p.slots <- struct{}{}:
		defer func() { <-p.slots }()
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	run, err := p.ws.Allocate()
	if err != nil {
		return Result{}, stageErr(StageDrawing, fmt.Errorf("%w: %w", ErrIO, err))
	}

	log := p.logger.With("run", run.ID)

	defer func() {
		err := run.Close()
		if err != nil {
			log.Warn("Failed to remove run dir", "dir", run.Dir, "error", err)
		}
	}()

	res := Result{RunID: run.ID, WorkDir: run.Dir}

	res.Model, err = p.generateModel(ctx, log, run, settings.SVG)
	if err != nil {
		return res, err
	}

	res.Slice, err = p.slice(ctx, log, run, settings)
	if err != nil {
		return res, err
	}

	log.Info("Reading gcode")

	res.GCode, err = readGCode(run.Path(p.opts.GCodeName))
	if err != nil {
		return res, stageErr(StageRead, err)
	}

	res.Summary = gcode.Summarize(res.GCode)

	log.Info("Slicing finished",
		"bytes", len(res.GCode),
		"lines", res.Summary.Lines,
		"print_moves", res.Summary.PrintMoves,
		"layers", res.Summary.Layers)

	return res, nil
}

func (p *Pipeline) generateModel(ctx context.Context, log *slog.Logger, run *workspace.Run, svg string) (runner.Result, error) {
	log.Info("Processing OpenSCAD")

	drawing := run.Path(p.opts.DrawingName)

	err := os.WriteFile(drawing, []byte(svg), 0o644)
	if err != nil {
		return runner.Result{}, stageErr(StageDrawing, fmt.Errorf("%w: write drawing %s: %w", ErrIO, drawing, err))
	}

	args := []string{"-o" + run.Path(p.opts.ModelName)}

	if p.opts.ConvertScript != "" {
		script, err := run.Stage(p.opts.ConvertScript)
		if err != nil {
			return runner.Result{}, stageErr(StageModel, fmt.Errorf("%w: stage convert script: %w", ErrIO, err))
		}

		args = append(args, script)
	}

	cmd := runner.Command{
		Path: p.opts.OpenSCAD,
		Args: args,
		Dir:  run.Dir,
	}

	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return res, stageErr(StageModel, runErr(ctx, err))
	}

	logToolResult(ctx, log, "openscad", cmd, res)

	return res, p.checkExit(StageModel, "openscad", res)
}

func (p *Pipeline) slice(ctx context.Context, log *slog.Logger, run *workspace.Run, settings slicer.Settings) (runner.Result, error) {
	log.Info("Processing SuperSlicer")

	// SARGS is word-split by the script, so it only carries names relative to the run dir
	slicerConfig, err := run.Stage(p.opts.SlicerConfig)
	if err != nil {
		return runner.Result{}, stageErr(StageSlice, fmt.Errorf("%w: stage slicer config: %w", ErrIO, err))
	}

	args := settings.ArgString(filepath.Base(slicerConfig), p.opts.ModelName)
	cmd := runner.Command{
		Path: p.opts.SliceScript,
		Env:  []string{EnvSliceArgs + "=" + args},
		Dir:  run.Dir,
	}

	log.Debug("Slicer arguments", "sargs", args)

	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return res, stageErr(StageSlice, runErr(ctx, err))
	}

	logToolResult(ctx, log, "superslicer", cmd, res)

	return res, p.checkExit(StageSlice, "superslicer", res)
}

// runErr classifies a Runner error: cancellation and timeouts stay as is, anything else means the tool never ran
func runErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrToolNotFound, err)
}

func (p *Pipeline) checkExit(stage Stage, tool string, res runner.Result) error {
	if res.Success() || p.opts.AllowNonZeroExit {
		return nil
	}

	return stageErr(stage, &ToolError{Tool: tool, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)})
}

func logToolResult(ctx context.Context, log *slog.Logger, tool string, cmd runner.Command, res runner.Result) {
	level := slog.LevelInfo
	if !res.Success() {
		level = slog.LevelWarn
	}

	log.Log(ctx, level, "Tool finished",
		"tool", tool,
		"command", cmd.String(),
		"exit_code", res.ExitCode,
		"duration", res.Duration,
		"stdout", res.Stdout,
		"stderr", res.Stderr)
}

// readGCode loads the whole output file; a missing or non-text file is an error, never an empty result
func readGCode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrOutputMissing, path)
		}

		return "", fmt.Errorf("%w: read gcode %s: %w", ErrIO, path, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidOutput, path)
	}

	return string(data), nil
}
