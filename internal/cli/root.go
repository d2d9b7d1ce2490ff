// Package cli wires the configuration, pipeline and HTTP server into the svgslice command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"svgslice/internal/config"
	"syscall"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "svgslice",
		Short: "Turn SVG drawings into G-code with OpenSCAD and SuperSlicer",
		Long: `svgslice writes an SVG drawing into a private work directory, extrudes it
with OpenSCAD into a 3MF model and slices that model with SuperSlicer.

Example usage:
  svgslice serve --addr :8080
  svgslice slice --svg part.svg --profile strong -o part.gcode
  svgslice profiles standard`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"TOML config file (default $"+config.EnvConfigPath+", then built-in defaults)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newServeCommand(opts),
		newSliceCommand(opts),
		newProfilesCommand(),
		newVersionCommand(),
	)

	return cmd
}

// Execute runs the command line until it finishes or the process is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// load reads the configuration and builds the logger writing to w
func (o *globalOptions) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if o.verbose {
		cfg.Log.Level = "debug"
	}

	logger := cfg.NewLogger(w)
	slog.SetDefault(logger)

	return cfg, logger, nil
}
