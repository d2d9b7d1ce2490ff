package cli

import (
	"fmt"
	"svgslice/internal/pipeline"
	"svgslice/internal/webserver"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the slicing pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if addr != "" {
				cfg.Server.Addr = addr
			}

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to set up pipeline: %w", err)
			}

			srv, err := webserver.New(p, logger, cfg.Pipeline.DefaultProfile, cfg.Server.MaxUploadBytes)
			if err != nil {
				return err
			}

			logger.Info("Starting server",
				"addr", cfg.Server.Addr,
				"openscad", cfg.Tools.OpenSCAD,
				"slice_script", cfg.Tools.SliceScript,
				"max_concurrent", cfg.Pipeline.MaxConcurrent)

			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides Server.Addr)")

	return cmd
}
