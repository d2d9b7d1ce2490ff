package cli

import (
	"fmt"
	"os"
	"svgslice/internal/pipeline"
	"svgslice/internal/profile"
	"svgslice/internal/slicer"
	"svgslice/internal/svgcheck"

	"github.com/spf13/cobra"
)

type sliceOptions struct {
	svgPath     string
	profileName string
	output      string

	fillDensity    float64
	fillPattern    string
	fillConnected  bool
	fillOverlap    float64
	fillAngle      int
	fillSpeed      int
	perimeters     int
	perimeterSpeed int
}

func newSliceCommand(opts *globalOptions) *cobra.Command {
	so := &sliceOptions{}

	cmd := &cobra.Command{
		Use:   "slice",
		Short: "Slice one SVG drawing into G-code",
		Long: `Slice runs the pipeline once. Settings start from the chosen profile
(Pipeline.DefaultProfile when --profile is not given); every flag that is
set explicitly overrides the profile value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			name := so.profileName
			if name == "" {
				name = cfg.Pipeline.DefaultProfile
			}

			p, err := profile.Load(name)
			if err != nil {
				return err
			}

			overrides, err := so.overrides(cmd)
			if err != nil {
				return err
			}

			settings := profile.Apply(p.Settings, overrides)

			data, err := os.ReadFile(so.svgPath)
			if err != nil {
				return fmt.Errorf("failed to read drawing: %w", err)
			}

			settings.SVG = string(data)

			info, err := svgcheck.Validate(settings.SVG)
			if err != nil {
				return fmt.Errorf("%s: %w", so.svgPath, err)
			}

			logger.Debug("Drawing accepted", "path", so.svgPath, "elements", info.Elements, "view_box", info.ViewBox)

			pl, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to set up pipeline: %w", err)
			}

			res, err := pl.Slice(cmd.Context(), settings)
			if err != nil {
				return err
			}

			err = so.write(cmd, res.GCode)
			if err != nil {
				return err
			}

			logger.Info("Slicing finished",
				"profile", p.Name,
				"output", so.output,
				"lines", res.Summary.Lines,
				"print_moves", res.Summary.PrintMoves,
				"layers", res.Summary.Layers)

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.svgPath, "svg", "", "SVG drawing to slice")
	f.StringVar(&so.profileName, "profile", "", "print profile to start from")
	f.StringVarP(&so.output, "output", "o", "-", "G-code destination, - for stdout")
	f.Float64Var(&so.fillDensity, "fill-density", 0, "infill density as a fraction, 0.2 for 20%")
	f.StringVar(&so.fillPattern, "fill-pattern", "", "infill pattern name")
	f.BoolVar(&so.fillConnected, "fill-connected", false, "connect infill lines")
	f.Float64Var(&so.fillOverlap, "fill-overlap", 0, "infill/perimeter overlap as a fraction")
	f.IntVar(&so.fillAngle, "fill-angle", 0, "infill angle in degrees")
	f.IntVar(&so.fillSpeed, "fill-speed", 0, "infill speed in mm/s")
	f.IntVar(&so.perimeters, "perimeters", 0, "number of perimeters")
	f.IntVar(&so.perimeterSpeed, "perimeter-speed", 0, "perimeter speed in mm/s")

	_ = cmd.MarkFlagRequired("svg")

	return cmd
}

// overrides collects the setting flags given on the command line
func (so *sliceOptions) overrides(cmd *cobra.Command) (profile.Overrides, error) {
	var o profile.Overrides

	f := cmd.Flags()

	if f.Changed("fill-density") {
		o.FillDensity = &so.fillDensity
	}

	if f.Changed("fill-pattern") {
		pattern, err := slicer.ParseFillPattern(so.fillPattern)
		if err != nil {
			return o, err
		}

		o.FillPattern = &pattern
	}

	if f.Changed("fill-connected") {
		o.FillConnected = &so.fillConnected
	}

	if f.Changed("fill-overlap") {
		o.FillOverlap = &so.fillOverlap
	}

	if f.Changed("fill-angle") {
		o.FillAngle = &so.fillAngle
	}

	if f.Changed("fill-speed") {
		o.FillSpeed = &so.fillSpeed
	}

	if f.Changed("perimeters") {
		o.Perimeters = &so.perimeters
	}

	if f.Changed("perimeter-speed") {
		o.PerimeterSpeed = &so.perimeterSpeed
	}

	return o, nil
}

func (so *sliceOptions) write(cmd *cobra.Command, text string) error {
	if so.output == "" || so.output == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}

	err := os.WriteFile(so.output, []byte(text), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write gcode: %w", err)
	}

	return nil
}
