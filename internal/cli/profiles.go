package cli

import (
	"fmt"
	"svgslice/internal/profile"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles [name]",
		Short: "List print profiles, or print one as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				data, err := profile.Raw(args[0])
				if err != nil {
					return err
				}

				_, err = out.Write(data)

				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPATTERN\tDENSITY\tDESCRIPTION")

			for _, name := range profile.Names() {
				p, err := profile.Load(name)
				if err != nil {
					return err
				}

				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", p.Name, p.Settings.FillPattern, p.Settings.FillDensity, p.Description)
			}

			return tw.Flush()
		},
	}
}
