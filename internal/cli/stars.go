package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"missingstar/internal/catalog"
)

func starsCmd(g *globalFlags) *cobra.Command {
	var (
		maxMag  float64
		hipOnly bool
	)

	cmd := &cobra.Command{
		Use:   "stars",
		Short: "List catalog stars, brightest first",
		RunE: func(c *cobra.Command, _ []string) error {
			core, err := g.setup(nil)
			if err != nil {
				return err
			}
			defer core.Shutdown.Shutdown()

			if !c.Flags().Changed("max-mag") {
				maxMag = core.Config.MaxPlotMag
			}
			cat, err := core.Catalog.Get(c.Context())
			if err != nil {
				return err
			}
			filters := []catalog.Filter{catalog.MagnitudeAtMost(maxMag)}
			if hipOnly {
				filters = append(filters, catalog.HasHIP())
			}
			stars, err := cat.Find(c.Context(), filters...)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HIP\tNAME\tMAG\tRA\tDEC")
			for _, s := range stars {
				hip := "-"
				if s.HasHIP() {
					hip = fmt.Sprint(s.HIP)
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.4f\t%.4f\n", hip, s.Name, s.Magnitude, s.RA, s.Dec)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%d stars from %s\n", len(stars), cat.Source())
			return nil
		},
	}

	cmd.Flags().Float64Var(&maxMag, "max-mag", 0, "faintest magnitude to list (default max_plot_mag)")
	cmd.Flags().BoolVar(&hipOnly, "hip-only", false, "only stars with a Hipparcos identifier")
	return cmd
}
