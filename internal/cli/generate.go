package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"missingstar/internal/config"
	"missingstar/internal/models"
)

func generateCmd(g *globalFlags) *cobra.Command {
	var (
		in  models.RequestInput
		out string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a problem and an answer chart without opening a window",
		RunE: func(c *cobra.Command, _ []string) error {
			core, err := g.setup(func(cfg *config.Config) {
				if out != "" {
					cfg.OutputDir = out
					cfg.KeepOutput = true
				}
			})
			if err != nil {
				return err
			}
			defer core.Shutdown.Shutdown()

			cfg := core.Config
			if in.Timezone == "" {
				in.Timezone = cfg.Timezone
			}
			loc, err := models.LoadLocation(in.Timezone)
			if err != nil {
				return err
			}
			now := time.Now().In(loc)
			if in.Date == "" {
				in.Date = now.Format(models.DateLayout)
			}
			if in.Time == "" {
				in.Time = now.Format(models.TimeLayout)
			}
			if in.Latitude == "" {
				in.Latitude = strconv.FormatFloat(cfg.Latitude, 'f', -1, 64)
			}
			if in.Longitude == "" {
				in.Longitude = strconv.FormatFloat(cfg.Longitude, 'f', -1, 64)
			}
			if in.MaxMagnitude == "" {
				in.MaxMagnitude = strconv.FormatFloat(cfg.DefaultN, 'f', -1, 64)
			}
			if in.Count == "" {
				in.Count = strconv.Itoa(cfg.DefaultK)
			}

			req, err := models.ParseRequest(in, core.Limits())
			if err != nil {
				return err
			}

			res, err := core.Generator.Generate(core.Context(), req)
			if err != nil {
				return err
			}

			w := c.OutOrStdout()
			fmt.Fprintf(w, "Observer: %s\n", req.Observer)
			fmt.Fprintf(w, "Seed: %d\n", *res.Request.Seed)
			fmt.Fprintf(w, "Removed %d of %d candidates:\n", len(res.Missing), res.Candidates)
			for _, label := range res.MissingLabels() {
				fmt.Fprintln(w, label)
			}
			for _, chart := range []models.ChartImage{res.Problem, res.Answer} {
				fmt.Fprintf(w, "%s  %s\n", chart.Path, humanize.Bytes(uint64(chart.FileSize)))
			}
			if !core.Config.KeepOutput {
				fmt.Fprintf(w, "(files in %s are removed on exit; use --out to keep them)\n", filepath.Dir(res.Problem.Path))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Date, "date", "", "observation date, YYYY-MM-DD (default today)")
	f.StringVar(&in.Time, "time", "", "local time, HH:MM or HH:MM:SS (default now)")
	f.StringVar(&in.Timezone, "tz", "", "IANA timezone (default from config)")
	f.StringVar(&in.Latitude, "lat", "", "latitude in degrees, north positive")
	f.StringVar(&in.Longitude, "lon", "", "longitude in degrees, east positive")
	f.StringVar(&in.MaxMagnitude, "n", "", "faintest magnitude eligible for removal")
	f.StringVar(&in.Count, "k", "", "number of stars to remove")
	f.StringVar(&in.Seed, "seed", "", "random seed for a reproducible selection")
	f.StringVar(&out, "out", "", "directory to keep the charts in")
	return cmd
}
