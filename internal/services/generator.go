// Package services orchestrates quiz chart generation: star selection, sampling and
// rendering of the problem and answer charts.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ErikKalkoken/go-set"
	"golang.org/x/sync/errgroup"

	"missingstar/internal/astro"
	"missingstar/internal/catalog"
	"missingstar/internal/logger"
	"missingstar/internal/models"
	"missingstar/internal/render"
	"missingstar/internal/timing"
)

const (
	ProblemFile = "problem.png"
	AnswerFile  = "answer.png"
)

// ErrBusy is returned when a generation is already running.
var ErrBusy = errors.New("generation already in progress")

// Settings fix the chart geometry and output location.
type Settings struct {
	MaxPlotMag float64
	Resolution int
	Scale      float64
	OutputDir  string
	Style      render.Style
}

// Generator produces problem/answer chart pairs.
type Generator struct {
	catalog  *catalog.Cache
	canvases render.Canvases
	repo     *models.ResultRepository
	settings Settings
	logger   logger.Logger
	timings  *timing.Tracker
	written  func(paths ...string)
	busy     atomic.Bool
}

func NewGenerator(
	cat *catalog.Cache,
	canvases render.Canvases,
	repo *models.ResultRepository,
	settings Settings,
	log logger.Logger,
) *Generator {
	if settings.Style.MarkerScale == 0 {
		settings.Style = render.DefaultStyle
	}
	return &Generator{
		catalog:  cat,
		canvases: canvases,
		repo:     repo,
		settings: settings,
		logger:   log,
		timings:  timing.NewTracker(timing.DefaultHistory),
	}
}

// OnWritten registers fn to be told about every chart file the generator commits.
func (g *Generator) OnWritten(fn func(paths ...string)) {
	g.written = fn
}

// Timings reports per-stage durations of past requests.
func (g *Generator) Timings() *timing.Tracker {
	return g.timings
}

// Settings returns the generator's configuration.
func (g *Generator) Settings() Settings {
	return g.settings
}

// Limits returns the bounds requests are validated against.
func (g *Generator) Limits(defaultTimezone string) models.Limits {
	return models.Limits{MaxPlotMag: g.settings.MaxPlotMag, DefaultTimezone: defaultTimezone}
}

// Generate runs one request end to end. On error no chart files from this request are
// left behind and nothing is recorded.
func (g *Generator) Generate(ctx context.Context, req models.Request) (*models.Result, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer g.busy.Store(false)

	start := time.Now()
	stopTotal := g.timings.Start("generate")
	if err := req.Validate(g.Limits("")); err != nil {
		return nil, err
	}
	if req.Seed == nil {
		seed := rand.Uint64()
		req.Seed = &seed
	}

	stopSelect := g.timings.Start("select")
	cat, err := g.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}
	eligible, err := cat.Find(ctx, catalog.MagnitudeAtMost(min(req.MaxMagnitude, g.settings.MaxPlotMag)), catalog.HasHIP())
	if err != nil {
		return nil, err
	}
	sky := astro.NewSky(req.Observer)
	candidates := Candidates(sky, eligible, req.MaxMagnitude, g.settings.MaxPlotMag)
	missing, err := Sample(NewRand(*req.Seed), candidates, req.Count)
	if err != nil {
		g.logger.Warning("Generator", "not enough candidates", map[string]interface{}{
			"candidates": len(candidates),
			"requested":  req.Count,
		})
		return nil, err
	}
	missingIDs := set.Of(models.HIPs(missing)...)
	stopSelect()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plottable, err := cat.Find(ctx, catalog.MagnitudeAtMost(g.settings.MaxPlotMag))
	if err != nil {
		return nil, err
	}
	remaining, err := cat.Find(ctx, catalog.MagnitudeAtMost(g.settings.MaxPlotMag), catalog.ExcludeHIP(missingIDs.Slice()...))
	if err != nil {
		return nil, err
	}
	lines, err := cat.Lines(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.settings.OutputDir, 0o755); err != nil {
		return nil, &models.OpError{Op: "services.generate", Kind: models.KindRender, Err: fmt.Errorf("create output directory: %w", err)}
	}
	problemPath := filepath.Join(g.settings.OutputDir, ProblemFile)
	answerPath := filepath.Join(g.settings.OutputDir, AnswerFile)
	// Charts are drawn into partial files and renamed once both succeed, so a failed
	// request leaves the previous result's files in place.
	problemPartial := partialPath(problemPath)
	answerPartial := partialPath(answerPath)

	res := &models.Result{
		Request:    req,
		Missing:    missing,
		Candidates: len(candidates),
	}
	stopRender := g.timings.Start("render")
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		img, err := g.drawChart(egCtx, sky, "problem", problemPartial, func(c *render.Chart) error {
			if err := c.Stars(remaining); err != nil {
				return err
			}
			return c.Horizon()
		})
		res.Problem = img
		return err
	})
	eg.Go(func() error {
		img, err := g.drawChart(egCtx, sky, "answer", answerPartial, func(c *render.Chart) error {
			if err := c.Constellations(lines, plottable); err != nil {
				return err
			}
			if err := c.Stars(plottable); err != nil {
				return err
			}
			var highlighted []models.Star
			for _, s := range plottable {
				if missingIDs.Contains(s.HIP) {
					highlighted = append(highlighted, s)
				}
			}
			if err := c.Highlight(highlighted, render.MissingMarker); err != nil {
				return err
			}
			return c.Horizon()
		})
		res.Answer = img
		return err
	})
	err = eg.Wait()
	if err == nil {
		err = commit(&res.Problem, problemPath)
	}
	if err == nil {
		err = commit(&res.Answer, answerPath)
	}
	if err != nil {
		_ = os.Remove(problemPartial)
		_ = os.Remove(answerPartial)
		g.logger.Error("Generator", err, map[string]interface{}{"operation": "render"})
		return nil, err
	}
	if g.written != nil {
		g.written(problemPath, answerPath)
	}

	renderTime := stopRender()
	stopTotal()

	res.GeneratedAt = time.Now()
	res.Duration = time.Since(start)
	g.repo.Add(res)
	g.logger.Info("Generator", "charts generated", map[string]interface{}{
		"observer":    req.Observer.String(),
		"candidates":  len(candidates),
		"missing":     missingIDs.Size(),
		"seed":        *req.Seed,
		"duration_ms": res.Duration.Milliseconds(),
		"render_ms":   renderTime.Milliseconds(),
	})
	return res, nil
}

func (g *Generator) drawChart(ctx context.Context, sky astro.Sky, tag, path string, draw func(*render.Chart) error) (models.ChartImage, error) {
	opts := render.Options{
		Size:         g.settings.Resolution,
		Scale:        g.settings.Scale,
		MaxMagnitude: g.settings.MaxPlotMag,
		Style:        g.settings.Style,
	}
	c, err := render.NewChart(g.canvases, sky, opts, tag)
	if err != nil {
		return models.ChartImage{}, err
	}
	defer c.Close()

	if err := draw(c); err != nil {
		return models.ChartImage{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.ChartImage{}, err
	}
	return c.Export(path)
}

func partialPath(path string) string {
	ext := filepath.Ext(path)
	return filepath.Join(filepath.Dir(path), "."+strings.TrimSuffix(filepath.Base(path), ext)+".partial"+ext)
}

// commit moves a rendered chart from its partial file to path.
func commit(chart *models.ChartImage, path string) error {
	if err := os.Rename(chart.Path, path); err != nil {
		return &models.OpError{Op: "services.generate", Kind: models.KindRender, Err: fmt.Errorf("replace %s: %w", filepath.Base(path), err)}
	}
	chart.Path = path
	return nil
}
