package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ErikKalkoken/go-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missingstar/internal/astro"
	"missingstar/internal/catalog"
	"missingstar/internal/logger"
	"missingstar/internal/models"
	"missingstar/internal/opencv/memory"
	"missingstar/internal/opencv/safe"
	"missingstar/internal/render"
)

func newTestGenerator(t *testing.T) (*Generator, *models.ResultRepository, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	cache := catalog.NewCache()
	canvases := memory.NewManager(logger.NewNop())
	t.Cleanup(func() {
		canvases.Shutdown()
		cache.Shutdown()
	})
	repo := models.NewResultRepository()
	g := NewGenerator(cache, canvases, repo, Settings{
		MaxPlotMag: 4,
		Resolution: 400,
		Scale:      0.9,
		OutputDir:  dir,
	}, logger.NewNop())
	return g, repo, dir
}

func seoulRequest(t *testing.T, n float64, k int, seed uint64) models.Request {
	t.Helper()
	req, err := models.ParseRequest(models.RequestInput{
		Date:         "2025-01-15",
		Time:         "21:00",
		Timezone:     "Asia/Seoul",
		Latitude:     "37.5665",
		Longitude:    "126.9780",
		MaxMagnitude: "3.0",
		Count:        "1",
	}, models.Limits{MaxPlotMag: 4, DefaultTimezone: "Asia/Seoul"})
	require.NoError(t, err)
	req.MaxMagnitude = n
	req.Count = k
	req.Seed = &seed
	return req
}

func TestGenerate(t *testing.T) {
	g, repo, dir := newTestGenerator(t)
	ctx := context.Background()

	res, err := g.Generate(ctx, seoulRequest(t, 3.0, 5, 7))
	require.NoError(t, err)

	assert.Len(t, res.Missing, 5)
	assert.GreaterOrEqual(t, res.Candidates, 5)
	ids := set.Of(models.HIPs(res.Missing)...)
	assert.Equal(t, 5, ids.Size())
	for _, s := range res.Missing {
		assert.LessOrEqual(t, s.Magnitude, 3.0)
	}
	assert.Equal(t, filepath.Join(dir, ProblemFile), res.Problem.Path)
	assert.Equal(t, filepath.Join(dir, AnswerFile), res.Answer.Path)
	for _, c := range []models.ChartImage{res.Problem, res.Answer} {
		info, err := os.Stat(c.Path)
		require.NoError(t, err)
		assert.Equal(t, info.Size(), c.FileSize)
		assert.Equal(t, 400, c.Width)
		assert.NotNil(t, c.Image)
	}
	assert.Same(t, res, repo.Latest())
	assert.Len(t, res.MissingLabels(), 5)

	again, err := g.Generate(ctx, seoulRequest(t, 3.0, 5, 7))
	require.NoError(t, err)
	assert.Equal(t, models.HIPs(res.Missing), models.HIPs(again.Missing), "seeded requests repeat")

	assert.Len(t, g.Timings().Timings("generate"), 2)
	assert.Len(t, g.Timings().Timings("render"), 2)
}

func TestGenerateAssignsSeed(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	req := seoulRequest(t, 3.0, 2, 0)
	req.Seed = nil

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, res.Request.Seed)
}

func TestGenerateInsufficientStars(t *testing.T) {
	g, repo, dir := newTestGenerator(t)

	_, err := g.Generate(context.Background(), seoulRequest(t, 0.0, 10, 1))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInsufficientStars))
	assert.Nil(t, repo.Latest())
	assert.Empty(t, g.Timings().Timings("render"))
	_, statErr := os.Stat(filepath.Join(dir, ProblemFile))
	assert.True(t, os.IsNotExist(statErr), "no images on failure")
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	req := seoulRequest(t, 3.0, 1, 1)
	req.Observer.Lat = 91

	_, err := g.Generate(context.Background(), req)
	assert.True(t, models.IsKind(err, models.KindInvalidInput))
}

func TestGenerateIsExclusive(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	g.busy.Store(true)
	_, err := g.Generate(context.Background(), seoulRequest(t, 3.0, 1, 1))
	assert.ErrorIs(t, err, ErrBusy)
	g.busy.Store(false)
}

func TestGenerateRemovesStarsFromProblemChart(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	ctx := context.Background()
	res, err := g.Generate(ctx, seoulRequest(t, 3.0, 6, 11))
	require.NoError(t, err)

	cat, err := g.catalog.Get(ctx)
	require.NoError(t, err)
	plottable, err := cat.Find(ctx, catalog.MagnitudeAtMost(4))
	require.NoError(t, err)

	sky := astro.NewSky(res.Request.Observer)
	proj := astro.NewZenithProjection(400, 0.9)
	missing := set.Of(models.HIPs(res.Missing)...)
	checked := 0
	for _, s := range res.Missing {
		pos := sky.Position(s)
		if pos.Altitude < 5 {
			continue
		}
		at := proj.Project(pos)
		assert.Equal(t, render.MissingMarker.Color, pixel(res.Answer.Image, at), "HIP %d highlighted on answer chart", s.HIP)
		if crowded(sky, proj, plottable, missing, at) {
			continue
		}
		assert.Equal(t, render.DefaultStyle.Sky, pixel(res.Problem.Image, at), "HIP %d absent from problem chart", s.HIP)
		checked++
	}
	assert.Positive(t, checked)
}

// crowded reports whether a star that stays on the chart is drawn close to at.
func crowded(sky astro.Sky, proj astro.ZenithProjection, stars []models.Star, missing set.Set[int], at image.Point) bool {
	for _, s := range stars {
		if missing.Contains(s.HIP) {
			continue
		}
		pos := sky.Position(s)
		if !pos.AboveHorizon() {
			continue
		}
		p := proj.Project(pos)
		if dx, dy := p.X-at.X, p.Y-at.Y; dx*dx+dy*dy <= 36 {
			return true
		}
	}
	return false
}

func pixel(img image.Image, at image.Point) color.RGBA {
	return color.RGBAModel.Convert(img.At(at.X, at.Y)).(color.RGBA)
}

type failingCanvases struct {
	render.Canvases
	fail atomic.Bool
}

func (f *failingCanvases) Canvas(size int, tag string) (*safe.Mat, error) {
	if f.fail.Load() {
		return nil, errors.New("no canvas available")
	}
	return f.Canvases.Canvas(size, tag)
}

func TestGenerateFailureKeepsPreviousCharts(t *testing.T) {
	g, repo, dir := newTestGenerator(t)
	fc := &failingCanvases{Canvases: g.canvases}
	g.canvases = fc
	ctx := context.Background()

	first, err := g.Generate(ctx, seoulRequest(t, 3.0, 3, 1))
	require.NoError(t, err)
	before, err := os.ReadFile(first.Problem.Path)
	require.NoError(t, err)

	fc.fail.Store(true)
	_, err = g.Generate(ctx, seoulRequest(t, 3.0, 3, 2))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindRender))

	after, err := os.ReadFile(first.Problem.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.FileExists(t, first.Answer.Path)
	assert.Same(t, first, repo.Latest())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{ProblemFile, AnswerFile}, names, "no partial files left behind")
}

func TestExportServiceSaveCharts(t *testing.T) {
	g, _, dir := newTestGenerator(t)
	res, err := g.Generate(context.Background(), seoulRequest(t, 3.0, 3, 3))
	require.NoError(t, err)

	es, err := NewExportService(dir, false, logger.NewNop())
	require.NoError(t, err)
	dest := t.TempDir()
	written, err := es.SaveCharts(context.Background(), res, dest)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dest, ProblemFile),
		filepath.Join(dest, AnswerFile),
	}, written)

	_, err = es.SaveCharts(context.Background(), nil, dest)
	assert.Error(t, err)
}

func TestExportServiceShutdown(t *testing.T) {
	t.Run("private directory is removed", func(t *testing.T) {
		es, err := NewExportService("", false, logger.NewNop())
		require.NoError(t, err)
		require.DirExists(t, es.OutputDir())

		es.Shutdown()
		_, err = os.Stat(es.OutputDir())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("configured directory keeps foreign files", func(t *testing.T) {
		g, _, dir := newTestGenerator(t)
		es, err := NewExportService(dir, false, logger.NewNop())
		require.NoError(t, err)
		g.OnWritten(es.Track)
		res, err := g.Generate(context.Background(), seoulRequest(t, 3.0, 3, 3))
		require.NoError(t, err)
		saved := filepath.Join(t.TempDir(), "copies")
		require.NoError(t, os.MkdirAll(saved, 0o755))
		copies, err := es.SaveCharts(context.Background(), res, saved)
		require.NoError(t, err)
		foreign := filepath.Join(dir, "thesis.docx")
		require.NoError(t, os.WriteFile(foreign, []byte("keep me"), 0o644))

		es.Shutdown()
		assert.FileExists(t, foreign)
		assert.NoFileExists(t, res.Problem.Path)
		assert.NoFileExists(t, res.Answer.Path)
		assert.FileExists(t, copies[0], "saved copies survive cleanup")
	})

	t.Run("keep leaves everything", func(t *testing.T) {
		dir := t.TempDir()
		chart := filepath.Join(dir, ProblemFile)
		require.NoError(t, os.WriteFile(chart, []byte("png"), 0o644))
		es, err := NewExportService(dir, true, logger.NewNop())
		require.NoError(t, err)
		es.Track(chart)

		es.Shutdown()
		assert.FileExists(t, chart)
	})
}
