// Package render rasterizes zenith star charts into transparent PNG images.
package render

import (
	"fmt"
	"image"
	"math"
	"os"

	"missingstar/internal/astro"
	"missingstar/internal/models"
	"missingstar/internal/opencv/safe"
)

// Canvases hands out drawing surfaces. The memory manager implements it.
type Canvases interface {
	Canvas(size int, tag string) (*safe.Mat, error)
	Release(mat *safe.Mat)
}

// Options size a chart.
type Options struct {
	Size         int
	Scale        float64
	MaxMagnitude float64
	Style        Style
}

// Chart draws one zenith view of the sky.
type Chart struct {
	canvas   *safe.Mat
	canvases Canvases
	proj     astro.ZenithProjection
	sky      astro.Sky
	opts     Options
	unit     float64
	plotted  int
}

// NewChart prepares a chart for sky with the sky disc painted.
func NewChart(canvases Canvases, sky astro.Sky, opts Options, tag string) (*Chart, error) {
	const op = "render.chart"
	if err := safe.ValidateDimensions(opts.Size, opts.Size, op); err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindRender, Err: err}
	}
	if opts.Scale <= 0 || opts.Scale > 1 {
		return nil, &models.OpError{Op: op, Kind: models.KindRender, Err: fmt.Errorf("scale %.2f must be within (0, 1]", opts.Scale)}
	}
	if opts.Style.MarkerScale == 0 {
		opts.Style = DefaultStyle
	}
	canvas, err := canvases.Canvas(opts.Size, tag)
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindRender, Err: err}
	}
	c := &Chart{
		canvas:   canvas,
		canvases: canvases,
		proj:     astro.NewZenithProjection(opts.Size, opts.Scale),
		sky:      sky,
		opts:     opts,
		unit:     float64(opts.Size) / ReferenceSize,
	}
	if err := canvas.Circle(c.proj.Center, int(c.proj.Radius), opts.Style.Sky, -1); err != nil {
		c.Close()
		return nil, &models.OpError{Op: op, Kind: models.KindRender, Err: err}
	}
	return c, nil
}

// Plotted is the number of star markers drawn so far.
func (c *Chart) Plotted() int {
	return c.plotted
}

// Stars plots every star above the horizon no fainter than the chart's magnitude limit.
func (c *Chart) Stars(stars []models.Star) error {
	for _, s := range stars {
		if s.Magnitude > c.opts.MaxMagnitude {
			continue
		}
		pos := c.sky.Position(s)
		if !pos.AboveHorizon() {
			continue
		}
		r := MarkerRadius(s.Magnitude, c.opts.MaxMagnitude, c.unit, c.opts.Style.MarkerScale)
		if err := c.canvas.Circle(c.proj.Project(pos), r, c.opts.Style.Star, -1); err != nil {
			return c.fail(err)
		}
		c.plotted++
	}
	return nil
}

// Highlight draws stars with marker m on top of anything already plotted. The dot is
// never smaller than the star's regular marker.
func (c *Chart) Highlight(stars []models.Star, m Marker) error {
	for _, s := range stars {
		pos := c.sky.Position(s)
		if !pos.AboveHorizon() {
			continue
		}
		base := MarkerRadius(s.Magnitude, c.opts.MaxMagnitude, c.unit, c.opts.Style.MarkerScale)
		r := int(math.Max(float64(base)+4*c.unit, m.Size*c.unit*1.5))
		if err := c.canvas.Circle(c.proj.Project(pos), r, m.Color, -1); err != nil {
			return c.fail(err)
		}
		c.plotted++
	}
	return nil
}

// Constellations draws figure segments whose ends are both known and above the horizon.
func (c *Chart) Constellations(lines []models.ConstellationLine, stars []models.Star) error {
	index := make(map[int]models.Star, len(stars))
	for _, s := range stars {
		if s.HasHIP() {
			index[s.HIP] = s
		}
	}
	width := c.width(c.opts.Style.LineWidth)
	for _, l := range lines {
		from, ok1 := index[l.From]
		to, ok2 := index[l.To]
		if !ok1 || !ok2 {
			continue
		}
		p1, p2 := c.sky.Position(from), c.sky.Position(to)
		if !p1.AboveHorizon() || !p2.AboveHorizon() {
			continue
		}
		if err := c.canvas.Line(c.proj.Project(p1), c.proj.Project(p2), c.opts.Style.Line, width); err != nil {
			return c.fail(err)
		}
	}
	return nil
}

// Horizon outlines the horizon and labels the cardinal directions just outside it.
func (c *Chart) Horizon() error {
	st := c.opts.Style
	if err := c.canvas.Circle(c.proj.Center, int(c.proj.Radius), st.Horizon, c.width(st.LineWidth*1.5)); err != nil {
		return c.fail(err)
	}
	offset := 45 * c.unit
	for _, cp := range []struct {
		label string
		az    float64
	}{{"N", 0}, {"E", 90}, {"S", 180}, {"W", 270}} {
		edge := c.proj.Cardinal(cp.az)
		dx := float64(edge.X - c.proj.Center.X)
		dy := float64(edge.Y - c.proj.Center.Y)
		at := image.Pt(
			edge.X+int(math.Round(dx/c.proj.Radius*offset)),
			edge.Y+int(math.Round(dy/c.proj.Radius*offset)),
		)
		if err := c.canvas.Text(cp.label, at, 2.2*c.unit, st.Label, c.width(st.LineWidth)); err != nil {
			return c.fail(err)
		}
	}
	return nil
}

// Export writes the chart to path as PNG and returns it decoded for display.
func (c *Chart) Export(path string) (models.ChartImage, error) {
	const op = "render.export"
	if err := c.canvas.WriteFile(path); err != nil {
		return models.ChartImage{}, &models.OpError{Op: op, Kind: models.KindRender, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return models.ChartImage{}, &models.OpError{Op: op, Kind: models.KindRender, Err: err}
	}
	img, err := c.canvas.ToImage()
	if err != nil {
		return models.ChartImage{}, &models.OpError{Op: op, Kind: models.KindRender, Err: err}
	}
	return models.ChartImage{
		Path:     path,
		Image:    img,
		Width:    c.canvas.Cols(),
		Height:   c.canvas.Rows(),
		FileSize: info.Size(),
	}, nil
}

// Close returns the canvas. The chart is unusable afterwards.
func (c *Chart) Close() {
	if c.canvas != nil {
		c.canvases.Release(c.canvas)
		c.canvas = nil
	}
}

func (c *Chart) width(w float64) int {
	return int(math.Max(1, math.Round(w*c.unit)))
}

func (c *Chart) fail(err error) error {
	return &models.OpError{Op: "render.draw", Kind: models.KindRender, Err: err}
}
