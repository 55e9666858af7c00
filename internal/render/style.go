package render

import (
	"image/color"
	"math"
)

// ReferenceSize is the resolution marker and font sizes are tuned for.
const ReferenceSize = 3000

// Style holds chart colors and size multipliers.
type Style struct {
	Sky         color.RGBA
	Star        color.RGBA
	Line        color.RGBA
	Horizon     color.RGBA
	Label       color.RGBA
	MarkerScale float64
	LineWidth   float64
}

// Marker overrides the look of specific stars.
type Marker struct {
	Color color.RGBA
	Size  float64
}

var DefaultStyle = Style{
	Sky:         color.RGBA{R: 12, G: 18, B: 40, A: 255},
	Star:        color.RGBA{R: 255, G: 250, B: 236, A: 255},
	Line:        color.RGBA{R: 96, G: 140, B: 210, A: 255},
	Horizon:     color.RGBA{R: 200, G: 200, B: 210, A: 255},
	Label:       color.RGBA{R: 230, G: 230, B: 240, A: 255},
	MarkerScale: 1,
	LineWidth:   3,
}

// MissingMarker highlights removed stars on the answer chart.
var MissingMarker = Marker{Color: color.RGBA{R: 230, G: 30, B: 30, A: 255}, Size: 18}

// MarkerRadius returns the dot radius in pixels for a star of magnitude mag. Brighter
// stars get larger dots; stars at maxMag get the smallest one.
func MarkerRadius(mag, maxMag, unit, scale float64) int {
	r := (2 + 3.2*math.Max(0, maxMag-mag)) * unit * scale
	return int(math.Max(1, math.Round(r)))
}
