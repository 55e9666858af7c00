package astro

import (
	"image"
	"math"
)

// ZenithProjection maps altitude/azimuth onto a disc with the zenith at Center and the
// horizon at Radius pixels. North is up and east is to the left, as seen looking up.
// The mapping is stereographic.
type ZenithProjection struct {
	Center image.Point
	Radius float64
}

// NewZenithProjection fits the horizon circle into a size x size image, shrunk by scale.
func NewZenithProjection(size int, scale float64) ZenithProjection {
	return ZenithProjection{
		Center: image.Pt(size/2, size/2),
		Radius: float64(size) / 2 * scale,
	}
}

// Project returns the image point for pos. Points below the horizon fall outside the
// horizon circle.
func (p ZenithProjection) Project(pos Position) image.Point {
	zenithDistance := (90 - pos.Altitude) * deg
	r := math.Tan(zenithDistance/2) * p.Radius
	az := pos.Azimuth * deg
	x := float64(p.Center.X) - r*math.Sin(az)
	y := float64(p.Center.Y) - r*math.Cos(az)
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// Cardinal returns the horizon point for an azimuth in degrees.
func (p ZenithProjection) Cardinal(azimuth float64) image.Point {
	return p.Project(Position{Altitude: 0, Azimuth: azimuth})
}
