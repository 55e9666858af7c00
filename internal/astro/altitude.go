package astro

import (
	"math"

	"missingstar/internal/models"
)

const (
	deg = math.Pi / 180
	rad = 180 / math.Pi
)

// Altitude returns the altitude in degrees of a body at declination decDeg and hour
// angle haDeg for an observer at latitude latDeg.
func Altitude(latDeg, decDeg, haDeg float64) float64 {
	lat := latDeg * deg
	dec := decDeg * deg
	ha := haDeg * deg

	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(ha)
	sinAlt = clamp(sinAlt, -1, 1)

	return math.Asin(sinAlt) * rad
}

// Azimuth returns the azimuth in degrees, measured from north through east, in [0, 360).
func Azimuth(latDeg, decDeg, haDeg float64) float64 {
	lat := latDeg * deg
	dec := decDeg * deg
	ha := haDeg * deg

	y := -math.Cos(dec) * math.Sin(ha)
	x := math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Cos(ha)*math.Sin(lat)
	return normalize(math.Atan2(y, x) * rad)
}

// HourAngle returns (lst - ra) reduced to [0, 360).
func HourAngle(lstDeg, raDeg float64) float64 {
	return normalize(lstDeg - raDeg)
}

// Position is a body's place in the local sky.
type Position struct {
	Altitude float64
	Azimuth  float64
}

// AboveHorizon reports whether the body is strictly above the horizon.
func (p Position) AboveHorizon() bool {
	return p.Altitude > 0
}

// Horizontal computes the local position of star for an observer whose local
// sidereal time is lstDeg.
func Horizontal(lat, lstDeg float64, star models.Star) Position {
	ha := HourAngle(lstDeg, star.RA)
	return Position{
		Altitude: Altitude(lat, star.Dec, ha),
		Azimuth:  Azimuth(lat, star.Dec, ha),
	}
}

// Sky precomputes the sidereal time of an observer so many stars can be placed cheaply.
type Sky struct {
	Observer models.Observer
	LST      float64
}

// NewSky creates a Sky for the observer.
func NewSky(o models.Observer) Sky {
	return Sky{Observer: o, LST: LocalSiderealTime(o.Time, o.Lon)}
}

// Position returns where star appears for this sky.
func (s Sky) Position(star models.Star) Position {
	return Horizontal(s.Observer.Lat, s.LST, star)
}

// Altitude returns the star's altitude in degrees.
func (s Sky) Altitude(star models.Star) float64 {
	return Altitude(s.Observer.Lat, star.Dec, HourAngle(s.LST, star.RA))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func normalize(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
