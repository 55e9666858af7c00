package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// LocalSiderealTime returns the local mean sidereal time in degrees [0, 360) at t for
// an observer at east longitude lonDeg.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	jd := julian.TimeToJD(t.UTC())
	gmst := sidereal.Mean(jd).Angle().Deg()
	return normalize(gmst + lonDeg)
}
