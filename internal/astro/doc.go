// Package astro converts equatorial star positions into what an observer sees:
// hour angle, altitude and azimuth above the local horizon, and their position on a
// zenith-centered chart.
package astro
