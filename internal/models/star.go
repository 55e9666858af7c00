package models

import "fmt"

// Star is a catalog entry. HIP is zero when the star has no Hipparcos identifier.
type Star struct {
	HIP       int
	Name      string
	RA        float64 // degrees, J2000
	Dec       float64 // degrees, J2000
	Magnitude float64
}

// HasHIP reports whether the star carries a Hipparcos identifier.
func (s Star) HasHIP() bool {
	return s.HIP > 0
}

// Label is the line shown in the removed-star list.
func (s Star) Label() string {
	return fmt.Sprintf("HIP %d | mag=%.2f", s.HIP, s.Magnitude)
}

func (s Star) String() string {
	if s.Name != "" {
		return fmt.Sprintf("%s (%s)", s.Label(), s.Name)
	}
	return s.Label()
}

// HIPs returns the identifiers of stars, skipping those without one.
func HIPs(stars []Star) []int {
	ids := make([]int, 0, len(stars))
	for _, s := range stars {
		if s.HasHIP() {
			ids = append(ids, s.HIP)
		}
	}
	return ids
}

// ConstellationLine is one segment of a constellation figure.
type ConstellationLine struct {
	Constellation string
	From          int // HIP
	To            int // HIP
}
