package services

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"missingstar/internal/astro"
	"missingstar/internal/models"
)

// Candidates returns the stars that may be removed from the chart: they carry a HIP
// identifier, are no fainter than both n and maxPlotMag, and stand above the horizon.
func Candidates(sky astro.Sky, stars []models.Star, n, maxPlotMag float64) []models.Star {
	limit := math.Min(n, maxPlotMag)
	var out []models.Star
	for _, s := range stars {
		if !s.HasHIP() || s.Magnitude > limit {
			continue
		}
		if !(sky.Altitude(s) > 0) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Sample picks k distinct candidates uniformly at random, returned brightest first.
func Sample(rng *rand.Rand, candidates []models.Star, k int) ([]models.Star, error) {
	const op = "services.sample"
	if k < 1 {
		return nil, &models.OpError{Op: op, Kind: models.KindInvalidInput, Field: "count", Err: fmt.Errorf("count %d must be at least 1", k)}
	}
	if len(candidates) < k {
		return nil, &models.OpError{
			Op:   op,
			Kind: models.KindInsufficientStars,
			Err: fmt.Errorf("%w: only %d stars match the conditions but %d were requested; raise the magnitude threshold or lower the count",
				models.ErrInsufficientStars, len(candidates), k),
		}
	}
	picked := make([]models.Star, 0, k)
	for _, i := range rng.Perm(len(candidates))[:k] {
		picked = append(picked, candidates[i])
	}
	slices.SortFunc(picked, func(a, b models.Star) int {
		return cmp.Or(cmp.Compare(a.Magnitude, b.Magnitude), cmp.Compare(a.HIP, b.HIP))
	})
	return picked, nil
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
