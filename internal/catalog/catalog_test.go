package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missingstar/internal/models"
)

const testStars = `hip,name,ra,dec,magnitude
32349,Sirius,101.2872,-16.7161,-1.46
91262,Vega,279.2347,38.7837,0.03
,Nova,10.0,20.0,1.50
677,Alpheratz,2.0969,29.0904,2.07
11767,Polaris,37.9545,89.2641,1.98
`

func loadTest(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(context.Background(), WithStars(strings.NewReader(testStars)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadEmbedded(t *testing.T) {
	ctx := context.Background()
	c, err := Load(ctx)
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 491, n)
	assert.Equal(t, embeddedStars, c.Source())

	faint, err := c.Find(ctx, MagnitudeAtMost(4.0))
	require.NoError(t, err)
	assert.Len(t, faint, n, "embedded stars are all at magnitude 4.0 or brighter")
	withHIP, err := c.Find(ctx, HasHIP())
	require.NoError(t, err)
	assert.Len(t, withHIP, n-4, "resolved companions carry no hip")

	lines, err := c.Lines(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, lines)

	stars, err := c.Find(ctx)
	require.NoError(t, err)
	byHIP := make(map[int]bool)
	for _, s := range stars {
		byHIP[s.HIP] = true
	}
	for _, l := range lines {
		assert.True(t, byHIP[l.From], "line %s references unknown %d", l.Constellation, l.From)
		assert.True(t, byHIP[l.To], "line %s references unknown %d", l.Constellation, l.To)
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	c := loadTest(t)

	t.Run("no filters returns everything brightest first", func(t *testing.T) {
		stars, err := c.Find(ctx)
		require.NoError(t, err)
		require.Len(t, stars, 5)
		assert.Equal(t, "Sirius", stars[0].Name)
		assert.Equal(t, "Alpheratz", stars[4].Name)
		for i := 1; i < len(stars); i++ {
			assert.LessOrEqual(t, stars[i-1].Magnitude, stars[i].Magnitude)
		}
	})

	t.Run("magnitude limit", func(t *testing.T) {
		stars, err := c.Find(ctx, MagnitudeAtMost(1.5))
		require.NoError(t, err)
		assert.Equal(t, []string{"Sirius", "Vega", "Nova"}, names(stars))
	})

	t.Run("null hip is kept as zero", func(t *testing.T) {
		stars, err := c.Find(ctx, MagnitudeAtMost(1.5))
		require.NoError(t, err)
		assert.False(t, stars[2].HasHIP())
	})

	t.Run("has hip", func(t *testing.T) {
		stars, err := c.Find(ctx, HasHIP(), MagnitudeAtMost(1.5))
		require.NoError(t, err)
		assert.Equal(t, []string{"Sirius", "Vega"}, names(stars))
	})

	t.Run("exclude keeps null hip", func(t *testing.T) {
		stars, err := c.Find(ctx, ExcludeHIP(32349, 677))
		require.NoError(t, err)
		assert.Equal(t, []string{"Vega", "Nova", "Polaris"}, names(stars))
	})

	t.Run("empty exclude is a no-op", func(t *testing.T) {
		stars, err := c.Find(ctx, ExcludeHIP())
		require.NoError(t, err)
		assert.Len(t, stars, 5)
	})

	t.Run("only", func(t *testing.T) {
		stars, err := c.Find(ctx, OnlyHIP(677, 91262))
		require.NoError(t, err)
		assert.Equal(t, []int{91262, 677}, models.HIPs(stars))
	})

	t.Run("empty only matches nothing", func(t *testing.T) {
		stars, err := c.Find(ctx, OnlyHIP())
		require.NoError(t, err)
		assert.Empty(t, stars)
	})
}

func TestLoadRejectsBadCSV(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"wrong header", "id,name,ra,dec,mag\n1,a,1,1,1\n"},
		{"bad magnitude", "hip,name,ra,dec,magnitude\n1,a,1,1,bright\n"},
		{"dec out of range", "hip,name,ra,dec,magnitude\n1,a,1,95,1\n"},
		{"ra not a number", "hip,name,ra,dec,magnitude\n1,a,NaN,1,1\n"},
		{"negative hip", "hip,name,ra,dec,magnitude\n-4,a,1,1,1\n"},
		{"missing column", "hip,name,ra,dec,magnitude\n1,a,1,1\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), WithStars(strings.NewReader(tc.data)))
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindCatalog))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), WithStarsFile("/nonexistent/stars.csv"))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindCatalog))
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(WithStarsFile("/nonexistent/stars.csv"))
	_, err := cache.Get(ctx)
	require.Error(t, err)

	cache = NewCache()
	defer cache.Shutdown()
	a, err := cache.Get(ctx)
	require.NoError(t, err)
	b, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func names(stars []models.Star) []string {
	out := make([]string, len(stars))
	for i, s := range stars {
		out[i] = s.Name
	}
	return out
}
