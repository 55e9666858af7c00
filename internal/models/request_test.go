package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = Limits{MaxPlotMag: 4.0, DefaultTimezone: "Asia/Seoul"}

func validInput() RequestInput {
	return RequestInput{
		Date:         "2025-01-15",
		Time:         "21:30",
		Timezone:     "",
		Latitude:     "37.5665",
		Longitude:    "126.9780",
		MaxMagnitude: "3.0",
		Count:        "10",
	}
}

func TestParseRequest(t *testing.T) {
	t.Run("valid input uses default timezone", func(t *testing.T) {
		req, err := ParseRequest(validInput(), testLimits)
		require.NoError(t, err)
		assert.Equal(t, "Asia/Seoul", req.Observer.Time.Location().String())
		assert.Equal(t, 21, req.Observer.Time.Hour())
		assert.Equal(t, 30, req.Observer.Time.Minute())
		assert.InDelta(t, 37.5665, req.Observer.Lat, 1e-9)
		assert.InDelta(t, 126.978, req.Observer.Lon, 1e-9)
		assert.Equal(t, 3.0, req.MaxMagnitude)
		assert.Equal(t, 10, req.Count)
		_, offset := req.Observer.Time.Zone()
		assert.Equal(t, 9*3600, offset)
	})

	t.Run("seconds are accepted", func(t *testing.T) {
		in := validInput()
		in.Time = "05:06:07"
		in.Timezone = "UTC"
		req, err := ParseRequest(in, testLimits)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 15, 5, 6, 7, 0, time.UTC), req.Observer.Time)
	})

	t.Run("seed is optional", func(t *testing.T) {
		req, err := ParseRequest(validInput(), testLimits)
		require.NoError(t, err)
		assert.Nil(t, req.Seed)

		in := validInput()
		in.Seed = " 12345 "
		req, err = ParseRequest(in, testLimits)
		require.NoError(t, err)
		require.NotNil(t, req.Seed)
		assert.Equal(t, uint64(12345), *req.Seed)
	})

	cases := []struct {
		name  string
		edit  func(*RequestInput)
		field string
	}{
		{"malformed date", func(in *RequestInput) { in.Date = "15/01/2025" }, "date"},
		{"malformed time", func(in *RequestInput) { in.Time = "9pm" }, "time"},
		{"unknown timezone", func(in *RequestInput) { in.Timezone = "Mars/Olympus" }, "timezone"},
		{"latitude not a number", func(in *RequestInput) { in.Latitude = "north" }, "latitude"},
		{"latitude out of range", func(in *RequestInput) { in.Latitude = "91" }, "latitude"},
		{"longitude out of range", func(in *RequestInput) { in.Longitude = "-181" }, "longitude"},
		{"magnitude above plot limit", func(in *RequestInput) { in.MaxMagnitude = "4.5" }, "max magnitude"},
		{"negative magnitude", func(in *RequestInput) { in.MaxMagnitude = "-1" }, "max magnitude"},
		{"latitude NaN", func(in *RequestInput) { in.Latitude = "NaN" }, "latitude"},
		{"latitude lowercase nan", func(in *RequestInput) { in.Latitude = "nan" }, "latitude"},
		{"longitude infinite", func(in *RequestInput) { in.Longitude = "Inf" }, "longitude"},
		{"magnitude NaN", func(in *RequestInput) { in.MaxMagnitude = "NaN" }, "max magnitude"},
		{"magnitude negative infinity", func(in *RequestInput) { in.MaxMagnitude = "-Inf" }, "max magnitude"},
		{"zero count", func(in *RequestInput) { in.Count = "0" }, "count"},
		{"fractional count", func(in *RequestInput) { in.Count = "2.5" }, "count"},
		{"negative seed", func(in *RequestInput) { in.Seed = "-3" }, "seed"},
		{"seed not a number", func(in *RequestInput) { in.Seed = "lucky" }, "seed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, err := ParseRequest(in, testLimits)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidInput))
			var oe *OpError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, tc.field, oe.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestValidateRejectsNonFiniteValues(t *testing.T) {
	req, err := ParseRequest(validInput(), testLimits)
	require.NoError(t, err)

	tests := []struct {
		name string
		edit func(*Request)
	}{
		{"latitude", func(r *Request) { r.Observer.Lat = math.NaN() }},
		{"longitude", func(r *Request) { r.Observer.Lon = math.Inf(1) }},
		{"max magnitude", func(r *Request) { r.MaxMagnitude = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := req
			tt.edit(&r)
			err := r.Validate(testLimits)
			assert.True(t, IsKind(err, KindInvalidInput))
		})
	}
}

func TestStarLabel(t *testing.T) {
	s := Star{HIP: 32349, Name: "Sirius", Magnitude: -1.46}
	assert.Equal(t, "HIP 32349 | mag=-1.46", s.Label())
	assert.Equal(t, "HIP 32349 | mag=-1.46 (Sirius)", s.String())
	assert.True(t, s.HasHIP())
	assert.False(t, Star{}.HasHIP())
	assert.Equal(t, []int{32349}, HIPs([]Star{s, {Name: "anonymous"}}))
}

func TestResultRepository(t *testing.T) {
	repo := NewResultRepository()
	assert.Nil(t, repo.Latest())

	for i := 0; i < 12; i++ {
		repo.Add(&Result{Candidates: i, Duration: time.Second, Problem: ChartImage{FileSize: 10}, Answer: ChartImage{FileSize: 5}})
	}
	assert.Len(t, repo.History(), 10)
	assert.Equal(t, 11, repo.Latest().Candidates)
	assert.Equal(t, 2, repo.History()[0].Candidates)

	stats := repo.Stats()
	assert.Equal(t, 10, stats.Generated)
	assert.Equal(t, int64(150), stats.TotalFileSize)
	assert.Equal(t, time.Second, stats.AverageDuration)

	repo.Shutdown()
	assert.Nil(t, repo.Latest())
}
