package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var timeLayouts = []string{"15:04", "15:04:05"}

// RequestInput holds raw form values as typed by the user.
type RequestInput struct {
	Date         string
	Time         string
	Timezone     string
	Latitude     string
	Longitude    string
	MaxMagnitude string
	Count        string
	Seed         string // optional; empty draws a random seed
}

// Request is a validated generation request.
type Request struct {
	Observer     Observer
	MaxMagnitude float64 // n: faintest magnitude eligible for removal
	Count        int     // k: number of stars to remove
	Seed         *uint64
}

// Limits bounds the values a request may carry.
type Limits struct {
	MaxPlotMag      float64
	DefaultTimezone string
}

// ParseRequest validates raw form input into a Request.
func ParseRequest(in RequestInput, lim Limits) (Request, error) {
	const op = "request.parse"

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = lim.DefaultTimezone
	}
	loc, err := LoadLocation(tz)
	if err != nil {
		return Request{}, invalidInput(op, "timezone", err)
	}
	t, err := ParseDateTime(in.Date, in.Time, loc)
	if err != nil {
		return Request{}, err
	}
	lat, err := parseFloat(op, "latitude", in.Latitude)
	if err != nil {
		return Request{}, err
	}
	lon, err := parseFloat(op, "longitude", in.Longitude)
	if err != nil {
		return Request{}, err
	}
	n, err := parseFloat(op, "max magnitude", in.MaxMagnitude)
	if err != nil {
		return Request{}, err
	}
	k, err := strconv.Atoi(strings.TrimSpace(in.Count))
	if err != nil {
		return Request{}, invalidInput(op, "count", fmt.Errorf("count %q is not a whole number", in.Count))
	}
	req := Request{
		Observer:     Observer{Time: t, Lat: lat, Lon: lon},
		MaxMagnitude: n,
		Count:        k,
	}
	if seed := strings.TrimSpace(in.Seed); seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return Request{}, invalidInput(op, "seed", fmt.Errorf("seed %q must be a non-negative whole number", in.Seed))
		}
		req.Seed = &v
	}
	if err := req.Validate(lim); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks ranges of an already typed request.
func (r Request) Validate(lim Limits) error {
	const op = "request.validate"
	switch {
	case r.Observer.Time.IsZero():
		return invalidInput(op, "date", errors.New("date and time are required"))
	case !within(r.Observer.Lat, -90, 90):
		return invalidInput(op, "latitude", fmt.Errorf("latitude %.6f must be within [-90, 90]", r.Observer.Lat))
	case !within(r.Observer.Lon, -180, 180):
		return invalidInput(op, "longitude", fmt.Errorf("longitude %.6f must be within [-180, 180]", r.Observer.Lon))
	case !within(r.MaxMagnitude, 0, lim.MaxPlotMag):
		return invalidInput(op, "max magnitude", fmt.Errorf("max magnitude %.1f must be within [0, %.1f]", r.MaxMagnitude, lim.MaxPlotMag))
	case r.Count < 1:
		return invalidInput(op, "count", fmt.Errorf("count %d must be at least 1", r.Count))
	}
	return nil
}

// ParseDateTime combines a date and a wall-clock time in loc.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	const op = "request.datetime"
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, invalidInput(op, "date", fmt.Errorf("date %q must look like %s", date, DateLayout))
	}
	var c time.Time
	clock = strings.TrimSpace(clock)
	for _, layout := range timeLayouts {
		c, err = time.Parse(layout, clock)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, invalidInput(op, "time", fmt.Errorf("time %q must look like HH:MM or HH:MM:SS", clock))
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}

// LoadLocation resolves an IANA timezone name.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	return loc, nil
}

func parseFloat(op, field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, invalidInput(op, field, fmt.Errorf("%s %q is not a number", field, s))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalidInput(op, field, fmt.Errorf("%s %q is not a finite number", field, s))
	}
	return v, nil
}

// within is false for NaN.
func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
