package models

import (
	"fmt"
	"time"
)

// Observer is a point on Earth at an instant.
type Observer struct {
	Time time.Time
	Lat  float64 // degrees, north positive
	Lon  float64 // degrees, east positive
}

func (o Observer) String() string {
	return fmt.Sprintf("%s @ %.4f,%.4f", o.Time.Format("2006-01-02 15:04:05 MST"), o.Lat, o.Lon)
}
