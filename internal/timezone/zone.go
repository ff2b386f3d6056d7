package timezone

import (
	"fmt"
	"time"
)

// Load resolves a zone name. An empty name is the local zone.
func Load(zone string) (*time.Location, error) {
	if zone == "" || zone == "Local" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", zone, err)
	}
	return location, nil
}

// In keeps the wall clock of t and moves it into location.
func In(t time.Time, location *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), location)
}
