// Package store models the physical displays ("stores") the scheduler
// decides content for, including the opening-hours gate that forces
// default content outside business hours.
package store

import (
	"strings"
	"time"
)

// OpeningHours maps lowercase three-letter day names to "HH:MM-HH:MM"
// windows, e.g. {"mon": "09:00-17:00"}. A missing day means closed is
// not implied; see IsOpenNow.
type OpeningHours map[string]string

// Store is one display site.
type Store struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	City         string       `json:"city" yaml:"city"`
	CountryCode  string       `json:"country_code" yaml:"country_code"`
	Latitude     float64      `json:"latitude" yaml:"latitude"`
	Longitude    float64      `json:"longitude" yaml:"longitude"`
	SignID       string       `json:"sign_id,omitempty" yaml:"sign_id,omitempty"`
	OpeningHours OpeningHours `json:"opening_hours,omitempty" yaml:"opening_hours,omitempty"`
	Timezone     string       `json:"timezone" yaml:"timezone"`
	IsActive     bool         `json:"is_active" yaml:"is_active"`
}

var dayKeys = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// IsOpenNow reports whether a store with the given hours is open at
// the given instant, evaluated in the store's timezone. The predicate
// fails open: no hours data, an unknown timezone, a missing day entry
// or a malformed window all mean "open", so a data problem can never
// blank a sign during business hours.
func IsOpenNow(hours OpeningHours, timezone string, now time.Time) bool {
	if len(hours) == 0 {
		return true
	}
	if loc, err := time.LoadLocation(timezone); err == nil {
		now = now.In(loc)
	}
	// time.Weekday starts at Sunday; the hours table starts at Monday.
	day := dayKeys[(int(now.Weekday())+6)%7]
	window, ok := hours[day]
	if !ok {
		window, ok = hours[strings.ToUpper(day[:1])+day[1:]]
	}
	if !ok || window == "" {
		return true
	}
	parts := strings.Split(window, "-")
	if len(parts) != 2 {
		return true
	}
	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])
	current := now.Format("15:04")
	return start <= current && current <= end
}
