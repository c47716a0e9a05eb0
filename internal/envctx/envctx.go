// Package envctx resolves the environmental context a rule evaluation
// runs against: canonical weather and temperature from the upstream
// provider, local hour/weekday/season, and the cultural-calendar
// fields for Greater-China locations.
//
// Upstream observations are cached per rounded coordinate with a TTL,
// with concurrent fetches for the same coordinate coalesced; when the
// provider is down the resolver degrades to a fixed fallback and
// caches that too, so a failing upstream is not hammered every cycle.
package envctx

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/fangyikun/advertisement-opitimization/internal/region"
	"github.com/fangyikun/advertisement-opitimization/internal/weather"
)

// Context is the immutable snapshot a single rule evaluation sees.
type Context struct {
	// Weather is a canonical condition (weather.Sunny etc.).
	Weather string
	// TempC is nil when the temperature is unknown.
	TempC *float64
	IsDay bool

	// Hour and Weekday are local to the location's timezone.
	// Weekday runs 0=Monday through 6=Sunday.
	Hour    int
	Weekday int
	Season  string

	// Region is the cultural region cluster for the location.
	Region string
	City   string

	// ChinaSubregion and SolarTerms are populated only inside
	// Greater China; empty values make china_subregion/solar_term
	// conditions fail by design.
	ChinaSubregion string
	SolarTerms     []string

	ResolvedAt time.Time
}

// Location identifies where a context is resolved for.
type Location struct {
	Lat         float64
	Lon         float64
	Timezone    string
	City        string
	CountryCode string
}

const (
	// DefaultTTL is how long one upstream observation serves a
	// rounded coordinate.
	DefaultTTL = 300 * time.Second

	fallbackTempC = 20.0
)

type cacheKey struct {
	lat float64
	lon float64
}

type cacheEntry struct {
	obs       weather.Observation
	fetchedAt time.Time
}

// Resolver caches upstream observations and derives the rest of the
// context locally on every call.
type Resolver struct {
	client weather.Client
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

func NewResolver(client weather.Client) *Resolver {
	return &Resolver{
		client: client,
		ttl:    DefaultTTL,
		now:    time.Now,
		cache:  make(map[cacheKey]cacheEntry),
	}
}

// SetTTL overrides the cache TTL. Intended for tests.
func (r *Resolver) SetTTL(ttl time.Duration) { r.ttl = ttl }

// SetNow overrides the clock. Intended for tests.
func (r *Resolver) SetNow(now func() time.Time) { r.now = now }

func (r *Resolver) load(key cacheKey) (cacheEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[key]
	return entry, ok
}

func (r *Resolver) save(key cacheKey, entry cacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = entry
}

// Resolve produces the context for a location. It never returns an
// error: upstream failures degrade to a fixed fallback observation
// (sunny, 20°C) which is cached under the normal TTL.
func (r *Resolver) Resolve(ctx context.Context, loc Location) Context {
	obs := r.observe(ctx, loc.Lat, loc.Lon)

	now := r.localNow(loc.Timezone)
	c := Context{
		Weather:    obs.Condition(),
		IsDay:      obs.IsDay,
		Hour:       now.Hour(),
		Weekday:    (int(now.Weekday()) + 6) % 7,
		Season:     Season(now.Month(), loc.Lat),
		Region:     region.FromCountry(loc.CountryCode),
		City:       loc.City,
		ResolvedAt: now,
	}
	temp := obs.TempC
	c.TempC = &temp
	if region.IsGreaterChina(loc.CountryCode) {
		lat := loc.Lat
		c.ChinaSubregion = region.ChinaSubregion(loc.City, "", &lat)
		c.SolarTerms = region.ActiveSolarTerms(now)
	}
	return c
}

func (r *Resolver) localNow(timezone string) time.Time {
	now := r.now()
	if tz, err := time.LoadLocation(timezone); err == nil {
		return now.In(tz)
	}
	return now
}

// observe returns the cached observation for the rounded coordinate,
// fetching at most once per TTL window across all callers.
func (r *Resolver) observe(ctx context.Context, lat, lon float64) weather.Observation {
	key := cacheKey{lat: round2(lat), lon: round2(lon)}
	if entry, ok := r.load(key); ok && r.now().Sub(entry.fetchedAt) < r.ttl {
		return entry.obs
	}

	v, _, _ := r.group.Do(fmt.Sprintf("%.2f,%.2f", key.lat, key.lon), func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have
		// refreshed the entry while this one waited.
		if entry, ok := r.load(key); ok && r.now().Sub(entry.fetchedAt) < r.ttl {
			return entry.obs, nil
		}
		obs, err := r.client.FetchWeather(ctx, lat, lon)
		if err != nil {
			log.Warn().Err(err).
				Float64("lat", lat).Float64("lon", lon).
				Msg("Weather upstream unavailable, using fallback context")
			obs = fallbackObservation()
		}
		r.save(key, cacheEntry{obs: obs, fetchedAt: r.now()})
		return obs, nil
	})
	return v.(weather.Observation)
}

// fallbackObservation is the degraded reading used when the upstream
// cannot be reached: clear sky at a comfortable 20°C.
func fallbackObservation() weather.Observation {
	return weather.Observation{Code: 0, TempC: fallbackTempC, IsDay: true}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Season derives the meteorological season from the month, flipped for
// the southern hemisphere.
func Season(month time.Month, lat float64) string {
	northern := "winter"
	switch {
	case month >= time.March && month <= time.May:
		northern = "spring"
	case month >= time.June && month <= time.August:
		northern = "summer"
	case month >= time.September && month <= time.November:
		northern = "autumn"
	}
	if lat >= 0 {
		return northern
	}
	switch northern {
	case "winter":
		return "summer"
	case "spring":
		return "autumn"
	case "summer":
		return "winter"
	default:
		return "spring"
	}
}
