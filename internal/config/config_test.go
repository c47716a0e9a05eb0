package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.StartupDelay)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADSCHED_TICK_INTERVAL", "15s")
	t.Setenv("ADSCHED_DB_PATH", "/tmp/scheduler.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.TickInterval)
	assert.Equal(t, "/tmp/scheduler.db", cfg.DatabasePath)
}

func TestLoadSeed(t *testing.T) {
	seedYAML := `
stores:
  - id: store_001
    name: Rundle Mall
    city: Adelaide
    country_code: AU
    latitude: -34.9285
    longitude: 138.6007
    timezone: Australia/Adelaide
    is_active: true
    opening_hours:
      mon: "09:00-17:00"
rules:
  - name: cloudy coffee
    store_id: "*"
    priority: 1
    conditions:
      - type: weather
        operator: "=="
        value: cloudy
    action:
      target_id: coffee_ad
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Stores, 1)
	require.Len(t, seed.Rules, 1)
	assert.Equal(t, "store_001", seed.Stores[0].ID)
	assert.Equal(t, "09:00-17:00", seed.Stores[0].OpeningHours["mon"])
	assert.Equal(t, rules.KindWeather, seed.Rules[0].Conditions[0].Kind)
	assert.Equal(t, "coffee_ad", seed.Rules[0].Action.TargetID)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
