package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "scheduler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func sampleRule(id string, priority int) rules.Rule {
	return rules.Rule{
		ID:       id,
		StoreID:  "*",
		Name:     "rule " + id,
		Priority: priority,
		Conditions: []rules.Condition{
			{Kind: rules.KindWeather, Operator: rules.OperatorEquals, Value: "rain"},
		},
		Action: rules.Action{TargetID: id + "_ad"},
	}
}

func TestRuleRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.CreateRule(ctx, sampleRule("r1", 5)))
			require.NoError(t, backend.CreateRule(ctx, sampleRule("r2", 1)))

			listed, err := backend.ListRules(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 2)
			assert.Equal(t, "r1", listed[0].ID, "insertion order must be preserved")
			assert.Equal(t, rules.KindWeather, listed[0].Conditions[0].Kind)
			assert.Equal(t, "r1_ad", listed[0].Action.TargetID)

			updated := sampleRule("r1", 9)
			updated.Name = "renamed"
			require.NoError(t, backend.UpdateRule(ctx, updated))
			listed, err = backend.ListRules(ctx)
			require.NoError(t, err)
			assert.Equal(t, "renamed", listed[0].Name)
			assert.Equal(t, 9, listed[0].Priority)

			require.NoError(t, backend.DeleteRule(ctx, "r2"))
			listed, err = backend.ListRules(ctx)
			require.NoError(t, err)
			assert.Len(t, listed, 1)

			assert.Error(t, backend.DeleteRule(ctx, "missing"))
			assert.Error(t, backend.UpdateRule(ctx, sampleRule("missing", 1)))
		})
	}
}

func TestRulesForScope(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			wildcard := sampleRule("w", 1)
			scoped := sampleRule("s", 2)
			scoped.StoreID = "store_001"
			other := sampleRule("o", 3)
			other.StoreID = "store_002"
			require.NoError(t, backend.ReplaceRules(ctx, []rules.Rule{wildcard, scoped, other}))

			got, err := backend.RulesForScope(ctx, "store_001")
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.ElementsMatch(t, []string{"w", "s"}, ids)
		})
	}
}

func TestReplaceRulesResetsOrdering(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.CreateRule(ctx, sampleRule("old", 1)))
			require.NoError(t, backend.ReplaceRules(ctx, []rules.Rule{
				sampleRule("b", 2), sampleRule("a", 2),
			}))
			listed, err := backend.ListRules(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 2)
			assert.Equal(t, "b", listed[0].ID, "replacement order becomes the tie-break order")
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			n, err := backend.CountStores(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			active := store.Store{
				ID: "store_001", Name: "Rundle Mall", City: "Adelaide", CountryCode: "AU",
				Latitude: -34.9285, Longitude: 138.6007, Timezone: "Australia/Adelaide",
				OpeningHours: store.OpeningHours{"mon": "09:00-17:00"},
				IsActive:     true,
			}
			inactive := store.Store{ID: "store_002", Name: "Closed Site", IsActive: false}
			require.NoError(t, backend.UpsertStore(ctx, active))
			require.NoError(t, backend.UpsertStore(ctx, inactive))

			stores, err := backend.ActiveStores(ctx)
			require.NoError(t, err)
			require.Len(t, stores, 1, "inactive stores are filtered out")
			assert.Equal(t, "store_001", stores[0].ID)
			assert.Equal(t, "09:00-17:00", stores[0].OpeningHours["mon"])
			assert.Equal(t, -34.9285, stores[0].Latitude)

			// Upsert with the same id overwrites.
			active.Name = "Rundle Mall East"
			require.NoError(t, backend.UpsertStore(ctx, active))
			stores, err = backend.ActiveStores(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Rundle Mall East", stores[0].Name)

			n, err = backend.CountStores(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestVocabularyRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.PersistVocabulary(ctx, "weather", "回南天", "fog"))
			require.NoError(t, backend.PersistVocabulary(ctx, "action", "雨衣", "yuyi_ad"))

			wx, err := backend.LookupVocabulary(ctx, "weather")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"回南天": "fog"}, wx)

			// Re-persisting the same keyword updates the mapping.
			require.NoError(t, backend.PersistVocabulary(ctx, "weather", "回南天", "rain"))
			wx, err = backend.LookupVocabulary(ctx, "weather")
			require.NoError(t, err)
			assert.Equal(t, "rain", wx["回南天"])

			actions, err := backend.LookupVocabulary(ctx, "action")
			require.NoError(t, err)
			assert.Equal(t, "yuyi_ad", actions["雨衣"])
		})
	}
}
