// Package storage persists the engine's three record types — rules,
// stores and vocabulary — behind narrow interfaces. A SQLite
// implementation backs normal operation; the in-memory implementation
// keeps the engine functional when no database is configured.
package storage

import (
	"context"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
)

// RuleRepository is the rule persistence boundary. The engine only
// ever reads snapshots; writes come from the authoring layer.
type RuleRepository interface {
	// ListRules returns every rule in unspecified order.
	ListRules(ctx context.Context) ([]rules.Rule, error)
	// RulesForScope returns the rules applying to one store:
	// store-specific plus wildcard-scoped.
	RulesForScope(ctx context.Context, storeID string) ([]rules.Rule, error)
	CreateRule(ctx context.Context, r rules.Rule) error
	UpdateRule(ctx context.Context, r rules.Rule) error
	DeleteRule(ctx context.Context, id string) error
	// ReplaceRules swaps the whole rule set, used by seed/reset.
	ReplaceRules(ctx context.Context, rs []rules.Rule) error
}

// StoreRepository is the store persistence boundary.
type StoreRepository interface {
	ActiveStores(ctx context.Context) ([]store.Store, error)
	UpsertStore(ctx context.Context, s store.Store) error
	CountStores(ctx context.Context) (int, error)
}

// VocabularyRepository matches vocab.Store; kept here so one backend
// satisfies all three boundaries.
type VocabularyRepository interface {
	LookupVocabulary(ctx context.Context, domain string) (map[string]string, error)
	PersistVocabulary(ctx context.Context, domain, keyword, canonical string) error
}

// Backend bundles the three repositories one storage engine provides.
type Backend interface {
	RuleRepository
	StoreRepository
	VocabularyRepository
	Close() error
}

var (
	_ Backend = (*SQLite)(nil)
	_ Backend = (*Memory)(nil)
)
