package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
)

// Memory is the no-database backend. Data lives for the process
// lifetime only; the engine stays fully functional on it.
type Memory struct {
	mu     sync.RWMutex
	rules  []rules.Rule
	stores map[string]store.Store
	vocab  map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		stores: make(map[string]store.Store),
		vocab:  make(map[string]map[string]string),
	}
}

func (m *Memory) ListRules(_ context.Context) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rules.Rule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

func (m *Memory) RulesForScope(ctx context.Context, storeID string) ([]rules.Rule, error) {
	all, _ := m.ListRules(ctx)
	var out []rules.Rule
	for _, r := range all {
		if r.AppliesTo(storeID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) CreateRule(_ context.Context, r rules.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rules {
		if existing.ID == r.ID {
			return fmt.Errorf("rule %s already exists", r.ID)
		}
	}
	m.rules = append(m.rules, r)
	return nil
}

func (m *Memory) UpdateRule(_ context.Context, r rules.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.rules {
		if existing.ID == r.ID {
			m.rules[i] = r
			return nil
		}
	}
	return fmt.Errorf("rule %s not found", r.ID)
}

func (m *Memory) DeleteRule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.rules {
		if existing.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("rule %s not found", id)
}

func (m *Memory) ReplaceRules(_ context.Context, rs []rules.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = make([]rules.Rule, len(rs))
	copy(m.rules, rs)
	return nil
}

func (m *Memory) ActiveStores(_ context.Context) ([]store.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []store.Store
	for _, s := range m.stores {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpsertStore(_ context.Context, s store.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[s.ID] = s
	return nil
}

func (m *Memory) CountStores(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores), nil
}

func (m *Memory) LookupVocabulary(_ context.Context, domain string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.vocab[domain]))
	for k, v := range m.vocab[domain] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) PersistVocabulary(_ context.Context, domain, keyword, canonical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vocab[domain] == nil {
		m.vocab[domain] = make(map[string]string)
	}
	m.vocab[domain][keyword] = canonical
	return nil
}

func (m *Memory) Close() error { return nil }
