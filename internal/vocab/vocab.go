// Package vocab resolves free-form rule vocabulary (often Chinese
// restaurant-speak) into canonical condition values and content ids.
// Unknown terms are absorbed at runtime: a new keyword gets a
// synthesized canonical value, is persisted, and resolves in O(1)
// from then on.
package vocab

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Domain separates the two vocabularies the engine consults.
type Domain string

const (
	// DomainWeather maps weather keywords to canonical conditions
	// (sunny, cloudy, fog, rain, snow, storm).
	DomainWeather Domain = "weather"
	// DomainAction maps product/campaign keywords to content ids.
	DomainAction Domain = "action"
)

// Store is the persistence boundary for vocabulary entries. A nil
// Store leaves the resolver on its builtin tables plus in-memory adds.
type Store interface {
	LookupVocabulary(ctx context.Context, domain string) (map[string]string, error)
	PersistVocabulary(ctx context.Context, domain, keyword, canonical string) error
}

// builtinWeather mirrors the engine's shipped synonym table. Canonical
// names map to themselves so English rule values resolve too.
var builtinWeather = map[string]string{
	"sunny": "sunny", "晴天": "sunny", "晴": "sunny",
	"cloudy": "cloudy", "多云": "cloudy", "阴": "cloudy",
	"rain": "rain", "雨天": "rain", "雨": "rain", "下雨": "rain",
	"snow": "snow", "雪天": "snow", "雪": "snow", "下雪": "snow",
	"storm": "storm", "雷暴": "storm", "雷雨": "storm",
	"fog": "fog", "雾天": "fog", "雾": "fog", "大雾": "fog",
}

var builtinAction = map[string]string{
	"咖啡广告": "coffee_ad", "咖啡": "coffee_ad",
	"热饮广告": "hot_drink_ad", "热饮": "hot_drink_ad",
	"防晒霜": "sunscreen_ad", "防晒": "sunscreen_ad",
	"冰西瓜": "bingxigua_ad", "冰西瓜广告": "bingxigua_ad",
	"西瓜": "xigua_ad", "西瓜广告": "xigua_ad",
	"寿司": "sushi_ad", "寿司广告": "sushi_ad",
}

// Resolver keeps a read cache of stored vocabulary merged over the
// builtin tables. The cache is invalidated on write and reloaded on
// the next Load; lookups themselves never touch the store, which keeps
// rule evaluation a pure function of its inputs.
type Resolver struct {
	store Store

	mu     sync.RWMutex
	cached map[Domain]map[string]string
	dirty  atomic.Bool
}

func NewResolver(store Store) *Resolver {
	r := &Resolver{
		store: store,
		cached: map[Domain]map[string]string{
			DomainWeather: {},
			DomainAction:  {},
		},
	}
	r.dirty.Store(true)
	return r
}

// Invalidate marks the read cache stale. Called after any external
// write to the vocabulary store.
func (r *Resolver) Invalidate() {
	r.dirty.Store(true)
}

// Load refreshes the read cache from the store when it is stale. Safe
// to call every cycle; a clean cache is a no-op.
func (r *Resolver) Load(ctx context.Context) error {
	if !r.dirty.Load() || r.store == nil {
		return nil
	}
	fresh := make(map[Domain]map[string]string, 2)
	for _, domain := range []Domain{DomainWeather, DomainAction} {
		entries, err := r.store.LookupVocabulary(ctx, string(domain))
		if err != nil {
			return fmt.Errorf("load %s vocabulary: %w", domain, err)
		}
		fresh[domain] = entries
	}
	r.mu.Lock()
	r.cached = fresh
	r.mu.Unlock()
	r.dirty.Store(false)
	return nil
}

// mappings returns builtin entries overlaid with stored ones.
func (r *Resolver) mappings(domain Domain) map[string]string {
	builtin := builtinWeather
	if domain == DomainAction {
		builtin = builtinAction
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	merged := make(map[string]string, len(builtin)+len(r.cached[domain]))
	for k, v := range builtin {
		merged[k] = v
	}
	for k, v := range r.cached[domain] {
		merged[k] = v
	}
	return merged
}

// WeatherSet normalizes a weather value (any language the vocabulary
// knows) to its canonical set. Normally one value yields one canonical
// condition; an unknown value yields an empty set.
func (r *Resolver) WeatherSet(value string) map[string]bool {
	v := strings.ToLower(strings.TrimSpace(value))
	result := make(map[string]bool)
	if v == "" {
		return result
	}
	vocab := r.mappings(DomainWeather)
	if canonical, ok := vocab[v]; ok {
		result[canonical] = true
		return result
	}
	// A raw value that is already a canonical condition resolves to
	// itself even if nobody registered it as a keyword.
	for _, canonical := range vocab {
		if v == canonical {
			result[canonical] = true
			return result
		}
	}
	return result
}

// longestMatch finds the mapped value of the longest keyword contained
// in text, so "冰西瓜" beats "西瓜". Returns ok=false when nothing in
// the vocabulary touches the text.
func longestMatch(mappings map[string]string, text string) (string, bool) {
	keywords := make([]string, 0, len(mappings))
	for kw := range mappings {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return mappings[kw], true
		}
	}
	return "", false
}

// EnsureAction resolves campaign text to a content id, synthesizing
// and persisting a new id for unseen vocabulary.
func (r *Resolver) EnsureAction(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "coffee_ad", nil
	}
	if err := r.Load(ctx); err != nil {
		return "", err
	}
	if target, ok := longestMatch(r.mappings(DomainAction), text); ok {
		return target, nil
	}
	target := Slugify(text)
	if err := r.persist(ctx, DomainAction, text, target); err != nil {
		return "", err
	}
	return target, nil
}

// EnsureWeather resolves weather text to a canonical condition,
// inferring a best guess for unseen vocabulary and persisting it.
func (r *Resolver) EnsureWeather(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "cloudy", nil
	}
	if err := r.Load(ctx); err != nil {
		return "", err
	}
	if canonical, ok := longestMatch(r.mappings(DomainWeather), text); ok {
		return canonical, nil
	}
	inferred := "cloudy"
	switch {
	case strings.ContainsRune(text, '雾') || strings.ContainsRune(text, '霾'):
		inferred = "fog"
	case strings.ContainsRune(text, '风') && strings.ContainsRune(text, '龙'):
		inferred = "storm"
	}
	if err := r.persist(ctx, DomainWeather, text, inferred); err != nil {
		return "", err
	}
	return inferred, nil
}

func (r *Resolver) persist(ctx context.Context, domain Domain, keyword, canonical string) error {
	if r.store == nil {
		// No persistence configured; remember it in the cache only.
		r.mu.Lock()
		r.cached[domain][keyword] = canonical
		r.mu.Unlock()
		return nil
	}
	if err := r.store.PersistVocabulary(ctx, string(domain), keyword, canonical); err != nil {
		return fmt.Errorf("persist %s mapping %q: %w", domain, keyword, err)
	}
	r.Invalidate()
	return r.Load(ctx)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9_]`)

// Slugify derives a content id from raw campaign text. ASCII text
// keeps a readable slug; anything else falls back to a content hash,
// e.g. "雨衣广告" -> "ad_a1b2c3d4e5".
func Slugify(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "default"
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(strings.ReplaceAll(text, " ", "_")), "")
	if slug == "" {
		sum := md5.Sum([]byte(text))
		return "ad_" + hex.EncodeToString(sum[:])[:10]
	}
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}
