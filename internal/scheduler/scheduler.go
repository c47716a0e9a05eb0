// Package scheduler drives the evaluation cycle: for every active
// store, resolve the environmental context and select content, then
// publish the whole result map as one atomic snapshot.
//
// Cycles are single-flight: a cycle that starts while another is in
// flight waits for it and then runs its own sequence. Cycles are never
// concurrent and never dropped.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fangyikun/advertisement-opitimization/internal/engine"
	"github.com/fangyikun/advertisement-opitimization/internal/envctx"
	"github.com/fangyikun/advertisement-opitimization/internal/region"
	"github.com/fangyikun/advertisement-opitimization/internal/storage"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
	"github.com/fangyikun/advertisement-opitimization/internal/vocab"
)

// Snapshot is one published cycle result. Readers always see a fully
// written snapshot, never a partial one.
type Snapshot struct {
	// ContentByStore maps store id to the selected content id.
	ContentByStore map[string]string
	// Context is the environment that drove the cycle (the first
	// active store's context, kept for display and debugging).
	Context   envctx.Context
	UpdatedAt time.Time
}

// resolveConcurrency bounds per-cycle upstream fan-out; most lookups
// hit the coordinate cache anyway.
const resolveConcurrency = 4

// Options configures the loop's timing.
type Options struct {
	// TickInterval is the periodic cycle cadence.
	TickInterval time.Duration
	// StartupDelay postpones the first cycle so process startup does
	// not race it.
	StartupDelay time.Duration
}

// Loop owns the scheduler state machine.
type Loop struct {
	stores   storage.StoreRepository
	rules    storage.RuleRepository
	vocab    *vocab.Resolver
	resolver *envctx.Resolver
	selector *engine.Selector
	opts     Options

	// cycleMu is the single-flight lock from the design: at most one
	// cycle runs at a time; waiters run after, not instead.
	cycleMu sync.Mutex
	state   atomic.Pointer[Snapshot]
	kick    chan struct{}
}

func NewLoop(stores storage.StoreRepository, ruleRepo storage.RuleRepository,
	v *vocab.Resolver, resolver *envctx.Resolver, selector *engine.Selector, opts Options) *Loop {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Minute
	}
	l := &Loop{
		stores:   stores,
		rules:    ruleRepo,
		vocab:    v,
		resolver: resolver,
		selector: selector,
		opts:     opts,
		kick:     make(chan struct{}, 1),
	}
	l.state.Store(&Snapshot{ContentByStore: map[string]string{}})
	return l
}

// State returns the latest published snapshot. Never nil.
func (l *Loop) State() *Snapshot {
	return l.state.Load()
}

// Kick requests an on-demand cycle, e.g. right after a rule mutation.
// Non-blocking; multiple kicks before the loop gets to them coalesce
// into one cycle.
func (l *Loop) Kick() {
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// RunCycleNow runs one cycle synchronously, waiting for any in-flight
// cycle first. This is the manual trigger for the API layer.
func (l *Loop) RunCycleNow(ctx context.Context) error {
	return l.runCycle(ctx)
}

// Run executes the periodic loop until ctx is cancelled. An in-flight
// cycle finishes before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	select {
	case <-time.After(l.opts.StartupDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := l.runCycle(ctx); err != nil {
		log.Error().Err(err).Msg("Initial scheduler cycle failed")
	}

	ticker := time.NewTicker(l.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Scheduler loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := l.runCycle(ctx); err != nil {
				log.Error().Err(err).Msg("Scheduler cycle failed, keeping previous state")
			}
		case <-l.kick:
			if err := l.runCycle(ctx); err != nil {
				log.Error().Err(err).Msg("Triggered scheduler cycle failed, keeping previous state")
			}
		}
	}
}

// runCycle performs one full evaluation under the single-flight lock.
// On failure the previous snapshot stays visible.
func (l *Loop) runCycle(ctx context.Context) error {
	l.cycleMu.Lock()
	defer l.cycleMu.Unlock()

	started := time.Now()
	if err := l.vocab.Load(ctx); err != nil {
		// Builtin vocabulary still applies; not fatal.
		log.Warn().Err(err).Msg("Vocabulary refresh failed, evaluating with cached entries")
	}

	activeStores, err := l.stores.ActiveStores(ctx)
	if err != nil {
		return err
	}
	ruleSet, err := l.rules.ListRules(ctx)
	if err != nil {
		// Degrade to the empty rule list: every store gets default
		// content rather than the loop stalling.
		log.Warn().Err(err).Msg("Rule snapshot unavailable, selecting default content")
		ruleSet = nil
	}

	type decision struct {
		storeID string
		content string
		ctx     envctx.Context
	}
	decisions := make([]decision, len(activeStores))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, st := range activeStores {
		i, st := i, st
		g.Go(func() error {
			resolved := l.resolver.Resolve(gctx, locationFor(st))
			content := l.selector.Select(st, ruleSet, resolved, engine.Locale{
				Region: resolved.Region,
				City:   st.City,
			})
			decisions[i] = decision{storeID: st.ID, content: content, ctx: resolved}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	snapshot := &Snapshot{
		ContentByStore: make(map[string]string, len(decisions)),
		UpdatedAt:      time.Now(),
	}
	for i, d := range decisions {
		snapshot.ContentByStore[d.storeID] = d.content
		if i == 0 {
			snapshot.Context = d.ctx
		}
	}
	l.state.Store(snapshot)

	log.Info().
		Int("stores", len(activeStores)).
		Int("rules", len(ruleSet)).
		Dur("took", time.Since(started)).
		Interface("content", snapshot.ContentByStore).
		Msg("Scheduler cycle complete")
	return nil
}

func locationFor(st store.Store) envctx.Location {
	tz := st.Timezone
	if tz == "" {
		tz = region.TimezoneForCountry(st.CountryCode)
	}
	return envctx.Location{
		Lat:         st.Latitude,
		Lon:         st.Longitude,
		Timezone:    tz,
		City:        st.City,
		CountryCode: st.CountryCode,
	}
}
