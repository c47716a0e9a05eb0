package engine

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fangyikun/advertisement-opitimization/internal/envctx"
	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/store"
)

// DefaultContent is played when no rule matches, the store is closed
// or inactive, or any upstream data is missing.
const DefaultContent = "default"

// Selector picks one content id per store from a rule snapshot.
type Selector struct {
	eval *Evaluator

	// Now is the clock used for the opening-hours gate. Overridable
	// in tests; defaults to time.Now.
	Now func() time.Time
}

func NewSelector(eval *Evaluator) *Selector {
	return &Selector{eval: eval, Now: time.Now}
}

// Select returns the content id for one store: inactive or closed
// stores get DefaultContent immediately; otherwise rules in scope are
// tried in priority order (descending, ties in declaration order) and
// the first full match wins. No match also means DefaultContent.
//
// Select is a pure function of its inputs plus the injected clock; it
// mutates neither the rule slice nor any shared state.
func (s *Selector) Select(st store.Store, ruleSet []rules.Rule, ctx envctx.Context, loc Locale) string {
	if !st.IsActive {
		return DefaultContent
	}
	if !store.IsOpenNow(st.OpeningHours, st.Timezone, s.Now()) {
		log.Debug().Str("store", st.ID).Msg("Store closed, selecting default content")
		return DefaultContent
	}

	ordered := make([]rules.Rule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for _, rule := range ordered {
		if !rule.AppliesTo(st.ID) {
			continue
		}
		if s.eval.Evaluate(rule.Conditions, ctx, loc) {
			if rule.Action.TargetID == "" {
				return DefaultContent
			}
			return rule.Action.TargetID
		}
	}
	return DefaultContent
}
