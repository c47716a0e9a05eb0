// Package engine evaluates rule conditions against a resolved
// environment context and selects, per store, the content to play.
package engine

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fangyikun/advertisement-opitimization/internal/envctx"
	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/vocab"
)

// Locale carries the store-side region and city a rule evaluation
// compares region/city conditions against.
type Locale struct {
	Region string
	City   string
}

// Evaluator decides match/no-match for condition lists. It reads the
// vocabulary resolver's cache only, so evaluation stays a pure
// function of (conditions, context, locale).
type Evaluator struct {
	vocab *vocab.Resolver
}

func NewEvaluator(v *vocab.Resolver) *Evaluator {
	return &Evaluator{vocab: v}
}

// Evaluate reports whether every condition passes (logical AND). An
// empty condition list passes trivially.
//
// Missing context data follows the per-kind policy: temperature and
// time conditions skip, the Greater-China kinds fail. A condition
// value that fails to parse does not constrain at all; a single bad
// rule must not block the rest of the rule set.
func (e *Evaluator) Evaluate(conditions []rules.Condition, ctx envctx.Context, loc Locale) bool {
	for _, cond := range conditions {
		if !e.evaluateOne(cond, ctx, loc) {
			return false
		}
	}
	return true
}

func (e *Evaluator) evaluateOne(cond rules.Condition, ctx envctx.Context, loc Locale) bool {
	switch cond.Kind {
	case rules.KindWeather:
		return e.matchWeather(cond, ctx.Weather)
	case rules.KindTemperature:
		if ctx.TempC == nil {
			return true
		}
		tr, ok := rules.ParseTempRange(cond.Value)
		if !ok {
			log.Warn().Str("value", cond.Value).Msg("Unparsable temperature condition, treating as pass")
			return true
		}
		return tr.Contains(*ctx.TempC)
	case rules.KindTimeOfDay:
		hr, ok := rules.ParseHourRange(cond.Value)
		if !ok {
			log.Warn().Str("value", cond.Value).Msg("Unparsable time-of-day condition, treating as pass")
			return true
		}
		return hr.Contains(ctx.Hour)
	case rules.KindWeekday:
		days, ok := rules.ParseWeekdaySet(cond.Value)
		if !ok {
			log.Warn().Str("value", cond.Value).Msg("Unparsable weekday condition, treating as pass")
			return true
		}
		return days[ctx.Weekday]
	case rules.KindRegion:
		return cond.Value == "" || strings.EqualFold(cond.Value, loc.Region)
	case rules.KindCity:
		return cond.Value == "" || strings.EqualFold(cond.Value, loc.City)
	case rules.KindChinaSubregion:
		// Hard requirement: outside Greater China this never matches,
		// keeping subregion menus off the rest of the world's signs.
		if ctx.ChinaSubregion == "" {
			return false
		}
		return cond.Value == "" || strings.EqualFold(cond.Value, ctx.ChinaSubregion)
	case rules.KindSolarTerm:
		// Same hard requirement for the lunisolar calendar.
		if len(ctx.SolarTerms) == 0 {
			return false
		}
		if cond.Value == "" {
			return true
		}
		want := strings.TrimSpace(cond.Value)
		for _, term := range ctx.SolarTerms {
			if term == want {
				return true
			}
		}
		return false
	default:
		log.Warn().Str("type", string(cond.Kind)).Msg("Unknown condition type, treating as pass")
		return true
	}
}

// matchWeather canonicalizes both sides through the vocabulary and
// passes when the canonical sets intersect. The in-set operator splits
// the rule value on commas and passes on any intersection.
func (e *Evaluator) matchWeather(cond rules.Condition, contextWeather string) bool {
	ctxSet := e.vocab.WeatherSet(contextWeather)
	if len(ctxSet) == 0 {
		// Raw label the vocabulary has never seen; compare as-is.
		ctxSet = map[string]bool{strings.ToLower(strings.TrimSpace(contextWeather)): true}
	}
	values := []string{cond.Value}
	if cond.Operator == rules.OperatorInSet {
		values = strings.Split(cond.Value, ",")
	}
	for _, v := range values {
		for canonical := range e.vocab.WeatherSet(v) {
			if ctxSet[canonical] {
				return true
			}
		}
	}
	return false
}
