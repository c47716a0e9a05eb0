package rules

import (
	"encoding/json"
	"fmt"
)

// ParseRules decodes a JSON array of rule definitions, as delivered by
// the authoring layer.
func ParseRules(rulesJSON []byte) ([]Rule, error) {
	var ruleDefs []json.RawMessage
	if err := json.Unmarshal(rulesJSON, &ruleDefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules JSON: %w", err)
	}

	parsed := make([]Rule, 0, len(ruleDefs))
	for _, rJSON := range ruleDefs {
		rule, err := ParseRule(rJSON)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, rule)
	}
	return parsed, nil
}

// ParseRule decodes a single rule definition.
func ParseRule(ruleJSON []byte) (Rule, error) {
	var rule Rule
	if err := json.Unmarshal(ruleJSON, &rule); err != nil {
		return Rule{}, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return rule, nil
}

// Validate checks a rule for authoring mistakes: unknown condition
// kinds and missing targets. A rule with no conditions is valid and
// matches unconditionally.
//
// Malformed condition values (e.g. an unparsable temperature range)
// are deliberately not rejected here; evaluation treats them as
// non-constraining so one bad value cannot block the whole rule set.
func Validate(rule Rule) error {
	if rule.Action.TargetID == "" {
		return fmt.Errorf("rule '%s' has no action target", rule.Name)
	}
	for i, cond := range rule.Conditions {
		if !cond.Kind.Known() {
			return fmt.Errorf("unknown condition type '%s' in condition %d of rule '%s'", cond.Kind, i, rule.Name)
		}
	}
	return nil
}
