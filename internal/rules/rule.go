// Package rules defines the scheduling rule model: a prioritized,
// store-scoped list of conditions paired with the content to play
// when every condition matches the current environment.
package rules

// WildcardScope marks a rule that applies to every store.
const WildcardScope = "*"

type Rule struct {
	ID         string      `json:"id" yaml:"id"`
	StoreID    string      `json:"store_id" yaml:"store_id"`
	Name       string      `json:"name" yaml:"name"`
	Priority   int         `json:"priority" yaml:"priority"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Action     Action      `json:"action" yaml:"action"`
}

// AppliesTo reports whether the rule is in scope for the given store.
// An empty or wildcard scope applies everywhere.
func (r Rule) AppliesTo(storeID string) bool {
	return r.StoreID == "" || r.StoreID == WildcardScope || r.StoreID == storeID
}

// Action is what a matched rule plays. TargetID identifies the content;
// Message carries an optional operator-facing note.
type Action struct {
	TargetID string `json:"target_id" yaml:"target_id"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Condition constrains one dimension of the environment. The syntax of
// Value depends on Kind; see the parsers in value.go.
type Condition struct {
	Kind     Kind     `json:"type" yaml:"type"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    string   `json:"value" yaml:"value"`
}
