// Package authoring is the write-side boundary the external API layer
// calls to manage rules. Every successful mutation notifies the
// scheduler so edits show on signs without waiting for the next tick.
package authoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/storage"
	"github.com/fangyikun/advertisement-opitimization/internal/vocab"
)

// RuleService validates and persists rule mutations.
type RuleService struct {
	repo  storage.RuleRepository
	vocab *vocab.Resolver
	// notify is called after every successful mutation; wired to the
	// scheduler's on-demand trigger.
	notify func()
}

func NewRuleService(repo storage.RuleRepository, v *vocab.Resolver, notify func()) *RuleService {
	if notify == nil {
		notify = func() {}
	}
	return &RuleService{repo: repo, vocab: v, notify: notify}
}

// Create validates and stores a new rule. A missing id is minted, and
// a missing action target is derived from the action message through
// the vocabulary (synthesizing and persisting a new content id for
// unseen campaign text).
func (s *RuleService) Create(ctx context.Context, r rules.Rule) (rules.Rule, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Action.TargetID == "" && r.Action.Message != "" {
		target, err := s.vocab.EnsureAction(ctx, r.Action.Message)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("derive action target: %w", err)
		}
		r.Action.TargetID = target
	}
	if err := rules.Validate(r); err != nil {
		return rules.Rule{}, err
	}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return rules.Rule{}, err
	}
	log.Info().Str("rule", r.ID).Str("name", r.Name).Msg("Rule created")
	s.notify()
	return r, nil
}

// Update validates and stores a changed rule.
func (s *RuleService) Update(ctx context.Context, r rules.Rule) error {
	if err := rules.Validate(r); err != nil {
		return err
	}
	if err := s.repo.UpdateRule(ctx, r); err != nil {
		return err
	}
	log.Info().Str("rule", r.ID).Msg("Rule updated")
	s.notify()
	return nil
}

// Delete removes a rule.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	log.Info().Str("rule", id).Msg("Rule deleted")
	s.notify()
	return nil
}

// Reset replaces the whole rule set, e.g. back to the seed data.
func (s *RuleService) Reset(ctx context.Context, rs []rules.Rule) error {
	for i := range rs {
		if rs[i].ID == "" {
			rs[i].ID = uuid.NewString()
		}
		if err := rules.Validate(rs[i]); err != nil {
			return err
		}
	}
	if err := s.repo.ReplaceRules(ctx, rs); err != nil {
		return err
	}
	log.Info().Int("rules", len(rs)).Msg("Rule set reset")
	s.notify()
	return nil
}
