package authoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fangyikun/advertisement-opitimization/internal/rules"
	"github.com/fangyikun/advertisement-opitimization/internal/storage"
	"github.com/fangyikun/advertisement-opitimization/internal/vocab"
)

func newService(t *testing.T) (*RuleService, *storage.Memory, *int) {
	t.Helper()
	backend := storage.NewMemory()
	kicks := 0
	svc := NewRuleService(backend, vocab.NewResolver(backend), func() { kicks++ })
	return svc, backend, &kicks
}

func validRule() rules.Rule {
	return rules.Rule{
		StoreID:  "*",
		Name:     "rainy umbrella",
		Priority: 3,
		Conditions: []rules.Condition{
			{Kind: rules.KindWeather, Operator: rules.OperatorEquals, Value: "rain"},
		},
		Action: rules.Action{TargetID: "umbrella_ad"},
	}
}

func TestCreate_MintsIDAndNotifies(t *testing.T) {
	svc, backend, kicks := newService(t)

	created, err := svc.Create(context.Background(), validRule())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, *kicks, "a rule mutation must trigger a scheduler cycle")

	stored, err := backend.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, created.ID, stored[0].ID)
}

func TestCreate_DerivesTargetFromMessage(t *testing.T) {
	svc, backend, _ := newService(t)

	r := validRule()
	r.Action = rules.Action{Message: "下雨天来份寿司"}
	created, err := svc.Create(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "sushi_ad", created.Action.TargetID,
		"known vocabulary inside the message resolves to its content id")

	r = validRule()
	r.Action = rules.Action{Message: "全新夜宵档"}
	created, err = svc.Create(context.Background(), r)
	require.NoError(t, err)
	assert.Regexp(t, `^ad_[0-9a-f]{10}$`, created.Action.TargetID,
		"unseen vocabulary gets a synthesized id")

	// The synthesized mapping was persisted for next time.
	actions, err := backend.LookupVocabulary(context.Background(), "action")
	require.NoError(t, err)
	assert.Contains(t, actions, "全新夜宵档")
}

func TestCreate_RejectsUnknownKind(t *testing.T) {
	svc, _, kicks := newService(t)
	r := validRule()
	r.Conditions = []rules.Condition{{Kind: "vibes", Value: "good"}}
	_, err := svc.Create(context.Background(), r)
	assert.Error(t, err)
	assert.Zero(t, *kicks, "failed mutations must not trigger a cycle")
}

func TestUpdateDeleteReset(t *testing.T) {
	svc, backend, kicks := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRule())
	require.NoError(t, err)

	created.Priority = 7
	require.NoError(t, svc.Update(ctx, created))
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Reset(ctx, []rules.Rule{validRule(), validRule()}))
	assert.Equal(t, 4, *kicks)

	stored, err := backend.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.NotEmpty(t, stored[0].ID, "reset mints ids for seed rules")
}
