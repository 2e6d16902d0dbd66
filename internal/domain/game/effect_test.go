package game_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
)

func TestEffectUnmarshalDefaults(t *testing.T) {
	var effect game.Effect
	require.NoError(t, json.Unmarshal([]byte(`{"type":"give_item","item_id":"sword"}`), &effect))
	assert.Equal(t, 1, effect.Quantity)
	assert.Equal(t, game.LimitUnlimited, effect.Limit)
}

func TestEffectUnmarshalRejectsUnknownTags(t *testing.T) {
	cases := []string{
		`{"type":"teleport"}`,
		`{"type":"give_item"}`,
		`{"type":"give_item","item_id":"sword","limit":"thrice"}`,
		`{"type":"give_role"}`,
		`{"type":"follow_up_action"}`,
		`{"type":"calculate_results","scope":"galaxy"}`,
	}

	for _, raw := range cases {
		var effect game.Effect
		assert.Error(t, json.Unmarshal([]byte(raw), &effect), "payload %s", raw)
	}
}

func TestEffectAttachable(t *testing.T) {
	attachable := []game.EffectType{
		game.EffectGiveItem, game.EffectGiveCurrency, game.EffectFollowUpAction,
	}
	for _, typ := range attachable {
		assert.True(t, game.Effect{Type: typ}.Attachable(), "%s", typ)
	}

	standalone := []game.EffectType{
		game.EffectDisplayText, game.EffectGiveRole, game.EffectRemoveRole,
		game.EffectCalculateResults, game.EffectCalculateAttack,
	}
	for _, typ := range standalone {
		assert.False(t, game.Effect{Type: typ}.Attachable(), "%s", typ)
	}
}

func TestTriggerUnmarshal(t *testing.T) {
	var trigger game.Trigger
	require.NoError(t, json.Unmarshal([]byte(`{"type":"keyword","phrases":["open sesame"]}`), &trigger))
	assert.True(t, trigger.MatchesPhrase("  Open Sesame "))
	assert.False(t, trigger.MatchesPhrase("close sesame"))

	assert.Error(t, json.Unmarshal([]byte(`{"type":"keyword"}`), &trigger))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"on_timer"}`), &trigger))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"button_click"}`), &trigger))
}
