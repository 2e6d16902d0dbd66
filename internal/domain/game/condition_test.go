package game_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
)

func currencyGTE(n int) game.Condition {
	return game.Condition{Type: game.ConditionHasCurrency, Op: game.CurrencyGTE, Amount: n}
}

func TestEmptySetIsVacuouslyTrue(t *testing.T) {
	state := game.EvalState{}

	for _, logic := range []game.ConditionLogic{game.LogicAnd, game.LogicOr} {
		ok, failed := game.ConditionSet{Logic: logic}.Evaluate(state)
		assert.True(t, ok, "logic %s", logic)
		assert.Nil(t, failed)
	}
}

func TestAndShortCircuits(t *testing.T) {
	state := game.EvalState{Currency: 10}

	set := game.ConditionSet{
		Logic: game.LogicAnd,
		Items: []game.Condition{currencyGTE(5), currencyGTE(50), currencyGTE(1)},
	}

	ok, failed := set.Evaluate(state)
	assert.False(t, ok)
	require.NotNil(t, failed)
	assert.Equal(t, 50, failed.Amount, "first failing condition is surfaced")
}

func TestOrShortCircuits(t *testing.T) {
	state := game.EvalState{Currency: 10}

	set := game.ConditionSet{
		Logic: game.LogicOr,
		Items: []game.Condition{currencyGTE(100), currencyGTE(5)},
	}

	ok, failed := set.Evaluate(state)
	assert.True(t, ok)
	assert.Nil(t, failed)
}

func TestCurrencyOps(t *testing.T) {
	tests := []struct {
		name     string
		op       game.CurrencyOp
		amount   int
		currency int
		want     bool
	}{
		{"gte met", game.CurrencyGTE, 10, 10, true},
		{"gte unmet", game.CurrencyGTE, 10, 9, false},
		{"lte met", game.CurrencyLTE, 10, 10, true},
		{"lte unmet", game.CurrencyLTE, 10, 11, false},
		{"eq0 met", game.CurrencyEqZero, 0, 0, true},
		{"eq0 unmet", game.CurrencyEqZero, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := game.ConditionSet{Items: []game.Condition{
				{Type: game.ConditionHasCurrency, Op: tt.op, Amount: tt.amount},
			}}
			ok, _ := set.Evaluate(game.EvalState{Currency: tt.currency})
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestHasItemWithNegate(t *testing.T) {
	state := game.EvalState{Inventory: map[string]int{"lantern": 2}}

	tests := []struct {
		itemID string
		qty    int
		negate bool
		want   bool
	}{
		{"lantern", 1, false, true},
		{"lantern", 3, false, false},
		{"lantern", 1, true, false},
		{"rope", 1, false, false},
		{"rope", 1, true, true},
	}

	for _, tt := range tests {
		set := game.ConditionSet{Items: []game.Condition{
			{Type: game.ConditionHasItem, ItemID: tt.itemID, Quantity: tt.qty, Negate: tt.negate},
		}}
		ok, _ := set.Evaluate(state)
		assert.Equal(t, tt.want, ok, "item %s qty %d negate %v", tt.itemID, tt.qty, tt.negate)
	}
}

func TestAtCoordinate(t *testing.T) {
	here := game.Coord{Col: 3, Row: 3}
	set := game.ConditionSet{Items: []game.Condition{
		{Type: game.ConditionAtCoordinate, Coordinate: here},
	}}

	ok, _ := set.Evaluate(game.EvalState{Location: &here})
	assert.True(t, ok)

	elsewhere := game.Coord{Col: 0, Row: 0}
	ok, _ = set.Evaluate(game.EvalState{Location: &elsewhere})
	assert.False(t, ok)

	// No map progress at all
	ok, _ = set.Evaluate(game.EvalState{})
	assert.False(t, ok)
}

func TestMixedOrScenario(t *testing.T) {
	// balance 50 fails the currency branch, the held item passes the other
	set := game.ConditionSet{
		Logic: game.LogicOr,
		Items: []game.Condition{
			currencyGTE(100),
			{Type: game.ConditionHasItem, ItemID: "X", Quantity: 1},
		},
	}

	ok, _ := set.Evaluate(game.EvalState{
		Currency:  50,
		Inventory: map[string]int{"X": 1},
	})
	assert.True(t, ok)
}

func TestConditionUnmarshalRejectsUnknownTag(t *testing.T) {
	var cond game.Condition
	err := json.Unmarshal([]byte(`{"type":"has_mana","amount":3}`), &cond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown condition type")
}

func TestConditionSetUnmarshalDefaultsToAnd(t *testing.T) {
	var set game.ConditionSet
	require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &set))
	assert.Equal(t, game.LogicAnd, set.Logic)

	err := json.Unmarshal([]byte(`{"logic":"xor","items":[]}`), &set)
	assert.Error(t, err)
}
