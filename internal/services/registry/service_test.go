package registry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
	"github.com/wandergrid/explorer-bot-discord/internal/services/registry"
)

const testWorkspace = "guild-1"

// seqGenerator hands out predictable ids for assertions
type seqGenerator struct {
	n int
}

func (g *seqGenerator) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixture struct {
	repo    workspaces.Repository
	clock   *clock.Fixed
	service registry.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := workspaces.NewInMemoryRepository(clk)
	svc := registry.NewService(&registry.ServiceConfig{
		Repository:    repo,
		Caps:          registry.Caps{MaxActions: 3, MaxItems: 3, MaxStores: 2},
		UUIDGenerator: &seqGenerator{},
		Clock:         clk,
	})
	return &fixture{repo: repo, clock: clk, service: svc}
}

func buttonAction(name string) *registry.CreateActionInput {
	return &registry.CreateActionInput{
		Name:    name,
		Trigger: game.Trigger{Type: game.TriggerButtonClick, Label: name},
	}
}

func TestCreateActionAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	action, err := f.service.CreateAction(ctx, testWorkspace, &registry.CreateActionInput{
		Name:    "  Open Gate  ",
		Trigger: game.Trigger{Type: game.TriggerButtonClick, Label: "Open"},
		Effects: []game.Effect{
			{Type: game.EffectGiveItem, ItemID: "key"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Open Gate", action.Name)
	assert.NotEmpty(t, action.ID)
	assert.Equal(t, game.LogicAnd, action.Conditions.Logic)
	assert.Equal(t, f.clock.Now(), action.CreatedAt)
	assert.Equal(t, f.clock.Now(), action.LastModified)
	// Effect defaults and id assignment
	assert.Equal(t, 1, action.Effects[0].Quantity)
	assert.Equal(t, game.LimitUnlimited, action.Effects[0].Limit)
	assert.NotEmpty(t, action.Effects[0].ID)
}

func TestCreateActionRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateAction(ctx, testWorkspace, nil)
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = f.service.CreateAction(ctx, testWorkspace, &registry.CreateActionInput{
		Name: " ",
	})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = f.service.CreateAction(ctx, testWorkspace, &registry.CreateActionInput{
		Name:    "Bad trigger",
		Trigger: game.Trigger{Type: "on_timer"},
	})
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestCreateActionEnforcesCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.CreateAction(ctx, testWorkspace, buttonAction(fmt.Sprintf("Action %d", i)))
		require.NoError(t, err)
	}

	_, err := f.service.CreateAction(ctx, testWorkspace, buttonAction("One too many"))
	require.Error(t, err)
	assert.True(t, apperr.IsLimitExceeded(err))
	assert.Equal(t, "actions", apperr.GetMeta(err)["category"])

	// Rejection writes nothing
	ws, err := f.repo.Get(ctx, testWorkspace)
	require.NoError(t, err)
	assert.Len(t, ws.Actions, 3)
}

func TestUpdateActionPartialMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	action, err := f.service.CreateAction(ctx, testWorkspace, buttonAction("Original"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)

	newName := "Renamed"
	updated, err := f.service.UpdateAction(ctx, testWorkspace, action.ID, &registry.UpdateActionInput{
		Name: &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, action.Trigger, updated.Trigger, "unset fields keep their values")
	assert.Equal(t, f.clock.Now(), updated.LastModified)
	assert.Equal(t, action.CreatedAt, updated.CreatedAt)
}

func TestDeleteActionCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target, err := f.service.CreateAction(ctx, testWorkspace, buttonAction("Target"))
	require.NoError(t, err)

	referrer, err := f.service.CreateAction(ctx, testWorkspace, &registry.CreateActionInput{
		Name:    "Referrer",
		Trigger: game.Trigger{Type: game.TriggerButtonClick, Label: "Go"},
		Effects: []game.Effect{
			{Type: game.EffectDisplayText, Content: "done"},
			{Type: game.EffectFollowUpAction, TargetActionID: target.ID},
		},
	})
	require.NoError(t, err)

	mapDef, err := f.service.CreateMap(ctx, testWorkspace, &registry.CreateMapInput{
		Name: "Overworld", GridWidth: 7, GridHeight: 7, StartAt: game.Coord{Col: 3, Row: 3},
	})
	require.NoError(t, err)

	cellCoord := game.Coord{Col: 0, Row: 0}
	require.NoError(t, f.service.AssignAction(ctx, testWorkspace, mapDef.ID, cellCoord, target.ID))

	require.NoError(t, f.service.DeleteAction(ctx, testWorkspace, target.ID))

	ws, err := f.repo.Get(ctx, testWorkspace)
	require.NoError(t, err)

	_, exists := ws.Actions[target.ID]
	assert.False(t, exists)

	// Dangling follow-up cleared, not errored
	kept := ws.Actions[referrer.ID]
	require.Len(t, kept.Effects, 1)
	assert.Equal(t, game.EffectDisplayText, kept.Effects[0].Type)

	// Cell assignment stripped
	cell := ws.Maps[mapDef.ID].Coordinates[cellCoord]
	require.NotNil(t, cell)
	assert.Empty(t, cell.AssignedActionIDs)
}

func TestDeleteItemStripsStoreListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, testWorkspace, &registry.CreateItemInput{Name: "Lantern"})
	require.NoError(t, err)
	other, err := f.service.CreateItem(ctx, testWorkspace, &registry.CreateItemInput{Name: "Rope"})
	require.NoError(t, err)

	store, err := f.service.CreateStore(ctx, testWorkspace, &registry.CreateStoreInput{
		Name:    "Outfitter",
		ItemIDs: []string{item.ID, other.ID},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteItem(ctx, testWorkspace, item.ID))

	ws, err := f.repo.Get(ctx, testWorkspace)
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID}, ws.Stores[store.ID].ItemIDs)
}

func TestGetActionResolvesLegacyName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateAction(ctx, testWorkspace, buttonAction("Secret Door"))
	require.NoError(t, err)

	found, err := f.service.GetAction(ctx, testWorkspace, "secret door")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.service.GetAction(ctx, testWorkspace, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateStoreRejectsUnknownItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateStore(context.Background(), testWorkspace, &registry.CreateStoreInput{
		Name:    "Ghost shop",
		ItemIDs: []string{"no-such-item"},
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateMapValidatesBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateMap(ctx, testWorkspace, &registry.CreateMapInput{
		Name: "Tiny", GridWidth: 2, GridHeight: 2, StartAt: game.Coord{Col: 5, Row: 0},
	})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = f.service.CreateMap(ctx, testWorkspace, &registry.CreateMapInput{
		Name: "Tiny", GridWidth: 2, GridHeight: 2,
		Blacklisted: []game.Coord{{Col: 9, Row: 9}},
	})
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestFindActionByPhrase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateAction(ctx, testWorkspace, &registry.CreateActionInput{
		Name:    "Dig",
		Trigger: game.Trigger{Type: game.TriggerKeyword, Phrases: []string{"dig", "dig here"}},
	})
	require.NoError(t, err)

	_, err = f.service.CreateAction(ctx, testWorkspace, buttonAction("Pray"))
	require.NoError(t, err)

	found, err := f.service.FindActionByPhrase(ctx, testWorkspace, "  DIG HERE ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Button labels never match as phrases
	_, err = f.service.FindActionByPhrase(ctx, testWorkspace, "Pray")
	assert.True(t, apperr.IsNotFound(err))
}
