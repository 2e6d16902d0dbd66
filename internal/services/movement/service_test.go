package movement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
	"github.com/wandergrid/explorer-bot-discord/internal/services/movement"
	mockvisibility "github.com/wandergrid/explorer-bot-discord/internal/services/visibility/mock"
)

const (
	testWorkspace = "guild-1"
	testMember    = "user-1"
	testMap       = "island"
)

var staminaDefaults = game.PoolDefaults{Max: 5, RegenInterval: 10 * time.Minute, RegenAmount: 1}

type fixture struct {
	repo    workspaces.Repository
	clock   *clock.Fixed
	sync    *mockvisibility.MockSynchronizer
	service movement.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := workspaces.NewInMemoryRepository(clk)
	sync := mockvisibility.NewMockSynchronizer(ctrl)

	svc := movement.NewService(&movement.ServiceConfig{
		Repository:   repo,
		Synchronizer: sync,
		Clock:        clk,
		PoolDefaults: staminaDefaults,
		MoveCost:     1,
		DedupWindow:  3 * time.Second,
	})
	return &fixture{repo: repo, clock: clk, sync: sync, service: svc}
}

// seedMap installs a 7x7 map and places the member at D4
func (f *fixture) seedMap(t *testing.T, mutate func(mapDef *game.MapDefinition)) {
	t.Helper()
	require.NoError(t, f.repo.Mutate(context.Background(), testWorkspace, func(ws *game.Workspace) error {
		mapDef := &game.MapDefinition{
			ID:         testMap,
			Name:       "Island",
			GridWidth:  7,
			GridHeight: 7,
			StartAt:    game.Coord{Col: 3, Row: 3}, // D4
		}
		if mutate != nil {
			mutate(mapDef)
		}
		ws.Maps[testMap] = mapDef
		ws.Member(testMember).InitProgress(testMap, mapDef.StartAt)
		return nil
	}))
}

func (f *fixture) progress(t *testing.T) *game.MapProgress {
	t.Helper()
	ws, err := f.repo.Get(context.Background(), testWorkspace)
	require.NoError(t, err)
	return ws.Member(testMember).MapProgressFor(testMap)
}

func TestMoveToAdjacentCell(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, nil)
	f.sync.EXPECT().Sync(gomock.Any(), testMember, gomock.Any(), gomock.Any()).Times(0)

	result, err := f.service.Move(context.Background(), testWorkspace, testMember, testMap, "D3", nil)
	require.NoError(t, err)

	assert.Equal(t, "D4", result.From.String())
	assert.Equal(t, "D3", result.To.String())
	assert.Equal(t, 4, result.StaminaRemaining)

	progress := f.progress(t)
	assert.Equal(t, "D3", progress.CurrentLocation.String())
	assert.True(t, progress.Explored[game.Coord{Col: 3, Row: 2}])
	require.Len(t, progress.History, 1)
	assert.Equal(t, "D4", progress.History[0].From.String())
	assert.Equal(t, "D3", progress.History[0].To.String())
}

func TestMoveOffGridRejected(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, func(m *game.MapDefinition) {
		m.StartAt = game.Coord{Col: 0, Row: 0} // A1
	})

	moves, err := f.service.GetValidMoves(context.Background(), testWorkspace, testMember, testMap)
	require.NoError(t, err)
	for _, m := range moves {
		assert.True(t, m.Coord.Col >= 0 && m.Coord.Row >= 0)
	}
	assert.Len(t, moves, 3, "corner cell has three neighbors")

	// North of A1 does not exist
	_, err = f.service.Move(context.Background(), testWorkspace, testMember, testMap, "A0", nil)
	assert.True(t, apperr.IsInvalidArgument(err) || apperr.IsInvalidMove(err))

	// In-bounds but not adjacent
	_, err = f.service.Move(context.Background(), testWorkspace, testMember, testMap, "G7", nil)
	assert.True(t, apperr.IsInvalidMove(err))

	// Rejected moves leave no trace
	assert.Empty(t, f.progress(t).History)
}

func TestMoveBlacklistAndUnlock(t *testing.T) {
	f := newFixture(t)
	b2 := game.Coord{Col: 1, Row: 1}
	f.seedMap(t, func(m *game.MapDefinition) {
		m.StartAt = game.Coord{Col: 0, Row: 0}
		m.Blacklisted = map[game.Coord]bool{b2: true}
	})
	ctx := context.Background()

	_, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "B2", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsBlacklisted(err))
	assert.Equal(t, "A1", f.progress(t).CurrentLocation.String())

	// Grant the unlocking item and retry (outside the dedup window)
	require.NoError(t, f.repo.Mutate(ctx, testWorkspace, func(ws *game.Workspace) error {
		ws.Items["rope-ladder"] = &game.Item{ID: "rope-ladder", ReverseBlacklist: []game.Coord{b2}}
		ws.Member(testMember).AddItem("rope-ladder", 1)
		return nil
	}))
	f.clock.Advance(5 * time.Second)

	result, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "B2", nil)
	require.NoError(t, err)
	assert.Equal(t, "rope-ladder", result.UnlockedBy)
	assert.Equal(t, "B2", f.progress(t).CurrentLocation.String())
}

func TestMoveBlacklistHintNamesUnlock(t *testing.T) {
	f := newFixture(t)
	b2 := game.Coord{Col: 1, Row: 1}
	f.seedMap(t, func(m *game.MapDefinition) {
		m.StartAt = game.Coord{Col: 0, Row: 0}
		m.Blacklisted = map[game.Coord]bool{b2: true}
	})

	require.NoError(t, f.repo.Mutate(context.Background(), testWorkspace, func(ws *game.Workspace) error {
		ws.Items["rope-ladder"] = &game.Item{ID: "rope-ladder", ReverseBlacklist: []game.Coord{b2}}
		return nil
	}))

	_, err := f.service.Move(context.Background(), testWorkspace, testMember, testMap, "B2", nil)
	require.Error(t, err)
	assert.Equal(t, "rope-ladder", apperr.GetMeta(err)["unlock_item"])
}

func TestMoveInsufficientStamina(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, nil)
	ctx := context.Background()

	// Drain the pool
	require.NoError(t, f.repo.Mutate(ctx, testWorkspace, func(ws *game.Workspace) error {
		pool := ws.Member(testMember).Pool(game.StaminaPool, staminaDefaults, f.clock.Now())
		pool.Current = 0
		return nil
	}))

	_, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "D3", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsInsufficientResource(err))
	assert.Equal(t, "10m0s", apperr.GetMeta(err)["time_until_regen"])
	assert.Empty(t, f.progress(t).History)

	// BypassResource moves anyway and leaves the pool alone
	result, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "D3", &movement.MoveOptions{BypassResource: true})
	require.NoError(t, err)
	assert.Equal(t, "D3", result.To.String())
	assert.Equal(t, 0, result.StaminaRemaining)
}

func TestMoveAdminOverrideSkipsAdjacency(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, nil)

	result, err := f.service.Move(context.Background(), testWorkspace, testMember, testMap, "G7",
		&movement.MoveOptions{AdminOverride: true})
	require.NoError(t, err)
	assert.Equal(t, "G7", result.To.String())
}

func TestMoveNotInitialized(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Mutate(context.Background(), testWorkspace, func(ws *game.Workspace) error {
		ws.Maps[testMap] = &game.MapDefinition{ID: testMap, GridWidth: 7, GridHeight: 7}
		return nil
	}))

	_, err := f.service.Move(context.Background(), testWorkspace, "newcomer", testMap, "D3", nil)
	assert.True(t, apperr.IsNotInitialized(err))

	_, err = f.service.GetValidMoves(context.Background(), testWorkspace, "newcomer", testMap)
	assert.True(t, apperr.IsNotInitialized(err))
}

func TestMoveSyncsVisibility(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, func(m *game.MapDefinition) {
		m.Cell(game.Coord{Col: 3, Row: 3}).ChannelRef = "chan-d4"
		m.Cell(game.Coord{Col: 3, Row: 2}).ChannelRef = "chan-d3"
	})

	f.sync.EXPECT().Sync(gomock.Any(), testMember, "chan-d4", "chan-d3").Return(nil)

	_, err := f.service.Move(context.Background(), testWorkspace, testMember, testMap, "D3", nil)
	require.NoError(t, err)
}

func TestMoveSyncFailureDoesNotRevert(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, func(m *game.MapDefinition) {
		m.Cell(game.Coord{Col: 3, Row: 2}).ChannelRef = "chan-d3"
	})

	f.sync.EXPECT().Sync(gomock.Any(), testMember, "", "chan-d3").
		Return(apperr.Internal("discord unavailable"))

	result, err := f.service.Move(context.Background(), testWorkspace, testMember, testMap, "D3", nil)
	require.NoError(t, err)
	assert.Equal(t, "D3", result.To.String())
	assert.Equal(t, "D3", f.progress(t).CurrentLocation.String())
}

func TestMoveDedupReplaysWithinWindow(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, nil)
	ctx := context.Background()

	first, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "D3", nil)
	require.NoError(t, err)

	// A rapid repeat replays the first outcome instead of moving again
	f.clock.Advance(1 * time.Second)
	replayed, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "D3", nil)
	require.NoError(t, err)
	assert.Equal(t, first, replayed)
	assert.Len(t, f.progress(t).History, 1)

	// Past the window the same request is processed fresh, and now D3
	// is the current location so moving to D3 again is not adjacent
	f.clock.Advance(5 * time.Second)
	_, err = f.service.Move(ctx, testWorkspace, testMember, testMap, "D3", nil)
	assert.True(t, apperr.IsInvalidMove(err))
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	f.seedMap(t, nil)
	ctx := context.Background()

	_, err := f.service.Move(ctx, testWorkspace, testMember, testMap, "D3", nil)
	require.NoError(t, err)

	progress, err := f.service.Progress(ctx, testWorkspace, testMember, testMap)
	require.NoError(t, err)
	assert.Equal(t, "D3", progress.CurrentLocation.String())
	assert.Len(t, progress.Explored, 2)

	_, err = f.service.Progress(ctx, testWorkspace, "newcomer", testMap)
	assert.True(t, apperr.IsNotInitialized(err))
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Mutate(context.Background(), testWorkspace, func(ws *game.Workspace) error {
		mapDef := &game.MapDefinition{ID: testMap, GridWidth: 7, GridHeight: 7, StartAt: game.Coord{Col: 3, Row: 3}}
		mapDef.Cell(mapDef.StartAt).ChannelRef = "chan-start"
		ws.Maps[testMap] = mapDef
		return nil
	}))

	f.sync.EXPECT().Sync(gomock.Any(), testMember, "", "chan-start").Return(nil)

	progress, err := f.service.Initialize(context.Background(), testWorkspace, testMember, testMap)
	require.NoError(t, err)
	assert.Equal(t, "D4", progress.CurrentLocation.String())
	assert.True(t, progress.Explored[game.Coord{Col: 3, Row: 3}])
}
