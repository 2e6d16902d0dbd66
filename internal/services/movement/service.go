package movement

//go:generate mockgen -destination=mock/mock_service.go -package=mockmovement -source=service.go

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
	"github.com/wandergrid/explorer-bot-discord/internal/services/visibility"
)

// MoveOptions carries host-level escape hatches for a move request
type MoveOptions struct {
	// BypassResource skips the stamina check and debit
	BypassResource bool
	// AdminOverride allows moving to any in-bounds cell, not just neighbors
	AdminOverride bool
}

// MoveResult describes a committed move
type MoveResult struct {
	From             game.Coord `json:"from"`
	To               game.Coord `json:"to"`
	StaminaRemaining int        `json:"stamina_remaining"`
	// UnlockedBy names the inventory item that overrode the blacklist,
	// when the destination needed one
	UnlockedBy string `json:"unlocked_by,omitempty"`
}

// Service moves members across exploration grids
type Service interface {
	// Initialize places a member at the map's start cell. It is a no-op
	// when the member already has progress on the map.
	Initialize(ctx context.Context, workspaceID, memberID, mapID string) (*game.MapProgress, error)

	// Move validates and commits one move, then best-effort syncs
	// channel visibility
	Move(ctx context.Context, workspaceID, memberID, mapID, destination string, opts *MoveOptions) (*MoveResult, error)

	// GetValidMoves lists the member's legal destinations from their
	// current location
	GetValidMoves(ctx context.Context, workspaceID, memberID, mapID string) ([]game.CandidateMove, error)

	// Progress returns the member's exploration state on a map
	Progress(ctx context.Context, workspaceID, memberID, mapID string) (*game.MapProgress, error)
}

type service struct {
	repository   workspaces.Repository
	synchronizer visibility.Synchronizer
	clock        clock.Clock
	poolDefaults game.PoolDefaults
	moveCost     int
	dedupWindow  time.Duration

	group  singleflight.Group
	mu     sync.Mutex
	recent map[string]recentMove
}

type recentMove struct {
	at     time.Time
	result *MoveResult
	err    error
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository   workspaces.Repository   // Required
	Synchronizer visibility.Synchronizer // Optional, visibility sync skipped if nil
	Clock        clock.Clock             // Optional, will use system clock if nil
	PoolDefaults game.PoolDefaults       // Required, stamina pool parameters
	MoveCost     int                     // Optional, defaults to 1
	DedupWindow  time.Duration           // Optional, duplicate request suppression window
}

// NewService creates a new movement service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.PoolDefaults.Max <= 0 {
		panic("pool defaults are required")
	}

	svc := &service{
		repository:   cfg.Repository,
		synchronizer: cfg.Synchronizer,
		poolDefaults: cfg.PoolDefaults,
		moveCost:     cfg.MoveCost,
		dedupWindow:  cfg.DedupWindow,
		recent:       make(map[string]recentMove),
	}
	if svc.synchronizer == nil {
		svc.synchronizer = visibility.Noop{}
	}
	if svc.moveCost <= 0 {
		svc.moveCost = 1
	}
	if cfg.Clock != nil {
		svc.clock = cfg.Clock
	} else {
		svc.clock = clock.NewReal()
	}

	return svc
}

func (s *service) Initialize(ctx context.Context, workspaceID, memberID, mapID string) (*game.MapProgress, error) {
	if workspaceID == "" || memberID == "" || mapID == "" {
		return nil, apperr.InvalidArgument("workspace id, member id, and map id are required")
	}

	var progress *game.MapProgress
	var startRef string
	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		mapDef, ok := ws.Maps[mapID]
		if !ok {
			return apperr.NotFoundf("map not found: %s", mapID).WithMeta("map_id", mapID)
		}
		progress = ws.Member(memberID).InitProgress(mapID, mapDef.StartAt)
		if cell := mapDef.Coordinates[mapDef.StartAt]; cell != nil {
			startRef = cell.ChannelRef
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if startRef != "" {
		if err := s.synchronizer.Sync(ctx, memberID, "", startRef); err != nil {
			log.Printf("visibility sync failed for member %s on map %s: %v", memberID, mapID, err)
		}
	}
	return progress, nil
}

// Move suppresses rapid duplicates of the same request: concurrent
// duplicates collapse onto one execution, and repeats inside the dedup
// window replay the first outcome instead of re-processing.
func (s *service) Move(ctx context.Context, workspaceID, memberID, mapID, destination string, opts *MoveOptions) (*MoveResult, error) {
	if workspaceID == "" || memberID == "" || mapID == "" {
		return nil, apperr.InvalidArgument("workspace id, member id, and map id are required")
	}
	if opts == nil {
		opts = &MoveOptions{}
	}

	dest, err := game.ParseCoord(destination)
	if err != nil {
		return nil, apperr.InvalidArgumentf("bad destination %q: %v", destination, err)
	}

	key := fmt.Sprintf("%s|%s|%s|%s|%t|%t", workspaceID, memberID, mapID, dest, opts.BypassResource, opts.AdminOverride)

	if s.dedupWindow > 0 {
		s.mu.Lock()
		if prev, ok := s.recent[key]; ok && s.clock.Now().Sub(prev.at) < s.dedupWindow {
			s.mu.Unlock()
			return prev.result, prev.err
		}
		s.mu.Unlock()
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		result, moveErr := s.move(ctx, workspaceID, memberID, mapID, dest, opts)
		if s.dedupWindow > 0 {
			s.mu.Lock()
			s.recent[key] = recentMove{at: s.clock.Now(), result: result, err: moveErr}
			s.pruneRecentLocked()
			s.mu.Unlock()
		}
		return result, moveErr
	})
	if err != nil {
		return nil, err
	}
	return value.(*MoveResult), nil
}

func (s *service) move(ctx context.Context, workspaceID, memberID, mapID string, dest game.Coord, opts *MoveOptions) (*MoveResult, error) {
	var result *MoveResult
	var oldRef, newRef string

	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		mapDef, ok := ws.Maps[mapID]
		if !ok {
			return apperr.NotFoundf("map not found: %s", mapID).WithMeta("map_id", mapID)
		}

		member := ws.Member(memberID)
		progress := member.MapProgressFor(mapID)
		if progress == nil {
			return apperr.NotInitialized("no progress on this map, initialize first").
				WithMeta("map_id", mapID)
		}
		from := progress.CurrentLocation
		now := s.clock.Now()

		pool := member.Pool(game.StaminaPool, s.poolDefaults, now)
		if !opts.BypassResource && !pool.HasEnough(now, s.moveCost) {
			return apperr.InsufficientResource("not enough stamina to move").
				WithMeta("pool", game.StaminaPool).
				WithMeta("cost", s.moveCost).
				WithMeta("time_until_regen", pool.TimeUntilNextRegen(now).String())
		}

		if !mapDef.InBounds(dest) {
			return apperr.InvalidMove("destination is off the map").
				WithMeta("destination", dest.String())
		}
		if !opts.AdminOverride && !isNeighbor(mapDef, from, dest) {
			return apperr.InvalidMove("destination is not reachable from here").
				WithMeta("from", from.String()).
				WithMeta("destination", dest.String())
		}

		var unlockedBy string
		if mapDef.IsBlacklisted(dest) {
			unlockedBy = unlockFor(ws, member, dest)
			if unlockedBy == "" {
				blkErr := apperr.Blacklisted("destination is not accessible").
					WithMeta("destination", dest.String())
				if hint := unlockHint(ws, dest); hint != "" {
					blkErr = blkErr.WithMeta("unlock_item", hint)
				}
				return blkErr
			}
			log.Printf("member %s entering blacklisted %s via item %s", memberID, dest, unlockedBy)
		}

		if !opts.BypassResource && !pool.Consume(now, s.moveCost) {
			return apperr.InsufficientResource("not enough stamina to move").
				WithMeta("pool", game.StaminaPool)
		}

		progress.RecordMove(from, dest, now)

		if cell := mapDef.Coordinates[from]; cell != nil {
			oldRef = cell.ChannelRef
		}
		if cell := mapDef.Coordinates[dest]; cell != nil {
			newRef = cell.ChannelRef
		}

		result = &MoveResult{
			From:             from,
			To:               dest,
			StaminaRemaining: pool.Current,
			UnlockedBy:       unlockedBy,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Location is committed; visibility failures never roll it back
	if oldRef != "" || newRef != "" {
		if err := s.synchronizer.Sync(ctx, memberID, oldRef, newRef); err != nil {
			log.Printf("visibility sync failed for member %s moving to %s: %v", memberID, dest, err)
		}
	}

	return result, nil
}

func (s *service) GetValidMoves(ctx context.Context, workspaceID, memberID, mapID string) ([]game.CandidateMove, error) {
	if workspaceID == "" || memberID == "" || mapID == "" {
		return nil, apperr.InvalidArgument("workspace id, member id, and map id are required")
	}

	ws, err := s.repository.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	mapDef, ok := ws.Maps[mapID]
	if !ok {
		return nil, apperr.NotFoundf("map not found: %s", mapID).WithMeta("map_id", mapID)
	}
	progress := ws.Member(memberID).MapProgressFor(mapID)
	if progress == nil {
		return nil, apperr.NotInitialized("no progress on this map, initialize first").
			WithMeta("map_id", mapID)
	}

	return mapDef.ValidMoves(progress.CurrentLocation), nil
}

func (s *service) Progress(ctx context.Context, workspaceID, memberID, mapID string) (*game.MapProgress, error) {
	if workspaceID == "" || memberID == "" || mapID == "" {
		return nil, apperr.InvalidArgument("workspace id, member id, and map id are required")
	}

	ws, err := s.repository.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	progress := ws.Member(memberID).MapProgressFor(mapID)
	if progress == nil {
		return nil, apperr.NotInitialized("no progress on this map, initialize first").
			WithMeta("map_id", mapID)
	}
	return progress, nil
}

func isNeighbor(mapDef *game.MapDefinition, from, dest game.Coord) bool {
	for _, candidate := range mapDef.ValidMoves(from) {
		if candidate.Coord == dest {
			return true
		}
	}
	return false
}

// unlockFor returns the id of an inventory item the member holds that
// unlocks dest, or empty when none does
func unlockFor(ws *game.Workspace, member *game.Member, dest game.Coord) string {
	for itemID, qty := range member.Inventory {
		if qty <= 0 {
			continue
		}
		if item, ok := ws.Items[itemID]; ok && item.Unlocks(dest) {
			return itemID
		}
	}
	return ""
}

// unlockHint returns an item that would unlock dest, regardless of who
// holds it, so the rejection can point at a way in
func unlockHint(ws *game.Workspace, dest game.Coord) string {
	for itemID, item := range ws.Items {
		if item.Unlocks(dest) {
			return itemID
		}
	}
	return ""
}

// pruneRecentLocked drops expired dedup entries. Caller holds mu.
func (s *service) pruneRecentLocked() {
	cutoff := s.clock.Now().Add(-s.dedupWindow)
	for key, entry := range s.recent {
		if entry.at.Before(cutoff) {
			delete(s.recent, key)
		}
	}
}
