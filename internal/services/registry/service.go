package registry

//go:generate mockgen -destination=mock/mock_service.go -package=mockregistry -source=service.go

import (
	"context"
	"strings"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
	"github.com/wandergrid/explorer-bot-discord/internal/uuid"
)

// Caps are the per-workspace creation limits per entity category
type Caps struct {
	MaxActions int
	MaxItems   int
	MaxStores  int
}

// Service manages the entity/action registry of a workspace
type Service interface {
	// CreateAction registers a new custom action
	CreateAction(ctx context.Context, workspaceID string, input *CreateActionInput) (*game.CustomAction, error)

	// UpdateAction applies a partial merge and stamps LastModified
	UpdateAction(ctx context.Context, workspaceID, actionID string, input *UpdateActionInput) (*game.CustomAction, error)

	// DeleteAction removes an action and cleans up every reference to it
	DeleteAction(ctx context.Context, workspaceID, actionID string) error

	// GetAction resolves an action by id or legacy name
	GetAction(ctx context.Context, workspaceID, ref string) (*game.CustomAction, error)

	// ImportActions validates host-authored JSON and registers the actions
	ImportActions(ctx context.Context, workspaceID string, raw []byte) ([]*game.CustomAction, error)

	// FindActionByPhrase matches message content against keyword triggers
	FindActionByPhrase(ctx context.Context, workspaceID, content string) (*game.CustomAction, error)

	// CreateItem registers a new item
	CreateItem(ctx context.Context, workspaceID string, input *CreateItemInput) (*game.Item, error)

	// UpdateItem applies a partial merge and stamps LastModified
	UpdateItem(ctx context.Context, workspaceID, itemID string, input *UpdateItemInput) (*game.Item, error)

	// DeleteItem removes an item and strips it from every store listing
	DeleteItem(ctx context.Context, workspaceID, itemID string) error

	// GetItem resolves an item by id or legacy name
	GetItem(ctx context.Context, workspaceID, ref string) (*game.Item, error)

	// CreateStore registers a new store
	CreateStore(ctx context.Context, workspaceID string, input *CreateStoreInput) (*game.Store, error)

	// DeleteStore removes a store
	DeleteStore(ctx context.Context, workspaceID, storeID string) error

	// CreateMap registers a new exploration grid
	CreateMap(ctx context.Context, workspaceID string, input *CreateMapInput) (*game.MapDefinition, error)

	// AssignAction binds an action to a map cell
	AssignAction(ctx context.Context, workspaceID, mapID string, coord game.Coord, actionID string) error
}

// CreateActionInput contains data for creating an action
type CreateActionInput struct {
	Name        string
	Description string
	Trigger     game.Trigger
	Conditions  game.ConditionSet
	Effects     []game.Effect
	Coordinates []game.Coord
}

// UpdateActionInput contains the fields a partial update may set
type UpdateActionInput struct {
	Name        *string
	Description *string
	Trigger     *game.Trigger
	Conditions  *game.ConditionSet
	Effects     *[]game.Effect
	Coordinates *[]game.Coord
}

// CreateItemInput contains data for creating an item
type CreateItemInput struct {
	Name             string
	Description      string
	ReverseBlacklist []game.Coord
}

// UpdateItemInput contains the fields a partial update may set
type UpdateItemInput struct {
	Name             *string
	Description      *string
	ReverseBlacklist *[]game.Coord
}

// CreateStoreInput contains data for creating a store
type CreateStoreInput struct {
	Name        string
	Description string
	ItemIDs     []string
}

// CreateMapInput contains data for creating a map
type CreateMapInput struct {
	Name        string
	GridWidth   int
	GridHeight  int
	Scheme      game.AdjacencyScheme
	StartAt     game.Coord
	Blacklisted []game.Coord
}

// service implements the Service interface
type service struct {
	repository    workspaces.Repository
	uuidGenerator uuid.Generator
	clock         clock.Clock
	caps          Caps
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    workspaces.Repository // Required
	Caps          Caps                  // Required
	UUIDGenerator uuid.Generator        // Optional, will use default if nil
	Clock         clock.Clock           // Optional, will use system clock if nil
}

// NewService creates a new registry service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository: cfg.Repository,
		caps:       cfg.Caps,
	}

	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if cfg.Clock != nil {
		svc.clock = cfg.Clock
	} else {
		svc.clock = clock.NewReal()
	}

	return svc
}

// CreateAction registers a new custom action
func (s *service) CreateAction(ctx context.Context, workspaceID string, input *CreateActionInput) (*game.CustomAction, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.InvalidArgument("action name is required")
	}
	if err := input.Trigger.Validate(); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid trigger")
	}
	if err := input.Conditions.Validate(); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid conditions")
	}

	action := &game.CustomAction{
		ID:          s.uuidGenerator.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Trigger:     input.Trigger,
		Conditions:  input.Conditions,
		Effects:     input.Effects,
		Coordinates: input.Coordinates,
	}
	if action.Conditions.Logic == "" {
		action.Conditions.Logic = game.LogicAnd
	}
	for i := range action.Effects {
		if err := action.Effects[i].Normalize(); err != nil {
			return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid effect")
		}
		if action.Effects[i].ID == "" {
			action.Effects[i].ID = s.uuidGenerator.New()
		}
	}

	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if len(ws.Actions) >= s.caps.MaxActions {
			return apperr.LimitExceededf("workspace already has %d actions", len(ws.Actions)).
				WithMeta("category", "actions").
				WithMeta("cap", s.caps.MaxActions)
		}
		now := s.clock.Now()
		action.CreatedAt = now
		action.LastModified = now
		ws.Actions[action.ID] = action
		return nil
	})
	if err != nil {
		return nil, err
	}

	return action, nil
}

// UpdateAction applies a partial merge and stamps LastModified
func (s *service) UpdateAction(ctx context.Context, workspaceID, actionID string, input *UpdateActionInput) (*game.CustomAction, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}

	var updated *game.CustomAction
	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		action, ok := ws.Actions[actionID]
		if !ok {
			return apperr.NotFoundf("action not found: %s", actionID).
				WithMeta("action_id", actionID)
		}

		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return apperr.InvalidArgument("action name cannot be empty")
			}
			action.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			action.Description = *input.Description
		}
		if input.Trigger != nil {
			if err := input.Trigger.Validate(); err != nil {
				return apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid trigger")
			}
			action.Trigger = *input.Trigger
		}
		if input.Conditions != nil {
			if err := input.Conditions.Validate(); err != nil {
				return apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid conditions")
			}
			action.Conditions = *input.Conditions
		}
		if input.Effects != nil {
			effects := *input.Effects
			for i := range effects {
				if err := effects[i].Normalize(); err != nil {
					return apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid effect")
				}
				if effects[i].ID == "" {
					effects[i].ID = s.uuidGenerator.New()
				}
			}
			action.Effects = effects
		}
		if input.Coordinates != nil {
			action.Coordinates = *input.Coordinates
		}

		action.LastModified = s.clock.Now()
		updated = action
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteAction removes the action and walks the reference index to
// strip cell assignments and clear dangling follow-up targets.
func (s *service) DeleteAction(ctx context.Context, workspaceID, actionID string) error {
	return s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if _, ok := ws.Actions[actionID]; !ok {
			return apperr.NotFoundf("action not found: %s", actionID).
				WithMeta("action_id", actionID)
		}

		idx := ws.BuildReferenceIndex()
		delete(ws.Actions, actionID)

		// Clear follow-up effects targeting the deleted action
		for _, referrerID := range idx.ActionFollowUps[actionID] {
			referrer, ok := ws.Actions[referrerID]
			if !ok {
				continue
			}
			kept := referrer.Effects[:0]
			for _, effect := range referrer.Effects {
				if effect.Type == game.EffectFollowUpAction && effect.TargetActionID == actionID {
					continue
				}
				kept = append(kept, effect)
			}
			referrer.Effects = kept
			referrer.LastModified = s.clock.Now()
		}

		// Unassign from map cells
		for _, mapID := range idx.ActionCells[actionID] {
			mapDef, ok := ws.Maps[mapID]
			if !ok {
				continue
			}
			for _, cell := range mapDef.Coordinates {
				kept := cell.AssignedActionIDs[:0]
				for _, id := range cell.AssignedActionIDs {
					if id != actionID {
						kept = append(kept, id)
					}
				}
				cell.AssignedActionIDs = kept
			}
		}

		return nil
	})
}

// GetAction resolves an action by id or legacy name
func (s *service) GetAction(ctx context.Context, workspaceID, ref string) (*game.CustomAction, error) {
	ws, err := s.repository.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	action, ok := ws.ResolveAction(ref)
	if !ok {
		return nil, apperr.NotFoundf("action not found: %s", ref).
			WithMeta("action_ref", ref)
	}
	return action, nil
}

// FindActionByPhrase returns the first keyword-triggered action whose
// phrase list matches content, or NotFound when no trigger fires.
func (s *service) FindActionByPhrase(ctx context.Context, workspaceID, content string) (*game.CustomAction, error) {
	ws, err := s.repository.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	for _, action := range ws.Actions {
		if action.Trigger.Type != game.TriggerKeyword {
			continue
		}
		if action.Trigger.MatchesPhrase(content) {
			return action, nil
		}
	}
	return nil, apperr.NotFound("no action matches that phrase")
}

// CreateItem registers a new item
func (s *service) CreateItem(ctx context.Context, workspaceID string, input *CreateItemInput) (*game.Item, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.InvalidArgument("item name is required")
	}

	item := &game.Item{
		ID:               s.uuidGenerator.New(),
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		ReverseBlacklist: input.ReverseBlacklist,
	}

	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if len(ws.Items) >= s.caps.MaxItems {
			return apperr.LimitExceededf("workspace already has %d items", len(ws.Items)).
				WithMeta("category", "items").
				WithMeta("cap", s.caps.MaxItems)
		}
		now := s.clock.Now()
		item.CreatedAt = now
		item.LastModified = now
		ws.Items[item.ID] = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateItem applies a partial merge and stamps LastModified
func (s *service) UpdateItem(ctx context.Context, workspaceID, itemID string, input *UpdateItemInput) (*game.Item, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}

	var updated *game.Item
	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		item, ok := ws.Items[itemID]
		if !ok {
			return apperr.NotFoundf("item not found: %s", itemID).
				WithMeta("item_id", itemID)
		}

		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return apperr.InvalidArgument("item name cannot be empty")
			}
			item.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			item.Description = *input.Description
		}
		if input.ReverseBlacklist != nil {
			item.ReverseBlacklist = *input.ReverseBlacklist
		}

		item.LastModified = s.clock.Now()
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteItem removes the item and strips it from every store listing
func (s *service) DeleteItem(ctx context.Context, workspaceID, itemID string) error {
	return s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if _, ok := ws.Items[itemID]; !ok {
			return apperr.NotFoundf("item not found: %s", itemID).
				WithMeta("item_id", itemID)
		}

		idx := ws.BuildReferenceIndex()
		delete(ws.Items, itemID)

		for _, storeID := range idx.ItemStores[itemID] {
			store, ok := ws.Stores[storeID]
			if !ok {
				continue
			}
			if store.RemoveItem(itemID) {
				store.LastModified = s.clock.Now()
			}
		}

		return nil
	})
}

// GetItem resolves an item by id or legacy name
func (s *service) GetItem(ctx context.Context, workspaceID, ref string) (*game.Item, error) {
	ws, err := s.repository.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	item, ok := ws.ResolveItem(ref)
	if !ok {
		return nil, apperr.NotFoundf("item not found: %s", ref).
			WithMeta("item_ref", ref)
	}
	return item, nil
}

// CreateStore registers a new store
func (s *service) CreateStore(ctx context.Context, workspaceID string, input *CreateStoreInput) (*game.Store, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.InvalidArgument("store name is required")
	}

	store := &game.Store{
		ID:          s.uuidGenerator.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		ItemIDs:     input.ItemIDs,
	}

	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if len(ws.Stores) >= s.caps.MaxStores {
			return apperr.LimitExceededf("workspace already has %d stores", len(ws.Stores)).
				WithMeta("category", "stores").
				WithMeta("cap", s.caps.MaxStores)
		}
		for _, itemID := range store.ItemIDs {
			if _, ok := ws.Items[itemID]; !ok {
				return apperr.NotFoundf("item not found: %s", itemID).
					WithMeta("item_id", itemID)
			}
		}
		now := s.clock.Now()
		store.CreatedAt = now
		store.LastModified = now
		ws.Stores[store.ID] = store
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// DeleteStore removes a store
func (s *service) DeleteStore(ctx context.Context, workspaceID, storeID string) error {
	return s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if _, ok := ws.Stores[storeID]; !ok {
			return apperr.NotFoundf("store not found: %s", storeID).
				WithMeta("store_id", storeID)
		}
		delete(ws.Stores, storeID)
		return nil
	})
}

// CreateMap registers a new exploration grid
func (s *service) CreateMap(ctx context.Context, workspaceID string, input *CreateMapInput) (*game.MapDefinition, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.InvalidArgument("map name is required")
	}
	if input.GridWidth <= 0 || input.GridHeight <= 0 {
		return nil, apperr.InvalidArgument("grid dimensions must be positive")
	}

	mapDef := &game.MapDefinition{
		ID:         s.uuidGenerator.New(),
		Name:       strings.TrimSpace(input.Name),
		GridWidth:  input.GridWidth,
		GridHeight: input.GridHeight,
		Scheme:     input.Scheme,
		StartAt:    input.StartAt,
	}
	if !mapDef.InBounds(input.StartAt) {
		return nil, apperr.InvalidArgumentf("start coordinate %s is out of bounds", input.StartAt).
			WithMeta("coordinate", input.StartAt.String())
	}
	if len(input.Blacklisted) > 0 {
		mapDef.Blacklisted = make(map[game.Coord]bool, len(input.Blacklisted))
		for _, coord := range input.Blacklisted {
			if !mapDef.InBounds(coord) {
				return nil, apperr.InvalidArgumentf("blacklisted coordinate %s is out of bounds", coord).
					WithMeta("coordinate", coord.String())
			}
			mapDef.Blacklisted[coord] = true
		}
	}

	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		now := s.clock.Now()
		mapDef.CreatedAt = now
		mapDef.LastModified = now
		ws.Maps[mapDef.ID] = mapDef
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapDef, nil
}

// AssignAction binds an action to a map cell
func (s *service) AssignAction(ctx context.Context, workspaceID, mapID string, coord game.Coord, actionID string) error {
	return s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		mapDef, ok := ws.Maps[mapID]
		if !ok {
			return apperr.NotFoundf("map not found: %s", mapID).WithMeta("map_id", mapID)
		}
		if !mapDef.InBounds(coord) {
			return apperr.InvalidArgumentf("coordinate %s is out of bounds", coord).
				WithMeta("coordinate", coord.String())
		}
		if _, ok := ws.Actions[actionID]; !ok {
			return apperr.NotFoundf("action not found: %s", actionID).
				WithMeta("action_id", actionID)
		}

		cell := mapDef.Cell(coord)
		for _, id := range cell.AssignedActionIDs {
			if id == actionID {
				return nil // already assigned
			}
		}
		cell.AssignedActionIDs = append(cell.AssignedActionIDs, actionID)
		mapDef.LastModified = s.clock.Now()

		action := ws.Actions[actionID]
		action.Coordinates = append(action.Coordinates, coord)
		return nil
	})
}
