package workspaces

import (
	"context"
	"encoding/json"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	locks      *keyedMutex
	clock      clock.Clock
	workspaces map[string][]byte // serialized, matching the redis boundary
}

// NewInMemoryRepository creates a new in-memory workspace repository
func NewInMemoryRepository(clk clock.Clock) Repository {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &inMemoryRepository{
		locks:      newKeyedMutex(),
		clock:      clk,
		workspaces: make(map[string][]byte),
	}
}

// Get returns a snapshot of the workspace
func (r *inMemoryRepository) Get(ctx context.Context, workspaceID string) (*game.Workspace, error) {
	mu := r.locks.lock(workspaceID)
	defer mu.Unlock()

	data, exists := r.workspaces[workspaceID]
	if !exists {
		return nil, apperr.NotFoundf("workspace not found: %s", workspaceID).
			WithMeta("workspace_id", workspaceID)
	}

	var ws game.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize workspace")
	}
	return &ws, nil
}

// Mutate applies fn under the workspace's lock. The aggregate is
// round-tripped through JSON so a failing fn leaves stored state
// untouched.
func (r *inMemoryRepository) Mutate(ctx context.Context, workspaceID string, fn MutateFunc) error {
	if workspaceID == "" {
		return apperr.InvalidArgument("workspace ID cannot be empty")
	}
	if fn == nil {
		return apperr.InvalidArgument("mutate function cannot be nil")
	}

	mu := r.locks.lock(workspaceID)
	defer mu.Unlock()

	now := r.clock.Now()

	var ws *game.Workspace
	if data, exists := r.workspaces[workspaceID]; exists {
		ws = &game.Workspace{}
		if err := json.Unmarshal(data, ws); err != nil {
			return apperr.Wrap(err, "failed to deserialize workspace")
		}
	} else {
		ws = game.NewWorkspace(workspaceID, now)
	}

	if err := fn(ws); err != nil {
		return err
	}

	ws.LastModified = now

	data, err := json.Marshal(ws)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize workspace")
	}
	r.workspaces[workspaceID] = data

	return nil
}
