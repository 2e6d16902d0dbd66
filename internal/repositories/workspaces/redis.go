package workspaces

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
)

const workspaceKeyPrefix = "workspace:"

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient // Required
	Clock  clock.Clock           // Optional, system clock if nil
}

// redisRepository implements Repository using Redis. Workspaces persist
// as one JSON blob per key; the load-mutate-save cycle runs inside a
// process-local per-workspace mutex. The bot runs as a single logical
// process, so local serialization is sufficient.
type redisRepository struct {
	client redis.UniversalClient
	clock  clock.Clock
	locks  *keyedMutex
}

// NewRedisRepository creates a new Redis-backed workspace repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewReal()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  clk,
		locks:  newKeyedMutex(),
	}
}

// Get returns a snapshot of the workspace
func (r *redisRepository) Get(ctx context.Context, workspaceID string) (*game.Workspace, error) {
	data, err := r.client.Get(ctx, workspaceKeyPrefix+workspaceID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFoundf("workspace not found: %s", workspaceID).
				WithMeta("workspace_id", workspaceID)
		}
		return nil, apperr.Wrap(err, "failed to get workspace")
	}

	var ws game.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize workspace")
	}
	return &ws, nil
}

// GetMulti fetches several workspaces concurrently, skipping missing ids
func (r *redisRepository) GetMulti(ctx context.Context, workspaceIDs []string) ([]*game.Workspace, error) {
	results := make([]*game.Workspace, len(workspaceIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, id := range workspaceIDs {
		i, id := i, id
		g.Go(func() error {
			ws, err := r.Get(ctx, id)
			if err != nil {
				if apperr.IsNotFound(err) {
					return nil
				}
				return err
			}
			results[i] = ws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := make([]*game.Workspace, 0, len(results))
	for _, ws := range results {
		if ws != nil {
			found = append(found, ws)
		}
	}
	return found, nil
}

// Mutate loads, edits, and writes back the workspace blob under the
// workspace's lock. Nothing is written when fn fails.
func (r *redisRepository) Mutate(ctx context.Context, workspaceID string, fn MutateFunc) error {
	if workspaceID == "" {
		return apperr.InvalidArgument("workspace ID cannot be empty")
	}
	if fn == nil {
		return apperr.InvalidArgument("mutate function cannot be nil")
	}

	mu := r.locks.lock(workspaceID)
	defer mu.Unlock()

	now := r.clock.Now()
	key := workspaceKeyPrefix + workspaceID

	var ws *game.Workspace
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		ws = &game.Workspace{}
		if unmarshalErr := json.Unmarshal(data, ws); unmarshalErr != nil {
			return apperr.Wrap(unmarshalErr, "failed to deserialize workspace")
		}
	case errors.Is(err, redis.Nil):
		ws = game.NewWorkspace(workspaceID, now)
	default:
		return apperr.Wrap(err, "failed to load workspace")
	}

	if err := fn(ws); err != nil {
		return err
	}

	ws.LastModified = now

	serialized, err := json.Marshal(ws)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize workspace")
	}

	if err := r.client.Set(ctx, key, serialized, 0).Err(); err != nil {
		return apperr.Wrap(err, "failed to save workspace")
	}

	return nil
}
