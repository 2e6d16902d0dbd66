package workspaces

//go:generate mockgen -destination=mock/mock_repository.go -package=mockworkspaces -source=repository.go

import (
	"context"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
)

// MutateFunc edits a workspace inside a Mutate transaction. Returning
// an error discards every change made to the aggregate.
type MutateFunc func(ws *game.Workspace) error

// Repository stores workspace aggregates. Mutations go through Mutate,
// the explicit load-mutate-save boundary; implementations serialize
// Mutate calls per workspace id so concurrent interactions cannot lose
// updates.
type Repository interface {
	// Get returns a snapshot of the workspace. Callers must not expect
	// later mutations to be visible in the returned value.
	Get(ctx context.Context, workspaceID string) (*game.Workspace, error)

	// Mutate loads the workspace (creating an empty one on first
	// touch), applies fn, and persists the result atomically. Nothing
	// is written when fn returns an error.
	Mutate(ctx context.Context, workspaceID string, fn MutateFunc) error
}
