package action

import (
	"context"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
)

// NoopAggregator stands in when no aggregation collaborator is wired.
// Calculate effects still apply, with an empty summary.
type NoopAggregator struct{}

func (NoopAggregator) Aggregate(_ context.Context, _, _ string, _ game.AggregateScope) (string, error) {
	return "", nil
}
