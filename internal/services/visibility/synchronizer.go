package visibility

//go:generate mockgen -destination=mock/mock_synchronizer.go -package=mockvisibility -source=synchronizer.go

import (
	"context"
)

// Synchronizer mirrors a member's location into channel access. Sync
// grants the new channel before revoking the old one so the member is
// never left without a visible location. Callers treat failures as
// repairable: the committed location is authoritative.
type Synchronizer interface {
	Sync(ctx context.Context, memberID, oldChannelRef, newChannelRef string) error
}

// Noop satisfies Synchronizer for maps whose cells carry no channels
type Noop struct{}

func (Noop) Sync(_ context.Context, _, _, _ string) error {
	return nil
}
