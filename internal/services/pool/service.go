package pool

//go:generate mockgen -destination=mock/mock_service.go -package=mockpool -source=service.go

import (
	"context"
	"time"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
)

// ResourceStatus is a point-in-time view of a member's pool
type ResourceStatus struct {
	Pool           string        `json:"pool"`
	Current        int           `json:"current"`
	Max            int           `json:"max"`
	TimeUntilRegen time.Duration `json:"time_until_regen"`
}

// Service reports resource pool balances
type Service interface {
	// GetResourceStatus recomputes and returns the member's pool state
	GetResourceStatus(ctx context.Context, workspaceID, memberID, poolName string) (*ResourceStatus, error)
}

type service struct {
	repository workspaces.Repository
	defaults   game.PoolDefaults
	clock      clock.Clock
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository workspaces.Repository // Required
	Defaults   game.PoolDefaults     // Required, parameters for pools created on first read
	Clock      clock.Clock           // Optional, will use system clock if nil
}

// NewService creates a new resource pool service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Defaults.Max <= 0 {
		panic("pool defaults are required")
	}

	svc := &service{
		repository: cfg.Repository,
		defaults:   cfg.Defaults,
	}
	if cfg.Clock != nil {
		svc.clock = cfg.Clock
	} else {
		svc.clock = clock.NewReal()
	}

	return svc
}

// GetResourceStatus goes through Mutate rather than Get so the lazy
// regeneration it applies is persisted, keeping storage in step with
// what the member was shown.
func (s *service) GetResourceStatus(ctx context.Context, workspaceID, memberID, poolName string) (*ResourceStatus, error) {
	if workspaceID == "" || memberID == "" {
		return nil, apperr.InvalidArgument("workspace id and member id are required")
	}
	if poolName == "" {
		poolName = game.StaminaPool
	}

	var status *ResourceStatus
	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		now := s.clock.Now()
		pool := ws.Member(memberID).Pool(poolName, s.defaults, now)
		pool.Recompute(now)

		status = &ResourceStatus{
			Pool:    poolName,
			Current: pool.Current,
			Max:     pool.Max,
		}
		if pool.Current < pool.Max {
			status.TimeUntilRegen = pool.TimeUntilNextRegen(now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return status, nil
}
