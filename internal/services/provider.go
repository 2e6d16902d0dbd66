package services

import (
	"time"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/config"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
	actionService "github.com/wandergrid/explorer-bot-discord/internal/services/action"
	movementService "github.com/wandergrid/explorer-bot-discord/internal/services/movement"
	poolService "github.com/wandergrid/explorer-bot-discord/internal/services/pool"
	registryService "github.com/wandergrid/explorer-bot-discord/internal/services/registry"
	"github.com/wandergrid/explorer-bot-discord/internal/services/visibility"
)

// Provider holds all service instances
type Provider struct {
	RegistryService registryService.Service
	ActionService   actionService.Service
	PoolService     poolService.Service
	MovementService movementService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Repository   workspaces.Repository   // Optional, in-memory if nil
	Synchronizer visibility.Synchronizer // Optional, visibility sync skipped if nil
	Aggregator   actionService.Aggregator
	Clock        clock.Clock
	Game         config.GameConfig
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewReal()
	}

	repo := cfg.Repository
	if repo == nil {
		repo = workspaces.NewInMemoryRepository(clk)
	}

	aggregator := cfg.Aggregator
	if aggregator == nil {
		aggregator = actionService.NoopAggregator{}
	}

	gameCfg := withGameDefaults(cfg.Game)
	poolDefaults := game.PoolDefaults{
		Max:           gameCfg.StaminaMax,
		RegenInterval: gameCfg.StaminaRegenInterval,
		RegenAmount:   gameCfg.StaminaRegenAmount,
	}

	registry := registryService.NewService(&registryService.ServiceConfig{
		Repository: repo,
		Clock:      clk,
		Caps: registryService.Caps{
			MaxActions: gameCfg.MaxActions,
			MaxItems:   gameCfg.MaxItems,
			MaxStores:  gameCfg.MaxStores,
		},
	})

	actions := actionService.NewService(&actionService.ServiceConfig{
		Repository: repo,
		Aggregator: aggregator,
		Clock:      clk,
		MaxDepth:   gameCfg.MaxFollowUpDepth,
	})

	pools := poolService.NewService(&poolService.ServiceConfig{
		Repository: repo,
		Defaults:   poolDefaults,
		Clock:      clk,
	})

	moves := movementService.NewService(&movementService.ServiceConfig{
		Repository:   repo,
		Synchronizer: cfg.Synchronizer,
		Clock:        clk,
		PoolDefaults: poolDefaults,
		MoveCost:     gameCfg.MoveCost,
		DedupWindow:  gameCfg.DedupWindow,
	})

	return &Provider{
		RegistryService: registry,
		ActionService:   actions,
		PoolService:     pools,
		MovementService: moves,
	}
}

func withGameDefaults(cfg config.GameConfig) config.GameConfig {
	if cfg.StaminaMax <= 0 {
		cfg.StaminaMax = 5
	}
	if cfg.StaminaRegenInterval <= 0 {
		cfg.StaminaRegenInterval = 10 * time.Minute
	}
	if cfg.StaminaRegenAmount <= 0 {
		cfg.StaminaRegenAmount = 1
	}
	if cfg.MoveCost <= 0 {
		cfg.MoveCost = 1
	}
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = 100
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 200
	}
	if cfg.MaxStores <= 0 {
		cfg.MaxStores = 25
	}
	if cfg.MaxFollowUpDepth <= 0 {
		cfg.MaxFollowUpDepth = 8
	}
	return cfg
}
