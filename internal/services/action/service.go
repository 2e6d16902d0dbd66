package action

//go:generate mockgen -destination=mock/mock_service.go -package=mockaction -source=service.go

import (
	"context"
	"log"

	"github.com/wandergrid/explorer-bot-discord/internal/clock"
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
)

// Skip reasons recorded on effect outcomes
const (
	SkipAlreadyClaimed    = "already_claimed"
	SkipEntityNotFound    = "entity_not_found"
	SkipFollowUpCycle     = "follow_up_cycle"
	SkipFollowUpDepth     = "follow_up_depth"
	SkipConditionsNotMet  = "conditions_not_met"
	SkipAggregatorFailure = "aggregator_failed"
)

const defaultMaxFollowUpDepth = 8

// Aggregator computes round- or player-scoped summaries for the
// calculate_results and calculate_attack effects. The executor only
// passes control and captures the summary for rendering.
type Aggregator interface {
	Aggregate(ctx context.Context, workspaceID, memberID string, scope game.AggregateScope) (string, error)
}

// EffectOutcome is one entry of the ordered execution log
type EffectOutcome struct {
	ActionID   string      `json:"action_id"`
	Effect     game.Effect `json:"effect"`
	Applied    bool        `json:"applied"`
	SkipReason string      `json:"skip_reason,omitempty"`
	Summary    string      `json:"summary,omitempty"`
}

// ExecutionResult is what the presentation layer renders after a run
type ExecutionResult struct {
	ActionID   string          `json:"action_id"`
	ActionName string          `json:"action_name"`
	Outcomes   []EffectOutcome `json:"outcomes"`
	Bundles    []Bundle        `json:"bundles"`
}

// ExecuteOptions carries per-invocation context
type ExecuteOptions struct {
	// MapID locates the member for at_coordinate conditions. Empty when
	// the trigger did not originate from a map cell.
	MapID string
}

// Service executes custom actions against member state
type Service interface {
	// ExecuteAction resolves, gates, and runs an action for a member
	ExecuteAction(ctx context.Context, workspaceID, memberID, actionRef string, opts *ExecuteOptions) (*ExecutionResult, error)
}

// service implements the Service interface
type service struct {
	repository workspaces.Repository
	aggregator Aggregator
	clock      clock.Clock
	maxDepth   int
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository workspaces.Repository // Required
	Aggregator Aggregator            // Required
	Clock      clock.Clock           // Optional, will use system clock if nil
	MaxDepth   int                   // Optional, follow-up chain cap
}

// NewService creates a new action executor service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Aggregator == nil {
		panic("aggregator is required")
	}

	svc := &service{
		repository: cfg.Repository,
		aggregator: cfg.Aggregator,
		maxDepth:   cfg.MaxDepth,
	}
	if svc.maxDepth <= 0 {
		svc.maxDepth = defaultMaxFollowUpDepth
	}
	if cfg.Clock != nil {
		svc.clock = cfg.Clock
	} else {
		svc.clock = clock.NewReal()
	}

	return svc
}

// ExecuteAction resolves the action, evaluates its condition set, and
// applies its effect sequence in declared order. The whole run happens
// inside one repository transaction: a ConditionsNotMet or missing
// entity leaves no state behind.
func (s *service) ExecuteAction(ctx context.Context, workspaceID, memberID, actionRef string, opts *ExecuteOptions) (*ExecutionResult, error) {
	if opts == nil {
		opts = &ExecuteOptions{}
	}

	var result *ExecutionResult
	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		action, ok := ws.ResolveAction(actionRef)
		if !ok {
			return apperr.NotFoundf("action not found: %s", actionRef).
				WithMeta("action_ref", actionRef)
		}

		member := ws.Member(memberID)
		passed, failed := action.Conditions.Evaluate(member.EvalStateFor(opts.MapID))
		if !passed {
			condErr := apperr.ConditionsNotMet("conditions not met").
				WithMeta("action_id", action.ID)
			if failed != nil {
				condErr = condErr.WithMeta("failed_condition", failed.Describe())
			}
			return condErr
		}

		run := &execution{
			service:     s,
			ctx:         ctx,
			ws:          ws,
			member:      member,
			mapID:       opts.MapID,
			workspaceID: workspaceID,
			visited:     map[string]bool{action.ID: true},
		}
		run.applyEffects(action, 0)

		result = &ExecutionResult{
			ActionID:   action.ID,
			ActionName: action.Name,
			Outcomes:   run.outcomes,
			Bundles:    BuildBundles(action.Effects),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// execution carries the state of one action run, including the chain
// of visited actions guarding follow-up recursion.
type execution struct {
	service     *service
	ctx         context.Context
	ws          *game.Workspace
	member      *game.Member
	mapID       string
	workspaceID string
	visited     map[string]bool
	outcomes    []EffectOutcome
}

func (r *execution) applyEffects(action *game.CustomAction, depth int) {
	for i := range action.Effects {
		r.applyEffect(action, action.Effects[i], depth)
	}
}

// applyEffect applies a single effect. Effects are independent: a
// skipped or failed effect never aborts the rest of the sequence.
func (r *execution) applyEffect(action *game.CustomAction, effect game.Effect, depth int) {
	outcome := EffectOutcome{ActionID: action.ID, Effect: effect}

	switch effect.Type {
	case game.EffectDisplayText:
		outcome.Applied = true

	case game.EffectGiveItem:
		if _, ok := r.ws.Items[effect.ItemID]; !ok {
			outcome.SkipReason = SkipEntityNotFound
			log.Printf("action %s: give_item references missing item %s", action.ID, effect.ItemID)
			break
		}
		if reason := r.checkClaim(effect); reason != "" {
			outcome.SkipReason = reason
			break
		}
		r.member.AddItem(effect.ItemID, effect.Quantity)
		r.recordClaim(effect)
		outcome.Applied = true

	case game.EffectGiveCurrency:
		if reason := r.checkClaim(effect); reason != "" {
			outcome.SkipReason = reason
			break
		}
		r.member.AddCurrency(effect.Amount)
		r.recordClaim(effect)
		outcome.Applied = true

	case game.EffectGiveRole:
		r.member.GrantRole(effect.RoleID)
		outcome.Applied = true

	case game.EffectRemoveRole:
		r.member.RevokeRole(effect.RoleID)
		outcome.Applied = true

	case game.EffectFollowUpAction:
		r.followUp(action, effect, depth)
		return

	case game.EffectCalculateResults, game.EffectCalculateAttack:
		summary, err := r.service.aggregator.Aggregate(r.ctx, r.workspaceID, r.member.ID, effect.Scope)
		if err != nil {
			outcome.SkipReason = SkipAggregatorFailure
			log.Printf("action %s: aggregation failed: %v", action.ID, err)
			break
		}
		outcome.Applied = true
		outcome.Summary = summary
	}

	r.outcomes = append(r.outcomes, outcome)
}

// followUp recursively executes a target action through the same
// executor, appending its outcome (and, on success, the target's own
// outcomes) to the log. The target's own conditions still gate it;
// cycles and over-deep chains are recorded, never followed.
func (r *execution) followUp(action *game.CustomAction, effect game.Effect, depth int) {
	outcome := EffectOutcome{ActionID: action.ID, Effect: effect}

	target, ok := r.ws.Actions[effect.TargetActionID]
	if !ok {
		outcome.SkipReason = SkipEntityNotFound
		log.Printf("action %s: follow-up references missing action %s", action.ID, effect.TargetActionID)
		r.outcomes = append(r.outcomes, outcome)
		return
	}
	if r.visited[target.ID] {
		outcome.SkipReason = SkipFollowUpCycle
		log.Printf("action %s: follow-up chain revisits action %s", action.ID, target.ID)
		r.outcomes = append(r.outcomes, outcome)
		return
	}
	if depth+1 >= r.service.maxDepth {
		outcome.SkipReason = SkipFollowUpDepth
		log.Printf("action %s: follow-up chain exceeds depth %d", action.ID, r.service.maxDepth)
		r.outcomes = append(r.outcomes, outcome)
		return
	}

	passed, _ := target.Conditions.Evaluate(r.member.EvalStateFor(r.mapID))
	if !passed {
		outcome.SkipReason = SkipConditionsNotMet
		r.outcomes = append(r.outcomes, outcome)
		return
	}

	outcome.Applied = true
	r.outcomes = append(r.outcomes, outcome)

	r.visited[target.ID] = true
	r.applyEffects(target, depth+1)
	delete(r.visited, target.ID)
}

// checkClaim returns a skip reason when the effect's limit blocks it
func (r *execution) checkClaim(effect game.Effect) string {
	switch effect.Limit {
	case game.LimitOncePerMember:
		if r.member.HasClaimed(effect.ID) {
			return SkipAlreadyClaimed
		}
	case game.LimitOnceGlobally:
		if r.ws.HasGlobalClaim(effect.ID) {
			return SkipAlreadyClaimed
		}
	}
	return ""
}

// recordClaim durably marks a limited grant as claimed
func (r *execution) recordClaim(effect game.Effect) {
	switch effect.Limit {
	case game.LimitOncePerMember:
		r.member.RecordClaim(effect.ID)
	case game.LimitOnceGlobally:
		r.ws.RecordGlobalClaim(effect.ID)
	}
}
