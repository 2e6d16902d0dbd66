package game

import (
	"encoding/json"
	"fmt"
)

// EffectType discriminates the closed set of effect variants
type EffectType string

const (
	EffectDisplayText      EffectType = "display_text"
	EffectGiveItem         EffectType = "give_item"
	EffectGiveCurrency     EffectType = "give_currency"
	EffectGiveRole         EffectType = "give_role"
	EffectRemoveRole       EffectType = "remove_role"
	EffectFollowUpAction   EffectType = "follow_up_action"
	EffectCalculateResults EffectType = "calculate_results"
	EffectCalculateAttack  EffectType = "calculate_attack"
)

// ClaimLimit bounds how often a grant effect may apply
type ClaimLimit string

const (
	LimitUnlimited     ClaimLimit = "unlimited"
	LimitOncePerMember ClaimLimit = "once_per_member"
	LimitOnceGlobally  ClaimLimit = "once_globally"
)

// AggregateScope scopes a calculate_results/calculate_attack delegation
type AggregateScope string

const (
	ScopeRound  AggregateScope = "round"
	ScopePlayer AggregateScope = "player"
)

// Effect is one step of an action's effect sequence. ID is assigned by
// the registry and keys claim records for limited grants.
type Effect struct {
	ID   string     `json:"id"`
	Type EffectType `json:"type"`

	// display_text
	Content string `json:"content,omitempty"`

	// give_item
	ItemID   string `json:"item_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	// give_currency; negative amounts are deductions clamped at zero
	Amount int `json:"amount,omitempty"`

	// give_item / give_currency
	Limit ClaimLimit `json:"limit,omitempty"`

	// give_role / remove_role
	RoleID string `json:"role_id,omitempty"`

	// follow_up_action
	TargetActionID string `json:"target_action_id,omitempty"`

	// calculate_results / calculate_attack
	Scope AggregateScope `json:"scope,omitempty"`
}

// UnmarshalJSON rejects unknown effect tags and limits at load time
func (e *Effect) UnmarshalJSON(data []byte) error {
	type alias Effect
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	effect := Effect(decoded)
	if err := effect.Normalize(); err != nil {
		return err
	}

	*e = effect
	return nil
}

// Normalize validates the tag, rejects unknown limits and scopes, and
// applies the defaults creation promises (quantity 1, unlimited limit).
func (e *Effect) Normalize() error {
	switch e.Type {
	case EffectDisplayText:
	case EffectGiveItem:
		if e.ItemID == "" {
			return fmt.Errorf("give_item effect requires item_id")
		}
		if e.Quantity <= 0 {
			e.Quantity = 1
		}
	case EffectGiveCurrency:
	case EffectGiveRole, EffectRemoveRole:
		if e.RoleID == "" {
			return fmt.Errorf("%s effect requires role_id", e.Type)
		}
	case EffectFollowUpAction:
		if e.TargetActionID == "" {
			return fmt.Errorf("follow_up_action effect requires target_action_id")
		}
	case EffectCalculateResults, EffectCalculateAttack:
		switch e.Scope {
		case ScopeRound, ScopePlayer:
		default:
			return fmt.Errorf("unknown aggregate scope %q", e.Scope)
		}
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}

	switch e.Type {
	case EffectGiveItem, EffectGiveCurrency:
		switch e.Limit {
		case "":
			e.Limit = LimitUnlimited
		case LimitUnlimited, LimitOncePerMember, LimitOnceGlobally:
		default:
			return fmt.Errorf("unknown claim limit %q", e.Limit)
		}
	}

	return nil
}

// Attachable reports whether the effect may join an open display bundle
func (e Effect) Attachable() bool {
	switch e.Type {
	case EffectGiveItem, EffectGiveCurrency, EffectFollowUpAction:
		return true
	}
	return false
}
