package game

import (
	"strings"
	"time"
)

// Workspace is the top-level tenant aggregate: one per hosted
// community, owning every entity below it. It is the unit of
// persistence and of mutation serialization.
type Workspace struct {
	ID           string                    `json:"id"`
	Actions      map[string]*CustomAction  `json:"actions,omitempty"`
	Items        map[string]*Item          `json:"items,omitempty"`
	Stores       map[string]*Store         `json:"stores,omitempty"`
	Maps         map[string]*MapDefinition `json:"maps,omitempty"`
	Members      map[string]*Member        `json:"members,omitempty"`
	GlobalClaims map[string]bool           `json:"global_claims,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	LastModified time.Time                 `json:"last_modified"`
}

// NewWorkspace creates an empty workspace
func NewWorkspace(id string, now time.Time) *Workspace {
	return &Workspace{
		ID:           id,
		Actions:      make(map[string]*CustomAction),
		Items:        make(map[string]*Item),
		Stores:       make(map[string]*Store),
		Maps:         make(map[string]*MapDefinition),
		Members:      make(map[string]*Member),
		CreatedAt:    now,
		LastModified: now,
	}
}

// Member returns the member record, creating it on first touch
func (w *Workspace) Member(memberID string) *Member {
	if w.Members == nil {
		w.Members = make(map[string]*Member)
	}
	member, ok := w.Members[memberID]
	if !ok {
		member = NewMember(memberID)
		w.Members[memberID] = member
	}
	return member
}

// HasGlobalClaim reports whether effectID was claimed by anyone
func (w *Workspace) HasGlobalClaim(effectID string) bool {
	return w.GlobalClaims[effectID]
}

// RecordGlobalClaim marks effectID as globally claimed
func (w *Workspace) RecordGlobalClaim(effectID string) {
	if w.GlobalClaims == nil {
		w.GlobalClaims = make(map[string]bool)
	}
	w.GlobalClaims[effectID] = true
}

// ResolveAction resolves an action reference, canonical id first, then
// legacy case-insensitive name lookup.
func (w *Workspace) ResolveAction(ref string) (*CustomAction, bool) {
	ident := ParseIdentifier(ref)
	if ident.IsCanonical() {
		action, ok := w.Actions[ident.Canonical]
		return action, ok
	}
	// Direct key match still wins for non-uuid ids
	if action, ok := w.Actions[ref]; ok {
		return action, true
	}
	for _, action := range w.Actions {
		if strings.EqualFold(action.Name, ident.Legacy) {
			return action, true
		}
	}
	return nil, false
}

// ResolveItem resolves an item reference, canonical id first, then
// legacy case-insensitive name lookup.
func (w *Workspace) ResolveItem(ref string) (*Item, bool) {
	ident := ParseIdentifier(ref)
	if ident.IsCanonical() {
		item, ok := w.Items[ident.Canonical]
		return item, ok
	}
	if item, ok := w.Items[ref]; ok {
		return item, true
	}
	for _, item := range w.Items {
		if strings.EqualFold(item.Name, ident.Legacy) {
			return item, true
		}
	}
	return nil, false
}

// ReferenceIndex is a reverse index from entity id to its referrers,
// built per mutation so cascade deletes walk references instead of
// scanning every entity ad hoc.
type ReferenceIndex struct {
	// item id -> store ids listing it
	ItemStores map[string][]string
	// action id -> action ids whose follow_up effects target it
	ActionFollowUps map[string][]string
	// action id -> map ids with cells assigning it
	ActionCells map[string][]string
}

// BuildReferenceIndex walks the workspace once and indexes referrers
func (w *Workspace) BuildReferenceIndex() *ReferenceIndex {
	idx := &ReferenceIndex{
		ItemStores:      make(map[string][]string),
		ActionFollowUps: make(map[string][]string),
		ActionCells:     make(map[string][]string),
	}

	for storeID, store := range w.Stores {
		seen := make(map[string]bool)
		for _, itemID := range store.ItemIDs {
			if !seen[itemID] {
				idx.ItemStores[itemID] = append(idx.ItemStores[itemID], storeID)
				seen[itemID] = true
			}
		}
	}

	for actionID, action := range w.Actions {
		for i := range action.Effects {
			if action.Effects[i].Type == EffectFollowUpAction {
				target := action.Effects[i].TargetActionID
				idx.ActionFollowUps[target] = append(idx.ActionFollowUps[target], actionID)
			}
		}
	}

	for mapID, mapDef := range w.Maps {
		indexed := make(map[string]bool)
		for _, cell := range mapDef.Coordinates {
			for _, actionID := range cell.AssignedActionIDs {
				if !indexed[actionID] {
					idx.ActionCells[actionID] = append(idx.ActionCells[actionID], mapID)
					indexed[actionID] = true
				}
			}
		}
	}

	return idx
}
