package game

import (
	"time"
)

// MovementRecord is one committed move
type MovementRecord struct {
	From Coord     `json:"from"`
	To   Coord     `json:"to"`
	At   time.Time `json:"at"`
}

// maxMovementHistory bounds the persisted history per (member, map)
const maxMovementHistory = 200

// MapProgress tracks one member's position and exploration on one map.
// Created on first map initialization and never deleted.
type MapProgress struct {
	CurrentLocation Coord            `json:"current_location"`
	Explored        map[Coord]bool   `json:"explored_coordinates,omitempty"`
	History         []MovementRecord `json:"movement_history,omitempty"`
}

// RecordMove commits a move into the progress state
func (p *MapProgress) RecordMove(from, to Coord, at time.Time) {
	p.CurrentLocation = to
	if p.Explored == nil {
		p.Explored = make(map[Coord]bool)
	}
	p.Explored[to] = true
	p.History = append(p.History, MovementRecord{From: from, To: to, At: at})
	if len(p.History) > maxMovementHistory {
		p.History = p.History[len(p.History)-maxMovementHistory:]
	}
}

// Member is one participant's mutable game state within a workspace
type Member struct {
	ID        string                   `json:"id"`
	Currency  int                      `json:"currency"`
	Inventory map[string]int           `json:"inventory,omitempty"`
	Roles     map[string]bool          `json:"roles,omitempty"`
	Pools     map[string]*ResourcePool `json:"resource_pools,omitempty"`
	Progress  map[string]*MapProgress  `json:"map_progress,omitempty"`
	Claims    map[string]bool          `json:"claims,omitempty"`
}

// NewMember creates an empty member record
func NewMember(id string) *Member {
	return &Member{ID: id}
}

// AddCurrency applies a delta, clamping the balance at zero
func (m *Member) AddCurrency(delta int) {
	m.Currency += delta
	if m.Currency < 0 {
		m.Currency = 0
	}
}

// ItemCount returns the held quantity of itemID
func (m *Member) ItemCount(itemID string) int {
	return m.Inventory[itemID]
}

// AddItem grants qty of itemID
func (m *Member) AddItem(itemID string, qty int) {
	if qty <= 0 {
		return
	}
	if m.Inventory == nil {
		m.Inventory = make(map[string]int)
	}
	m.Inventory[itemID] += qty
}

// RemoveItem removes up to qty of itemID, returning how many came off
func (m *Member) RemoveItem(itemID string, qty int) int {
	held := m.Inventory[itemID]
	if held == 0 || qty <= 0 {
		return 0
	}
	if qty > held {
		qty = held
	}
	if qty == held {
		delete(m.Inventory, itemID)
	} else {
		m.Inventory[itemID] = held - qty
	}
	return qty
}

// GrantRole adds a role idempotently
func (m *Member) GrantRole(roleID string) {
	if m.Roles == nil {
		m.Roles = make(map[string]bool)
	}
	m.Roles[roleID] = true
}

// RevokeRole removes a role idempotently
func (m *Member) RevokeRole(roleID string) {
	delete(m.Roles, roleID)
}

// HasClaimed reports whether the member already claimed effectID
func (m *Member) HasClaimed(effectID string) bool {
	return m.Claims[effectID]
}

// RecordClaim marks effectID as claimed. Claim records are never removed.
func (m *Member) RecordClaim(effectID string) {
	if m.Claims == nil {
		m.Claims = make(map[string]bool)
	}
	m.Claims[effectID] = true
}

// Pool returns the named pool, creating it from defaults on first need
func (m *Member) Pool(name string, defaults PoolDefaults, now time.Time) *ResourcePool {
	if m.Pools == nil {
		m.Pools = make(map[string]*ResourcePool)
	}
	pool, ok := m.Pools[name]
	if !ok {
		pool = NewResourcePool(defaults.Max, defaults.RegenInterval, defaults.RegenAmount, now)
		m.Pools[name] = pool
	}
	return pool
}

// MapProgressFor returns progress on mapID, or nil when uninitialized
func (m *Member) MapProgressFor(mapID string) *MapProgress {
	return m.Progress[mapID]
}

// InitProgress creates progress for mapID at the map's start cell.
// It is a no-op when progress already exists.
func (m *Member) InitProgress(mapID string, start Coord) *MapProgress {
	if m.Progress == nil {
		m.Progress = make(map[string]*MapProgress)
	}
	if existing, ok := m.Progress[mapID]; ok {
		return existing
	}
	progress := &MapProgress{
		CurrentLocation: start,
		Explored:        map[Coord]bool{start: true},
	}
	m.Progress[mapID] = progress
	return progress
}

// EvalStateFor snapshots the member state conditions read, located on
// the given map when progress exists.
func (m *Member) EvalStateFor(mapID string) EvalState {
	state := EvalState{
		Currency:  m.Currency,
		Inventory: m.Inventory,
	}
	if progress := m.MapProgressFor(mapID); progress != nil {
		loc := progress.CurrentLocation
		state.Location = &loc
	}
	return state
}

// PoolDefaults parameterizes pools created on first need
type PoolDefaults struct {
	Max           int
	RegenInterval time.Duration
	RegenAmount   int
}
