package game

import (
	"time"

	googleuuid "github.com/google/uuid"
)

// CustomAction is a host-defined action: a trigger, a condition gate,
// and an ordered effect sequence, optionally bound to map coordinates.
type CustomAction struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Trigger      Trigger      `json:"trigger"`
	Conditions   ConditionSet `json:"conditions"`
	Effects      []Effect     `json:"effects"`
	Coordinates  []Coord      `json:"coordinates,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	LastModified time.Time    `json:"last_modified"`
}

// Identifier distinguishes canonical entity ids from legacy free-text
// references that predate id-based storage. All resolution funnels
// through ParseIdentifier + the workspace Resolve helpers.
type Identifier struct {
	Canonical string
	Legacy    string
}

// IsCanonical reports whether the identifier carries a canonical id
func (i Identifier) IsCanonical() bool {
	return i.Canonical != ""
}

// ParseIdentifier classifies a raw reference. UUIDs are canonical ids;
// anything else is treated as a legacy name.
func ParseIdentifier(raw string) Identifier {
	if _, err := googleuuid.Parse(raw); err == nil {
		return Identifier{Canonical: raw}
	}
	return Identifier{Legacy: raw}
}
