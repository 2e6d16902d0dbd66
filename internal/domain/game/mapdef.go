package game

import (
	"time"
)

// AdjacencyScheme selects which neighbors count as one move
type AdjacencyScheme string

const (
	// SchemeAdjacent8 allows all eight surrounding cells
	SchemeAdjacent8 AdjacencyScheme = "adjacent8"
	// SchemeCardinal4 allows north/east/south/west only
	SchemeCardinal4 AdjacencyScheme = "cardinal4"
)

// CellState is the persisted state of one grid cell
type CellState struct {
	ChannelRef        string   `json:"channel_ref,omitempty"`
	BaseContent       string   `json:"base_content,omitempty"`
	AssignedActionIDs []string `json:"assigned_action_ids,omitempty"`
	FogImageURL       string   `json:"fog_image_url,omitempty"`
}

// MapDefinition is a host-authored exploration grid
type MapDefinition struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	GridWidth    int                  `json:"grid_width"`
	GridHeight   int                  `json:"grid_height"`
	Scheme       AdjacencyScheme      `json:"scheme,omitempty"`
	Coordinates  map[Coord]*CellState `json:"coordinates,omitempty"`
	Blacklisted  map[Coord]bool       `json:"blacklisted_coordinates,omitempty"`
	StartAt      Coord                `json:"start_at"`
	BaseImageURL string               `json:"base_image_url,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	LastModified time.Time            `json:"last_modified"`
}

// InBounds reports whether c lies on the grid
func (m *MapDefinition) InBounds(c Coord) bool {
	return c.Col >= 0 && c.Col < m.GridWidth && c.Row >= 0 && c.Row < m.GridHeight
}

// IsBlacklisted reports whether c is inaccessible by default
func (m *MapDefinition) IsBlacklisted(c Coord) bool {
	return m.Blacklisted[c]
}

// Cell returns the cell state at c, creating it on first touch
func (m *MapDefinition) Cell(c Coord) *CellState {
	if m.Coordinates == nil {
		m.Coordinates = make(map[Coord]*CellState)
	}
	cell, ok := m.Coordinates[c]
	if !ok {
		cell = &CellState{}
		m.Coordinates[c] = cell
	}
	return cell
}

// AdjacencyScheme falls back to adjacent8 when the map does not set one
func (m *MapDefinition) AdjacencyScheme() AdjacencyScheme {
	if m.Scheme == SchemeCardinal4 {
		return SchemeCardinal4
	}
	return SchemeAdjacent8
}

// CandidateMove is one legal destination, annotated with its blacklist
// state so the caller can render locked cells distinctly.
type CandidateMove struct {
	Coord       Coord `json:"coord"`
	Blacklisted bool  `json:"blacklisted"`
}

var adjacent8Offsets = [][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

var cardinal4Offsets = [][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// ValidMoves computes the in-bounds neighbors of from under the map's
// adjacency scheme. Blacklisted cells are included but flagged; whether
// the mover can actually enter them depends on inventory unlocks.
func (m *MapDefinition) ValidMoves(from Coord) []CandidateMove {
	offsets := adjacent8Offsets
	if m.AdjacencyScheme() == SchemeCardinal4 {
		offsets = cardinal4Offsets
	}

	moves := make([]CandidateMove, 0, len(offsets))
	for _, off := range offsets {
		candidate := Coord{Col: from.Col + off[0], Row: from.Row + off[1]}
		if !m.InBounds(candidate) {
			continue
		}
		moves = append(moves, CandidateMove{
			Coord:       candidate,
			Blacklisted: m.IsBlacklisted(candidate),
		})
	}
	return moves
}
