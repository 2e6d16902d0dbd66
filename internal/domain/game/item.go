package game

import "time"

// Item is a grantable inventory entity. ReverseBlacklist names the
// blacklisted coordinates this item unlocks for its holder.
type Item struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	ReverseBlacklist []Coord   `json:"reverse_blacklist,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	LastModified     time.Time `json:"last_modified"`
}

// Unlocks reports whether the item overrides the blacklist at coord
func (i *Item) Unlocks(coord Coord) bool {
	for _, c := range i.ReverseBlacklist {
		if c == coord {
			return true
		}
	}
	return false
}

// Store groups items for a host-curated shop listing
type Store struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ItemIDs      []string  `json:"item_ids"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// RemoveItem strips every reference to itemID from the store listing
func (s *Store) RemoveItem(itemID string) bool {
	removed := false
	kept := s.ItemIDs[:0]
	for _, id := range s.ItemIDs {
		if id == itemID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	s.ItemIDs = kept
	return removed
}
