package action

import (
	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
)

// Bundle groups a display_text effect with the attachable effects that
// immediately follow it, so the presentation layer can render them as
// one message. Bundling never changes execution order or semantics.
// A singleton bundle has a nil Parent and exactly one child.
type Bundle struct {
	Parent   *game.Effect  `json:"parent,omitempty"`
	Children []game.Effect `json:"children,omitempty"`
}

// BuildBundles scans the effect list in order. A display_text opens a
// bundle; give_item, give_currency, and follow_up_action attach to the
// open bundle; any other effect (or a new display_text) closes it. An
// effect with no open bundle to join becomes a singleton.
func BuildBundles(effects []game.Effect) []Bundle {
	var bundles []Bundle
	open := -1 // index into bundles of the open display bundle

	for i := range effects {
		effect := effects[i]

		switch {
		case effect.Type == game.EffectDisplayText:
			parent := effect
			bundles = append(bundles, Bundle{Parent: &parent})
			open = len(bundles) - 1

		case effect.Attachable() && open >= 0:
			bundles[open].Children = append(bundles[open].Children, effect)

		default:
			bundles = append(bundles, Bundle{Children: []game.Effect{effect}})
			if !effect.Attachable() {
				open = -1
			}
		}
	}

	return bundles
}
