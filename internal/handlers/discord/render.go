package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/services/action"
	"github.com/wandergrid/explorer-bot-discord/internal/services/movement"
	"github.com/wandergrid/explorer-bot-discord/internal/services/pool"
)

// renderError maps an application error onto a member-facing message,
// pulling hints from the structured metadata.
func renderError(err error) string {
	meta := apperr.GetMeta(err)

	switch apperr.GetCode(err) {
	case apperr.CodeInsufficientResource:
		msg := "You're out of stamina."
		if wait, ok := meta["time_until_regen"].(string); ok {
			msg += fmt.Sprintf(" Next point in %s.", wait)
		}
		return msg
	case apperr.CodeInvalidMove:
		if dest, ok := meta["destination"].(string); ok {
			return fmt.Sprintf("You can't reach %s from here.", dest)
		}
		return "You can't move there."
	case apperr.CodeBlacklisted:
		msg := "That area is sealed off."
		if item, ok := meta["unlock_item"].(string); ok {
			msg += fmt.Sprintf(" Rumor has it a certain item (%s) opens the way.", item)
		}
		return msg
	case apperr.CodeNotInitialized:
		return "You haven't started exploring this map yet. Use `/explore init` first."
	case apperr.CodeConditionsNotMet:
		msg := "You can't do that yet."
		if cond, ok := meta["failed_condition"].(string); ok {
			msg += fmt.Sprintf(" Requires: %s.", cond)
		}
		return msg
	case apperr.CodeNotFound:
		return "That doesn't exist here."
	case apperr.CodeLimitExceeded:
		return "The workspace limit for that has been reached."
	case apperr.CodeInvalidArgument:
		return fmt.Sprintf("Bad request: %v", err)
	default:
		return "Something went wrong. Try again."
	}
}

func renderMoveResult(result *movement.MoveResult) string {
	msg := fmt.Sprintf("You move from **%s** to **%s**. Stamina: %d remaining.", result.From, result.To, result.StaminaRemaining)
	if result.UnlockedBy != "" {
		msg += fmt.Sprintf(" Your %s let you through.", result.UnlockedBy)
	}
	return msg
}

func renderResourceStatus(status *pool.ResourceStatus) string {
	msg := fmt.Sprintf("**%s**: %d/%d", status.Pool, status.Current, status.Max)
	if status.TimeUntilRegen > 0 {
		msg += fmt.Sprintf(" — next point in %s", status.TimeUntilRegen)
	}
	return msg
}

func renderProgress(mapID string, progress *game.MapProgress) string {
	return fmt.Sprintf("On **%s**: at **%s**, %d cells explored.", mapID, progress.CurrentLocation, len(progress.Explored))
}

// renderValidMoves lays candidate destinations out as button rows,
// five per row per Discord's component limit. Blacklisted cells show
// a lock on the label but stay clickable since an item may unlock them.
func renderValidMoves(mapID string, moves []game.CandidateMove) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent

	for _, move := range moves {
		label := move.Coord.String()
		style := discordgo.PrimaryButton
		if move.Blacklisted {
			label = "🔒 " + label
			style = discordgo.SecondaryButton
		}
		row = append(row, discordgo.Button{
			Label: label,
			Style: style,
			CustomID: (&CustomID{
				Domain: "explore",
				Action: "move",
				Target: mapID,
				Args:   []string{move.Coord.String()},
			}).MustEncode(),
		})
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

// renderExecution turns the bundled effect log into message content.
// Bundles preserve execution order; skipped effects surface only when
// they explain a missing grant.
func renderExecution(result *action.ExecutionResult) string {
	applied := make(map[string]bool)
	skipped := make(map[string]string)
	summaries := make([]string, 0)
	for _, outcome := range result.Outcomes {
		if outcome.Applied {
			applied[outcome.Effect.ID] = true
			if outcome.Summary != "" {
				summaries = append(summaries, outcome.Summary)
			}
		} else {
			skipped[outcome.Effect.ID] = outcome.SkipReason
		}
	}

	var sb strings.Builder
	for _, bundle := range result.Bundles {
		if bundle.Parent != nil {
			sb.WriteString(bundle.Parent.Content)
			sb.WriteString("\n")
		}
		for _, child := range bundle.Children {
			line := describeEffect(child, applied[child.ID], skipped[child.ID])
			if line != "" {
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
	}
	for _, summary := range summaries {
		sb.WriteString(summary)
		sb.WriteString("\n")
	}

	content := strings.TrimRight(sb.String(), "\n")
	if content == "" {
		content = fmt.Sprintf("**%s** happens.", result.ActionName)
	}
	return content
}

func describeEffect(effect game.Effect, applied bool, skipReason string) string {
	switch effect.Type {
	case game.EffectGiveItem:
		if applied {
			return fmt.Sprintf("• Received **%s** ×%d", effect.ItemID, effect.Quantity)
		}
		if skipReason == action.SkipAlreadyClaimed {
			return "• Already claimed"
		}
		return ""
	case game.EffectGiveCurrency:
		if applied {
			return fmt.Sprintf("• %+d currency", effect.Amount)
		}
		if skipReason == action.SkipAlreadyClaimed {
			return "• Already claimed"
		}
		return ""
	case game.EffectGiveRole:
		if applied {
			return fmt.Sprintf("• Gained role <@&%s>", effect.RoleID)
		}
		return ""
	case game.EffectRemoveRole:
		if applied {
			return fmt.Sprintf("• Lost role <@&%s>", effect.RoleID)
		}
		return ""
	default:
		return ""
	}
}
