package discord

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/services"
	"github.com/wandergrid/explorer-bot-discord/internal/services/action"
)

// Handler routes Discord interactions into the game services
type Handler struct {
	ServiceProvider *services.Provider
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.ServiceProvider == nil {
		panic("service provider is required")
	}
	return &Handler{ServiceProvider: cfg.ServiceProvider}
}

// RegisterCommands registers the slash commands. An empty guildID
// registers them globally.
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "explore",
			Description: "Explore the map",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "init",
					Description: "Start exploring a map from its start cell",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "map",
							Description: "Map to explore",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "move",
					Description: "Move to an adjacent cell",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "map",
							Description: "Map you are exploring",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "destination",
							Description: "Destination cell, e.g. D4",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "map",
					Description: "Show where you can move",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "map",
							Description: "Map you are exploring",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show your stamina and exploration progress",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "map",
							Description: "Include progress on this map",
							Required:    false,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

// HandleInteraction is the entry point registered on the session
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "explore" || len(data.Options) == 0 {
		return
	}

	sub := data.Options[0]
	options := make(map[string]string)
	for _, opt := range sub.Options {
		options[opt.Name] = opt.StringValue()
	}

	ctx := context.Background()
	workspaceID := i.GuildID
	member := interactionMemberID(i)

	switch sub.Name {
	case "init":
		progress, err := h.ServiceProvider.MovementService.Initialize(ctx, workspaceID, member, options["map"])
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respond(s, i, "You begin exploring at **"+progress.CurrentLocation.String()+"**.", nil)

	case "move":
		result, err := h.ServiceProvider.MovementService.Move(ctx, workspaceID, member, options["map"], options["destination"], nil)
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respond(s, i, renderMoveResult(result), nil)

	case "map":
		moves, err := h.ServiceProvider.MovementService.GetValidMoves(ctx, workspaceID, member, options["map"])
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respond(s, i, "Pick a destination:", renderValidMoves(options["map"], moves))

	case "status":
		status, err := h.ServiceProvider.PoolService.GetResourceStatus(ctx, workspaceID, member, "")
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		content := renderResourceStatus(status)
		if mapID := options["map"]; mapID != "" {
			progress, err := h.ServiceProvider.MovementService.Progress(ctx, workspaceID, member, mapID)
			if err != nil {
				h.respondError(s, i, err)
				return
			}
			content += "\n" + renderProgress(mapID, progress)
		}
		h.respond(s, i, content, nil)
	}
}

func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	customID, err := ParseCustomID(data.CustomID)
	if err != nil {
		log.Printf("unparseable custom ID %q: %v", data.CustomID, err)
		return
	}

	ctx := context.Background()
	workspaceID := i.GuildID
	member := interactionMemberID(i)

	switch customID.Domain {
	case "explore":
		if customID.Action != "move" || len(customID.Args) == 0 {
			return
		}
		mapID, destination := customID.Target, customID.Args[0]
		result, err := h.ServiceProvider.MovementService.Move(ctx, workspaceID, member, mapID, destination, nil)
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respond(s, i, renderMoveResult(result), nil)

	case "action":
		opts := &action.ExecuteOptions{}
		if len(customID.Args) > 0 {
			opts.MapID = customID.Args[0]
		}
		result, err := h.ServiceProvider.ActionService.ExecuteAction(ctx, workspaceID, member, customID.Target, opts)
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respond(s, i, renderExecution(result), nil)
	}
}

// HandleMessage fires keyword-triggered actions from plain messages
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := context.Background()
	matched, err := h.ServiceProvider.RegistryService.FindActionByPhrase(ctx, m.GuildID, m.Content)
	if err != nil {
		// Most messages match nothing; stay quiet
		if !apperr.IsNotFound(err) {
			log.Printf("keyword lookup failed in guild %s: %v", m.GuildID, err)
		}
		return
	}

	result, err := h.ServiceProvider.ActionService.ExecuteAction(ctx, m.GuildID, m.Author.ID, matched.ID, nil)
	if err != nil {
		if apperr.IsConditionsNotMet(err) {
			if _, sendErr := s.ChannelMessageSend(m.ChannelID, renderError(err)); sendErr != nil {
				log.Printf("failed to send message: %v", sendErr)
			}
		} else {
			log.Printf("keyword action %s failed: %v", matched.ID, err)
		}
		return
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, renderExecution(result)); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

// ActionButton builds the component that fires an action by button
func ActionButton(label, actionID, mapID string) discordgo.Button {
	id := &CustomID{Domain: "action", Action: "run", Target: actionID}
	if mapID != "" {
		id.Args = []string{mapID}
	}
	return discordgo.Button{
		Label:    label,
		Style:    discordgo.PrimaryButton,
		CustomID: id.MustEncode(),
	}
}

func interactionMemberID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (h *Handler) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
	if err != nil {
		log.Printf("failed to respond to interaction: %v", err)
	}
}

func (h *Handler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, opErr error) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: renderError(opErr),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("failed to respond to interaction: %v", err)
	}
}
