package registry

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
)

//go:embed action_schema.json
var actionSchemaJSON string

var actionSchema = jsonschema.MustCompileString("action_import.json", actionSchemaJSON)

// importedAction mirrors the import payload shape. The domain unions
// reject unknown tags during unmarshal; the schema catches structural
// problems first so hosts get positional error messages.
type importedAction struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Trigger     game.Trigger      `json:"trigger"`
	Conditions  game.ConditionSet `json:"conditions"`
	Effects     []game.Effect     `json:"effects"`
	Coordinates []game.Coord      `json:"coordinates"`
}

// ImportActions validates a host-authored JSON array of action
// definitions against the import schema and registers all of them in
// one transaction. Either every action is admitted or none is.
func (s *service) ImportActions(ctx context.Context, workspaceID string, raw []byte) ([]*game.CustomAction, error) {
	if len(raw) == 0 {
		return nil, apperr.InvalidArgument("import payload cannot be empty")
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "import payload is not valid JSON")
	}
	if err := actionSchema.Validate(doc); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "import payload failed schema validation")
	}

	var defs []importedAction
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "import payload has an unknown tag")
	}

	now := s.clock.Now()
	actions := make([]*game.CustomAction, 0, len(defs))
	for _, def := range defs {
		action := &game.CustomAction{
			ID:           s.uuidGenerator.New(),
			Name:         def.Name,
			Description:  def.Description,
			Trigger:      def.Trigger,
			Conditions:   def.Conditions,
			Effects:      def.Effects,
			Coordinates:  def.Coordinates,
			CreatedAt:    now,
			LastModified: now,
		}
		if action.Conditions.Logic == "" {
			action.Conditions.Logic = game.LogicAnd
		}
		for i := range action.Effects {
			if action.Effects[i].ID == "" {
				action.Effects[i].ID = s.uuidGenerator.New()
			}
		}
		actions = append(actions, action)
	}

	err := s.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		if len(ws.Actions)+len(actions) > s.caps.MaxActions {
			return apperr.LimitExceededf("import of %d actions would exceed the cap of %d",
				len(actions), s.caps.MaxActions).
				WithMeta("category", "actions").
				WithMeta("cap", s.caps.MaxActions)
		}
		for _, action := range actions {
			ws.Actions[action.ID] = action
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return actions, nil
}
