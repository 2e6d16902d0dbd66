package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TriggerType discriminates the closed set of trigger variants
type TriggerType string

const (
	TriggerButtonClick TriggerType = "button_click"
	TriggerKeyword     TriggerType = "keyword"
	TriggerMenuSelect  TriggerType = "menu_select"
)

// MenuOption is one entry of a menu_select trigger
type MenuOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Trigger describes how members fire an action
type Trigger struct {
	Type TriggerType `json:"type"`

	// button_click
	Label string `json:"label,omitempty"`

	// keyword
	Phrases []string `json:"phrases,omitempty"`

	// menu_select
	Options []MenuOption `json:"options,omitempty"`
}

// UnmarshalJSON rejects unknown trigger tags at load time
func (t *Trigger) UnmarshalJSON(data []byte) error {
	type alias Trigger
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	trigger := Trigger(decoded)
	if err := trigger.Validate(); err != nil {
		return err
	}

	*t = trigger
	return nil
}

// Validate checks the tag and the fields the tag requires
func (t Trigger) Validate() error {
	switch t.Type {
	case TriggerButtonClick:
		if t.Label == "" {
			return fmt.Errorf("button_click trigger requires a label")
		}
	case TriggerKeyword:
		if len(t.Phrases) == 0 {
			return fmt.Errorf("keyword trigger requires at least one phrase")
		}
	case TriggerMenuSelect:
		if len(t.Options) == 0 {
			return fmt.Errorf("menu_select trigger requires at least one option")
		}
	default:
		return fmt.Errorf("unknown trigger type %q", t.Type)
	}
	return nil
}

// MatchesPhrase reports whether a keyword trigger matches the message
func (t Trigger) MatchesPhrase(content string) bool {
	if t.Type != TriggerKeyword {
		return false
	}
	content = strings.TrimSpace(content)
	for _, phrase := range t.Phrases {
		if strings.EqualFold(strings.TrimSpace(phrase), content) {
			return true
		}
	}
	return false
}
