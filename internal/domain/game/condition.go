package game

import (
	"encoding/json"
	"fmt"
)

// ConditionType discriminates the closed set of condition variants
type ConditionType string

const (
	ConditionHasCurrency  ConditionType = "has_currency"
	ConditionHasItem      ConditionType = "has_item"
	ConditionAtCoordinate ConditionType = "at_coordinate"
)

// CurrencyOp is the comparison applied by a has_currency condition
type CurrencyOp string

const (
	CurrencyGTE    CurrencyOp = "gte"
	CurrencyLTE    CurrencyOp = "lte"
	CurrencyEqZero CurrencyOp = "eq0"
)

// ConditionLogic combines the conditions of a set
type ConditionLogic string

const (
	LogicAnd ConditionLogic = "and"
	LogicOr  ConditionLogic = "or"
)

// Condition is one predicate over member state. Which fields are
// meaningful depends on Type.
type Condition struct {
	Type ConditionType `json:"type"`

	// has_currency
	Op     CurrencyOp `json:"op,omitempty"`
	Amount int        `json:"amount,omitempty"`

	// has_item
	ItemID   string `json:"item_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Negate   bool   `json:"negate,omitempty"`

	// at_coordinate
	Coordinate Coord `json:"coordinate,omitempty"`
}

// UnmarshalJSON rejects unknown condition tags at load time
func (c *Condition) UnmarshalJSON(data []byte) error {
	type alias Condition
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	cond := Condition(decoded)
	if err := cond.Validate(); err != nil {
		return err
	}

	*c = cond
	return nil
}

// Validate checks the tag and the fields the tag requires
func (c Condition) Validate() error {
	switch c.Type {
	case ConditionHasCurrency:
		switch c.Op {
		case CurrencyGTE, CurrencyLTE, CurrencyEqZero:
		default:
			return fmt.Errorf("unknown currency op %q", c.Op)
		}
	case ConditionHasItem:
		if c.ItemID == "" {
			return fmt.Errorf("has_item condition requires item_id")
		}
	case ConditionAtCoordinate:
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
	return nil
}

// Describe renders the condition for diagnostic messages
func (c Condition) Describe() string {
	switch c.Type {
	case ConditionHasCurrency:
		switch c.Op {
		case CurrencyEqZero:
			return "currency is exactly 0"
		case CurrencyLTE:
			return fmt.Sprintf("currency is at most %d", c.Amount)
		default:
			return fmt.Sprintf("currency is at least %d", c.Amount)
		}
	case ConditionHasItem:
		if c.Negate {
			return fmt.Sprintf("does not hold %d of item %s", c.Quantity, c.ItemID)
		}
		return fmt.Sprintf("holds %d of item %s", c.Quantity, c.ItemID)
	case ConditionAtCoordinate:
		return fmt.Sprintf("is at %s", c.Coordinate)
	}
	return string(c.Type)
}

// ConditionSet combines conditions under AND or OR logic.
// An empty set evaluates to true.
type ConditionSet struct {
	Logic ConditionLogic `json:"logic"`
	Items []Condition    `json:"items"`
}

// UnmarshalJSON defaults missing logic to AND and rejects unknown logic
func (s *ConditionSet) UnmarshalJSON(data []byte) error {
	type alias ConditionSet
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	switch decoded.Logic {
	case "":
		decoded.Logic = LogicAnd
	case LogicAnd, LogicOr:
	default:
		return fmt.Errorf("unknown condition logic %q", decoded.Logic)
	}

	*s = ConditionSet(decoded)
	return nil
}

// Validate checks the logic tag and every member condition
func (s ConditionSet) Validate() error {
	switch s.Logic {
	case "", LogicAnd, LogicOr:
	default:
		return fmt.Errorf("unknown condition logic %q", s.Logic)
	}
	for i := range s.Items {
		if err := s.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EvalState is the slice of member state conditions read. Location is
// nil when the member has no map progress.
type EvalState struct {
	Currency  int
	Inventory map[string]int
	Location  *Coord
}

// Evaluate runs the set against member state. It is pure. The returned
// condition, when non-nil, is the predicate that decided the outcome on
// a false result (first failure under AND, or the whole set under OR);
// it exists only for diagnostics.
func (s ConditionSet) Evaluate(state EvalState) (bool, *Condition) {
	if len(s.Items) == 0 {
		return true, nil
	}

	if s.Logic == LogicOr {
		for i := range s.Items {
			if s.Items[i].holds(state) {
				return true, nil
			}
		}
		failed := s.Items[len(s.Items)-1]
		return false, &failed
	}

	for i := range s.Items {
		if !s.Items[i].holds(state) {
			failed := s.Items[i]
			return false, &failed
		}
	}
	return true, nil
}

func (c Condition) holds(state EvalState) bool {
	switch c.Type {
	case ConditionHasCurrency:
		switch c.Op {
		case CurrencyGTE:
			return state.Currency >= c.Amount
		case CurrencyLTE:
			return state.Currency <= c.Amount
		case CurrencyEqZero:
			return state.Currency == 0
		}
		return false
	case ConditionHasItem:
		has := state.Inventory[c.ItemID] >= c.Quantity
		return has != c.Negate
	case ConditionAtCoordinate:
		return state.Location != nil && *state.Location == c.Coordinate
	}
	return false
}
