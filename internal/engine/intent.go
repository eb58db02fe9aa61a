package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/world"
)

// IntentType names a player intent.
type IntentType string

const (
	IntentStartGame    IntentType = "start_game"
	IntentStartNewDay  IntentType = "start_new_day"
	IntentToggleCard   IntentType = "toggle_card"
	IntentSelectCell   IntentType = "select_cell"
	IntentChooseAction IntentType = "choose_action"
	IntentRoll         IntentType = "roll"
	IntentCancelAction IntentType = "cancel_action"
)

// Intent is a player request. Only the fields its type needs are read.
type Intent struct {
	Type  IntentType          `json:"type" mapstructure:"type"`
	Card  catalog.CitizenCode `json:"card,omitempty" mapstructure:"card"`
	X     int                 `json:"x" mapstructure:"x"`
	Y     int                 `json:"y" mapstructure:"y"`
	Index int                 `json:"index" mapstructure:"index"`
}

// Reason explains why an intent was rejected.
type Reason string

const (
	ReasonNoGame            Reason = "no_game"
	ReasonCardNotInHand     Reason = "card_not_in_hand"
	ReasonUnknownCell       Reason = "unknown_cell"
	ReasonNoCellSelected    Reason = "no_cell_selected"
	ReasonActionUnavailable Reason = "action_unavailable"
	ReasonNoActionChosen    Reason = "no_action_chosen"
	ReasonActionPending     Reason = "action_pending"
	ReasonUnknownIntent     Reason = "unknown_intent"
)

func (r Reason) ReasonCode() string { return string(r) }

func invalid(r Reason) *errx.Error {
	return errx.ErrInvalidIntent.WithReason(r)
}

// Apply is the single entry point for player intents. A rejected intent
// leaves the state untouched and returns an errx.CodeInvalidIntent error.
func (e *Engine) Apply(in Intent) ([]Event, error) {
	logs.Debug("intent",
		zap.String("type", string(in.Type)),
		zap.Stringer("card", in.Card),
		zap.Int("x", in.X),
		zap.Int("y", in.Y),
		zap.Int("index", in.Index),
	)

	switch in.Type {
	case IntentStartGame:
		return e.StartGame(), nil
	case IntentStartNewDay:
		return e.StartNewDay()
	case IntentToggleCard:
		return e.ToggleCardSelection(in.Card)
	case IntentSelectCell:
		return e.SelectCell(world.Coord{X: in.X, Y: in.Y})
	case IntentChooseAction:
		return e.ChooseAction(in.Index)
	case IntentRoll:
		return e.Roll()
	case IntentCancelAction:
		return e.CancelAction()
	default:
		return nil, invalid(ReasonUnknownIntent).WithData("type", string(in.Type))
	}
}

// StartGame deals a fresh game on a fresh grid.
func (e *Engine) StartGame() []Event {
	e.id = uuid.New()
	e.started = true
	e.day = 1
	e.resetGrid()
	e.deck.StartGame(e.cfg.StartingCitizens)
	e.cell = nil
	e.chosen = nil
	e.lastRoll = nil
	e.events = nil

	logs.Info("game started",
		zap.String("game", e.id.String()),
		zap.Int64("seed", e.cfg.Seed),
		zap.String("topology", e.cfg.Topology.Name),
	)

	ev := []Event{e.event("game", fmt.Sprintf("A new city is founded at %s", world.StartingDistrict().Name))}
	e.record(ev...)
	return ev
}

// StartNewDay ages housing, reshuffles the deck and deals a new hand. A
// chosen action is dropped.
func (e *Engine) StartNewDay() ([]Event, error) {
	if !e.started {
		return nil, invalid(ReasonNoGame)
	}

	e.day++
	aged := e.grid.AgeAmenities()
	e.deck.StartNewDay()
	e.chosen = nil
	e.lastRoll = nil

	logs.Info("new day",
		zap.String("game", e.id.String()),
		zap.Int("day", e.day),
		zap.Int("aged", aged),
		zap.Int("districts", e.grid.Len()),
	)

	ev := []Event{e.event("day", fmt.Sprintf("The %s day dawns (%s)", humanize.Ordinal(e.day), Calendar(e.day)))}
	if aged > 0 {
		ev = append(ev, e.event("day", fmt.Sprintf("%s housing %s a month older", humanize.Comma(int64(aged)), plural(aged, "block is", "blocks are"))))
	}
	e.record(ev...)
	return ev, nil
}

// ToggleCardSelection flips the selection of a hand card. Selection is frozen
// while an action is chosen.
func (e *Engine) ToggleCardSelection(code catalog.CitizenCode) ([]Event, error) {
	if !e.started {
		return nil, invalid(ReasonNoGame)
	}
	if e.chosen != nil {
		return nil, invalid(ReasonActionPending)
	}
	if _, ok := e.deck.Toggle(code); !ok {
		return nil, invalid(ReasonCardNotInHand).WithData("card", code.String())
	}
	return nil, nil
}

// SelectCell focuses an existing district and drops any chosen action.
func (e *Engine) SelectCell(c world.Coord) ([]Event, error) {
	if !e.started {
		return nil, invalid(ReasonNoGame)
	}
	if e.grid.Get(c) == nil {
		return nil, invalid(ReasonUnknownCell).WithData("cell", c.String())
	}
	e.cell = &c
	e.chosen = nil
	return nil, nil
}

// ChooseAction picks an entry of the current available-actions list.
func (e *Engine) ChooseAction(index int) ([]Event, error) {
	if !e.started {
		return nil, invalid(ReasonNoGame)
	}
	if e.cell == nil {
		return nil, invalid(ReasonNoCellSelected)
	}
	avail := e.AvailableActions(*e.cell, e.deck.Selected())
	if index < 0 || index >= len(avail) {
		return nil, invalid(ReasonActionUnavailable).WithData("index", index)
	}
	e.chosen = avail[index]
	return nil, nil
}

// CancelAction drops the chosen action, keeping cell and card selection.
func (e *Engine) CancelAction() ([]Event, error) {
	if !e.started {
		return nil, invalid(ReasonNoGame)
	}
	if e.chosen == nil {
		return nil, invalid(ReasonNoActionChosen)
	}
	e.chosen = nil
	return nil, nil
}

// Roll throws the die for the chosen action and applies the result. A face
// without a result row fizzles: nothing is built and no card is spent.
func (e *Engine) Roll() ([]Event, error) {
	if !e.started {
		return nil, invalid(ReasonNoGame)
	}
	if e.chosen == nil {
		return nil, invalid(ReasonNoActionChosen)
	}
	if e.cell == nil {
		return nil, invalid(ReasonNoCellSelected)
	}

	action, cell := e.chosen, *e.cell
	face := 1 + e.src.IntN(6)
	rate := e.EmploymentRate(cell)
	district := e.grid.Get(cell)

	result, ok := ResolveRoll(action, face, rate)
	if !ok {
		e.chosen = nil
		e.lastRoll = &RollOutcome{Face: face, Fizzled: true, Action: action.Name, Cell: cell, Description: "Nothing comes of it"}
		ev := []Event{e.event("fizzle", fmt.Sprintf("%s in %s fizzled on a %d", action.Name, district.Name, face))}
		e.record(ev...)
		return ev, nil
	}

	ev, err := e.ApplyResult(cell, result, e.deck.Selected())
	if err != nil {
		return nil, err
	}
	e.lastRoll = &RollOutcome{
		Face:        face,
		Action:      action.Name,
		Cell:        cell,
		Description: result.Outcome.Description,
		Result:      result.Outcome.Result,
	}
	return ev, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
