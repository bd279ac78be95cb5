package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionKind names an action a player can submit
type ActionKind string

const (
	ActionGuess      ActionKind = "guess"
	ActionStartRound ActionKind = "startRound"
	ActionEndRound   ActionKind = "endRound"
	ActionDraw       ActionKind = "draw"
	ActionClear      ActionKind = "clear"
)

// Action is an inbound player action. Only the types in this file implement it.
type Action interface {
	Kind() ActionKind
	action()
}

// Point is a position on the drawing surface
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is a single line segment drawn by the drawer
type Stroke struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// GuessAction submits a guess for the current word
type GuessAction struct {
	Text string `json:"text"`
}

// StartRoundAction starts a new round
type StartRoundAction struct{}

// EndRoundAction stops the current round
type EndRoundAction struct{}

// DrawAction relays a stroke to the other players
type DrawAction struct {
	Stroke
}

// ClearAction wipes the board for everyone
type ClearAction struct{}

func (GuessAction) Kind() ActionKind      { return ActionGuess }
func (StartRoundAction) Kind() ActionKind { return ActionStartRound }
func (EndRoundAction) Kind() ActionKind   { return ActionEndRound }
func (DrawAction) Kind() ActionKind       { return ActionDraw }
func (ClearAction) Kind() ActionKind      { return ActionClear }

func (GuessAction) action()      {}
func (StartRoundAction) action() {}
func (EndRoundAction) action()   {}
func (DrawAction) action()       {}
func (ClearAction) action()      {}

// DecodeAction builds a typed action from its wire kind and payload.
// Unknown kinds return ErrUnknownAction; malformed payloads return ErrInvalidPayload.
func DecodeAction(kind string, payload json.RawMessage) (Action, error) {
	switch ActionKind(kind) {
	case ActionGuess:
		var a GuessAction
		if err := decodePayload(payload, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActionStartRound:
		return StartRoundAction{}, nil
	case ActionEndRound:
		return EndRoundAction{}, nil
	case ActionDraw:
		if isEmptyPayload(payload) {
			return nil, fmt.Errorf("%w: draw requires a stroke", ErrInvalidPayload)
		}
		var a DrawAction
		if err := decodePayload(payload, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActionClear:
		return ClearAction{}, nil
	default:
		return nil, ErrUnknownAction
	}
}

func decodePayload(payload json.RawMessage, v any) error {
	if isEmptyPayload(payload) {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func isEmptyPayload(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
