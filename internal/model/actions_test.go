package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActionKinds(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		payload string
		want    Action
	}{
		{"guess", "guess", `{"text":"apple"}`, GuessAction{Text: "apple"}},
		{"guess without payload", "guess", ``, GuessAction{}},
		{"start", "startRound", `{}`, StartRoundAction{}},
		{"end", "endRound", `null`, EndRoundAction{}},
		{"draw", "draw", `{"from":{"x":1,"y":2},"to":{"x":3,"y":4}}`,
			DrawAction{Stroke: Stroke{From: Point{X: 1, Y: 2}, To: Point{X: 3, Y: 4}}}},
		{"clear ignores payload", "clear", `{"anything":true}`, ClearAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAction(tt.kind, json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, ActionKind(tt.kind), got.Kind())
		})
	}
}

func TestDecodeActionUnknownKind(t *testing.T) {
	_, err := DecodeAction("teleport", nil)

	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.True(t, IsStateConflict(err))
}

func TestDecodeActionMalformedPayload(t *testing.T) {
	_, err := DecodeAction("guess", json.RawMessage(`{"text":42}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeAction("draw", json.RawMessage(`null`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.False(t, IsStateConflict(err))
}

func TestRoundViewWithholdsWord(t *testing.T) {
	r := Round{Active: true, Number: 3, Word: "castle", DrawerID: "d", Guessed: []PlayerID{"g"}}

	data, err := json.Marshal(r.View())

	require.NoError(t, err)
	assert.NotContains(t, string(data), "castle")
	assert.JSONEq(t, `{"active":true,"roundNumber":3,"drawerId":"d","guessed":["g"]}`, string(data))
}
