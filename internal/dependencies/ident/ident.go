// Package ident issues player identity tokens.
package ident

import (
	"github.com/google/uuid"

	"github.com/mcoot/drawit/internal/model"
)

// Generator produces unique player identities
type Generator interface {
	NewPlayerID() model.PlayerID
}

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewPlayerID returns a fresh random identity
func (g *UUIDGenerator) NewPlayerID() model.PlayerID {
	return model.PlayerID(uuid.NewString())
}
