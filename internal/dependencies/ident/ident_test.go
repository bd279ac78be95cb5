package ident

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayerIDIsUUID(t *testing.T) {
	id := New().NewPlayerID()

	parsed, err := uuid.Parse(string(id))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestNewPlayerIDIsUnique(t *testing.T) {
	g := New()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := string(g.NewPlayerID())
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
