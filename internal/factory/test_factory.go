package factory

import (
	"time"

	"github.com/mcoot/drawit/internal/dependencies/mocks"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/storage"
	"github.com/mcoot/drawit/internal/storage/memory"
	"github.com/mcoot/drawit/internal/testutil"
)

// TestWords is a small vocabulary so tests can pick a word by index
var TestWords = []string{"apple", "house", "rocket"}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIdentGenerator
	History    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(session.Config{
		MaxPlayers: session.DefaultMaxPlayers,
		KeepAlive:  25 * time.Second,
		Words:      TestWords,
	})
}

// NewTestAppWithConfig creates a test App with custom session settings
func NewTestAppWithConfig(cfg session.Config) *TestApp {
	store := memory.New(storage.DefaultCapacity)
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIdentGenerator()

	app := newWithDependencies(store, mockClock, mockRandom, mockIDs, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		History:    store,
	}
}
