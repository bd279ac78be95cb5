package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/drawit/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.Capacity = 3
	cfg.HistoryTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) summary(number int, word string) *model.RoundSummary {
	started := time.Date(2024, 1, 1, 12, number, 0, 0, time.UTC)
	return &model.RoundSummary{
		Number:     number,
		DrawerID:   "drawer-1",
		DrawerName: "Dee",
		Word:       word,
		Reason:     model.ReasonEveryoneGuessed,
		Guessers: []model.GuessAward{
			{PlayerID: "g1", PlayerName: "One", Points: 100, Order: 1},
			{PlayerID: "g2", PlayerName: "Two", Points: 80, Order: 2},
		},
		StartedAt: started,
		EndedAt:   started.Add(45 * time.Second),
	}
}

// Save tests

func (s *StorageSuite) TestSaveAndListRound() {
	saved := s.summary(1, "rocket")
	s.Require().NoError(s.storage.SaveRound(s.ctx, saved))

	rounds, err := s.storage.ListRounds(s.ctx, 10)

	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	s.Equal(saved.Word, rounds[0].Word)
	s.Equal(saved.Reason, rounds[0].Reason)
	s.Equal(saved.Guessers, rounds[0].Guessers)
	s.True(saved.StartedAt.Equal(rounds[0].StartedAt))
}

func (s *StorageSuite) TestSaveSetsTTL() {
	s.Require().NoError(s.storage.SaveRound(s.ctx, s.summary(1, "rocket")))

	s.Equal(time.Hour, s.mini.TTL(roundsKey()))
}

func (s *StorageSuite) TestSaveTrimsToCapacity() {
	for i, w := range []string{"apple", "bridge", "camera", "dragon", "forest"} {
		s.Require().NoError(s.storage.SaveRound(s.ctx, s.summary(i+1, w)))
	}

	items, err := s.mini.List(roundsKey())
	s.Require().NoError(err)
	s.Len(items, 3)

	rounds, err := s.storage.ListRounds(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal("forest", rounds[0].Word)
	s.Equal("camera", rounds[2].Word)
}

// List tests

func (s *StorageSuite) TestListLimit() {
	for i, w := range []string{"apple", "bridge", "camera"} {
		s.Require().NoError(s.storage.SaveRound(s.ctx, s.summary(i+1, w)))
	}

	rounds, err := s.storage.ListRounds(s.ctx, 2)

	s.Require().NoError(err)
	s.Require().Len(rounds, 2)
	s.Equal(3, rounds[0].Number)
	s.Equal(2, rounds[1].Number)
}

func (s *StorageSuite) TestListEmpty() {
	rounds, err := s.storage.ListRounds(s.ctx, 5)

	s.Require().NoError(err)
	s.Empty(rounds)
}

func (s *StorageSuite) TestListCorruptEntry() {
	_, err := s.mini.Lpush(roundsKey(), "not json")
	s.Require().NoError(err)

	_, err = s.storage.ListRounds(s.ctx, 1)

	s.Error(err)
}

func (s *StorageSuite) TestServerDownReturnsError() {
	s.mini.Close()

	err := s.storage.SaveRound(s.ctx, s.summary(1, "apple"))

	s.Error(err)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "://nope"})

	s.Error(err)
}
