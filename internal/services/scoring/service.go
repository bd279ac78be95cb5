package scoring

import (
	"sort"

	"github.com/mcoot/drawit/internal/model"
)

const (
	// FirstPlacePoints is awarded to the first correct guesser
	FirstPlacePoints = 100
	// PlacementStep is deducted for each earlier correct guesser
	PlacementStep = 20
	// MinimumPoints is the floor for any correct guess
	MinimumPoints = 30
	// DrawerBonus is awarded to the drawer for every correct guess
	DrawerBonus = 15
)

// Service provides scoring rules for guesses and rankings
type Service struct{}

// New creates a new ScoringService
func New() *Service {
	return &Service{}
}

// PlacementPoints returns the points for a correct guess given the number of
// players who guessed correctly before it (0 for the first).
func (s *Service) PlacementPoints(placement int) int {
	if placement < 0 {
		placement = 0
	}
	return max(MinimumPoints, FirstPlacePoints-PlacementStep*placement)
}

// DrawerBonus returns the drawer's award per correct guess
func (s *Service) DrawerBonus() int {
	return DrawerBonus
}

// CompletionThreshold returns how many correct guesses end a round
// automatically: every player except the drawer, and at least one.
func (s *Service) CompletionThreshold(totalPlayers int) int {
	return max(1, totalPlayers-1)
}

// Leaderboard returns players sorted by score descending. Ties keep join order.
func (s *Service) Leaderboard(players []model.Player) []model.PlayerView {
	ranked := model.Views(players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Interface for dependency injection
type ServiceInterface interface {
	PlacementPoints(placement int) int
	DrawerBonus() int
	CompletionThreshold(totalPlayers int) int
	Leaderboard(players []model.Player) []model.PlayerView
}

var _ ServiceInterface = (*Service)(nil)
