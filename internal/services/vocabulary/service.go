package vocabulary

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mcoot/drawit/internal/dependencies/random"
)

// DefaultWords is the fixed vocabulary words are drawn from
var DefaultWords = []string{
	"apple", "bridge", "camera", "dragon", "mountain",
	"rocket", "pizza", "guitar", "island", "forest",
	"castle", "helmet", "turtle", "coffee", "flower",
}

// Service picks secret words and compares guesses against them
type Service struct {
	words  []string
	random random.Random
}

// New creates a VocabularyService over the given words, or DefaultWords if none
func New(random random.Random, words ...string) *Service {
	if len(words) == 0 {
		words = DefaultWords
	}
	owned := make([]string, len(words))
	copy(owned, words)
	return &Service{
		words:  owned,
		random: random,
	}
}

// Pick returns a word chosen uniformly at random
func (s *Service) Pick() string {
	return s.words[s.random.Intn(len(s.words))]
}

// Words returns a copy of the vocabulary
func (s *Service) Words() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Normalize trims and case-folds text for comparison. A Caser holds state,
// so each call gets its own.
func (s *Service) Normalize(text string) string {
	return cases.Fold().String(strings.TrimSpace(text))
}

// Matches reports whether a guess names the word
func (s *Service) Matches(guess, word string) bool {
	normalized := s.Normalize(guess)
	return normalized != "" && normalized == s.Normalize(word)
}
