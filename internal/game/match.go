package game

import (
	"math/rand"
	"sync"
	"time"
)

const HandSize = 5

type Outcome int

const (
	Player1Wins Outcome = iota
	Player2Wins
	Draw
)

// Draws happen server-side only; the source does not need to be
// cryptographically secure, just not observable by clients before reveal.
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func drawCard() Card {
	sp := speciesTable[rng.Intn(len(speciesTable))]
	return Card{Species: sp.name, Rank: sp.ranks[rng.Intn(len(sp.ranks))]}
}

// DrawHands produces two independent five-card hands, each slot drawn
// with replacement from the species table.
func DrawHands() ([]Card, []Card) {
	rngMu.Lock()
	defer rngMu.Unlock()
	hand1 := make([]Card, 0, HandSize)
	hand2 := make([]Card, 0, HandSize)
	for i := 0; i < HandSize; i++ {
		hand1 = append(hand1, drawCard())
		hand2 = append(hand2, drawCard())
	}
	return hand1, hand2
}

func ScoreHand(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Rank
	}
	return total
}

// Decide compares the two hand scores strictly.
func Decide(hand1, hand2 []Card) Outcome {
	s1 := ScoreHand(hand1)
	s2 := ScoreHand(hand2)
	switch {
	case s1 > s2:
		return Player1Wins
	case s2 > s1:
		return Player2Wins
	default:
		return Draw
	}
}
