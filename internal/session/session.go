package session

import (
	"time"

	"card-duel/internal/game"
)

type Status string

const (
	StatusWaiting         Status = "waiting-for-players"
	StatusInProgress      Status = "in-progress"
	StatusFirstPlayerWon  Status = "1st_player_won"
	StatusSecondPlayerWon Status = "2nd_player_won"
	StatusDraw            Status = "draw"
)

// Terminal statuses never change again and pay out exactly once.
func (s Status) Terminal() bool {
	switch s {
	case StatusFirstPlayerWon, StatusSecondPlayerWon, StatusDraw:
		return true
	}
	return false
}

// GameSession is one two-player match. Players holds 1 or 2 pids in
// join order; Hands stays empty until the second player joins, at
// which point both hands are dealt in the same step as the transition
// to in-progress.
type GameSession struct {
	ID        string
	Status    Status
	Players   []string
	Hands     [2][]game.Card
	Escrow    map[string]int64
	Winner    string
	Loser     string
	CreatedAt time.Time
}

func (g *GameSession) HasPlayer(pid string) bool {
	for _, p := range g.Players {
		if p == pid {
			return true
		}
	}
	return false
}
