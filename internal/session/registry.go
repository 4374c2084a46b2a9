package session

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"card-duel/internal/game"
	"card-duel/internal/ids"
	"card-duel/internal/ledger"
)

// Registry maps game id to session and enforces the lifecycle:
//
//	waiting-for-players --join--> in-progress --resolve--> terminal
//	waiting-for-players --cancel--> removed
//
// Like the ledger it carries no locking of its own; the room
// coordinator serializes access.
type Registry struct {
	ledger *ledger.Ledger
	games  map[string]*GameSession
}

func NewRegistry(led *ledger.Ledger) *Registry {
	return &Registry{ledger: led, games: map[string]*GameSession{}}
}

// Create stakes pid and opens a new waiting session. The debit and the
// session creation are one unit: a failed debit creates nothing.
func (r *Registry) Create(pid string, stake int64) (*GameSession, error) {
	if r.ActiveSessionFor(pid) != nil {
		return nil, ErrAlreadyInActiveGame
	}
	id := ids.New()
	if _, err := r.ledger.Debit(pid, stake, id, ledger.KindStake, "Stake for game "+id); err != nil {
		return nil, err
	}
	g := &GameSession{
		ID:        id,
		Status:    StatusWaiting,
		Players:   []string{pid},
		Escrow:    map[string]int64{pid: stake},
		CreatedAt: time.Now(),
	}
	r.games[id] = g
	log.Info().Str("game_id", id).Str("pid", pid).Int64("stake", stake).Msg("game_created")
	return g, nil
}

// Join stakes pid into an open session. When the second player lands,
// both hands are dealt and the status flips to in-progress in the same
// step, so no observer ever sees two players with a waiting status.
func (r *Registry) Join(gameID, pid string, stake int64) (*GameSession, error) {
	g, ok := r.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	if g.HasPlayer(pid) {
		return nil, ErrAlreadyJoined
	}
	if g.Status.Terminal() {
		return nil, ErrGameFinished
	}
	if len(g.Players) >= 2 {
		return nil, ErrGameFull
	}
	if r.ActiveSessionFor(pid) != nil {
		return nil, ErrAlreadyInActiveGame
	}
	if _, err := r.ledger.Debit(pid, stake, gameID, ledger.KindStake, "Stake for game "+gameID); err != nil {
		return nil, err
	}
	g.Players = append(g.Players, pid)
	g.Escrow[pid] = stake
	if len(g.Players) == 2 {
		g.Hands[0], g.Hands[1] = game.DrawHands()
		g.Status = StatusInProgress
	}
	log.Info().Str("game_id", gameID).Str("pid", pid).Str("status", string(g.Status)).Msg("game_joined")
	return g, nil
}

// Cancel removes a still-solo waiting session and refunds the
// creator's stake. Only players[0] may cancel.
func (r *Registry) Cancel(gameID, pid string) (int64, error) {
	g, ok := r.games[gameID]
	if !ok {
		return 0, ErrNotFound
	}
	if g.Players[0] != pid {
		return 0, ErrNotCreator
	}
	if g.Status != StatusWaiting {
		return 0, ErrAlreadyStarted
	}
	if len(g.Players) != 1 {
		return 0, ErrOpponentPresent
	}
	newBal := r.ledger.Credit(pid, g.Escrow[pid], gameID, ledger.KindRefund, "Refund for cancelled game "+gameID)
	delete(r.games, gameID)
	log.Info().Str("game_id", gameID).Str("pid", pid).Msg("game_cancelled")
	return newBal, nil
}

// Resolve decides an in-progress session and pays out. It is a no-op
// for unknown ids and for sessions already terminal, which makes
// repeated reveal commands safe: payout happens exactly once.
func (r *Registry) Resolve(gameID string) (*GameSession, bool) {
	g, ok := r.games[gameID]
	if !ok || g.Status != StatusInProgress {
		return g, false
	}
	switch game.Decide(g.Hands[0], g.Hands[1]) {
	case game.Player1Wins:
		g.Status = StatusFirstPlayerWon
		g.Winner, g.Loser = g.Players[0], g.Players[1]
	case game.Player2Wins:
		g.Status = StatusSecondPlayerWon
		g.Winner, g.Loser = g.Players[1], g.Players[0]
	default:
		g.Status = StatusDraw
	}
	r.payout(g)
	log.Info().Str("game_id", gameID).Str("status", string(g.Status)).Str("winner", g.Winner).Msg("game_resolved")
	return g, true
}

// payout runs once, inside the same step as the terminal transition.
// Winner takes the whole escrow; the loser gets a zero-amount payout
// row so the wallet log still shows the game. A draw refunds both.
func (r *Registry) payout(g *GameSession) {
	if g.Status == StatusDraw {
		for _, pid := range g.Players {
			r.ledger.Credit(pid, g.Escrow[pid], g.ID, ledger.KindRefund, "Stake refunded, game drawn")
		}
		return
	}
	pot := g.Escrow[g.Winner] + g.Escrow[g.Loser]
	r.ledger.Credit(g.Winner, pot, g.ID, ledger.KindPayout, "Winnings for game "+g.ID)
	r.ledger.Credit(g.Loser, 0, g.ID, ledger.KindPayout, "Game lost, stake forfeited")
}

// SpawnRematch opens a fresh session directly in-progress for two
// known players. Both balances are checked before either debit so a
// failure leaves no partial stake.
func (r *Registry) SpawnRematch(p1, p2 string, stake int64) (*GameSession, error) {
	if r.ActiveSessionFor(p1) != nil || r.ActiveSessionFor(p2) != nil {
		return nil, ErrAlreadyInActiveGame
	}
	if r.ledger.Balance(p1) < stake || r.ledger.Balance(p2) < stake {
		return nil, ledger.ErrInsufficientFunds
	}
	id := ids.New()
	if _, err := r.ledger.Debit(p1, stake, id, ledger.KindStake, "Stake for rematch "+id); err != nil {
		return nil, err
	}
	if _, err := r.ledger.Debit(p2, stake, id, ledger.KindStake, "Stake for rematch "+id); err != nil {
		return nil, err
	}
	g := &GameSession{
		ID:        id,
		Status:    StatusInProgress,
		Players:   []string{p1, p2},
		Escrow:    map[string]int64{p1: stake, p2: stake},
		CreatedAt: time.Now(),
	}
	g.Hands[0], g.Hands[1] = game.DrawHands()
	r.games[id] = g
	log.Info().Str("game_id", id).Str("p1", p1).Str("p2", p2).Msg("rematch_created")
	return g, nil
}

// ActiveSessionFor returns pid's non-terminal session, if any.
func (r *Registry) ActiveSessionFor(pid string) *GameSession {
	for _, g := range r.games {
		if !g.Status.Terminal() && g.HasPlayer(pid) {
			return g
		}
	}
	return nil
}

func (r *Registry) Get(gameID string) (*GameSession, bool) {
	g, ok := r.games[gameID]
	return g, ok
}

// OpenGames lists sessions still waiting for an opponent.
func (r *Registry) OpenGames() []*GameSession {
	return r.list(func(g *GameSession) bool { return g.Status == StatusWaiting })
}

// ActiveGames lists non-terminal sessions.
func (r *Registry) ActiveGames() []*GameSession {
	return r.list(func(g *GameSession) bool { return !g.Status.Terminal() })
}

// FinishedGames lists terminal sessions.
func (r *Registry) FinishedGames() []*GameSession {
	return r.list(func(g *GameSession) bool { return g.Status.Terminal() })
}

// AllGames lists every session.
func (r *Registry) AllGames() []*GameSession {
	return r.list(func(*GameSession) bool { return true })
}

func (r *Registry) list(keep func(*GameSession) bool) []*GameSession {
	out := []*GameSession{}
	for _, g := range r.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
