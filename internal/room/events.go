package room

import (
	"time"

	"card-duel/internal/game"
	"card-duel/internal/ledger"
	"card-duel/internal/session"
)

// Outbound event payloads. Wire keys match what the lobby client
// already renders, including "balances" for the per-game stake escrow.

type GameSummary struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type GameState struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Players   []string         `json:"players"`
	Cards     [][]string       `json:"cards"`
	Balances  map[string]int64 `json:"balances"`
	Winner    string           `json:"winner,omitempty"`
	Loser     string           `json:"loser,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type RematchData struct {
	RequestedBy []string `json:"requestedBy"`
	Needed      int      `json:"needed"`
}

type ConnectedEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type GameCreatedEvent struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	Status     string `json:"status"`
	NewBalance int64  `json:"newBalance"`
}

type GameJoinedEvent struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	Status     string `json:"status"`
	NewBalance int64  `json:"newBalance"`
}

type GameStateEvent struct {
	Type      string    `json:"type"`
	GameState GameState `json:"gameState"`
}

type GameUpdatedEvent struct {
	Type        string       `json:"type"`
	GameID      string       `json:"gameId"`
	GameState   GameState    `json:"gameState"`
	RematchData *RematchData `json:"rematchData,omitempty"`
}

type GameListEvent struct {
	Type  string        `json:"type"`
	Games []GameSummary `json:"games"`
}

type WalletUpdateEvent struct {
	Type         string               `json:"type"`
	Balance      int64                `json:"balance"`
	Transactions []ledger.Transaction `json:"transactions"`
}

type RematchCreatedEvent struct {
	Type           string    `json:"type"`
	OriginalGameID string    `json:"originalGameId"`
	NewGameID      string    `json:"newGameId"`
	GameState      GameState `json:"gameState"`
}

type RematchFailedEvent struct {
	Type           string `json:"type"`
	OriginalGameID string `json:"originalGameId"`
	Reason         string `json:"reason"`
	Player1Balance int64  `json:"player1Balance"`
	Player2Balance int64  `json:"player2Balance"`
}

type GameCancelledEvent struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	NewBalance int64  `json:"newBalance"`
	Message    string `json:"message"`
}

type ErrorEvent struct {
	Type              string `json:"type"`
	Message           string `json:"message"`
	CurrentGameID     string `json:"currentGameId,omitempty"`
	CurrentGameStatus string `json:"currentGameStatus,omitempty"`
}

func cardStrings(hand []game.Card) []string {
	out := make([]string, 0, len(hand))
	for _, c := range hand {
		out = append(out, c.String())
	}
	return out
}

// viewOf copies a session into its wire form. Hands stay hidden (an
// empty cards array) until the session leaves waiting-for-players.
func viewOf(g *session.GameSession) GameState {
	cards := [][]string{}
	if g.Status != session.StatusWaiting {
		cards = append(cards, cardStrings(g.Hands[0]), cardStrings(g.Hands[1]))
	}
	players := make([]string, len(g.Players))
	copy(players, g.Players)
	balances := make(map[string]int64, len(g.Escrow))
	for pid, amount := range g.Escrow {
		balances[pid] = amount
	}
	return GameState{
		ID:        g.ID,
		Status:    string(g.Status),
		Players:   players,
		Cards:     cards,
		Balances:  balances,
		Winner:    g.Winner,
		Loser:     g.Loser,
		CreatedAt: g.CreatedAt,
	}
}

func summaries(games []*session.GameSession) []GameSummary {
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, GameSummary{ID: g.ID, Status: string(g.Status)})
	}
	return out
}
