package room

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"card-duel/internal/ledger"
	"card-duel/internal/rematch"
	"card-duel/internal/session"
)

const DefaultStake = 25

// Conn is one client connection as the coordinator sees it. Send must
// not block: broadcasts are best-effort and a slow consumer must not
// hold up delivery to the rest of the room.
type Conn interface {
	ID() string
	Send(payload any)
}

type Options struct {
	Stake           int64
	StartingBalance int64
}

// Coordinator is the room's single actor. It exclusively owns the
// ledger, the session registry, the rematch negotiator and the
// connection set; every inbound command runs to completion under one
// mutex before the next begins, which is what makes the registry's
// exactly-once payout guarantee hold.
type Coordinator struct {
	mu       sync.Mutex
	stake    int64
	ledger   *ledger.Ledger
	registry *session.Registry
	rematch  *rematch.Negotiator
	conns    map[Conn]string // connection -> last authenticated pid
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Stake <= 0 {
		opts.Stake = DefaultStake
	}
	led := ledger.New(opts.StartingBalance)
	return &Coordinator{
		stake:    opts.Stake,
		ledger:   led,
		registry: session.NewRegistry(led),
		rematch:  rematch.New(),
		conns:    map[Conn]string{},
	}
}

// Attach registers a connection and greets it with its id and the
// current open-game list.
func (c *Coordinator) Attach(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[conn] = conn.ID()
	conn.Send(ConnectedEvent{Type: "connected", ID: conn.ID()})
	conn.Send(c.openGamesEvent())
	log.Info().Str("conn_id", conn.ID()).Int("connections", len(c.conns)).Msg("connection_attached")
}

// Detach removes a connection and withdraws any rematch opt-ins held
// by the pid it last authenticated as, re-broadcasting the affected
// sessions' rematch progress.
func (c *Coordinator) Detach(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pid, ok := c.conns[conn]
	if !ok {
		return
	}
	delete(c.conns, conn)
	for _, gameID := range c.rematch.DropPlayer(pid) {
		g, found := c.registry.Get(gameID)
		if !found {
			continue
		}
		c.broadcast(GameUpdatedEvent{
			Type:      "game-updated",
			GameID:    gameID,
			GameState: viewOf(g),
			RematchData: &RematchData{
				RequestedBy: c.rematch.Requested(gameID),
				Needed:      len(g.Players),
			},
		})
	}
	log.Info().Str("conn_id", conn.ID()).Str("pid", pid).Int("connections", len(c.conns)).Msg("connection_detached")
}

// Dispatch parses and runs one inbound frame. Malformed frames earn
// the sender an error event; unknown command types are logged and
// dropped without one.
func (c *Coordinator) Dispatch(conn Conn, raw []byte) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			log.Warn().Str("conn_id", conn.ID()).Msg("unknown_command_type")
			return
		}
		conn.Send(ErrorEvent{Type: "error", Message: "Invalid message format"})
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pid := cmd.SenderID
	if pid == "" {
		pid = conn.ID()
	}
	c.conns[conn] = pid
	c.ledger.Ensure(pid)

	switch cmd.Type {
	case CmdCreateGame:
		c.handleCreateGame(conn, pid)
	case CmdJoinGame:
		c.handleJoinGame(conn, pid, cmd.GameID)
	case CmdGameState:
		c.handleGameState(conn, cmd.GameID)
	case CmdGetGames:
		conn.Send(c.openGamesEvent())
	case CmdGetActiveGames:
		conn.Send(GameListEvent{Type: "active-games-updated", Games: summaries(c.registry.ActiveGames())})
	case CmdGetFinishedGames:
		conn.Send(GameListEvent{Type: "finished-games-updated", Games: summaries(c.registry.FinishedGames())})
	case CmdGetWallet:
		c.handleGetWallet(conn, pid)
	case CmdRevealWinner:
		c.handleRevealWinner(cmd.GameID)
	case CmdRequestRematch:
		c.handleRequestRematch(cmd.GameID, pid)
	case CmdCancelGame:
		c.handleCancelGame(conn, pid, cmd.GameID)
	}
}

func (c *Coordinator) handleCreateGame(conn Conn, pid string) {
	g, err := c.registry.Create(pid, c.stake)
	if err != nil {
		conn.Send(c.errorEvent(pid, err))
		return
	}
	conn.Send(GameCreatedEvent{
		Type:       "game-created",
		GameID:     g.ID,
		Status:     string(g.Status),
		NewBalance: c.ledger.Balance(pid),
	})
	c.broadcast(c.openGamesEvent())
}

func (c *Coordinator) handleJoinGame(conn Conn, pid, gameID string) {
	g, err := c.registry.Join(gameID, pid, c.stake)
	if err != nil {
		conn.Send(c.errorEvent(pid, err))
		return
	}
	conn.Send(GameJoinedEvent{
		Type:       "game-joined",
		GameID:     g.ID,
		Status:     string(g.Status),
		NewBalance: c.ledger.Balance(pid),
	})
	c.broadcast(GameUpdatedEvent{Type: "game-updated", GameID: g.ID, GameState: viewOf(g)})
}

func (c *Coordinator) handleGameState(conn Conn, gameID string) {
	g, ok := c.registry.Get(gameID)
	if !ok {
		return
	}
	conn.Send(GameStateEvent{Type: "game-state", GameState: viewOf(g)})
}

func (c *Coordinator) handleGetWallet(conn Conn, pid string) {
	balance, transactions := c.ledger.Snapshot(pid)
	conn.Send(WalletUpdateEvent{Type: "wallet-update", Balance: balance, Transactions: transactions})
}

func (c *Coordinator) handleRevealWinner(gameID string) {
	g, changed := c.registry.Resolve(gameID)
	if !changed {
		return
	}
	c.broadcast(GameUpdatedEvent{Type: "game-updated", GameID: g.ID, GameState: viewOf(g)})
}

func (c *Coordinator) handleCancelGame(conn Conn, pid, gameID string) {
	newBalance, err := c.registry.Cancel(gameID, pid)
	if err != nil {
		conn.Send(c.errorEvent(pid, err))
		return
	}
	conn.Send(GameCancelledEvent{
		Type:       "game-cancelled",
		GameID:     gameID,
		NewBalance: newBalance,
		Message:    "Game cancelled, stake refunded",
	})
	c.broadcast(c.openGamesEvent())
}

func (c *Coordinator) handleRequestRematch(gameID, pid string) {
	g, ok := c.registry.Get(gameID)
	if !ok || !g.Status.Terminal() {
		return
	}
	requested, ready, err := c.rematch.Request(gameID, pid, g.Players)
	if err != nil {
		// non-participants are ignored without an error event
		log.Warn().Str("game_id", gameID).Str("pid", pid).Msg("rematch_request_ignored")
		return
	}
	if !ready {
		c.broadcast(GameUpdatedEvent{
			Type:      "game-updated",
			GameID:    gameID,
			GameState: viewOf(g),
			RematchData: &RematchData{
				RequestedBy: requested,
				Needed:      len(g.Players),
			},
		})
		return
	}

	p1, p2 := g.Players[0], g.Players[1]
	c.rematch.Clear(gameID)
	next, err := c.registry.SpawnRematch(p1, p2, c.stake)
	if err != nil {
		c.broadcast(RematchFailedEvent{
			Type:           "rematch-failed",
			OriginalGameID: gameID,
			Reason:         rematchFailureReason(err),
			Player1Balance: c.ledger.Balance(p1),
			Player2Balance: c.ledger.Balance(p2),
		})
		return
	}
	c.broadcast(RematchCreatedEvent{
		Type:           "rematch-game-created",
		OriginalGameID: gameID,
		NewGameID:      next.ID,
		GameState:      viewOf(next),
	})
}

func rematchFailureReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_balance"
	case errors.Is(err, session.ErrAlreadyInActiveGame):
		return "already_in_active_game"
	default:
		return "internal_error"
	}
}

// errorEvent maps registry and ledger failures onto the wire taxonomy.
// The already-active case carries the blocking session so the client
// can offer a rejoin.
func (c *Coordinator) errorEvent(pid string, err error) ErrorEvent {
	ev := ErrorEvent{Type: "error"}
	switch {
	case errors.Is(err, session.ErrAlreadyInActiveGame):
		ev.Message = "You already have an active game"
		if active := c.registry.ActiveSessionFor(pid); active != nil {
			ev.CurrentGameID = active.ID
			ev.CurrentGameStatus = string(active.Status)
		}
	case errors.Is(err, ledger.ErrInsufficientFunds):
		ev.Message = "Insufficient balance to stake this game"
	case errors.Is(err, session.ErrNotFound):
		ev.Message = "Game not found"
	case errors.Is(err, session.ErrGameFull):
		ev.Message = "Game is full"
	case errors.Is(err, session.ErrGameFinished):
		ev.Message = "Game is already finished"
	case errors.Is(err, session.ErrAlreadyJoined):
		ev.Message = "You are already in this game"
	case errors.Is(err, session.ErrNotCreator):
		ev.Message = "Only the creator can cancel this game"
	case errors.Is(err, session.ErrAlreadyStarted):
		ev.Message = "Game has already started"
	case errors.Is(err, session.ErrOpponentPresent):
		ev.Message = "Cannot cancel: an opponent has already joined"
	default:
		ev.Message = err.Error()
	}
	return ev
}

func (c *Coordinator) openGamesEvent() GameListEvent {
	return GameListEvent{Type: "game-list-updated", Games: summaries(c.registry.OpenGames())}
}

// broadcast fans an event out to every registered connection. Conn.Send
// is non-blocking by contract, so a dead peer cannot stall the room.
func (c *Coordinator) broadcast(payload any) {
	for conn := range c.conns {
		conn.Send(payload)
	}
}

// Games returns a copy of every session for the read-only HTTP surface.
func (c *Coordinator) Games() []GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []GameState{}
	for _, g := range c.registry.AllGames() {
		out = append(out, viewOf(g))
	}
	return out
}

// OpenGames returns summaries of sessions waiting for an opponent.
func (c *Coordinator) OpenGames() []GameSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return summaries(c.registry.OpenGames())
}

// Wallet returns pid's balance and transaction log without creating a
// wallet for pids the room has never seen.
func (c *Coordinator) Wallet(pid string) (int64, []ledger.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ledger.Exists(pid) {
		return 0, nil, false
	}
	balance, transactions := c.ledger.Snapshot(pid)
	return balance, transactions, true
}
