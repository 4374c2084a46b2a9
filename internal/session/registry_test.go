package session

import (
	"errors"
	"testing"

	"card-duel/internal/game"
	"card-duel/internal/ledger"
)

const stake = 25

func newRegistry() (*Registry, *ledger.Ledger) {
	led := ledger.New(1000)
	return NewRegistry(led), led
}

// setHands pins exact hand totals so outcome assertions are deterministic.
func setHands(g *GameSession, sum1, sum2 int) {
	g.Hands[0] = []game.Card{{Species: "chemander", Rank: sum1}}
	g.Hands[1] = []game.Card{{Species: "chemander", Rank: sum2}}
}

func TestCreateStakesAndOpensSession(t *testing.T) {
	r, led := newRegistry()
	g, err := r.Create("alice", stake)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Status != StatusWaiting {
		t.Fatalf("status = %s, want waiting-for-players", g.Status)
	}
	if len(g.Players) != 1 || g.Players[0] != "alice" {
		t.Fatalf("players = %v, want [alice]", g.Players)
	}
	if g.Escrow["alice"] != stake {
		t.Fatalf("escrow = %d, want %d", g.Escrow["alice"], stake)
	}
	if bal := led.Balance("alice"); bal != 975 {
		t.Fatalf("balance = %d, want 975", bal)
	}
}

func TestCreateFailsWhileActiveElsewhere(t *testing.T) {
	r, _ := newRegistry()
	if _, err := r.Create("alice", stake); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Create("alice", stake); !errors.Is(err, ErrAlreadyInActiveGame) {
		t.Fatalf("err = %v, want ErrAlreadyInActiveGame", err)
	}
}

func TestCreateInsufficientFundsLeavesNoSession(t *testing.T) {
	led := ledger.New(10)
	r := NewRegistry(led)
	if _, err := r.Create("poor", stake); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(r.OpenGames()) != 0 {
		t.Fatal("failed create left a session behind")
	}
	if bal := led.Balance("poor"); bal != 10 {
		t.Fatalf("balance = %d, want 10", bal)
	}
}

func TestJoinDealsHandsAtomically(t *testing.T) {
	r, led := newRegistry()
	g, _ := r.Create("alice", stake)
	joined, err := r.Join(g.ID, "bob", stake)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Status != StatusInProgress {
		t.Fatalf("status = %s, want in-progress", joined.Status)
	}
	if len(joined.Hands[0]) != game.HandSize || len(joined.Hands[1]) != game.HandSize {
		t.Fatalf("hands = %d/%d cards, want %d each", len(joined.Hands[0]), len(joined.Hands[1]), game.HandSize)
	}
	if bal := led.Balance("bob"); bal != 975 {
		t.Fatalf("bob balance = %d, want 975", bal)
	}
}

func TestJoinGuards(t *testing.T) {
	r, _ := newRegistry()
	g, _ := r.Create("alice", stake)

	if _, err := r.Join("nope", "bob", stake); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id err = %v, want ErrNotFound", err)
	}
	if _, err := r.Join(g.ID, "alice", stake); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("rejoin err = %v, want ErrAlreadyJoined", err)
	}

	if _, err := r.Join(g.ID, "bob", stake); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := r.Join(g.ID, "carol", stake); !errors.Is(err, ErrGameFull) {
		t.Fatalf("third join err = %v, want ErrGameFull", err)
	}

	// bob is now busy in g, so he cannot open or enter another game
	g2, _ := r.Create("dave", stake)
	if _, err := r.Join(g2.ID, "bob", stake); !errors.Is(err, ErrAlreadyInActiveGame) {
		t.Fatalf("busy join err = %v, want ErrAlreadyInActiveGame", err)
	}
}

func TestJoinFinishedGame(t *testing.T) {
	r, _ := newRegistry()
	g, _ := r.Create("alice", stake)
	_, _ = r.Join(g.ID, "bob", stake)
	r.Resolve(g.ID)
	if _, err := r.Join(g.ID, "carol", stake); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v, want ErrGameFinished", err)
	}
}

func TestCancelRefundsAndRemoves(t *testing.T) {
	r, led := newRegistry()
	g, _ := r.Create("alice", stake)

	newBal, err := r.Cancel(g.ID, "alice")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if newBal != 1000 {
		t.Fatalf("balance = %d, want 1000", newBal)
	}
	if _, ok := r.Get(g.ID); ok {
		t.Fatal("cancelled session still present")
	}
	if bal := led.Balance("alice"); bal != 1000 {
		t.Fatalf("ledger balance = %d, want 1000", bal)
	}
}

func TestCancelGuards(t *testing.T) {
	r, _ := newRegistry()
	g, _ := r.Create("alice", stake)

	if _, err := r.Cancel("nope", "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := r.Cancel(g.ID, "bob"); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("err = %v, want ErrNotCreator", err)
	}

	_, _ = r.Join(g.ID, "bob", stake)
	if _, err := r.Cancel(g.ID, "alice"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
}

func TestResolveWinnerPayout(t *testing.T) {
	r, led := newRegistry()
	g, _ := r.Create("alice", stake)
	_, _ = r.Join(g.ID, "bob", stake)
	setHands(g, 30, 22)

	resolved, changed := r.Resolve(g.ID)
	if !changed {
		t.Fatal("resolve reported no change")
	}
	if resolved.Status != StatusFirstPlayerWon {
		t.Fatalf("status = %s, want 1st_player_won", resolved.Status)
	}
	if resolved.Winner != "alice" || resolved.Loser != "bob" {
		t.Fatalf("winner/loser = %s/%s, want alice/bob", resolved.Winner, resolved.Loser)
	}
	if bal := led.Balance("alice"); bal != 1025 {
		t.Fatalf("alice balance = %d, want 1025", bal)
	}
	if bal := led.Balance("bob"); bal != 975 {
		t.Fatalf("bob balance = %d, want 975", bal)
	}

	// loser still gets an audit row
	_, txs := led.Snapshot("bob")
	if txs[0].Kind != ledger.KindPayout || txs[0].Amount != 0 {
		t.Fatalf("bob head tx = %+v, want payout 0", txs[0])
	}
}

func TestResolveDrawRefundsBoth(t *testing.T) {
	r, led := newRegistry()
	g, _ := r.Create("alice", stake)
	_, _ = r.Join(g.ID, "bob", stake)
	setHands(g, 17, 17)

	resolved, _ := r.Resolve(g.ID)
	if resolved.Status != StatusDraw {
		t.Fatalf("status = %s, want draw", resolved.Status)
	}
	if bal := led.Balance("alice"); bal != 1000 {
		t.Fatalf("alice balance = %d, want 1000", bal)
	}
	if bal := led.Balance("bob"); bal != 1000 {
		t.Fatalf("bob balance = %d, want 1000", bal)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r, led := newRegistry()
	g, _ := r.Create("alice", stake)
	_, _ = r.Join(g.ID, "bob", stake)
	setHands(g, 30, 22)

	r.Resolve(g.ID)
	for i := 0; i < 5; i++ {
		if _, changed := r.Resolve(g.ID); changed {
			t.Fatalf("repeat resolve %d reported a change", i)
		}
	}
	if bal := led.Balance("alice"); bal != 1025 {
		t.Fatalf("alice balance after repeats = %d, want 1025", bal)
	}
	if bal := led.Balance("bob"); bal != 975 {
		t.Fatalf("bob balance after repeats = %d, want 975", bal)
	}
}

func TestResolveUnknownGameIsNoOp(t *testing.T) {
	r, _ := newRegistry()
	if _, changed := r.Resolve("nope"); changed {
		t.Fatal("resolving an unknown id reported a change")
	}
}

func TestSpawnRematch(t *testing.T) {
	r, led := newRegistry()
	g, err := r.SpawnRematch("alice", "bob", stake)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if g.Status != StatusInProgress {
		t.Fatalf("status = %s, want in-progress", g.Status)
	}
	if len(g.Hands[0]) != game.HandSize || len(g.Hands[1]) != game.HandSize {
		t.Fatal("rematch spawned without hands")
	}
	if led.Balance("alice") != 975 || led.Balance("bob") != 975 {
		t.Fatal("rematch did not stake both players")
	}
}

func TestSpawnRematchInsufficientFundsDebitsNeither(t *testing.T) {
	led := ledger.New(1000)
	r := NewRegistry(led)
	_, _ = led.Debit("bob", 990, "drain", ledger.KindStake, "drain")

	_, err := r.SpawnRematch("alice", "bob", stake)
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if bal := led.Balance("alice"); bal != 1000 {
		t.Fatalf("alice balance = %d, want 1000 (no partial debit)", bal)
	}
}

func TestListBuckets(t *testing.T) {
	r, _ := newRegistry()
	open, _ := r.Create("alice", stake)
	running, _ := r.Create("carol", stake)
	_, _ = r.Join(running.ID, "dave", stake)
	done, _ := r.Create("erin", stake)
	_, _ = r.Join(done.ID, "frank", stake)
	r.Resolve(done.ID)

	if got := r.OpenGames(); len(got) != 1 || got[0].ID != open.ID {
		t.Fatalf("open games = %v", got)
	}
	if got := r.ActiveGames(); len(got) != 2 {
		t.Fatalf("active games = %d, want 2", len(got))
	}
	if got := r.FinishedGames(); len(got) != 1 || got[0].ID != done.ID {
		t.Fatalf("finished games = %v", got)
	}
	if got := r.AllGames(); len(got) != 3 {
		t.Fatalf("all games = %d, want 3", len(got))
	}
}
