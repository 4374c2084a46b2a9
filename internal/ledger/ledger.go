package ledger

import (
	"errors"
	"time"

	"card-duel/internal/ids"
)

const DefaultBalance = 1000

var ErrInsufficientFunds = errors.New("insufficient_funds")

type Kind string

const (
	KindStake  Kind = "stake"
	KindPayout Kind = "payout"
	KindRefund Kind = "refund"
)

// Transaction is one immutable row of a wallet's append-only log.
// The wire key for Kind is "type" to match the lobby client.
type Transaction struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	Amount      int64     `json:"amount"`
	GameID      string    `json:"gameId"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

type wallet struct {
	balance      int64
	transactions []Transaction // newest first
}

// Ledger holds per-player balances and transaction logs. It does no
// locking of its own: it is owned by the room coordinator, which
// serializes every mutation behind its command loop.
type Ledger struct {
	startingBalance int64
	wallets         map[string]*wallet
}

func New(startingBalance int64) *Ledger {
	if startingBalance <= 0 {
		startingBalance = DefaultBalance
	}
	return &Ledger{
		startingBalance: startingBalance,
		wallets:         map[string]*wallet{},
	}
}

// Ensure lazily creates a wallet for pid with the starting balance.
func (l *Ledger) Ensure(pid string) {
	if _, ok := l.wallets[pid]; !ok {
		l.wallets[pid] = &wallet{balance: l.startingBalance}
	}
}

func (l *Ledger) Exists(pid string) bool {
	_, ok := l.wallets[pid]
	return ok
}

func (l *Ledger) Balance(pid string) int64 {
	l.Ensure(pid)
	return l.wallets[pid].balance
}

// Debit removes amount from pid's balance and logs a negative stake,
// payout or refund row. The balance is never allowed to go negative.
func (l *Ledger) Debit(pid string, amount int64, gameID string, kind Kind, description string) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must be positive")
	}
	l.Ensure(pid)
	w := l.wallets[pid]
	if w.balance < amount {
		return 0, ErrInsufficientFunds
	}
	w.balance -= amount
	l.append(w, -amount, gameID, kind, description)
	return w.balance, nil
}

// Credit adds amount to pid's balance. Zero-amount credits are allowed
// so that losing players still get an audit row.
func (l *Ledger) Credit(pid string, amount int64, gameID string, kind Kind, description string) int64 {
	l.Ensure(pid)
	w := l.wallets[pid]
	w.balance += amount
	l.append(w, amount, gameID, kind, description)
	return w.balance
}

// Snapshot returns the balance and a copy of the transaction log,
// newest first. It never mutates.
func (l *Ledger) Snapshot(pid string) (int64, []Transaction) {
	l.Ensure(pid)
	w := l.wallets[pid]
	out := make([]Transaction, len(w.transactions))
	copy(out, w.transactions)
	return w.balance, out
}

func (l *Ledger) append(w *wallet, amount int64, gameID string, kind Kind, description string) {
	tx := Transaction{
		ID:          ids.New(),
		Kind:        kind,
		Amount:      amount,
		GameID:      gameID,
		Timestamp:   time.Now(),
		Description: description,
	}
	w.transactions = append([]Transaction{tx}, w.transactions...)
}
