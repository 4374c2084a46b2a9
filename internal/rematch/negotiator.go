package rematch

import (
	"errors"
	"sort"
)

var ErrNotParticipant = errors.New("not_participant")

// Negotiator tracks per-finished-game rematch opt-ins. Sets are
// ephemeral: created on the first request, deleted when the rematch
// resolves or when a participant disconnects and empties the set.
// Owned by the room coordinator; no internal locking.
type Negotiator struct {
	requests map[string]map[string]struct{}
}

func New() *Negotiator {
	return &Negotiator{requests: map[string]map[string]struct{}{}}
}

// Request records pid's opt-in for gameID. players is the finished
// session's roster; a pid outside it is rejected. ready is true once
// every player has opted in.
func (n *Negotiator) Request(gameID, pid string, players []string) (requested []string, ready bool, err error) {
	participant := false
	for _, p := range players {
		if p == pid {
			participant = true
			break
		}
	}
	if !participant {
		return nil, false, ErrNotParticipant
	}
	set, ok := n.requests[gameID]
	if !ok {
		set = map[string]struct{}{}
		n.requests[gameID] = set
	}
	set[pid] = struct{}{}

	ready = true
	for _, p := range players {
		if _, in := set[p]; !in {
			ready = false
			break
		}
	}
	return n.Requested(gameID), ready, nil
}

// Requested returns the current opt-in set for gameID, sorted for
// stable broadcasts.
func (n *Negotiator) Requested(gameID string) []string {
	set, ok := n.requests[gameID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for pid := range set {
		out = append(out, pid)
	}
	sort.Strings(out)
	return out
}

// Clear drops the set for gameID, whether or not one exists.
func (n *Negotiator) Clear(gameID string) {
	delete(n.requests, gameID)
}

// DropPlayer removes pid from every pending set and returns the game
// ids whose sets changed. Sets emptied by the removal are deleted.
func (n *Negotiator) DropPlayer(pid string) []string {
	changed := []string{}
	for gameID, set := range n.requests {
		if _, ok := set[pid]; !ok {
			continue
		}
		delete(set, pid)
		if len(set) == 0 {
			delete(n.requests, gameID)
		}
		changed = append(changed, gameID)
	}
	sort.Strings(changed)
	return changed
}
