package session

import "errors"

var (
	ErrNotFound            = errors.New("game_not_found")
	ErrAlreadyInActiveGame = errors.New("already_in_active_game")
	ErrAlreadyJoined       = errors.New("already_joined")
	ErrGameFull            = errors.New("game_full")
	ErrGameFinished        = errors.New("game_finished")
	ErrNotCreator          = errors.New("not_creator")
	ErrAlreadyStarted      = errors.New("already_started")
	ErrOpponentPresent     = errors.New("opponent_present")
)
