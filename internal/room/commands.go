package room

import (
	"bytes"
	"encoding/json"
	"errors"
)

type CommandType string

const (
	CmdCreateGame       CommandType = "create-game"
	CmdJoinGame         CommandType = "join-game"
	CmdGameState        CommandType = "game-state"
	CmdGetGames         CommandType = "get-games"
	CmdGetActiveGames   CommandType = "get-active-games"
	CmdGetFinishedGames CommandType = "get-finished-games"
	CmdGetWallet        CommandType = "get-wallet"
	CmdRevealWinner     CommandType = "reveal-winner"
	CmdRequestRematch   CommandType = "request-rematch"
	CmdCancelGame       CommandType = "cancel-game"
)

// Command is the closed inbound union. SenderID may be empty, in which
// case the coordinator falls back to the connection id.
type Command struct {
	Type     CommandType `json:"type"`
	GameID   string      `json:"gameId"`
	SenderID string      `json:"senderId"`
}

var (
	ErrMalformedMessage = errors.New("malformed_message")
	ErrUnknownCommand   = errors.New("unknown_command")
)

var knownCommands = map[CommandType]bool{
	CmdCreateGame:       true,
	CmdJoinGame:         true,
	CmdGameState:        true,
	CmdGetGames:         true,
	CmdGetActiveGames:   true,
	CmdGetFinishedGames: true,
	CmdGetWallet:        true,
	CmdRevealWinner:     true,
	CmdRequestRematch:   true,
	CmdCancelGame:       true,
}

var needsGameID = map[CommandType]bool{
	CmdJoinGame:       true,
	CmdGameState:      true,
	CmdRevealWinner:   true,
	CmdRequestRematch: true,
	CmdCancelGame:     true,
}

// IsHeartbeat reports whether raw is a bare ping/pong frame. Those are
// accepted and ignored without JSON parsing.
func IsHeartbeat(raw []byte) bool {
	s := string(bytes.TrimSpace(raw))
	return s == "ping" || s == "pong" || s == `"ping"` || s == `"pong"`
}

// ParseCommand decodes one inbound frame. Bad JSON and shapes missing
// required fields come back as ErrMalformedMessage; syntactically fine
// frames with an unrecognized type come back as ErrUnknownCommand so
// the caller can log and drop them without an error event.
func ParseCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, ErrMalformedMessage
	}
	if cmd.Type == "" {
		return Command{}, ErrMalformedMessage
	}
	if !knownCommands[cmd.Type] {
		return Command{}, ErrUnknownCommand
	}
	if needsGameID[cmd.Type] && cmd.GameID == "" {
		return Command{}, ErrMalformedMessage
	}
	return cmd, nil
}
