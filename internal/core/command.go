package core

import "encoding/json"

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandRegister binds a user identity to the connection and joins
	// its private notification channel.
	CommandRegister CommandKind = iota
	// CommandJoinRoom subscribes the connection to a room.
	CommandJoinRoom
	// CommandChatMessage persists a chat message and fans it out.
	CommandChatMessage
	// CommandSignal forwards a call-signaling payload to a room.
	CommandSignal
)

// ChatMessage carries the sender-asserted chat fields off the wire.
// IDs are decimal strings; the hub parses them for persistence.
type ChatMessage struct {
	From    string
	To      string
	Content string
	Room    string
}

// Signal is a call-signaling payload forwarded verbatim.
// The relay routes on Event and Room only; Payload stays opaque.
type Signal struct {
	Event   string
	Room    string
	Payload json.RawMessage
}

// Command represents an action requested by a connection.
type Command struct {
	Kind   CommandKind
	UserID string       // CommandRegister
	Room   string       // CommandJoinRoom
	Chat   *ChatMessage // CommandChatMessage
	Signal *Signal      // CommandSignal
}
