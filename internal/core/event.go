package core

import "time"

// EventKind is a notification the relay emits to connections.
type EventKind int

const (
	// EventNewMessage delivers a chat message to a conversation room.
	EventNewMessage EventKind = iota
	// EventUnread pushes an updated unread count to a private channel.
	EventUnread
	// EventSignal re-emits a call-signaling payload to a room.
	EventSignal
	// EventError notifies a connection about a protocol error.
	EventError
)

// MessagePayload is the enriched chat message delivered to a room.
// Names are best-effort; a failed lookup leaves them empty.
type MessagePayload struct {
	ID        int64
	From      string
	FromName  string
	To        string
	ToName    string
	Content   string
	CreatedAt time.Time
}

// Event is sent to connections to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	Message *MessagePayload // EventNewMessage
	Unread  int64           // EventUnread
	Signal  *Signal         // EventSignal
	Error   *CoreError      // EventError
}
