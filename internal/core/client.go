package core

// Client is a live connection as seen by the relay.
// UserID stays empty until the connection registers an identity.
type Client struct {
	ID       string
	UserID   string
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		Rooms:    make(map[string]struct{}),
	}
}
