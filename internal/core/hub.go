package core

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

// Hub is the relay coordinator. A single dispatch goroutine (Run) owns the
// clients and rooms maps, so no locking is needed: each inbound command is
// handled to completion before the next one runs.
type Hub struct {
	messages store.MessageStore
	users    store.UserStore
	log      *zerolog.Logger

	clients map[*Client]struct{}
	rooms   map[string]*Room

	registrations   chan *Client
	unregistrations chan *Client
	commands        chan submission
	done            chan struct{}
}

type submission struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub backed by the given stores.
func NewHub(messages store.MessageStore, users store.UserStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		messages:        messages,
		users:           users,
		log:             logger,
		clients:         make(map[*Client]struct{}),
		rooms:           make(map[string]*Room),
		registrations:   make(chan *Client),
		unregistrations: make(chan *Client),
		commands:        make(chan submission, 64),
		done:            make(chan struct{}),
	}
}

// RegisterClient adds a connection to the hub and starts pumping its
// commands into the dispatch loop. The caller owns client.Commands and
// must close it when the connection ends.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.registrations <- c:
	case <-h.done:
	}
	go func() {
		for cmd := range c.Commands {
			select {
			case h.commands <- submission{client: c, cmd: cmd}:
			case <-h.done:
				// Keep draining so the writer can close the channel.
			}
		}
	}()
}

// UnregisterClient removes a connection, clearing all room membership.
// A no-op once the hub has stopped, so late disconnects never block.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregistrations <- c:
	case <-h.done:
	}
}

// Run processes registrations and commands until the context is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.registrations:
			h.clients[c] = struct{}{}
		case c := <-h.unregistrations:
			h.removeClient(c)
		case sub := <-h.commands:
			if _, ok := h.clients[sub.client]; !ok {
				continue // command raced with disconnect
			}
			h.handleCommand(ctx, sub.client, sub.cmd)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for name := range c.Rooms {
		if room, ok := h.rooms[name]; ok {
			room.RemoveClient(c)
			if room.Empty() {
				delete(h.rooms, name)
			}
		}
	}
	close(c.Events)
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandRegister:
		h.handleRegister(c, cmd.UserID)
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Room)
	case CommandChatMessage:
		h.relayMessage(ctx, c, cmd.Chat)
	case CommandSignal:
		h.relaySignal(c, cmd.Signal)
	}
}

// handleRegister binds the user identity and joins the private channel.
// Idempotent; failures are logged and swallowed so registration never
// aborts the connection.
func (h *Hub) handleRegister(c *Client, userID string) {
	if userID == "" {
		h.log.Warn().Str("client_id", c.ID).Msg("register with empty user id ignored")
		return
	}
	c.UserID = userID
	h.joinRoom(c, UserChannel(userID))
	h.log.Debug().Str("client_id", c.ID).Str("user_id", userID).Msg("client registered")
}

// joinRoom is idempotent; rooms are created implicitly on first join.
func (h *Hub) joinRoom(c *Client, name string) {
	if name == "" {
		h.log.Warn().Str("client_id", c.ID).Msg("join with empty room ignored")
		return
	}
	room, ok := h.rooms[name]
	if !ok {
		room = NewRoom(name)
		h.rooms[name] = room
	}
	room.AddClient(c)
	c.Rooms[name] = struct{}{}
}

// relayMessage persists the message, then fans it out. Persistence failure
// aborts the whole operation: nothing is published for an unpersisted
// message. Name resolution and the unread recount are best-effort and
// independently suppressed on error.
func (h *Hub) relayMessage(ctx context.Context, c *Client, chat *ChatMessage) {
	if chat == nil {
		return
	}
	if c.UserID != "" && c.UserID != chat.From {
		// Sender-asserted identity is not enforced, only observed.
		h.log.Debug().Str("client_id", c.ID).Str("registered", c.UserID).Str("asserted", chat.From).
			Msg("chat message from mismatching identity")
	}

	fromID, err := strconv.ParseInt(chat.From, 10, 64)
	if err != nil {
		h.log.Error().Err(err).Str("from", chat.From).Msg("chat message with bad sender id")
		return
	}
	toID, err := strconv.ParseInt(chat.To, 10, 64)
	if err != nil {
		h.log.Error().Err(err).Str("to", chat.To).Msg("chat message with bad recipient id")
		return
	}

	if h.messages == nil {
		h.log.Error().Str("room", chat.Room).Msg("chat message dropped: no message store")
		return
	}
	msg := &store.Message{FromID: fromID, ToID: toID, Content: chat.Content}
	if err := h.messages.CreateMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("room", chat.Room).Msg("persist chat message")
		return
	}

	payload := &MessagePayload{
		ID:        msg.ID,
		From:      chat.From,
		To:        chat.To,
		Content:   chat.Content,
		CreatedAt: msg.CreatedAt,
	}
	payload.FromName = h.lookupName(ctx, fromID)
	payload.ToName = h.lookupName(ctx, toID)

	h.publish(chat.Room, &Event{Kind: EventNewMessage, Room: chat.Room, Message: payload})

	unread, err := h.messages.CountUnread(ctx, toID)
	if err != nil {
		h.log.Warn().Err(err).Str("to", chat.To).Msg("recompute unread count")
		return
	}
	h.publishToUser(chat.To, &Event{Kind: EventUnread, Unread: unread})
}

// lookupName resolves a display name, yielding "" on any failure.
func (h *Hub) lookupName(ctx context.Context, userID int64) string {
	if h.users == nil {
		return ""
	}
	u, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		h.log.Debug().Err(err).Int64("user_id", userID).Msg("name lookup failed")
		return ""
	}
	return u.Name
}

// relaySignal forwards a signaling payload verbatim to the room. The relay
// has no awareness of the payload beyond its routing fields.
func (h *Hub) relaySignal(c *Client, sig *Signal) {
	if sig == nil || sig.Room == "" {
		h.log.Warn().Str("client_id", c.ID).Msg("signal without room dropped")
		return
	}
	h.publish(sig.Room, &Event{Kind: EventSignal, Room: sig.Room, Signal: sig})
}

// publish delivers an event to every member of the room. An empty or
// unknown room is a silent no-op: fire-and-forget, not a durable log.
func (h *Hub) publish(roomName string, event *Event) {
	room, ok := h.rooms[roomName]
	if !ok {
		return
	}
	room.Broadcast(event)
}

// publishToUser delivers to the user's private channel with the same
// no-op-if-absent semantics; stored state compensates for offline users.
func (h *Hub) publishToUser(userID string, event *Event) {
	h.publish(UserChannel(userID), event)
}
