package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeRegister    = "register"
	InboundTypeJoinRoom    = "joinRoom"
	InboundTypeChatMessage = "chatMessage"
	InboundTypeOffer       = "webrtc-offer"
	InboundTypeAnswer      = "webrtc-answer"
	InboundTypeICE         = "webrtc-ice"
	InboundTypeEnd         = "webrtc-end"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNewMessage = "newMessage"
	EventUnread     = "unread"
)

// JoinRoomData requests to join a specific room.
type JoinRoomData struct {
	Room string `json:"room"`
}

// ChatMessageData is a chat message from the client. IDs are strings on
// the wire; the room must equal the deterministic name for the pair.
type ChatMessageData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Content string `json:"content"`
	Room    string `json:"room"`
}

// OfferSignal starts call negotiation. The offer body is opaque to the
// relay (an SDP session description).
type OfferSignal struct {
	Room     string          `json:"room"`
	Offer    json.RawMessage `json:"offer"`
	From     string          `json:"from"`
	FromName string          `json:"fromName,omitempty"`
	To       string          `json:"to"`
}

// AnswerSignal completes call negotiation.
type AnswerSignal struct {
	Room     string          `json:"room"`
	Answer   json.RawMessage `json:"answer"`
	From     string          `json:"from"`
	FromName string          `json:"fromName,omitempty"`
	To       string          `json:"to"`
}

// ICESignal carries one connectivity candidate.
type ICESignal struct {
	Room      string          `json:"room"`
	Candidate json.RawMessage `json:"candidate"`
	From      string          `json:"from"`
	To        string          `json:"to"`
}

// EndSignal terminates a call for everyone in the room.
type EndSignal struct {
	Room string `json:"room"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// NewMessageData is emitted to the conversation room after a successful
// persist. Names are best-effort and may be empty.
type NewMessageData struct {
	ID        int64  `json:"id"`
	From      string `json:"from"`
	FromName  string `json:"fromName"`
	To        string `json:"to"`
	ToName    string `json:"toName"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // unix seconds
}

// UnreadData is pushed to the recipient's private channel.
type UnreadData struct {
	Count int64 `json:"count"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
