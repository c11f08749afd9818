package http

import (
	"bytes"
	"encoding/json"

	"github.com/mentorhub/mentorhub-server/internal/core"
	"github.com/mentorhub/mentorhub-server/internal/proto"
)

var jsonNull = []byte("null")

// inboundToCommand maps a wire message to a hub command. A nil command
// with a nil error means the message was dropped; malformed signaling
// never aborts an in-progress call on the other side of the relay.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeRegister:
		// The payload is a bare JSON string holding the user id.
		var userID string
		if err := json.Unmarshal(inbound.Data, &userID); err != nil {
			return nil, nil, nil
		}
		return &core.Command{
			Kind:   core.CommandRegister,
			UserID: userID,
		}, nil, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.Room,
		}, nil, nil
	case proto.InboundTypeChatMessage:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Room == "" || msg.From == "" || msg.To == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "from, to and room are required"}, nil
		}
		return &core.Command{
			Kind: core.CommandChatMessage,
			Chat: &core.ChatMessage{
				From:    msg.From,
				To:      msg.To,
				Content: msg.Content,
				Room:    msg.Room,
			},
		}, nil, nil
	case proto.InboundTypeOffer:
		var sig proto.OfferSignal
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, nil, nil
		}
		if sig.Room == "" || emptyJSON(sig.Offer) {
			return nil, nil, nil
		}
		return signalCommand(inbound), nil, nil
	case proto.InboundTypeAnswer:
		var sig proto.AnswerSignal
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, nil, nil
		}
		if sig.Room == "" || emptyJSON(sig.Answer) {
			return nil, nil, nil
		}
		return signalCommand(inbound), nil, nil
	case proto.InboundTypeICE:
		var sig proto.ICESignal
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, nil, nil
		}
		if sig.Room == "" || emptyJSON(sig.Candidate) {
			return nil, nil, nil
		}
		return signalCommand(inbound), nil, nil
	case proto.InboundTypeEnd:
		var sig proto.EndSignal
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, nil, nil
		}
		if sig.Room == "" {
			return nil, nil, nil
		}
		return signalCommand(inbound), nil, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

// signalCommand wraps a validated signaling message. The raw payload is
// forwarded byte for byte; the hub never re-encodes it.
func signalCommand(inbound proto.Inbound) *core.Command {
	var envelope struct {
		Room string `json:"room"`
	}
	_ = json.Unmarshal(inbound.Data, &envelope)
	return &core.Command{
		Kind: core.CommandSignal,
		Signal: &core.Signal{
			Event:   inbound.Type,
			Room:    envelope.Room,
			Payload: inbound.Data,
		},
	}
}

func emptyJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, jsonNull)
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data: proto.NewMessageData{
				ID:        event.Message.ID,
				From:      event.Message.From,
				FromName:  event.Message.FromName,
				To:        event.Message.To,
				ToName:    event.Message.ToName,
				Content:   event.Message.Content,
				CreatedAt: event.Message.CreatedAt.Unix(),
			},
		}
	case core.EventUnread:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUnread,
			Data:  proto.UnreadData{Count: event.Unread},
		}
	case core.EventSignal:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: event.Signal.Event,
			Data:  event.Signal.Payload,
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
