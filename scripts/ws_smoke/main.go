package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mentorhub/mentorhub-server/internal/core"
	"github.com/mentorhub/mentorhub-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	from := flag.String("from", "1", "sender user id")
	to := flag.String("to", "2", "recipient user id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			return fmt.Errorf("marshal %s: %w", typ, marshalErr)
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); writeErr != nil {
			return fmt.Errorf("send %s: %w", typ, writeErr)
		}
		return nil
	}

	room := core.DirectRoomName(*from, *to)

	if err := send(proto.InboundTypeRegister, *from); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{Room: room}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeChatMessage, proto.ChatMessageData{
		From:    *from,
		To:      *to,
		Content: *text,
		Room:    room,
	}); err != nil {
		return err
	}

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		if outbound.Error != nil {
			return fmt.Errorf("server error: %s (%s)", outbound.Error.Msg, outbound.Error.Code)
		}

		if outbound.Event == proto.EventNewMessage {
			var evt proto.NewMessageData
			if unmarshalErr := json.Unmarshal(outbound.Data, &evt); unmarshalErr != nil {
				fmt.Printf("Raw data: %s\n", string(outbound.Data))
				return fmt.Errorf("unmarshal newMessage: %w", unmarshalErr)
			}
			fmt.Printf("NewMessage: id=%d from=%s to=%s content=%q ts=%d\n",
				evt.ID, evt.From, evt.To, evt.Content, evt.CreatedAt)
			return nil
		}
	}
}
