package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mentorhub/mentorhub-server/internal/callpeer"
	"github.com/mentorhub/mentorhub-server/internal/core"
	"github.com/mentorhub/mentorhub-server/internal/proto"
)

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// stubSession stands in for a browser peer connection so the signaling
// flow can be exercised end to end from two terminals.
type stubSession struct{}

func (s *stubSession) CreateOffer() (json.RawMessage, error) {
	return json.RawMessage(`{"type":"offer","sdp":"v=0 stub"}`), nil
}

func (s *stubSession) CreateAnswer() (json.RawMessage, error) {
	return json.RawMessage(`{"type":"answer","sdp":"v=0 stub"}`), nil
}

func (s *stubSession) SetRemoteDescription(desc json.RawMessage) error {
	fmt.Printf("* remote description set (%d bytes)\n", len(desc))
	return nil
}

func (s *stubSession) AddICECandidate(candidate json.RawMessage) error {
	fmt.Printf("* ice candidate applied (%d bytes)\n", len(candidate))
	return nil
}

func (s *stubSession) Close() {
	fmt.Println("* media session closed")
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "1", "your user id")
	name := flag.String("name", "cli-user", "your display name")
	peerID := flag.String("peer", "2", "conversation partner's user id")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
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
		return wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload})
	}

	room := core.DirectRoomName(*user, *peerID)
	if err := send(proto.InboundTypeRegister, *user); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{Room: room}); err != nil {
		return err
	}

	peer := callpeer.New(*user, *name,
		func() (callpeer.Session, error) { return &stubSession{}, nil },
		send)

	fmt.Printf("Connected to %s as %s (user %s), chatting with %s in room %s\n", *addr, *name, *user, *peerID, room)
	fmt.Println("Type messages and press Enter to send. /call /accept /decline /hangup for calls. Ctrl+C to exit.")

	events := make(chan outbound)
	go func() {
		defer cancel()
		readLoop(ctx, conn, events)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	// Single loop owns the peer; it is not safe for concurrent use.
	for {
		select {
		case <-ctx.Done():
			return nil
		case out, ok := <-events:
			if !ok {
				return nil
			}
			handleOutbound(peer, out)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := handleLine(peer, send, *user, *peerID, room, line); err != nil {
				log.Printf("send error: %v", err)
				return nil
			}
		}
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, events chan<- outbound) {
	defer close(events)
	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		select {
		case events <- out:
		case <-ctx.Done():
			return
		}
	}
}

func handleOutbound(peer *callpeer.Peer, out outbound) {
	if out.Error != nil {
		fmt.Printf("! server error: %s (%s)\n", out.Error.Msg, out.Error.Code)
		return
	}

	switch out.Event {
	case proto.EventNewMessage:
		var evt proto.NewMessageData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			log.Printf("unmarshal newMessage: %v", err)
			return
		}
		who := evt.FromName
		if who == "" {
			who = evt.From
		}
		fmt.Printf("[%s] %s: %s\n", evt.To, who, evt.Content)
	case proto.EventUnread:
		var evt proto.UnreadData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			log.Printf("unmarshal unread: %v", err)
			return
		}
		fmt.Printf("* you have %d unread messages\n", evt.Count)
	case proto.InboundTypeOffer:
		var sig proto.OfferSignal
		if err := json.Unmarshal(out.Data, &sig); err != nil {
			log.Printf("unmarshal offer: %v", err)
			return
		}
		if err := peer.HandleOffer(sig); err != nil {
			log.Printf("handle offer: %v", err)
			return
		}
		if peer.State() == callpeer.StateRinging {
			id, callerName := peer.PendingFrom()
			if callerName == "" {
				callerName = id
			}
			fmt.Printf("* incoming call from %s (/accept or /decline)\n", callerName)
		}
	case proto.InboundTypeAnswer:
		var sig proto.AnswerSignal
		if err := json.Unmarshal(out.Data, &sig); err != nil {
			log.Printf("unmarshal answer: %v", err)
			return
		}
		if err := peer.HandleAnswer(sig); err != nil {
			log.Printf("handle answer: %v", err)
			return
		}
		if peer.State() == callpeer.StateConnected {
			fmt.Println("* call connected")
		}
	case proto.InboundTypeICE:
		var sig proto.ICESignal
		if err := json.Unmarshal(out.Data, &sig); err != nil {
			log.Printf("unmarshal ice: %v", err)
			return
		}
		if err := peer.HandleCandidate(sig); err != nil {
			log.Printf("handle candidate: %v", err)
		}
	case proto.InboundTypeEnd:
		var sig proto.EndSignal
		if err := json.Unmarshal(out.Data, &sig); err != nil {
			log.Printf("unmarshal end: %v", err)
			return
		}
		wasActive := peer.State() != callpeer.StateIdle
		peer.HandleEnd(sig)
		if wasActive && peer.State() == callpeer.StateIdle {
			fmt.Println("* call ended")
		}
	default:
		fmt.Printf("event=%s data=%s\n", out.Event, string(out.Data))
	}
}

func handleLine(peer *callpeer.Peer, send func(string, any) error, user, peerID, room, line string) error {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil
	}

	switch text {
	case "/call":
		if err := peer.Call(peerID); err != nil {
			fmt.Printf("! cannot call: %v\n", err)
			return nil
		}
		fmt.Println("* calling...")
		return nil
	case "/accept":
		if err := peer.Accept(); err != nil {
			fmt.Printf("! cannot accept: %v\n", err)
			return nil
		}
		fmt.Println("* call accepted")
		return nil
	case "/decline":
		if err := peer.Decline(); err != nil {
			fmt.Printf("! cannot decline: %v\n", err)
		}
		return nil
	case "/hangup":
		if err := peer.HangUp(); err != nil {
			fmt.Printf("! cannot hang up: %v\n", err)
		}
		return nil
	}

	return send(proto.InboundTypeChatMessage, proto.ChatMessageData{
		From:    user,
		To:      peerID,
		Content: text,
		Room:    room,
	})
}
