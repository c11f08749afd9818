package core

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

func benchmarkSignalBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	sender := NewClient("sender")
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		c := NewClient(fmt.Sprintf("c%d", i))
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	payload := json.RawMessage(`{"room":"bench","candidate":{"candidate":"candidate:0"},"from":"1","to":"2"}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{
			Kind:   CommandSignal,
			Signal: &Signal{Event: "webrtc-ice", Room: "bench", Payload: payload},
		}
		<-target.Events
	}
}

func BenchmarkSignalBroadcast_10(b *testing.B)  { benchmarkSignalBroadcast(b, 10) }
func BenchmarkSignalBroadcast_100(b *testing.B) { benchmarkSignalBroadcast(b, 100) }
func BenchmarkSignalBroadcast_500(b *testing.B) { benchmarkSignalBroadcast(b, 500) }
