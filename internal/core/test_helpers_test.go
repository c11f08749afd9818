package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

// memStore is an in-memory MessageStore/UserStore for hub tests.
type memStore struct {
	names      map[int64]string
	messages   []*store.Message
	nextID     int64
	failCreate bool
	failCount  bool
}

func newMemStore() *memStore {
	return &memStore{names: make(map[int64]string), nextID: 1}
}

func (m *memStore) CreateMessage(_ context.Context, msg *store.Message) error {
	if m.failCreate {
		return errors.New("write failed")
	}
	msg.ID = m.nextID
	m.nextID++
	msg.Read = false
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memStore) CountUnread(_ context.Context, toID int64) (int64, error) {
	if m.failCount {
		return 0, errors.New("count failed")
	}
	var n int64
	for _, msg := range m.messages {
		if msg.ToID == toID && !msg.Read {
			n++
		}
	}
	return n, nil
}

func (m *memStore) MarkConversationRead(_ context.Context, fromID, toID int64) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.FromID == fromID && msg.ToID == toID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListConversation(_ context.Context, _, _ int64) ([]*store.Message, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) ListConversations(_ context.Context, _ int64) ([]*store.Conversation, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	name, ok := m.names[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return &store.User{ID: id, Name: name}, nil
}

func (m *memStore) CreateUser(_ context.Context, _ *store.User) (*store.User, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) GetUserByEmail(_ context.Context, _ string) (*store.User, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) ListUsersByRole(_ context.Context, _ store.Role) ([]*store.User, error) {
	return nil, errors.New("not implemented")
}
