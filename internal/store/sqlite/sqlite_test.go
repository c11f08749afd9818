package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, name, email string, role store.Role) *store.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), &store.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

func TestCreateMessageAndUnreadCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice@example.com", store.RoleMentee)
	bob := seedUser(t, s, "Bob", "bob@example.com", store.RoleMentor)

	msg := &store.Message{FromID: alice.ID, ToID: bob.ID, Content: "hi"}
	if err := s.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.ID == 0 {
		t.Fatalf("expected assigned message id")
	}
	if msg.Read {
		t.Fatalf("new message must be unread")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatalf("expected assigned created_at")
	}

	count, err := s.CountUnread(ctx, bob.ID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}

	// Sender has nothing unread.
	count, err = s.CountUnread(ctx, alice.ID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread for sender, got %d", count)
	}
}

func TestMarkConversationRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice@example.com", store.RoleMentee)
	bob := seedUser(t, s, "Bob", "bob@example.com", store.RoleMentor)
	carol := seedUser(t, s, "Carol", "carol@example.com", store.RoleMentee)

	for _, text := range []string{"one", "two"} {
		if err := s.CreateMessage(ctx, &store.Message{FromID: alice.ID, ToID: bob.ID, Content: text}); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	if err := s.CreateMessage(ctx, &store.Message{FromID: carol.ID, ToID: bob.ID, Content: "three"}); err != nil {
		t.Fatalf("create message: %v", err)
	}

	n, err := s.MarkConversationRead(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 updated rows, got %d", n)
	}

	// Carol's message is untouched.
	count, err := s.CountUnread(ctx, bob.ID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining unread, got %d", count)
	}

	// Second pass is a no-op.
	n, err = s.MarkConversationRead(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 updated rows, got %d", n)
	}
}

func TestListConversationOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice@example.com", store.RoleMentee)
	bob := seedUser(t, s, "Bob", "bob@example.com", store.RoleMentor)

	texts := []string{"first", "second", "third"}
	froms := []int64{alice.ID, bob.ID, alice.ID}
	for i, text := range texts {
		to := bob.ID
		if froms[i] == bob.ID {
			to = alice.ID
		}
		if err := s.CreateMessage(ctx, &store.Message{FromID: froms[i], ToID: to, Content: text}); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	msgs, err := s.ListConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Content != texts[i] {
			t.Fatalf("expected %q at index %d, got %q", texts[i], i, m.Content)
		}
	}
}

func TestListConversationsSummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice@example.com", store.RoleMentee)
	bob := seedUser(t, s, "Bob", "bob@example.com", store.RoleMentor)
	carol := seedUser(t, s, "Carol", "carol@example.com", store.RoleMentor)

	if err := s.CreateMessage(ctx, &store.Message{FromID: alice.ID, ToID: bob.ID, Content: "to bob"}); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if err := s.CreateMessage(ctx, &store.Message{FromID: carol.ID, ToID: alice.ID, Content: "from carol"}); err != nil {
		t.Fatalf("create message: %v", err)
	}

	convs, err := s.ListConversations(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}

	seen := map[string]string{}
	for _, c := range convs {
		seen[c.UserName] = c.LastMessage
	}
	if seen["Bob"] != "to bob" || seen["Carol"] != "from carol" {
		t.Fatalf("unexpected summaries: %+v", seen)
	}
}

func TestListResourcesFilterAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author := seedUser(t, s, "Mentor", "mentor@example.com", store.RoleMentor)

	titles := []string{"Resume checklist", "Resume gaps", "Interview tips", "Career restart"}
	categories := []string{"Resume", "Resume", "Interview", "Career"}
	for i, title := range titles {
		if _, err := s.CreateResource(ctx, &store.Resource{
			Title:    title,
			Category: categories[i],
			Content:  "body",
			AuthorID: author.ID,
		}); err != nil {
			t.Fatalf("create resource: %v", err)
		}
	}

	list, total, err := s.ListResources(ctx, store.ResourceFilter{Category: "Resume", Page: 1, PerPage: 1})
	if err != nil {
		t.Fatalf("list resources: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 resource on page, got %d", len(list))
	}
	if list[0].AuthorName != "Mentor" {
		t.Fatalf("expected resolved author name, got %q", list[0].AuthorName)
	}

	list, total, err = s.ListResources(ctx, store.ResourceFilter{Query: "resume"})
	if err != nil {
		t.Fatalf("list resources: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 title matches, got total=%d len=%d", total, len(list))
	}
}

func TestSessionRequestLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mentee := seedUser(t, s, "Asha", "asha@example.com", store.RoleMentee)
	mentor := seedUser(t, s, "Vanya", "vanya@example.com", store.RoleMentor)

	req, err := s.CreateSessionRequest(ctx, &store.SessionRequest{
		MenteeID: mentee.ID,
		MentorID: mentor.ID,
		Date:     time.Now().Add(72 * time.Hour).UTC(),
		Note:     "Resume review",
	})
	if err != nil {
		t.Fatalf("create session request: %v", err)
	}
	if req.Status != store.SessionPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}
	if req.MenteeName != "Asha" {
		t.Fatalf("expected resolved mentee name, got %q", req.MenteeName)
	}

	if err := s.UpdateSessionRequestStatus(ctx, req.ID, store.SessionAccepted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	reqs, err := s.ListSessionRequestsForMentor(ctx, mentor.ID)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Status != store.SessionAccepted {
		t.Fatalf("unexpected requests: %+v", reqs)
	}

	if err := s.UpdateSessionRequestStatus(ctx, 9999, store.SessionRejected); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
