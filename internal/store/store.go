package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Role defines what a user does on the platform.
type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
	RoleAdmin  Role = "admin"
)

// User represents a registered user.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Expertise    string
	Bio          string
	Avatar       string
	CreatedAt    time.Time
}

// Message represents a persisted direct message between two users.
type Message struct {
	ID        int64
	FromID    int64
	ToID      int64
	Content   string
	Read      bool
	CreatedAt time.Time
}

// Resource represents a published article.
type Resource struct {
	ID         int64
	Title      string
	Category   string
	Content    string
	AuthorID   int64
	AuthorName string
	CreatedAt  time.Time
}

// ResourceFilter narrows a resource listing.
type ResourceFilter struct {
	Query    string // case-insensitive title substring
	Category string
	Page     int // 1-based
	PerPage  int
}

// SessionStatus defines the lifecycle of a session request.
type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionAccepted SessionStatus = "accepted"
	SessionRejected SessionStatus = "rejected"
)

// SessionRequest represents a mentee's request for a mentoring session.
type SessionRequest struct {
	ID         int64
	MenteeID   int64
	MenteeName string
	MentorID   int64
	Date       time.Time
	Note       string
	Status     SessionStatus
	CreatedAt  time.Time
}

// Conversation summarises the latest exchange with another user.
type Conversation struct {
	UserID      int64
	UserName    string
	LastMessage string
	LastAt      time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user and returns the stored record.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsersByRole lists users with the given role, ordered by name.
	ListUsersByRole(ctx context.Context, role Role) ([]*User, error)
}

// MessageStore handles message persistence.
// The relay only needs create, count-by-filter and update-many-by-filter.
type MessageStore interface {
	// CreateMessage persists a message, assigning ID and CreatedAt.
	CreateMessage(ctx context.Context, msg *Message) error

	// CountUnread counts messages addressed to the user with read=false.
	CountUnread(ctx context.Context, toID int64) (int64, error)

	// MarkConversationRead flags all unread messages from one user to
	// another as read. Returns the number of updated rows.
	MarkConversationRead(ctx context.Context, fromID, toID int64) (int64, error)

	// ListConversation returns all messages between two users in
	// chronological order.
	ListConversation(ctx context.Context, userID, withID int64) ([]*Message, error)

	// ListConversations returns one summary per correspondent, most
	// recent first.
	ListConversations(ctx context.Context, userID int64) ([]*Conversation, error)
}

// ResourceStore handles resource persistence.
type ResourceStore interface {
	// CreateResource inserts a resource and returns the stored record.
	CreateResource(ctx context.Context, r *Resource) (*Resource, error)

	// GetResourceByID retrieves a resource with its author name.
	GetResourceByID(ctx context.Context, id int64) (*Resource, error)

	// ListResources returns a filtered page of resources plus the total
	// count matching the filter.
	ListResources(ctx context.Context, f ResourceFilter) ([]*Resource, int64, error)
}

// SessionStore handles session-request persistence.
type SessionStore interface {
	// CreateSessionRequest inserts a pending request.
	CreateSessionRequest(ctx context.Context, req *SessionRequest) (*SessionRequest, error)

	// ListSessionRequestsForMentor lists requests addressed to a mentor,
	// newest first.
	ListSessionRequestsForMentor(ctx context.Context, mentorID int64) ([]*SessionRequest, error)

	// UpdateSessionRequestStatus transitions a request's status.
	UpdateSessionRequestStatus(ctx context.Context, id int64, status SessionStatus) error

	// GetSessionRequestByID retrieves a single request.
	GetSessionRequestByID(ctx context.Context, id int64) (*SessionRequest, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore
	ResourceStore
	SessionStore

	// Close closes the underlying database connection.
	Close() error
}
