package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

// schema is applied on startup. CREATE IF NOT EXISTS keeps it idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'mentee',
	expertise     TEXT NOT NULL DEFAULT '',
	bio           TEXT NOT NULL DEFAULT '',
	avatar        TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	from_id    INTEGER NOT NULL REFERENCES users(id),
	to_id      INTEGER NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_to_read ON messages(to_id, read);
CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(from_id, to_id);

CREATE TABLE IF NOT EXISTS resources (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	author_id  INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session_requests (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	mentee_id  INTEGER NOT NULL REFERENCES users(id),
	mentor_id  INTEGER NOT NULL REFERENCES users(id),
	date       DATETIME NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser inserts a new user and returns the stored record.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *store.User) (*store.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, expertise, bio, avatar)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Expertise, u.Bio, u.Avatar)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

const userColumns = `id, name, email, password_hash, role, expertise, bio, avatar, created_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var u store.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Expertise, &u.Bio, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = store.Role(role)
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// ListUsersByRole lists users with the given role, ordered by name.
func (s *SQLiteStore) ListUsersByRole(ctx context.Context, role store.Role) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY name`, string(role))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*store.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ==== MessageStore implementation ====

// CreateMessage persists a message, assigning ID and CreatedAt.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (from_id, to_id, content, read)
		VALUES (?, ?, ?, 0)
	`
	result, err := s.db.ExecContext(ctx, query, msg.FromID, msg.ToID, msg.Content)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id
	msg.Read = false

	row := s.db.QueryRowContext(ctx, `SELECT created_at FROM messages WHERE id = ?`, id)
	if err := row.Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("read message timestamp: %w", err)
	}
	return nil
}

// CountUnread counts messages addressed to the user with read=false.
func (s *SQLiteStore) CountUnread(ctx context.Context, toID int64) (int64, error) {
	var count int64
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE to_id = ? AND read = 0`, toID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkConversationRead flags all unread messages from one user to another as read.
func (s *SQLiteStore) MarkConversationRead(ctx context.Context, fromID, toID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read = 1 WHERE from_id = ? AND to_id = ? AND read = 0`,
		fromID, toID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ListConversation returns all messages between two users in chronological order.
func (s *SQLiteStore) ListConversation(ctx context.Context, userID, withID int64) ([]*store.Message, error) {
	query := `
		SELECT id, from_id, to_id, content, read, created_at
		FROM messages
		WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, userID, withID, withID, userID)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	msgs := make([]*store.Message, 0)
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.FromID, &m.ToID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// ListConversations returns one summary per correspondent, most recent first.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID int64) ([]*store.Conversation, error) {
	// Latest message per correspondent, resolved to the other party's name.
	query := `
		SELECT other_id, u.name, m.content, m.created_at
		FROM (
			SELECT CASE WHEN from_id = ? THEN to_id ELSE from_id END AS other_id,
			       MAX(id) AS last_id
			FROM messages
			WHERE from_id = ? OR to_id = ?
			GROUP BY other_id
		) latest
		JOIN messages m ON m.id = latest.last_id
		JOIN users u ON u.id = latest.other_id
		ORDER BY m.created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	convs := make([]*store.Conversation, 0)
	for rows.Next() {
		var c store.Conversation
		if err := rows.Scan(&c.UserID, &c.UserName, &c.LastMessage, &c.LastAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, &c)
	}
	return convs, rows.Err()
}

// ==== ResourceStore implementation ====

// CreateResource inserts a resource and returns the stored record.
func (s *SQLiteStore) CreateResource(ctx context.Context, r *store.Resource) (*store.Resource, error) {
	query := `
		INSERT INTO resources (title, category, content, author_id)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, r.Title, r.Category, r.Content, r.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("insert resource: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetResourceByID(ctx, id)
}

// GetResourceByID retrieves a resource with its author name.
func (s *SQLiteStore) GetResourceByID(ctx context.Context, id int64) (*store.Resource, error) {
	query := `
		SELECT r.id, r.title, r.category, r.content, r.author_id, u.name, r.created_at
		FROM resources r
		JOIN users u ON u.id = r.author_id
		WHERE r.id = ?
	`
	var r store.Resource
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Title, &r.Category, &r.Content, &r.AuthorID, &r.AuthorName, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query resource: %w", err)
	}
	return &r, nil
}

// ListResources returns a filtered page of resources plus the total count.
func (s *SQLiteStore) ListResources(ctx context.Context, f store.ResourceFilter) ([]*store.Resource, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Query != "" {
		where += ` AND r.title LIKE ?`
		args = append(args, "%"+f.Query+"%")
	}
	if f.Category != "" {
		where += ` AND r.category = ?`
		args = append(args, f.Category)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM resources r` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 5
	}

	query := `
		SELECT r.id, r.title, r.category, r.content, r.author_id, u.name, r.created_at
		FROM resources r
		JOIN users u ON u.id = r.author_id` + where + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Resource, 0)
	for rows.Next() {
		var r store.Resource
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.Content, &r.AuthorID, &r.AuthorName, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, &r)
	}
	return list, total, rows.Err()
}

// ==== SessionStore implementation ====

// CreateSessionRequest inserts a pending request.
func (s *SQLiteStore) CreateSessionRequest(ctx context.Context, req *store.SessionRequest) (*store.SessionRequest, error) {
	query := `
		INSERT INTO session_requests (mentee_id, mentor_id, date, note, status)
		VALUES (?, ?, ?, ?, 'pending')
	`
	result, err := s.db.ExecContext(ctx, query, req.MenteeID, req.MentorID, req.Date, req.Note)
	if err != nil {
		return nil, fmt.Errorf("insert session request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetSessionRequestByID(ctx, id)
}

const sessionRequestQuery = `
	SELECT sr.id, sr.mentee_id, u.name, sr.mentor_id, sr.date, sr.note, sr.status, sr.created_at
	FROM session_requests sr
	JOIN users u ON u.id = sr.mentee_id
`

func scanSessionRequest(row interface{ Scan(...any) error }) (*store.SessionRequest, error) {
	var r store.SessionRequest
	var status string
	err := row.Scan(&r.ID, &r.MenteeID, &r.MenteeName, &r.MentorID, &r.Date, &r.Note, &status, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = store.SessionStatus(status)
	return &r, nil
}

// GetSessionRequestByID retrieves a single request.
func (s *SQLiteStore) GetSessionRequestByID(ctx context.Context, id int64) (*store.SessionRequest, error) {
	row := s.db.QueryRowContext(ctx, sessionRequestQuery+` WHERE sr.id = ?`, id)
	r, err := scanSessionRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session request %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query session request: %w", err)
	}
	return r, nil
}

// ListSessionRequestsForMentor lists requests addressed to a mentor, newest first.
func (s *SQLiteStore) ListSessionRequestsForMentor(ctx context.Context, mentorID int64) ([]*store.SessionRequest, error) {
	rows, err := s.db.QueryContext(ctx, sessionRequestQuery+` WHERE sr.mentor_id = ? ORDER BY sr.created_at DESC, sr.id DESC`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("query session requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]*store.SessionRequest, 0)
	for rows.Next() {
		r, err := scanSessionRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session request: %w", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// UpdateSessionRequestStatus transitions a request's status.
func (s *SQLiteStore) UpdateSessionRequestStatus(ctx context.Context, id int64, status store.SessionStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE session_requests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update session request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session request %d: %w", id, store.ErrNotFound)
	}
	return nil
}
