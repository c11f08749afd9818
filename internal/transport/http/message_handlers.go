package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

// MessageHandlers provides HTTP handlers for the message history API.
// Live delivery goes over the WebSocket relay; these endpoints serve
// the inbox and conversation views.
type MessageHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.Store, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store: st,
		log:   logger,
	}
}

// ConversationSummary represents one inbox entry in API responses.
type ConversationSummary struct {
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	LastMessage string `json:"last_message"`
	LastAt      string `json:"last_at"`
}

// MessageResponse represents a stored message in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	FromID    int64  `json:"from_id"`
	ToID      int64  `json:"to_id"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// InboxResponse pairs existing conversations with the users the caller
// may start a new chat or call with.
type InboxResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Others        []UserResponse        `json:"others"`
}

// ListConversations handles the inbox listing. Besides conversation
// summaries it returns the counterpart directory: mentors get all
// mentees, mentees get all mentors, admins get everyone but themselves.
// GET /api/messages
func (h *MessageHandlers) ListConversations(c *gin.Context) {
	uid, role, ok := currentUser(c, h.log)
	if !ok {
		return
	}

	conversations, err := h.store.ListConversations(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list conversations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, ConversationSummary{
			UserID:      conv.UserID,
			UserName:    conv.UserName,
			LastMessage: conv.LastMessage,
			LastAt:      conv.LastAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	others, err := h.listCounterparts(c, uid, store.Role(role))
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list chat counterparts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, InboxResponse{Conversations: summaries, Others: others})
}

func (h *MessageHandlers) listCounterparts(c *gin.Context, uid int64, role store.Role) ([]UserResponse, error) {
	var roles []store.Role
	switch role {
	case store.RoleMentor:
		roles = []store.Role{store.RoleMentee}
	case store.RoleMentee:
		roles = []store.Role{store.RoleMentor}
	default:
		roles = []store.Role{store.RoleMentor, store.RoleMentee, store.RoleAdmin}
	}

	others := make([]UserResponse, 0)
	for _, r := range roles {
		users, err := h.store.ListUsersByRole(c.Request.Context(), r)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.ID == uid {
				continue
			}
			others = append(others, userResponse(u, false))
		}
	}
	return others, nil
}

// GetConversation returns the full history with another user and marks
// their messages as read. A mentor can only open conversations with
// mentees and vice versa; admins can open any.
// GET /api/messages/chat/:withID
func (h *MessageHandlers) GetConversation(c *gin.Context) {
	uid, role, ok := currentUser(c, h.log)
	if !ok {
		return
	}

	withID, err := strconv.ParseInt(c.Param("withID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	other, err := h.store.GetUserByID(c.Request.Context(), withID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("with_id", withID).Msg("failed to load conversation partner")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if !canConverse(store.Role(role), other.Role) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "conversation not allowed"})
		return
	}

	if _, err := h.store.MarkConversationRead(c.Request.Context(), withID, uid); err != nil {
		// Unread bookkeeping must not block reading the history.
		h.log.Warn().Err(err).Int64("user_id", uid).Int64("with_id", withID).Msg("failed to mark conversation read")
	}

	messages, err := h.store.ListConversation(c.Request.Context(), uid, withID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Int64("with_id", withID).Msg("failed to list conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, MessageResponse{
			ID:        msg.ID,
			FromID:    msg.FromID,
			ToID:      msg.ToID,
			Content:   msg.Content,
			Read:      msg.Read,
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, response)
}

// canConverse reports whether direct messaging between the two roles is
// allowed. Mentors talk to mentees, admins talk to anyone.
func canConverse(a, b store.Role) bool {
	if a == store.RoleAdmin || b == store.RoleAdmin {
		return true
	}
	return (a == store.RoleMentor && b == store.RoleMentee) ||
		(a == store.RoleMentee && b == store.RoleMentor)
}
