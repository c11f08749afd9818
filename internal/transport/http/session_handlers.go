package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

// SessionHandlers provides HTTP handlers for session requests.
type SessionHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewSessionHandlers creates a new session handlers instance.
func NewSessionHandlers(st store.Store, logger *zerolog.Logger) *SessionHandlers {
	return &SessionHandlers{
		store: st,
		log:   logger,
	}
}

// SessionRequestBody represents the request-a-session request body.
type SessionRequestBody struct {
	Date string `json:"date" binding:"required"`
	Note string `json:"note" binding:"max=500"`
}

// SessionRequestResponse represents a session request in API responses.
type SessionRequestResponse struct {
	ID         int64  `json:"id"`
	MenteeID   int64  `json:"mentee_id"`
	MenteeName string `json:"mentee_name,omitempty"`
	MentorID   int64  `json:"mentor_id"`
	Date       string `json:"date"`
	Note       string `json:"note,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func sessionRequestResponse(req *store.SessionRequest) SessionRequestResponse {
	return SessionRequestResponse{
		ID:         req.ID,
		MenteeID:   req.MenteeID,
		MenteeName: req.MenteeName,
		MentorID:   req.MentorID,
		Date:       req.Date.Format("2006-01-02T15:04:05Z07:00"),
		Note:       req.Note,
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RequestSession handles a mentee requesting a session with a mentor.
// POST /api/sessions/request/:mentorID
func (h *SessionHandlers) RequestSession(c *gin.Context) {
	uid, role, ok := currentUser(c, h.log)
	if !ok {
		return
	}

	if role != string(store.RoleMentee) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only mentees can request sessions"})
		return
	}

	mentorID, err := strconv.ParseInt(c.Param("mentorID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid mentor id"})
		return
	}

	var body SessionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Debug().Err(err).Msg("invalid session request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be RFC 3339"})
		return
	}

	mentor, err := h.store.GetUserByID(c.Request.Context(), mentorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "mentor not found"})
			return
		}
		h.log.Error().Err(err).Int64("mentor_id", mentorID).Msg("failed to load mentor")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if mentor.Role != store.RoleMentor {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "mentor not found"})
		return
	}

	req, err := h.store.CreateSessionRequest(c.Request.Context(), &store.SessionRequest{
		MenteeID: uid,
		MentorID: mentorID,
		Date:     date,
		Note:     body.Note,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("mentee_id", uid).Int64("mentor_id", mentorID).Msg("failed to create session request")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("request_id", req.ID).Int64("mentee_id", uid).Int64("mentor_id", mentorID).Msg("session requested")
	c.JSON(http.StatusCreated, sessionRequestResponse(req))
}

// ListRequests handles a mentor listing their incoming session requests.
// GET /api/sessions/requests
func (h *SessionHandlers) ListRequests(c *gin.Context) {
	uid, role, ok := currentUser(c, h.log)
	if !ok {
		return
	}

	if role != string(store.RoleMentor) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only mentors can list session requests"})
		return
	}

	requests, err := h.store.ListSessionRequestsForMentor(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("mentor_id", uid).Msg("failed to list session requests")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]SessionRequestResponse, 0, len(requests))
	for _, req := range requests {
		response = append(response, sessionRequestResponse(req))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateRequest handles a mentor accepting or declining a request.
// POST /api/sessions/requests/:id/:action
func (h *SessionHandlers) UpdateRequest(c *gin.Context) {
	uid, role, ok := currentUser(c, h.log)
	if !ok {
		return
	}

	if role != string(store.RoleMentor) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only mentors can update session requests"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request id"})
		return
	}

	var status store.SessionStatus
	switch c.Param("action") {
	case "accept":
		status = store.SessionAccepted
	case "decline":
		status = store.SessionRejected
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "action must be accept or decline"})
		return
	}

	req, err := h.store.GetSessionRequestByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "session request not found"})
			return
		}
		h.log.Error().Err(err).Int64("request_id", id).Msg("failed to load session request")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if req.MentorID != uid {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your session request"})
		return
	}

	if err := h.store.UpdateSessionRequestStatus(c.Request.Context(), id, status); err != nil {
		h.log.Error().Err(err).Int64("request_id", id).Msg("failed to update session request")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	req.Status = status
	h.log.Info().Int64("request_id", id).Str("status", string(status)).Msg("session request updated")
	c.JSON(http.StatusOK, sessionRequestResponse(req))
}
