package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

// MentorHandlers provides HTTP handlers for the mentor directory.
type MentorHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewMentorHandlers creates a new mentor handlers instance.
func NewMentorHandlers(st store.Store, logger *zerolog.Logger) *MentorHandlers {
	return &MentorHandlers{
		store: st,
		log:   logger,
	}
}

// ListMentors handles the public mentor directory listing.
// GET /api/mentors
func (h *MentorHandlers) ListMentors(c *gin.Context) {
	mentors, err := h.store.ListUsersByRole(c.Request.Context(), store.RoleMentor)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list mentors")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(mentors))
	for _, m := range mentors {
		response = append(response, userResponse(m, false))
	}

	c.JSON(http.StatusOK, response)
}

// GetMentor handles fetching a single mentor profile.
// GET /api/mentors/:id
func (h *MentorHandlers) GetMentor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid mentor id"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "mentor not found"})
			return
		}
		h.log.Error().Err(err).Int64("mentor_id", id).Msg("failed to load mentor")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if user.Role != store.RoleMentor {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "mentor not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user, false))
}
