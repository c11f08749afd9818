package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/store"
)

const (
	defaultResourcesPerPage = 20
	maxResourcesPerPage     = 100
)

// ResourceHandlers provides HTTP handlers for the resource library.
type ResourceHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewResourceHandlers creates a new resource handlers instance.
func NewResourceHandlers(st store.Store, logger *zerolog.Logger) *ResourceHandlers {
	return &ResourceHandlers{
		store: st,
		log:   logger,
	}
}

// CreateResourceRequest represents the create resource request body.
type CreateResourceRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Category string `json:"category" binding:"required,min=1,max=64"`
	Content  string `json:"content" binding:"required"`
}

// ResourceResponse represents a resource in API responses.
type ResourceResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// ResourceListResponse wraps a page of resources with paging metadata.
type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
}

func resourceResponse(r *store.Resource) ResourceResponse {
	return ResourceResponse{
		ID:         r.ID,
		Title:      r.Title,
		Category:   r.Category,
		Content:    r.Content,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListResources handles the public resource listing with filters.
// GET /api/resources?q=&category=&page=&per_page=
func (h *ResourceHandlers) ListResources(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultResourcesPerPage)))
	if perPage < 1 || perPage > maxResourcesPerPage {
		perPage = defaultResourcesPerPage
	}

	filter := store.ResourceFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     page,
		PerPage:  perPage,
	}

	resources, total, err := h.store.ListResources(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list resources")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		response = append(response, resourceResponse(r))
	}

	c.JSON(http.StatusOK, ResourceListResponse{
		Resources: response,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	})
}

// GetResource handles fetching a single resource.
// GET /api/resources/:id
func (h *ResourceHandlers) GetResource(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource id"})
		return
	}

	resource, err := h.store.GetResourceByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "resource not found"})
			return
		}
		h.log.Error().Err(err).Int64("resource_id", id).Msg("failed to load resource")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resourceResponse(resource))
}

// CreateResource handles publishing a resource. Only mentors and admins
// may publish.
// POST /api/resources
func (h *ResourceHandlers) CreateResource(c *gin.Context) {
	uid, role, ok := currentUser(c, h.log)
	if !ok {
		return
	}

	if role != string(store.RoleMentor) && role != string(store.RoleAdmin) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only mentors can publish resources"})
		return
	}

	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create resource request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resource, err := h.store.CreateResource(c.Request.Context(), &store.Resource{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		AuthorID: uid,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("author_id", uid).Msg("failed to create resource")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("resource_id", resource.ID).Int64("author_id", uid).Msg("resource created successfully")
	c.JSON(http.StatusCreated, resourceResponse(resource))
}
