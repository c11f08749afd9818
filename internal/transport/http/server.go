package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-server/internal/auth"
	"github.com/mentorhub/mentorhub-server/internal/config"
	"github.com/mentorhub/mentorhub-server/internal/core"
	"github.com/mentorhub/mentorhub-server/internal/store"
)

// NewServer builds the HTTP server with the REST API and the WebSocket
// relay endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(logger))

	r.GET("/healthz", healthHandler)
	r.GET("/ws", gin.WrapH(NewWSHandler(hub, logger, cfg.WSEventsPerMinute)))

	apiHandlers := NewAPIHandlers(authService, st, logger)
	mentorHandlers := NewMentorHandlers(st, logger)
	resourceHandlers := NewResourceHandlers(st, logger)
	messageHandlers := NewMessageHandlers(st, logger)
	sessionHandlers := NewSessionHandlers(st, logger)

	api := r.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)
	api.GET("/mentors", mentorHandlers.ListMentors)
	api.GET("/mentors/:id", mentorHandlers.GetMentor)
	api.GET("/resources", resourceHandlers.ListResources)
	api.GET("/resources/:id", resourceHandlers.GetResource)

	authed := api.Group("")
	authed.Use(AuthMiddleware(authService, logger))
	authed.GET("/me", apiHandlers.Me)
	authed.POST("/resources", resourceHandlers.CreateResource)
	authed.GET("/messages", messageHandlers.ListConversations)
	authed.GET("/messages/chat/:withID", messageHandlers.GetConversation)
	authed.POST("/sessions/request/:mentorID", sessionHandlers.RequestSession)
	authed.GET("/sessions/requests", sessionHandlers.ListRequests)
	authed.POST("/sessions/requests/:id/:action", sessionHandlers.UpdateRequest)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
