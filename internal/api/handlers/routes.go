package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the endpoint handlers for route registration.
type Handlers struct {
	Health *HealthHandler
	Tarot  *TarotHandler
	Movies *MoviesHandler
}

// Register mounts every endpoint on r. Nil handlers are skipped.
func (h *Handlers) Register(r *gin.Engine) {
	if h.Health != nil {
		r.GET("/health", h.Health.HandleHealth)
		r.GET("/health/detailed", h.Health.HandleDetailed)
	}

	v1 := r.Group("/api/v1")

	if h.Tarot != nil {
		v1.POST("/tarot/readings", h.Tarot.HandleReading)
	}

	if h.Movies != nil {
		movies := v1.Group("/movies")
		movies.GET("/services", h.Movies.HandleListServices)
		movies.GET("/models", h.Movies.HandleListModels)
		movies.POST("/sessions", h.Movies.HandleCreateSession)
		movies.GET("/sessions/:id", h.Movies.HandleGetSession)
		movies.PUT("/sessions/:id/options", h.Movies.HandleUpdateOptions)
		movies.DELETE("/sessions/:id/messages", h.Movies.HandleClearConversation)
		movies.POST("/sessions/:id/messages", h.Movies.HandleAsk)
		movies.POST("/feedback", h.Movies.HandleFeedback)
	}
}
