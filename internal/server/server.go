package server

import (
	"picturechain/internal/db"
	"picturechain/internal/engine"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server is the thin HTTP surface over the engine. Routing, authentication
// and rendering live with the callers; this layer only binds requests,
// invokes engine operations and maps error kinds to status codes.
type Server struct {
	engine *engine.Engine
	store  db.Store
	log    zerolog.Logger
}

func New(eng *engine.Engine, store db.Store, logger zerolog.Logger) *Server {
	return &Server{engine: eng, store: store, log: logger}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/turns", s.handleFindOrCreateTurn)
	api.POST("/turns/:id/complete", s.handleCompleteTurn)
	api.POST("/turns/:id/flags", s.handleFlagTurn)
	api.POST("/flags/:id/confirm", s.handleConfirmFlag)
	api.POST("/flags/:id/reject", s.handleRejectFlag)
	api.GET("/games/:id", s.handleGetGame)
	api.POST("/seasons", s.handleCreateSeason)
	api.POST("/seasons/:id/join", s.handleJoinSeason)

	admin := router.Group("/api/admin")
	admin.GET("/games/:id", s.handleAdminGetGame)
	admin.POST("/expirations", s.handlePerformExpirations)

	return router
}
