package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"picturechain/internal/db"
	"picturechain/internal/engine"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch engine.KindOf(err) {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindConflict:
		return http.StatusConflict
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindExpired:
		return http.StatusGone
	case engine.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(raw), true
}

type findOrCreateRequest struct {
	PlayerID uint   `json:"player_id" binding:"required"`
	Lewd     bool   `json:"lewd"`
	TurnType string `json:"turn_type"`
}

func (s *Server) handleFindOrCreateTurn(c *gin.Context) {
	var req findOrCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	turn, err := s.engine.FindOrCreateTurn(c.Request.Context(), req.PlayerID, engine.MatchOptions{
		Lewd:     req.Lewd,
		TurnType: engine.TurnType(req.TurnType),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, turnView(*turn))
}

type completeTurnRequest struct {
	Type    string `json:"type" binding:"required"`
	Content string `json:"content"`
}

func (s *Server) handleCompleteTurn(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req completeTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	turn, err := s.engine.CompleteTurn(c.Request.Context(), id, engine.TurnType(req.Type), req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, turnView(*turn))
}

type flagTurnRequest struct {
	ReporterID  uint   `json:"reporter_id" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Explanation string `json:"explanation"`
}

func (s *Server) handleFlagTurn(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req flagTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flag, err := s.engine.FlagTurn(c.Request.Context(), id, req.ReporterID, req.Reason, req.Explanation)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, flagView(*flag))
}

type resolveFlagRequest struct {
	AdminID *uint `json:"admin_id"`
}

func (s *Server) handleConfirmFlag(c *gin.Context) {
	s.resolveFlag(c, s.engine.ConfirmFlag)
}

func (s *Server) handleRejectFlag(c *gin.Context) {
	s.resolveFlag(c, s.engine.RejectFlag)
}

func (s *Server) resolveFlag(c *gin.Context, resolve func(ctx context.Context, flagID uint, adminID *uint) (*db.TurnFlag, error)) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req resolveFlagRequest
	// Body is optional; an unattributed resolution is allowed.
	_ = c.ShouldBindJSON(&req)
	flag, err := resolve(c.Request.Context(), id, req.AdminID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, flagView(*flag))
}

func (s *Server) handleGetGame(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	game, err := s.store.GetGame(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = engine.ErrGameNotFound
		}
		s.fail(c, err)
		return
	}
	turns, err := s.store.TurnsForGame(c.Request.Context(), game.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gameView(*game, turns, false))
}

func (s *Server) handleAdminGetGame(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	game, err := s.store.GetGameAdmin(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = engine.ErrGameNotFound
		}
		s.fail(c, err)
		return
	}
	turns, err := s.store.TurnsForGame(c.Request.Context(), game.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gameView(*game, turns, true))
}

type createSeasonRequest struct {
	Name     string    `json:"name" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	ConfigID *uint     `json:"config_id"`
}

func (s *Server) handleCreateSeason(c *gin.Context) {
	var req createSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	season, err := s.engine.CreateSeason(c.Request.Context(), req.Name, req.StartsAt, req.ConfigID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        season.ID,
		"name":      season.Name,
		"starts_at": season.StartsAt,
	})
}

type joinSeasonRequest struct {
	PlayerID uint `json:"player_id" binding:"required"`
}

func (s *Server) handleJoinSeason(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req joinSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.JoinSeason(c.Request.Context(), id, req.PlayerID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"joined": true})
}

func (s *Server) handlePerformExpirations(c *gin.Context) {
	if err := s.engine.PerformExpirations(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swept": true})
}
