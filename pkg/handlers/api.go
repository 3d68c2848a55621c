package handlers

import (
	"errors"
	"net/http"

	"youbuildit/pkg/auth"
	"youbuildit/pkg/models"
	"youbuildit/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (s *Server) ListChallenges(c *gin.Context) {
	challenges, err := s.lib.All(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch challenges")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch challenges"})
		return
	}
	summaries := make([]models.ChallengeSummary, 0, len(challenges))
	for _, ch := range challenges {
		summaries = append(summaries, ch.Summarize())
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) GetChallenge(c *gin.Context) {
	ch, err := s.lib.BySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", c.Param("slug")).Msg("failed to fetch challenge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch challenges"})
		return
	}
	c.JSON(http.StatusOK, ch.Summarize())
}

func (s *Server) ListAssets(c *gin.Context) {
	ch, err := s.lib.BySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", c.Param("slug")).Msg("failed to fetch challenge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch challenges"})
		return
	}
	files, err := s.lib.ListAssets(ch)
	if err != nil {
		log.Error().Err(err).Str("slug", ch.Slug).Msg("failed to list assets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list assets"})
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *Server) Me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.FromContext(c).User)
}

func (s *Server) HandleSync(c *gin.Context) {
	user := auth.FromContext(c).User
	if !s.cfg.IsAdmin(user.Login) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	if s.sync == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Content sync is not configured"})
		return
	}
	out, err := s.sync(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("login", user.Login).Msg("content sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": out})
		return
	}
	log.Info().Str("login", user.Login).Msg("content synced")
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": out})
}
