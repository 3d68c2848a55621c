package handlers

import (
	"net/http"

	"youbuildit/pkg/seo"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (s *Server) Robots(c *gin.Context) {
	c.Header("Cache-Control", seo.RobotsCacheControl)
	c.String(http.StatusOK, seo.Robots(s.cfg.AppURL))
}

func (s *Server) Sitemap(c *gin.Context) {
	challenges, err := s.lib.All(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch challenges")
		c.String(http.StatusInternalServerError, "Failed to build sitemap")
		return
	}
	out, err := seo.Sitemap(s.cfg.AppURL, challenges)
	if err != nil {
		log.Error().Err(err).Msg("failed to build sitemap")
		c.String(http.StatusInternalServerError, "Failed to build sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", out)
}

func (s *Server) Icon(c *gin.Context) {
	c.Data(http.StatusOK, "image/svg+xml", []byte(seo.Icon("Y", "#2563eb", "#ffffff")))
}
