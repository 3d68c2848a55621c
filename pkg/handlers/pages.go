package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"youbuildit/pkg/auth"
	"youbuildit/pkg/mdx"
	"youbuildit/pkg/models"
	"youbuildit/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const featuredCount = 6

func (s *Server) Home(c *gin.Context) {
	challenges, err := s.lib.All(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch challenges")
		s.errorPage(c, http.StatusInternalServerError, "Something went wrong", "Challenges could not be loaded.")
		return
	}
	if len(challenges) > featuredCount {
		challenges = challenges[:featuredCount]
	}
	data := s.page(c, "", "Coding challenges that teach you to build real systems.")
	data["Challenges"] = challenges
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) ChallengesPage(c *gin.Context) {
	all, err := s.lib.All(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch challenges")
		s.errorPage(c, http.StatusInternalServerError, "Something went wrong", "Challenges could not be loaded.")
		return
	}

	difficulty := c.Query("difficulty")
	category := c.Query("category")
	filtered := make([]models.Challenge, 0, len(all))
	for _, ch := range all {
		if difficulty != "" && !strings.EqualFold(ch.Difficulty, difficulty) {
			continue
		}
		if category != "" && !strings.EqualFold(ch.Category, category) {
			continue
		}
		filtered = append(filtered, ch)
	}

	data := s.page(c, "Challenges", "Browse every You Build It challenge.")
	data["Challenges"] = filtered
	data["Difficulty"] = difficulty
	data["Category"] = category
	data["Difficulties"] = distinct(all, func(ch models.Challenge) string { return ch.Difficulty })
	data["Categories"] = distinct(all, func(ch models.Challenge) string { return ch.Category })
	c.HTML(http.StatusOK, "challenges.html", data)
}

func distinct(challenges []models.Challenge, field func(models.Challenge) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ch := range challenges {
		if v := field(ch); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Server) ChallengePage(c *gin.Context) {
	ch, err := s.lib.BySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, services.ErrNotFound) {
		s.errorPage(c, http.StatusNotFound, "Challenge not found", "This challenge does not exist or is not published yet.")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", c.Param("slug")).Msg("failed to fetch challenge")
		s.errorPage(c, http.StatusInternalServerError, "Something went wrong", "This challenge could not be loaded.")
		return
	}

	content, err := s.renderer.Render([]byte(ch.Body), mdx.Context{
		AssetBase: services.AssetBase(ch.Slug),
		SiteHost:  s.siteHost,
	})
	if err != nil {
		log.Error().Err(err).Str("slug", ch.Slug).Msg("failed to render challenge")
		s.errorPage(c, http.StatusInternalServerError, "Something went wrong", "This challenge could not be rendered.")
		return
	}

	data := s.page(c, ch.Title, ch.Summary)
	data["Challenge"] = ch
	data["Content"] = content
	c.HTML(http.StatusOK, "challenge.html", data)
}

func (s *Server) Dashboard(c *gin.Context) {
	challenges, err := s.lib.All(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch challenges")
		challenges = nil
	}
	data := s.page(c, "Dashboard", "")
	data["User"] = auth.FromContext(c).User
	data["Challenges"] = challenges
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (s *Server) ServeAsset(c *gin.Context) {
	ch, err := s.lib.BySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, services.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("slug", c.Param("slug")).Msg("failed to fetch challenge")
		c.Status(http.StatusInternalServerError)
		return
	}
	fullPath := s.lib.AssetPath(ch, c.Param("path"))
	if fullPath == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(fullPath)
}
