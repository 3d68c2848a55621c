package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"youbuildit/pkg/auth"
	"youbuildit/pkg/models"
	"youbuildit/pkg/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthRequired lets signed-in visitors through. API callers get JSON errors,
// page visitors are sent to /login. An unresolved identity is a 503 rather
// than a sign-in prompt.
func AuthRequired(c *gin.Context) {
	status := auth.FromContext(c)
	if status.SignedIn {
		c.Next()
		return
	}
	if !status.Loaded {
		c.Header("Retry-After", "5")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Identity unavailable"})
		return
	}
	if isAPI(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

func (s *Server) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", s.page(c, "Sign in", ""))
}

func (s *Server) GithubLogin(c *gin.Context) {
	state := uuid.NewString()
	if err := auth.SetState(sessions.Default(c), state); err != nil {
		log.Error().Err(err).Msg("failed to save oauth state")
		c.String(http.StatusInternalServerError, "Session error")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, s.cfg.OAuth.AuthCodeURL(state))
}

func (s *Server) AuthCallback(c *gin.Context) {
	session := sessions.Default(c)
	if !auth.CheckState(session, c.Query("state")) {
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	ctx := c.Request.Context()
	token, err := s.cfg.OAuth.Exchange(ctx, c.Query("code"))
	if err != nil {
		log.Warn().Err(err).Msg("oauth exchange failed")
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	profile, err := fetchGithubProfile(ctx, s.cfg.OAuth.Client(ctx, token), s.cfg.GithubAPIURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to load github profile")
		c.String(http.StatusInternalServerError, "Failed to load GitHub profile")
		return
	}

	user := &models.User{
		ID:               profile.ID,
		GithubID:         profile.ID,
		Login:            profile.Login,
		Name:             profile.Name,
		Email:            profile.Email,
		AvatarURL:        profile.AvatarURL,
		SubscriptionTier: models.TierFree,
	}
	if s.users != nil {
		user, err = s.users.UpsertGithubUser(ctx, profile)
		if err != nil {
			log.Error().Err(err).Str("login", profile.Login).Msg("failed to save user")
			c.String(http.StatusInternalServerError, "Failed to save user")
			return
		}
	}

	if err := auth.Login(session, user); err != nil {
		log.Error().Err(err).Msg("failed to save session")
		c.String(http.StatusInternalServerError, "Session error")
		return
	}
	log.Info().Str("login", user.Login).Msg("signed in")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) Logout(c *gin.Context) {
	if err := auth.Logout(sessions.Default(c)); err != nil {
		log.Error().Err(err).Msg("failed to clear session")
	}
	c.Redirect(http.StatusFound, "/")
}

func fetchGithubProfile(ctx context.Context, client *http.Client, apiURL string) (store.GithubProfile, error) {
	var profile store.GithubProfile
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/user", nil)
	if err != nil {
		return profile, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return profile, fmt.Errorf("get user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("get user: unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, fmt.Errorf("decode user: %w", err)
	}
	if profile.ID == 0 || profile.Login == "" {
		return profile, fmt.Errorf("incomplete github profile")
	}
	return profile, nil
}
