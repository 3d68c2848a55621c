package auth

import (
	"context"
	"errors"
	"time"

	"youbuildit/pkg/models"
	"youbuildit/pkg/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	sessionUserID = "user_id"
	sessionLogin  = "login"
	sessionState  = "oauth_state"

	statusKey = "auth.status"
)

// UserLookup resolves a session's user id to a member.
type UserLookup interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Identify stores the request's Status in the gin context. users may be nil,
// in which case the session's cached login is trusted.
func Identify(users UserLookup, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(statusKey, resolve(c, users, timeout))
		c.Next()
	}
}

func resolve(c *gin.Context, users UserLookup, timeout time.Duration) Status {
	session := sessions.Default(c)
	id, ok := session.Get(sessionUserID).(int64)
	if !ok {
		return SignedOut()
	}
	if users == nil {
		login, _ := session.Get(sessionLogin).(string)
		return SignedInAs(&models.User{ID: id, Login: login})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()
	u, err := users.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if err := Logout(session); err != nil {
			log.Error().Err(err).Int64("user_id", id).Msg("failed to clear session")
		}
		return SignedOut()
	}
	if err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("identity lookup failed")
		return Loading
	}
	return SignedInAs(u)
}

// FromContext returns the Status set by Identify, or Loading when the
// middleware did not run.
func FromContext(c *gin.Context) Status {
	if v, ok := c.Get(statusKey); ok {
		if s, ok := v.(Status); ok {
			return s
		}
	}
	return Loading
}

func Login(session sessions.Session, u *models.User) error {
	session.Delete(sessionState)
	session.Set(sessionUserID, u.ID)
	session.Set(sessionLogin, u.Login)
	return session.Save()
}

func Logout(session sessions.Session) error {
	session.Clear()
	return session.Save()
}

func SetState(session sessions.Session, state string) error {
	session.Set(sessionState, state)
	return session.Save()
}

// CheckState reports whether state matches the one issued for this session.
func CheckState(session sessions.Session, state string) bool {
	want, _ := session.Get(sessionState).(string)
	return want != "" && want == state
}
