package ginserver

import (
	"context"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/Viherino/iss-bolha-frontend/internal/session"
)

const sessionContextKey = "bolha.session"

// SessionMiddleware binds every page request to a browser session. An
// unknown or missing cookie gets a fresh session, which triggers the
// one-time bootstrap identity check against the marketplace API.
// Base is the application lifetime context; sessions must outlive the
// request that created them, so they are never parented to the request
// context.
type SessionMiddleware struct {
	Store      *session.Store
	CookieName string
	Base       context.Context
	Logger     *slog.Logger
}

func (m SessionMiddleware) Handle(c *gin.Context) {
	if m.Store == nil {
		c.Next()
		return
	}

	if id, err := c.Cookie(m.CookieName); err == nil {
		if sess, ok := m.Store.Lookup(id); ok {
			c.Set(sessionContextKey, sess)
			c.Next()
			return
		}
	}

	base := m.Base
	if base == nil {
		base = context.Background()
	}
	sess, err := m.Store.Create(base)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("session create failed", "error", err)
		}
		c.String(http.StatusInternalServerError, "session unavailable")
		c.Abort()
		return
	}
	c.SetCookie(m.CookieName, sess.ID(), 0, "/", "", false, true)
	c.Set(sessionContextKey, sess)
	c.Next()
}

func currentSession(c *gin.Context) (*session.Session, bool) {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	sess, ok := val.(*session.Session)
	return sess, ok
}

// baseData is the template payload every page shares: nav highlight and
// the session's identity, read-only.
func baseData(c *gin.Context, active string) gin.H {
	data := gin.H{
		"Active":     active,
		"IsLoggedIn": false,
	}
	if sess, ok := currentSession(c); ok {
		data["IsLoggedIn"] = sess.IsLoggedIn()
		if user := sess.User(); user != nil {
			data["User"] = user
		}
	}
	return data
}
