package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie names the cookie that identifies a browser session.
const SessionCookie = "gh_session"

// ContextSessionID is the gin context key the handlers read.
const ContextSessionID = "sessionID"

// sessionCookieMaxAge keeps the cookie for 30 days.
const sessionCookieMaxAge = 30 * 24 * 60 * 60

// Session assigns every browser a stable session ID. All per-visitor state
// (identity, credential, booking flow) is keyed by it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, sessionCookieMaxAge, "/", "", false, true)
		}
		c.Set(ContextSessionID, sid)
		c.Next()
	}
}

// SessionID reads the session ID the middleware stored.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
