package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie that carries the session token.
const CookieName = "auth-token"

// CookieStore reads and writes the session token on the request/response
// cookie jar. It holds no logic beyond the attribute policy: httpOnly,
// SameSite=Lax, path=/, Secure only in production-like environments.
type CookieStore struct {
	maxAge int
	secure bool
}

func NewCookieStore(ttl time.Duration, secure bool) *CookieStore {
	return &CookieStore{
		maxAge: int(ttl.Seconds()),
		secure: secure,
	}
}

// Set writes the token into the response cookie jar.
func (s *CookieStore) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, s.maxAge, "/", "", s.secure, true)
}

// Get returns the session token from the current request, or "" when absent.
func (s *CookieStore) Get(c *gin.Context) string {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return token
}

// Clear removes the cookie from the client.
func (s *CookieStore) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}
