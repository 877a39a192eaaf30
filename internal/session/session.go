// Package session moves the session token between client and server.
// A token travels either in an http-only cookie or in an Authorization
// bearer header; extraction walks an ordered list of carriers and stops
// at the first one that yields a token.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

var (
	cookieMaxAge   = int((7 * 24 * time.Hour).Seconds())
	cookieSecure   = false
	cookieSameSite = http.SameSiteLaxMode
)

// Init fixes the cookie policy for the process. Production gets
// Secure + SameSite=Strict, development Lax over plain http.
func Init(production bool, ttl time.Duration) {
	cookieMaxAge = int(ttl.Seconds())
	if production {
		cookieSecure = true
		cookieSameSite = http.SameSiteStrictMode
	} else {
		cookieSecure = false
		cookieSameSite = http.SameSiteLaxMode
	}
}

// carrier is one way a token can arrive with a request.
type carrier func(*http.Request) (string, bool)

// carriers are tried in priority order: cookie first, bearer header second.
var carriers = []carrier{fromCookie, fromBearer}

func fromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func fromBearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// FromRequest extracts a session token from the request, if any carrier
// holds one.
func FromRequest(r *http.Request) (string, bool) {
	for _, extract := range carriers {
		if token, ok := extract(r); ok {
			return token, true
		}
	}
	return "", false
}

// Set attaches the token to the response as the session cookie.
func Set(c *gin.Context, token string) {
	c.SetSameSite(cookieSameSite)
	c.SetCookie(CookieName, token, cookieMaxAge, "/", "", cookieSecure, true)
}

// Clear expires the session cookie. A bearer-held copy of the token is
// untouched and stays valid until its exp claim.
func Clear(c *gin.Context) {
	c.SetSameSite(cookieSameSite)
	c.SetCookie(CookieName, "", -1, "/", "", cookieSecure, true)
}
