package controller

import (
	"net/http"
	"strings"
)

const sessionCookieName = "sc-session"

// sessionToken extracts the session token from the Authorization header,
// the session cookie or the token query parameter, in that order.
func (c *controller) sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// authenticate resolves the request's session token to a username.
func (c *controller) authenticate(r *http.Request) (string, error) {
	token := c.sessionToken(r)
	if token == "" {
		return "", http.ErrNoCookie
	}

	return c.authService.ValidateSession(token)
}
