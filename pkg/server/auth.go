package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/vigor8or/lockserver/pkg/httpx"
	"github.com/vigor8or/lockserver/pkg/metrics"
)

// Credentials is the single username/password pair accepted by the server.
type Credentials struct {
	Username string
	Password string
}

// ParseCredentials splits a "user:password" flag value.
func ParseCredentials(s string) (*Credentials, error) {
	user, pass, ok := strings.Cut(s, ":")
	if !ok || user == "" {
		return nil, fmt.Errorf("credentials must be in user:password form")
	}
	return &Credentials{Username: user, Password: pass}, nil
}

// withBasicAuth rejects requests lacking valid Basic credentials before they
// reach the dispatcher. The registry never sees unauthenticated calls.
func (s *Server) withBasicAuth(next http.Handler) http.Handler {
	if s.creds == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !s.creds.match(user, pass) {
			metrics.AuthFailureTotal.Inc()
			s.logger.Warn("auth.rejected", "remote", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Basic realm="lockserver", charset="UTF-8"`)
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *Credentials) match(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(c.Password)) == 1
	return userOK && passOK
}
