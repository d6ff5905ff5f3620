package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// requireAuth wraps next with basic auth against the single configured
// credential. Without a configured username, everything is allowed.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	auth := s.cfg.Auth
	if !auth.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			challenge(w)
			return
		}

		// The hash is always compared, so a wrong username takes as long as
		// a wrong password.
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(auth.Username)) == 1
		passOK := bcrypt.CompareHashAndPassword([]byte(auth.Password), []byte(pass)) == nil
		recordAuthAttempt(userOK && passOK)
		if !userOK || !passOK {
			logrus.WithField("IP", r.RemoteAddr).Warnf("Authentication failed for user %q", user)
			challenge(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="gbrowse", charset="UTF-8"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
