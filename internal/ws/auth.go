package ws

import (
	"net/http"
	"strings"

	"cdc_zoning/internal/auth"
)

// Handler returns the HTTP handler of the Socket.IO server. When issuer is not
// nil the handshake must carry a valid token.
func (h *Hub) Handler(issuer *auth.Issuer) http.Handler {
	if issuer == nil {
		return h.server
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			token := extractToken(r)
			if token == "" {
				h.log.WithField("remote", r.RemoteAddr).Warn("Handshake rejected: no token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := issuer.ParseToken(token)
			if err != nil {
				h.log.WithError(err).WithField("remote", r.RemoteAddr).Warn("Handshake rejected: invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			h.log.WithField("user", claims.Username()).Debug("Handshake accepted")
		}
		h.server.ServeHTTP(w, r)
	})
}

// extractToken reads the token from the token query parameter, then from the
// Authorization header.
func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
