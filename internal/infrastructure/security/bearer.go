package security

import (
	"net/http"
	"strings"
)

// BearerToken extracts the credential from the Authorization header, falling back to
// the "token" query parameter for clients that cannot set headers on a websocket handshake.
func BearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
