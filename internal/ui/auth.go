package ui

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireToken rejects API requests that do not carry the session token,
// either as "Authorization: Bearer <token>" or as a token query parameter
// (navigator.sendBeacon cannot set headers).
func requireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented := r.URL.Query().Get("token")
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			presented = strings.TrimPrefix(auth, "Bearer ")
		}
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Kind: "unauthorized"}, nil)
			return
		}
		next(w, r)
	}
}
