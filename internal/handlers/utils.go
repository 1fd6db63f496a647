// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mamathon/triviawager/internal/auth"
	"github.com/mamathon/triviawager/internal/lobby"
	log "github.com/sirupsen/logrus"
)

var errMissingToken = errors.New("missing auth token")

// extractToken looks for a session token in the auth_token cookie, then a
// Bearer Authorization header, then the token query parameter. Browsers cannot
// set headers on websocket upgrades, hence the query fallback.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie("auth_token"); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// walletFromRequest returns the authenticated wallet, or errMissingToken when
// the request carries no token at all.
func walletFromRequest(r *http.Request) (string, error) {
	token := extractToken(r)
	if token == "" {
		return "", errMissingToken
	}
	return auth.AuthenticateJWT(token)
}

// requireWallet writes 401/403 and returns false when the request is not
// authenticated.
func requireWallet(w http.ResponseWriter, r *http.Request) (string, bool) {
	wallet, err := walletFromRequest(r)
	switch {
	case errors.Is(err, errMissingToken):
		writeJSONError(w, http.StatusUnauthorized, "missing auth token")
		return "", false
	case err != nil:
		writeJSONError(w, http.StatusForbidden, "invalid token")
		return "", false
	}
	return wallet, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps the lobby error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lobby.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lobby.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, lobby.ErrPreconditionFailed):
		return http.StatusConflict
	case errors.Is(err, lobby.ErrUpstreamFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
