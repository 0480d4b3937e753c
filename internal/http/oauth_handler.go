package http

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"wepick/internal/auth"
)

type oauthStatePayload struct {
	State      string `json:"s"`
	RedirectTo string `json:"r,omitempty"`
}

// isValidRedirectPath accepts only relative paths that cannot be turned into
// an absolute URL, including through percent-encoded slashes.
func isValidRedirectPath(path string) bool {
	if path == "" {
		return false
	}

	decoded, err := url.QueryUnescape(path)
	if err != nil {
		return false
	}

	if !strings.HasPrefix(decoded, "/") || strings.HasPrefix(decoded, "//") || strings.HasPrefix(decoded, "/\\") {
		return false
	}

	parsed, err := url.Parse(decoded)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}

const (
	oauthStateCookieName = "wepick_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
	loginCookieName      = "wepick_login"
)

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error)
	IsEmailAllowed(email string) bool
}

// OAuthHandler signs viewers in with Google and manages the login cookie.
type OAuthHandler struct {
	google       googleAuthenticator
	authService  *auth.Service
	logger       *slog.Logger
	secureCookie bool
	frontendURL  string
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(google googleAuthenticator, authService *auth.Service, frontendURL, env string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		google:       google,
		authService:  authService,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		frontendURL:  strings.TrimSuffix(frontendURL, "/"),
	}
}

// InitiateGoogle handles GET /api/auth/google.
func (h *OAuthHandler) InitiateGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	payload := oauthStatePayload{State: state}
	if redirectTo := r.URL.Query().Get("redirectTo"); isValidRedirectPath(redirectTo) {
		payload.RedirectTo = redirectTo
	}

	stateJSON, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, h.google.AuthURL(base64.RawURLEncoding.EncodeToString(stateJSON)), http.StatusTemporaryRedirect)
}

// CallbackGoogle handles GET /api/auth/google/callback.
func (h *OAuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		h.logger.Warn("oauth callback: missing state cookie")
		h.redirectWithError(w, r, "invalid_request", "Sign-in expired. Please try again.")
		return
	}

	stateBytes, err := base64.RawURLEncoding.DecodeString(r.URL.Query().Get("state"))
	if err != nil {
		h.logger.Warn("oauth callback: invalid state encoding")
		h.redirectWithError(w, r, "invalid_request", "Invalid state. Please try again.")
		return
	}

	var statePayload oauthStatePayload
	if err := json.Unmarshal(stateBytes, &statePayload); err != nil {
		h.logger.Warn("oauth callback: invalid state JSON")
		h.redirectWithError(w, r, "invalid_request", "Invalid state. Please try again.")
		return
	}

	if subtle.ConstantTimeCompare([]byte(statePayload.State), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		h.redirectWithError(w, r, "invalid_request", "Invalid state. Please try again.")
		return
	}

	redirectTo := "/"
	if isValidRedirectPath(statePayload.RedirectTo) {
		redirectTo = statePayload.RedirectTo
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		h.redirectWithError(w, r, errParam, r.URL.Query().Get("error_description"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "invalid_request", "Missing authorization code.")
		return
	}

	claims, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		h.redirectWithError(w, r, "exchange_error", "Failed to complete authentication.")
		return
	}

	if !h.google.IsEmailAllowed(claims.Email) {
		h.logger.Warn("oauth callback: email not allowed", "email", claims.Email)
		h.redirectWithError(w, r, "access_denied", "Your account is not authorized to use this application.")
		return
	}

	viewer, err := h.authService.SignIn(r.Context(), claims)
	if err != nil {
		if errors.Is(err, auth.ErrEmailNotVerified) {
			h.logger.Warn("oauth callback: email not verified", "email", claims.Email)
			h.redirectWithError(w, r, "email_not_verified", "Please verify your Google email address.")
			return
		}
		h.logger.Error("oauth callback: sign in failed", "error", err)
		h.redirectWithError(w, r, "internal_error", "Failed to create your account.")
		return
	}

	token, err := h.authService.StartLogin(r.Context(), viewer.ID, r.UserAgent(), clientIP(r))
	if err != nil {
		h.logger.Error("oauth callback: login creation failed", "error", err)
		h.redirectWithError(w, r, "internal_error", "Failed to sign you in.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     loginCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.authService.LoginTTL().Seconds()),
	})

	h.logger.Info("oauth login successful", "viewer_id", viewer.ID)

	http.Redirect(w, r, h.frontendURL+redirectTo, http.StatusTemporaryRedirect)
}

// Me handles GET /api/auth/me.
func (h *OAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	viewer := ViewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "viewer": viewer})
}

// Logout handles POST /api/auth/logout. It is safe to call without a login.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(loginCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.EndLogin(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to sign out")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     loginCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code, message string) {
	target := h.frontendURL + "/login?error=" + url.QueryEscape(code)
	if message != "" {
		target += "&message=" + url.QueryEscape(message)
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
