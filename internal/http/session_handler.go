package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wepick/internal/sessions"
)

// SessionHandler exposes the wizard session lifecycle.
type SessionHandler struct {
	service *sessions.Service
	logger  *slog.Logger
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(service *sessions.Service, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: logger}
}

// Create handles POST /api/sessions. A signed-in viewer owns the session and
// their display name stands in for a missing host name.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input sessions.CreateInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}

	if viewer := ViewerFromContext(r.Context()); viewer != nil {
		id := viewer.ID
		input.ViewerID = &id
		if input.HostName == "" {
			input.HostName = viewer.Name
		}
	}

	session, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	session, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type languageRequest struct {
	Language string `json:"language"`
}

// SetLanguage handles PUT /api/sessions/{id}/language.
func (h *SessionHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req languageRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, err)
		return
	}

	h.respond(w)(h.service.SetLanguage(r.Context(), id, req.Language))
}

type contentTypeRequest struct {
	ContentType string `json:"contentType"`
}

// SetContentType handles PUT /api/sessions/{id}/content-type.
func (h *SessionHandler) SetContentType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req contentTypeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, err)
		return
	}

	h.respond(w)(h.service.SetContentType(r.Context(), id, req.ContentType))
}

type friendRequest struct {
	Name string `json:"name"`
}

// InviteFriend handles POST /api/sessions/{id}/friend.
func (h *SessionHandler) InviteFriend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req friendRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, err)
		return
	}

	h.respond(w)(h.service.InviteFriend(r.Context(), id, req.Name))
}

type characterRequest struct {
	CharacterID string `json:"characterId"`
}

// ChooseCharacter handles POST /api/sessions/{id}/character.
func (h *SessionHandler) ChooseCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req characterRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, err)
		return
	}

	h.respond(w)(h.service.ChooseCharacter(r.Context(), id, req.CharacterID))
}

// SavePreferences handles PUT /api/sessions/{id}/participants/{index}/preferences.
func (h *SessionHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid participant index")
		return
	}

	var input sessions.PreferencesInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}

	h.respond(w)(h.service.SavePreferences(r.Context(), id, index, input))
}

// Reset handles POST /api/sessions/{id}/reset?keepGenerated=true.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	keepGenerated := false
	if raw := r.URL.Query().Get("keepGenerated"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "keepGenerated must be a boolean")
			return
		}
		keepGenerated = parsed
	}

	h.respond(w)(h.service.Reset(r.Context(), id, keepGenerated))
}

// Recommend handles POST /api/sessions/{id}/recommendations.
func (h *SessionHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.Recommend(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) respond(w http.ResponseWriter) func(sessions.Session, error) {
	return func(session sessions.Session, err error) {
		if err != nil {
			handleServiceError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}
