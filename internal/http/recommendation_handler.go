package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"wepick/internal/genres"
	"wepick/internal/recommend"
)

const maxGroupSize = 2

type resolver interface {
	Resolve(ctx context.Context, participants []recommend.Participant, contentType recommend.ContentType, language string) (recommend.Result, error)
}

// RecommendationHandler resolves ad-hoc groups that are not kept as sessions.
type RecommendationHandler struct {
	resolver resolver
	logger   *slog.Logger
}

// NewRecommendationHandler builds a RecommendationHandler.
func NewRecommendationHandler(resolver resolver, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{resolver: resolver, logger: logger}
}

type recommendationRequest struct {
	Participants []recommend.Participant `json:"participants"`
	ContentType  string                  `json:"contentType"`
	Language     string                  `json:"language"`
}

// Recommend handles POST /api/recommendations.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, err)
		return
	}

	if len(req.Participants) == 0 || len(req.Participants) > maxGroupSize {
		writeError(w, http.StatusBadRequest, "participants must contain one or two entries")
		return
	}

	contentType, err := recommend.ParseContentType(req.ContentType)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = genres.Ukrainian.Locale()
	}

	result, err := h.resolver.Resolve(r.Context(), req.Participants, contentType, language)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
