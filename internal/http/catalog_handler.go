package http

import (
	"net/http"

	"wepick/internal/genres"
	"wepick/internal/sessions"
)

// CatalogHandler serves the static data a wizard UI renders its pickers from.
type CatalogHandler struct{}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

type genresResponse struct {
	Language genres.Lang `json:"language"`
	Locale   string      `json:"locale"`
	Core     []string    `json:"core"`
	Extended []string    `json:"extended"`
	Decades  []int       `json:"decades"`
}

// Genres handles GET /api/genres?lang=ua|ru|en. The dislike step offers the
// core list; the like step offers core and extended.
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	lang := genres.Ukrainian
	if raw := r.URL.Query().Get("lang"); raw != "" {
		parsed, ok := genres.ParseLang(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unsupported language")
			return
		}
		lang = parsed
	}

	writeJSON(w, http.StatusOK, genresResponse{
		Language: lang,
		Locale:   lang.Locale(),
		Core:     genres.Core(lang),
		Extended: genres.Extended(lang),
		Decades:  sessions.Decades(),
	})
}

// Characters handles GET /api/characters.
func (h *CatalogHandler) Characters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"characters": sessions.Characters()})
}
