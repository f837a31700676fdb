package preferences

import (
	"log/slog"
	"net/http"

	"synergy/internal/httpapi"
)

type Handler struct {
	theme *ThemeContext
	log   *slog.Logger
}

func NewHandler(theme *ThemeContext, log *slog.Logger) *Handler {
	return &Handler{theme: theme, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/preferences", h.GetPreferences)
	mux.HandleFunc("PUT /api/preferences", h.UpdatePreferences)
	mux.HandleFunc("POST /api/preferences/theme/toggle", h.ToggleTheme)
}

// GetPreferences handles GET /api/preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	httpapi.JSON(w, Preferences{Theme: h.theme.Current()}, http.StatusOK)
}

// UpdatePreferences handles PUT /api/preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var p Preferences
	if err := httpapi.DecodeJSON(w, r, &p); err != nil {
		httpapi.WriteError(w, h.log, "update preferences", err)
		return
	}
	theme, err := h.theme.Set(r.Context(), p.Theme)
	if err != nil {
		httpapi.WriteError(w, h.log, "update preferences", err)
		return
	}
	httpapi.JSON(w, Preferences{Theme: theme}, http.StatusOK)
}

// ToggleTheme handles POST /api/preferences/theme/toggle
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.theme.Toggle(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.log, "toggle theme", err)
		return
	}
	httpapi.JSON(w, Preferences{Theme: theme}, http.StatusOK)
}
