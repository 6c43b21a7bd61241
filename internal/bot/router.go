package bot

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"allergy-diary/internal/platform/telegram"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// NewRouter exposes the health check and, for webhook delivery, the update endpoint.
func NewRouter(h *Handler, webhookSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": h.ActiveSessions(),
		})
	})
	r.Post("/telegram/webhook", webhookHandler(h, webhookSecret))
	return r
}

func webhookHandler(h *Handler, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(secret)) != 1 {
			respondError(w, http.StatusUnauthorized, "invalid secret token")
			return
		}

		var upd telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			respondError(w, http.StatusBadRequest, "invalid update")
			return
		}

		h.HandleUpdate(r.Context(), upd)
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
