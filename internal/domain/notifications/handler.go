package notifications

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"zoonica-gateway/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/notifications", listNotificationsHandler(svc))
}

type notificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
	PetID     string `json:"pet_id,omitempty"`
	PetName   string `json:"pet_name,omitempty"`
}

// listNotificationsHandler godoc
// @Summary Mis notificaciones
// @Tags notifications
// @Produce json
// @Param Authorization header string false "Bearer <token de sesión>"
// @Param pending query bool false "solo pendientes"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {string} string "upstream error"
// @Router /me/notifications [get]
func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pending := false
		if v := strings.TrimSpace(r.URL.Query().Get("pending")); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "pending must be a boolean", http.StatusBadRequest)
				return
			}
			pending = b
		}

		items, err := svc.List(r.Context(), claims.UserID, pending)
		if err != nil {
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			nr := notificationResponse{
				ID:        n.ID,
				Message:   n.Mensaje,
				Read:      n.Leida,
				CreatedAt: n.CreatedAt.Format(),
			}
			if n.Mascota != nil {
				nr.PetID = n.Mascota.ID
				nr.PetName = n.Mascota.Nombre
			}
			out = append(out, nr)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
