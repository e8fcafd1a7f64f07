package lostpets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"zoonica-gateway/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, photoBase string) {
	r.Route("/lost-pets", func(lr chi.Router) {
		lr.Get("/", listLostPetsHandler(svc, photoBase))
		lr.Post("/{lostPetID}/found", markFoundHandler(svc, photoBase))
	})
}

type lostPetResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LostAt      string `json:"lost_at"`
	LostOn      string `json:"lost_on"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
	Found       bool   `json:"found"`

	// CanMarkFound: el usuario de la sesión es quien reportó y sigue perdida.
	CanMarkFound bool `json:"can_mark_found"`
}

func toLostPetResponse(p LostPet, userID, photoBase string) lostPetResponse {
	name := p.Nombre
	if strings.TrimSpace(name) == "" {
		name = "Sin nombre"
	}
	return lostPetResponse{
		ID:           p.ID,
		Name:         name,
		Description:  p.Descripcion,
		LostAt:       p.LugarPerdida,
		LostOn:       p.FechaPerdida.Format(),
		Phone:        p.Phone(),
		Email:        p.Email(),
		PhotoURL:     p.PhotoURL(photoBase),
		Found:        p.Encontrada,
		CanMarkFound: userID != "" && p.ReportedBy(userID) && !p.Encontrada,
	}
}

// listLostPetsHandler godoc
// @Summary Mascotas perdidas
// @Tags lost-pets
// @Produce json
// @Success 200 {array} lostPetResponse
// @Failure 502 {string} string "upstream error"
// @Router /lost-pets [get]
func listLostPetsHandler(svc *Service, photoBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}

		out := make([]lostPetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toLostPetResponse(p, claims.UserID, photoBase))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// markFoundHandler godoc
// @Summary Marcar mascota como encontrada
// @Description Solo el usuario que hizo el reporte.
// @Tags lost-pets
// @Produce json
// @Param Authorization header string false "Bearer <token de sesión>"
// @Param lostPetID path string true "ID del reporte"
// @Success 200 {object} lostPetResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "lost pet not found"
// @Router /lost-pets/{lostPetID}/found [post]
func markFoundHandler(svc *Service, photoBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.MarkFound(r.Context(), claims, chi.URLParam(r, "lostPetID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "lost pet not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "upstream error", http.StatusBadGateway)
			}
			return
		}
		writeJSON(w, http.StatusOK, toLostPetResponse(p, claims.UserID, photoBase))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
