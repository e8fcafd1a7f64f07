package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"zoonica-gateway/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas de mascotas. photoBase es la URL base del
// backend para armar las URLs de fotos.
func RegisterRoutes(r chi.Router, svc *Service, photoBase string) {
	r.Get("/pets/{petID}", getPetHandler(svc, photoBase))

	// Mascotas del usuario de la sesión
	r.Get("/me/pets", listMyPetsHandler(svc, photoBase))
}

type petResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birth_date"`
	Age         string `json:"age"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_url"`
	OwnerUserID string `json:"owner_user_id,omitempty"`
}

// getPetHandler godoc
// @Summary Perfil de mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Failure 502 {string} string "upstream error"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, photoBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(svc, p, photoBase))
	}
}

// listMyPetsHandler godoc
// @Summary Mis mascotas
// @Tags pets
// @Produce json
// @Param Authorization header string false "Bearer <token de sesión>"
// @Success 200 {array} petResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/pets [get]
func listMyPetsHandler(svc *Service, photoBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(svc, p, photoBase))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toPetResponse(svc *Service, p Profile, photoBase string) petResponse {
	bd := ""
	if !p.Cumpleanos.IsZero() {
		bd = p.Cumpleanos.Format()
	}
	return petResponse{
		ID:          p.ID,
		Name:        p.Nombre,
		Species:     p.Especie,
		Breed:       p.BreedLabel(),
		Sex:         p.Sexo,
		BirthDate:   bd,
		Age:         p.AgeLabel(svc.Now()),
		Description: p.Descripcion,
		PhotoURL:    p.PhotoURL(photoBase),
		OwnerUserID: p.UsuarioID.String(),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		http.Error(w, "upstream error", http.StatusBadGateway)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
