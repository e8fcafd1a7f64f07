package history

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, photoBase string) {
	r.Get("/pets/{petID}/history", getHistoryHandler(svc, photoBase))
}

// getHistoryHandler godoc
// @Summary Historial médico de una mascota
// @Description Perfil + vacunas, operaciones, desparasitaciones, enfermedades y visitas.
// @Description Una sección que no se pudo cargar aparece vacía y en warnings.
// @Tags history
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} View
// @Failure 404 {object} View "mascota no encontrada"
// @Router /pets/{petID}/history [get]
func getHistoryHandler(svc *Service, photoBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := svc.Load(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			// El cliente se fue: no hay a quién responder.
			return
		}

		v := BuildView(h, svc.Now(), photoBase)
		if v.Status == StatusNotFound {
			writeJSON(w, http.StatusNotFound, v)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
