package events

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/events", listEventsHandler(svc))
}

// eventResponse representa un evento activo devuelto por la API.
type eventResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartsOn     string `json:"starts_on"`
	Status       string `json:"status"`
	Participants int    `json:"participants"`
}

// listEventsHandler godoc
// @Summary Listar eventos activos
// @Description Eventos de la comunidad; los finalizados se excluyen.
// @Tags events
// @Produce json
// @Success 200 {array} eventResponse
// @Failure 502 {string} string "upstream error"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListActive(r.Context())
		if err != nil {
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, eventResponse{
				ID:           e.ID,
				Title:        e.Titulo,
				Description:  e.Descripcion,
				Location:     e.Ubicacion,
				StartsOn:     e.FechaInicio.Format(),
				Status:       e.Estado,
				Participants: e.CantidadParticipantes,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
