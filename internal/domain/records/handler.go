package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"zoonica-gateway/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/records/{category}", func(rr chi.Router) {
		rr.Get("/", listRecordsHandler(svc))
		rr.Post("/", createRecordHandler(svc))
		rr.Get("/{recordID}", getRecordHandler(svc))
		rr.Put("/{recordID}", updateRecordHandler(svc))
	})
}

// recordResponse devuelve la proyección común y el documento completo.
type recordResponse struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Date     string   `json:"date"`
	Data     Record   `json:"data"`
}

func toRecordResponse(r Record) recordResponse {
	e := Project(r)
	return recordResponse{
		ID:       e.ID,
		Category: e.Category,
		Label:    e.Label,
		Date:     e.Date,
		Data:     r,
	}
}

// listRecordsHandler godoc
// @Summary Listar registros médicos de una categoría
// @Tags records
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param category path string true "vacunas | operaciones | desparacitaciones | enfermedades | visitas"
// @Success 200 {array} recordResponse
// @Failure 400 {string} string "categoría inválida"
// @Failure 502 {string} string "upstream error"
// @Router /pets/{petID}/records/{category} [get]
func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), chi.URLParam(r, "petID"), c)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toRecordResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec, err := svc.Get(r.Context(), chi.URLParam(r, "petID"), c, chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// createRecordHandler godoc
// @Summary Registrar un registro médico
// @Description Requiere sesión. El cuerpo depende de la categoría; mascotaId se toma de la ruta.
// @Tags records
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer <token de sesión>"
// @Param petID path string true "ID de la mascota"
// @Param category path string true "categoría"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {string} string "upstream error"
// @Router /pets/{petID}/records/{category} [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		in, err := DecodeInput(c, r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), chi.URLParam(r, "petID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func updateRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		in, err := DecodeInput(c, r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "recordID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "record not found", http.StatusNotFound)
	default:
		http.Error(w, "upstream error", http.StatusBadGateway)
	}
}

// writeJSON está duplicado en cada módulo a propósito; ver pets/handler.go.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
