package tracking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"zoonica-gateway/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

func RegisterRoutes(r chi.Router, sessions *Sessions) {
	v := validator.New(validator.WithRequiredStructEnabled())

	r.Route("/tracking/sessions", func(tr chi.Router) {
		tr.Post("/", openSessionHandler(sessions))
		tr.Get("/{sessionID}", getSessionHandler(sessions))
		tr.Delete("/{sessionID}", closeSessionHandler(sessions))

		tr.Post("/{sessionID}/start", startHandler(sessions))
		tr.Post("/{sessionID}/stop", stopHandler(sessions))
		tr.Post("/{sessionID}/clear", clearHandler(sessions))
		tr.Post("/{sessionID}/positions", positionsHandler(sessions, v))
		tr.Post("/{sessionID}/errors", errorsHandler(sessions))
	})
}

type openSessionRequest struct {
	// nil = el dispositivo no informó; se asume concedido.
	PermissionGranted *bool `json:"permission_granted"`
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

type errorRequest struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	ID       string   `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
	Map      MapView  `json:"map"`
}

type positionResponse struct {
	Accepted bool            `json:"accepted"`
	Session  sessionResponse `json:"session"`
}

func toSessionResponse(s *Session) sessionResponse {
	snap := s.Tracker.Snapshot()
	return sessionResponse{
		ID:       s.ID,
		Snapshot: snap,
		Map:      BuildMapView(snap),
	}
}

// openSessionHandler godoc
// @Summary Abrir sesión de ubicación en vivo
// @Tags tracking
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer <token de sesión>"
// @Success 201 {object} sessionResponse
// @Failure 401 {string} string "unauthorized"
// @Router /tracking/sessions [post]
func openSessionHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req openSessionRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		granted := req.PermissionGranted == nil || *req.PermissionGranted

		s, err := sessions.Open(r.Context(), claims.UserID, granted)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(s))
	}
}

func getSessionHandler(sessions *Sessions) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *Session) {
		writeJSON(w, http.StatusOK, toSessionResponse(s))
	})
}

func closeSessionHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := sessions.Close(chi.URLParam(r, "sessionID"), claims.UserID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// startHandler godoc
// @Summary Iniciar seguimiento (idempotente)
// @Tags tracking
// @Produce json
// @Param sessionID path string true "ID de sesión"
// @Success 200 {object} sessionResponse
// @Failure 404 {string} string "tracking session not found"
// @Failure 409 {string} string "tracker closed"
// @Router /tracking/sessions/{sessionID}/start [post]
func startHandler(sessions *Sessions) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *Session) {
		if err := s.Tracker.Start(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(s))
	})
}

func stopHandler(sessions *Sessions) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *Session) {
		s.Tracker.Stop()
		writeJSON(w, http.StatusOK, toSessionResponse(s))
	})
}

func clearHandler(sessions *Sessions) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *Session) {
		s.Tracker.ClearPath()
		writeJSON(w, http.StatusOK, toSessionResponse(s))
	})
}

// positionsHandler godoc
// @Summary Reportar una posición del dispositivo
// @Description La posición pasa por el filtro de distancia e intervalo; accepted=false si se descartó.
// @Tags tracking
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de sesión"
// @Success 202 {object} positionResponse
// @Failure 400 {string} string "invalid input"
// @Router /tracking/sessions/{sessionID}/positions [post]
func positionsHandler(sessions *Sessions, v *validator.Validate) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req positionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := v.Struct(req); err != nil {
			http.Error(w, ErrInvalidInput.Error()+": "+err.Error(), http.StatusBadRequest)
			return
		}

		accepted := s.Push(Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
		writeJSON(w, http.StatusAccepted, positionResponse{
			Accepted: accepted,
			Session:  toSessionResponse(s),
		})
	})
}

func errorsHandler(sessions *Sessions) http.HandlerFunc {
	return withSession(sessions, func(w http.ResponseWriter, r *http.Request, s *Session) {
		var req errorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		msg := strings.TrimSpace(req.Message)
		if msg == "" {
			msg = "unknown geolocation error"
		}
		s.Fail(errors.New(msg))
		w.WriteHeader(http.StatusAccepted)
	})
}

// withSession resuelve la sesión del usuario o corta con 401/404.
func withSession(sessions *Sessions, next func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s, err := sessions.Get(chi.URLParam(r, "sessionID"), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r, s)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "tracking session not found", http.StatusNotFound)
	case errors.Is(err, ErrClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
