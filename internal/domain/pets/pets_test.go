package pets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoonica-gateway/internal/middleware"
	"zoonica-gateway/internal/platform/wire"
	"zoonica-gateway/internal/ports/auth"
)

type fakeSource struct {
	pets map[string]Profile
}

func (f *fakeSource) GetPet(ctx context.Context, id string) (Profile, error) {
	p, ok := f.pets[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeSource) ListPetsByOwner(ctx context.Context, userID string) ([]Profile, error) {
	var out []Profile
	for _, p := range f.pets {
		if p.OwnedBy(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestAge_CalendarYearApproximation(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	p := Profile{Cumpleanos: wire.NewDate(now.AddDate(0, 0, -366))}
	years, ok := p.Age(now)
	require.True(t, ok)
	assert.Equal(t, 1, years)
	assert.Equal(t, "1 año", p.AgeLabel(now))

	// Cumple en diciembre del año pasado: sigue contando 1 aunque no pasó un año.
	p = Profile{Cumpleanos: wire.ParseDate("2024-12-31")}
	assert.Equal(t, "1 año", p.AgeLabel(now))

	p = Profile{Cumpleanos: wire.ParseDate("2025-01-02")}
	assert.Equal(t, "Menos de 1 año", p.AgeLabel(now))

	p = Profile{Cumpleanos: wire.ParseDate("2019-06-01T00:00:00.000Z")}
	assert.Equal(t, "6 años", p.AgeLabel(now))

	assert.Equal(t, NotAvailable, Profile{}.AgeLabel(now))
	assert.Equal(t, NotAvailable, Profile{Cumpleanos: wire.ParseDate("ayer")}.AgeLabel(now))
}

func TestPhotoURL(t *testing.T) {
	assert.Equal(t, PlaceholderPhotoURL, Profile{}.PhotoURL("https://api.test/api"))
	assert.Equal(t, "https://api.test/api/mascotas/foto/f1", Profile{FotoPerfilID: "f1"}.PhotoURL("https://api.test/api/"))
}

func TestProfile_DecodesUpstreamShape(t *testing.T) {
	var p Profile
	err := json.Unmarshal([]byte(`{"_id":"p1","nombre":"Rex","especie":"Perro","sexo":"Macho","cumpleaños":"2020-05-01T00:00:00.000Z","fotoPerfilId":null,"usuarioId":{"_id":"u1","nombre":"Ana"}}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "Rex", p.Nombre)
	assert.Equal(t, "01/05/2020", p.Cumpleanos.Format())
	assert.True(t, p.OwnedBy("u1"))
	assert.Equal(t, NotAvailable, p.BreedLabel())
}

func newTestServer(t *testing.T, svc *Service, claims *auth.Claims) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	if claims != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(), *claims)))
			})
		})
	}
	RegisterRoutes(r, svc, "https://api.test/api")
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func TestHandlers(t *testing.T) {
	src := &fakeSource{pets: map[string]Profile{
		"p1": {ID: "p1", Nombre: "Rex", Especie: "Perro", UsuarioID: "u1", FotoPerfilID: "f1"},
		"p2": {ID: "p2", Nombre: "Mishi", Especie: "Gato", UsuarioID: "u2"},
	}}
	svc := NewService(src)

	t.Run("get pet is public", func(t *testing.T) {
		ts := newTestServer(t, svc, nil)
		resp, err := http.Get(ts.URL + "/pets/p1")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got petResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "Rex", got.Name)
		assert.Equal(t, "N/D", got.Age)
		assert.Equal(t, "https://api.test/api/mascotas/foto/f1", got.PhotoURL)
	})

	t.Run("unknown pet is 404", func(t *testing.T) {
		ts := newTestServer(t, svc, nil)
		resp, err := http.Get(ts.URL + "/pets/nope")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("my pets requires session", func(t *testing.T) {
		ts := newTestServer(t, svc, nil)
		resp, err := http.Get(ts.URL + "/me/pets")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("my pets uses the session user", func(t *testing.T) {
		ts := newTestServer(t, svc, &auth.Claims{UserID: "u2"})
		resp, err := http.Get(ts.URL + "/me/pets")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got []petResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "Mishi", got[0].Name)
	})
}
