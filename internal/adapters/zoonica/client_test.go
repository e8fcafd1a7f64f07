package zoonica

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"zoonica-gateway/internal/domain/history"
	"zoonica-gateway/internal/domain/lostpets"
	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
	"zoonica-gateway/internal/domain/session"
	"zoonica-gateway/internal/platform/httpclient"
	"zoonica-gateway/internal/platform/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, r http.Handler) (*Client, *metrics.Metrics) {
	t.Helper()
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	hc, err := httpclient.NewWithBaseURL(ts.URL+"/api", time.Second)
	require.NoError(t, err)
	m := metrics.New("test")
	return New(hc, m), m
}

func TestGetPet(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/mascotas/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "p1" {
			writeRaw(w, http.StatusNotFound, `{"message":"no existe"}`)
			return
		}
		writeRaw(w, http.StatusOK, `{"_id":"p1","nombre":"Rex","especie":"Perro","cumpleaños":"2020-03-01","usuarioId":{"_id":"u1"}}`)
	})
	c, m := newTestClient(t, r)
	ctx := context.Background()

	p, err := c.GetPet(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Rex", p.Nombre)
	assert.True(t, p.OwnedBy("u1"))

	_, err = c.GetPet(ctx, "nope")
	require.ErrorIs(t, err, pets.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("pet", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("pet", metrics.OutcomeNotFound)))
}

func TestGetPet_ArrayTakesFirst(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/mascotas/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "vacio" {
			writeRaw(w, http.StatusOK, `[]`)
			return
		}
		writeRaw(w, http.StatusOK, `[{"_id":"p1","nombre":"Rex"},{"_id":"p2","nombre":"Luna"}]`)
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	p, err := c.GetPet(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Rex", p.Nombre)

	_, err = c.GetPet(ctx, "vacio")
	require.ErrorIs(t, err, pets.ErrNotFound)
}

func TestHistoryLoad_FailedCategoryIsFetchedOnce(t *testing.T) {
	var vaccineHits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/mascotas/p1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `{"_id":"p1","nombre":"Rex"}`)
	})
	r.Get("/api/vacunas/mascota/p1", func(w http.ResponseWriter, _ *http.Request) {
		vaccineHits.Add(1)
		writeRaw(w, http.StatusServiceUnavailable, `{"message":"durmiendo"}`)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	hc, err := httpclient.NewWithBaseURL(ts.URL+"/api", time.Second, httpclient.WithRetries(2, time.Millisecond))
	require.NoError(t, err)

	h, err := history.NewService(New(hc, nil), nil, nil).Load(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), vaccineHits.Load(), "el historial no reintenta")
	assert.Equal(t, []records.Category{records.CategoryVaccine}, h.Degraded)
	require.True(t, h.Found())
	assert.Equal(t, "Rex", h.Pet.Nombre)
}

func TestListRecords_ShapeTolerance(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/vacunas/mascota/p1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `[{"_id":"v1","nombre":"Rabia","fecha":"2024-05-01T00:00:00.000Z"},{"_id":"v2"}]`)
	})
	r.Get("/api/operaciones/mascota/p1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `{"_id":"o1","tipo":"Esterilización","fecha":"2023-01-01"}`)
	})
	r.Get("/api/visitas/mascota/p1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusNotFound, `{"message":"sin visitas"}`)
	})
	r.Get("/api/enfermedades/mascota/p1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>waking up</html>"))
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	vs, err := c.ListRecords(ctx, records.CategoryVaccine, "p1")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "Rabia", records.Project(vs[0]).Label)

	ops, err := c.ListRecords(ctx, records.CategoryOperation, "p1")
	require.NoError(t, err)
	require.Len(t, ops, 1, "un objeto suelto es una lista de uno")
	assert.Equal(t, "01/01/2023", records.Project(ops[0]).Date)

	visits, err := c.ListRecords(ctx, records.CategoryVisit, "p1")
	require.NoError(t, err)
	assert.Empty(t, visits)

	_, err = c.ListRecords(ctx, records.CategoryIllness, "p1")
	var cte *httpclient.ContentTypeError
	require.True(t, errors.As(err, &cte))
}

func TestCreateAndUpdateRecord(t *testing.T) {
	var posted map[string]any
	r := chi.NewRouter()
	r.Post("/api/vacunas", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&posted))
		writeRaw(w, http.StatusCreated, `{"mensaje":"ok","vacuna":{"_id":"v9","nombre":"Rabia","mascotaId":"p1"}}`)
	})
	r.Put("/api/vacunas/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	in := records.VaccineInput{MascotaID: "p1", Nombre: "Rabia", Fecha: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	rec, err := c.CreateRecord(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "v9", rec.Common().ID)
	assert.Equal(t, "p1", posted["mascotaId"])

	rec, err = c.UpdateRecord(ctx, "v9", in)
	require.NoError(t, err)
	assert.Equal(t, "v9", rec.Common().ID, "sin cuerpo se devuelve lo enviado con su id")
	assert.Equal(t, "01/05/2024", records.Project(rec).Date)
}

func TestSignIn(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-from-token"}).SignedString([]byte("k"))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/api/auth/signin", func(w http.ResponseWriter, req *http.Request) {
		var in session.LoginInput
		_ = json.NewDecoder(req.Body).Decode(&in)
		switch in.Email {
		case "ana@zoonica.test":
			writeRaw(w, http.StatusOK, `{"token":"up-1","usuario":{"_id":"u1","nombre":"Ana","email":"ana@zoonica.test"}}`)
		case "tok@zoonica.test":
			writeRaw(w, http.StatusOK, `{"token":"`+token+`"}`)
		default:
			writeRaw(w, http.StatusUnauthorized, `{"message":"credenciales"}`)
		}
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	id, err := c.SignIn(ctx, session.LoginInput{Email: "ana@zoonica.test", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, session.Identity{UserID: "u1", Email: "ana@zoonica.test", Name: "Ana", Token: "up-1"}, id)

	id, err = c.SignIn(ctx, session.LoginInput{Email: "tok@zoonica.test", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "u-from-token", id.UserID)
	assert.Equal(t, "tok@zoonica.test", id.Email)

	_, err = c.SignIn(ctx, session.LoginInput{Email: "bad@zoonica.test", Password: "x"})
	require.ErrorIs(t, err, session.ErrUnauthorized)
}

func TestSignUp_Conflict(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusBadRequest, `{"message":"El email ya existe"}`)
	})
	c, _ := newTestClient(t, r)

	_, err := c.SignUp(context.Background(), session.SignupInput{Nombre: "Ana", Username: "ana", Email: "ana@zoonica.test", Password: "secreto"})
	require.ErrorIs(t, err, session.ErrInvalidInput)
	assert.Contains(t, err.Error(), "El email ya existe")
}

func TestEventsAndNotifications(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/eventos/activos", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `{"eventos":[{"_id":"e1","titulo":"Feria","estado":"activo"},{"_id":"e2","estado":"finalizado"}]}`)
	})
	r.Get("/api/notificaciones/u1/pendientes", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `[{"_id":"n1","mensaje":"Vacuna","leida":false,"mascotaId":{"_id":"p1","nombre":"Rex"}}]`)
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	evs, err := c.ListActiveEvents(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 2, "el filtrado de finalizados es del servicio")

	ns, err := c.ListNotifications(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "Rex", ns[0].Mascota.Nombre)

	ns, err = c.ListNotifications(ctx, "u1", false)
	require.NoError(t, err, "404 => sin notificaciones")
	assert.Empty(t, ns)
}

func TestMarkFound_ForwardsUpstreamToken(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]bool
	)
	r := chi.NewRouter()
	r.Put("/api/mascotas-perdidas/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "l1" {
			writeRaw(w, http.StatusNotFound, `{}`)
			return
		}
		gotAuth = req.Header.Get("Authorization")
		_ = json.NewDecoder(req.Body).Decode(&gotBody)
		writeRaw(w, http.StatusOK, `{"_id":"l1","encontrada":true}`)
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.MarkFound(ctx, "l1", "up-1"))
	assert.Equal(t, "Bearer up-1", gotAuth)
	assert.Equal(t, map[string]bool{"encontrada": true}, gotBody)

	require.ErrorIs(t, c.MarkFound(ctx, "l2", "up-1"), lostpets.ErrNotFound)
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.GetPet(context.Background(), "p1")
	require.ErrorIs(t, err, ErrNotConfigured)
}
