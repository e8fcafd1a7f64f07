package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"zoonica-gateway/internal/adapters/geo/replay"
	"zoonica-gateway/internal/domain/tracking"
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

func fakeBackend(t *testing.T) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/mascotas/p1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `{"_id":"p1","nombre":"Rex","especie":"Perro","sexo":"Macho","cumpleaños":"2020-03-01"}`)
	})
	r.Get("/api/mascotas/usuario/u1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `[{"_id":"p1","nombre":"Rex","especie":"Perro"}]`)
	})
	r.Get("/api/operaciones/mascota/p1", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `[{"_id":"o1","tipo":"Esterilización","fecha":"2023-01-01"}]`)
	})
	r.Get("/api/eventos/activos", func(w http.ResponseWriter, _ *http.Request) {
		writeRaw(w, http.StatusOK, `{"eventos":[{"_id":"e1","titulo":"Jornada de vacunación","estado":"activo"}]}`)
	})
	// el resto de colecciones responde 404 (sin registros)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "history")
	assert.Contains(t, out, "track")
}

func TestHistoryCommand(t *testing.T) {
	api := fakeBackend(t)

	out, err := run(t, "--api", api, "history", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Historial médico de Rex")
	assert.Contains(t, out, "Esterilización")
	assert.Contains(t, out, "01/01/2023")
	assert.Contains(t, out, "Aún no hay registros para esta sección")

	out, err = run(t, "--api", api, "history", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "No se encontró la mascota")
}

func TestPetsAndEventsCommands(t *testing.T) {
	api := fakeBackend(t)

	_, err := run(t, "--api", api, "pets", "--user", "")
	require.Error(t, err)

	out, err := run(t, "--api", api, "pets", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rex")
	assert.Contains(t, out, "N/D")

	out, err = run(t, "--api", api, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "Jornada de vacunación")
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTrackModel(t *testing.T) {
	route := replay.Route{
		Name:     "Paseo",
		Interval: 5 * time.Millisecond,
		Points: []tracking.Coordinate{
			{Latitude: -34.6037, Longitude: -58.3816},
			{Latitude: -34.6040, Longitude: -58.3820},
			{Latitude: -34.6045, Longitude: -58.3825},
		},
	}
	tr := tracking.NewTracker(replay.New(route), tracking.DefaultWatchOptions())
	m := newTrackModel(tr, route.Name)

	assert.Contains(t, m.View(), tracking.WaitingForLocation)

	m.Update(key("s"))
	require.Equal(t, tracking.Watching, tr.State())
	require.Eventually(t, func() bool { return len(tr.Snapshot().Path) == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, m.View(), "Recorrido: 3 puntos")

	m.Update(key("c"))
	assert.Empty(t, tr.Snapshot().Path)

	m.Update(key("s"))
	assert.Equal(t, tracking.Idle, tr.State())

	listen := m.listen()
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)

	// q libera la suscripción; el tracker ya no arranca
	require.ErrorIs(t, tr.Start(), tracking.ErrClosed)
	// la espera pendiente termina al salir
	_ = listen()
}
