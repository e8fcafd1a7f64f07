package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items []Event
	err   error
}

func (f fakeSource) ListActiveEvents(ctx context.Context) ([]Event, error) {
	return f.items, f.err
}

func TestListActive_DropsFinished(t *testing.T) {
	var items []Event
	require.NoError(t, json.Unmarshal([]byte(`[
		{"_id":"e1","titulo":"Jornada de vacunación","estado":"activo","fechaInicio":"2025-03-01T10:00:00.000Z","cantidadParticipantes":12},
		{"_id":"e2","titulo":"Feria","estado":"Finalizado "},
		{"_id":"e3","titulo":"Adopciones","estado":"proximo"}
	]`), &items))

	svc := NewService(fakeSource{items: items})
	got, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e3", got[1].ID)
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(fakeSource{items: []Event{{ID: "e1", Titulo: "Jornada", Estado: "activo"}}}))
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []eventResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sin fecha", got[0].StartsOn)

	r = chi.NewRouter()
	RegisterRoutes(r, NewService(fakeSource{err: errors.New("down")}))
	ts2 := httptest.NewServer(r)
	defer ts2.Close()

	resp2, err := http.Get(ts2.URL + "/events")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp2.StatusCode)
}
