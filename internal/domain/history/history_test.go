package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/platform/metrics"
	"zoonica-gateway/internal/platform/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// conexiones keep-alive del cliente de los tests de handler
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

var errNetwork = errors.New("dial tcp: connection refused")

// fakeSource responde por categoría; failing marca las que fallan.
type fakeSource struct {
	pet     *pets.Profile
	petErr  error
	lists   map[records.Category][]records.Record
	failing map[records.Category]bool
	panics  map[records.Category]bool

	// gate, si no es nil, bloquea todas las consultas hasta cerrarse.
	gate     chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeSource) enter(ctx context.Context) error {
	n := f.inFlight.Add(1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			f.inFlight.Add(-1)
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeSource) GetPet(ctx context.Context, id string) (pets.Profile, error) {
	if err := f.enter(ctx); err != nil {
		return pets.Profile{}, err
	}
	defer f.inFlight.Add(-1)

	if f.petErr != nil {
		return pets.Profile{}, f.petErr
	}
	if f.pet == nil {
		return pets.Profile{}, nil
	}
	return *f.pet, nil
}

func (f *fakeSource) ListRecords(ctx context.Context, c records.Category, petID string) ([]records.Record, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	defer f.inFlight.Add(-1)

	if f.panics[c] {
		panic("boom")
	}
	if f.failing[c] {
		return nil, errNetwork
	}
	return f.lists[c], nil
}

func rex() *pets.Profile {
	return &pets.Profile{ID: "p1", Nombre: "Rex", Especie: "Perro", Sexo: "Macho"}
}

func TestLoad_EmptyIDIsInvalid(t *testing.T) {
	svc := NewService(&fakeSource{}, nil, nil)
	_, err := svc.Load(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoad_ProfileFailureRendersOnlyNotFound(t *testing.T) {
	for name, src := range map[string]*fakeSource{
		"network error": {petErr: errNetwork},
		"empty body":    {},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(src, nil, nil)
			h, err := svc.Load(context.Background(), "p1")
			require.NoError(t, err)
			assert.False(t, h.Found())

			v := BuildView(h, time.Now(), "https://api.test")
			assert.Equal(t, StatusNotFound, v.Status)
			assert.Equal(t, NotFoundMessage, v.Message)
			assert.Empty(t, v.Tables)
			assert.Nil(t, v.Pet)
			assert.Empty(t, v.Title)
		})
	}
}

func TestLoad_EveryCombinationOfCategoryFailures(t *testing.T) {
	n := len(records.Categories)
	for mask := 0; mask < 1<<n; mask++ {
		src := &fakeSource{
			pet:     rex(),
			lists:   map[records.Category][]records.Record{},
			failing: map[records.Category]bool{},
		}
		for i, c := range records.Categories {
			src.lists[c] = []records.Record{
				records.Vaccine{Base: records.Base{ID: fmt.Sprintf("%s-1", c), Nombre: "primero"}},
				records.Vaccine{Base: records.Base{ID: fmt.Sprintf("%s-2", c), Nombre: "segundo"}},
			}
			if mask&(1<<i) != 0 {
				src.failing[c] = true
			}
		}

		svc := NewService(src, nil, nil)
		h, err := svc.Load(context.Background(), "p1")
		require.NoError(t, err)

		v := BuildView(h, time.Now(), "")
		require.Equal(t, StatusOK, v.Status)
		require.Len(t, v.Tables, n, "mask=%b", mask)

		for i, table := range v.Tables {
			c := records.Categories[i]
			assert.Equal(t, c, table.Category)
			if mask&(1<<i) != 0 {
				assert.Empty(t, table.Rows, "mask=%b category=%s", mask, c)
				assert.Equal(t, EmptySection, table.Empty)
				assert.True(t, table.Degraded)
				assert.Contains(t, h.Degraded, c)
				continue
			}
			require.Len(t, table.Rows, 2)
			assert.Equal(t, "primero", table.Rows[0].Label)
			assert.Equal(t, "segundo", table.Rows[1].Label)
		}
		assert.Len(t, v.Warnings, len(h.Degraded))
	}
}

func TestLoad_EndToEndScenario(t *testing.T) {
	op, err := records.Decode(records.CategoryOperation, json.RawMessage(`{"_id":"o1","tipo":"Esterilización","fecha":"2023-01-01"}`))
	require.NoError(t, err)

	src := &fakeSource{
		pet: &pets.Profile{Nombre: "Rex"},
		lists: map[records.Category][]records.Record{
			records.CategoryOperation: {op},
			records.CategoryDeworming: {},
			records.CategoryIllness:   {},
			records.CategoryVisit:     {},
		},
		failing: map[records.Category]bool{records.CategoryVaccine: true},
	}
	m := metrics.New("test")
	svc := NewService(src, logger.Nop(), m)

	h, err := svc.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []records.Category{records.CategoryVaccine}, h.Degraded)

	v := BuildView(h, time.Now(), "https://api.test")
	assert.Equal(t, "Historial médico de Rex", v.Title)
	require.Len(t, v.Tables, 5)

	vac := v.Tables[0]
	assert.Equal(t, "Vacunas", vac.Title)
	assert.Empty(t, vac.Rows)

	ops := v.Tables[1]
	assert.Equal(t, "#FF9800", ops.Color)
	require.Len(t, ops.Rows, 1)
	assert.Equal(t, "Esterilización", ops.Rows[0].Label)
	assert.Equal(t, "01/01/2023", ops.Rows[0].Date)
	assert.Equal(t, "/pets/p1/records/operaciones/o1", ops.Rows[0].Edit.Href)
	assert.Equal(t, http.MethodPut, ops.Rows[0].Edit.Method)
	assert.Equal(t, "/pets/p1/records/operaciones", ops.Add.Href)

	for _, table := range v.Tables[2:] {
		assert.Empty(t, table.Rows)
		assert.Equal(t, EmptySection, table.Empty)
		assert.False(t, table.Degraded)
	}

	assert.Equal(t, []string{"No se pudo cargar Vacunas"}, v.Warnings)
	assert.Equal(t, "N/D", v.Pet.Age)
	assert.Equal(t, "https://via.placeholder.com/300x200.png?text=Sin+Foto", v.Pet.PhotoURL)
}

func TestLoad_FetchesRunConcurrently(t *testing.T) {
	src := &fakeSource{pet: rex(), gate: make(chan struct{})}
	svc := NewService(src, nil, nil)

	done := make(chan History)
	go func() {
		h, _ := svc.Load(context.Background(), "p1")
		done <- h
	}()

	require.Eventually(t, func() bool { return src.inFlight.Load() == 6 }, 2*time.Second, 5*time.Millisecond)
	close(src.gate)

	h := <-done
	assert.True(t, h.Found())
	assert.EqualValues(t, 6, src.maxSeen.Load())
}

func TestLoad_PanicIsContained(t *testing.T) {
	src := &fakeSource{pet: rex(), panics: map[records.Category]bool{records.CategoryVisit: true}}
	svc := NewService(src, nil, nil)

	h, err := svc.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []records.Category{records.CategoryVisit}, h.Degraded)
}

func TestLoad_CanceledCallerGetsNoHistory(t *testing.T) {
	src := &fakeSource{pet: rex(), gate: make(chan struct{})}
	svc := NewService(src, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Load(ctx, "p1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildView_PetCard(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	h := History{
		PetID: "p1",
		Pet: &pets.Profile{
			ID: "p1", Nombre: "Luna", Especie: "Gato", Sexo: "Hembra",
			Cumpleanos: wire.ParseDate("2021-09-15"), FotoPerfilID: "ph1",
		},
	}
	v := BuildView(h, now, "https://api.test/api")
	require.NotNil(t, v.Pet)
	assert.Equal(t, "4 años", v.Pet.Age)
	assert.Equal(t, "N/D", v.Pet.Breed)
	assert.Equal(t, "https://api.test/api/mascotas/foto/ph1", v.Pet.PhotoURL)
}

func TestHandler(t *testing.T) {
	op := records.Operation{Base: records.Base{ID: "o1", Tipo: "Esterilización", Fecha: wire.ParseDate("2023-01-01")}}

	r := chi.NewRouter()
	RegisterRoutes(r, NewService(&fakeSource{
		pet:   rex(),
		lists: map[records.Category][]records.Record{records.CategoryOperation: {op}},
	}, nil, nil), "https://api.test")
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/pets/p1/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "Historial médico de Rex", v.Title)
	require.Len(t, v.Tables, 5)
	assert.Equal(t, "01/01/2023", v.Tables[1].Rows[0].Date)

	r = chi.NewRouter()
	RegisterRoutes(r, NewService(&fakeSource{petErr: errNetwork}, nil, nil), "")
	ts2 := httptest.NewServer(r)
	defer ts2.Close()

	resp2, err := http.Get(ts2.URL + "/pets/p1/history")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)

	var nf View
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&nf))
	assert.Equal(t, StatusNotFound, nf.Status)
	assert.Empty(t, nf.Tables)
}
