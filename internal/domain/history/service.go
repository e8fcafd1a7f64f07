package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
	"zoonica-gateway/internal/platform/httpclient"
	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/platform/metrics"
	"zoonica-gateway/internal/platform/settle"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	src     Source
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService arma el agregador. log y m pueden ser nil.
func NewService(src Source, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		src:     src,
		log:     log.With(map[string]any{"module": "history"}),
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) Now() time.Time {
	return s.now()
}

// Load lanza en paralelo la consulta del perfil y las cinco de registros y
// espera a que todas terminen. Un fallo en cualquiera se degrada a vacío y se
// loguea; Load nunca devuelve un error de consulta. Si ctx se cancela antes de
// terminar devuelve ctx.Err() para que nadie pinte una vista descartada.
func (s *Service) Load(ctx context.Context, petID string) (History, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return History{}, ErrInvalidInput
	}

	// Un fallo degrada su sección en el primer intento; sin reintentos.
	ctx = httpclient.NoRetry(ctx)

	var g settle.Group

	pet := settle.Go(&g, ctx, (*pets.Profile)(nil), func(ctx context.Context) (*pets.Profile, error) {
		p, err := s.src.GetPet(ctx, petID)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})

	lists := make([]*settle.Result[[]records.Record], len(records.Categories))
	for i, c := range records.Categories {
		lists[i] = settle.Go(&g, ctx, []records.Record{}, func(ctx context.Context) ([]records.Record, error) {
			return s.src.ListRecords(ctx, c, petID)
		})
	}

	g.Wait()

	if err := ctx.Err(); err != nil {
		return History{}, err
	}

	log := s.log.With(map[string]any{"pet_id": petID})

	h := History{
		PetID:    petID,
		Sections: make([]Section, 0, len(records.Categories)),
	}

	if pet.Degraded() {
		log.Warn("pet profile unavailable", map[string]any{"error": pet.Err})
	} else if p := pet.Value; p != nil && (p.ID != "" || p.Nombre != "") {
		h.Pet = p
	}

	for i, c := range records.Categories {
		res := lists[i]
		sec := Section{Category: c, Records: res.Value}
		if sec.Records == nil {
			sec.Records = []records.Record{}
		}
		if res.Degraded() {
			sec.Degraded = true
			h.Degraded = append(h.Degraded, c)
			s.metrics.SectionDegraded(string(c))
			log.Warn("medical history section degraded", map[string]any{
				"category": string(c),
				"error":    res.Err,
			})
		}
		h.Sections = append(h.Sections, sec)
	}

	return h, nil
}
