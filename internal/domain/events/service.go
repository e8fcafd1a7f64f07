package events

import (
	"context"
)

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// ListActive devuelve los eventos vigentes en el orden del backend.
func (s *Service) ListActive(ctx context.Context) ([]Event, error) {
	items, err := s.src.ListActiveEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(items))
	for _, e := range items {
		if e.Finished() {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
