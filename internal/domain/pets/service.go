package pets

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
)

type Service struct {
	src Source
	now func() time.Time
}

func NewService(src Source) *Service {
	return &Service{
		src: src,
		now: time.Now,
	}
}

// Now es el reloj del servicio (para calcular edades).
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.src.GetPet(ctx, id)
}

// ListByOwner lista las mascotas del usuario de la sesión.
func (s *Service) ListByOwner(ctx context.Context, userID string) ([]Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.src.ListPetsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Profile{}
	}
	return items, nil
}
