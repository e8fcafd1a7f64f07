package lostpets

import (
	"context"
	"errors"
	"strings"

	"zoonica-gateway/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("lost pet not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

func (s *Service) List(ctx context.Context) ([]LostPet, error) {
	items, err := s.src.ListLostPets(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []LostPet{}
	}
	return items, nil
}

// MarkFound marca el reporte como encontrado. Solo quien reportó puede
// hacerlo; si ya estaba encontrado no vuelve a llamar al backend.
func (s *Service) MarkFound(ctx context.Context, claims auth.Claims, id string) (LostPet, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(claims.UserID) == "" {
		return LostPet{}, ErrInvalidInput
	}

	items, err := s.src.ListLostPets(ctx)
	if err != nil {
		return LostPet{}, err
	}

	var (
		found LostPet
		ok    bool
	)
	for _, p := range items {
		if p.ID == id {
			found, ok = p, true
			break
		}
	}
	if !ok {
		return LostPet{}, ErrNotFound
	}
	if !found.ReportedBy(claims.UserID) {
		return LostPet{}, ErrForbidden
	}
	if found.Encontrada {
		return found, nil
	}

	if err := s.src.MarkFound(ctx, id, claims.UpstreamToken); err != nil {
		return LostPet{}, err
	}
	found.Encontrada = true
	return found, nil
}
