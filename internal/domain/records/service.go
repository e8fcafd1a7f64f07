package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
)

type Service struct {
	src      Source
	validate *validator.Validate
}

func NewService(src Source) *Service {
	return &Service{
		src:      src,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) List(ctx context.Context, petID string, c Category) ([]Record, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	return s.src.ListRecords(ctx, c, petID)
}

// Get trae un registro y verifica que pertenezca a la mascota.
func (s *Service) Get(ctx context.Context, petID string, c Category, id string) (Record, error) {
	petID = strings.TrimSpace(petID)
	id = strings.TrimSpace(id)
	if petID == "" || id == "" {
		return nil, ErrInvalidInput
	}

	rec, err := s.src.GetRecord(ctx, c, id)
	if err != nil {
		return nil, err
	}
	// Un registro pertenece a una sola mascota; si el backend no manda
	// mascotaId no hay contra qué comparar.
	if owner := rec.Common().PetID.String(); owner != "" && owner != petID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *Service) Create(ctx context.Context, petID string, in Input) (Record, error) {
	in, err := s.prepare(petID, in)
	if err != nil {
		return nil, err
	}
	return s.src.CreateRecord(ctx, in)
}

func (s *Service) Update(ctx context.Context, petID, id string, in Input) (Record, error) {
	if in == nil {
		return nil, ErrInvalidInput
	}
	if _, err := s.Get(ctx, petID, in.Category(), id); err != nil {
		return nil, err
	}
	in, err := s.prepare(petID, in)
	if err != nil {
		return nil, err
	}
	return s.src.UpdateRecord(ctx, strings.TrimSpace(id), in)
}

func (s *Service) prepare(petID string, in Input) (Input, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" || in == nil {
		return nil, ErrInvalidInput
	}
	in = in.bind(petID)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	return in, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
