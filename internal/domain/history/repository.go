package history

import (
	"context"

	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
)

// Source son los seis recursos remotos que arman un historial.
type Source interface {
	GetPet(ctx context.Context, id string) (pets.Profile, error)
	ListRecords(ctx context.Context, c records.Category, petID string) ([]records.Record, error)
}
