package records

import "context"

// Source es la colección remota de registros médicos (una por categoría,
// siempre indexada por mascota).
type Source interface {
	ListRecords(ctx context.Context, c Category, petID string) ([]Record, error)
	GetRecord(ctx context.Context, c Category, id string) (Record, error)
	CreateRecord(ctx context.Context, in Input) (Record, error)
	UpdateRecord(ctx context.Context, id string, in Input) (Record, error)
}
