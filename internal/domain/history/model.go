package history

import (
	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
)

// History es la foto del historial médico de una mascota después de que
// las seis consultas terminaron (bien o degradadas a vacío).
type History struct {
	PetID string

	// Pet es nil si el perfil no se pudo obtener.
	Pet *pets.Profile

	// Sections tiene una entrada por categoría, en el orden de records.Categories.
	Sections []Section

	// Degraded lista las categorías cuya consulta falló.
	Degraded []records.Category
}

type Section struct {
	Category records.Category
	Records  []records.Record
	Degraded bool
}

// Found indica si hay perfil; sin perfil no se muestran tablas.
func (h History) Found() bool {
	return h.Pet != nil
}
