package lostpets

import "context"

type Source interface {
	ListLostPets(ctx context.Context) ([]LostPet, error)
	// MarkFound requiere el token del backend del usuario que reportó.
	MarkFound(ctx context.Context, id, upstreamToken string) error
}
