package pets

import "context"

// Source es la colección remota de mascotas.
type Source interface {
	GetPet(ctx context.Context, id string) (Profile, error)
	ListPetsByOwner(ctx context.Context, userID string) ([]Profile, error)
}
