package pets

import (
	"fmt"
	"strings"
	"time"

	"zoonica-gateway/internal/platform/wire"
)

// NotAvailable se muestra para datos opcionales ausentes (raza, edad).
const NotAvailable = "N/D"

// PlaceholderPhotoURL se usa cuando la mascota no tiene foto de perfil.
const PlaceholderPhotoURL = "https://via.placeholder.com/300x200.png?text=Sin+Foto"

// Profile es el perfil de mascota tal como lo devuelve el backend.
// Se crea y modifica del lado del servidor; aquí es de solo lectura.
type Profile struct {
	ID           string    `json:"_id"`
	Nombre       string    `json:"nombre"`
	Especie      string    `json:"especie"`
	Raza         string    `json:"raza,omitempty"`
	Sexo         string    `json:"sexo"`
	Cumpleanos   wire.Date `json:"cumpleaños"`
	Descripcion  string    `json:"descripcion,omitempty"`
	FotoPerfilID string    `json:"fotoPerfilId,omitempty"`
	UsuarioID    wire.Ref  `json:"usuarioId,omitempty"`
}

// Age es la diferencia de años calendario entre el cumpleaños y now.
// Es una aproximación: no mira día ni mes. ok=false si no hay fecha válida.
func (p Profile) Age(now time.Time) (years int, ok bool) {
	if !p.Cumpleanos.Valid() {
		return 0, false
	}
	return now.Year() - p.Cumpleanos.Time.Year(), true
}

func (p Profile) AgeLabel(now time.Time) string {
	years, ok := p.Age(now)
	switch {
	case !ok:
		return NotAvailable
	case years <= 0:
		return "Menos de 1 año"
	case years == 1:
		return "1 año"
	default:
		return fmt.Sprintf("%d años", years)
	}
}

// BreedLabel devuelve la raza o N/D.
func (p Profile) BreedLabel() string {
	if s := strings.TrimSpace(p.Raza); s != "" {
		return s
	}
	return NotAvailable
}

// PhotoURL arma la URL de la foto servida por el backend (base = URL de la API).
func (p Profile) PhotoURL(base string) string {
	id := strings.TrimSpace(p.FotoPerfilID)
	if id == "" {
		return PlaceholderPhotoURL
	}
	return strings.TrimRight(base, "/") + "/mascotas/foto/" + id
}

// OwnedBy indica si la mascota pertenece al usuario.
// Si el backend no manda usuarioId no se puede afirmar nada.
func (p Profile) OwnedBy(userID string) bool {
	owner := p.UsuarioID.String()
	return owner != "" && owner == strings.TrimSpace(userID)
}
