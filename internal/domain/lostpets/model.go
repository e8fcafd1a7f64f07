package lostpets

import (
	"strings"

	"zoonica-gateway/internal/platform/wire"
)

const PlaceholderPhotoURL = "https://via.placeholder.com/300x200.png?text=Sin+Foto"

// Unavailable se muestra cuando falta un dato de contacto.
const Unavailable = "No disponible"

type Contact struct {
	Telefono string `json:"telefono"`
	Email    string `json:"email"`
}

// LostPet es un reporte de mascota perdida.
type LostPet struct {
	ID           string    `json:"_id"`
	Nombre       string    `json:"nombre"`
	Descripcion  string    `json:"descripcion"`
	LugarPerdida string    `json:"lugarPerdida"`
	FechaPerdida wire.Date `json:"fechaPerdida"`
	Contacto     *Contact  `json:"contacto,omitempty"`
	Fotos        []string  `json:"fotos"`
	UsuarioID    wire.Ref  `json:"usuarioId"`
	Encontrada   bool      `json:"encontrada"`
}

// ReportedBy indica si userID es quien hizo el reporte.
func (p LostPet) ReportedBy(userID string) bool {
	owner := p.UsuarioID.String()
	return owner != "" && owner == strings.TrimSpace(userID)
}

func (p LostPet) PhotoURL(base string) string {
	if len(p.Fotos) == 0 || strings.TrimSpace(p.Fotos[0]) == "" {
		return PlaceholderPhotoURL
	}
	return strings.TrimRight(base, "/") + "/mascotas-perdidas/foto/" + p.Fotos[0]
}

func (p LostPet) Phone() string {
	if p.Contacto == nil || strings.TrimSpace(p.Contacto.Telefono) == "" {
		return Unavailable
	}
	return p.Contacto.Telefono
}

func (p LostPet) Email() string {
	if p.Contacto == nil || strings.TrimSpace(p.Contacto.Email) == "" {
		return Unavailable
	}
	return p.Contacto.Email
}
