package events

import (
	"strings"

	"zoonica-gateway/internal/platform/wire"
)

// StatusFinished es el estado que el backend todavía devuelve en /activos
// y que no se muestra.
const StatusFinished = "finalizado"

// Event es un evento de la comunidad (jornadas, ferias, adopciones).
type Event struct {
	ID                    string    `json:"_id"`
	Titulo                string    `json:"titulo"`
	Descripcion           string    `json:"descripcion"`
	Ubicacion             string    `json:"ubicacion"`
	FechaInicio           wire.Date `json:"fechaInicio"`
	Estado                string    `json:"estado"`
	CantidadParticipantes int       `json:"cantidadParticipantes"`
}

func (e Event) Finished() bool {
	return strings.EqualFold(strings.TrimSpace(e.Estado), StatusFinished)
}
