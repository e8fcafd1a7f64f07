package history

import (
	"fmt"
	"net/http"
	"time"

	"zoonica-gateway/internal/domain/records"
)

const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"

	NotFoundMessage = "No se encontró la mascota"
	EmptySection    = "Aún no hay registros para esta sección"
)

// View es lo que se pinta: o bien el estado "no encontrada" o bien
// título, tarjeta y una tabla por categoría.
type View struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	Title  string   `json:"title,omitempty"`
	Pet    *PetCard `json:"pet,omitempty"`
	Tables []Table  `json:"tables,omitempty"`

	// Warnings avisa (sin bloquear) qué secciones no se pudieron cargar.
	Warnings []string `json:"warnings,omitempty"`
}

type PetCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	Sex         string `json:"sex"`
	Age         string `json:"age"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_url"`
}

type Table struct {
	Category records.Category `json:"category"`
	Title    string           `json:"title"`
	Color    string           `json:"color"`
	Add      Action           `json:"add"`
	Rows     []Row            `json:"rows"`
	Empty    string           `json:"empty,omitempty"`
	Degraded bool             `json:"degraded,omitempty"`
}

type Row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Date  string `json:"date"`
	Edit  Action `json:"edit"`
}

// Action le indica al formulario de registros qué abrir.
type Action struct {
	Category records.Category `json:"category"`
	PetID    string           `json:"pet_id"`
	RecordID string           `json:"record_id,omitempty"`
	Method   string           `json:"method"`
	Href     string           `json:"href"`
}

func addAction(c records.Category, petID string) Action {
	return Action{
		Category: c,
		PetID:    petID,
		Method:   http.MethodPost,
		Href:     fmt.Sprintf("/pets/%s/records/%s", petID, c),
	}
}

func editAction(c records.Category, petID, recordID string) Action {
	return Action{
		Category: c,
		PetID:    petID,
		RecordID: recordID,
		Method:   http.MethodPut,
		Href:     fmt.Sprintf("/pets/%s/records/%s/%s", petID, c, recordID),
	}
}

// BuildView proyecta un History a la vista. now se usa para la edad y
// photoBase para la URL de la foto.
func BuildView(h History, now time.Time, photoBase string) View {
	if !h.Found() {
		return View{Status: StatusNotFound, Message: NotFoundMessage}
	}

	p := h.Pet
	petID := h.PetID
	if petID == "" {
		petID = p.ID
	}

	v := View{
		Status: StatusOK,
		Title:  "Historial médico de " + p.Nombre,
		Pet: &PetCard{
			ID:          petID,
			Name:        p.Nombre,
			Species:     p.Especie,
			Breed:       p.BreedLabel(),
			Sex:         p.Sexo,
			Age:         p.AgeLabel(now),
			Description: p.Descripcion,
			PhotoURL:    p.PhotoURL(photoBase),
		},
		Tables: make([]Table, 0, len(h.Sections)),
	}

	for _, sec := range h.Sections {
		t := Table{
			Category: sec.Category,
			Title:    sec.Category.Title(),
			Color:    sec.Category.Color(),
			Add:      addAction(sec.Category, petID),
			Rows:     make([]Row, 0, len(sec.Records)),
			Degraded: sec.Degraded,
		}
		for _, rec := range sec.Records {
			e := records.Project(rec)
			t.Rows = append(t.Rows, Row{
				ID:    e.ID,
				Label: e.Label,
				Date:  e.Date,
				Edit:  editAction(sec.Category, petID, e.ID),
			})
		}
		if len(t.Rows) == 0 {
			t.Empty = EmptySection
		}
		if sec.Degraded {
			v.Warnings = append(v.Warnings, "No se pudo cargar "+sec.Category.Title())
		}
		v.Tables = append(v.Tables, t)
	}

	return v
}
