package records

import (
	"encoding/json"
	"fmt"
	"strings"

	"zoonica-gateway/internal/platform/wire"
)

// Category es el tipo de registro médico. El valor coincide con el segmento
// de la colección en el backend (incluida la grafía "desparacitaciones").
type Category string

const (
	CategoryVaccine   Category = "vacunas"
	CategoryOperation Category = "operaciones"
	CategoryDeworming Category = "desparacitaciones"
	CategoryIllness   Category = "enfermedades"
	CategoryVisit     Category = "visitas"
)

// Categories en el orden en que se muestran las tablas del historial.
var Categories = []Category{
	CategoryVaccine,
	CategoryOperation,
	CategoryDeworming,
	CategoryIllness,
	CategoryVisit,
}

var categoryMeta = map[Category]struct {
	title string
	color string
}{
	CategoryVaccine:   {"Vacunas", "#4CAF50"},
	CategoryOperation: {"Operaciones", "#FF9800"},
	CategoryDeworming: {"Desparasitaciones", "#673AB7"},
	CategoryIllness:   {"Enfermedades crónicas", "#E91E63"},
	CategoryVisit:     {"Visitas médicas", "#03A9F4"},
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryMeta[c]; !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
	return c, nil
}

func (c Category) Title() string { return categoryMeta[c].title }

// Color del encabezado de la tabla.
func (c Category) Color() string { return categoryMeta[c].color }

// Path de la colección en el backend.
func (c Category) Path() string { return "/" + string(c) }

// Record es la unión de variantes por categoría.
type Record interface {
	Category() Category
	Common() Base
}

// Base son los campos que comparten todas las formas del backend. Cualquiera
// de los candidatos a etiqueta puede venir vacío.
type Base struct {
	ID          string    `json:"_id"`
	PetID       wire.Ref  `json:"mascotaId"`
	Nombre      string    `json:"nombre,omitempty"`
	Motivo      string    `json:"motivo,omitempty"`
	Producto    string    `json:"producto,omitempty"`
	Tipo        string    `json:"tipo,omitempty"`
	Descripcion string    `json:"descripcion,omitempty"`
	Fecha       wire.Date `json:"fecha"`
}

func (b Base) Common() Base { return b }

type Vaccine struct {
	Base
}

type Operation struct {
	Base
	Resultado   string `json:"resultado,omitempty"`
	Veterinario string `json:"veterinario,omitempty"`
}

type Deworming struct {
	Base
	Dosis   string    `json:"dosis,omitempty"`
	Proxima wire.Date `json:"proxima"`
	Notas   string    `json:"notas,omitempty"`
}

type ChronicIllness struct {
	Base
	Tratamiento string `json:"tratamiento,omitempty"`
}

type Visit struct {
	Base
	Veterinario string `json:"veterinario,omitempty"`
	Diagnostico string `json:"diagnostico,omitempty"`
}

func (Vaccine) Category() Category        { return CategoryVaccine }
func (Operation) Category() Category      { return CategoryOperation }
func (Deworming) Category() Category      { return CategoryDeworming }
func (ChronicIllness) Category() Category { return CategoryIllness }
func (Visit) Category() Category          { return CategoryVisit }

// Decode convierte un documento del backend en la variante de su categoría.
func Decode(c Category, raw json.RawMessage) (Record, error) {
	var (
		rec Record
		err error
	)
	switch c {
	case CategoryVaccine:
		var v Vaccine
		err = json.Unmarshal(raw, &v)
		rec = v
	case CategoryOperation:
		var v Operation
		err = json.Unmarshal(raw, &v)
		rec = v
	case CategoryDeworming:
		var v Deworming
		err = json.Unmarshal(raw, &v)
		rec = v
	case CategoryIllness:
		var v ChronicIllness
		err = json.Unmarshal(raw, &v)
		rec = v
	case CategoryVisit:
		var v Visit
		err = json.Unmarshal(raw, &v)
		rec = v
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s record: %w", c, err)
	}
	return rec, nil
}
