package records

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Input es el cuerpo que se manda al backend al crear o editar un registro:
// { mascotaId, ...campos de la categoría, fecha }.
type Input interface {
	Category() Category
	bind(petID string) Input
}

type VaccineInput struct {
	MascotaID   string    `json:"mascotaId" validate:"required"`
	Nombre      string    `json:"nombre" validate:"required,max=120"`
	Fecha       time.Time `json:"fecha" validate:"required"`
	Descripcion string    `json:"descripcion"`
}

type OperationInput struct {
	MascotaID   string    `json:"mascotaId" validate:"required"`
	Tipo        string    `json:"tipo" validate:"required,max=120"`
	Fecha       time.Time `json:"fecha" validate:"required"`
	Descripcion string    `json:"descripcion"`
	Resultado   string    `json:"resultado"`
	Veterinario string    `json:"veterinario"`
}

type DewormingInput struct {
	MascotaID string     `json:"mascotaId" validate:"required"`
	Producto  string     `json:"producto" validate:"required,max=120"`
	Dosis     string     `json:"dosis" validate:"required"`
	Tipo      string     `json:"tipo" validate:"required"`
	Fecha     time.Time  `json:"fecha" validate:"required"`
	Proxima   *time.Time `json:"proxima"`
	Notas     string     `json:"notas"`
}

type IllnessInput struct {
	MascotaID   string    `json:"mascotaId" validate:"required"`
	Nombre      string    `json:"nombre" validate:"required,max=120"`
	Fecha       time.Time `json:"fecha" validate:"required"`
	Descripcion string    `json:"descripcion"`
	Tratamiento string    `json:"tratamiento"`
}

type VisitInput struct {
	MascotaID   string    `json:"mascotaId" validate:"required"`
	Motivo      string    `json:"motivo" validate:"required,max=160"`
	Fecha       time.Time `json:"fecha" validate:"required"`
	Veterinario string    `json:"veterinario"`
	Diagnostico string    `json:"diagnostico"`
	Descripcion string    `json:"descripcion"`
}

func (VaccineInput) Category() Category   { return CategoryVaccine }
func (OperationInput) Category() Category { return CategoryOperation }
func (DewormingInput) Category() Category { return CategoryDeworming }
func (IllnessInput) Category() Category   { return CategoryIllness }
func (VisitInput) Category() Category     { return CategoryVisit }

func (in VaccineInput) bind(petID string) Input {
	in.MascotaID = petID
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	return in
}

func (in OperationInput) bind(petID string) Input {
	in.MascotaID = petID
	in.Tipo = strings.TrimSpace(in.Tipo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	in.Resultado = strings.TrimSpace(in.Resultado)
	in.Veterinario = strings.TrimSpace(in.Veterinario)
	return in
}

func (in DewormingInput) bind(petID string) Input {
	in.MascotaID = petID
	in.Producto = strings.TrimSpace(in.Producto)
	in.Dosis = strings.TrimSpace(in.Dosis)
	in.Tipo = strings.TrimSpace(in.Tipo)
	in.Notas = strings.TrimSpace(in.Notas)
	return in
}

func (in IllnessInput) bind(petID string) Input {
	in.MascotaID = petID
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	in.Tratamiento = strings.TrimSpace(in.Tratamiento)
	return in
}

func (in VisitInput) bind(petID string) Input {
	in.MascotaID = petID
	in.Motivo = strings.TrimSpace(in.Motivo)
	in.Veterinario = strings.TrimSpace(in.Veterinario)
	in.Diagnostico = strings.TrimSpace(in.Diagnostico)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	return in
}

// DecodeInput lee el formulario JSON de la categoría indicada.
// mascotaId en el body se ignora: manda el de la ruta.
func DecodeInput(c Category, r io.Reader) (Input, error) {
	var in Input
	switch c {
	case CategoryVaccine:
		in = &VaccineInput{}
	case CategoryOperation:
		in = &OperationInput{}
	case CategoryDeworming:
		in = &DewormingInput{}
	case CategoryIllness:
		in = &IllnessInput{}
	case CategoryVisit:
		in = &VisitInput{}
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Devolver por valor para que bind/validate trabajen sobre copias.
	switch v := in.(type) {
	case *VaccineInput:
		return *v, nil
	case *OperationInput:
		return *v, nil
	case *DewormingInput:
		return *v, nil
	case *IllnessInput:
		return *v, nil
	default:
		return *(v.(*VisitInput)), nil
	}
}
