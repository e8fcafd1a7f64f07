package records

import "strings"

// NoLabel se muestra cuando ningún campo candidato trae texto.
const NoLabel = "Sin descripción"

// Entry es la proyección común {id, etiqueta, fecha} de cualquier variante.
type Entry struct {
	ID       string
	Category Category
	Label    string
	Date     string
	Dated    bool
}

// Project normaliza un registro a Entry.
func Project(r Record) Entry {
	b := r.Common()
	return Entry{
		ID:       b.ID,
		Category: r.Category(),
		Label:    Label(b),
		Date:     b.Fecha.Format(),
		Dated:    !b.Fecha.IsZero(),
	}
}

// Label elige el primer campo no vacío en orden fijo:
// nombre > motivo > producto > tipo > descripcion.
func Label(b Base) string {
	for _, s := range []string{b.Nombre, b.Motivo, b.Producto, b.Tipo, b.Descripcion} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return NoLabel
}
