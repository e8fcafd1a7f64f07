// Package wire tiene los tipos JSON tolerantes que comparten los módulos que
// leen del backend Zoónica (fechas en varios formatos, ids poblados o no).
package wire

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DateLayout es el formato de fecha para mostrar (es-ES).
const DateLayout = "02/01/2006"

// NoDate se muestra cuando el registro no trae fecha.
const NoDate = "Sin fecha"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date acepta RFC3339 (con o sin milisegundos) o YYYY-MM-DD.
// Si el texto no se puede parsear se conserva en Raw.
type Date struct {
	Time time.Time
	Raw  string
}

func NewDate(t time.Time) Date {
	return Date{Time: t, Raw: t.Format(time.RFC3339)}
}

func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t, Raw: s}
		}
	}
	return Date{Raw: s}
}

func (d Date) IsZero() bool { return d.Raw == "" && d.Time.IsZero() }

// Valid indica que la fecha se pudo parsear.
func (d Date) Valid() bool { return !d.Time.IsZero() }

// Format devuelve dd/mm/aaaa, NoDate si falta, o el texto original si no parsea.
func (d Date) Format() string {
	switch {
	case d.Valid():
		return d.Time.Format(DateLayout)
	case d.Raw != "":
		return d.Raw
	default:
		return NoDate
	}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// números u otros tipos: se guarda el texto tal cual
		*d = Date{Raw: string(b)}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	switch {
	case d.Valid():
		return json.Marshal(d.Time.Format(time.RFC3339))
	case d.Raw != "":
		return json.Marshal(d.Raw)
	default:
		return []byte("null"), nil
	}
}

// Ref es un id que el backend a veces manda como string y a veces poblado
// como objeto ({"_id": "...", ...}).
type Ref string

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(strings.TrimSpace(s))
		return nil
	}
	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.MongoID != "" {
		*r = Ref(obj.MongoID)
	} else {
		*r = Ref(obj.ID)
	}
	return nil
}

func (r Ref) String() string { return string(r) }
