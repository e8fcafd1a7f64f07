package notifications

import (
	"bytes"
	"encoding/json"

	"zoonica-gateway/internal/platform/wire"
)

type Notification struct {
	ID        string    `json:"_id"`
	Mensaje   string    `json:"mensaje"`
	Leida     bool      `json:"leida"`
	CreatedAt wire.Date `json:"createdAt"`
	Mascota   *PetRef   `json:"mascotaId,omitempty"`
}

// PetRef es la mascota asociada; el backend la manda poblada ({_id, nombre})
// o solo como id.
type PetRef struct {
	ID     string `json:"_id"`
	Nombre string `json:"nombre"`
}

func (p *PetRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*p = PetRef{ID: id}
		return nil
	}
	type plain PetRef
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = PetRef(v)
	return nil
}
