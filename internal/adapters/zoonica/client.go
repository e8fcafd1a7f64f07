// Package zoonica es el cliente del backend Zoónica. Implementa los Source
// de cada módulo de dominio sobre platform/httpclient.
package zoonica

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zoonica-gateway/internal/domain/events"
	"zoonica-gateway/internal/domain/history"
	"zoonica-gateway/internal/domain/lostpets"
	"zoonica-gateway/internal/domain/notifications"
	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
	"zoonica-gateway/internal/domain/session"
	"zoonica-gateway/internal/platform/httpclient"
	"zoonica-gateway/internal/platform/metrics"
)

var ErrNotConfigured = errors.New("zoonica client not configured")

type Client struct {
	http *httpclient.Client
	m    *metrics.Metrics
}

var (
	_ pets.Source           = (*Client)(nil)
	_ records.Source        = (*Client)(nil)
	_ history.Source        = (*Client)(nil)
	_ events.Source         = (*Client)(nil)
	_ notifications.Source  = (*Client)(nil)
	_ lostpets.Source       = (*Client)(nil)
	_ session.Authenticator = (*Client)(nil)
)

// New recibe un httpclient con BaseURL (p.ej. https://host/api). m puede ser nil.
func New(hc *httpclient.Client, m *metrics.Metrics) *Client {
	return &Client{http: hc, m: m}
}

// -------------------------
// Mascotas
// -------------------------

// GetPet acepta el perfil suelto o dentro de un array (se usa el primero).
func (c *Client) GetPet(ctx context.Context, id string) (pets.Profile, error) {
	var raw json.RawMessage
	err := c.do(ctx, "pet", http.MethodGet, "/mascotas/"+url.PathEscape(id), nil, nil, &raw)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return pets.Profile{}, pets.ErrNotFound
	}
	if err != nil {
		return pets.Profile{}, err
	}
	list, err := decodeList[pets.Profile](raw)
	if err != nil {
		return pets.Profile{}, err
	}
	if len(list) == 0 {
		return pets.Profile{}, pets.ErrNotFound
	}
	return list[0], nil
}

func (c *Client) ListPetsByOwner(ctx context.Context, userID string) ([]pets.Profile, error) {
	var raw json.RawMessage
	err := c.do(ctx, "pets_by_owner", http.MethodGet, "/mascotas/usuario/"+url.PathEscape(userID), nil, nil, &raw)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return []pets.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[pets.Profile](raw)
}

// -------------------------
// Registros médicos
// -------------------------

func (c *Client) ListRecords(ctx context.Context, cat records.Category, petID string) ([]records.Record, error) {
	var raw json.RawMessage
	path := cat.Path() + "/mascota/" + url.PathEscape(petID)
	err := c.do(ctx, string(cat), http.MethodGet, path, nil, nil, &raw)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		// el backend responde 404 cuando la mascota no tiene registros
		return []records.Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	docs, err := decodeList[json.RawMessage](raw)
	if err != nil {
		return nil, err
	}
	out := make([]records.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := records.Decode(cat, d)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", cat, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) GetRecord(ctx context.Context, cat records.Category, id string) (records.Record, error) {
	var raw json.RawMessage
	err := c.do(ctx, string(cat), http.MethodGet, cat.Path()+"/"+url.PathEscape(id), nil, nil, &raw)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, records.ErrNotFound
	}
	return records.Decode(cat, raw)
}

func (c *Client) CreateRecord(ctx context.Context, in records.Input) (records.Record, error) {
	cat := in.Category()
	var raw json.RawMessage
	if err := c.do(ctx, string(cat), http.MethodPost, cat.Path(), nil, in, &raw); err != nil {
		return nil, err
	}
	return decodeSaved(cat, raw, in)
}

func (c *Client) UpdateRecord(ctx context.Context, id string, in records.Input) (records.Record, error) {
	cat := in.Category()
	var raw json.RawMessage
	err := c.do(ctx, string(cat), http.MethodPut, cat.Path()+"/"+url.PathEscape(id), nil, in, &raw)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec, err := decodeSaved(cat, raw, in)
	if err != nil {
		return nil, err
	}
	if rec.Common().ID == "" {
		return records.Decode(cat, mustJSON(withID(in, id)))
	}
	return rec, nil
}

// decodeSaved acepta el documento guardado, envuelto en {"<algo>": {...}},
// o un cuerpo vacío (en ese caso se devuelve lo enviado).
func decodeSaved(cat records.Category, raw json.RawMessage, in records.Input) (records.Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return records.Decode(cat, mustJSON(in))
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err == nil {
		if _, ok := probe["_id"]; !ok {
			for _, v := range probe {
				if bytes.HasPrefix(bytes.TrimSpace(v), []byte("{")) {
					return records.Decode(cat, v)
				}
			}
		}
	}
	return records.Decode(cat, raw)
}

// -------------------------
// Cuentas
// -------------------------

type authUser struct {
	ID     string `json:"_id"`
	AltID  string `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

type authResponse struct {
	Token   string    `json:"token"`
	Usuario *authUser `json:"usuario"`
	User    *authUser `json:"user"`
}

func (r authResponse) identity() session.Identity {
	id := session.Identity{Token: r.Token}
	u := r.Usuario
	if u == nil {
		u = r.User
	}
	if u != nil {
		id.UserID = u.ID
		if id.UserID == "" {
			id.UserID = u.AltID
		}
		id.Name = u.Nombre
		id.Email = u.Email
	}
	if id.UserID == "" {
		id.UserID = subjectFromToken(r.Token)
	}
	return id
}

func (c *Client) SignIn(ctx context.Context, in session.LoginInput) (session.Identity, error) {
	var out authResponse
	err := c.do(ctx, "auth", http.MethodPost, "/auth/signin", nil, in, &out)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && (he.StatusCode == http.StatusBadRequest ||
			he.StatusCode == http.StatusUnauthorized ||
			he.StatusCode == http.StatusNotFound) {
			return session.Identity{}, session.ErrUnauthorized
		}
		return session.Identity{}, err
	}
	id := out.identity()
	if id.Email == "" {
		id.Email = in.Email
	}
	return id, nil
}

func (c *Client) SignUp(ctx context.Context, in session.SignupInput) (session.Identity, error) {
	var out authResponse
	err := c.do(ctx, "auth", http.MethodPost, "/auth/signup", nil, in, &out)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && (he.StatusCode == http.StatusBadRequest || he.StatusCode == http.StatusConflict) {
			return session.Identity{}, fmt.Errorf("%w: %s", session.ErrInvalidInput, upstreamMessage(he.Body))
		}
		return session.Identity{}, err
	}
	return out.identity(), nil
}

// -------------------------
// Eventos, notificaciones, mascotas perdidas
// -------------------------

func (c *Client) ListActiveEvents(ctx context.Context) ([]events.Event, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "events", http.MethodGet, "/eventos/activos", nil, nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Eventos json.RawMessage `json:"eventos"`
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		if wrapped.Eventos != nil {
			raw = wrapped.Eventos
		}
	}
	return decodeList[events.Event](raw)
}

func (c *Client) ListNotifications(ctx context.Context, userID string, pendingOnly bool) ([]notifications.Notification, error) {
	path := "/notificaciones/" + url.PathEscape(userID)
	if pendingOnly {
		path += "/pendientes"
	}

	var raw json.RawMessage
	err := c.do(ctx, "notifications", http.MethodGet, path, nil, nil, &raw)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return []notifications.Notification{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[notifications.Notification](raw)
}

func (c *Client) ListLostPets(ctx context.Context) ([]lostpets.LostPet, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "lost_pets", http.MethodGet, "/mascotas-perdidas", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[lostpets.LostPet](raw)
}

func (c *Client) MarkFound(ctx context.Context, id, upstreamToken string) error {
	headers := map[string]string{}
	if t := strings.TrimSpace(upstreamToken); t != "" {
		headers["Authorization"] = "Bearer " + t
	}
	body := map[string]bool{"encontrada": true}

	err := c.do(ctx, "lost_pets", http.MethodPut, "/mascotas-perdidas/"+url.PathEscape(id), headers, body, nil)
	switch {
	case httpclient.IsStatus(err, http.StatusNotFound):
		return lostpets.ErrNotFound
	case httpclient.IsStatus(err, http.StatusForbidden), httpclient.IsStatus(err, http.StatusUnauthorized):
		return lostpets.ErrForbidden
	}
	return err
}

// -------------------------
// helpers
// -------------------------

func (c *Client) do(ctx context.Context, resource, method, path string, headers map[string]string, in, out any) error {
	if c == nil || c.http == nil {
		return ErrNotConfigured
	}

	start := time.Now()
	err := c.http.DoJSON(ctx, method, path, headers, in, out)

	outcome := metrics.OutcomeOK
	switch {
	case httpclient.IsStatus(err, http.StatusNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	c.m.ObserveUpstream(resource, outcome, time.Since(start))

	if err != nil {
		return fmt.Errorf("zoonica %s %s: %w", method, path, err)
	}
	return nil
}

// decodeList acepta un arreglo, un objeto suelto (lista de uno) o null.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return []T{}, nil
	}

	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	}

	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return []T{one}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}

// withID agrega _id al cuerpo enviado.
func withID(in records.Input, id string) map[string]json.RawMessage {
	m := map[string]json.RawMessage{}
	_ = json.Unmarshal(mustJSON(in), &m)
	m["_id"] = mustJSON(id)
	return m
}

// upstreamMessage extrae {"message": "..."} del cuerpo de error.
func upstreamMessage(body string) string {
	var e struct {
		Message string `json:"message"`
		Mensaje string `json:"mensaje"`
	}
	if err := json.Unmarshal([]byte(body), &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Mensaje != "" {
			return e.Mensaje
		}
	}
	return strings.TrimSpace(body)
}
