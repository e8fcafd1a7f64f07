package tracking

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/platform/metrics"
)

// DefaultIdleTTL: una sesión sin requests en este lapso se da por abandonada.
const DefaultIdleTTL = 10 * time.Minute

// FeedFactory crea el Feed de una sesión nueva. granted es la respuesta del
// dispositivo al pedido de permiso.
type FeedFactory func(granted bool) Feed

// Session es una pantalla de ubicación en vivo abierta desde un dispositivo.
type Session struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time

	Tracker *Tracker
	feed    Feed

	lastSeen time.Time // protegido por Sessions.mu
}

// Push reenvía una posición del dispositivo al Tracker (vía Feed).
func (s *Session) Push(c Coordinate) bool {
	return s.feed.Push(c)
}

// Fail reporta un error de ubicación del dispositivo.
func (s *Session) Fail(err error) {
	s.feed.Fail(err)
}

func (s *Session) close() {
	s.Tracker.Close()
	s.feed.Close()
}

// Sessions es el registro de sesiones del gateway.
type Sessions struct {
	newFeed FeedFactory
	opts    WatchOptions
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Session
}

func NewSessions(newFeed FeedFactory, opts WatchOptions, log logger.Logger, m *metrics.Metrics) *Sessions {
	if log == nil {
		log = logger.Nop()
	}
	return &Sessions{
		newFeed: newFeed,
		opts:    opts,
		log:     log.With(map[string]any{"module": "tracking"}),
		metrics: m,
		now:     time.Now,
		items:   map[string]*Session{},
	}
}

// Open crea la sesión y monta su Tracker (pide permiso una vez).
func (ss *Sessions) Open(ctx context.Context, ownerID string, granted bool) (*Session, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}

	id := uuid.NewString()
	feed := ss.newFeed(granted)
	s := &Session{
		ID:        id,
		OwnerID:   ownerID,
		CreatedAt: ss.now(),
		feed:      feed,
		lastSeen:  ss.now(),
		Tracker: NewTracker(feed, ss.opts,
			WithLogger(ss.log.With(map[string]any{"session_id": id})),
			WithMetrics(ss.metrics),
		),
	}
	s.Tracker.Mount(ctx)

	ss.mu.Lock()
	ss.items[id] = s
	ss.mu.Unlock()

	ss.metrics.SessionOpened()
	ss.log.Info("tracking session opened", map[string]any{"session_id": id, "user_id": ownerID})
	return s, nil
}

// Get devuelve la sesión si existe y es del usuario. Cuenta como actividad.
func (ss *Sessions) Get(id, ownerID string) (*Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.items[strings.TrimSpace(id)]
	if !ok || s.OwnerID != strings.TrimSpace(ownerID) {
		return nil, ErrNotFound
	}
	s.lastSeen = ss.now()
	return s, nil
}

// Close libera la suscripción de la sesión y la olvida.
func (ss *Sessions) Close(id, ownerID string) error {
	s, err := ss.Get(id, ownerID)
	if err != nil {
		return err
	}

	ss.mu.Lock()
	_, ok := ss.items[s.ID]
	delete(ss.items, s.ID)
	ss.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	s.close()
	ss.metrics.SessionClosed()
	ss.log.Info("tracking session closed", map[string]any{"session_id": s.ID})
	return nil
}

// CloseAll cierra todas las sesiones (apagado del proceso).
func (ss *Sessions) CloseAll() {
	ss.mu.Lock()
	items := ss.items
	ss.items = map[string]*Session{}
	ss.mu.Unlock()

	for _, s := range items {
		s.close()
		ss.metrics.SessionClosed()
	}
	if len(items) > 0 {
		ss.log.Info("tracking sessions closed", map[string]any{"count": len(items)})
	}
}

// CloseOwner cierra todas las sesiones del usuario (logout).
func (ss *Sessions) CloseOwner(ownerID string) int {
	ownerID = strings.TrimSpace(ownerID)
	return ss.closeWhere(func(s *Session) bool { return s.OwnerID == ownerID }, "owner closed")
}

// Sweep cierra las sesiones sin actividad hace más de idle.
func (ss *Sessions) Sweep(idle time.Duration) int {
	cutoff := ss.now().Add(-idle)
	return ss.closeWhere(func(s *Session) bool { return s.lastSeen.Before(cutoff) }, "idle")
}

// RunSweeper llama a Sweep cada interval hasta que ctx se cancele.
func (ss *Sessions) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	if idle <= 0 {
		idle = DefaultIdleTTL
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			ss.Sweep(idle)
		}
	}
}

// closeWhere saca del registro (bajo mu) las sesiones que cumplen match y
// las cierra afuera del lock.
func (ss *Sessions) closeWhere(match func(*Session) bool, reason string) int {
	ss.mu.Lock()
	var closing []*Session
	for id, s := range ss.items {
		if match(s) {
			closing = append(closing, s)
			delete(ss.items, id)
		}
	}
	ss.mu.Unlock()

	for _, s := range closing {
		s.close()
		ss.metrics.SessionClosed()
		ss.log.Info("tracking session closed", map[string]any{"session_id": s.ID, "reason": reason})
	}
	return len(closing)
}

func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.items)
}
