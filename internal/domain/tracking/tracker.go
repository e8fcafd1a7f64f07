package tracking

import (
	"context"
	"fmt"
	"sync"

	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/platform/metrics"
)

// Tracker es la máquina Idle <-> Watching de una pantalla de ubicación en
// vivo. Mantiene la posición actual y el recorrido (solo se agrega al final;
// ClearPath lo vacía).
type Tracker struct {
	geo     Geolocator
	opts    WatchOptions
	log     logger.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	state      State
	watch      WatchID
	gen        uint64 // cambia en cada Start/Stop; descarta callbacks viejos
	permission Permission
	current    *Coordinate
	path       []Coordinate
	closed     bool

	changes chan struct{}
}

type Option func(*Tracker)

func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

func NewTracker(geo Geolocator, opts WatchOptions, options ...Option) *Tracker {
	t := &Tracker{
		geo:     geo,
		opts:    opts,
		log:     logger.Nop(),
		path:    []Coordinate{},
		changes: make(chan struct{}, 1),
	}
	for _, o := range options {
		o(t)
	}
	return t
}

// Mount pide permiso una sola vez. Un rechazo se loguea y no bloquea nada.
func (t *Tracker) Mount(ctx context.Context) Permission {
	t.mu.Lock()
	if t.permission != PermissionUnknown {
		p := t.permission
		t.mu.Unlock()
		return p
	}
	t.mu.Unlock()

	granted, err := t.geo.RequestPermission(ctx)
	p := PermissionGranted
	switch {
	case err != nil:
		p = PermissionDenied
		t.log.Warn("location permission request failed", map[string]any{"error": err})
	case !granted:
		p = PermissionDenied
		t.log.Warn("location permission denied", nil)
	}

	t.mu.Lock()
	if t.permission == PermissionUnknown {
		t.permission = p
	}
	p = t.permission
	t.mu.Unlock()

	t.notify()
	return p
}

// Start abre la suscripción. Si ya está en Watching no hace nada.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.state == Watching {
		t.mu.Unlock()
		return nil
	}
	t.gen++
	gen := t.gen
	t.state = Watching
	t.mu.Unlock()

	id, err := t.geo.WatchPosition(
		func(c Coordinate) { t.onUpdate(gen, c) },
		func(err error) { t.onError(gen, err) },
		t.opts,
	)

	t.mu.Lock()
	if err != nil {
		if t.gen == gen {
			t.state = Idle
		}
		t.mu.Unlock()
		t.log.Error("watch position failed", map[string]any{"error": err})
		t.notify()
		return fmt.Errorf("start tracking: %w", err)
	}
	if t.gen != gen {
		// Stop o Close llegaron mientras se abría la suscripción.
		t.mu.Unlock()
		t.geo.ClearWatch(id)
		return nil
	}
	t.watch = id
	t.mu.Unlock()

	t.notify()
	return nil
}

// Stop libera la suscripción. En Idle es un no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.state != Watching {
		t.mu.Unlock()
		return
	}
	id := t.release()
	t.mu.Unlock()

	if id != "" {
		t.geo.ClearWatch(id)
	}
	t.notify()
}

// release pasa a Idle y devuelve el id a liberar. Requiere t.mu.
func (t *Tracker) release() WatchID {
	id := t.watch
	t.watch = ""
	t.state = Idle
	t.gen++
	return id
}

// ClearPath vacía el recorrido sin tocar la posición actual ni el estado.
func (t *Tracker) ClearPath() {
	t.mu.Lock()
	t.path = []Coordinate{}
	t.mu.Unlock()
	t.notify()
}

// Close libera la suscripción (si la hay) y deja el tracker inutilizable.
// Es idempotente.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	var id WatchID
	if t.state == Watching {
		id = t.release()
	}
	t.mu.Unlock()

	if id != "" {
		t.geo.ClearWatch(id)
	}
	t.notify()
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Changes avisa (sin bloquear, colapsando avisos) cada vez que algo cambió.
func (t *Tracker) Changes() <-chan struct{} {
	return t.changes
}

func (t *Tracker) onUpdate(gen uint64, c Coordinate) {
	t.mu.Lock()
	if t.gen != gen || t.state != Watching {
		t.mu.Unlock()
		return
	}
	cur := c
	t.current = &cur
	t.path = append(t.path, c)
	t.mu.Unlock()

	t.metrics.PositionAppended()
	t.notify()
}

// onError solo loguea: no cambia el estado ni corta la suscripción.
func (t *Tracker) onError(gen uint64, err error) {
	t.mu.Lock()
	stale := t.gen != gen
	t.mu.Unlock()
	if stale {
		return
	}
	t.log.Warn("geolocation error", map[string]any{"error": err})
}

func (t *Tracker) notify() {
	select {
	case t.changes <- struct{}{}:
	default:
	}
}
