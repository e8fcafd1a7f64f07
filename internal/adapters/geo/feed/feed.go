// Package feed implementa tracking.Feed: un Geolocator al que el dispositivo
// le empuja posiciones. Aplica el filtro de distancia y el intervalo mínimo
// de la suscripción, y entrega los callbacks desde una goroutine por watch.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"zoonica-gateway/internal/domain/tracking"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrClosed           = errors.New("feed closed")
)

const defaultBuffer = 64

var _ tracking.Feed = (*Geolocator)(nil)

type Geolocator struct {
	granted bool
	now     func() time.Time
	buffer  int

	mu      sync.Mutex
	next    uint64
	watches map[tracking.WatchID]*watch
	closed  bool
}

type Option func(*Geolocator)

// WithClock reemplaza time.Now (tests del intervalo mínimo).
func WithClock(now func() time.Time) Option {
	return func(g *Geolocator) { g.now = now }
}

// WithBuffer fija cuántos eventos puede tener pendientes cada watch.
func WithBuffer(n int) Option {
	return func(g *Geolocator) {
		if n > 0 {
			g.buffer = n
		}
	}
}

func New(granted bool, opts ...Option) *Geolocator {
	g := &Geolocator{
		granted: granted,
		now:     time.Now,
		buffer:  defaultBuffer,
		watches: map[tracking.WatchID]*watch{},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Factory adapta New a tracking.FeedFactory.
func Factory(opts ...Option) tracking.FeedFactory {
	return func(granted bool) tracking.Feed {
		return New(granted, opts...)
	}
}

func (g *Geolocator) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return g.granted, nil
}

// WatchPosition abre una suscripción. Sin permiso, la suscripción existe pero
// solo entrega ErrPermissionDenied por onError.
func (g *Geolocator) WatchPosition(onUpdate func(tracking.Coordinate), onError func(error), opts tracking.WatchOptions) (tracking.WatchID, error) {
	if onUpdate == nil {
		return "", errors.New("feed: nil onUpdate")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return "", ErrClosed
	}

	g.next++
	id := tracking.WatchID(fmt.Sprintf("feed-%d", g.next))
	w := newWatch(opts, g.buffer)
	g.watches[id] = w
	go w.run(onUpdate, onError)

	if !g.granted {
		w.enqueue(event{err: ErrPermissionDenied})
	}
	return id, nil
}

// ClearWatch corta la suscripción y espera a que su goroutine termine.
func (g *Geolocator) ClearWatch(id tracking.WatchID) {
	g.mu.Lock()
	w, ok := g.watches[id]
	delete(g.watches, id)
	g.mu.Unlock()

	if ok {
		w.stop()
	}
}

// Push ofrece c a todas las suscripciones activas.
func (g *Geolocator) Push(c tracking.Coordinate) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.granted || g.closed {
		return false
	}
	now := g.now()
	accepted := false
	for _, w := range g.watches {
		if w.offer(c, now) {
			accepted = true
		}
	}
	return accepted
}

func (g *Geolocator) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.watches {
		w.enqueue(event{err: err})
	}
}

// Close corta todas las suscripciones. Es idempotente.
func (g *Geolocator) Close() {
	g.mu.Lock()
	g.closed = true
	watches := g.watches
	g.watches = map[tracking.WatchID]*watch{}
	g.mu.Unlock()

	for _, w := range watches {
		w.stop()
	}
}

// Active devuelve cuántas suscripciones hay abiertas.
func (g *Geolocator) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.watches)
}

type event struct {
	coord tracking.Coordinate
	err   error
}

type watch struct {
	opts    tracking.WatchOptions
	limiter *rate.Limiter
	last    *tracking.Coordinate

	events chan event
	quit   chan struct{}
	done   chan struct{}
}

func newWatch(opts tracking.WatchOptions, buffer int) *watch {
	limit := rate.Inf
	if opts.FastestInterval > 0 {
		limit = rate.Every(opts.FastestInterval)
	}
	return &watch{
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		events:  make(chan event, buffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// offer aplica distanceFilter y fastestInterval. Requiere Geolocator.mu.
func (w *watch) offer(c tracking.Coordinate, now time.Time) bool {
	if w.last != nil && w.opts.DistanceFilter > 0 && tracking.Distance(*w.last, c) < w.opts.DistanceFilter {
		return false
	}
	if !w.limiter.AllowN(now, 1) {
		return false
	}
	if !w.enqueue(event{coord: c}) {
		return false
	}
	last := c
	w.last = &last
	return true
}

// enqueue no bloquea: con el buffer lleno el evento se descarta.
func (w *watch) enqueue(ev event) bool {
	select {
	case w.events <- ev:
		return true
	default:
		return false
	}
}

func (w *watch) run(onUpdate func(tracking.Coordinate), onError func(error)) {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case ev := <-w.events:
			if ev.err != nil {
				if onError != nil {
					onError(ev.err)
				}
				continue
			}
			onUpdate(ev.coord)
		}
	}
}

func (w *watch) stop() {
	close(w.quit)
	<-w.done
}
