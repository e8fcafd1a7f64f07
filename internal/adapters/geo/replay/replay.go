// Package replay implementa un tracking.Geolocator que recorre una ruta
// grabada en YAML. Lo usa el cliente de terminal para simular un paseo.
package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"zoonica-gateway/internal/domain/tracking"
)

// Route es el archivo de ruta:
//
//	name: Paseo por el parque
//	interval: 2s
//	loop: false
//	points:
//	  - {lat: -34.6037, lng: -58.3816}
//	  - {lat: -34.6040, lng: -58.3820}
type Route struct {
	Name     string                `yaml:"name"`
	Interval time.Duration         `yaml:"interval"`
	Loop     bool                  `yaml:"loop"`
	Points   []tracking.Coordinate `yaml:"points"`
}

func Parse(b []byte) (Route, error) {
	var r Route
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Route{}, fmt.Errorf("parse route: %w", err)
	}
	if len(r.Points) == 0 {
		return Route{}, errors.New("parse route: no points")
	}
	for i, p := range r.Points {
		if !p.Valid() {
			return Route{}, fmt.Errorf("parse route: point %d out of range: %+v", i, p)
		}
	}
	if r.Interval < 0 {
		return Route{}, fmt.Errorf("parse route: negative interval %s", r.Interval)
	}
	return r, nil
}

func Load(path string) (Route, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Route{}, fmt.Errorf("load route: %w", err)
	}
	return Parse(b)
}

type Geolocator struct {
	route Route

	mu      sync.Mutex
	next    int
	players map[tracking.WatchID]*player
}

var _ tracking.Geolocator = (*Geolocator)(nil)

func New(route Route) *Geolocator {
	return &Geolocator{
		route:   route,
		players: map[tracking.WatchID]*player{},
	}
}

// RequestPermission siempre concede: no hay dispositivo real.
func (g *Geolocator) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

// WatchPosition reproduce la ruta en una goroutine propia, un punto por
// intervalo. El intervalo de la ruta manda sobre opts.Interval.
func (g *Geolocator) WatchPosition(onUpdate func(tracking.Coordinate), onError func(error), opts tracking.WatchOptions) (tracking.WatchID, error) {
	if onUpdate == nil {
		return "", errors.New("replay: nil onUpdate")
	}
	interval := g.route.Interval
	if interval <= 0 {
		interval = opts.Interval
	}
	if interval <= 0 {
		interval = tracking.DefaultWatchOptions().Interval
	}

	p := &player{
		route:    g.route,
		interval: interval,
		filter:   opts.DistanceFilter,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	g.mu.Lock()
	g.next++
	id := tracking.WatchID(fmt.Sprintf("replay-%d", g.next))
	g.players[id] = p
	g.mu.Unlock()

	go p.run(onUpdate)
	return id, nil
}

func (g *Geolocator) ClearWatch(id tracking.WatchID) {
	g.mu.Lock()
	p, ok := g.players[id]
	delete(g.players, id)
	g.mu.Unlock()

	if ok {
		close(p.quit)
		<-p.done
	}
}

type player struct {
	route    Route
	interval time.Duration
	filter   float64

	quit chan struct{}
	done chan struct{}
}

func (p *player) run(onUpdate func(tracking.Coordinate)) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last *tracking.Coordinate
	i := 0
	for {
		select {
		case <-p.quit:
			return
		case <-ticker.C:
		}

		if i == len(p.route.Points) {
			if !p.route.Loop {
				return
			}
			i = 0
		}
		c := p.route.Points[i]
		i++

		if last != nil && p.filter > 0 && tracking.Distance(*last, c) < p.filter {
			continue
		}
		cur := c
		last = &cur
		onUpdate(c)
	}
}
