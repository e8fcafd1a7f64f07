package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("tracking session not found")
	ErrClosed       = errors.New("tracker closed")
)

// Coordinate en grados geográficos.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"lat"`
	Longitude float64 `json:"longitude" yaml:"lng"`
}

func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180 &&
		!math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude)
}

// WatchOptions es la política que se le pide al servicio de ubicación.
type WatchOptions struct {
	EnableHighAccuracy bool
	// DistanceFilter: metros mínimos entre dos reportes.
	DistanceFilter float64
	// Interval es el período normal de reporte; FastestInterval el mínimo.
	Interval        time.Duration
	FastestInterval time.Duration
}

func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		EnableHighAccuracy: true,
		DistanceFilter:     1,
		Interval:           2 * time.Second,
		FastestInterval:    time.Second,
	}
}

// WatchID identifica una suscripción activa del Geolocator.
type WatchID string

// Geolocator es el servicio de ubicación del dispositivo.
//
// WatchPosition y ClearWatch nunca deben invocar los callbacks de forma
// síncrona: los callbacks se entregan desde otra goroutine. ClearWatch no
// vuelve hasta que no quede ningún callback en curso para ese id.
type Geolocator interface {
	RequestPermission(ctx context.Context) (bool, error)
	WatchPosition(onUpdate func(Coordinate), onError func(error), opts WatchOptions) (WatchID, error)
	ClearWatch(id WatchID)
}

// Feed es un Geolocator alimentado desde afuera (el dispositivo le manda
// las posiciones al gateway).
type Feed interface {
	Geolocator
	// Push entrega una posición a las suscripciones activas. Devuelve false
	// si ninguna la aceptó (sin suscripción, filtrada o descartada).
	Push(c Coordinate) bool
	// Fail reporta un error del dispositivo a las suscripciones activas.
	Fail(err error)
	Close()
}

type State int

const (
	Idle State = iota
	Watching
)

func (s State) String() string {
	switch s {
	case Watching:
		return "watching"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "watching":
		*s = Watching
	case "idle":
		*s = Idle
	default:
		return fmt.Errorf("unknown tracking state %q", b)
	}
	return nil
}

type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Permission) UnmarshalText(b []byte) error {
	switch string(b) {
	case "granted":
		*p = PermissionGranted
	case "denied":
		*p = PermissionDenied
	default:
		*p = PermissionUnknown
	}
	return nil
}

const earthRadiusMeters = 6371008.8

// Distance devuelve la distancia en metros entre dos coordenadas (haversine).
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
