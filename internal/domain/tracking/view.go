package tracking

// WaitingForLocation se muestra hasta recibir la primera posición.
const WaitingForLocation = "Esperando ubicación..."

// MarkerTitle es el título del marcador de posición actual.
const MarkerTitle = "Tu ubicación"

// RegionDelta es el zoom fijo del mapa, en grados.
const RegionDelta = 0.01

type Snapshot struct {
	State      State        `json:"state"`
	Permission Permission   `json:"permission"`
	Current    *Coordinate  `json:"current,omitempty"`
	Path       []Coordinate `json:"path"`
}

type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

type Marker struct {
	Coordinate Coordinate `json:"coordinate"`
	Title      string     `json:"title"`
}

// MapView es lo que recibe la superficie del mapa. Sin posición todavía,
// solo trae Placeholder.
type MapView struct {
	Placeholder string       `json:"placeholder,omitempty"`
	Region      *Region      `json:"region,omitempty"`
	Marker      *Marker      `json:"marker,omitempty"`
	Polyline    []Coordinate `json:"polyline,omitempty"`
}

// Ready indica que hay mapa para dibujar.
func (v MapView) Ready() bool {
	return v.Region != nil
}

// Snapshot copia el estado actual.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		State:      t.state,
		Permission: t.permission,
		Path:       make([]Coordinate, len(t.path)),
	}
	copy(s.Path, t.path)
	if t.current != nil {
		c := *t.current
		s.Current = &c
	}
	return s
}

func (t *Tracker) View() MapView {
	return BuildMapView(t.Snapshot())
}

// BuildMapView centra la región en la posición actual y dibuja la polilínea
// solo si hay al menos dos puntos.
func BuildMapView(s Snapshot) MapView {
	if s.Current == nil {
		return MapView{Placeholder: WaitingForLocation}
	}
	v := MapView{
		Region: &Region{
			Center:         *s.Current,
			LatitudeDelta:  RegionDelta,
			LongitudeDelta: RegionDelta,
		},
		Marker: &Marker{Coordinate: *s.Current, Title: MarkerTitle},
	}
	if len(s.Path) >= 2 {
		v.Polyline = make([]Coordinate, len(s.Path))
		copy(v.Polyline, s.Path)
	}
	return v
}
