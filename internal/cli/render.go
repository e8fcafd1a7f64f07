package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"zoonica-gateway/internal/domain/events"
	"zoonica-gateway/internal/domain/history"
	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/tracking"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38")).MarginBottom(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func headerStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(color)).Padding(0, 1)
}

func renderHistory(v history.View) string {
	if v.Status == history.StatusNotFound {
		return warningStyle.Render(v.Message) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title))
	b.WriteString("\n")

	if v.Pet != nil {
		card := strings.Join([]string{
			labelStyle.Render(v.Pet.Name),
			"Especie: " + v.Pet.Species,
			"Raza: " + v.Pet.Breed,
			"Sexo: " + v.Pet.Sex,
			"Edad: " + v.Pet.Age,
		}, "\n")
		b.WriteString(cardStyle.Render(card))
		b.WriteString("\n")
	}

	for _, w := range v.Warnings {
		b.WriteString(warningStyle.Render("! " + w))
		b.WriteString("\n")
	}

	for _, t := range v.Tables {
		b.WriteString("\n")
		b.WriteString(headerStyle(t.Color).Render(t.Title))
		b.WriteString("\n")
		if len(t.Rows) == 0 {
			b.WriteString(mutedStyle.Render("  " + t.Empty))
			b.WriteString("\n")
			continue
		}
		for _, r := range t.Rows {
			fmt.Fprintf(&b, "  %-32s %s\n", r.Label, mutedStyle.Render(r.Date))
		}
	}
	return b.String()
}

func renderPets(items []pets.Profile, now time.Time) string {
	if len(items) == 0 {
		return mutedStyle.Render("No hay mascotas registradas") + "\n"
	}
	var b strings.Builder
	for _, p := range items {
		fmt.Fprintf(&b, "%s  %s · %s · %s  %s\n",
			labelStyle.Render(p.Nombre), p.Especie, p.BreedLabel(), p.AgeLabel(now), mutedStyle.Render(p.ID))
	}
	return b.String()
}

func renderEvents(items []events.Event) string {
	if len(items) == 0 {
		return mutedStyle.Render("No hay eventos activos") + "\n"
	}
	var b strings.Builder
	for _, e := range items {
		fmt.Fprintf(&b, "%s  %s\n", labelStyle.Render(e.Titulo), mutedStyle.Render(e.FechaInicio.Format()))
		if e.Ubicacion != "" {
			fmt.Fprintf(&b, "  %s\n", e.Ubicacion)
		}
		if e.Descripcion != "" {
			fmt.Fprintf(&b, "  %s\n", e.Descripcion)
		}
	}
	return b.String()
}

func renderMap(s tracking.Snapshot, m tracking.MapView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n",
		labelStyle.Render("Estado: "+stateLabel(s.State)),
		mutedStyle.Render("permiso: "+s.Permission.String()))

	if !m.Ready() {
		b.WriteString(cardStyle.Render(m.Placeholder))
		b.WriteString("\n")
		return b.String()
	}

	lines := []string{
		fmt.Sprintf("%s  %.5f, %.5f", m.Marker.Title, m.Marker.Coordinate.Latitude, m.Marker.Coordinate.Longitude),
		fmt.Sprintf("Región ±%.2f°", m.Region.LatitudeDelta),
		fmt.Sprintf("Recorrido: %d puntos, %.0f m", len(s.Path), pathLength(s.Path)),
	}
	b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	return b.String()
}

func stateLabel(s tracking.State) string {
	if s == tracking.Watching {
		return "siguiendo"
	}
	return "detenido"
}

func pathLength(path []tracking.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += tracking.Distance(path[i-1], path[i])
	}
	return total
}
