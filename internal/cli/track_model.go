package cli

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"zoonica-gateway/internal/domain/tracking"
)

type changedMsg struct{}

// trackModel es la pantalla de seguimiento en vivo. Salir con q cierra el
// tracker y con él la suscripción al geolocalizador.
type trackModel struct {
	tracker *tracking.Tracker
	title   string
	err     error

	done     chan struct{}
	doneOnce sync.Once
}

func newTrackModel(t *tracking.Tracker, title string) *trackModel {
	if strings.TrimSpace(title) == "" {
		title = "Ubicación en vivo"
	}
	return &trackModel{tracker: t, title: title, done: make(chan struct{})}
}

func (m *trackModel) Init() tea.Cmd {
	return m.listen()
}

// listen espera el próximo aviso del tracker.
func (m *trackModel) listen() tea.Cmd {
	changes, done := m.tracker.Changes(), m.done
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *trackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			m.toggle()
		case "c":
			m.tracker.ClearPath()
		case "q", "ctrl+c", "esc":
			m.close()
			return m, tea.Quit
		}
	case changedMsg:
		return m, m.listen()
	}
	return m, nil
}

func (m *trackModel) toggle() {
	if m.tracker.State() == tracking.Watching {
		m.tracker.Stop()
		return
	}
	m.err = m.tracker.Start()
}

func (m *trackModel) close() {
	m.doneOnce.Do(func() {
		m.tracker.Close()
		close(m.done)
	})
}

func (m *trackModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	snap := m.tracker.Snapshot()
	b.WriteString(renderMap(snap, tracking.BuildMapView(snap)))

	if m.err != nil {
		b.WriteString(warningStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("s iniciar/detener · c borrar recorrido · q salir"))
	b.WriteString("\n")
	return b.String()
}
