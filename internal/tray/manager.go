package tray

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/go-resty/resty/v2"
)

// Standard widget ids
const (
	ClockID   = "clock"
	WeatherID = "weather"
	VolumeID  = "volume"
)

// WidgetState is one widget as the browser sees it
type WidgetState struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Enabled bool                   `json:"enabled"`
	State   map[string]interface{} `json:"state"`
}

// Manager handles tray widgets
type Manager struct {
	widgets map[string]Widget
	mu      sync.RWMutex
}

// NewManager creates an empty tray
func NewManager() *Manager {
	return &Manager{widgets: make(map[string]Widget)}
}

// NewDefault creates the standard tray: clock, weather and volume. The
// weather widget starts polling immediately.
func NewDefault(cfg config.TrayConfig, client *resty.Client) *Manager {
	m := NewManager()
	weather := NewWeatherWidget(WeatherID, cfg.WeatherURL, cfg.WeatherFallback, cfg.WeatherRefresh(), client)
	for _, w := range []Widget{NewClockWidget(ClockID, nil), weather, NewVolumeWidget(VolumeID)} {
		if err := m.AddWidget(w); err != nil {
			logger.WithComponent("tray").Warn().Err(err).Msg("Failed to add widget")
		}
	}
	weather.Start()
	return m
}

// AddWidget adds a widget to the tray
func (m *Manager) AddWidget(widget Widget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.widgets[widget.ID()]; exists {
		return fmt.Errorf("widget with ID %s already exists", widget.ID())
	}

	m.widgets[widget.ID()] = widget
	logger.WithComponent("tray").Debug().Str("id", widget.ID()).Str("type", widget.Type()).Msg("Added widget")
	return nil
}

// RemoveWidget removes a widget, stopping any background work
func (m *Manager) RemoveWidget(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	widget, exists := m.widgets[id]
	if !exists {
		return fmt.Errorf("widget with ID %s not found", id)
	}
	if s, ok := widget.(Stopper); ok {
		s.Stop()
	}

	delete(m.widgets, id)
	return nil
}

// GetWidget retrieves a widget by ID
func (m *Manager) GetWidget(id string) (Widget, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	widget, exists := m.widgets[id]
	return widget, exists
}

// ToggleMute flips the volume widget
func (m *Manager) ToggleMute() (bool, error) {
	w, ok := m.GetWidget(VolumeID)
	if !ok {
		return false, fmt.Errorf("widget with ID %s not found", VolumeID)
	}
	vol, ok := w.(*VolumeWidget)
	if !ok {
		return false, fmt.Errorf("widget %s is not a volume widget", VolumeID)
	}
	return vol.Toggle(), nil
}

// Snapshot returns every enabled widget's state, ordered by id
func (m *Manager) Snapshot() []WidgetState {
	m.mu.RLock()
	widgets := make([]Widget, 0, len(m.widgets))
	for _, w := range m.widgets {
		widgets = append(widgets, w)
	}
	m.mu.RUnlock()

	sort.Slice(widgets, func(i, j int) bool { return widgets[i].ID() < widgets[j].ID() })

	out := make([]WidgetState, 0, len(widgets))
	for _, w := range widgets {
		if !w.IsEnabled() {
			continue
		}
		out = append(out, WidgetState{ID: w.ID(), Type: w.Type(), Enabled: true, State: w.State()})
	}
	return out
}

// Stop stops every widget's background work
func (m *Manager) Stop() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.widgets {
		if s, ok := w.(Stopper); ok {
			s.Stop()
		}
	}
}
