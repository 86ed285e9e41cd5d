// Package tray holds the taskbar's system tray widgets: clock, weather and
// volume. Widgets expose plain state; the browser draws them.
package tray

// Widget is one tray item
type Widget interface {
	// ID returns the unique identifier for this widget instance
	ID() string

	// Type returns the widget type name
	Type() string

	// State returns the values the browser displays
	State() map[string]interface{}

	IsEnabled() bool
	SetEnabled(enabled bool)
}

// Stopper is implemented by widgets that run background work
type Stopper interface {
	Stop()
}

// BaseWidget provides common functionality for all widgets
type BaseWidget struct {
	id      string
	enabled bool
}

// NewBaseWidget creates a new base widget
func NewBaseWidget(id string) *BaseWidget {
	return &BaseWidget{id: id, enabled: true}
}

// ID returns the widget's unique identifier
func (w *BaseWidget) ID() string {
	return w.id
}

// IsEnabled returns whether the widget is shown
func (w *BaseWidget) IsEnabled() bool {
	return w.enabled
}

// SetEnabled sets whether the widget is shown
func (w *BaseWidget) SetEnabled(enabled bool) {
	w.enabled = enabled
}
