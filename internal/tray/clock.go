package tray

import "time"

// ClockWidget shows the local time and date
type ClockWidget struct {
	*BaseWidget
	now func() time.Time
}

// NewClockWidget creates a clock. now may be nil.
func NewClockWidget(id string, now func() time.Time) *ClockWidget {
	if now == nil {
		now = time.Now
	}
	return &ClockWidget{BaseWidget: NewBaseWidget(id), now: now}
}

// Type returns the widget type
func (w *ClockWidget) Type() string {
	return "clock"
}

// State returns e.g. {"time": "03:04 PM", "date": "1/4/2026"}
func (w *ClockWidget) State() map[string]interface{} {
	t := w.now()
	return map[string]interface{}{
		"time": t.Format("03:04 PM"),
		"date": t.Format("1/2/2006"),
	}
}
