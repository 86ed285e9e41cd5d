package tray

import "sync"

const (
	speakerIcon = "https://win98icons.alexmeub.com/icons/png/loudspeaker_rays-0.png"
	mutedIcon   = "https://win98icons.alexmeub.com/icons/png/loudspeaker_muted-0.png"
)

// VolumeWidget is the mute toggle
type VolumeWidget struct {
	*BaseWidget
	mu    sync.RWMutex
	muted bool
}

// NewVolumeWidget creates an unmuted volume widget
func NewVolumeWidget(id string) *VolumeWidget {
	return &VolumeWidget{BaseWidget: NewBaseWidget(id)}
}

// Type returns the widget type
func (w *VolumeWidget) Type() string {
	return "volume"
}

// Toggle flips the mute state and returns the new value
func (w *VolumeWidget) Toggle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.muted = !w.muted
	return w.muted
}

// Muted reports the mute state
func (w *VolumeWidget) Muted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.muted
}

// State returns the mute flag and matching icon
func (w *VolumeWidget) State() map[string]interface{} {
	muted := w.Muted()
	icon := speakerIcon
	if muted {
		icon = mutedIcon
	}
	return map[string]interface{}{
		"muted": muted,
		"icon":  icon,
	}
}
