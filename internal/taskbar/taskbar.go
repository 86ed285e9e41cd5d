// Package taskbar keeps one entry per open window and turns entry clicks
// into show, focus or minimize requests.
package taskbar

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotAttached is returned by Click before a window controller is attached
var ErrNotAttached = errors.New("taskbar has no window controller")

// Entry is one taskbar button
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Action is what a click did
type Action string

const (
	ActionRestored  Action = "restored"
	ActionMinimized Action = "minimized"
	ActionFocused   Action = "focused"
)

// Controller is the part of the window manager a click needs
type Controller interface {
	// Status reports whether the window is shown and whether it is the
	// active (most recently focused) window
	Status(id string) (shown, active bool, err error)
	Restore(id string) error
	Focus(id string) error
	Minimize(id string) error
}

// Bar is the taskbar. Entries stay in the order windows were opened.
type Bar struct {
	mu      sync.RWMutex
	entries []Entry
	ctl     Controller
}

// New creates an empty taskbar
func New() *Bar {
	return &Bar{entries: make([]Entry, 0)}
}

// Attach wires the window controller used by Click
func (b *Bar) Attach(ctl Controller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctl = ctl
}

// Track adds an entry; a second call for the same id is ignored
func (b *Bar) Track(id, name, icon string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.ID == id {
			return
		}
	}
	b.entries = append(b.entries, Entry{ID: id, Name: name, Icon: icon})
}

// Untrack removes an entry
func (b *Bar) Untrack(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// Entries returns the current buttons
func (b *Bar) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Click applies the taskbar rule: a hidden window is shown and focused, the
// active window is minimized, any other window is focused
func (b *Bar) Click(id string) (Action, error) {
	b.mu.RLock()
	ctl := b.ctl
	b.mu.RUnlock()
	if ctl == nil {
		return "", ErrNotAttached
	}

	shown, active, err := ctl.Status(id)
	if err != nil {
		return "", fmt.Errorf("taskbar click: %w", err)
	}

	switch {
	case !shown:
		return ActionRestored, ctl.Restore(id)
	case active:
		return ActionMinimized, ctl.Minimize(id)
	default:
		return ActionFocused, ctl.Focus(id)
	}
}
