package window

import (
	"context"

	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
)

// Geometry is a window frame in desktop pixels
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Visibility is whether a window is shown or minimized
type Visibility string

const (
	Shown  Visibility = "shown"
	Hidden Visibility = "hidden"
)

// SizeState is whether a window occupies its own frame or the whole desktop
type SizeState string

const (
	Normal    SizeState = "normal"
	Maximized SizeState = "maximized"
)

// window is the manager's record; callers only ever see Info copies
type window struct {
	item     *content.Item
	instance string
	z        int
	frame    Geometry
	restore  Geometry
	visible  Visibility
	size     SizeState
	markup   string
	body     apphost.Body
	ctx      context.Context
	cancel   context.CancelFunc
}

// Info is a snapshot of one open window
type Info struct {
	ID         string          `json:"id"`
	Instance   string          `json:"instance"`
	Title      string          `json:"title"`
	Icon       string          `json:"icon,omitempty"`
	App        content.AppKind `json:"app,omitempty"`
	Z          int             `json:"z"`
	Frame      Geometry        `json:"frame"`
	Visibility Visibility      `json:"visibility"`
	Size       SizeState       `json:"size"`
	Markup     string          `json:"markup,omitempty"`
	Body       interface{}     `json:"body,omitempty"`
}

func (w *window) info() Info {
	in := Info{
		ID:         w.item.ID,
		Instance:   w.instance,
		Title:      w.item.DisplayName(),
		Icon:       w.item.Icon,
		App:        w.item.App,
		Z:          w.z,
		Frame:      w.frame,
		Visibility: w.visible,
		Size:       w.size,
		Markup:     w.markup,
	}
	if w.body != nil {
		in.Body = w.body.State()
	}
	return in
}

// EventType names a window lifecycle change
type EventType string

const (
	EventOpened    EventType = "opened"
	EventFocused   EventType = "focused"
	EventShown     EventType = "shown"
	EventMinimized EventType = "minimized"
	EventMaximized EventType = "maximized"
	EventRestored  EventType = "restored"
	EventMoved     EventType = "moved"
	EventClosed    EventType = "closed"
	EventBody      EventType = "body"
)

// Event is delivered to subscribers
type Event struct {
	Type     EventType   `json:"type"`
	WindowID string      `json:"windowId"`
	Window   *Info       `json:"window,omitempty"`
	Body     interface{} `json:"body,omitempty"`
}

// Tracker mirrors open windows, typically the taskbar
type Tracker interface {
	Track(id, name, icon string)
	Untrack(id string)
}
