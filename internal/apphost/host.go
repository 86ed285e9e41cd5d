// Package apphost maps an item's application kind to the code that renders
// and wires its window body.
package apphost

import (
	"context"

	"github.com/bryanchriswhite/RetroDesk/internal/content"
)

// Handle is what a hosted application sees of its window once mounted
type Handle interface {
	// WindowID is the id of the owning item
	WindowID() string
	// Context is cancelled when the window closes
	Context() context.Context
	// Attach stores the application's body state on the window. If the
	// window is already gone the body is closed instead.
	Attach(body Body)
	// Publish pushes a body state change to desktop subscribers; it is a
	// no-op once the window is closed
	Publish(state interface{})
}

// Body is the application-owned state of one window
type Body interface {
	Kind() content.AppKind
	// State returns a JSON-friendly copy for clients
	State() interface{}
	// Close releases timers and watches; called when the window closes
	Close()
}

// Host is the render/mount pair for one application kind
type Host struct {
	Kind content.AppKind
	// Render is pure: the same item always yields the same markup
	Render func(item *content.Item) string
	// AfterMount wires the mounted body; nil when the app needs none
	AfterMount func(h Handle, item *content.Item)
}

var emptyHost = Host{
	Render: func(*content.Item) string { return "" },
}
