package window

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/google/uuid"
)

var (
	ErrWindowNotFound = errors.New("window not found")
	ErrInvalidItem    = errors.New("item has no id")
	ErrDragActive     = errors.New("a drag is already in progress")
	ErrNoDrag         = errors.New("no drag in progress")
	ErrNotDraggable   = errors.New("window cannot be dragged in its current state")
)

// Options controls window placement
type Options struct {
	OriginX     int
	OriginY     int
	CascadeStep int
	Width       int
	Height      int
	// BaseZ is the stacking counter's starting value; the first window
	// gets BaseZ+1
	BaseZ int
	// Work area a maximized window fills
	AreaWidth  int
	AreaHeight int
}

// DefaultOptions matches the classic desktop layout
func DefaultOptions() Options {
	return Options{
		OriginX:     50,
		OriginY:     50,
		CascadeStep: 20,
		Width:       600,
		Height:      400,
		BaseZ:       100,
		AreaWidth:   1280,
		AreaHeight:  760,
	}
}

type dragState struct {
	id      string
	offsetX int
	offsetY int
}

// Manager owns every open window. At most one window exists per item.
type Manager struct {
	opts     Options
	registry *apphost.Registry
	tracker  Tracker

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	windows map[string]*window
	z       int
	drag    *dragState

	lmu       sync.RWMutex
	listeners []chan Event
}

// NewManager creates a window manager. tracker may be nil.
func NewManager(opts Options, registry *apphost.Registry, tracker Tracker) *Manager {
	if registry == nil {
		registry = apphost.NewRegistry(apphost.Options{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:      opts,
		registry:  registry,
		tracker:   tracker,
		ctx:       ctx,
		cancel:    cancel,
		windows:   make(map[string]*window),
		z:         opts.BaseZ,
		listeners: make([]chan Event, 0),
	}
}

// Stop closes every window and releases their bodies
func (m *Manager) Stop() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_ = m.Close(id)
	}
	m.cancel()
}

func (m *Manager) nextZ() int {
	m.z++
	return m.z
}

func (m *Manager) lookup(id string) (*window, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWindowNotFound, id)
	}
	return w, nil
}

// Open shows the window for item, creating it on first use. An existing
// window is made visible and brought to the front instead.
func (m *Manager) Open(item *content.Item) (Info, error) {
	if item == nil || item.ID == "" {
		return Info{}, ErrInvalidItem
	}

	m.mu.Lock()
	if w, ok := m.windows[item.ID]; ok {
		w.visible = Shown
		w.z = m.nextZ()
		info := w.info()
		m.mu.Unlock()

		m.notify(Event{Type: EventFocused, WindowID: item.ID, Window: &info})
		return info, nil
	}

	host := m.registry.For(item.App)
	ctx, cancel := context.WithCancel(m.ctx)
	offset := len(m.windows) * m.opts.CascadeStep
	w := &window{
		item:     item,
		instance: uuid.NewString(),
		z:        m.nextZ(),
		frame: Geometry{
			X:      m.opts.OriginX + offset,
			Y:      m.opts.OriginY + offset,
			Width:  m.opts.Width,
			Height: m.opts.Height,
		},
		visible: Shown,
		size:    Normal,
		markup:  apphost.RenderWindow(item.DisplayName(), host.Render(item)),
		ctx:     ctx,
		cancel:  cancel,
	}
	m.windows[item.ID] = w
	if m.tracker != nil {
		m.tracker.Track(item.ID, item.DisplayName(), item.Icon)
	}
	m.mu.Unlock()

	logger.WithComponent("window").Debug().
		Str("id", item.ID).
		Str("app", string(item.App)).
		Int("z", w.z).
		Msg("Window opened")

	if host.AfterMount != nil {
		host.AfterMount(&handle{m: m, id: item.ID, instance: w.instance, ctx: ctx}, item)
	}

	info, err := m.Window(item.ID)
	if err != nil {
		// Closed while mounting
		return Info{}, err
	}
	m.notify(Event{Type: EventOpened, WindowID: item.ID, Window: &info})
	return info, nil
}

// Focus brings a window to the front
func (m *Manager) Focus(id string) error {
	return m.update(id, EventFocused, func(w *window) error {
		w.z = m.nextZ()
		return nil
	})
}

// Show makes a minimized window visible without changing its stacking
func (m *Manager) Show(id string) error {
	return m.update(id, EventShown, func(w *window) error {
		w.visible = Shown
		return nil
	})
}

// Restore makes a window visible and brings it to the front
func (m *Manager) Restore(id string) error {
	return m.update(id, EventShown, func(w *window) error {
		w.visible = Shown
		w.z = m.nextZ()
		return nil
	})
}

// Minimize hides a window; it stays open and on the taskbar
func (m *Manager) Minimize(id string) error {
	return m.update(id, EventMinimized, func(w *window) error {
		w.visible = Hidden
		m.dropDragLocked(id)
		return nil
	})
}

// Maximize toggles between the window's own frame and the full work area.
// The normal frame is remembered across the round trip.
func (m *Manager) Maximize(id string) error {
	m.mu.Lock()
	w, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	typ := EventMaximized
	if w.size == Maximized {
		w.frame = w.restore
		w.size = Normal
		typ = EventRestored
	} else {
		w.restore = w.frame
		w.frame = Geometry{Width: m.opts.AreaWidth, Height: m.opts.AreaHeight}
		w.size = Maximized
		m.dropDragLocked(id)
	}
	info := w.info()
	m.mu.Unlock()

	m.notify(Event{Type: typ, WindowID: id, Window: &info})
	return nil
}

// Close destroys a window, its taskbar entry and its body state
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	w, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	delete(m.windows, id)
	m.dropDragLocked(id)
	if m.tracker != nil {
		m.tracker.Untrack(id)
	}
	body := w.body
	w.body = nil
	m.mu.Unlock()

	w.cancel()
	if body != nil {
		body.Close()
	}

	logger.WithComponent("window").Debug().Str("id", id).Msg("Window closed")
	m.notify(Event{Type: EventClosed, WindowID: id})
	return nil
}

// BeginDrag starts a pointer drag on a window's title bar. Only one drag
// may be active and maximized windows cannot be dragged.
func (m *Manager) BeginDrag(id string, pointerX, pointerY int) error {
	m.mu.Lock()
	w, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if m.drag != nil {
		m.mu.Unlock()
		return ErrDragActive
	}
	if !draggable(w) {
		m.mu.Unlock()
		return ErrNotDraggable
	}
	m.drag = &dragState{id: id, offsetX: pointerX - w.frame.X, offsetY: pointerY - w.frame.Y}
	w.z = m.nextZ()
	info := w.info()
	m.mu.Unlock()

	m.notify(Event{Type: EventFocused, WindowID: id, Window: &info})
	return nil
}

// DragTo moves the dragged window so the grab point follows the pointer
func (m *Manager) DragTo(pointerX, pointerY int) error {
	m.mu.Lock()
	if m.drag == nil {
		m.mu.Unlock()
		return ErrNoDrag
	}
	w, err := m.lookup(m.drag.id)
	if err != nil {
		m.drag = nil
		m.mu.Unlock()
		return err
	}
	w.frame.X = pointerX - m.drag.offsetX
	w.frame.Y = pointerY - m.drag.offsetY
	info := w.info()
	m.mu.Unlock()

	m.notify(Event{Type: EventMoved, WindowID: info.ID, Window: &info})
	return nil
}

// EndDrag finishes the active drag, if any
func (m *Manager) EndDrag() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drag = nil
}

// DragBy moves a shown, normal-size window by a delta outside a pointer
// drag
func (m *Manager) DragBy(id string, dx, dy int) error {
	m.mu.Lock()
	if m.drag != nil && m.drag.id == id {
		m.mu.Unlock()
		return ErrDragActive
	}
	m.mu.Unlock()

	return m.update(id, EventMoved, func(w *window) error {
		if !draggable(w) {
			return ErrNotDraggable
		}
		w.frame.X += dx
		w.frame.Y += dy
		return nil
	})
}

func draggable(w *window) bool {
	return w.size == Normal && w.visible == Shown
}

func (m *Manager) dropDragLocked(id string) {
	if m.drag != nil && m.drag.id == id {
		m.drag = nil
	}
}

// update applies fn to a window under the lock and publishes typ
func (m *Manager) update(id string, typ EventType, fn func(w *window) error) error {
	m.mu.Lock()
	w, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if err := fn(w); err != nil {
		m.mu.Unlock()
		return err
	}
	info := w.info()
	m.mu.Unlock()

	m.notify(Event{Type: typ, WindowID: id, Window: &info})
	return nil
}

// Window returns a snapshot of one window
func (m *Manager) Window(id string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, err := m.lookup(id)
	if err != nil {
		return Info{}, err
	}
	return w.info(), nil
}

// Windows returns all open windows, back to front
func (m *Manager) Windows() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Body returns the application body attached to a window, or nil if the
// application has none
func (m *Manager) Body(id string) (apphost.Body, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return w.body, nil
}

// TopZ is the most recently assigned stacking value
func (m *Manager) TopZ() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.z
}

// Status reports whether a window is shown and whether it holds the most
// recent stacking value
func (m *Manager) Status(id string) (shown, active bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, err := m.lookup(id)
	if err != nil {
		return false, false, err
	}
	return w.visible == Shown, w.z == m.z, nil
}

// Subscribe adds a listener for window changes
func (m *Manager) Subscribe() chan Event {
	ch := make(chan Event, 32)
	m.lmu.Lock()
	m.listeners = append(m.listeners, ch)
	m.lmu.Unlock()
	return ch
}

// Unsubscribe removes a listener
func (m *Manager) Unsubscribe(ch chan Event) {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	for i, listener := range m.listeners {
		if listener == ch {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (m *Manager) notify(ev Event) {
	m.lmu.RLock()
	defer m.lmu.RUnlock()

	for _, listener := range m.listeners {
		select {
		case listener <- ev:
		default:
			// Skip if channel is full
		}
	}
}

// handle is the mounted application's view of its window. It is bound to
// one window instance so callbacks outliving the window do nothing.
type handle struct {
	m        *Manager
	id       string
	instance string
	ctx      context.Context
}

func (h *handle) WindowID() string         { return h.id }
func (h *handle) Context() context.Context { return h.ctx }

func (h *handle) alive() bool {
	w, ok := h.m.windows[h.id]
	return ok && w.instance == h.instance
}

func (h *handle) Attach(body apphost.Body) {
	h.m.mu.Lock()
	if !h.alive() {
		h.m.mu.Unlock()
		body.Close()
		return
	}
	h.m.windows[h.id].body = body
	h.m.mu.Unlock()
}

// Publish holds the read lock while notifying so a body event can never
// follow the window's closed event
func (h *handle) Publish(state interface{}) {
	h.m.mu.RLock()
	defer h.m.mu.RUnlock()
	if !h.alive() {
		return
	}
	h.m.notify(Event{Type: EventBody, WindowID: h.id, Body: state})
}
