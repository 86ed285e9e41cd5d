// Package desktop ties the content tree, application hosts, window manager
// and taskbar into one session driven by browser commands.
package desktop

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/bryanchriswhite/RetroDesk/internal/taskbar"
	"github.com/bryanchriswhite/RetroDesk/internal/window"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrWrongApp      = errors.New("window does not host this application")
)

// Session is one user's desktop. Commands are applied one at a time, in
// arrival order; asynchronous work (bot replies, framing verdicts) reports
// back through window events.
type Session struct {
	tree     *content.Tree
	registry *apphost.Registry
	windows  *window.Manager
	taskbar  *taskbar.Bar

	mu sync.Mutex
}

// New creates a session over tree
func New(tree *content.Tree, wopts window.Options, hopts apphost.Options) *Session {
	registry := apphost.NewRegistry(hopts)
	bar := taskbar.New()
	windows := window.NewManager(wopts, registry, bar)
	bar.Attach(windows)

	return &Session{
		tree:     tree,
		registry: registry,
		windows:  windows,
		taskbar:  bar,
	}
}

// WindowOptions derives window placement from configuration
func WindowOptions(cfg *config.Config) window.Options {
	return window.Options{
		OriginX:     cfg.Window.OriginX,
		OriginY:     cfg.Window.OriginY,
		CascadeStep: cfg.Window.CascadeStep,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		BaseZ:       cfg.Window.BaseZ,
		AreaWidth:   cfg.Desktop.Width,
		AreaHeight:  cfg.Desktop.Height - cfg.Desktop.TaskbarHeight,
	}
}

// Tree returns the content tree
func (s *Session) Tree() *content.Tree { return s.tree }

// Windows returns the window manager
func (s *Session) Windows() *window.Manager { return s.windows }

// Taskbar returns the taskbar
func (s *Session) Taskbar() *taskbar.Bar { return s.taskbar }

// Close shuts every window
func (s *Session) Close() {
	s.windows.Stop()
}

// Open opens the window for any item in the tree, including items nested
// in folders
func (s *Session) Open(id string) (window.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open(id)
}

func (s *Session) open(id string) (window.Info, error) {
	item, err := s.tree.Find(id)
	if err != nil {
		return window.Info{}, err
	}
	return s.windows.Open(item)
}

// Snapshot is everything the browser needs to draw the desktop
type Snapshot struct {
	Identity content.Identity `json:"identity"`
	Desktop  []*content.Item  `json:"desktop"`
	Windows  []window.Info    `json:"windows"`
	Taskbar  []taskbar.Entry  `json:"taskbar"`
	TopZ     int              `json:"topZ"`
}

// Snapshot returns the current desktop
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Identity: s.tree.Identity(),
		Desktop:  s.tree.Desktop(),
		Windows:  s.windows.Windows(),
		Taskbar:  s.taskbar.Entries(),
		TopZ:     s.windows.TopZ(),
	}
}

// Command actions
const (
	ActionOpen          = "open"
	ActionFocus         = "focus"
	ActionMinimize      = "minimize"
	ActionMaximize      = "maximize"
	ActionClose         = "close"
	ActionDrag          = "drag"
	ActionDragStart     = "drag_start"
	ActionDragMove      = "drag_move"
	ActionDragEnd       = "drag_end"
	ActionTaskbarClick  = "taskbar_click"
	ActionFrameLoaded   = "frame_loaded"
	ActionOpenExternal  = "open_external"
	ActionGameMove      = "game_move"
	ActionGameReset     = "game_reset"
	ActionSetBackground = "set_background"
	ActionSetWallpaper  = "set_wallpaper"
)

// Command is a browser gesture
type Command struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	Index  int    `json:"index,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Dispatch applies one command. The returned value, when non-nil, is a
// JSON-friendly result for the caller.
func (s *Session) Dispatch(cmd Command) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithComponent("desktop")
	log.Debug().Str("action", cmd.Action).Str("id", cmd.ID).Msg("Command")

	switch cmd.Action {
	case ActionOpen:
		return s.open(cmd.ID)
	case ActionFocus:
		return nil, s.windows.Focus(cmd.ID)
	case ActionMinimize:
		return nil, s.windows.Minimize(cmd.ID)
	case ActionMaximize:
		return nil, s.windows.Maximize(cmd.ID)
	case ActionClose:
		return nil, s.windows.Close(cmd.ID)
	case ActionDrag:
		return nil, s.windows.DragBy(cmd.ID, cmd.X, cmd.Y)
	case ActionDragStart:
		return nil, s.windows.BeginDrag(cmd.ID, cmd.X, cmd.Y)
	case ActionDragMove:
		return nil, s.windows.DragTo(cmd.X, cmd.Y)
	case ActionDragEnd:
		s.windows.EndDrag()
		return nil, nil
	case ActionTaskbarClick:
		return s.taskbar.Click(cmd.ID)
	case ActionFrameLoaded:
		return nil, s.frameLoaded(cmd.ID)
	case ActionOpenExternal:
		return s.external(cmd.ID)
	case ActionGameMove:
		return s.gameMove(cmd.ID, cmd.Index)
	case ActionGameReset:
		return s.gameReset(cmd.ID)
	case ActionSetBackground:
		return s.settings(cmd.ID, func(b *apphost.SettingsBody) error { return b.SetBackground(cmd.Value) })
	case ActionSetWallpaper:
		return s.settings(cmd.ID, func(b *apphost.SettingsBody) error { return b.SetWallpaper(cmd.Value) })
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func (s *Session) frameLoaded(id string) error {
	body, err := s.windows.Body(id)
	if err != nil {
		return err
	}
	if v, ok := body.(*apphost.ViewerBody); ok {
		v.FrameLoaded()
	}
	return nil
}

func (s *Session) external(id string) (embed.External, error) {
	body, err := s.windows.Body(id)
	if err != nil {
		return embed.External{}, err
	}
	v, ok := body.(*apphost.ViewerBody)
	if !ok {
		return embed.External{}, fmt.Errorf("%w: %s", ErrWrongApp, id)
	}
	return v.External(), nil
}

func (s *Session) gameBody(id string) (*apphost.GameBody, error) {
	body, err := s.windows.Body(id)
	if err != nil {
		return nil, err
	}
	g, ok := body.(*apphost.GameBody)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongApp, id)
	}
	return g, nil
}

// gameMove reports whether the move was accepted; rejected moves are not
// errors
func (s *Session) gameMove(id string, index int) (interface{}, error) {
	g, err := s.gameBody(id)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"accepted": g.Move(index), "game": g.State()}, nil
}

func (s *Session) gameReset(id string) (interface{}, error) {
	g, err := s.gameBody(id)
	if err != nil {
		return nil, err
	}
	g.Reset()
	return g.State(), nil
}

func (s *Session) settings(id string, fn func(b *apphost.SettingsBody) error) (interface{}, error) {
	body, err := s.windows.Body(id)
	if err != nil {
		return nil, err
	}
	b, ok := body.(*apphost.SettingsBody)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongApp, id)
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	return b.State(), nil
}
