package apphost

import (
	"errors"
	"sync"

	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/game"
)

// ViewerBody backs embedded and document viewer windows
type ViewerBody struct {
	kind     content.AppKind
	frame    string
	external embed.External

	mu       sync.Mutex
	w        *embed.Watch
	verdict  embed.Verdict
	fallback bool
	closed   bool
}

// ViewerState is the client view of a viewer body
type ViewerState struct {
	Frame    string         `json:"frame"`
	External embed.External `json:"external"`
	Verdict  embed.Verdict  `json:"verdict,omitempty"`
	Fallback bool           `json:"fallback"`
}

func (b *ViewerBody) Kind() content.AppKind { return b.kind }

func (b *ViewerBody) State() interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ViewerState{
		Frame:    b.frame,
		External: b.external,
		Verdict:  b.verdict,
		Fallback: b.fallback,
	}
}

// FrameLoaded forwards the frame's load signal to the running watch
func (b *ViewerBody) FrameLoaded() {
	b.mu.Lock()
	w := b.w
	b.mu.Unlock()
	if w != nil {
		w.Loaded()
	}
}

// External returns the escape hatch for this viewer
func (b *ViewerBody) External() embed.External {
	return b.external
}

func (b *ViewerBody) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.w != nil {
		b.w.Cancel()
	}
}

func (b *ViewerBody) watch(w *embed.Watch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		w.Cancel()
		return
	}
	b.w = w
}

// commit records a verdict; a blocked verdict reveals the fallback overlay
func (b *ViewerBody) commit(res embed.Result) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.verdict = res.Verdict
	b.fallback = res.Verdict == embed.VerdictBlocked
	return true
}

// Background is a selectable desktop background color
type Background struct {
	Value string
	Label string
}

// Backgrounds lists the selectable colors
var Backgrounds = []Background{
	{Value: "#008080", Label: "Teal (Classic)"},
	{Value: "#000000", Label: "Black"},
	{Value: "#000080", Label: "Blue"},
}

// DefaultBackground is the classic teal
const DefaultBackground = "#008080"

var (
	ErrUnknownBackground = errors.New("unknown background color")
	ErrInvalidWallpaper  = errors.New("wallpaper must be an absolute http(s) URL")
)

// SettingsState is the desktop appearance chosen in a settings window
type SettingsState struct {
	Background string `json:"background"`
	Wallpaper  string `json:"wallpaper,omitempty"`
}

// SettingsBody backs the settings window
type SettingsBody struct {
	mu         sync.Mutex
	background string
	wallpaper  string
	publish    func(interface{})
}

func (b *SettingsBody) Kind() content.AppKind { return content.AppSettings }

func (b *SettingsBody) State() interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return SettingsState{Background: b.background, Wallpaper: b.wallpaper}
}

func (b *SettingsBody) Close() {}

// SetBackground selects one of Backgrounds and clears any wallpaper
func (b *SettingsBody) SetBackground(value string) error {
	known := false
	for _, bg := range Backgrounds {
		if bg.Value == value {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownBackground
	}

	b.mu.Lock()
	b.background = value
	b.wallpaper = ""
	b.mu.Unlock()
	b.changed()
	return nil
}

// SetWallpaper applies an image URL over the background color
func (b *SettingsBody) SetWallpaper(target string) error {
	if !embed.IsAbsolute(target) {
		return ErrInvalidWallpaper
	}

	b.mu.Lock()
	b.wallpaper = target
	b.mu.Unlock()
	b.changed()
	return nil
}

func (b *SettingsBody) changed() {
	if b.publish != nil {
		b.publish(b.State())
	}
}

// GameBody backs the game window
type GameBody struct {
	session *game.Session
}

func (b *GameBody) Kind() content.AppKind { return content.AppGame }

func (b *GameBody) State() interface{} { return b.session.Snapshot() }

func (b *GameBody) Close() { b.session.Close() }

// Move plays the human's mark at index
func (b *GameBody) Move(index int) bool { return b.session.Move(index) }

// Reset restarts the game
func (b *GameBody) Reset() { b.session.Reset() }
