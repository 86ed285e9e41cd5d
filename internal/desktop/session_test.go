package desktop

import (
	"testing"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/game"
	"github.com/bryanchriswhite/RetroDesk/internal/taskbar"
	"github.com/bryanchriswhite/RetroDesk/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstEmpty struct{}

func (firstEmpty) IntN(int) int { return 0 }

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(content.DefaultTree(), WindowOptions(config.Defaults()), apphost.Options{
		BotDelay:  time.Millisecond,
		NewPicker: func() game.Picker { return firstEmpty{} },
	})
	t.Cleanup(s.Close)
	return s
}

func TestWindowOptionsFromConfig(t *testing.T) {
	opts := WindowOptions(config.Defaults())
	assert.Equal(t, 100, opts.BaseZ)
	assert.Equal(t, 1280, opts.AreaWidth)
	assert.Equal(t, 760, opts.AreaHeight)
}

func TestOpenNestedItem(t *testing.T) {
	s := newSession(t)

	info, err := s.Open("proj2")
	require.NoError(t, err)
	assert.Equal(t, content.AppTextViewer, info.App)

	_, err = s.Open("nope")
	assert.ErrorIs(t, err, content.ErrItemNotFound)

	snap := s.Snapshot()
	assert.Equal(t, "Aishwary Gathe", snap.Identity.Name)
	assert.Len(t, snap.Desktop, 6)
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, []taskbar.Entry{{ID: "proj2", Name: info.Title, Icon: snap.Windows[0].Icon}}, snap.Taskbar)
}

func TestDispatchWindowCommands(t *testing.T) {
	s := newSession(t)

	_, err := s.Dispatch(Command{Action: ActionOpen, ID: "projects"})
	require.NoError(t, err)
	_, err = s.Dispatch(Command{Action: ActionOpen, ID: "settings"})
	require.NoError(t, err)

	action, err := s.Dispatch(Command{Action: ActionTaskbarClick, ID: "settings"})
	require.NoError(t, err)
	assert.Equal(t, taskbar.ActionMinimized, action)

	_, err = s.Dispatch(Command{Action: ActionMaximize, ID: "projects"})
	require.NoError(t, err)
	w, _ := s.Windows().Window("projects")
	assert.Equal(t, window.Maximized, w.Size)

	_, err = s.Dispatch(Command{Action: ActionDrag, ID: "projects", X: 5, Y: 5})
	assert.ErrorIs(t, err, window.ErrNotDraggable)

	_, err = s.Dispatch(Command{Action: ActionDragStart, ID: "settings", X: 0, Y: 0})
	assert.ErrorIs(t, err, window.ErrNotDraggable, "hidden windows cannot be dragged")

	_, err = s.Dispatch(Command{Action: ActionClose, ID: "projects"})
	require.NoError(t, err)
	assert.Len(t, s.Taskbar().Entries(), 1)

	_, err = s.Dispatch(Command{Action: "explode"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDispatchGame(t *testing.T) {
	s := newSession(t)
	ch := s.Windows().Subscribe()
	defer s.Windows().Unsubscribe(ch)

	_, err := s.Dispatch(Command{Action: ActionOpen, ID: "game"})
	require.NoError(t, err)

	res, err := s.Dispatch(Command{Action: ActionGameMove, ID: "game", Index: 4})
	require.NoError(t, err)
	assert.Equal(t, true, res.(map[string]interface{})["accepted"])

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-ch:
			if snap, ok := ev.Body.(game.Snapshot); ok && snap.Board[0] == game.Bot {
				res, err = s.Dispatch(Command{Action: ActionGameReset, ID: "game"})
				require.NoError(t, err)
				assert.Equal(t, game.Board{}, res.(game.Snapshot).Board)
				return
			}
		case <-deadline:
			t.Fatal("bot never moved")
		}
	}
}

func TestMinimizeAndReopenKeepsGameBoard(t *testing.T) {
	s := newSession(t)
	ch := s.Windows().Subscribe()
	defer s.Windows().Unsubscribe(ch)

	first, err := s.Open("game")
	require.NoError(t, err)
	_, err = s.Dispatch(Command{Action: ActionGameMove, ID: "game", Index: 4})
	require.NoError(t, err)

	deadline := time.After(time.Second)
	for bot := false; !bot; {
		select {
		case ev := <-ch:
			if snap, ok := ev.Body.(game.Snapshot); ok && snap.Board[0] == game.Bot {
				bot = true
			}
		case <-deadline:
			t.Fatal("bot never moved")
		}
	}

	want := game.Board{game.Bot, game.Empty, game.Empty, game.Empty, game.Human, game.Empty, game.Empty, game.Empty, game.Empty}
	_, err = s.Dispatch(Command{Action: ActionMinimize, ID: "game"})
	require.NoError(t, err)

	again, err := s.Open("game")
	require.NoError(t, err)
	assert.Equal(t, first.Instance, again.Instance)
	assert.Equal(t, window.Shown, again.Visibility)
	assert.Equal(t, s.Windows().TopZ(), again.Z)
	assert.Equal(t, want, again.Body.(game.Snapshot).Board)
	assert.Equal(t, game.Human, again.Body.(game.Snapshot).Turn)
}

func TestDispatchToWrongApp(t *testing.T) {
	s := newSession(t)
	_, err := s.Dispatch(Command{Action: ActionOpen, ID: "proj2"})
	require.NoError(t, err)

	_, err = s.Dispatch(Command{Action: ActionGameMove, ID: "proj2", Index: 0})
	assert.ErrorIs(t, err, ErrWrongApp)
	_, err = s.Dispatch(Command{Action: ActionSetBackground, ID: "proj2", Value: "#000000"})
	assert.ErrorIs(t, err, ErrWrongApp)
	_, err = s.Dispatch(Command{Action: ActionGameReset, ID: "missing"})
	assert.ErrorIs(t, err, window.ErrWindowNotFound)
}

func TestDispatchSettings(t *testing.T) {
	s := newSession(t)
	_, err := s.Dispatch(Command{Action: ActionOpen, ID: "settings"})
	require.NoError(t, err)

	res, err := s.Dispatch(Command{Action: ActionSetBackground, ID: "settings", Value: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, apphost.SettingsState{Background: "#000000"}, res)

	_, err = s.Dispatch(Command{Action: ActionSetWallpaper, ID: "settings", Value: "not a url"})
	assert.ErrorIs(t, err, apphost.ErrInvalidWallpaper)
}

func TestDispatchViewer(t *testing.T) {
	s := newSession(t)
	_, err := s.Dispatch(Command{Action: ActionOpen, ID: "vid1"})
	require.NoError(t, err)

	res, err := s.Dispatch(Command{Action: ActionOpenExternal, ID: "vid1"})
	require.NoError(t, err)
	assert.Equal(t, embed.EmbedBase+"e-eR1hLLQGg", res.(embed.External).URL)

	_, err = s.Dispatch(Command{Action: ActionFrameLoaded, ID: "vid1"})
	assert.NoError(t, err)
}
