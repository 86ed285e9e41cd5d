package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/desktop"
	"github.com/bryanchriswhite/RetroDesk/internal/icon"
	"github.com/bryanchriswhite/RetroDesk/internal/relay"
	"github.com/bryanchriswhite/RetroDesk/internal/taskbar"
	"github.com/bryanchriswhite/RetroDesk/internal/tray"
	"github.com/bryanchriswhite/RetroDesk/internal/window"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *desktop.Session) {
	t.Helper()
	session := desktop.New(content.DefaultTree(), desktop.WindowOptions(config.Defaults()), apphost.Options{
		BotDelay: time.Millisecond,
	})
	t.Cleanup(session.Close)

	trayMgr := tray.NewManager()
	require.NoError(t, trayMgr.AddWidget(tray.NewVolumeWidget(tray.VolumeID)))

	return NewServer(session, Deps{
		Icons: icon.NewResolver(nil, ""),
		Tray:  trayMgr,
		Relay: relay.New(relay.Options{}),
	}), session
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestContent(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/content", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Config  map[string]interface{}   `json:"config"`
		Desktop []map[string]interface{} `json:"desktop"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Desktop, 6)
	assert.Equal(t, "resume", body.Desktop[0]["id"])
}

func TestOpenFocusAndClose(t *testing.T) {
	s, session := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/windows/proj2/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info window.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "proj2", info.ID)
	assert.Equal(t, 101, info.Z)

	rec = do(t, s, http.MethodPost, "/api/windows/settings/open", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/windows/proj2/focus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	w, err := session.Windows().Window("proj2")
	require.NoError(t, err)
	assert.Equal(t, session.Windows().TopZ(), w.Z)

	rec = do(t, s, http.MethodGet, "/api/windows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []window.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "settings", list[0].ID)

	rec = do(t, s, http.MethodPost, "/api/windows/proj2/close", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/windows/proj2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommandErrors(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/windows/nope/open", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/windows/proj2/focus", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/windows/proj2/drag", "{not json").Code)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/windows/proj2/open", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/windows/proj2/game/move", `{"index":0}`).Code)
}

func TestDragWithBody(t *testing.T) {
	s, session := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/windows/proj2/open", "").Code)
	before, _ := session.Windows().Window("proj2")

	rec := do(t, s, http.MethodPost, "/api/windows/proj2/drag", `{"x":10,"y":-5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	after, _ := session.Windows().Window("proj2")
	assert.Equal(t, before.Frame.X+10, after.Frame.X)
	assert.Equal(t, before.Frame.Y-5, after.Frame.Y)
}

func TestTaskbarClick(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/windows/proj2/open", "").Code)

	rec := do(t, s, http.MethodPost, "/api/taskbar/proj2/click", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var action taskbar.Action
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action))
	assert.Equal(t, taskbar.ActionMinimized, action)

	rec = do(t, s, http.MethodPost, "/api/taskbar/proj2/click", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action))
	assert.Equal(t, taskbar.ActionRestored, action)

	rec = do(t, s, http.MethodGet, "/api/taskbar", "")
	var entries []taskbar.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "proj2", entries[0].ID)
}

func TestIconPlaceholderForUnknownItem(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/icons/missing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestTrayToggle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/tray/volume/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"muted":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/tray", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var states []tray.WidgetState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
	require.Len(t, states, 1)
	assert.Equal(t, true, states[0].State["muted"])
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/api/windows/proj2/open", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRelayMounted(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, relay.Path, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexAndUnknownPaths(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RetroDesk")

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nothing-here", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/config", "").Code)
}

type streamFrame struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	Error    string `json:"error"`
	Snapshot *struct {
		TopZ int `json:"topZ"`
	} `json:"snapshot"`
	Event *struct {
		Type     string `json:"type"`
		WindowID string `json:"windowId"`
	} `json:"event"`
}

func TestStreamSnapshotCommandsAndEvents(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/desktop/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first streamFrame
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, MessageSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, 100, first.Snapshot.TopZ)

	require.NoError(t, conn.WriteJSON(desktop.Command{Action: desktop.ActionOpen, ID: "proj2"}))
	require.NoError(t, conn.WriteJSON(desktop.Command{Action: "explode"}))

	var opened, openResult, failed bool
	for !(opened && openResult && failed) {
		var f streamFrame
		require.NoError(t, conn.ReadJSON(&f))
		switch f.Type {
		case MessageEvent:
			if f.Event.Type == string(window.EventOpened) && f.Event.WindowID == "proj2" {
				opened = true
			}
		case MessageResult:
			if f.Action == desktop.ActionOpen {
				assert.Empty(t, f.Error)
				openResult = true
			}
			if f.Action == "explode" {
				assert.Contains(t, f.Error, "unknown action")
				failed = true
			}
		}
	}
}
