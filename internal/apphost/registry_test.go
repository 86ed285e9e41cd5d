package apphost

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	body      Body
	published []interface{}
	notify    chan interface{}
}

func newFakeHandle(id string) *fakeHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &fakeHandle{id: id, ctx: ctx, cancel: cancel, notify: make(chan interface{}, 16)}
}

func (h *fakeHandle) WindowID() string         { return h.id }
func (h *fakeHandle) Context() context.Context { return h.ctx }

func (h *fakeHandle) Attach(body Body) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.body = body
}

func (h *fakeHandle) Publish(state interface{}) {
	h.mu.Lock()
	h.published = append(h.published, state)
	h.mu.Unlock()
	h.notify <- state
}

type firstEmpty struct{}

func (firstEmpty) IntN(int) int { return 0 }

func TestEveryKnownKindHasAHost(t *testing.T) {
	r := NewRegistry(Options{})
	for _, kind := range content.AppKinds {
		h := r.For(kind)
		assert.Equal(t, kind, h.Kind)
		assert.NotNil(t, h.Render, kind)
	}
}

func TestUnknownKindRendersEmptyBody(t *testing.T) {
	r := NewRegistry(Options{})
	h := r.For("spreadsheet")
	assert.Empty(t, h.Render(&content.Item{ID: "x"}))
	assert.Nil(t, h.AfterMount)

	markup := r.Render(&content.Item{ID: "x", Name: "Mystery", App: "spreadsheet"})
	assert.Contains(t, markup, "Mystery")
	assert.Contains(t, markup, `<div class="window-body"></div>`)
}

func TestExplorer(t *testing.T) {
	r := NewRegistry(Options{})
	folder := &content.Item{ID: "projects", App: content.AppExplorer, Children: []*content.Item{
		{ID: "proj1", Name: "Portfolio"},
		{ID: "proj2"},
	}}

	body := r.For(content.AppExplorer).Render(folder)
	assert.Contains(t, body, `data-id="proj1"`)
	assert.Contains(t, body, "Portfolio")
	assert.Contains(t, body, `<div class="file-name">proj2</div>`)
	assert.Contains(t, body, `src="/api/icons/proj1"`)

	empty := r.For(content.AppExplorer).Render(&content.Item{ID: "empty"})
	assert.Contains(t, empty, "Empty Folder")
	assert.Nil(t, r.For(content.AppExplorer).AfterMount)
}

func TestExplorerSkipsNilChildren(t *testing.T) {
	r := NewRegistry(Options{})
	folder := &content.Item{ID: "projects", Children: []*content.Item{
		nil,
		{ID: "proj1", Name: "Portfolio"},
		nil,
	}}

	body := r.For(content.AppExplorer).Render(folder)
	assert.Contains(t, body, `data-id="proj1"`)
	assert.NotContains(t, body, "Empty Folder")

	onlyNil := r.For(content.AppExplorer).Render(&content.Item{ID: "x", Children: []*content.Item{nil}})
	assert.Contains(t, onlyNil, "Empty Folder")
}

func TestEmbeddedViewerNormalizesVideoLinks(t *testing.T) {
	r := NewRegistry(Options{})
	item := &content.Item{ID: "vid", Name: "Clip", App: content.AppEmbeddedViewer, Target: "https://youtu.be/e-eR1hLLQGg"}

	body := r.For(content.AppEmbeddedViewer).Render(item)
	assert.Contains(t, body, `src="https://www.youtube.com/embed/e-eR1hLLQGg"`)
	assert.Equal(t, body, r.For(content.AppEmbeddedViewer).Render(item), "render is pure")

	h := newFakeHandle("vid")
	r.For(content.AppEmbeddedViewer).AfterMount(h, item)
	require.NotNil(t, h.body)
	state := h.body.State().(ViewerState)
	assert.Equal(t, embed.EmbedBase+"e-eR1hLLQGg", state.External.URL)
	assert.Equal(t, "_blank", state.External.Target)
	assert.False(t, state.Fallback)
}

func TestViewerThroughRelay(t *testing.T) {
	r := NewRegistry(Options{RelayBase: "http://localhost:3000/proxy"})
	item := &content.Item{ID: "site", App: content.AppEmbeddedViewer, Target: "https://example.com"}

	body := r.For(content.AppEmbeddedViewer).Render(item)
	assert.Contains(t, body, "http://localhost:3000/proxy?url=https%3A%2F%2Fexample.com")
	assert.Contains(t, body, `data-url="https://example.com"`)
}

func TestTextViewerSanitizesBody(t *testing.T) {
	r := NewRegistry(Options{})
	item := &content.Item{ID: "t", App: content.AppTextViewer, Body: `<h2>Hi</h2><script>alert(1)</script><p onclick="x()">there</p>`}

	body := r.For(content.AppTextViewer).Render(item)
	assert.Contains(t, body, "<h2>Hi</h2>")
	assert.Contains(t, body, "<p>there</p>")
	assert.NotContains(t, body, "script")
	assert.NotContains(t, body, "onclick")
}

func TestDocumentViewerShowsFallbackWhenBlocked(t *testing.T) {
	detector := embed.NewDetector(embed.InspectorFunc(func(context.Context, string) error {
		return errors.New("refused")
	}), time.Millisecond, 10*time.Millisecond, time.Second)
	r := NewRegistry(Options{Detector: detector})
	item := &content.Item{ID: "resume", Name: "Resume", App: content.AppDocumentViewer, Resource: "assets/resume.pdf"}

	body := r.For(content.AppDocumentViewer).Render(item)
	assert.Contains(t, body, `class="iframe-error" hidden`)
	assert.Contains(t, body, `href="assets/resume.pdf"`)

	h := newFakeHandle("resume")
	r.For(content.AppDocumentViewer).AfterMount(h, item)

	select {
	case s := <-h.notify:
		state := s.(ViewerState)
		assert.True(t, state.Fallback)
		assert.Equal(t, embed.VerdictBlocked, state.Verdict)
	case <-time.After(time.Second):
		t.Fatal("no verdict published")
	}
}

func TestDocumentViewerLoadSignalKeepsFrame(t *testing.T) {
	detector := embed.NewDetector(embed.InspectorFunc(func(context.Context, string) error {
		return nil
	}), time.Millisecond, time.Second, time.Second)
	r := NewRegistry(Options{Detector: detector})
	item := &content.Item{ID: "doc", App: content.AppDocumentViewer, Resource: "assets/resume.pdf"}

	h := newFakeHandle("doc")
	r.For(content.AppDocumentViewer).AfterMount(h, item)
	h.body.(*ViewerBody).FrameLoaded()

	select {
	case s := <-h.notify:
		state := s.(ViewerState)
		assert.False(t, state.Fallback)
		assert.Equal(t, embed.VerdictEmbedded, state.Verdict)
	case <-time.After(time.Second):
		t.Fatal("no verdict published")
	}
}

func TestClosedDocumentViewerDropsVerdict(t *testing.T) {
	detector := embed.NewDetector(embed.InspectorFunc(func(context.Context, string) error {
		return errors.New("refused")
	}), time.Millisecond, 10*time.Millisecond, time.Second)
	r := NewRegistry(Options{Detector: detector})
	item := &content.Item{ID: "doc", App: content.AppDocumentViewer, Resource: "x.pdf"}

	h := newFakeHandle("doc")
	r.For(content.AppDocumentViewer).AfterMount(h, item)
	h.body.Close()

	time.Sleep(50 * time.Millisecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Empty(t, h.published)
	assert.False(t, h.body.State().(ViewerState).Fallback)
}

func TestSettingsBody(t *testing.T) {
	r := NewRegistry(Options{})
	markup := r.For(content.AppSettings).Render(&content.Item{ID: "settings"})
	assert.Contains(t, markup, `value="#008080" checked`)

	h := newFakeHandle("settings")
	r.For(content.AppSettings).AfterMount(h, &content.Item{ID: "settings"})
	body := h.body.(*SettingsBody)

	require.NoError(t, body.SetWallpaper("https://example.com/bg.png"))
	assert.Equal(t, SettingsState{Background: DefaultBackground, Wallpaper: "https://example.com/bg.png"}, body.State())

	require.NoError(t, body.SetBackground("#000080"))
	assert.Equal(t, SettingsState{Background: "#000080"}, body.State())

	assert.ErrorIs(t, body.SetBackground("#ff00ff"), ErrUnknownBackground)
	assert.ErrorIs(t, body.SetWallpaper("javascript:alert(1)"), ErrInvalidWallpaper)
	assert.Len(t, h.published, 2)
}

func TestGameBody(t *testing.T) {
	r := NewRegistry(Options{BotDelay: time.Millisecond, NewPicker: func() game.Picker { return firstEmpty{} }})
	markup := r.For(content.AppGame).Render(&content.Item{ID: "game"})
	assert.Contains(t, markup, "Player vs Bot")
	assert.Contains(t, markup, `data-index="8"`)

	h := newFakeHandle("game")
	r.For(content.AppGame).AfterMount(h, &content.Item{ID: "game"})
	body := h.body.(*GameBody)

	assert.True(t, body.Move(4))
	<-h.notify
	bot := (<-h.notify).(game.Snapshot)
	assert.Equal(t, game.Bot, bot.Board[0])
	assert.Equal(t, game.Human, bot.Turn)

	body.Close()
	assert.False(t, body.Move(1))
}
